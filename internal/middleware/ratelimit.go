package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quillpost/quillpost/internal/cache"
)

// LoginLimiter checks login attempt budgets.
// *cache.Cache satisfies it.
type LoginLimiter interface {
	CheckLoginRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for login throttling.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter LoginLimiter
	Enabled bool
	RPM     int
	Burst   int
}

// RateLimitLogin returns a middleware that throttles login attempts per
// client IP with a token bucket. Exceeding the budget yields 429 with a
// Retry-After header; credential checking never runs for throttled
// requests.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckLoginRateLimit(r.Context(), r.RemoteAddr, cfg.RPM, cfg.Burst)
			if err != nil || result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.Warn("login rate limit exceeded",
				slog.String("ip", r.RemoteAddr),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			http.Error(w, "Too many login attempts. Try again later.", http.StatusTooManyRequests)
		})
	}
}
