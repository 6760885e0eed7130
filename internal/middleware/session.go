package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/model"
)

// SessionStore loads session identities by token.
// *cache.Cache satisfies it.
type SessionStore interface {
	GetSession(ctx context.Context, token string, ttl time.Duration) (*model.SessionUser, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Store      SessionStore
	CookieName string
	TTL        time.Duration
}

// Session returns a middleware that resolves the session cookie into the
// authenticated user and injects it into the request context. Requests
// without a valid session pass through unauthenticated; route guards
// decide what that means.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := cfg.Store.GetSession(r.Context(), cookie.Value, cfg.TTL)
			if err != nil {
				// Expired or unknown token; treat as signed out.
				cfg.Logger.Debug("session lookup failed",
					slog.String("reason", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards routes that need a signed-in user.
// Unauthenticated requests are redirected to the login page.
func RequireAuth(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.UserFromContext(r.Context()) == nil {
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGuest guards login/register pages against signed-in users.
func RequireGuest(homeURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.UserFromContext(r.Context()) != nil {
				http.Redirect(w, r, homeURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
