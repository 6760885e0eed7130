// Package main is the entrypoint for the QuillPost server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/cache"
	"github.com/quillpost/quillpost/internal/config"
	"github.com/quillpost/quillpost/internal/handler"
	"github.com/quillpost/quillpost/internal/inertia"
	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/middleware"
	"github.com/quillpost/quillpost/internal/repository"
	"github.com/quillpost/quillpost/internal/server"
	"github.com/quillpost/quillpost/internal/service"
)

// assetVersion identifies the client bundle for stale-page detection.
// Overridden at build time via -ldflags "-X main.assetVersion=...".
var assetVersion = "dev"

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize session store
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services
	recorder := metrics.NewInMemory()
	postService := service.NewPostService(repo, recorder)
	authService := service.NewAuthService(repo, recorder)

	// Initialize the page renderer with props shared across every page
	renderer := inertia.NewRenderer(assetVersion, shareProps(cacheClient, cfg.SessionCookieName))

	// Initialize handlers
	h := handler.New(renderer)
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	postHandler := handler.NewPostHandler(postService, renderer, cacheClient, cfg.SessionCookieName, logger)
	authHandler := handler.NewAuthHandler(authService, cacheClient, renderer, cfg.SessionCookieName, cfg.SessionTTL, cfg.SessionSecure, logger)

	// Setup router
	r := setupRouter(h, healthHandler, postHandler, authHandler, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Stores close after the HTTP server drains.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("session store", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// shareProps supplies the props every page receives: the signed-in user
// and the one-shot flash. Consuming the flash here means it renders on
// exactly one page and is gone on the next.
func shareProps(cacheClient *cache.Cache, cookieName string) inertia.ShareFunc {
	return func(r *http.Request) inertia.Props {
		props := inertia.Props{}

		if user := auth.UserFromContext(r.Context()); user != nil {
			props["auth"] = map[string]any{
				"user": map[string]any{
					"id":   user.ID,
					"name": user.Name,
				},
			}
		} else {
			props["auth"] = map[string]any{"user": nil}
		}

		flash := map[string]string{}
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			if f, err := cacheClient.ConsumeFlash(r.Context(), cookie.Value); err == nil {
				if f.Success != "" {
					flash["success"] = f.Success
				}
				if f.Error != "" {
					flash["error"] = f.Error
				}
			}
		}
		props["flash"] = flash

		return props
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	postHandler *handler.PostHandler,
	authHandler *handler.AuthHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	secCfg := middleware.DefaultSecurityConfig()
	secCfg.IsDevelopment = cfg.IsDevelopment()
	r.Use(middleware.Security(secCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no session required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Session middleware configuration
	sessionCfg := middleware.SessionConfig{
		Logger:     logger,
		Store:      cacheClient,
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
	}

	// Login throttling configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: cacheClient,
		Enabled: cfg.LoginRateLimitEnabled,
		RPM:     cfg.LoginRateLimitRPM,
		Burst:   cfg.LoginRateLimitBurst,
	}

	// Page routes (session resolved, guards per group)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessionCfg))

		r.Get("/", h.Home)

		// Guest-only auth pages
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireGuest("/posts"))

			r.Get("/login", authHandler.ShowLogin)
			r.With(middleware.RateLimitLogin(rateLimitCfg)).Post("/login", authHandler.Login)
			r.Get("/register", authHandler.ShowRegister)
			r.Post("/register", authHandler.Register)
		})

		// Signed-in pages
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth("/login"))

			r.Post("/logout", authHandler.Logout)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.Index)
				r.Get("/create", postHandler.Create)
				r.Post("/", postHandler.Store)
				r.Get("/{id}", postHandler.Show)
				r.Get("/{id}/edit", postHandler.Edit)
				r.Put("/{id}", postHandler.Update)
				r.Patch("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Destroy)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
