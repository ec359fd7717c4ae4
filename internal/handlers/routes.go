package handlers

import (
	"context"
	"net/http"
	"time"

	"prepflow/internal/metrics"
	customMiddleware "prepflow/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger          *zap.Logger
	Tokens          customMiddleware.TokenParser
	AllowedOrigins  []string
	RateLimitPerMin int
	// Ping reports database health for /health.
	Ping func(ctx context.Context) error

	Auth       *AuthHandler
	Interviews *InterviewHandler
	Feedback   *FeedbackHandler
	Pages      *PageHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(customMiddleware.RequestID(cfg.Logger))
	r.Use(customMiddleware.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", health(cfg.Ping))
	r.Handle("/metrics", promhttp.Handler())

	limit := cfg.RateLimitPerMin
	if limit <= 0 {
		limit = 10
	}
	onLimit := httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	// Pages (session optional)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.OptionalAuth(cfg.Tokens))
		r.Get("/", cfg.Pages.Dashboard)
		r.Get("/interview/{id}/feedback", cfg.Pages.Feedback)
	})

	// Public auth routes
	r.With(httprate.Limit(limit, time.Minute, httprate.WithKeyByRealIP(), onLimit)).
		Post("/auth/request", cfg.Auth.RequestLogin)
	r.Get("/auth/verify", cfg.Auth.VerifyToken)
	r.Get("/auth/callback", cfg.Auth.Callback)

	// Protected routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(cfg.Tokens))

		r.Post("/auth/logout", cfg.Auth.Logout)
		r.Get("/api/me", cfg.Interviews.Me)
		r.Get("/api/interviews", cfg.Interviews.ListMine)
		r.Get("/api/interviews/latest", cfg.Interviews.ListLatest)
		r.Get("/api/interviews/{id}", cfg.Interviews.Get)
		r.Get("/api/interviews/{id}/feedback", cfg.Interviews.GetFeedback)

		r.With(httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(byUser), onLimit)).
			Post("/api/feedback", cfg.Feedback.CreateFeedback)
	})

	return r
}

func byUser(r *http.Request) (string, error) {
	return customMiddleware.GetUserID(r.Context()), nil
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "service": "prepflow"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "prepflow"})
	}
}
