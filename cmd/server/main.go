package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepflow/internal/ai"
	"prepflow/internal/auth"
	"prepflow/internal/config"
	"prepflow/internal/database"
	"prepflow/internal/handlers"
	"prepflow/internal/logging"
	"prepflow/internal/notify"
	"prepflow/internal/repository"
	"prepflow/internal/services"
	"prepflow/internal/views"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	if _, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName); err != nil {
		logger.Fatal("❌ Failed to connect to MongoDB", zap.Error(err))
	}

	// Initialize repositories
	interviewRepo := repository.NewInterviewRepo()
	feedbackRepo := repository.NewFeedbackRepo()
	userRepo := repository.NewUserRepo()
	tokenRepo := repository.NewAuthTokenRepo()

	// Ensure indexes
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"interview": interviewRepo.EnsureIndexes,
		"feedback":  feedbackRepo.EnsureIndexes,
		"user":      userRepo.EnsureIndexes,
		"token":     tokenRepo.EnsureIndexes,
	} {
		if err := ensure(idxCtx); err != nil {
			logger.Warn("⚠️  failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancel()

	generator, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		InitialInterval: cfg.AIBackoffInitial,
		MaxInterval:     cfg.AIBackoffMax,
		MaxElapsed:      cfg.AIBackoffMaxElapsed,
	})
	if err != nil {
		logger.Fatal("❌ Failed to initialize Gemini", zap.Error(err))
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Fatal("❌ Failed to parse templates", zap.Error(err))
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	notifier := notify.New(cfg.ResendAPIKey, cfg.FromEmail, logger)

	svc := services.NewInterviewService(interviewRepo, feedbackRepo, userRepo, generator, notifier, services.Options{
		DefaultLimit: cfg.LatestInterviewsLimit,
		BaseURL:      cfg.BaseURL,
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:          logger,
		Tokens:          issuer,
		AllowedOrigins:  cfg.AllowedOrigins(),
		RateLimitPerMin: cfg.RateLimitPerMin,
		Ping:            database.Ping,
		Auth:            handlers.NewAuthHandler(tokenRepo, userRepo, issuer, notifier, cfg.BaseURL, cfg.IsProduction()),
		Interviews:      handlers.NewInterviewHandler(svc),
		Feedback:        handlers.NewFeedbackHandler(svc),
		Pages:           handlers.NewPageHandler(svc, renderer),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "prepflow"),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server
	go func() {
		logger.Info("🚀 PrepFlow starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	svc.Wait()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect", zap.Error(err))
	}
	logger.Info("👋 Bye")
}
