// Package main is the entrypoint for the adoption records API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly/internal/audit"
	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/cache"
	"github.com/adoptly/adoptly/internal/config"
	"github.com/adoptly/adoptly/internal/handler"
	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/repository"
	"github.com/adoptly/adoptly/internal/server"
	"github.com/adoptly/adoptly/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if tokens.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using built-in default; do not run this in production")
	}

	recorder := metrics.NewInMemory()
	publisher := audit.NewPublisher(cacheClient.Client(), logger)

	// Services
	sessionService := service.NewSessionService(repo, cacheClient, tokens, recorder, publisher)
	userService := service.NewUserService(repo, cacheClient)
	petService := service.NewPetService(repo)
	adoptionService := service.NewAdoptionService(repo, repo, repo, cacheClient, recorder, publisher)
	mockService := service.NewMockService()

	// Handlers
	router := handler.NewRouter(handler.RouterConfig{
		Logger:  logger,
		Tokens:  tokens,
		Metrics: recorder,
		Cache:   cacheClient,
		Auditor: publisher,

		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,

		LoginRateLimitEnabled: cfg.LoginRateLimitEnabled,
		LoginRateLimitRPS:     cfg.LoginRateLimitRPS,
		LoginRateLimitBurst:   cfg.LoginRateLimitBurst,

		Sessions:  handler.NewSessionHandler(sessionService, logger),
		Users:     handler.NewUserHandler(userService, logger),
		Pets:      handler.NewPetHandler(petService, logger),
		Adoptions: handler.NewAdoptionHandler(adoptionService, logger),
		Mocks:     handler.NewMockHandler(mockService, logger),
		Health:    handler.NewHealthHandler(repo, cacheClient),
		Metric:    handler.NewMetricsHandler(recorder),
	})

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if cfg.AuditWorkerEnabled {
		worker := audit.NewWorker(cacheClient.Client(), repo, logger, consumerID())
		if err := worker.Start(ctx); err != nil {
			logger.Error("failed to start audit worker", "error", err)
			os.Exit(1)
		}
		srv.OnShutdown("audit_worker", worker.Stop)
		logger.Info("audit worker started")
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.TokenTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// consumerID identifies this instance in the audit consumer group.
func consumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return uuid.New().String()
	}
	return host
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials from a connection URL for logging.
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

// sanitizeError removes connection secrets from error text before logging.
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
