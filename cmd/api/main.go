// Package main is the entrypoint for the planets API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/planetsapi/planets/internal/auth"
	"github.com/planetsapi/planets/internal/cache"
	"github.com/planetsapi/planets/internal/config"
	"github.com/planetsapi/planets/internal/handler"
	"github.com/planetsapi/planets/internal/metrics"
	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/repository"
	"github.com/planetsapi/planets/internal/server"
	"github.com/planetsapi/planets/internal/service"
	"github.com/planetsapi/planets/internal/stocks"
)

const startupTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Dependency setup must finish within startupTimeout.
	setupCtx, cancelSetup := context.WithTimeout(ctx, startupTimeout)
	defer cancelSetup()

	// Database
	repo, err := repository.New(setupCtx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("error", err.Error()),
			slog.String("database_path", cfg.DatabasePath),
		)
		os.Exit(1)
	}
	logger.Info("opened database", slog.String("database_path", cfg.DatabasePath))

	if cfg.AutoMigrate {
		results, err := repo.Migrate(setupCtx)
		if err != nil {
			logger.Error("failed to migrate database", slog.String("error", err.Error()))
			_ = repo.Close()
			os.Exit(1)
		}
		for _, res := range results {
			logger.Info("applied migration", slog.Int64("version", res.Version), slog.String("path", res.Path))
		}
	}

	// Optional Redis for shared rate limiting
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(setupCtx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", err.Error()),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	// Auth
	hasher, err := auth.NewPasswordHasher(auth.DefaultParams)
	if err != nil {
		logger.Error("failed to initialize password hasher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to initialize token issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Services
	recorder := metrics.NewPrometheus()
	users := service.NewUserService(repo, hasher, tokens, recorder)
	planets := service.NewPlanetService(repo, recorder)
	stockCache := stocks.NewTableCache(
		stocks.FileLoader(cfg.StocksCSVPath),
		cfg.StocksCacheTTL,
		stocks.WithMetrics(recorder),
		stocks.WithLogger(logger),
	)
	stockService := stocks.NewService(stockCache, cfg.StocksQuoteDate)

	health := map[string]handler.HealthChecker{"database": repo, "redis": nil}
	var limiter middleware.Limiter = middleware.NewLocalLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	if cacheClient != nil {
		health["redis"] = cacheClient
		limiter = middleware.NewRedisLimiter(cacheClient, float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		Metrics:            recorder,
		MetricsHandler:     recorder.Handler(),
		Users:              users,
		Planets:            planets,
		Stocks:             stockService,
		Tokens:             tokens,
		Health:             health,
		Limiter:            limiter,
		RateLimitEnabled:   cfg.RateLimitEnabled,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the database.
	srv.OnShutdown("database", func(context.Context) error { return repo.Close() })
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"stocks_csv", cfg.StocksCSVPath,
		"stocks_cache_ttl", cfg.StocksCacheTTL.String(),
		"rate_limit_backend", limiterBackend(cacheClient),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", "planets-api"))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func limiterBackend(c *cache.Cache) string {
	if c == nil {
		return "memory"
	}
	return "redis"
}

// redactURL strips credentials from a connection URL before logging it.
func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if parsed.User != nil {
		parsed.User = url.User("redacted")
	}
	return parsed.String()
}
