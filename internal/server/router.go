package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/planetsapi/planets/internal/handler"
	"github.com/planetsapi/planets/internal/metrics"
	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/service"
	"github.com/planetsapi/planets/internal/stocks"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	Users   *service.UserService
	Planets *service.PlanetService
	Stocks  *stocks.Service
	Tokens  middleware.TokenVerifier

	// Health maps dependency names to checkers for GET /readyz.
	Health map[string]handler.HealthChecker

	Limiter            middleware.Limiter
	RateLimitEnabled   bool
	TrustProxyHeaders  bool
	IsDevelopment      bool
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}

	h := handler.New()
	healthHandler := handler.NewHealthHandler(cfg.Health)
	authHandler := handler.NewAuthHandler(cfg.Users, cfg.Logger)
	planetHandler := handler.NewPlanetHandler(cfg.Planets, cfg.Logger)
	stockHandler := handler.NewStockHandler(cfg.Stocks, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Service endpoints
	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Planets
	r.Get("/planets", planetHandler.List)
	r.Get("/planet_details/{id}", planetHandler.Get)
	r.With(middleware.RequireBearer(middleware.BearerConfig{
		Logger:   cfg.Logger,
		Verifier: cfg.Tokens,
	})).Post("/add_planet", planetHandler.Add)

	// Accounts, throttled per client IP
	rateLimit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Logger:  cfg.Logger,
			Limiter: cfg.Limiter,
			Enabled: cfg.RateLimitEnabled,
			Scope:   scope,
		})
	}
	r.With(rateLimit("register")).Post("/register", authHandler.Register)
	r.With(rateLimit("login")).Post("/login", authHandler.Login)

	// Stock prices
	r.Get("/stocks/{ticker}", stockHandler.Quote)
	r.Get("/stocks/{ticker}/{date}", stockHandler.History)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
