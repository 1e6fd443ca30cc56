package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/cache"
	"github.com/adoptly/adoptly/internal/metrics"
	"github.com/adoptly/adoptly/internal/middleware"
)

// RouterConfig wires handlers and cross-cutting middleware into the route
// tree. Cache may be nil; the login rate limiter then passes through.
// Auditor may be nil; authentication successes are then not audited.
type RouterConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenService
	Metrics metrics.Recorder
	Cache   *cache.Cache
	Auditor middleware.Auditor

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64

	LoginRateLimitEnabled bool
	LoginRateLimitRPS     int
	LoginRateLimitBurst   int

	Sessions  *SessionHandler
	Users     *UserHandler
	Pets      *PetHandler
	Adoptions *AdoptionHandler
	Mocks     *MockHandler
	Health    *HealthHandler
	Metric    *MetricsHandler
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment,
	}))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
		r.Use(middleware.CORS(corsCfg))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:  cfg.Logger,
		Tokens:  cfg.Tokens,
		Metrics: cfg.Metrics,
		Auditor: cfg.Auditor,
	})
	requireAdmin := middleware.RequireAdmin()
	loginLimiter := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:       cfg.Logger,
		Cache:        cfg.Cache,
		LoginEnabled: cfg.LoginRateLimitEnabled,
		LoginRPS:     cfg.LoginRateLimitRPS,
		LoginBurst:   cfg.LoginRateLimitBurst,
	})

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/register", cfg.Sessions.Register)
		r.With(loginLimiter).Post("/login", cfg.Sessions.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", cfg.Sessions.Logout)
			r.Get("/current", cfg.Sessions.Current)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.With(requireAdmin).Get("/", cfg.Users.List)
		r.Get("/{uid}", cfg.Users.Get)
		r.Put("/{uid}", cfg.Users.Update)
		r.With(requireAdmin).Delete("/{uid}", cfg.Users.Delete)
		r.Post("/{uid}/documents", cfg.Users.AddDocuments)
	})

	r.Route("/pets", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cfg.Pets.List)
		r.Get("/{pid}", cfg.Pets.Get)
		r.With(requireAdmin).Post("/", cfg.Pets.Create)
		r.With(requireAdmin).Put("/{pid}", cfg.Pets.Update)
	})

	r.Route("/adoptions", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cfg.Adoptions.List)
		r.Get("/{aid}", cfg.Adoptions.Get)
		r.Post("/{uid}/{pid}", cfg.Adoptions.Adopt)
		r.With(requireAdmin).Put("/{aid}", cfg.Adoptions.UpdateStatus)
	})

	r.Route("/mocks", func(r chi.Router) {
		r.Get("/mockingpets", cfg.Mocks.MockingPets)
		r.Get("/mockingusers", cfg.Mocks.MockingUsers)
		r.Post("/generatedata", cfg.Mocks.GenerateData)
	})

	r.With(requireAuth, requireAdmin).Get("/metrics", cfg.Metric.Snapshot)

	return r
}
