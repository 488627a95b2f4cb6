package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/api/handlers"
	"github.com/testforge/hrm-e2e/internal/api/middleware"
	"github.com/testforge/hrm-e2e/internal/observability"
	"github.com/testforge/hrm-e2e/internal/runner"
	"github.com/testforge/hrm-e2e/pkg/httputil"
)

// HealthChecker is a dependency probed by /ready
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router holds the HTTP router and its dependencies
type Router struct {
	chi.Router
	Runs   *handlers.RunHandler
	logger *zap.Logger
}

// RouterConfig contains configuration for the router
type RouterConfig struct {
	// Context bounds background runs
	Context       context.Context
	Runs          handlers.RunService
	Catalog       []runner.Scenario
	Checks        map[string]HealthChecker
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Token         string
	CORSOrigins   []string
	RunsPerMinute int
}

// NewRouter creates the report server router
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.HTTPMiddleware)
	}
	r.Use(chimw.Timeout(30 * time.Second))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.Checks))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	runs := handlers.NewRunHandler(cfg.Context, cfg.Runs, cfg.Catalog, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scenarios", runs.ListScenarios)
		r.Get("/report", runs.LatestReport)
		r.Get("/runs/status", runs.Status)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewTokenMiddleware(cfg.Token).Handler)
			r.Use(middleware.NewRateLimitMiddleware(cfg.RunsPerMinute).Handler)
			r.Post("/runs", runs.StartRun)
		})
	})

	return &Router{
		Router: r,
		Runs:   runs,
		logger: cfg.Logger,
	}
}

// healthHandler returns basic health status
func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hrm-e2e",
	})
}

// readyHandler checks every configured dependency
func readyHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := make(map[string]string, len(checks))
		allHealthy := true

		for name, c := range checks {
			if err := c.Health(r.Context()); err != nil {
				results[name] = "unhealthy: " + err.Error()
				allHealthy = false
				continue
			}
			results[name] = "healthy"
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		httputil.JSON(w, status, map[string]any{
			"status": statusText,
			"checks": results,
		})
	}
}
