package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/service"
)

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, sim service.Simulator) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewWorldHandler(sim).Register(api)
	}
}

// NewRouter builds the gin engine with logging, recovery and rate limiting,
// wrapped in the CORS handler.
func NewRouter(cfg config.HTTPConfig, repo Pinger, sim service.Simulator, logger zerolog.Logger) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	if cfg.RateLimit > 0 {
		r.Use(RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	Register(r, repo, sim)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
	})
	return c.Handler(r)
}
