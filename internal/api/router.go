// Package api serves player stats, comparisons and name search over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/observability"
)

// NewRouter mounts the handler's routes behind request logging, panic
// recovery, a per-request timeout and a GET-only CORS policy.
//
// Precondition: h and logger must be non-nil.
func NewRouter(h *Handler, cfg config.HTTPConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(observability.HTTPMiddleware(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Accept", "Content-Type", observability.RequestIDHeader},
		ExposedHeaders: []string{observability.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, logger, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, logger, http.StatusMethodNotAllowed, codeBadRequest, r.Method+" not allowed")
	})

	r.Get("/health", h.Health)
	r.Get("/player-stats/{player_id}", h.PlayerStats)
	r.Get("/compare", h.Compare)
	r.Get("/compare/", h.Compare)
	r.Get("/search-player/{name}", h.SearchPlayers)

	return r
}
