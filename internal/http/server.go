// Package http exposes the ledger over a JSON API. The browser (or any
// other collaborator, like the speech capture front end) submits raw
// utterances; parsing, admission, and persistence happen here.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kassabot/internal/cache"
	"kassabot/internal/core"
	"kassabot/internal/log"
	"kassabot/internal/services"
)

// Server wires the ledger service into HTTP routes.
type Server struct {
	svc            *services.LedgerService
	backendName    string
	logger         *log.Logger
	statsCache     *cache.LRUCache[core.Stats]
	metricsEnabled bool

	// now is the reference time for period bucketing, injectable in tests.
	now func() time.Time
}

func NewServer(svc *services.LedgerService, backendName string, logger *log.Logger) *Server {
	return &Server{
		svc:         svc,
		backendName: backendName,
		logger:      logger.WithComponent(log.ComponentHTTP),
		statsCache:  cache.NewLRUCache[core.Stats](64, 5*time.Minute),
		now:         time.Now,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": s.backendName,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/grouped", s.handleGroupedEntries)
			r.Get("/{id}", s.handleGetEntry)
			r.Put("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})
		r.Get("/statistics", s.handleStatistics)
		r.Get("/categories", s.handleCategories)
		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/export/db", s.handleExportDatabase)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
