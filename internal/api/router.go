package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/atelis/pisweep/internal/api/handlers"
	"github.com/atelis/pisweep/internal/api/middleware"
	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/journal"
	"github.com/atelis/pisweep/internal/scheduler"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRouter creates the read-only operator API.
func NewRouter(cfg *config.Config, status *scheduler.StatusStore, db *journal.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogging)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler(cfg, Version))
		r.Get("/status", handlers.StatusHandler(status))
		r.Get("/submissions", handlers.SubmissionsHandler(db))
	})

	slog.Info("router initialized", "routes", []string{"/api/health", "/api/status", "/api/submissions"})

	return r
}
