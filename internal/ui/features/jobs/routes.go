package jobs

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/indexlens/indexlens/internal/search"
)

// SetupRoutes registers the maintenance-job routes.
func SetupRoutes(router chi.Router, client *search.Client, logger *slog.Logger) error {
	handlers := NewHandlers(client, logger)

	router.Get("/api/jobs", handlers.List)

	return nil
}
