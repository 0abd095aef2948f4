package indices

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/ui/features/common"
)

// SetupRoutes registers the index catalog routes.
func SetupRoutes(router chi.Router, client *search.Client, settings *common.Settings, logger *slog.Logger) error {
	handlers := NewHandlers(client, settings, logger)

	router.Route("/api/indices", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Get("/{name}/fields", handlers.Fields)
	})

	return nil
}
