package preview

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/indexlens/indexlens/internal/ui/registry"
)

// SetupRoutes registers the preview feature routes.
func SetupRoutes(
	router chi.Router,
	reg *registry.Registry,
	sessionStore sessions.Store,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(reg, sessionStore, logger)

	router.Route("/api/preview", func(r chi.Router) {
		r.Get("/", handlers.State)
		r.Delete("/", handlers.Drop)
		r.Post("/index", handlers.SelectIndex)
		r.Post("/filter", handlers.ApplyFilter)
		r.Post("/refresh", handlers.Refresh)
		r.Get("/events", handlers.Events)
	})

	return nil
}
