// Package router sets up HTTP routes for the dashboard server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/ui/features/common"
	indicesFeature "github.com/indexlens/indexlens/internal/ui/features/indices"
	jobsFeature "github.com/indexlens/indexlens/internal/ui/features/jobs"
	previewFeature "github.com/indexlens/indexlens/internal/ui/features/preview"
	"github.com/indexlens/indexlens/internal/ui/registry"
)

// SetupRoutes configures all routes for the dashboard server.
func SetupRoutes(
	router chi.Router,
	client *search.Client,
	reg *registry.Registry,
	sessionStore *sessions.CookieStore,
	settings *common.Settings,
	logger *slog.Logger,
) error {
	if err := indicesFeature.SetupRoutes(router, client, settings, logger); err != nil {
		return err
	}

	if err := jobsFeature.SetupRoutes(router, client, logger); err != nil {
		return err
	}

	if err := previewFeature.SetupRoutes(router, reg, sessionStore, logger); err != nil {
		return err
	}

	return nil
}
