// Package ui provides the web dashboard server for indexlens.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/ui/features/common"
	"github.com/indexlens/indexlens/internal/ui/registry"
	"github.com/indexlens/indexlens/internal/ui/router"
)

// Server is the dashboard HTTP server.
type Server struct {
	client       *search.Client
	sessionStore *sessions.CookieStore
	settings     *common.Settings
	registry     *registry.Registry
	host         string
	port         int
	watch        bool
	configPath   string
	reload       func() error
	logger       *slog.Logger
}

// Config holds configuration for the dashboard server.
type Config struct {
	// Client reaches the cluster every session previews.
	Client *search.Client

	// Settings carries the tunables shared by handlers and new preview
	// sessions. A reload updates it in place.
	Settings *common.Settings

	Host string
	Port int

	// Watch re-reads ConfigPath when the file changes and pings every
	// connected page.
	Watch      bool
	ConfigPath string

	// Reload re-reads the configuration into Settings. Invoked on
	// ConfigPath changes; an error keeps the previous settings.
	Reload func() error

	// SessionSecret signs the session cookies.
	SessionSecret string

	// SessionTTL evicts preview sessions idle longer than this. Zero
	// applies the registry default.
	SessionTTL time.Duration

	Logger *slog.Logger
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		client:       cfg.Client,
		sessionStore: sessionStore,
		settings:     cfg.Settings,
		host:         cfg.Host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		configPath:   cfg.ConfigPath,
		reload:       cfg.Reload,
		logger:       cfg.Logger,
	}
	s.registry = registry.New(s.newSession, cfg.SessionTTL, cfg.Logger)
	return s
}

// newSession builds a preview session from the current settings. It runs
// once per browser session, so a reload reaches sessions created after
// it, not the ones already open.
func (s *Server) newSession(onChange func()) *preview.Session {
	keep, err := mapping.FilterForPolicy(s.settings.Policy())
	if err != nil {
		s.logger.Warn("unknown field type policy, falling back to keyword",
			"policy", s.settings.Policy())
		keep = mapping.KeywordOnly
	}
	return preview.New(s.client, preview.Config{
		RowLimit:         s.settings.RowLimit(),
		TypeFilter:       keep,
		DebounceInterval: s.settings.Debounce(),
		OnChange:         onChange,
		Logger:           s.logger,
	})
}

// Serve starts the dashboard server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	s.logger.Info("starting dashboard server", "addr", fmt.Sprintf("http://%s", addr))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.client, s.registry, s.sessionStore, s.settings, s.logger); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start config watcher if enabled
	if s.watch && s.configPath != "" {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	s.registry.Close()
	return err
}

// watchConfig watches the config file for changes. Editors tend to
// replace the file rather than write it in place, so the parent
// directory is watched and events are matched by base name.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.configPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch config directory", "dir", dir, "error", err)
		// Don't fail - continue without watching
		return nil
	}
	s.logger.Info("watching config file", "path", s.configPath)

	base := filepath.Base(s.configPath)

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != base {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, s.applyReload)

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// applyReload re-reads the config and pings every connected page. New
// sessions pick up the new tuning; sessions already open keep the
// values they started with.
func (s *Server) applyReload() {
	s.logger.Info("config file changed, reloading")
	if s.reload != nil {
		if err := s.reload(); err != nil {
			s.logger.Error("config reload failed, keeping previous settings", "error", err)
			return
		}
	}
	s.registry.Broadcast()
}
