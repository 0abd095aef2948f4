package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/indexlens/indexlens/internal/cli/config"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/ui"
	"github.com/indexlens/indexlens/internal/ui/features/common"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the indexlens web dashboard",
		Long: `Start a local web server providing the interactive dashboard.

The dashboard provides:
- Index catalog with search and sorting
- Shared fields across the indices a pattern matches
- Live document preview with the filter query language
- Maintenance job listing`,
		Example: `  # Start the dashboard on the default port
  indexlens serve

  # Start on a custom port
  indexlens serve --port 3000

  # Pick up indexlens.yaml changes while running
  indexlens serve --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8790)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload settings when the config file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	// Get dashboard config with defaults
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	sessionTTL, err := time.ParseDuration(uiCfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("invalid ui.session_ttl %q: %w", uiCfg.SessionTTL, err)
	}

	configPath := config.GetConfigFileUsed()
	if watch && configPath == "" {
		cmdCtx.Logger.Warn("no config file in use, nothing to watch")
		watch = false
	}

	settings := common.NewSettings(cfg.RowLimit, cfg.FieldTypes, preview.DefaultDebounceInterval)

	// Re-read the file on watch events. Flags keep their precedence
	// over file and environment values.
	reload := func() error {
		fresh, err := config.LoadConfig(configPath, cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		if err := fresh.Validate(); err != nil {
			return err
		}
		for _, warning := range fresh.Normalize() {
			cmdCtx.Logger.Warn(warning)
		}
		settings.Update(fresh.RowLimit, fresh.FieldTypes, settings.Debounce())
		return nil
	}

	server := ui.NewServer(ui.Config{
		Client:        cmdCtx.Client,
		Settings:      settings,
		Host:          uiCfg.Host,
		Port:          port,
		Watch:         watch,
		ConfigPath:    configPath,
		Reload:        reload,
		SessionSecret: sessionSecret(),
		SessionTTL:    sessionTTL,
		Logger:        cmdCtx.Logger,
	})

	// Open browser if configured
	if !opts.NoBrowser {
		url := fmt.Sprintf("http://%s:%d", uiCfg.Host, port)
		go openBrowser(url)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting dashboard on http://%s:%d\n", uiCfg.Host, port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the cookie signing secret.
// Deployments should set INDEXLENS_SESSION_SECRET; the fallback only
// suits local use.
func sessionSecret() string {
	secret := os.Getenv("INDEXLENS_SESSION_SECRET")
	if secret == "" {
		secret = "indexlens-dev-secret-change-in-production" //nolint:gosec
	}
	return secret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
