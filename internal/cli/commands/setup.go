package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/indexlens/indexlens/internal/cli/config"
	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Client   *search.Client
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a search client and
// renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	client, err := search.New(*cfg.Cluster, logger)
	if err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Client:   client,
		Renderer: r,
	}, nil
}

// NewCommandContextWithoutClient creates a CommandContext without a
// search client. Useful for commands that never reach the cluster.
func NewCommandContextWithoutClient(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back
// to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	rowLimit := config.DefaultRowLimit
	if v, err := strconv.Atoi(os.Getenv("INDEXLENS_ROW_LIMIT")); err == nil && v > 0 {
		rowLimit = v
	}

	return &config.Config{
		Cluster: &config.ClusterConfig{
			URL:      getEnvOrDefault("INDEXLENS_CLUSTER_URL", config.DefaultClusterURL),
			Username: os.Getenv("INDEXLENS_CLUSTER_USERNAME"),
			Password: os.Getenv("INDEXLENS_CLUSTER_PASSWORD"),
		},
		RowLimit:        rowLimit,
		FieldTypes:      getEnvOrDefault("INDEXLENS_FIELD_TYPES", config.DefaultFieldTypes),
		ShowDataStreams: os.Getenv("INDEXLENS_SHOW_DATA_STREAMS") == "true",
		Verbose:         os.Getenv("INDEXLENS_VERBOSE") == "true",
		OutputFormat:    os.Getenv("INDEXLENS_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
