package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/indexlens/indexlens/internal/cli/config"
	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starterConfig is the shape of the generated indexlens.yaml. It is
// marshaled rather than templated so the keys cannot drift from the
// loader's schema.
type starterConfig struct {
	Cluster struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username,omitempty"`
		Password string `yaml:"password,omitempty"`
	} `yaml:"cluster"`
	RowLimit   int    `yaml:"row_limit"`
	FieldTypes string `yaml:"field_types"`
	UI         struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"ui"`
}

const starterHeader = `# indexlens configuration
#
# The cluster section points at an Elasticsearch-compatible REST API.
# Credentials may reference environment variables as ${VAR}.
# Add named clusters under a clusters section and pick one with
# --cluster.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter configuration file",
		Long: `Write an indexlens.yaml starter configuration into the target
directory. The cluster URL comes from the active configuration, so
--url carries through into the generated file.`,
		Example: `  # Initialize in current directory
  indexlens init

  # Initialize pointing at a specific cluster
  indexlens init --url https://search.internal:9200

  # Force overwrite existing config
  indexlens init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, cfg, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, cfg *config.Config, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "indexlens.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("indexlens.yaml already exists. Use --force to overwrite")
	}

	var starter starterConfig
	starter.Cluster.URL = config.DefaultClusterURL
	if cfg.Cluster != nil && cfg.Cluster.URL != "" {
		starter.Cluster.URL = cfg.Cluster.URL
	}
	starter.RowLimit = config.DefaultRowLimit
	starter.FieldTypes = config.DefaultFieldTypes
	ui := config.DefaultUIConfig()
	starter.UI.Port = ui.Port
	starter.UI.Host = ui.Host

	body, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := os.WriteFile(configPath, append([]byte(starterHeader), body...), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine("indexlens.yaml", "success", "")
	r.Println("")
	r.Success("indexlens configuration initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point the cluster section at your search cluster")
	r.Println("  2. Run 'indexlens indices' to list indices")
	r.Println("  3. Run 'indexlens preview' to browse documents")
	r.Println("  4. Run 'indexlens serve' for the web dashboard")

	return nil
}
