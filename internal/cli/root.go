// Package cli provides the command-line interface for indexlens.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/indexlens/indexlens/internal/cli/commands"
	"github.com/indexlens/indexlens/internal/cli/config"
	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	clusterFlag string
	cfg         *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "indexlens",
		Short: "indexlens - Search Index Browser",
		Long: `indexlens browses the indices of an Elasticsearch-compatible cluster.

It lists indices, resolves the fields their mappings share, and previews
documents as a table with a small field:value filter language.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with optional cluster override and CLI flags
			var err error
			cfg, err = config.LoadConfigWithCluster(cfgFile, clusterFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Create the renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			for _, warning := range cfg.Normalize() {
				renderer.Warning(warning)
			}

			// Store config, renderer, and logger in context
			ctx := WithConfig(cmd.Context(), cfg)
			ctx = WithRenderer(ctx, renderer)
			ctx = context.WithValue(ctx, config.LoggerKey(), newLogger(cfg.Verbose))
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
				if clusterFlag != "" {
					fmt.Fprintf(os.Stderr, "Using cluster: %s\n", clusterFlag)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Search index browser
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./indexlens.yaml)")
	rootCmd.PersistentFlags().StringVarP(&clusterFlag, "cluster", "c", "", "Named cluster from the clusters section")
	rootCmd.PersistentFlags().String("url", "", "Cluster base URL")
	rootCmd.PersistentFlags().String("username", "", "Basic auth username")
	rootCmd.PersistentFlags().String("password", "", "Basic auth password")
	rootCmd.PersistentFlags().Bool("insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().Int("row-limit", 0, "Maximum rows fetched per preview")
	rootCmd.PersistentFlags().String("field-types", "", "Field types shown as columns (keyword|string|all)")
	rootCmd.PersistentFlags().Bool("data-streams", false, "Include data stream backing indices in listings")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for field-types flag
	_ = rootCmd.RegisterFlagCompletionFunc("field-types", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"keyword", "string", "all"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for cluster flag using the clusters section
	_ = rootCmd.RegisterFlagCompletionFunc("cluster", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		loaded, err := config.LoadConfig(cfgFile, nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(loaded.Clusters))
		for name := range loaded.Clusters {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewIndicesCommand())
	rootCmd.AddCommand(commands.NewFieldsCommand())
	rootCmd.AddCommand(commands.NewPreviewCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger. Terminals get colored tint output,
// pipes get plain text lines. Only warnings surface unless verbose is
// set.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if isTerminal(os.Stderr) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for indexlens.

To load completions:

Bash:
  $ source <(indexlens completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ indexlens completion bash > /etc/bash_completion.d/indexlens
  # macOS:
  $ indexlens completion bash > $(brew --prefix)/etc/bash_completion.d/indexlens

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ indexlens completion zsh > "${fpath[1]}/_indexlens"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ indexlens completion fish | source

  # To load completions for each session, execute once:
  $ indexlens completion fish > ~/.config/fish/completions/indexlens.fish

PowerShell:
  PS> indexlens completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> indexlens completion powershell > indexlens.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
