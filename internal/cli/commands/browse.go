package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/indexlens/indexlens/internal/tui"
)

// BrowseOptions contains options for the browse command.
type BrowseOptions struct {
	Limit int
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse [index]",
		Short: "Browse indices and documents in a full-screen terminal UI",
		Long: `Open a full-screen terminal browser over the cluster: pick an index
from the catalog, page through its newest documents, and narrow them
with filter queries. With an index argument the picker is skipped and
that index loads directly.`,
		Example: `  # Pick an index interactively
  indexlens browse

  # Jump straight into an index
  indexlens browse logs-2023.10

  # Cap the fetched rows
  indexlens browse logs-2023.10 --limit 100`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			stdout, ok := cmd.OutOrStdout().(*os.File)
			if !ok || !isTerminal(stdout) {
				return fmt.Errorf("browse needs a terminal; use 'indexlens preview' for scripted output")
			}

			sess, err := newPreviewSession(cmdCtx, opts.Limit)
			if err != nil {
				return err
			}
			defer sess.Close()

			var index string
			if len(args) > 0 {
				index = args[0]
			}

			return tui.Run(cmd.Context(), tui.Options{
				Session: sess,
				Index:   index,
				Cluster: cmdCtx.Cfg.Cluster.URL,
				Logger:  cmdCtx.Logger,
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of documents to fetch (defaults to the configured row limit)")

	return cmd
}
