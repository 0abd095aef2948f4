package commands

import (
	"fmt"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/spf13/cobra"
)

// IndicesOptions holds options for the indices command.
type IndicesOptions struct {
	Search    string
	Sort      string
	Direction string
	From      int
	Size      int
}

// NewIndicesCommand creates the indices command.
func NewIndicesCommand() *cobra.Command {
	opts := &IndicesOptions{}

	cmd := &cobra.Command{
		Use:   "indices [pattern]",
		Short: "List indices in the cluster",
		Long: `List the cluster's indices with health, status, and size.

Data stream backing indices are hidden unless --data-streams is set.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List the newest indices
  indexlens indices

  # List indices matching a pattern, backend side
  indexlens indices "logs-*"

  # Substring search over index names
  indexlens indices --search 2023.10

  # Largest indices first
  indexlens indices --sort store.size --direction desc

  # Output as JSON
  indexlens indices --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndices(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "Keep only index names containing this substring")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort field: index, health, status, docs.count, store.size")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "Sort direction: asc or desc")
	cmd.Flags().IntVar(&opts.From, "from", 0, "Window offset into the sorted catalog")
	cmd.Flags().IntVar(&opts.Size, "size", 0, fmt.Sprintf("Window size (default %d)", search.DefaultPageSize))

	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"index", "health", "status", "docs.count", "store.size"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runIndices(cmd *cobra.Command, args []string, opts *IndicesOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	params := search.ListIndicesParams{
		From:            opts.From,
		Size:            opts.Size,
		Search:          opts.Search,
		SortField:       opts.Sort,
		SortDirection:   opts.Direction,
		ShowDataStreams: cmdCtx.Cfg.ShowDataStreams,
	}
	if len(args) > 0 {
		params.Pattern = args[0]
	}

	resp, err := cmdCtx.Client.ListIndices(cmd.Context(), params)
	if err != nil {
		if search.IsNotFound(err) {
			resp = &search.IndicesResponse{Indices: []search.IndexInfo{}}
		} else {
			return err
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(resp)
	}

	r.Header(1, "Indices")
	rows := make([][]string, 0, len(resp.Indices))
	for _, info := range resp.Indices {
		rows = append(rows, []string{info.Index, info.Health, info.Status, info.DocsCount, info.StoreSize})
	}
	r.Table([]string{"index", "health", "status", "docs", "size"}, rows)
	r.RowCount(len(resp.Indices), resp.TotalIndices)

	return nil
}
