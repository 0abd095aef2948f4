package commands

import (
	"fmt"
	"os"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/spf13/cobra"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Filter string
	Limit  int
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview [index]",
		Short: "Preview documents from an index as a table",
		Long: `Preview an index's newest documents as a table of its keyword
fields. A name or pattern resolving to several indices shows the fields
they all share, in the first index's order.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Preview the newest documents
  indexlens preview logs-2023.10

  # Preview with a filter
  indexlens preview logs-2023.10 --filter "level:error"

  # Fewer rows
  indexlens preview logs-2023.10 --limit 20

  # Output as JSON
  indexlens preview logs-2023.10 --output json

  # Interactive mode
  indexlens preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "Filter query (field:value pairs)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum rows to fetch")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string, opts *PreviewOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if stdin, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(stdin) {
			return runPreviewREPL(cmd, cmdCtx, opts)
		}
		return fmt.Errorf("index name required when not running on a terminal")
	}

	sess, err := newPreviewSession(cmdCtx, opts.Limit)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SelectIndex(cmd.Context(), args[0]); err != nil {
		return err
	}
	if opts.Filter != "" {
		if err := sess.ApplyFilter(cmd.Context(), opts.Filter); err != nil {
			return err
		}
	}

	return renderPreview(cmdCtx.Renderer, sess.Snapshot())
}

// newPreviewSession builds a Session from the command's configuration.
// A limit of zero falls back to the configured row limit.
func newPreviewSession(cmdCtx *CommandContext, limit int) (*preview.Session, error) {
	keep, err := mapping.FilterForPolicy(cmdCtx.Cfg.FieldTypes)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = cmdCtx.Cfg.RowLimit
	}
	return preview.New(cmdCtx.Client, preview.Config{
		RowLimit:   limit,
		TypeFilter: keep,
		Logger:     cmdCtx.Logger,
	}), nil
}

// renderPreview renders a preview state in the renderer's mode.
func renderPreview(r *output.Renderer, state preview.State) error {
	if r.EffectiveMode() == output.ModeJSON {
		out := output.PreviewOutput{
			Index:        state.SelectedIndex,
			Columns:      make([]string, 0, len(state.Columns)),
			Rows:         make([]map[string]any, 0, len(state.Rows)),
			TotalResults: state.TotalResults,
			Filter:       state.Filter,
		}
		for _, c := range state.Columns {
			out.Columns = append(out.Columns, c.ID)
		}
		for _, row := range state.Rows {
			out.Rows = append(out.Rows, row)
		}
		return r.JSON(out)
	}

	r.Header(1, fmt.Sprintf("Preview: %s", state.SelectedIndex))
	if state.Filter != "" {
		r.Println(fmt.Sprintf("Filter: %s", state.Filter))
	}

	headers := make([]string, 0, len(state.Columns))
	for _, c := range state.Columns {
		headers = append(headers, c.ID)
	}
	rows := make([][]string, 0, len(state.Rows))
	for _, row := range state.Rows {
		cells := make([]string, 0, len(state.Columns))
		for _, c := range state.Columns {
			cells = append(cells, output.FormatCell(row[c.ID]))
		}
		rows = append(rows, cells)
	}
	r.Table(headers, rows)
	r.RowCount(len(rows), state.TotalResults)

	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
