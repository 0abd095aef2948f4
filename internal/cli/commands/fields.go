package commands

import (
	"fmt"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/spf13/cobra"
)

// FieldsOptions holds options for the fields command.
type FieldsOptions struct {
	Types string
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	opts := &FieldsOptions{}

	cmd := &cobra.Command{
		Use:   "fields <pattern>",
		Short: "Show fields shared by every index a pattern matches",
		Long: `Resolve a name or pattern to its concrete indices and list the
fields present with the same type in every one of them. Field order
follows the first index's mapping.

By default only keyword fields are shown. Use --types to widen the
selection.`,
		Example: `  # Fields shared by all logs indices
  indexlens fields "logs-*"

  # Include text fields
  indexlens fields "logs-*" --types string

  # Every leaf field, regardless of type
  indexlens fields "logs-*" --types all

  # Output as JSON
  indexlens fields "logs-*" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Types, "types", "", "Field types to keep: keyword, string, or all")

	_ = cmd.RegisterFlagCompletionFunc("types", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"keyword", "string", "all"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runFields(cmd *cobra.Command, pattern string, opts *FieldsOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	policy := opts.Types
	if policy == "" {
		policy = cmdCtx.Cfg.FieldTypes
	}
	keep, err := mapping.FilterForPolicy(policy)
	if err != nil {
		return err
	}

	mappings, err := cmdCtx.Client.GetMappings(cmd.Context(), pattern)
	if err != nil && !search.IsNotFound(err) {
		return err
	}

	indices := make([]string, 0, len(mappings))
	perIndex := make([][]mapping.Field, 0, len(mappings))
	for _, m := range mappings {
		indices = append(indices, m.Index)
		perIndex = append(perIndex, mapping.Collect("", m.Properties))
	}

	var fields []mapping.Field
	if len(perIndex) > 0 {
		shared, err := mapping.Intersect(perIndex)
		if err != nil {
			return err
		}
		fields = mapping.Filter(shared, keep)
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := output.FieldsOutput{
			Pattern: pattern,
			Indices: indices,
			Fields:  make([]output.FieldInfo, 0, len(fields)),
			Total:   len(fields),
		}
		for _, f := range fields {
			out.Fields = append(out.Fields, output.FieldInfo{Label: f.Label, Type: f.Type, Path: f.Path})
		}
		return r.JSON(out)
	}

	if len(indices) == 0 {
		r.Warning(fmt.Sprintf("no indices match %q", pattern))
		return nil
	}

	r.Header(1, fmt.Sprintf("Shared fields: %s (%d indices)", pattern, len(indices)))
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Label, f.Type})
	}
	r.Table([]string{"field", "type"}, rows)
	r.RowCount(len(fields), len(fields))

	return nil
}
