package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/tabular"
	"github.com/spf13/cobra"
)

// JobsOptions holds options for the jobs command.
type JobsOptions struct {
	Sort      string
	Direction string
	From      int
	Size      int
}

// NewJobsCommand creates the jobs command.
func NewJobsCommand() *cobra.Command {
	opts := &JobsOptions{}

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List maintenance jobs configured on the cluster",
		Long: `List the cluster's rollup maintenance jobs with their schedules
and progress counters. Clusters without the rollup API report an empty
list.`,
		Example: `  # List jobs by id
  indexlens jobs

  # Busiest jobs first
  indexlens jobs --sort documentsProcessed --direction desc

  # Output as JSON
  indexlens jobs --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJobs(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort field: id, indexPattern, state, documentsProcessed")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "Sort direction: asc or desc")
	cmd.Flags().IntVar(&opts.From, "from", 0, "Window offset into the sorted catalog")
	cmd.Flags().IntVar(&opts.Size, "size", 0, fmt.Sprintf("Window size (default %d)", search.DefaultPageSize))

	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"id", "indexPattern", "state", "documentsProcessed"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runJobs(cmd *cobra.Command, opts *JobsOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	jobs, err := cmdCtx.Client.ListJobs(cmd.Context())
	if err != nil {
		if search.IsNotFound(err) {
			jobs = []search.JobInfo{}
		} else {
			return err
		}
	}

	less, err := search.JobLess(opts.Sort)
	if err != nil {
		return err
	}
	tabular.Order(jobs, less, strings.EqualFold(opts.Direction, "desc"))

	total := len(jobs)
	size := opts.Size
	if size <= 0 {
		size = search.DefaultPageSize
	}
	jobs = tabular.Page(jobs, opts.From, size)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(jobs)
	}

	r.Header(1, "Maintenance jobs")
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID,
			j.IndexPattern,
			j.TargetIndex,
			j.Cron,
			j.State,
			strconv.FormatInt(j.DocumentsProcessed, 10),
		})
	}
	r.Table([]string{"id", "pattern", "target", "cron", "state", "docs"}, rows)
	r.RowCount(len(jobs), total)

	return nil
}
