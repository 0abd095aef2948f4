package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/indexlens/indexlens/internal/tabular"
)

// JobInfo is one maintenance job configured on the cluster.
type JobInfo struct {
	ID                 string `json:"id"`
	IndexPattern       string `json:"indexPattern"`
	TargetIndex        string `json:"targetIndex"`
	Cron               string `json:"cron"`
	State              string `json:"state"`
	DocumentsProcessed int64  `json:"documentsProcessed"`
	PagesProcessed     int64  `json:"pagesProcessed"`
}

// ListJobs fetches every maintenance job. The catalog is small;
// windowing and sorting happen at the call site.
func (c *Client) ListJobs(ctx context.Context) ([]JobInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, "_rollup", "jobs")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Jobs []struct {
			Config struct {
				ID           string `json:"id"`
				IndexPattern string `json:"index_pattern"`
				RollupIndex  string `json:"rollup_index"`
				Cron         string `json:"cron"`
			} `json:"config"`
			Status struct {
				JobState string `json:"job_state"`
			} `json:"status"`
			Stats struct {
				DocumentsProcessed int64 `json:"documents_processed"`
				PagesProcessed     int64 `json:"pages_processed"`
			} `json:"stats"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding job catalog: %w", err)
	}

	jobs := make([]JobInfo, 0, len(decoded.Jobs))
	for _, j := range decoded.Jobs {
		jobs = append(jobs, JobInfo{
			ID:                 j.Config.ID,
			IndexPattern:       j.Config.IndexPattern,
			TargetIndex:        j.Config.RollupIndex,
			Cron:               j.Config.Cron,
			State:              j.Status.JobState,
			DocumentsProcessed: j.Stats.DocumentsProcessed,
			PagesProcessed:     j.Stats.PagesProcessed,
		})
	}
	return jobs, nil
}

// JobLess returns the ordering for a job catalog sort field.
func JobLess(field string) (func(a, b JobInfo) bool, error) {
	switch field {
	case "", "id":
		return tabular.StringLess(func(j JobInfo) string { return j.ID }), nil
	case "indexPattern":
		return tabular.StringLess(func(j JobInfo) string { return j.IndexPattern }), nil
	case "state":
		return tabular.StringLess(func(j JobInfo) string { return j.State }), nil
	case "documentsProcessed":
		return func(a, b JobInfo) bool { return a.DocumentsProcessed < b.DocumentsProcessed }, nil
	default:
		return nil, fmt.Errorf("unknown sort field: %s", field)
	}
}
