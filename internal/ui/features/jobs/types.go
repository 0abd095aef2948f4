package jobs

import "github.com/indexlens/indexlens/internal/search"

// JobsResponse is one window of the maintenance-job catalog.
type JobsResponse struct {
	Jobs      []search.JobInfo `json:"jobs"`
	TotalJobs int              `json:"totalJobs"`
}
