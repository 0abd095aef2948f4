// Package jobs serves the maintenance-job catalog route of the
// dashboard API.
package jobs

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/tabular"
	"github.com/indexlens/indexlens/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the maintenance-job feature.
type Handlers struct {
	client *search.Client
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *search.Client, logger *slog.Logger) *Handlers {
	return &Handlers{client: client, logger: logger}
}

// List answers one window of the job catalog. Clusters without the
// rollup API report an empty catalog.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.client.ListJobs(r.Context())
	if err != nil {
		if search.IsNotFound(err) {
			jobs = []search.JobInfo{}
		} else {
			h.logger.Error("listing jobs failed", "error", err)
			common.RespondErr(w, err)
			return
		}
	}

	q := r.URL.Query()
	less, err := search.JobLess(q.Get("sortField"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err)
		return
	}
	tabular.Order(jobs, less, strings.EqualFold(q.Get("sortDirection"), "desc"))

	from := common.QueryInt(r, "from", 0)
	size := common.QueryInt(r, "size", search.DefaultPageSize)

	common.RespondOK(w, JobsResponse{
		Jobs:      tabular.Page(jobs, from, size),
		TotalJobs: len(jobs),
	})
}
