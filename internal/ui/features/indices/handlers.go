// Package indices serves the index catalog and shared-field routes of
// the dashboard API.
package indices

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the index catalog feature.
type Handlers struct {
	client   *search.Client
	settings *common.Settings
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *search.Client, settings *common.Settings, logger *slog.Logger) *Handlers {
	return &Handlers{
		client:   client,
		settings: settings,
		logger:   logger,
	}
}

// List answers one window of the index catalog.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := search.ListIndicesParams{
		From:            common.QueryInt(r, "from", 0),
		Size:            common.QueryInt(r, "size", 0),
		Search:          q.Get("search"),
		SortField:       q.Get("sortField"),
		SortDirection:   q.Get("sortDirection"),
		ShowDataStreams: q.Get("showDataStreams") == "true",
	}

	resp, err := h.client.ListIndices(r.Context(), params)
	if err != nil {
		if search.IsNotFound(err) {
			common.RespondOK(w, &search.IndicesResponse{Indices: []search.IndexInfo{}})
			return
		}
		h.logger.Error("listing indices failed", "error", err)
		common.RespondErr(w, err)
		return
	}

	common.RespondOK(w, resp)
}

// Fields answers the fields shared by every index the pattern resolves
// to, projected through the type policy. A pattern matching nothing is
// an empty field set, not a failure.
func (h *Handlers) Fields(w http.ResponseWriter, r *http.Request) {
	pattern := chi.URLParam(r, "name")

	policy := r.URL.Query().Get("policy")
	if policy == "" {
		policy = h.settings.Policy()
	}
	keep, err := mapping.FilterForPolicy(policy)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err)
		return
	}

	mapped, err := h.client.GetMappings(r.Context(), pattern)
	if err != nil && !search.IsNotFound(err) {
		h.logger.Error("fetching mappings failed", "pattern", pattern, "error", err)
		common.RespondErr(w, err)
		return
	}

	resolved := make([]string, 0, len(mapped))
	perIndex := make([][]mapping.Field, 0, len(mapped))
	for _, im := range mapped {
		resolved = append(resolved, im.Index)
		perIndex = append(perIndex, mapping.Collect("", im.Properties))
	}

	fields := []mapping.Field{}
	if len(perIndex) > 0 {
		shared, err := mapping.Intersect(perIndex)
		if err != nil {
			common.RespondErr(w, err)
			return
		}
		fields = mapping.Filter(shared, keep)
	}

	common.RespondOK(w, FieldsResponse{
		Pattern: pattern,
		Indices: resolved,
		Fields:  fields,
		Total:   len(fields),
	})
}
