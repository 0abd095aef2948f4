package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/indexlens/indexlens/internal/tabular"
)

// DefaultPageSize is the index catalog window used when the caller does
// not ask for a specific size.
const DefaultPageSize = 50

// dataStreamPrefix marks backing indices managed by a data stream.
const dataStreamPrefix = ".ds-"

// IndexInfo is one row of the cluster's index catalog. The count and
// size columns stay strings, as the catalog endpoint reports them.
type IndexInfo struct {
	Index     string `json:"index"`
	Health    string `json:"health"`
	Status    string `json:"status"`
	DocsCount string `json:"docs.count"`
	StoreSize string `json:"store.size"`
}

// ListIndicesParams selects and windows the index catalog. The zero
// value lists the first DefaultPageSize indices by descending name.
type ListIndicesParams struct {
	// Pattern restricts the catalog to matching index names, backend
	// side. Empty lists everything.
	Pattern string
	// From and Size window the result after filtering and sorting.
	From int
	Size int
	// Search keeps only index names containing this substring,
	// case-insensitively.
	Search string
	// SortField is one of index, health, status, docs.count,
	// store.size. Empty means index.
	SortField string
	// SortDirection is asc or desc. Empty means desc, the order the
	// preview surfaces present newest-first index names in.
	SortDirection string
	// ShowDataStreams keeps data stream backing indices in the catalog.
	ShowDataStreams bool
}

// IndicesResponse is one window of the index catalog.
type IndicesResponse struct {
	Indices      []IndexInfo `json:"indices"`
	TotalIndices int         `json:"totalIndices"`
}

// ListIndices fetches the index catalog and returns the requested
// window. Filtering, sorting and windowing happen locally on the
// catalog snapshot; TotalIndices counts the filtered set, not the page.
func (c *Client) ListIndices(ctx context.Context, params ListIndicesParams) (*IndicesResponse, error) {
	query := url.Values{}
	query.Set("format", "json")
	// Plain byte counts keep the size column numerically sortable.
	query.Set("bytes", "b")

	elems := []string{"_cat", "indices"}
	if params.Pattern != "" {
		elems = append(elems, params.Pattern)
	}

	req, err := c.newRequest(ctx, http.MethodGet, query, nil, elems...)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var all []IndexInfo
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("decoding index catalog: %w", err)
	}

	filtered := make([]IndexInfo, 0, len(all))
	needle := strings.ToLower(params.Search)
	for _, info := range all {
		if !params.ShowDataStreams && strings.HasPrefix(info.Index, dataStreamPrefix) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(info.Index), needle) {
			continue
		}
		filtered = append(filtered, info)
	}

	less, err := indexLess(params.SortField)
	if err != nil {
		return nil, err
	}
	descending := params.SortDirection == "" || strings.EqualFold(params.SortDirection, "desc")
	tabular.Order(filtered, less, descending)

	size := params.Size
	if size <= 0 {
		size = DefaultPageSize
	}

	return &IndicesResponse{
		Indices:      tabular.Page(filtered, params.From, size),
		TotalIndices: len(filtered),
	}, nil
}

func indexLess(field string) (func(a, b IndexInfo) bool, error) {
	switch field {
	case "", "index":
		return tabular.StringLess(func(i IndexInfo) string { return i.Index }), nil
	case "health":
		return tabular.StringLess(func(i IndexInfo) string { return i.Health }), nil
	case "status":
		return tabular.StringLess(func(i IndexInfo) string { return i.Status }), nil
	case "docs.count":
		return tabular.NumberLess(func(i IndexInfo) string { return i.DocsCount }), nil
	case "store.size":
		return tabular.NumberLess(func(i IndexInfo) string { return i.StoreSize }), nil
	default:
		return nil, fmt.Errorf("unknown sort field: %s", field)
	}
}
