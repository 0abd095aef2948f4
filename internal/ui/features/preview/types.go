package preview

import "github.com/indexlens/indexlens/internal/preview"

// StateSignals is the signal tree patched into connected pages. The
// whole snapshot travels on every patch; datastar diffs it client-side.
type StateSignals struct {
	Preview preview.State `json:"preview"`
}

// SelectRequest is the body of POST /api/preview/index.
type SelectRequest struct {
	Index string `json:"index"`
}

// FilterRequest is the body of POST /api/preview/filter. An empty query
// clears the filter.
type FilterRequest struct {
	Query string `json:"query"`
}
