package indices

import "github.com/indexlens/indexlens/internal/mapping"

// FieldsResponse carries the fields every resolved index shares.
type FieldsResponse struct {
	Pattern string          `json:"pattern"`
	Indices []string        `json:"indices"`
	Fields  []mapping.Field `json:"fields"`
	Total   int             `json:"total"`
}
