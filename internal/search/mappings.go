package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/indexlens/indexlens/internal/mapping"
)

// GetMappings fetches and parses the mapping tree of every concrete
// index the name or pattern resolves to. The per-index order matches
// the backend response, as does the field order within each tree.
func (c *Client) GetMappings(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
	if pattern == "" {
		return nil, fmt.Errorf("index name or pattern is required")
	}

	req, err := c.newRequest(ctx, http.MethodGet, nil, nil, pattern, "_mapping")
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return mapping.ParseMappings(body)
}
