package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ClusterInfo is the identity payload served on the cluster root
// endpoint.
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Ping fetches the cluster identity from the root endpoint. It is the
// cheapest call that exercises the address, TLS settings, and
// credentials at once.
func (c *Client) Ping(ctx context.Context) (*ClusterInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var info ClusterInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding cluster info: %w", err)
	}
	return &info, nil
}
