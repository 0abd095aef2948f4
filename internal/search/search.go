package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// Window bounds a document fetch.
type Window struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// SearchResponse is one window of matching documents.
type SearchResponse struct {
	// Results holds the raw source document of each hit.
	Results []json.RawMessage `json:"results"`
	// TotalResults is the backend's total hit count for the query.
	TotalResults int `json:"totalResults"`
}

// Search fetches documents from the index. The query must be a query
// DSL fragment; nil fetches unfiltered.
func (c *Client) Search(ctx context.Context, index string, window Window, query map[string]any) (*SearchResponse, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	body := map[string]any{
		"from": window.From,
		"size": window.Size,
	}
	if query != nil {
		body["query"] = query
	}
	if c.opts.TrackTotalHits {
		body["track_total_hits"] = true
	}

	values := url.Values{}
	if c.opts.IgnoreUnavailable {
		values.Set("ignore_unavailable", "true")
	}
	if c.opts.ExpandWildcards != "" {
		values.Set("expand_wildcards", c.opts.ExpandWildcards)
	}

	req, err := c.newRequest(ctx, http.MethodPost, values, body, index, "_search")
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	// Older backends report hits.total as a bare number instead of an
	// object.
	total := gjson.GetBytes(raw, "hits.total.value")
	if !total.Exists() {
		total = gjson.GetBytes(raw, "hits.total")
	}

	resp := &SearchResponse{TotalResults: int(total.Int())}
	for _, hit := range gjson.GetBytes(raw, "hits.hits.#._source").Array() {
		resp.Results = append(resp.Results, json.RawMessage(hit.Raw))
	}
	return resp, nil
}
