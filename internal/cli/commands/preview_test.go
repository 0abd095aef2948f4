package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// previewCluster fakes the two endpoints a preview touches and records
// the search request bodies it receives.
type previewCluster struct {
	mu      sync.Mutex
	queries []map[string]any
}

func (pc *previewCluster) searchBodies() []map[string]any {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return append([]map[string]any(nil), pc.queries...)
}

func startPreviewServer(t *testing.T) *previewCluster {
	t.Helper()
	pc := &previewCluster{}

	mappings := testutil.MappingsBody(testutil.IndexProperties{
		Index:      "logs-2023.10.01",
		Properties: `{"level":{"type":"keyword"},"message":{"type":"text"}}`,
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/_mapping"):
			_, _ = fmt.Fprint(w, mappings)
		case strings.HasSuffix(r.URL.Path, "/_search"):
			body, _ := io.ReadAll(r.Body)
			var decoded map[string]any
			_ = json.Unmarshal(body, &decoded)
			pc.mu.Lock()
			pc.queries = append(pc.queries, decoded)
			pc.mu.Unlock()
			_, _ = fmt.Fprint(w, testutil.SearchBody(2,
				`{"level":"error","message":"disk full"}`,
				`{"level":"warn","message":"slow request"}`,
			))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("INDEXLENS_CLUSTER_URL", srv.URL)
	return pc
}

func TestPreviewCommandJSON(t *testing.T) {
	startPreviewServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "json")

	cmd := NewPreviewCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"logs-2023.10.01"})

	require.NoError(t, cmd.Execute())

	var got output.PreviewOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, "logs-2023.10.01", got.Index)
	// message is text and the default policy keeps keyword only.
	assert.Equal(t, []string{"level"}, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "error", got.Rows[0]["level"])
	assert.Equal(t, "warn", got.Rows[1]["level"])
	assert.Equal(t, 2, got.TotalResults)
}

func TestPreviewCommandFilter(t *testing.T) {
	pc := startPreviewServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "json")

	cmd := NewPreviewCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"logs-2023.10.01", "--filter", "level:error"})

	require.NoError(t, cmd.Execute())

	// Selection fetches unfiltered, the filter refetches with a query.
	bodies := pc.searchBodies()
	require.Len(t, bodies, 2)
	_, hasQuery := bodies[0]["query"]
	assert.False(t, hasQuery)
	assert.Equal(t, map[string]any{
		"bool": map[string]any{
			"must": []any{
				map[string]any{"term": map[string]any{"level": "error"}},
			},
		},
	}, bodies[1]["query"])

	var got output.PreviewOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "level:error", got.Filter)
}

func TestPreviewCommandFilterParseError(t *testing.T) {
	startPreviewServer(t)

	cmd := NewPreviewCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"logs-2023.10.01", "--filter", "level:"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestPreviewCommandLimit(t *testing.T) {
	pc := startPreviewServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "json")

	cmd := NewPreviewCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"logs-2023.10.01", "--limit", "25"})

	require.NoError(t, cmd.Execute())

	bodies := pc.searchBodies()
	require.Len(t, bodies, 1)
	assert.Equal(t, float64(25), bodies[0]["size"])
}

func TestPreviewCommandMarkdown(t *testing.T) {
	startPreviewServer(t)
	t.Setenv("INDEXLENS_OUTPUT", "markdown")

	cmd := NewPreviewCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"logs-2023.10.01"})

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "# Preview: logs-2023.10.01")
	assert.Contains(t, got, "| level |")
	assert.Contains(t, got, "| error |")
	assert.Contains(t, got, "(2 rows)")
}

func TestPreviewCommandRequiresIndexWhenPiped(t *testing.T) {
	startPreviewServer(t)

	// Piped stdin is not a terminal, so the REPL never starts.
	cmd := NewPreviewCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index name required")
}
