package preview_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indexlens/indexlens/internal/filterquery"
	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	listIndices func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error)
	getMappings func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error)
	search      func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error)
}

func (f *fakeBackend) ListIndices(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
	if f.listIndices == nil {
		return &search.IndicesResponse{}, nil
	}
	return f.listIndices(ctx, params)
}

func (f *fakeBackend) GetMappings(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
	if f.getMappings == nil {
		return nil, nil
	}
	return f.getMappings(ctx, pattern)
}

func (f *fakeBackend) Search(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
	if f.search == nil {
		return &search.SearchResponse{}, nil
	}
	return f.search(ctx, index, window, query)
}

func mustMappings(t *testing.T, body string) []mapping.IndexMappings {
	t.Helper()
	parsed, err := mapping.ParseMappings([]byte(body))
	require.NoError(t, err)
	return parsed
}

func docs(raw ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		out = append(out, json.RawMessage(r))
	}
	return out
}

// logsMappings resolves any pattern to one index with a text message
// field and a keyword level field.
func logsMappings(t *testing.T) func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
	t.Helper()
	body := testutil.MappingsBody(testutil.IndexProperties{
		Index:      "logs-2023",
		Properties: `{"message":{"type":"text"},"level":{"type":"keyword"}}`,
	})
	return func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
		return mustMappings(t, body), nil
	}
}

func TestSessionListIndices(t *testing.T) {
	var gotParams search.ListIndicesParams
	backend := &fakeBackend{
		listIndices: func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
			gotParams = params
			return &search.IndicesResponse{
				Indices: []search.IndexInfo{
					{Index: "logs-2023"},
					{Index: "logs-2022"},
				},
				TotalIndices: 2,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{
		IndexPageSize: 25,
		Logger:        testutil.NewTestLogger(t),
	})

	require.NoError(t, sess.ListIndices(context.Background()))

	assert.Equal(t, 25, gotParams.Size)
	assert.Equal(t, "index", gotParams.SortField)
	assert.Equal(t, "desc", gotParams.SortDirection)
	assert.False(t, gotParams.ShowDataStreams)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseIndexListLoaded, state.Phase)
	assert.Equal(t, []preview.Option{
		{Label: "logs-2023", Value: "logs-2023"},
		{Label: "logs-2022", Value: "logs-2022"},
	}, state.IndexOptions)
}

func TestSessionListIndicesBackendError(t *testing.T) {
	backend := &fakeBackend{
		listIndices: func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
			return nil, search.ErrUnavailable
		},
	}
	sess := preview.New(backend, preview.Config{})

	err := sess.ListIndices(context.Background())
	assert.ErrorIs(t, err, search.ErrUnavailable)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseError, state.Phase)
	assert.Empty(t, state.IndexOptions)
	assert.NotEmpty(t, state.LastError)
}

func TestSessionListIndicesNotFound(t *testing.T) {
	backend := &fakeBackend{
		listIndices: func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
			return nil, &search.BackendError{StatusCode: 404}
		},
	}
	sess := preview.New(backend, preview.Config{})

	require.NoError(t, sess.ListIndices(context.Background()))

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseIndexListLoaded, state.Phase)
	assert.Empty(t, state.IndexOptions)
	assert.Empty(t, state.LastError)
}

// The keyword-only policy keeps level out of message, and rows project
// only the surviving column.
func TestSessionSelectIndexEndToEnd(t *testing.T) {
	var gotWindow search.Window
	var gotQuery map[string]any
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			assert.Equal(t, "logs-2023", index)
			gotWindow = window
			gotQuery = query
			return &search.SearchResponse{
				Results: docs(
					`{"message":"disk full","level":"error"}`,
					`{"level":"warn","took":12}`,
				),
				TotalResults: 2,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{
		RowLimit: 100,
		Logger:   testutil.NewTestLogger(t),
	})

	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))

	assert.Nil(t, gotQuery)
	assert.Equal(t, search.Window{From: 0, Size: 100}, gotWindow)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseRowsReady, state.Phase)
	assert.Equal(t, "logs-2023", state.SelectedIndex)
	assert.Equal(t, []preview.Column{{ID: "level", Type: "string"}}, state.Columns)
	assert.Equal(t, filterquery.Schema{"level": "string"}, state.Schema)
	assert.Equal(t, 2, state.TotalResults)
	require.Len(t, state.Rows, 2)
	assert.Equal(t, preview.Row{"level": "error"}, state.Rows[0])
	assert.Equal(t, preview.Row{"level": "warn"}, state.Rows[1])
}

func TestSessionSelectIndexIntersectsResolvedIndices(t *testing.T) {
	body := testutil.MappingsBody(
		testutil.IndexProperties{
			Index:      "logs-2023.10",
			Properties: `{"level":{"type":"keyword"},"host":{"type":"keyword"},"extra":{"type":"keyword"}}`,
		},
		testutil.IndexProperties{
			Index:      "logs-2023.09",
			Properties: `{"host":{"type":"keyword"},"level":{"type":"keyword"}}`,
		},
	)
	backend := &fakeBackend{
		getMappings: func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
			return mustMappings(t, body), nil
		},
	}
	sess := preview.New(backend, preview.Config{})

	require.NoError(t, sess.SelectIndex(context.Background(), "logs-*"))

	// Common fields only, in the first resolved index's order.
	state := sess.Snapshot()
	assert.Equal(t, []preview.Column{
		{ID: "level", Type: "string"},
		{ID: "host", Type: "string"},
	}, state.Columns)
}

func TestSessionSelectIndexNotFound(t *testing.T) {
	backend := &fakeBackend{
		getMappings: func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
			return nil, &search.BackendError{StatusCode: 404}
		},
	}
	sess := preview.New(backend, preview.Config{})

	require.NoError(t, sess.SelectIndex(context.Background(), "missing"))

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseRowsReady, state.Phase)
	assert.Equal(t, "missing", state.SelectedIndex)
	assert.Empty(t, state.Columns)
	assert.Empty(t, state.Rows)
	assert.Empty(t, state.LastError)
}

func TestSessionSelectIndexMappingsFailure(t *testing.T) {
	backend := &fakeBackend{
		getMappings: func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
			return nil, &search.BackendError{StatusCode: 500, Body: "boom"}
		},
	}
	sess := preview.New(backend, preview.Config{})

	err := sess.SelectIndex(context.Background(), "logs-2023")
	require.Error(t, err)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseError, state.Phase)
	assert.Empty(t, state.Columns)
	assert.Empty(t, state.Rows)
	assert.Contains(t, state.LastError, "boom")
}

// A row fetch failure during selection clears to empty instead of
// leaving columns from the new index next to nothing.
func TestSessionSelectIndexRowFetchFailure(t *testing.T) {
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			return nil, search.ErrUnavailable
		},
	}
	sess := preview.New(backend, preview.Config{})

	err := sess.SelectIndex(context.Background(), "logs-2023")
	assert.ErrorIs(t, err, search.ErrUnavailable)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseError, state.Phase)
	assert.Empty(t, state.Columns)
	assert.Empty(t, state.Rows)
}

func TestSessionZeroMatchesIsValid(t *testing.T) {
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			return &search.SearchResponse{TotalResults: 0}, nil
		},
	}
	sess := preview.New(backend, preview.Config{})

	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseRowsReady, state.Phase)
	assert.NotNil(t, state.Rows)
	assert.Empty(t, state.Rows)
	assert.Zero(t, state.TotalResults)
}

func TestSessionApplyFilter(t *testing.T) {
	var gotQuery map[string]any
	calls := 0
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			calls++
			gotQuery = query
			if query == nil {
				return &search.SearchResponse{
					Results:      docs(`{"level":"warn"}`),
					TotalResults: 1,
				}, nil
			}
			return &search.SearchResponse{
				Results:      docs(`{"level":"error"}`),
				TotalResults: 1,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{})

	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))
	require.NoError(t, sess.ApplyFilter(context.Background(), "level:error"))

	assert.Equal(t, 2, calls)
	assert.Equal(t, map[string]any{
		"bool": map[string]any{
			"must": []any{
				map[string]any{"term": map[string]any{"level": "error"}},
			},
		},
	}, gotQuery)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseRowsReady, state.Phase)
	assert.Equal(t, "level:error", state.Filter)
	require.Len(t, state.Rows, 1)
	assert.Equal(t, preview.Row{"level": "error"}, state.Rows[0])
}

// Malformed input must not reach the backend and must not disturb the
// rows already displayed.
func TestSessionApplyFilterParseError(t *testing.T) {
	searches := 0
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			searches++
			return &search.SearchResponse{
				Results:      docs(`{"level":"warn"}`),
				TotalResults: 1,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{})
	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))
	before := sess.Snapshot()

	for _, input := range []string{"level:", "unknownfield:x", `"dangling`} {
		err := sess.ApplyFilter(context.Background(), input)
		require.Error(t, err, "input %q", input)

		var perr *filterquery.ParseError
		assert.ErrorAs(t, err, &perr, "input %q", input)
	}

	assert.Equal(t, 1, searches)
	after := sess.Snapshot()
	assert.Equal(t, before.Rows, after.Rows)
	assert.Equal(t, before.Filter, after.Filter)
	assert.Equal(t, preview.PhaseRowsReady, after.Phase)
}

func TestSessionApplyFilterBackendFailureKeepsRows(t *testing.T) {
	backend := &fakeBackend{
		getMappings: logsMappings(t),
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			if query != nil {
				return nil, search.ErrUnavailable
			}
			return &search.SearchResponse{
				Results:      docs(`{"level":"warn"}`),
				TotalResults: 1,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{})
	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))

	err := sess.ApplyFilter(context.Background(), "level:error")
	assert.ErrorIs(t, err, search.ErrUnavailable)

	state := sess.Snapshot()
	assert.Equal(t, preview.PhaseError, state.Phase)
	require.Len(t, state.Rows, 1)
	assert.Equal(t, preview.Row{"level": "warn"}, state.Rows[0])
}

func TestSessionApplyFilterWithoutSelection(t *testing.T) {
	sess := preview.New(&fakeBackend{}, preview.Config{})
	err := sess.ApplyFilter(context.Background(), "level:error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index selected")
}

// Selecting idx2 while idx1's row fetch is still in flight must leave
// idx2's rows in place even though idx1 resolves later.
func TestSessionStaleSelectIsDiscarded(t *testing.T) {
	idx1Started := make(chan struct{})
	releaseIdx1 := make(chan struct{})

	mappingsFor := func(index string) string {
		return testutil.MappingsBody(testutil.IndexProperties{
			Index:      index,
			Properties: `{"level":{"type":"keyword"}}`,
		})
	}
	backend := &fakeBackend{
		getMappings: func(ctx context.Context, pattern string) ([]mapping.IndexMappings, error) {
			return mustMappings(t, mappingsFor(pattern)), nil
		},
		search: func(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error) {
			if index == "idx1" {
				close(idx1Started)
				<-releaseIdx1
				return &search.SearchResponse{
					Results:      docs(`{"level":"from-idx1"}`),
					TotalResults: 1,
				}, nil
			}
			return &search.SearchResponse{
				Results:      docs(`{"level":"from-idx2"}`),
				TotalResults: 1,
			}, nil
		},
	}
	sess := preview.New(backend, preview.Config{Logger: testutil.NewTestLogger(t)})

	done := make(chan error, 1)
	go func() { done <- sess.SelectIndex(context.Background(), "idx1") }()

	<-idx1Started
	require.NoError(t, sess.SelectIndex(context.Background(), "idx2"))

	close(releaseIdx1)
	require.NoError(t, <-done)

	state := sess.Snapshot()
	assert.Equal(t, "idx2", state.SelectedIndex)
	assert.Equal(t, preview.PhaseRowsReady, state.Phase)
	require.Len(t, state.Rows, 1)
	assert.Equal(t, "from-idx2", state.Rows[0]["level"])
}

func TestSessionRefreshIndicesDebounce(t *testing.T) {
	var calls atomic.Int32
	backend := &fakeBackend{
		listIndices: func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
			calls.Add(1)
			return &search.IndicesResponse{}, nil
		},
	}
	sess := preview.New(backend, preview.Config{DebounceInterval: 20 * time.Millisecond})

	for i := 0; i < 5; i++ {
		sess.RefreshIndices(context.Background())
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 },
		time.Second, 5*time.Millisecond, "only the trailing call goes through")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSessionRefreshAfterCloseIsDropped(t *testing.T) {
	var calls atomic.Int32
	backend := &fakeBackend{
		listIndices: func(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error) {
			calls.Add(1)
			return &search.IndicesResponse{}, nil
		},
	}
	sess := preview.New(backend, preview.Config{DebounceInterval: 10 * time.Millisecond})

	sess.RefreshIndices(context.Background())
	sess.Close()
	sess.RefreshIndices(context.Background())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSessionOnChangeRunsOutsideOperations(t *testing.T) {
	var commits atomic.Int32
	backend := &fakeBackend{getMappings: logsMappings(t)}

	var sess *preview.Session
	sess = preview.New(backend, preview.Config{
		OnChange: func() {
			commits.Add(1)
			// Re-entering the session from the hook must not deadlock.
			_ = sess.Snapshot()
		},
	})

	require.NoError(t, sess.SelectIndex(context.Background(), "logs-2023"))
	assert.GreaterOrEqual(t, commits.Load(), int32(3))
}

func TestSessionInvalidInputs(t *testing.T) {
	sess := preview.New(&fakeBackend{}, preview.Config{})
	err := sess.SelectIndex(context.Background(), "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, search.ErrUnavailable))
}
