package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/indexlens/indexlens/internal/filterquery"
	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/search"
)

// Defaults and bounds for session configuration.
const (
	DefaultRowLimit         = 1000
	MaxRowLimit             = 10000
	DefaultDebounceInterval = 500 * time.Millisecond
)

// Backend is the slice of the search client a Session drives.
type Backend interface {
	ListIndices(ctx context.Context, params search.ListIndicesParams) (*search.IndicesResponse, error)
	GetMappings(ctx context.Context, pattern string) ([]mapping.IndexMappings, error)
	Search(ctx context.Context, index string, window search.Window, query map[string]any) (*search.SearchResponse, error)
}

// Config tunes a Session. The zero value applies the documented
// defaults.
type Config struct {
	// RowLimit caps each row fetch. Defaults to DefaultRowLimit and
	// clamps to MaxRowLimit.
	RowLimit int

	// IndexPageSize caps the index option list.
	IndexPageSize int

	// TypeFilter decides which intersected fields become display
	// columns. Defaults to mapping.KeywordOnly.
	TypeFilter mapping.TypeFilter

	// DebounceInterval is the trailing-edge coalescing window of
	// RefreshIndices.
	DebounceInterval time.Duration

	// OnChange, when set, runs after every state commit, outside the
	// session lock.
	OnChange func()

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// Session sequences the preview operations over one State. Operations
// run in the caller's goroutine and block only on backend calls; the
// lock is held around state access, never across a call. Every
// operation takes a new generation, and a completion commits only while
// its generation is still current, so a slow response can never
// overwrite the effects of a newer operation.
type Session struct {
	backend Backend
	cfg     Config

	mu           sync.Mutex
	state        State
	generation   uint64
	refreshTimer *time.Timer
	closed       bool
}

// New creates an idle Session over the backend.
func New(backend Backend, cfg Config) *Session {
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = DefaultRowLimit
	}
	if cfg.RowLimit > MaxRowLimit {
		cfg.RowLimit = MaxRowLimit
	}
	if cfg.IndexPageSize <= 0 {
		cfg.IndexPageSize = search.DefaultPageSize
	}
	if cfg.TypeFilter == nil {
		cfg.TypeFilter = mapping.KeywordOnly
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		backend: backend,
		cfg:     cfg,
		state: State{
			Phase:        PhaseIdle,
			IndexOptions: []Option{},
			Columns:      []Column{},
			Schema:       filterquery.Schema{},
			Rows:         []Row{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close drops any pending debounced refresh; later RefreshIndices calls
// are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
}

// begin starts a new operation: it supersedes everything in flight and
// moves the phase.
func (s *Session) begin(phase Phase) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state.Phase = phase
	s.mu.Unlock()
	s.notify()
	return gen
}

// commit applies mutate if gen is still current and reports whether it
// was.
func (s *Session) commit(gen uint64, mutate func(*State)) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.cfg.Logger.Debug("discarding superseded result", "generation", gen)
		return false
	}
	mutate(&s.state)
	s.mu.Unlock()
	s.notify()
	return true
}

// fail moves to the error phase and clears columns and rows, so stale
// data never renders against a failed selection.
func (s *Session) fail(gen uint64, err error) {
	s.commit(gen, func(st *State) {
		st.Columns = []Column{}
		st.Schema = filterquery.Schema{}
		st.Rows = []Row{}
		st.TotalResults = 0
		st.Phase = PhaseError
		st.LastError = err.Error()
	})
}

func (s *Session) notify() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}

// ListIndices loads the selectable index options: one window of index
// names by descending name, data stream backing indices excluded. On
// failure the option list is left empty and the error is surfaced; a
// backend not-found is an empty catalog, not a failure.
func (s *Session) ListIndices(ctx context.Context) error {
	gen := s.begin(PhaseIndexListLoading)

	resp, err := s.backend.ListIndices(ctx, search.ListIndicesParams{
		Size:          s.cfg.IndexPageSize,
		SortField:     "index",
		SortDirection: "desc",
	})
	if err != nil {
		if search.IsNotFound(err) {
			s.commit(gen, func(st *State) {
				st.IndexOptions = []Option{}
				st.Phase = PhaseIndexListLoaded
				st.LastError = ""
			})
			return nil
		}
		s.commit(gen, func(st *State) {
			st.IndexOptions = []Option{}
			st.Phase = PhaseError
			st.LastError = err.Error()
		})
		return err
	}

	options := make([]Option, 0, len(resp.Indices))
	for _, info := range resp.Indices {
		options = append(options, Option{Label: info.Index, Value: info.Index})
	}
	s.commit(gen, func(st *State) {
		st.IndexOptions = options
		st.Phase = PhaseIndexListLoaded
		st.LastError = ""
	})
	return nil
}

// RefreshIndices schedules a debounced ListIndices. Calls within the
// debounce window collapse; only the trailing call reaches the backend.
func (s *Session) RefreshIndices(ctx context.Context) {
	// The timer outlives the calling request.
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
	}
	s.refreshTimer = time.AfterFunc(s.cfg.DebounceInterval, func() {
		if err := s.ListIndices(ctx); err != nil {
			s.cfg.Logger.Warn("index refresh failed", "error", err)
		}
	})
}

// SelectIndex switches the preview to the named index or pattern:
// mappings, common columns across every resolved index, the search-box
// schema, then an unfiltered row fetch. Prior columns and rows are
// cleared up front rather than shown against the new selection, and
// failures clear to empty as well. A name resolving to no indices
// yields empty columns and rows.
func (s *Session) SelectIndex(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("index name is required")
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state.SelectedIndex = name
	s.state.Filter = ""
	s.state.Columns = []Column{}
	s.state.Schema = filterquery.Schema{}
	s.state.Rows = []Row{}
	s.state.TotalResults = 0
	s.state.Phase = PhaseMappingsLoading
	s.state.LastError = ""
	s.mu.Unlock()
	s.notify()

	mapped, err := s.backend.GetMappings(ctx, name)
	if err != nil {
		if search.IsNotFound(err) {
			s.commit(gen, func(st *State) {
				st.Phase = PhaseRowsReady
			})
			return nil
		}
		s.fail(gen, err)
		return err
	}

	perIndex := make([][]mapping.Field, 0, len(mapped))
	for _, im := range mapped {
		perIndex = append(perIndex, mapping.Collect("", im.Properties))
	}

	var display []mapping.Field
	if len(perIndex) > 0 {
		common, err := mapping.Intersect(perIndex)
		if err != nil {
			s.fail(gen, err)
			return err
		}
		display = mapping.Filter(common, s.cfg.TypeFilter)
	}

	columns, schema := DeriveColumns(display)
	if !s.commit(gen, func(st *State) {
		st.Columns = columns
		st.Schema = schema
		st.Phase = PhaseColumnsReady
	}) {
		return nil
	}

	return s.fetchRows(ctx, gen, name, nil, columns, "", true)
}

// ApplyFilter parses the query text against the current schema and
// re-fetches rows with the compiled filter. A parse failure is soft: no
// backend call is made and the displayed rows stay. A backend failure
// keeps the previous rows too; only a successful fetch replaces them.
func (s *Session) ApplyFilter(ctx context.Context, queryText string) error {
	s.mu.Lock()
	index := s.state.SelectedIndex
	schema := s.state.Schema
	s.mu.Unlock()

	if index == "" {
		return fmt.Errorf("no index selected")
	}

	parsed, err := filterquery.Parse(queryText, schema)
	if err != nil {
		return err
	}
	query := filterquery.Compile(parsed, schema)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	columns := s.state.Columns
	s.mu.Unlock()

	return s.fetchRows(ctx, gen, index, query, columns, queryText, false)
}

// fetchRows loads one window of rows and commits them together with the
// filter text that produced the query. clearOnFailure distinguishes the
// selection path (clear to empty) from the filter path (keep prior
// rows).
func (s *Session) fetchRows(ctx context.Context, gen uint64, index string, query map[string]any, columns []Column, filter string, clearOnFailure bool) error {
	if !s.commit(gen, func(st *State) {
		st.Phase = PhaseRowsLoading
	}) {
		return nil
	}

	resp, err := s.backend.Search(ctx, index, search.Window{Size: s.cfg.RowLimit}, query)
	if err != nil {
		if search.IsNotFound(err) {
			s.commit(gen, func(st *State) {
				st.Rows = []Row{}
				st.TotalResults = 0
				st.Filter = filter
				st.Phase = PhaseRowsReady
				st.LastError = ""
			})
			return nil
		}
		if clearOnFailure {
			s.fail(gen, err)
		} else {
			s.commit(gen, func(st *State) {
				st.Phase = PhaseError
				st.LastError = err.Error()
			})
		}
		return err
	}

	rows := ProjectRows(resp.Results, columns)
	s.commit(gen, func(st *State) {
		st.Rows = rows
		st.TotalResults = resp.TotalResults
		st.Filter = filter
		st.Phase = PhaseRowsReady
		st.LastError = ""
	})
	return nil
}
