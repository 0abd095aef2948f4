package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/indexlens/indexlens/internal/preview"
)

// focus names the pane receiving key input.
type focus int

const (
	focusPicker focus = iota
	focusGrid
	focusFilter
)

// sessionMsg reports a finished session operation. The model re-reads
// the snapshot on receipt; err carries failures the session does not
// record itself, such as filter parse errors.
type sessionMsg struct {
	err error
}

type model struct {
	ctx     context.Context
	sess    *preview.Session
	logger  *slog.Logger
	cluster string

	state preview.State

	focus   focus
	picker  table.Model
	grid    table.Model
	filter  textinput.Model
	spin    spinner.Model
	keys    keyMap
	help    help.Model
	styles  styles
	loading bool
	status  string

	// initial is the index to select once the option list arrives.
	initial string

	width  int
	height int
}

func newModel(ctx context.Context, opts Options) *model {
	m := &model{
		ctx:     ctx,
		sess:    opts.Session,
		logger:  opts.Logger,
		cluster: opts.Cluster,
		state:   opts.Session.Snapshot(),
		initial: opts.Index,
		keys:    defaultKeyMap(),
		help:    help.New(),
		styles:  newStyles(),
		filter:  textinput.New(),
		spin:    spinner.New(),
	}
	m.spin.Spinner = spinner.Dot
	m.filter.Placeholder = "field:value terms..."
	m.filter.Prompt = "/ "
	m.filter.CharLimit = 256

	m.picker = table.New(
		table.WithFocused(true),
		table.WithHeight(defaultBodyHeight),
	)
	m.picker.SetColumns([]table.Column{{Title: "index", Width: defaultPickerWidth}})

	m.grid = table.New(table.WithHeight(defaultBodyHeight))

	// Zero the default cell padding so column widths line up with the
	// terminal width math.
	ts := table.DefaultStyles()
	ts.Header = m.styles.tableHeader
	ts.Cell = m.styles.tableCell
	ts.Selected = m.styles.tableSelected
	m.picker.SetStyles(ts)
	m.grid.SetStyles(ts)

	return m
}

const (
	defaultBodyHeight  = 20
	defaultPickerWidth = 48
)

func (m *model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.listIndices(), m.spin.Tick)
}

// listIndices, selectIndex, and applyFilter wrap the blocking session
// calls as commands so the event loop stays responsive.

func (m *model) listIndices() tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{err: m.sess.ListIndices(m.ctx)}
	}
}

func (m *model) selectIndex(name string) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{err: m.sess.SelectIndex(m.ctx, name)}
	}
}

func (m *model) applyFilter(text string) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{err: m.sess.ApplyFilter(m.ctx, text)}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionMsg:
		return m.onSessionMsg(msg)

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

// onSessionMsg folds a finished operation into the model: snapshot the
// session, rebuild both tables, and surface any error in the status
// line. A pending initial index selection fires once the option list
// has loaded.
func (m *model) onSessionMsg(msg sessionMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.state = m.sess.Snapshot()
	m.status = ""
	if msg.err != nil {
		m.status = msg.err.Error()
		m.logger.Debug("session operation failed", "error", msg.err)
	}
	m.rebuildPicker()
	m.rebuildGrid()

	if m.initial != "" && m.state.Phase == preview.PhaseIndexListLoaded {
		name := m.initial
		m.initial = ""
		return m, m.startSelect(name)
	}
	return m, nil
}

func (m *model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.focus {
	case focusFilter:
		return m.onFilterKey(msg)
	case focusGrid:
		return m.onGridKey(msg)
	default:
		return m.onPickerKey(msg)
	}
}

func (m *model) onPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.listIndices(), m.spin.Tick)
	case key.Matches(msg, m.keys.Select):
		idx := m.picker.Cursor()
		if idx < 0 || idx >= len(m.state.IndexOptions) {
			return m, nil
		}
		return m, m.startSelect(m.state.IndexOptions[idx].Value)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *model) onGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.focus = focusPicker
		m.picker.Focus()
		m.grid.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.focus = focusFilter
		m.grid.Blur()
		m.filter.SetValue(m.state.Filter)
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.applyFilter(m.state.Filter), m.spin.Tick)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *model) onFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusGrid
		m.filter.Blur()
		m.grid.Focus()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.filter.Value())
		m.focus = focusGrid
		m.filter.Blur()
		m.grid.Focus()
		m.loading = true
		return m, tea.Batch(m.applyFilter(text), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// startSelect switches to the grid pane and kicks off the selection.
func (m *model) startSelect(name string) tea.Cmd {
	m.focus = focusGrid
	m.picker.Blur()
	m.grid.Focus()
	m.filter.SetValue("")
	m.loading = true
	return tea.Batch(m.selectIndex(name), m.spin.Tick)
}

func (m *model) rebuildPicker() {
	rows := make([]table.Row, 0, len(m.state.IndexOptions))
	for _, opt := range m.state.IndexOptions {
		rows = append(rows, table.Row{opt.Label})
	}
	m.picker.SetRows(rows)
	if c := m.picker.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.picker.SetCursor(len(rows) - 1)
	}
}

func (m *model) rebuildGrid() {
	cols := layoutColumns(m.bodyWidth(), m.state.Columns)
	rows := make([]table.Row, 0, len(m.state.Rows))
	for _, r := range m.state.Rows {
		cells := make(table.Row, 0, len(m.state.Columns))
		for _, c := range m.state.Columns {
			cells = append(cells, output.FormatCell(r[c.ID]))
		}
		rows = append(rows, cells)
	}
	// Columns must be set before rows so the table does not index into
	// a stale column set.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	m.grid.GotoTop()
}

func (m *model) resize() {
	body := m.height - chromeHeight
	if body < 3 {
		body = 3
	}
	m.picker.SetHeight(body)
	m.grid.SetHeight(body)
	m.picker.SetWidth(m.width)
	m.grid.SetWidth(m.width)

	pw := m.bodyWidth()
	if pw > 0 {
		m.picker.SetColumns([]table.Column{{Title: "index", Width: pw}})
	}
	m.rebuildGrid()
}

func (m *model) bodyWidth() int {
	if m.width <= 0 {
		return defaultGridWidth
	}
	return m.width - 2
}

const defaultGridWidth = 118

// Column width bounds for the document grid.
const (
	minColWidth = 8
	maxColWidth = 40
)

// layoutColumns spreads the available width across the display columns.
// Narrow terminals keep every column at the minimum and let the table
// truncate the overflow on the right.
func layoutColumns(width int, cols []preview.Column) []table.Column {
	if len(cols) == 0 {
		return nil
	}
	per := width / len(cols)
	if per < minColWidth {
		per = minColWidth
	}
	if per > maxColWidth {
		per = maxColWidth
	}
	out := make([]table.Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, table.Column{Title: c.ID, Width: per})
	}
	return out
}
