package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/indexlens/indexlens/internal/preview"
)

// chromeHeight is the number of lines around the body table: title,
// filter, status, and help.
const chromeHeight = 5

func (m *model) View() string {
	parts := []string{m.titleView()}

	if m.focus == focusPicker {
		parts = append(parts, "", m.picker.View())
	} else {
		parts = append(parts, m.filterView(), m.gridView())
	}

	parts = append(parts, m.statusView(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) titleView() string {
	title := "indexlens"
	if m.cluster != "" {
		title += "  " + m.cluster
	}
	if m.state.SelectedIndex != "" && m.focus != focusPicker {
		title += "  " + m.styles.titleIndex.Render(m.state.SelectedIndex)
	}
	return m.styles.title.Render(title)
}

func (m *model) filterView() string {
	if m.focus == focusFilter {
		return m.filter.View()
	}
	if m.state.Filter != "" {
		return m.styles.filterLabel.Render("/ ") + m.state.Filter
	}
	return m.styles.dim.Render("/ to filter")
}

func (m *model) gridView() string {
	if len(m.state.Columns) == 0 && !m.loading {
		switch m.state.Phase {
		case preview.PhaseRowsReady, preview.PhaseColumnsReady:
			return m.styles.dim.Render("\n  No fields are shared by every matched index.\n")
		}
	}
	return m.grid.View()
}

func (m *model) statusView() string {
	if m.loading {
		return m.spin.View() + " loading"
	}
	if m.status != "" {
		return m.styles.errText.Render(m.status)
	}
	if m.state.Phase == preview.PhaseError && m.state.LastError != "" {
		return m.styles.errText.Render(m.state.LastError)
	}

	if m.focus == focusPicker {
		return m.styles.dim.Render(fmt.Sprintf("%d indices", len(m.state.IndexOptions)))
	}
	return m.styles.dim.Render(fmt.Sprintf("%d of %d documents", len(m.state.Rows), m.state.TotalResults))
}
