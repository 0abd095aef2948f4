package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title         lipgloss.Style
	titleIndex    lipgloss.Style
	filterLabel   lipgloss.Style
	dim           lipgloss.Style
	errText       lipgloss.Style
	tableHeader   lipgloss.Style
	tableCell     lipgloss.Style
	tableSelected lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:         lipgloss.NewStyle().Bold(true),
		titleIndex:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		filterLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		dim:           lipgloss.NewStyle().Faint(true),
		errText:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		tableHeader:   lipgloss.NewStyle().Bold(true),
		tableCell:     lipgloss.NewStyle(),
		tableSelected: lipgloss.NewStyle().Reverse(true),
	}
}
