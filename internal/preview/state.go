// Package preview drives the data-preview lifecycle: list indices, pick
// one, derive the common display columns from its mappings, fetch sample
// rows, and re-fetch them when the filter query changes. One Session owns
// one State; every other surface (CLI, REPL, TUI, dashboard) renders from
// snapshots of it.
package preview

import (
	"github.com/indexlens/indexlens/internal/filterquery"
	"github.com/indexlens/indexlens/internal/mapping"
)

// Phase names a step of the preview lifecycle.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseIndexListLoading Phase = "indexListLoading"
	PhaseIndexListLoaded  Phase = "indexListLoaded"
	PhaseMappingsLoading  Phase = "mappingsLoading"
	PhaseColumnsReady     Phase = "columnsReady"
	PhaseRowsLoading      Phase = "rowsLoading"
	PhaseRowsReady        Phase = "rowsReady"
	PhaseError            Phase = "error"
)

// ColumnTypeString is the display type of every preview column. The
// grid renders opaque scalars; the underlying mapping types only decide
// which fields survive projection.
const ColumnTypeString = "string"

// Option is one selectable index.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Column is one display column of the preview grid.
type Column struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Row maps column ids to document values. Fields missing from a
// document are absent from the map.
type Row map[string]any

// State is the whole preview state. It is owned and mutated exclusively
// by its Session; consumers read copies via Snapshot. Collections are
// replaced wholesale on every commit, never mutated in place, so a
// snapshot stays valid after later commits.
type State struct {
	Phase         Phase              `json:"phase"`
	IndexOptions  []Option           `json:"indexOptions"`
	SelectedIndex string             `json:"selectedIndex"`
	Columns       []Column           `json:"columns"`
	Schema        filterquery.Schema `json:"schema"`
	Rows          []Row              `json:"rows"`
	TotalResults  int                `json:"totalResults"`
	Filter        string             `json:"filter"`
	LastError     string             `json:"lastError,omitempty"`
}

// DeriveColumns turns the fields surviving intersection and projection
// into display columns and the search-box schema used to validate
// filter queries.
func DeriveColumns(fields []mapping.Field) ([]Column, filterquery.Schema) {
	columns := make([]Column, 0, len(fields))
	schema := make(filterquery.Schema, len(fields))
	for _, f := range fields {
		columns = append(columns, Column{ID: f.Label, Type: ColumnTypeString})
		schema[f.Label] = ColumnTypeString
	}
	return columns, schema
}
