// Package output renders command results as styled text, markdown, or JSON.
//
// The mode is chosen by the user or auto-detected: interactive terminals
// get styled text, pipes get markdown so results stay readable in logs
// and scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// OutputMode selects how command results are rendered.
type OutputMode string

// Supported output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode parses a mode name. Unknown names fall back to auto.
func Mode(s string) OutputMode {
	switch strings.ToLower(s) {
	case "text":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Renderer writes command results in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool

	styles styles
}

type styles struct {
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

// NewRenderer creates a Renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a Renderer with an explicit TTY state so
// tests can pin the auto mode resolution.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: styles{
			header:  lr.NewStyle().Bold(true),
			success: lr.NewStyle().Foreground(lipgloss.Color("2")),
			warning: lr.NewStyle().Foreground(lipgloss.Color("3")),
			failure: lr.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// EffectiveMode resolves auto to text on terminals and markdown elsewhere.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the destination for primary output. JSON encoders and
// table writers attach here.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the destination for diagnostics.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes one line of primary output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted primary output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a section heading.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.header.Render(text))
		return
	}
	_, _ = fmt.Fprintln(r.out, FormatHeader(level, text))
}

// Success writes a confirmation line.
func (r *Renderer) Success(s string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.out, r.styles.success.Render("✓")+" "+s)
		return
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(s string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.warning.Render("!")+" "+s)
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "Warning: "+s)
}

// Failure writes an error line to the error stream.
func (r *Renderer) Failure(s string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.failure.Render("✗")+" "+s)
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "Error: "+s)
}

// StatusLine writes a name with a status marker and optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	marker := "•"
	switch status {
	case "success":
		marker = "✓"
	case "warning":
		marker = "!"
	case "error":
		marker = "✗"
	case "skipped":
		marker = "-"
	}
	if r.EffectiveMode() == ModeText {
		switch status {
		case "success":
			marker = r.styles.success.Render(marker)
		case "warning":
			marker = r.styles.warning.Render(marker)
		case "error":
			marker = r.styles.failure.Render(marker)
		}
	}
	line := fmt.Sprintf("  %s %s", marker, name)
	if detail != "" {
		line += " (" + detail + ")"
	}
	_, _ = fmt.Fprintln(r.out, line)
}

// Table renders headers and rows: a light box table in text mode, a
// pipe table in markdown mode.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.markdownTable(headers, rows)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, c := range row {
			cells[i] = c
		}
		t.AppendRow(cells)
	}
	t.Render()
}

// markdownTable writes header labels verbatim, unlike the styled
// renderer which applies the table style's header casing.
func (r *Renderer) markdownTable(headers []string, rows [][]string) {
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(headers, " | "))

	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(row, " | "))
	}
}

// RowCount writes the trailing counter under a table, with the window
// total when it exceeds the rows shown.
func (r *Renderer) RowCount(shown, total int) {
	if total > shown {
		_, _ = fmt.Fprintf(r.out, "(%d of %d rows)\n", shown, total)
		return
	}
	_, _ = fmt.Fprintf(r.out, "(%d rows)\n", shown)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
