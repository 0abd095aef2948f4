package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/indexlens/indexlens/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(mode output.OutputMode, isTTY bool) (*output.Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return output.NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want output.OutputMode
	}{
		{"text", output.ModeText},
		{"TEXT", output.ModeText},
		{"markdown", output.ModeMarkdown},
		{"md", output.ModeMarkdown},
		{"json", output.ModeJSON},
		{"auto", output.ModeAuto},
		{"", output.ModeAuto},
		{"bogus", output.ModeAuto},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, output.Mode(tt.in), "Mode(%q)", tt.in)
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  output.OutputMode
		isTTY bool
		want  output.OutputMode
	}{
		{"auto on terminal is text", output.ModeAuto, true, output.ModeText},
		{"auto piped is markdown", output.ModeAuto, false, output.ModeMarkdown},
		{"explicit json wins over terminal", output.ModeJSON, true, output.ModeJSON},
		{"explicit markdown wins over terminal", output.ModeMarkdown, true, output.ModeMarkdown},
		{"explicit text survives pipe", output.ModeText, false, output.ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestTableMarkdown(t *testing.T) {
	r, out, _ := newRenderer(output.ModeMarkdown, false)
	r.Table([]string{"index", "health"}, [][]string{
		{"logs-2023.10", "green"},
		{"logs-2023.09", "yellow"},
	})

	got := out.String()
	assert.Contains(t, got, "| index |")
	assert.Contains(t, got, "| logs-2023.10 | green |")
	assert.Contains(t, got, "| ---")
}

func TestTableText(t *testing.T) {
	r, out, _ := newRenderer(output.ModeText, true)
	r.Table([]string{"INDEX"}, [][]string{{"logs-2023.10"}})

	got := out.String()
	assert.Contains(t, got, "INDEX")
	assert.Contains(t, got, "logs-2023.10")
	assert.NotContains(t, got, "| logs-2023.10 |")
}

func TestHeaderByMode(t *testing.T) {
	r, out, _ := newRenderer(output.ModeMarkdown, false)
	r.Header(2, "Indices")
	assert.Equal(t, "## Indices\n", out.String())

	r, out, _ = newRenderer(output.ModeText, false)
	r.Header(2, "Indices")
	assert.Equal(t, "Indices\n", out.String())
}

func TestWarningAndFailureGoToErrStream(t *testing.T) {
	r, out, errOut := newRenderer(output.ModeMarkdown, false)
	r.Warning("row limit clamped")
	r.Failure("backend unreachable")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Warning: row limit clamped")
	assert.Contains(t, errOut.String(), "Error: backend unreachable")
}

func TestRowCount(t *testing.T) {
	r, out, _ := newRenderer(output.ModeText, false)
	r.RowCount(3, 3)
	r.RowCount(50, 1200)

	assert.Contains(t, out.String(), "(3 rows)")
	assert.Contains(t, out.String(), "(50 of 1200 rows)")
}

func TestJSON(t *testing.T) {
	r, out, _ := newRenderer(output.ModeJSON, false)
	require.NoError(t, r.JSON(output.FieldsOutput{
		Pattern: "logs-*",
		Indices: []string{"logs-2023.10"},
		Fields:  []output.FieldInfo{{Label: "level", Type: "keyword"}},
		Total:   1,
	}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "logs-*", decoded["pattern"])
	assert.Equal(t, float64(1), decoded["total"])
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# Title", output.FormatHeader(1, "Title"))
	assert.Equal(t, "### Title", output.FormatHeader(3, "Title"))
	assert.Equal(t, "# Title", output.FormatHeader(0, "Title"))
	assert.Equal(t, "###### Title", output.FormatHeader(9, "Title"))
}

func TestFormatKeyValue(t *testing.T) {
	assert.Equal(t, "- **Index**: logs-2023.10", output.FormatKeyValue("Index", "logs-2023.10"))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "error", "error"},
		{"integer valued float", float64(42), "42"},
		{"fractional float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"object", map[string]any{"region": "eu"}, `{"region":"eu"}`},
		{"array", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, output.FormatCell(tt.in))
		})
	}
}
