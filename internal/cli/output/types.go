package output

// FieldsOutput is the JSON shape of the fields command.
type FieldsOutput struct {
	Pattern string      `json:"pattern"`
	Indices []string    `json:"indices"`
	Fields  []FieldInfo `json:"fields"`
	Total   int         `json:"total"`
}

// FieldInfo describes one browsable field.
type FieldInfo struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	Path  string `json:"path,omitempty"`
}

// PreviewOutput is the JSON shape of the preview command.
type PreviewOutput struct {
	Index        string           `json:"index"`
	Columns      []string         `json:"columns"`
	Rows         []map[string]any `json:"rows"`
	TotalResults int              `json:"totalResults"`
	Filter       string           `json:"filter,omitempty"`
}
