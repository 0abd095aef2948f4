package preview

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ProjectRows projects raw source documents onto the column set. Fields
// outside the columns are dropped; a column missing from a document is
// simply absent from its row. A dotted column id resolves as a nested
// object path first, then as a literal dotted key.
func ProjectRows(docs []json.RawMessage, columns []Column) []Row {
	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		row := make(Row, len(columns))
		for _, col := range columns {
			value := gjson.GetBytes(doc, col.ID)
			if !value.Exists() && strings.Contains(col.ID, ".") {
				value = gjson.GetBytes(doc, literalPath(col.ID))
			}
			if value.Exists() {
				row[col.ID] = value.Value()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// literalPath escapes the dots of a column id so it addresses one
// top-level key instead of a nested path.
func literalPath(id string) string {
	return strings.ReplaceAll(id, ".", `\.`)
}
