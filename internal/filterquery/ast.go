package filterquery

// Clause is one parsed filter clause. Field is empty for free-text
// clauses; for field clauses it names a schema column.
type Clause struct {
	Pos   Position
	Field string
	Term  string
}

// Query is a parsed filter. Every clause must match.
type Query struct {
	Clauses []Clause
}

// Schema is the set of column ids a query may reference, mapping each id
// to its display type.
type Schema map[string]string
