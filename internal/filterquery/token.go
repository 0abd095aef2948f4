// Package filterquery parses the preview filter language and lowers it to
// the search backend's query DSL. A query is a whitespace separated
// sequence of clauses that must all match: bare terms and quoted phrases
// match across every string column, field:value clauses match one column
// exactly.
package filterquery

// TokenType classifies filter query tokens.
type TokenType int

const (
	EOF TokenType = iota
	WORD
	STRING
	COLON
	ILLEGAL
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case WORD:
		return "WORD"
	case STRING:
		return "STRING"
	case COLON:
		return "':'"
	case ILLEGAL:
		return "ILLEGAL"
	}
	return "UNKNOWN"
}

// Position locates a token within the query text.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// Token is one lexical unit of a filter query.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
