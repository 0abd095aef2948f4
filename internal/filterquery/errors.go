package filterquery

import "fmt"

// ParseError represents a malformed filter query with position information.
// It never reflects a backend failure; parsing happens entirely locally.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	errUnterminatedString = "unterminated quoted string"
	errUnknownField       = "unknown field %q"
	errMissingValue       = "missing value for field %q"
	errUnexpectedToken    = "unexpected %s"
)
