package filterquery

import "strings"

// Lexer tokenizes filter query input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.currentPos()

	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case ':':
		l.readChar()
		return Token{Type: COLON, Literal: ":", Pos: pos}
	case '"':
		return l.readString(pos)
	default:
		return l.readWord(pos)
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted phrase. Backslash escapes the quote and the
// backslash itself; any other escaped character is kept verbatim.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		switch l.ch {
		case 0:
			return Token{Type: ILLEGAL, Literal: sb.String(), Pos: pos}
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return Token{Type: ILLEGAL, Literal: sb.String(), Pos: pos}
			}
			if l.ch != '"' && l.ch != '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(l.ch)
			l.readChar()
		case '"':
			l.readChar() // consume closing quote
			return Token{Type: STRING, Literal: sb.String(), Pos: pos}
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readWord reads a bare term: any run of characters up to whitespace, a
// colon, a quote, or the end of input. Dotted field paths are words.
func (l *Lexer) readWord(pos Position) Token {
	start := l.pos
	for !isWordBoundary(l.ch) {
		l.readChar()
	}
	return Token{Type: WORD, Literal: l.input[start:l.pos], Pos: pos}
}

func isWordBoundary(ch byte) bool {
	switch ch {
	case 0, ':', '"', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
