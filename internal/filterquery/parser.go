package filterquery

import "fmt"

// Parser parses filter query input against a known column schema.
type Parser struct {
	lexer  *Lexer
	token  Token // current token
	peek   Token // lookahead token
	schema Schema
}

// Parse parses a filter query. Field clauses must reference schema
// columns; bare terms and quoted phrases match across all of them. An
// empty query parses to a query with no clauses.
func Parse(input string, schema Schema) (*Query, error) {
	p := &Parser{
		lexer:  NewLexer(input),
		schema: schema,
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p.parseQuery()
}

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{}
	for p.token.Type != EOF {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func (p *Parser) parseClause() (Clause, error) {
	switch p.token.Type {
	case WORD:
		if p.peek.Type == COLON {
			return p.parseFieldClause()
		}
		clause := Clause{Pos: p.token.Pos, Term: p.token.Literal}
		p.nextToken()
		return clause, nil
	case STRING:
		clause := Clause{Pos: p.token.Pos, Term: p.token.Literal}
		p.nextToken()
		return clause, nil
	case ILLEGAL:
		return Clause{}, p.errorf(p.token.Pos, errUnterminatedString)
	default:
		return Clause{}, p.errorf(p.token.Pos, errUnexpectedToken, p.token.Type)
	}
}

// parseFieldClause parses field ':' value with the field name already
// current and the colon in peek.
func (p *Parser) parseFieldClause() (Clause, error) {
	pos := p.token.Pos
	field := p.token.Literal
	if _, ok := p.schema[field]; !ok {
		return Clause{}, p.errorf(pos, errUnknownField, field)
	}
	p.nextToken() // field
	p.nextToken() // colon

	switch p.token.Type {
	case WORD, STRING:
		clause := Clause{Pos: pos, Field: field, Term: p.token.Literal}
		p.nextToken()
		return clause, nil
	case ILLEGAL:
		return Clause{}, p.errorf(p.token.Pos, errUnterminatedString)
	default:
		return Clause{}, p.errorf(pos, errMissingValue, field)
	}
}

func (p *Parser) errorf(pos Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
