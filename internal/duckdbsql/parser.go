package duckdbsql

import (
	"fmt"
	"strings"
)

// Parser parses DuckDB SELECT statements into an AST.
type Parser struct {
	lexer *Lexer
	token Token // current token
	peek  Token // lookahead token
	peek2 Token // second lookahead token
	err   *ParseError
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{lexer: NewLexer(sql)}
	// Initialize three-token lookahead
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses exactly one SELECT statement, optionally terminated by a
// semicolon. All failures are reported as *ParseError.
func Parse(sql string) (*SelectStmt, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &ParseError{Pos: 0, Message: "empty SQL"}
	}

	p := NewParser(sql)
	if !p.check(TOKEN_SELECT) && !p.check(TOKEN_WITH) {
		p.addError(fmt.Sprintf("expected SELECT statement, got %s", describe(p.token)))
		return nil, p.firstError()
	}

	stmt := p.parseSelectStatement()
	terminated := p.match(TOKEN_SEMICOLON)
	if p.err == nil && !p.check(TOKEN_EOF) {
		if terminated {
			p.addError("multi-statement queries are not allowed")
		} else {
			p.addError(fmt.Sprintf("unexpected %s after statement", describe(p.token)))
		}
	}
	if err := p.firstError(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ParseExpr parses a standalone expression from SQL text.
func ParseExpr(sql string) (Expr, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &ParseError{Pos: 0, Message: "empty expression"}
	}

	p := NewParser(sql)
	expr := p.parseExpression()
	if p.err == nil && !p.check(TOKEN_EOF) {
		p.addError(fmt.Sprintf("unexpected %s after expression", describe(p.token)))
	}
	if err := p.firstError(); err != nil {
		return nil, err
	}
	return expr, nil
}

// firstError returns the earliest error by input position. The lexer runs
// two tokens ahead of the parser, so a lexical error may be recorded before
// a syntax error that occurs earlier in the text.
func (p *Parser) firstError() error {
	lexErr := p.lexer.Err()
	switch {
	case p.err == nil && lexErr == nil:
		return nil
	case p.err == nil:
		return lexErr
	case lexErr != nil && lexErr.Pos < p.err.Pos:
		return lexErr
	default:
		return p.err
	}
}

// === Token Helpers ===

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// isSoftKeyword reports whether tok is an unquoted identifier spelling keyword.
func isSoftKeyword(tok Token, keyword string) bool {
	return tok.Type == TOKEN_IDENT && !tok.Quoted && strings.EqualFold(tok.Literal, keyword)
}

// matchSoftKeyword consumes the current token if it's an identifier matching
// the given soft keyword (case-insensitive).
func (p *Parser) matchSoftKeyword(keyword string) bool {
	if isSoftKeyword(p.token, keyword) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected %s, expected %s", describe(p.token), t))
	return false
}

// expectIdent consumes an identifier and returns its text.
func (p *Parser) expectIdent() string {
	if p.check(TOKEN_IDENT) {
		name := p.token.Literal
		p.nextToken()
		return name
	}
	p.addError(fmt.Sprintf("unexpected %s, expected identifier", describe(p.token)))
	return ""
}

// addError records a parse error at the current token. Only the first error
// is kept; everything after it is noise from the same root cause.
func (p *Parser) addError(msg string) {
	if p.err == nil {
		p.err = &ParseError{Pos: p.token.Pos, Message: msg}
	}
}

func describe(tok Token) string {
	switch tok.Type {
	case TOKEN_EOF:
		return "end of input"
	case TOKEN_IDENT:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case TOKEN_NUMBER, TOKEN_STRING, TOKEN_ILLEGAL:
		return fmt.Sprintf("%s %q", strings.ToLower(tok.Type.String()), tok.Literal)
	default:
		return tok.Type.String()
	}
}
