package duckdbsql

import (
	"fmt"
	"strings"
)

// parsePrimary parses an atom: literal, reference, call, CASE, CAST,
// EXTRACT, EXISTS, INTERVAL, parenthesized expression or scalar subquery.
func (p *Parser) parsePrimary() Expr {
	tok := p.token
	switch tok.Type {
	case TOKEN_NUMBER:
		p.nextToken()
		return &Literal{Type: LiteralNumber, Value: tok.Literal}
	case TOKEN_STRING:
		p.nextToken()
		return &Literal{Type: LiteralString, Value: tok.Literal}
	case TOKEN_TRUE, TOKEN_FALSE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: tok.Type.String()}
	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "NULL"}
	case TOKEN_CASE:
		return p.parseCaseExpr()
	case TOKEN_CAST, TOKEN_TRY_CAST:
		return p.parseCastExpr()
	case TOKEN_EXTRACT:
		return p.parseExtractExpr()
	case TOKEN_EXISTS:
		p.nextToken()
		p.expect(TOKEN_LPAREN)
		q := p.parseSelectStatement()
		p.expect(TOKEN_RPAREN)
		return &ExistsExpr{Query: q}
	case TOKEN_INTERVAL:
		return p.parseIntervalExpr()
	case TOKEN_LPAREN:
		p.nextToken()
		if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
			q := p.parseSelectStatement()
			p.expect(TOKEN_RPAREN)
			return &SubqueryExpr{Query: q}
		}
		inner := p.parseExpression()
		p.expect(TOKEN_RPAREN)
		return &ParenExpr{Expr: inner}
	case TOKEN_STAR:
		p.nextToken()
		return &StarExpr{}
	case TOKEN_LEFT, TOKEN_RIGHT:
		// left(s, n) and right(s, n) are ordinary string functions.
		if p.checkPeek(TOKEN_LPAREN) {
			p.nextToken()
			return p.parseFuncCall(strings.ToLower(tok.Literal))
		}
	case TOKEN_IDENT:
		return p.parseIdentifierExpr()
	}

	p.addError(fmt.Sprintf("unexpected %s in expression", describe(tok)))
	return nil
}

// parseIdentifierExpr parses a column reference, table.* or function call.
func (p *Parser) parseIdentifierExpr() Expr {
	parts := []string{p.token.Literal}
	p.nextToken()

	if p.check(TOKEN_LPAREN) {
		return p.parseFuncCall(parts[0])
	}

	for p.check(TOKEN_DOT) {
		p.nextToken()
		if p.check(TOKEN_STAR) {
			p.nextToken()
			return &StarExpr{Table: parts[len(parts)-1]}
		}
		parts = append(parts, p.expectIdent())
	}

	switch len(parts) {
	case 1:
		return &ColumnRef{Column: parts[0]}
	case 2:
		return &ColumnRef{Table: parts[0], Column: parts[1]}
	case 3:
		return &ColumnRef{Schema: parts[0], Table: parts[1], Column: parts[2]}
	}
	p.addError(fmt.Sprintf("column reference %q has too many parts", strings.Join(parts, ".")))
	return nil
}

// parseFuncCall parses name(args) [FILTER (WHERE ...)] [OVER (...)].
// The current token is the opening parenthesis.
func (p *Parser) parseFuncCall(name string) Expr {
	fn := &FuncCall{Name: name}
	p.expect(TOKEN_LPAREN)

	switch {
	case p.check(TOKEN_STAR):
		p.nextToken()
		fn.Star = true
	case !p.check(TOKEN_RPAREN):
		if p.match(TOKEN_DISTINCT) {
			fn.Distinct = true
		} else {
			p.match(TOKEN_ALL)
		}
		fn.Args = p.parseExpressionList()
	}
	p.expect(TOKEN_RPAREN)

	if isSoftKeyword(p.token, "filter") && p.checkPeek(TOKEN_LPAREN) && p.peek2.Type == TOKEN_WHERE {
		p.nextToken()
		p.nextToken()
		p.nextToken()
		fn.Filter = p.parseExpression()
		p.expect(TOKEN_RPAREN)
	}

	if isSoftKeyword(p.token, "over") && p.checkPeek(TOKEN_LPAREN) {
		p.nextToken()
		fn.Over = p.parseWindowSpec()
	}
	return fn
}

// parseWindowSpec parses ( [PARTITION BY ...] [ORDER BY ...] [frame] ).
func (p *Parser) parseWindowSpec() *WindowSpec {
	ws := &WindowSpec{}
	p.expect(TOKEN_LPAREN)

	if p.matchSoftKeyword("partition") {
		p.expect(TOKEN_BY)
		ws.PartitionBy = p.parseExpressionList()
	}
	if p.match(TOKEN_ORDER) {
		p.expect(TOKEN_BY)
		ws.OrderBy = p.parseOrderByList()
	}
	for _, unit := range []string{"rows", "range", "groups"} {
		if p.matchSoftKeyword(unit) {
			ws.Frame = p.parseFrameSpec(strings.ToUpper(unit))
			break
		}
	}

	p.expect(TOKEN_RPAREN)
	return ws
}

func (p *Parser) parseFrameSpec(unit string) *FrameSpec {
	fs := &FrameSpec{Unit: unit}
	if p.match(TOKEN_BETWEEN) {
		fs.Start = p.parseFrameBound()
		p.expect(TOKEN_AND)
		fs.End = p.parseFrameBound()
		return fs
	}
	fs.Start = p.parseFrameBound()
	return fs
}

func (p *Parser) parseFrameBound() *FrameBound {
	switch {
	case p.matchSoftKeyword("unbounded"):
		if p.matchSoftKeyword("preceding") {
			return &FrameBound{Kind: FrameUnboundedPreceding}
		}
		if p.matchSoftKeyword("following") {
			return &FrameBound{Kind: FrameUnboundedFollowing}
		}
		p.addError("expected PRECEDING or FOLLOWING after UNBOUNDED")
		return nil
	case p.matchSoftKeyword("current"):
		if !p.matchSoftKeyword("row") {
			p.addError("expected ROW after CURRENT")
		}
		return &FrameBound{Kind: FrameCurrentRow}
	}

	offset := p.parseExpressionWithPrecedence(PrecedenceComparison)
	if p.matchSoftKeyword("preceding") {
		return &FrameBound{Kind: FramePreceding, Offset: offset}
	}
	if p.matchSoftKeyword("following") {
		return &FrameBound{Kind: FrameFollowing, Offset: offset}
	}
	p.addError(fmt.Sprintf("unexpected %s in window frame", describe(p.token)))
	return nil
}

func (p *Parser) parseCaseExpr() Expr {
	p.nextToken() // CASE
	ce := &CaseExpr{}
	if !p.check(TOKEN_WHEN) {
		ce.Operand = p.parseExpression()
	}
	for p.err == nil && p.match(TOKEN_WHEN) {
		w := &WhenClause{Condition: p.parseExpression()}
		p.expect(TOKEN_THEN)
		w.Result = p.parseExpression()
		ce.Whens = append(ce.Whens, w)
	}
	if len(ce.Whens) == 0 {
		p.addError("CASE requires at least one WHEN clause")
	}
	if p.match(TOKEN_ELSE) {
		ce.Else = p.parseExpression()
	}
	p.expect(TOKEN_END)
	return ce
}

func (p *Parser) parseCastExpr() Expr {
	try := p.check(TOKEN_TRY_CAST)
	p.nextToken()
	p.expect(TOKEN_LPAREN)
	inner := p.parseExpression()
	p.expect(TOKEN_AS)
	typeName := p.parseTypeName()
	p.expect(TOKEN_RPAREN)
	return &CastExpr{Expr: inner, TypeName: typeName, Try: try}
}

// parseTypeName parses a type such as INTEGER, DECIMAL(10, 2),
// DOUBLE PRECISION or TIMESTAMP WITH TIME ZONE, upper-cased.
func (p *Parser) parseTypeName() string {
	var name string
	switch p.token.Type {
	case TOKEN_IDENT, TOKEN_INTERVAL:
		name = strings.ToUpper(p.token.Literal)
		p.nextToken()
	default:
		p.addError(fmt.Sprintf("unexpected %s, expected type name", describe(p.token)))
		return ""
	}

	switch {
	case name == "DOUBLE" && p.matchSoftKeyword("precision"):
		name = "DOUBLE PRECISION"
	case name == "CHARACTER" && p.matchSoftKeyword("varying"):
		name = "CHARACTER VARYING"
	case (name == "TIMESTAMP" || name == "TIME") && p.check(TOKEN_WITH) &&
		isSoftKeyword(p.peek, "time") && isSoftKeyword(p.peek2, "zone"):
		p.nextToken()
		p.nextToken()
		p.nextToken()
		name += " WITH TIME ZONE"
	}

	if p.match(TOKEN_LPAREN) {
		var params []string
		for p.err == nil {
			if !p.check(TOKEN_NUMBER) {
				p.addError(fmt.Sprintf("unexpected %s in type parameters", describe(p.token)))
				break
			}
			params = append(params, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
		name += "(" + strings.Join(params, ", ") + ")"
	}
	return name
}

func (p *Parser) parseExtractExpr() Expr {
	p.nextToken() // EXTRACT
	p.expect(TOKEN_LPAREN)
	var field string
	switch p.token.Type {
	case TOKEN_IDENT, TOKEN_STRING:
		field = strings.ToUpper(p.token.Literal)
		p.nextToken()
	default:
		p.addError(fmt.Sprintf("unexpected %s, expected date part", describe(p.token)))
	}
	p.expect(TOKEN_FROM)
	from := p.parseExpression()
	p.expect(TOKEN_RPAREN)
	return &ExtractExpr{Field: field, From: from}
}

// intervalUnits are the unit words accepted after an INTERVAL value.
var intervalUnits = map[string]bool{
	"year": true, "years": true, "month": true, "months": true,
	"week": true, "weeks": true, "day": true, "days": true,
	"hour": true, "hours": true, "minute": true, "minutes": true,
	"second": true, "seconds": true, "millisecond": true, "milliseconds": true,
	"microsecond": true, "microseconds": true,
}

func (p *Parser) parseIntervalExpr() Expr {
	p.nextToken() // INTERVAL
	iv := &IntervalExpr{Value: p.parseExpressionWithPrecedence(PrecedencePostfix)}
	if p.check(TOKEN_IDENT) && !p.token.Quoted && intervalUnits[strings.ToLower(p.token.Literal)] {
		iv.Unit = strings.ToUpper(p.token.Literal)
		p.nextToken()
	}
	return iv
}
