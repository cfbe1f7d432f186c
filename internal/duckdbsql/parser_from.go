package duckdbsql

import "fmt"

// parseFromClause parses the FROM source and every join that follows it.
func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{Source: p.parseTableRef()}
	for p.err == nil {
		switch {
		case p.match(TOKEN_COMMA):
			from.Joins = append(from.Joins, &Join{Type: JoinComma, Right: p.parseTableRef()})
		case p.isJoinStart():
			from.Joins = append(from.Joins, p.parseJoin())
		default:
			return from
		}
	}
	return from
}

func (p *Parser) isJoinStart() bool {
	switch p.token.Type {
	case TOKEN_JOIN, TOKEN_INNER, TOKEN_LEFT, TOKEN_RIGHT, TOKEN_FULL, TOKEN_CROSS, TOKEN_NATURAL:
		return true
	}
	return false
}

// parseJoin parses [NATURAL] [INNER|LEFT|RIGHT|FULL [OUTER]|CROSS] JOIN ref [ON ...|USING (...)].
func (p *Parser) parseJoin() *Join {
	j := &Join{Natural: p.match(TOKEN_NATURAL)}

	switch p.token.Type {
	case TOKEN_INNER:
		p.nextToken()
	case TOKEN_LEFT:
		p.nextToken()
		p.match(TOKEN_OUTER)
		j.Type = JoinLeft
	case TOKEN_RIGHT:
		p.nextToken()
		p.match(TOKEN_OUTER)
		j.Type = JoinRight
	case TOKEN_FULL:
		p.nextToken()
		p.match(TOKEN_OUTER)
		j.Type = JoinFull
	case TOKEN_CROSS:
		p.nextToken()
		j.Type = JoinCross
	}
	p.expect(TOKEN_JOIN)
	j.Right = p.parseTableRef()

	if j.Type == JoinCross || j.Natural {
		return j
	}
	switch {
	case p.match(TOKEN_ON):
		j.Condition = p.parseExpression()
	case p.match(TOKEN_USING):
		p.expect(TOKEN_LPAREN)
		j.Using = p.parseIdentList()
		p.expect(TOKEN_RPAREN)
	default:
		p.addError(fmt.Sprintf("unexpected %s, expected ON or USING", describe(p.token)))
	}
	return j
}

// parseTableRef parses a table name, table function or derived table with
// an optional alias.
func (p *Parser) parseTableRef() TableRef {
	if p.check(TOKEN_LPAREN) {
		p.nextToken()
		if !p.check(TOKEN_SELECT) && !p.check(TOKEN_WITH) {
			p.addError(fmt.Sprintf("unexpected %s, expected subquery", describe(p.token)))
			return nil
		}
		dt := &DerivedTable{Select: p.parseSelectStatement()}
		p.expect(TOKEN_RPAREN)
		dt.Alias = p.parseOptionalAlias()
		return dt
	}

	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("unexpected %s, expected table name", describe(p.token)))
		return nil
	}

	parts := []string{p.token.Literal}
	p.nextToken()
	if p.check(TOKEN_LPAREN) {
		fn, _ := p.parseFuncCall(parts[0]).(*FuncCall)
		return &FuncTable{Func: fn, Alias: p.parseOptionalAlias()}
	}
	for p.err == nil && p.match(TOKEN_DOT) {
		parts = append(parts, p.expectIdent())
	}

	tn := &TableName{}
	switch len(parts) {
	case 1:
		tn.Name = parts[0]
	case 2:
		tn.Schema, tn.Name = parts[0], parts[1]
	case 3:
		tn.Catalog, tn.Schema, tn.Name = parts[0], parts[1], parts[2]
	default:
		p.addError("table name has too many parts")
		return nil
	}
	tn.Alias = p.parseOptionalAlias()
	return tn
}

// parseOptionalAlias parses [AS] alias. Column alias lists are not supported.
func (p *Parser) parseOptionalAlias() string {
	if p.match(TOKEN_AS) {
		return p.expectIdent()
	}
	if p.check(TOKEN_IDENT) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}
