package duckdbsql

import "fmt"

// parseSelectStatement parses [WITH ...] body [ORDER BY ...] [LIMIT ...] [OFFSET ...].
func (p *Parser) parseSelectStatement() *SelectStmt {
	stmt := &SelectStmt{}
	if p.check(TOKEN_WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()

	if p.match(TOKEN_ORDER) {
		p.expect(TOKEN_BY)
		stmt.OrderBy = p.parseOrderByList()
	}
	// DuckDB accepts LIMIT and OFFSET in either order.
	for p.err == nil {
		switch {
		case stmt.Limit == nil && p.match(TOKEN_LIMIT):
			stmt.Limit = p.parseExpression()
		case stmt.Offset == nil && p.match(TOKEN_OFFSET):
			stmt.Offset = p.parseExpression()
		default:
			return stmt
		}
	}
	return stmt
}

func (p *Parser) parseWithClause() *WithClause {
	p.nextToken() // WITH
	wc := &WithClause{Recursive: p.matchSoftKeyword("recursive")}
	for p.err == nil {
		wc.CTEs = append(wc.CTEs, p.parseCTE())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return wc
}

func (p *Parser) parseCTE() *CTE {
	cte := &CTE{Name: p.expectIdent()}
	if p.match(TOKEN_LPAREN) {
		cte.Columns = p.parseIdentList()
		p.expect(TOKEN_RPAREN)
	}
	p.expect(TOKEN_AS)
	if p.check(TOKEN_NOT) && isSoftKeyword(p.peek, "materialized") {
		p.nextToken()
		p.nextToken()
	} else {
		p.matchSoftKeyword("materialized")
	}
	p.expect(TOKEN_LPAREN)
	cte.Select = p.parseSelectStatement()
	p.expect(TOKEN_RPAREN)
	return cte
}

// parseSelectBody parses core [UNION|INTERSECT|EXCEPT [ALL|DISTINCT] body].
func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{Left: p.parseSelectCore()}
	switch p.token.Type {
	case TOKEN_UNION:
		body.Op = SetOpUnion
	case TOKEN_INTERSECT:
		body.Op = SetOpIntersect
	case TOKEN_EXCEPT:
		body.Op = SetOpExcept
	default:
		return body
	}
	p.nextToken()
	if p.match(TOKEN_ALL) {
		body.All = true
	} else {
		p.match(TOKEN_DISTINCT)
	}
	body.Right = p.parseSelectBody()
	return body
}

func (p *Parser) parseSelectCore() *SelectCore {
	core := &SelectCore{}
	if !p.expect(TOKEN_SELECT) {
		return core
	}
	if p.match(TOKEN_DISTINCT) {
		core.Distinct = true
	} else {
		p.match(TOKEN_ALL)
	}
	core.Columns = p.parseSelectList()

	if p.match(TOKEN_FROM) {
		core.From = p.parseFromClause()
	}
	if p.match(TOKEN_WHERE) {
		core.Where = p.parseExpression()
	}
	if p.match(TOKEN_GROUP) {
		p.expect(TOKEN_BY)
		core.GroupBy = p.parseExpressionList()
	}
	if p.match(TOKEN_HAVING) {
		core.Having = p.parseExpression()
	}
	if p.match(TOKEN_QUALIFY) {
		core.Qualify = p.parseExpression()
	}
	return core
}

func (p *Parser) parseSelectList() []*SelectItem {
	items := []*SelectItem{p.parseSelectItem()}
	for p.err == nil && p.match(TOKEN_COMMA) {
		items = append(items, p.parseSelectItem())
	}
	return items
}

// parseSelectItem parses *, table.*, or expr [[AS] alias].
func (p *Parser) parseSelectItem() *SelectItem {
	item := &SelectItem{Expr: p.parseExpression()}
	if _, star := item.Expr.(*StarExpr); star {
		return item
	}
	switch {
	case p.match(TOKEN_AS):
		if p.check(TOKEN_STRING) {
			item.Alias = p.token.Literal
			p.nextToken()
		} else {
			item.Alias = p.expectIdent()
		}
	case p.check(TOKEN_IDENT):
		item.Alias = p.token.Literal
		p.nextToken()
	}
	return item
}

// parseOrderByList parses a comma-separated list of ORDER BY items.
func (p *Parser) parseOrderByList() []*OrderByItem {
	items := []*OrderByItem{p.parseOrderByItem()}
	for p.err == nil && p.match(TOKEN_COMMA) {
		items = append(items, p.parseOrderByItem())
	}
	return items
}

func (p *Parser) parseOrderByItem() *OrderByItem {
	item := &OrderByItem{Expr: p.parseExpression()}
	if p.match(TOKEN_DESC) {
		item.Desc = true
	} else {
		p.match(TOKEN_ASC)
	}
	if p.matchSoftKeyword("nulls") {
		switch {
		case p.matchSoftKeyword("first"):
			item.Nulls = NullsFirst
		case p.matchSoftKeyword("last"):
			item.Nulls = NullsLast
		default:
			p.addError(fmt.Sprintf("unexpected %s, expected FIRST or LAST", describe(p.token)))
		}
	}
	return item
}

// parseIdentList parses a comma-separated list of identifiers.
func (p *Parser) parseIdentList() []string {
	names := []string{p.expectIdent()}
	for p.err == nil && p.match(TOKEN_COMMA) {
		names = append(names, p.expectIdent())
	}
	return names
}
