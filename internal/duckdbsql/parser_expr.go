package duckdbsql

import "fmt"

// parseExpression parses a full expression.
func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(PrecedenceNone)
}

// parseExpressionWithPrecedence is the Pratt loop: it keeps folding infix
// operators into the left operand while they bind tighter than prec.
func (p *Parser) parseExpressionWithPrecedence(prec int) Expr {
	if p.err != nil {
		return nil
	}
	left := p.parsePrefixExpr()
	for p.err == nil {
		infix := p.getInfixPrecedence()
		if infix <= prec {
			break
		}
		left = p.parseInfixExpr(left, infix)
	}
	return left
}

func (p *Parser) parsePrefixExpr() Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		p.nextToken()
		operand := p.parseExpressionWithPrecedence(PrecedenceNot)
		return &UnaryExpr{Op: TOKEN_NOT, Expr: operand}
	case TOKEN_MINUS, TOKEN_PLUS:
		op := p.token.Type
		p.nextToken()
		operand := p.parseExpressionWithPrecedence(PrecedenceUnary)
		return &UnaryExpr{Op: op, Expr: operand}
	default:
		return p.parsePrimary()
	}
}

// getInfixPrecedence returns the binding power of the current token when it
// appears in infix position, or PrecedenceNone when it cannot continue an
// expression.
func (p *Parser) getInfixPrecedence() int {
	switch p.token.Type {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE,
		TOKEN_IS, TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_ILIKE:
		return PrecedenceComparison
	case TOKEN_NOT:
		switch p.peek.Type {
		case TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_ILIKE:
			return PrecedenceComparison
		}
		return PrecedenceNone
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
		return PrecedenceAddition
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_MOD:
		return PrecedenceMultiply
	case TOKEN_DCOLON:
		return PrecedencePostfix
	default:
		return PrecedenceNone
	}
}

func (p *Parser) parseInfixExpr(left Expr, prec int) Expr {
	not := false
	if p.check(TOKEN_NOT) {
		not = true
		p.nextToken()
	}

	switch p.token.Type {
	case TOKEN_IS:
		p.nextToken()
		isNot := p.match(TOKEN_NOT)
		switch p.token.Type {
		case TOKEN_NULL, TOKEN_TRUE, TOKEN_FALSE:
			value := p.token.Type
			p.nextToken()
			return &IsExpr{Expr: left, Not: isNot, Value: value}
		}
		p.addError(fmt.Sprintf("unexpected %s, expected NULL, TRUE or FALSE after IS", describe(p.token)))
		return left

	case TOKEN_IN:
		p.nextToken()
		return p.parseInTail(left, not)

	case TOKEN_BETWEEN:
		p.nextToken()
		low := p.parseExpressionWithPrecedence(PrecedenceComparison)
		p.expect(TOKEN_AND)
		high := p.parseExpressionWithPrecedence(PrecedenceComparison)
		return &BetweenExpr{Expr: left, Not: not, Low: low, High: high}

	case TOKEN_LIKE, TOKEN_ILIKE:
		ilike := p.check(TOKEN_ILIKE)
		p.nextToken()
		pattern := p.parseExpressionWithPrecedence(PrecedenceComparison)
		return &LikeExpr{Expr: left, Not: not, ILike: ilike, Pattern: pattern}

	case TOKEN_DCOLON:
		p.nextToken()
		return &CastExpr{Expr: left, TypeName: p.parseTypeName()}

	default:
		op := p.token.Type
		p.nextToken()
		right := p.parseExpressionWithPrecedence(prec)
		return &BinaryExpr{Left: left, Op: op, Right: right}
	}
}

// parseInTail parses the parenthesized list or subquery after IN.
func (p *Parser) parseInTail(left Expr, not bool) Expr {
	in := &InExpr{Expr: left, Not: not}
	if !p.expect(TOKEN_LPAREN) {
		return in
	}
	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		in.Query = p.parseSelectStatement()
	} else {
		in.Values = p.parseExpressionList()
	}
	p.expect(TOKEN_RPAREN)
	return in
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []Expr {
	exprs := []Expr{p.parseExpression()}
	for p.err == nil && p.match(TOKEN_COMMA) {
		exprs = append(exprs, p.parseExpression())
	}
	return exprs
}
