package duckdbsql

// formatExpr dispatches expression formatting by type.
func (f *formatter) formatExpr(e Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *Literal:
		f.formatLiteral(expr)
	case *ColumnRef:
		f.writeQualified(expr.Schema, expr.Table, expr.Column)
	case *StarExpr:
		if expr.Table != "" {
			f.writeIdent(expr.Table)
			f.write(".")
		}
		f.write("*")
	case *BinaryExpr:
		prec := binaryPrecedence(expr.Op)
		f.formatOperand(expr.Left, prec)
		f.space()
		f.write(operatorString(expr.Op))
		f.space()
		f.formatOperand(expr.Right, prec+1)
	case *UnaryExpr:
		f.formatUnaryExpr(expr)
	case *ParenExpr:
		f.write("(")
		f.formatExpr(expr.Expr)
		f.write(")")
	case *FuncCall:
		f.formatFuncCall(expr)
	case *CaseExpr:
		f.formatCaseExpr(expr)
	case *CastExpr:
		if expr.Try {
			f.write("TRY_CAST(")
		} else {
			f.write("CAST(")
		}
		f.formatExpr(expr.Expr)
		f.write(" AS ")
		f.write(expr.TypeName)
		f.write(")")
	case *InExpr:
		f.formatOperand(expr.Expr, PrecedenceComparison)
		f.writeNot(expr.Not)
		f.write(" IN (")
		if expr.Query != nil {
			f.formatSelectStmt(expr.Query)
		} else {
			f.commaSep(len(expr.Values), func(i int) { f.formatExpr(expr.Values[i]) })
		}
		f.write(")")
	case *BetweenExpr:
		f.formatOperand(expr.Expr, PrecedenceComparison)
		f.writeNot(expr.Not)
		f.write(" BETWEEN ")
		f.formatOperand(expr.Low, PrecedenceComparison+1)
		f.write(" AND ")
		f.formatOperand(expr.High, PrecedenceComparison+1)
	case *LikeExpr:
		f.formatOperand(expr.Expr, PrecedenceComparison)
		f.writeNot(expr.Not)
		if expr.ILike {
			f.write(" ILIKE ")
		} else {
			f.write(" LIKE ")
		}
		f.formatOperand(expr.Pattern, PrecedenceComparison+1)
	case *IsExpr:
		f.formatOperand(expr.Expr, PrecedenceComparison)
		f.write(" IS ")
		if expr.Not {
			f.write("NOT ")
		}
		f.write(expr.Value.String())
	case *ExistsExpr:
		f.write("EXISTS (")
		f.formatSelectStmt(expr.Query)
		f.write(")")
	case *SubqueryExpr:
		f.write("(")
		f.formatSelectStmt(expr.Query)
		f.write(")")
	case *IntervalExpr:
		f.write("INTERVAL ")
		f.formatOperand(expr.Value, PrecedenceAtom)
		if expr.Unit != "" {
			f.space()
			f.write(expr.Unit)
		}
	case *ExtractExpr:
		f.write("EXTRACT(")
		f.write(expr.Field)
		f.write(" FROM ")
		f.formatExpr(expr.From)
		f.write(")")
	}
}

// formatOperand writes e, wrapped in parentheses when it binds looser than
// minPrec.
func (f *formatter) formatOperand(e Expr, minPrec int) {
	if ExprPrecedence(e) < minPrec {
		f.write("(")
		f.formatExpr(e)
		f.write(")")
		return
	}
	f.formatExpr(e)
}

func (f *formatter) writeNot(not bool) {
	if not {
		f.write(" NOT")
	}
}

// ExprPrecedence returns how tightly e binds when printed without
// parentheses.
func ExprPrecedence(e Expr) int {
	switch expr := e.(type) {
	case *BinaryExpr:
		return binaryPrecedence(expr.Op)
	case *UnaryExpr:
		if expr.Op == TOKEN_NOT {
			return PrecedenceNot
		}
		return PrecedenceUnary
	case *InExpr, *BetweenExpr, *LikeExpr, *IsExpr:
		return PrecedenceComparison
	default:
		return PrecedenceAtom
	}
}

func binaryPrecedence(op TokenType) int {
	switch op {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
		return PrecedenceComparison
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
		return PrecedenceAddition
	default:
		return PrecedenceMultiply
	}
}

// operatorString returns the SQL spelling of a binary or unary operator.
func operatorString(op TokenType) string {
	return op.String()
}

func (f *formatter) formatLiteral(lit *Literal) {
	switch lit.Type {
	case LiteralString:
		f.write(quoteString(lit.Value))
	default:
		f.write(lit.Value)
	}
}

func (f *formatter) formatUnaryExpr(expr *UnaryExpr) {
	if expr.Op == TOKEN_NOT {
		f.write("NOT ")
		f.formatOperand(expr.Expr, PrecedenceNot)
		return
	}
	f.write(operatorString(expr.Op))
	// "--" would start a comment, "- -" reads badly: nest signs in parens.
	if _, nested := expr.Expr.(*UnaryExpr); nested {
		f.write("(")
		f.formatExpr(expr.Expr)
		f.write(")")
		return
	}
	f.formatOperand(expr.Expr, PrecedenceUnary)
}

func (f *formatter) formatFuncCall(fn *FuncCall) {
	if isPlainIdent(fn.Name) && (!IsReserved(fn.Name) || fn.Name == "left" || fn.Name == "right") {
		f.write(fn.Name)
	} else {
		f.writeIdent(fn.Name)
	}
	f.write("(")
	switch {
	case fn.Star:
		f.write("*")
	default:
		if fn.Distinct {
			f.write("DISTINCT ")
		}
		f.commaSep(len(fn.Args), func(i int) { f.formatExpr(fn.Args[i]) })
	}
	f.write(")")

	if fn.Filter != nil {
		f.write(" FILTER (WHERE ")
		f.formatExpr(fn.Filter)
		f.write(")")
	}
	if fn.Over != nil {
		f.write(" OVER (")
		f.formatWindowSpec(fn.Over)
		f.write(")")
	}
}

func (f *formatter) formatWindowSpec(ws *WindowSpec) {
	sep := ""
	if len(ws.PartitionBy) > 0 {
		f.write("PARTITION BY ")
		f.commaSep(len(ws.PartitionBy), func(i int) { f.formatExpr(ws.PartitionBy[i]) })
		sep = " "
	}
	if len(ws.OrderBy) > 0 {
		f.write(sep)
		f.write("ORDER BY ")
		f.formatOrderByList(ws.OrderBy)
		sep = " "
	}
	if ws.Frame != nil {
		f.write(sep)
		f.write(ws.Frame.Unit)
		f.space()
		if ws.Frame.End != nil {
			f.write("BETWEEN ")
			f.formatFrameBound(ws.Frame.Start)
			f.write(" AND ")
			f.formatFrameBound(ws.Frame.End)
		} else {
			f.formatFrameBound(ws.Frame.Start)
		}
	}
}

func (f *formatter) formatFrameBound(b *FrameBound) {
	if b == nil {
		return
	}
	switch b.Kind {
	case FrameUnboundedPreceding:
		f.write("UNBOUNDED PRECEDING")
	case FrameUnboundedFollowing:
		f.write("UNBOUNDED FOLLOWING")
	case FrameCurrentRow:
		f.write("CURRENT ROW")
	case FramePreceding:
		f.formatOperand(b.Offset, PrecedenceComparison+1)
		f.write(" PRECEDING")
	case FrameFollowing:
		f.formatOperand(b.Offset, PrecedenceComparison+1)
		f.write(" FOLLOWING")
	}
}

func (f *formatter) formatCaseExpr(ce *CaseExpr) {
	f.write("CASE")
	if ce.Operand != nil {
		f.space()
		f.formatExpr(ce.Operand)
	}
	for _, w := range ce.Whens {
		f.write(" WHEN ")
		f.formatExpr(w.Condition)
		f.write(" THEN ")
		f.formatExpr(w.Result)
	}
	if ce.Else != nil {
		f.write(" ELSE ")
		f.formatExpr(ce.Else)
	}
	f.write(" END")
}
