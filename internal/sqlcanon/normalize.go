package sqlcanon

import (
	"sort"

	"sql-eval/internal/duckdbsql"
)

type normalizer struct{}

// stmt normalizes a statement. outer is the scope of the enclosing query
// when stmt is a subquery inside an expression, nil otherwise.
func (n *normalizer) stmt(stmt *duckdbsql.SelectStmt, outer *scope) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			n.stmt(cte.Select, nil)
		}
	}

	var last *scope
	cores := 0
	for body := stmt.Body; body != nil; body = body.Right {
		last = n.core(body.Left, outer)
		cores++
	}

	// ORDER BY of a set operation refers to output columns, not sources.
	orderScope := last
	if cores != 1 {
		orderScope = nil
	}
	for _, item := range stmt.OrderBy {
		item.Expr = n.expr(item.Expr, orderScope)
	}
	stmt.Limit = n.expr(stmt.Limit, nil)
	stmt.Offset = n.expr(stmt.Offset, nil)
}

func (n *normalizer) core(core *duckdbsql.SelectCore, outer *scope) *scope {
	sc := &scope{outer: outer, correlated: outer != nil, aliases: make(map[string]bool)}
	if core == nil {
		return sc
	}

	refs := tableSources(core.From)
	for _, ref := range refs {
		switch t := ref.(type) {
		case *duckdbsql.DerivedTable:
			n.stmt(t.Select, nil)
		case *duckdbsql.FuncTable:
			n.expr(t.Func, nil)
		}
	}
	sc.bindSources(refs)

	for _, item := range core.Columns {
		if item.Alias != "" {
			sc.aliases[item.Alias] = true
		}
	}
	for _, item := range core.Columns {
		item.Expr = n.expr(item.Expr, sc)
	}
	if core.From != nil {
		for _, j := range core.From.Joins {
			j.Condition = n.expr(j.Condition, sc)
		}
	}
	core.Where = n.expr(core.Where, sc)
	for i, e := range core.GroupBy {
		core.GroupBy[i] = n.expr(e, sc)
	}
	core.Having = n.expr(core.Having, sc)
	core.Qualify = n.expr(core.Qualify, sc)
	return sc
}

// expr normalizes e bottom-up and returns its replacement.
func (n *normalizer) expr(e duckdbsql.Expr, sc *scope) duckdbsql.Expr {
	switch x := e.(type) {
	case nil:
		return nil
	case *duckdbsql.ParenExpr:
		return n.expr(x.Expr, sc)
	case *duckdbsql.ColumnRef:
		sc.resolve(x)
	case *duckdbsql.StarExpr:
		if x.Table != "" {
			x.Table = sc.lookup(x.Table)
		}
	case *duckdbsql.BinaryExpr:
		x.Left = n.expr(x.Left, sc)
		x.Right = n.expr(x.Right, sc)
		return orderBinary(x)
	case *duckdbsql.UnaryExpr:
		x.Expr = n.expr(x.Expr, sc)
	case *duckdbsql.FuncCall:
		n.exprs(x.Args, sc)
		x.Filter = n.expr(x.Filter, sc)
		if w := x.Over; w != nil {
			n.exprs(w.PartitionBy, sc)
			for _, item := range w.OrderBy {
				item.Expr = n.expr(item.Expr, sc)
			}
			if w.Frame != nil {
				for _, b := range []*duckdbsql.FrameBound{w.Frame.Start, w.Frame.End} {
					if b != nil {
						b.Offset = n.expr(b.Offset, sc)
					}
				}
			}
		}
	case *duckdbsql.CaseExpr:
		x.Operand = n.expr(x.Operand, sc)
		for _, w := range x.Whens {
			w.Condition = n.expr(w.Condition, sc)
			w.Result = n.expr(w.Result, sc)
		}
		x.Else = n.expr(x.Else, sc)
	case *duckdbsql.CastExpr:
		x.Expr = n.expr(x.Expr, sc)
	case *duckdbsql.InExpr:
		x.Expr = n.expr(x.Expr, sc)
		n.exprs(x.Values, sc)
		sortByText(x.Values)
		n.stmt(x.Query, sc)
	case *duckdbsql.BetweenExpr:
		x.Expr = n.expr(x.Expr, sc)
		x.Low = n.expr(x.Low, sc)
		x.High = n.expr(x.High, sc)
	case *duckdbsql.LikeExpr:
		x.Expr = n.expr(x.Expr, sc)
		x.Pattern = n.expr(x.Pattern, sc)
	case *duckdbsql.IsExpr:
		x.Expr = n.expr(x.Expr, sc)
	case *duckdbsql.ExistsExpr:
		n.stmt(x.Query, sc)
	case *duckdbsql.SubqueryExpr:
		n.stmt(x.Query, sc)
	case *duckdbsql.IntervalExpr:
		x.Value = n.expr(x.Value, sc)
	case *duckdbsql.ExtractExpr:
		x.From = n.expr(x.From, sc)
	}
	return e
}

func (n *normalizer) exprs(es []duckdbsql.Expr, sc *scope) {
	for i, e := range es {
		es[i] = n.expr(e, sc)
	}
}

// flipped gives the operator that keeps a comparison's meaning when its
// operands are swapped.
var flipped = map[duckdbsql.TokenType]duckdbsql.TokenType{
	duckdbsql.TOKEN_EQ: duckdbsql.TOKEN_EQ,
	duckdbsql.TOKEN_NE: duckdbsql.TOKEN_NE,
	duckdbsql.TOKEN_LT: duckdbsql.TOKEN_GT,
	duckdbsql.TOKEN_GT: duckdbsql.TOKEN_LT,
	duckdbsql.TOKEN_LE: duckdbsql.TOKEN_GE,
	duckdbsql.TOKEN_GE: duckdbsql.TOKEN_LE,
}

// orderBinary puts the operands of commutative operators in printed order.
// AND and OR chains are flattened, sorted and rebuilt left-deep.
func orderBinary(x *duckdbsql.BinaryExpr) duckdbsql.Expr {
	switch x.Op {
	case duckdbsql.TOKEN_AND, duckdbsql.TOKEN_OR:
		operands := flatten(x, x.Op, nil)
		sortByText(operands)
		out := operands[0]
		for _, operand := range operands[1:] {
			out = &duckdbsql.BinaryExpr{Left: out, Op: x.Op, Right: operand}
		}
		return out
	case duckdbsql.TOKEN_PLUS, duckdbsql.TOKEN_STAR:
		if text(x.Left) > text(x.Right) {
			x.Left, x.Right = x.Right, x.Left
		}
	default:
		if op, ok := flipped[x.Op]; ok && text(x.Left) > text(x.Right) {
			x.Left, x.Right, x.Op = x.Right, x.Left, op
		}
	}
	return x
}

// flatten collects the operands of a chain of op.
func flatten(e duckdbsql.Expr, op duckdbsql.TokenType, out []duckdbsql.Expr) []duckdbsql.Expr {
	if b, ok := e.(*duckdbsql.BinaryExpr); ok && b.Op == op {
		out = flatten(b.Left, op, out)
		return flatten(b.Right, op, out)
	}
	return append(out, e)
}

func sortByText(es []duckdbsql.Expr) {
	keys := make(map[duckdbsql.Expr]string, len(es))
	for _, e := range es {
		keys[e] = text(e)
	}
	sort.SliceStable(es, func(i, j int) bool {
		return keys[es[i]] < keys[es[j]]
	})
}

func text(e duckdbsql.Expr) string {
	return duckdbsql.FormatExpr(e)
}
