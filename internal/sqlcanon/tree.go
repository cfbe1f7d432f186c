package sqlcanon

import (
	"strings"

	"sql-eval/internal/duckdbsql"
	"sql-eval/internal/treediff"
)

// ToTree converts a statement into the labelled tree compared by the
// structural distance. Each AST node becomes one tree node whose kind is
// the node type and whose label is its own scalar content. Clauses that the
// AST stores as plain fields (WHERE, GROUP BY, LIMIT, ...) get a wrapper
// node so that the same expression in different clauses never matches.
func ToTree(stmt *duckdbsql.SelectStmt) *treediff.Node {
	if stmt == nil {
		return nil
	}
	return stmtTree(stmt)
}

func stmtTree(stmt *duckdbsql.SelectStmt) *treediff.Node {
	n := treediff.NewNode("Select", "")
	if w := stmt.With; w != nil {
		with := treediff.NewNode("With", flag(w.Recursive, "RECURSIVE"))
		for _, cte := range w.CTEs {
			label := cte.Name
			if len(cte.Columns) > 0 {
				label += "(" + strings.Join(cte.Columns, ", ") + ")"
			}
			with.Children = append(with.Children, treediff.NewNode("CTE", label, stmtTree(cte.Select)))
		}
		n.Children = append(n.Children, with)
	}
	if stmt.Body != nil {
		n.Children = append(n.Children, bodyTree(stmt.Body))
	}
	if len(stmt.OrderBy) > 0 {
		n.Children = append(n.Children, orderTree(stmt.OrderBy))
	}
	n.Children = appendClause(n.Children, "Limit", stmt.Limit)
	n.Children = appendClause(n.Children, "Offset", stmt.Offset)
	return n
}

func bodyTree(body *duckdbsql.SelectBody) *treediff.Node {
	if body.Op == duckdbsql.SetOpNone || body.Right == nil {
		return coreTree(body.Left)
	}
	label := body.Op.String()
	if body.All {
		label += " ALL"
	}
	return treediff.NewNode("SetOp", label, coreTree(body.Left), bodyTree(body.Right))
}

func coreTree(core *duckdbsql.SelectCore) *treediff.Node {
	n := treediff.NewNode("Core", flag(core.Distinct, "DISTINCT"))
	proj := treediff.NewNode("Projection", "")
	for _, item := range core.Columns {
		proj.Children = append(proj.Children, treediff.NewNode("Item", item.Alias, exprTree(item.Expr)))
	}
	n.Children = append(n.Children, proj)

	if core.From != nil {
		from := treediff.NewNode("From", "", tableTree(core.From.Source))
		for _, j := range core.From.Joins {
			label := j.Type.String()
			if j.Natural {
				label = "NATURAL " + label
			}
			if len(j.Using) > 0 {
				label += " USING (" + strings.Join(j.Using, ", ") + ")"
			}
			join := treediff.NewNode("Join", label, tableTree(j.Right))
			join.Children = appendClause(join.Children, "On", j.Condition)
			from.Children = append(from.Children, join)
		}
		n.Children = append(n.Children, from)
	}
	n.Children = appendClause(n.Children, "Where", core.Where)
	if len(core.GroupBy) > 0 {
		n.Children = append(n.Children, treediff.NewNode("GroupBy", "", exprTrees(core.GroupBy)...))
	}
	n.Children = appendClause(n.Children, "Having", core.Having)
	n.Children = appendClause(n.Children, "Qualify", core.Qualify)
	return n
}

func tableTree(ref duckdbsql.TableRef) *treediff.Node {
	switch t := ref.(type) {
	case *duckdbsql.TableName:
		label := strings.Join(nonEmpty(t.Catalog, t.Schema, t.Name), ".")
		if t.Alias != "" {
			label += " AS " + t.Alias
		}
		return treediff.NewNode("Table", label)
	case *duckdbsql.DerivedTable:
		return treediff.NewNode("Subquery", t.Alias, stmtTree(t.Select))
	case *duckdbsql.FuncTable:
		return treediff.NewNode("TableFunction", t.Alias, exprTree(t.Func))
	}
	return treediff.NewNode("Table", "")
}

func orderTree(items []*duckdbsql.OrderByItem) *treediff.Node {
	n := treediff.NewNode("OrderBy", "")
	for _, item := range items {
		var mods []string
		if item.Desc {
			mods = append(mods, "DESC")
		}
		switch item.Nulls {
		case duckdbsql.NullsFirst:
			mods = append(mods, "NULLS FIRST")
		case duckdbsql.NullsLast:
			mods = append(mods, "NULLS LAST")
		}
		n.Children = append(n.Children, treediff.NewNode("Ordered", strings.Join(mods, " "), exprTree(item.Expr)))
	}
	return n
}

func exprTrees(es []duckdbsql.Expr) []*treediff.Node {
	out := make([]*treediff.Node, 0, len(es))
	for _, e := range es {
		if e != nil {
			out = append(out, exprTree(e))
		}
	}
	return out
}

func appendClause(children []*treediff.Node, kind string, e duckdbsql.Expr) []*treediff.Node {
	if e == nil {
		return children
	}
	return append(children, treediff.NewNode(kind, "", exprTree(e)))
}

func exprTree(e duckdbsql.Expr) *treediff.Node {
	switch x := e.(type) {
	case *duckdbsql.ColumnRef:
		return treediff.NewNode("Column", strings.Join(nonEmpty(x.Schema, x.Table, x.Column), "."))
	case *duckdbsql.Literal:
		return treediff.NewNode("Literal", duckdbsql.FormatExpr(x))
	case *duckdbsql.StarExpr:
		return treediff.NewNode("Star", x.Table)
	case *duckdbsql.BinaryExpr:
		return treediff.NewNode("Binary", x.Op.String(), exprTree(x.Left), exprTree(x.Right))
	case *duckdbsql.UnaryExpr:
		return treediff.NewNode("Unary", x.Op.String(), exprTree(x.Expr))
	case *duckdbsql.ParenExpr:
		return treediff.NewNode("Paren", "", exprTree(x.Expr))
	case *duckdbsql.FuncCall:
		return funcTree(x)
	case *duckdbsql.CaseExpr:
		n := treediff.NewNode("Case", "")
		n.Children = appendClause(n.Children, "Operand", x.Operand)
		for _, w := range x.Whens {
			n.Children = append(n.Children, treediff.NewNode("When", "", exprTree(w.Condition), exprTree(w.Result)))
		}
		n.Children = appendClause(n.Children, "Else", x.Else)
		return n
	case *duckdbsql.CastExpr:
		label := x.TypeName
		if x.Try {
			label = "TRY " + label
		}
		return treediff.NewNode("Cast", label, exprTree(x.Expr))
	case *duckdbsql.InExpr:
		n := treediff.NewNode("In", flag(x.Not, "NOT"), exprTree(x.Expr))
		n.Children = append(n.Children, exprTrees(x.Values)...)
		if x.Query != nil {
			n.Children = append(n.Children, stmtTree(x.Query))
		}
		return n
	case *duckdbsql.BetweenExpr:
		return treediff.NewNode("Between", flag(x.Not, "NOT"), exprTree(x.Expr), exprTree(x.Low), exprTree(x.High))
	case *duckdbsql.LikeExpr:
		label := "LIKE"
		if x.ILike {
			label = "ILIKE"
		}
		if x.Not {
			label = "NOT " + label
		}
		return treediff.NewNode("Like", label, exprTree(x.Expr), exprTree(x.Pattern))
	case *duckdbsql.IsExpr:
		label := x.Value.String()
		if x.Not {
			label = "NOT " + label
		}
		return treediff.NewNode("Is", label, exprTree(x.Expr))
	case *duckdbsql.ExistsExpr:
		return treediff.NewNode("Exists", "", stmtTree(x.Query))
	case *duckdbsql.SubqueryExpr:
		return treediff.NewNode("ScalarSubquery", "", stmtTree(x.Query))
	case *duckdbsql.IntervalExpr:
		return treediff.NewNode("Interval", x.Unit, exprTree(x.Value))
	case *duckdbsql.ExtractExpr:
		return treediff.NewNode("Extract", x.Field, exprTree(x.From))
	}
	return treediff.NewNode("Expr", "")
}

func funcTree(fn *duckdbsql.FuncCall) *treediff.Node {
	label := fn.Name
	switch {
	case fn.Star:
		label += "(*)"
	case fn.Distinct:
		label += " DISTINCT"
	}
	n := treediff.NewNode("Func", label, exprTrees(fn.Args)...)
	n.Children = appendClause(n.Children, "Filter", fn.Filter)
	if w := fn.Over; w != nil {
		window := treediff.NewNode("Window", "")
		if len(w.PartitionBy) > 0 {
			window.Children = append(window.Children, treediff.NewNode("PartitionBy", "", exprTrees(w.PartitionBy)...))
		}
		if len(w.OrderBy) > 0 {
			window.Children = append(window.Children, orderTree(w.OrderBy))
		}
		if f := w.Frame; f != nil {
			frame := treediff.NewNode("Frame", f.Unit)
			for _, b := range []*duckdbsql.FrameBound{f.Start, f.End} {
				if b != nil {
					bound := treediff.NewNode("Bound", frameBoundLabel(b.Kind))
					bound.Children = exprTrees([]duckdbsql.Expr{b.Offset})
					frame.Children = append(frame.Children, bound)
				}
			}
			window.Children = append(window.Children, frame)
		}
		n.Children = append(n.Children, window)
	}
	return n
}

func frameBoundLabel(kind duckdbsql.FrameBoundKind) string {
	switch kind {
	case duckdbsql.FrameUnboundedPreceding:
		return "UNBOUNDED PRECEDING"
	case duckdbsql.FramePreceding:
		return "PRECEDING"
	case duckdbsql.FrameCurrentRow:
		return "CURRENT ROW"
	case duckdbsql.FrameFollowing:
		return "FOLLOWING"
	default:
		return "UNBOUNDED FOLLOWING"
	}
}

func flag(set bool, label string) string {
	if set {
		return label
	}
	return ""
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
