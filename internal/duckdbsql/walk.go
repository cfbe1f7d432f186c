package duckdbsql

// Walk traverses the tree rooted at n in pre-order. fn is called for every
// node; returning false skips that node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the direct child nodes of n in source order. Absent
// optional parts (nil clauses, nil expressions) are omitted.
func Children(n Node) []Node {
	var out []Node
	addExpr := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	addExprs := func(es []Expr) {
		for _, e := range es {
			addExpr(e)
		}
	}
	addOrderBy := func(items []*OrderByItem) {
		for _, item := range items {
			out = append(out, item)
		}
	}
	addSelect := func(s *SelectStmt) {
		if s != nil {
			out = append(out, s)
		}
	}

	switch node := n.(type) {
	case *SelectStmt:
		if node.With != nil {
			out = append(out, node.With)
		}
		if node.Body != nil {
			out = append(out, node.Body)
		}
		addOrderBy(node.OrderBy)
		addExpr(node.Limit)
		addExpr(node.Offset)
	case *WithClause:
		for _, cte := range node.CTEs {
			out = append(out, cte)
		}
	case *CTE:
		addSelect(node.Select)
	case *SelectBody:
		if node.Left != nil {
			out = append(out, node.Left)
		}
		if node.Right != nil {
			out = append(out, node.Right)
		}
	case *SelectCore:
		for _, item := range node.Columns {
			out = append(out, item)
		}
		if node.From != nil {
			out = append(out, node.From)
		}
		addExpr(node.Where)
		addExprs(node.GroupBy)
		addExpr(node.Having)
		addExpr(node.Qualify)
	case *SelectItem:
		addExpr(node.Expr)
	case *FromClause:
		if node.Source != nil {
			out = append(out, node.Source)
		}
		for _, j := range node.Joins {
			out = append(out, j)
		}
	case *Join:
		if node.Right != nil {
			out = append(out, node.Right)
		}
		addExpr(node.Condition)
	case *DerivedTable:
		addSelect(node.Select)
	case *FuncTable:
		if node.Func != nil {
			out = append(out, node.Func)
		}
	case *OrderByItem:
		addExpr(node.Expr)

	case *BinaryExpr:
		addExpr(node.Left)
		addExpr(node.Right)
	case *UnaryExpr:
		addExpr(node.Expr)
	case *ParenExpr:
		addExpr(node.Expr)
	case *FuncCall:
		addExprs(node.Args)
		addExpr(node.Filter)
		if node.Over != nil {
			out = append(out, node.Over)
		}
	case *WindowSpec:
		addExprs(node.PartitionBy)
		addOrderBy(node.OrderBy)
		if node.Frame != nil {
			out = append(out, node.Frame)
		}
	case *FrameSpec:
		if node.Start != nil {
			out = append(out, node.Start)
		}
		if node.End != nil {
			out = append(out, node.End)
		}
	case *FrameBound:
		addExpr(node.Offset)
	case *CaseExpr:
		addExpr(node.Operand)
		for _, w := range node.Whens {
			out = append(out, w)
		}
		addExpr(node.Else)
	case *WhenClause:
		addExpr(node.Condition)
		addExpr(node.Result)
	case *CastExpr:
		addExpr(node.Expr)
	case *InExpr:
		addExpr(node.Expr)
		addExprs(node.Values)
		addSelect(node.Query)
	case *BetweenExpr:
		addExpr(node.Expr)
		addExpr(node.Low)
		addExpr(node.High)
	case *LikeExpr:
		addExpr(node.Expr)
		addExpr(node.Pattern)
	case *IsExpr:
		addExpr(node.Expr)
	case *ExistsExpr:
		addSelect(node.Query)
	case *SubqueryExpr:
		addSelect(node.Query)
	case *IntervalExpr:
		addExpr(node.Value)
	case *ExtractExpr:
		addExpr(node.From)
	}
	return out
}

// CollectTableNames returns the distinct table names referenced anywhere in
// stmt, in order of first appearance. CTE names are included when referenced.
func CollectTableNames(stmt *SelectStmt) []string {
	seen := make(map[string]bool)
	var names []string
	Walk(stmt, func(n Node) bool {
		if t, ok := n.(*TableName); ok && !seen[t.Name] {
			seen[t.Name] = true
			names = append(names, t.Name)
		}
		return true
	})
	return names
}
