package duckdbsql

func (f *formatter) formatSelectStmt(stmt *SelectStmt) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		f.formatWithClause(stmt.With)
		f.space()
	}
	f.formatSelectBody(stmt.Body)
	if len(stmt.OrderBy) > 0 {
		f.write(" ORDER BY ")
		f.formatOrderByList(stmt.OrderBy)
	}
	if stmt.Limit != nil {
		f.write(" LIMIT ")
		f.formatExpr(stmt.Limit)
	}
	if stmt.Offset != nil {
		f.write(" OFFSET ")
		f.formatExpr(stmt.Offset)
	}
}

func (f *formatter) formatWithClause(wc *WithClause) {
	f.write("WITH ")
	if wc.Recursive {
		f.write("RECURSIVE ")
	}
	f.commaSep(len(wc.CTEs), func(i int) {
		cte := wc.CTEs[i]
		f.writeIdent(cte.Name)
		if len(cte.Columns) > 0 {
			f.write("(")
			f.commaSep(len(cte.Columns), func(j int) { f.writeIdent(cte.Columns[j]) })
			f.write(")")
		}
		f.write(" AS (")
		f.formatSelectStmt(cte.Select)
		f.write(")")
	})
}

func (f *formatter) formatSelectBody(body *SelectBody) {
	if body == nil {
		return
	}
	f.formatSelectCore(body.Left)
	if body.Op == SetOpNone || body.Right == nil {
		return
	}
	f.space()
	f.write(body.Op.String())
	if body.All {
		f.write(" ALL")
	}
	f.space()
	f.formatSelectBody(body.Right)
}

func (f *formatter) formatSelectCore(core *SelectCore) {
	if core == nil {
		return
	}
	f.write("SELECT ")
	if core.Distinct {
		f.write("DISTINCT ")
	}
	f.commaSep(len(core.Columns), func(i int) {
		item := core.Columns[i]
		f.formatExpr(item.Expr)
		if item.Alias != "" {
			f.write(" AS ")
			f.writeIdent(item.Alias)
		}
	})
	if core.From != nil {
		f.write(" FROM ")
		f.formatFromClause(core.From)
	}
	if core.Where != nil {
		f.write(" WHERE ")
		f.formatExpr(core.Where)
	}
	if len(core.GroupBy) > 0 {
		f.write(" GROUP BY ")
		f.commaSep(len(core.GroupBy), func(i int) { f.formatExpr(core.GroupBy[i]) })
	}
	if core.Having != nil {
		f.write(" HAVING ")
		f.formatExpr(core.Having)
	}
	if core.Qualify != nil {
		f.write(" QUALIFY ")
		f.formatExpr(core.Qualify)
	}
}

func (f *formatter) formatFromClause(from *FromClause) {
	f.formatTableRef(from.Source)
	for _, j := range from.Joins {
		if j.Type == JoinComma {
			f.write(", ")
			f.formatTableRef(j.Right)
			continue
		}
		f.space()
		if j.Natural {
			f.write("NATURAL ")
		}
		f.write(j.Type.String())
		f.space()
		f.formatTableRef(j.Right)
		switch {
		case j.Condition != nil:
			f.write(" ON ")
			f.formatExpr(j.Condition)
		case len(j.Using) > 0:
			f.write(" USING (")
			f.commaSep(len(j.Using), func(i int) { f.writeIdent(j.Using[i]) })
			f.write(")")
		}
	}
}

func (f *formatter) formatTableRef(ref TableRef) {
	var alias string
	switch t := ref.(type) {
	case *TableName:
		f.writeQualified(t.Catalog, t.Schema, t.Name)
		alias = t.Alias
	case *DerivedTable:
		f.write("(")
		f.formatSelectStmt(t.Select)
		f.write(")")
		alias = t.Alias
	case *FuncTable:
		f.formatFuncCall(t.Func)
		alias = t.Alias
	}
	if alias != "" {
		f.write(" AS ")
		f.writeIdent(alias)
	}
}

func (f *formatter) formatOrderByList(items []*OrderByItem) {
	f.commaSep(len(items), func(i int) {
		item := items[i]
		f.formatExpr(item.Expr)
		if item.Desc {
			f.write(" DESC")
		}
		switch item.Nulls {
		case NullsFirst:
			f.write(" NULLS FIRST")
		case NullsLast:
			f.write(" NULLS LAST")
		}
	})
}
