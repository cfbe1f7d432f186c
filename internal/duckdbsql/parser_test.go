package duckdbsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleSelect(t *testing.T) {
	stmt, err := Parse("SELECT id, name AS n FROM users u WHERE u.id = 1")
	require.NoError(t, err)
	require.NotNil(t, stmt.Body)
	core := stmt.Body.Left
	require.Len(t, core.Columns, 2)

	assert.Equal(t, &ColumnRef{Column: "id"}, core.Columns[0].Expr)
	assert.Equal(t, "n", core.Columns[1].Alias)

	tn, ok := core.From.Source.(*TableName)
	require.True(t, ok)
	assert.Equal(t, "users", tn.Name)
	assert.Equal(t, "u", tn.Alias)

	where, ok := core.Where.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TOKEN_EQ, where.Op)
	assert.Equal(t, &ColumnRef{Table: "u", Column: "id"}, where.Left)
	assert.Equal(t, &Literal{Type: LiteralNumber, Value: "1"}, where.Right)
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"and_binds_tighter_than_or", "a OR b AND c", "a OR b AND c"},
		{"parens_override", "(a OR b) AND c", "(a OR b) AND c"},
		{"multiply_before_add", "1 + 2 * 3", "1 + 2 * 3"},
		{"left_assoc_minus", "a - b - c", "a - b - c"},
		{"right_grouping_kept", "a - (b - c)", "a - (b - c)"},
		{"not_over_comparison", "NOT a = b", "NOT a = b"},
		{"not_over_and", "NOT (a AND b)", "NOT (a AND b)"},
		{"between_and", "x BETWEEN 1 AND 2 AND y", "x BETWEEN 1 AND 2 AND y"},
		{"unary_minus", "-a * b", "-a * b"},
		{"double_negation", "- -a", "-(-a)"},
		{"cast_shorthand", "x::int + 1", "CAST(x AS INT) + 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := ParseExpr(tc.sql)
			require.NoError(t, err)
			assert.Equal(t, tc.want, FormatExpr(stripParens(expr)))
		})
	}
}

func TestParse_Predicates(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want Expr
	}{
		{
			name: "not_in_list",
			sql:  "a NOT IN (1, 2)",
			want: &InExpr{Expr: &ColumnRef{Column: "a"}, Not: true, Values: []Expr{
				&Literal{Type: LiteralNumber, Value: "1"},
				&Literal{Type: LiteralNumber, Value: "2"},
			}},
		},
		{
			name: "is_not_null",
			sql:  "a IS NOT NULL",
			want: &IsExpr{Expr: &ColumnRef{Column: "a"}, Not: true, Value: TOKEN_NULL},
		},
		{
			name: "ilike",
			sql:  "name ILIKE 'a%'",
			want: &LikeExpr{Expr: &ColumnRef{Column: "name"}, ILike: true, Pattern: &Literal{Type: LiteralString, Value: "a%"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := ParseExpr(tc.sql)
			require.NoError(t, err)
			assert.Equal(t, tc.want, expr)
		})
	}
}

func TestParse_Joins(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM a
		JOIN b ON a.id = b.a_id
		LEFT OUTER JOIN c USING (id)
		CROSS JOIN d, e`)
	require.NoError(t, err)

	joins := stmt.Body.Left.From.Joins
	require.Len(t, joins, 4)
	assert.Equal(t, JoinInner, joins[0].Type)
	assert.NotNil(t, joins[0].Condition)
	assert.Equal(t, JoinLeft, joins[1].Type)
	assert.Equal(t, []string{"id"}, joins[1].Using)
	assert.Equal(t, JoinCross, joins[2].Type)
	assert.Equal(t, JoinComma, joins[3].Type)
}

func TestParse_CTEAndSetOperations(t *testing.T) {
	stmt, err := Parse(`WITH recent AS (SELECT id FROM orders WHERE ts > '2024-01-01')
		SELECT id FROM recent UNION ALL SELECT id FROM archived ORDER BY id DESC NULLS LAST LIMIT 10 OFFSET 5;`)
	require.NoError(t, err)

	require.NotNil(t, stmt.With)
	require.Len(t, stmt.With.CTEs, 1)
	assert.Equal(t, "recent", stmt.With.CTEs[0].Name)

	assert.Equal(t, SetOpUnion, stmt.Body.Op)
	assert.True(t, stmt.Body.All)
	require.NotNil(t, stmt.Body.Right)

	require.Len(t, stmt.OrderBy, 1)
	assert.True(t, stmt.OrderBy[0].Desc)
	assert.Equal(t, NullsLast, stmt.OrderBy[0].Nulls)
	assert.Equal(t, &Literal{Type: LiteralNumber, Value: "10"}, stmt.Limit)
	assert.Equal(t, &Literal{Type: LiteralNumber, Value: "5"}, stmt.Offset)
}

func TestParse_WindowFunction(t *testing.T) {
	stmt, err := Parse(`SELECT sum(amount) FILTER (WHERE amount > 0)
		OVER (PARTITION BY customer ORDER BY ts ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS running
		FROM payments`)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	assert.Equal(t, "running", item.Alias)
	fn, ok := item.Expr.(*FuncCall)
	require.True(t, ok)
	assert.Equal(t, "sum", fn.Name)
	require.NotNil(t, fn.Filter)
	require.NotNil(t, fn.Over)
	assert.Len(t, fn.Over.PartitionBy, 1)
	assert.Len(t, fn.Over.OrderBy, 1)
	require.NotNil(t, fn.Over.Frame)
	assert.Equal(t, "ROWS", fn.Over.Frame.Unit)
	assert.Equal(t, FrameUnboundedPreceding, fn.Over.Frame.Start.Kind)
	assert.Equal(t, FrameCurrentRow, fn.Over.Frame.End.Kind)
}

func TestParse_SoftKeywordsAsColumns(t *testing.T) {
	_, err := Parse("SELECT first, last, rows, range, filter, over FROM t")
	require.NoError(t, err)
}

func TestParse_CountStarAndDistinct(t *testing.T) {
	stmt, err := Parse("SELECT COUNT(*), count(DISTINCT city) FROM users")
	require.NoError(t, err)

	cols := stmt.Body.Left.Columns
	first := cols[0].Expr.(*FuncCall)
	assert.True(t, first.Star)
	assert.Equal(t, "COUNT", first.Name)

	second := cols[1].Expr.(*FuncCall)
	assert.True(t, second.Distinct)
	assert.Len(t, second.Args, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantMsg string
	}{
		{"empty", "   ", "empty SQL"},
		{"not_select", "DELETE FROM t", `expected SELECT statement, got identifier "DELETE"`},
		{"multi_statement", "SELECT 1; SELECT 2", "multi-statement queries are not allowed"},
		{"trailing_garbage", "SELECT a FROM t t2 t3", `unexpected identifier "t3" after statement`},
		{"missing_from_table", "SELECT a FROM", "unexpected end of input, expected table name"},
		{"dangling_operator", "SELECT a + FROM t", "unexpected FROM in expression"},
		{"join_without_condition", "SELECT * FROM a JOIN b", "unexpected end of input, expected ON or USING"},
		{"bad_is", "SELECT a IS 5", `unexpected number "5", expected NULL, TRUE or FALSE after IS`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.sql)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.wantMsg, perr.Message)
		})
	}
}

func TestParse_LexicalErrorWins(t *testing.T) {
	_, err := Parse("SELECT 'unterminated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string literal")
}

// stripParens removes ParenExpr wrappers so the formatter decides grouping.
func stripParens(e Expr) Expr {
	switch expr := e.(type) {
	case *ParenExpr:
		return stripParens(expr.Expr)
	case *BinaryExpr:
		expr.Left = stripParens(expr.Left)
		expr.Right = stripParens(expr.Right)
	case *UnaryExpr:
		expr.Expr = stripParens(expr.Expr)
	case *BetweenExpr:
		expr.Expr = stripParens(expr.Expr)
		expr.Low = stripParens(expr.Low)
		expr.High = stripParens(expr.High)
	}
	return e
}
