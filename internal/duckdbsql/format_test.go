package duckdbsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "select_star",
			sql:  "select * from t",
			want: "SELECT * FROM t",
		},
		{
			name: "aliases",
			sql:  "SELECT x AS y, z w FROM t AS tt",
			want: "SELECT x AS y, z AS w FROM t AS tt",
		},
		{
			name: "reserved_and_mixed_case_identifiers_are_quoted",
			sql:  `SELECT "order", "Name", "two words" FROM "select"`,
			want: `SELECT "order", "Name", "two words" FROM "select"`,
		},
		{
			name: "unquoted_upper_case_is_quoted_on_output",
			sql:  "SELECT Id FROM Users",
			want: `SELECT "Id" FROM "Users"`,
		},
		{
			name: "string_escape",
			sql:  "SELECT 'it''s'",
			want: "SELECT 'it''s'",
		},
		{
			name: "not_equal_spelling",
			sql:  "SELECT * FROM t WHERE a != 1",
			want: "SELECT * FROM t WHERE a <> 1",
		},
		{
			name: "joins",
			sql:  "SELECT * FROM a INNER JOIN b ON a.id = b.id LEFT OUTER JOIN c USING (id) NATURAL JOIN d, e",
			want: "SELECT * FROM a JOIN b ON a.id = b.id LEFT JOIN c USING (id) NATURAL JOIN d, e",
		},
		{
			name: "derived_table",
			sql:  "SELECT s.n FROM (SELECT count(*) AS n FROM t) s",
			want: "SELECT s.n FROM (SELECT count(*) AS n FROM t) AS s",
		},
		{
			name: "group_having_order_limit",
			sql:  "SELECT city, count(*) FROM users GROUP BY city HAVING count(*) > 1 ORDER BY 2 DESC LIMIT 5",
			want: "SELECT city, count(*) FROM users GROUP BY city HAVING count(*) > 1 ORDER BY 2 DESC LIMIT 5",
		},
		{
			name: "case_cast_extract",
			sql:  "SELECT CASE WHEN a THEN 1 ELSE 0 END, TRY_CAST(b AS decimal(10,2)), EXTRACT(year FROM ts) FROM t",
			want: "SELECT CASE WHEN a THEN 1 ELSE 0 END, TRY_CAST(b AS DECIMAL(10, 2)), EXTRACT(YEAR FROM ts) FROM t",
		},
		{
			name: "subqueries",
			sql:  "SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.id = t.id) AND a IN (SELECT a FROM v)",
			want: "SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.id = t.id) AND a IN (SELECT a FROM v)",
		},
		{
			name: "interval",
			sql:  "SELECT now() - INTERVAL 3 day",
			want: "SELECT now() - INTERVAL 3 DAY",
		},
		{
			name: "cte_recursive_union",
			sql:  "WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r WHERE n < 3) SELECT n FROM r",
			want: "WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r WHERE n < 3) SELECT n FROM r",
		},
		{
			name: "window",
			sql:  "SELECT row_number() OVER (PARTITION BY a ORDER BY b ASC NULLS FIRST) FROM t QUALIFY row_number() OVER (PARTITION BY a ORDER BY b) = 1",
			want: "SELECT row_number() OVER (PARTITION BY a ORDER BY b NULLS FIRST) FROM t QUALIFY row_number() OVER (PARTITION BY a ORDER BY b) = 1",
		},
		{
			name: "left_function",
			sql:  "SELECT left(name, 2) FROM t",
			want: "SELECT left(name, 2) FROM t",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := Parse(tc.sql)
			require.NoError(t, err)
			got := Format(stmt)
			assert.Equal(t, tc.want, got)

			// The printed form must parse and print identically.
			again, err := Parse(got)
			require.NoError(t, err, "re-parse %q", got)
			assert.Equal(t, got, Format(again))
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users", "users"},
		{"_tmp1", "_tmp1"},
		{"Users", `"Users"`},
		{"1abc", `"1abc"`},
		{"select", `"select"`},
		{"a b", `"a b"`},
		{`a"b`, `"a""b"`},
		{"", `""`},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, QuoteIdent(tc.in))
		})
	}
}
