package duckdbsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_PreOrder(t *testing.T) {
	stmt, err := Parse("SELECT a FROM t WHERE b = 1")
	require.NoError(t, err)

	var kinds []string
	Walk(stmt, func(n Node) bool {
		switch n.(type) {
		case *SelectStmt:
			kinds = append(kinds, "stmt")
		case *SelectBody:
			kinds = append(kinds, "body")
		case *SelectCore:
			kinds = append(kinds, "core")
		case *SelectItem:
			kinds = append(kinds, "item")
		case *ColumnRef:
			kinds = append(kinds, "col")
		case *FromClause:
			kinds = append(kinds, "from")
		case *TableName:
			kinds = append(kinds, "table")
		case *BinaryExpr:
			kinds = append(kinds, "binary")
		case *Literal:
			kinds = append(kinds, "lit")
		}
		return true
	})

	assert.Equal(t, []string{"stmt", "body", "core", "item", "col", "from", "table", "binary", "col", "lit"}, kinds)
}

func TestWalk_SkipChildren(t *testing.T) {
	stmt, err := Parse("SELECT (SELECT max(x) FROM inner_t) FROM outer_t")
	require.NoError(t, err)

	var tables []string
	Walk(stmt, func(n Node) bool {
		if _, ok := n.(*SubqueryExpr); ok {
			return false
		}
		if tn, ok := n.(*TableName); ok {
			tables = append(tables, tn.Name)
		}
		return true
	})
	assert.Equal(t, []string{"outer_t"}, tables)
}

func TestCollectTableNames(t *testing.T) {
	stmt, err := Parse(`WITH c AS (SELECT * FROM orders)
		SELECT * FROM c JOIN customers ON c.cid = customers.id
		WHERE c.id IN (SELECT order_id FROM refunds) AND EXISTS (SELECT 1 FROM orders)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "c", "customers", "refunds"}, CollectTableNames(stmt))
}
