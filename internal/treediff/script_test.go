package treediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name string) *Node {
	return NewNode("Column", name)
}

func editStrings(edits []Edit) []string {
	out := make([]string, len(edits))
	for i, e := range edits {
		out[i] = e.String()
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want []string
	}{
		{
			name: "identical trees",
			a:    NewNode("Select", "", col("amount"), NewNode("Table", "orders")),
			b:    NewNode("Select", "", col("amount"), NewNode("Table", "orders")),
			want: []string{},
		},
		{
			name: "similar label is an update",
			a:    NewNode("Select", "", col("amount"), NewNode("Table", "orders")),
			b:    NewNode("Select", "", col("amounts"), NewNode("Table", "orders")),
			want: []string{"Update(Column(amount) -> Column(amounts))"},
		},
		{
			name: "unrelated label is a remove and an insert",
			a:    NewNode("Select", "", col("x"), NewNode("Table", "orders")),
			b:    NewNode("Select", "", col("y"), NewNode("Table", "orders")),
			want: []string{"Remove(Column(x))", "Insert(Column(y))"},
		},
		{
			name: "added leaf",
			a:    NewNode("Select", "", col("amount"), NewNode("Table", "orders")),
			b:    NewNode("Select", "", col("amount"), col("region"), NewNode("Table", "orders")),
			want: []string{"Insert(Column(region))"},
		},
		{
			name: "swapped siblings",
			a:    NewNode("Select", "", col("amount"), col("region")),
			b:    NewNode("Select", "", col("region"), col("amount")),
			want: []string{"Move(Column(amount))"},
		},
		{
			name: "unwrapped root",
			a:    NewNode("Paren", "", col("amount")),
			b:    col("amount"),
			want: []string{"Remove(Paren)", "Move(Column(amount))"},
		},
		{
			name: "kinds never match",
			a:    NewNode("Column", "orders"),
			b:    NewNode("Table", "orders"),
			want: []string{"Remove(Column(orders))", "Insert(Table(orders))"},
		},
		{
			name: "empty source",
			a:    nil,
			b:    NewNode("Select", "", col("amount")),
			want: []string{"Insert(Select)", "Insert(Column(amount))"},
		},
		{
			name: "both empty",
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editStrings(Diff(tc.a, tc.b))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDiff_BoundedByNodeCount(t *testing.T) {
	pairs := [][2]*Node{
		{
			NewNode("Select", "", col("a"), col("b")),
			NewNode("Union", "", NewNode("Limit", "", NewNode("Literal", "10"))),
		},
		{
			NewNode("Select", "", col("amount"), col("region"), col("total")),
			NewNode("Select", "", col("total"), col("region"), col("amount")),
		},
		{
			NewNode("Where", "", NewNode("Eq", "", col("status"), NewNode("Literal", "'paid'"))),
			NewNode("Where", "", NewNode("Eq", "", NewNode("Literal", "'paid'"), col("state"))),
		},
	}
	for _, p := range pairs {
		edits := Diff(p[0], p[1])
		assert.LessOrEqual(t, len(edits), Count(p[0])+Count(p[1]))
	}
}

func TestDiff_DisjointTreesRemoveAndInsertEverything(t *testing.T) {
	a := NewNode("Select", "", col("a"), col("b"))
	b := NewNode("Union", "", NewNode("Limit", "", NewNode("Literal", "10")))

	edits := Diff(a, b)
	require.Len(t, edits, Count(a)+Count(b))
	for _, e := range edits[:Count(a)] {
		assert.Equal(t, OpRemove, e.Op)
	}
	for _, e := range edits[Count(a):] {
		assert.Equal(t, OpInsert, e.Op)
	}
}

func TestDiff_Deterministic(t *testing.T) {
	a := NewNode("Select", "", col("amount"), col("amount"), col("region"))
	b := NewNode("Select", "", col("region"), col("amount"), col("amounts"))

	first := editStrings(Diff(a, b))
	for range 10 {
		assert.Equal(t, first, editStrings(Diff(a, b)))
	}
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "Remove", OpRemove.String())
	assert.Equal(t, "Insert", OpInsert.String())
	assert.Equal(t, "Update", OpUpdate.String())
	assert.Equal(t, "Move", OpMove.String())
	assert.Equal(t, "Op(9)", Op(9).String())
}

func TestLongestIncreasing(t *testing.T) {
	tests := []struct {
		in   []int
		want []bool
	}{
		{in: nil, want: []bool{}},
		{in: []int{1, 2, 3}, want: []bool{true, true, true}},
		{in: []int{2, 1}, want: []bool{false, true}},
		{in: []int{3, 1, 2}, want: []bool{false, true, true}},
		{in: []int{1, 5, 2, 3}, want: []bool{true, false, true, true}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, longestIncreasing(tc.in), "input %v", tc.in)
	}
}
