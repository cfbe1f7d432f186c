// Package treediff computes edit scripts between labelled ordered trees.
//
// Diffing runs in two stages that can be used separately: Match pairs nodes
// of the two trees following the ChangeDistiller algorithm (Fluri et al.),
// and Script turns a matching into insert, remove, update and move edits.
package treediff

import "strings"

// Node is one node of a labelled ordered tree. Kind is the node type and
// takes part in matching (only nodes of the same kind are ever paired);
// Label is the node's own content, and a label change between matched nodes
// is an update.
type Node struct {
	Kind     string
	Label    string
	Children []*Node
}

// NewNode returns a node with the given children.
func NewNode(kind, label string, children ...*Node) *Node {
	return &Node{Kind: kind, Label: label, Children: children}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// String renders n as Kind or Kind(Label).
func (n *Node) String() string {
	if n.Label == "" {
		return n.Kind
	}
	return n.Kind + "(" + n.Label + ")"
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in a full pre-order walk of n.
// A nil tree has zero nodes.
func Count(n *Node) int {
	total := 0
	n.Walk(func(*Node) { total++ })
	return total
}

// Equal reports whether two trees have the same shape, kinds and labels.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Label != b.Label || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Format renders the tree as an indented outline, one node per line.
func Format(n *Node) string {
	var sb strings.Builder
	var visit func(*Node, int)
	visit = func(n *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.String())
		sb.WriteByte('\n')
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	if n != nil {
		visit(n, 0)
	}
	return sb.String()
}

// tree is a pre-order index over a Node tree.
type tree struct {
	nodes  []*Node
	parent []int // -1 for the root
	size   []int // subtree size including the node
	child  [][]int
	text   []string // labels of the subtree, used for inner-node similarity
}

func indexTree(root *Node) *tree {
	t := &tree{}
	if root == nil {
		return t
	}
	var visit func(n *Node, parent int) int
	visit = func(n *Node, parent int) int {
		i := len(t.nodes)
		t.nodes = append(t.nodes, n)
		t.parent = append(t.parent, parent)
		t.size = append(t.size, 1)
		t.child = append(t.child, nil)
		t.text = append(t.text, "")
		for _, c := range n.Children {
			ci := visit(c, i)
			t.child[i] = append(t.child[i], ci)
			t.size[i] += t.size[ci]
		}
		return i
	}
	visit(root, -1)

	for i := range t.nodes {
		var labels []string
		for j := i; j < i+t.size[i]; j++ {
			if l := t.nodes[j].Label; l != "" {
				labels = append(labels, l)
			}
		}
		t.text[i] = strings.Join(labels, " ")
	}
	return t
}

func (t *tree) len() int {
	return len(t.nodes)
}

func (t *tree) isLeaf(i int) bool {
	return len(t.child[i]) == 0
}

// contains reports whether j lies in the subtree rooted at i.
func (t *tree) contains(i, j int) bool {
	return j >= i && j < i+t.size[i]
}

func (t *tree) leafCount(i int) int {
	n := 0
	for j := i; j < i+t.size[i]; j++ {
		if t.isLeaf(j) {
			n++
		}
	}
	return n
}

// bfs returns node indices in breadth-first order.
func (t *tree) bfs() []int {
	if t.len() == 0 {
		return nil
	}
	order := []int{0}
	for k := 0; k < len(order); k++ {
		order = append(order, t.child[order[k]]...)
	}
	return order
}
