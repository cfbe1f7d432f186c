package treediff

import (
	"fmt"
	"sort"
)

// Op is the kind of an edit.
type Op int

// Edit operations. Unchanged pairs are never reported.
const (
	OpRemove Op = iota
	OpInsert
	OpUpdate
	OpMove
)

func (op Op) String() string {
	switch op {
	case OpRemove:
		return "Remove"
	case OpInsert:
		return "Insert"
	case OpUpdate:
		return "Update"
	case OpMove:
		return "Move"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Edit is a single change turning the source tree into the target tree.
// Source is nil for inserts and Target is nil for removes.
type Edit struct {
	Op     Op
	Source *Node
	Target *Node
}

func (e Edit) String() string {
	switch e.Op {
	case OpInsert:
		return fmt.Sprintf("Insert(%s)", e.Target)
	case OpRemove:
		return fmt.Sprintf("Remove(%s)", e.Source)
	case OpUpdate:
		return fmt.Sprintf("Update(%s -> %s)", e.Source, e.Target)
	default:
		return fmt.Sprintf("%s(%s)", e.Op, e.Source)
	}
}

// Script derives the edits implied by a matching: a remove for every
// unmatched source node, an insert for every unmatched target node, an
// update for every matched pair whose labels differ, and a move for every
// matched pair that changed parent or position among its siblings.
//
// Edits are grouped by operation in that order; within a group they follow
// pre-order of the tree they describe. The number of edits never exceeds the
// combined node count of both trees.
func Script(m *Matching) []Edit {
	var removes, inserts, updates, moves []Edit

	for i, n := range m.src.nodes {
		j := m.ab[i]
		if j < 0 {
			removes = append(removes, Edit{Op: OpRemove, Source: n})
			continue
		}
		if n.Label != m.dst.nodes[j].Label {
			updates = append(updates, Edit{Op: OpUpdate, Source: n, Target: m.dst.nodes[j]})
		}
	}
	for j, n := range m.dst.nodes {
		if m.ba[j] < 0 {
			inserts = append(inserts, Edit{Op: OpInsert, Target: n})
		}
	}

	moved := make([]bool, m.src.len())
	for i := range m.src.nodes {
		j := m.ab[i]
		if j < 0 {
			continue
		}
		pi, pj := m.src.parent[i], m.dst.parent[j]
		if (pi < 0) != (pj < 0) || (pi >= 0 && m.ab[pi] != pj) {
			moved[i] = true
		}
	}
	for i := range m.src.nodes {
		if j := m.ab[i]; j >= 0 && !m.src.isLeaf(i) {
			m.markReordered(i, j, moved)
		}
	}
	for i, n := range m.src.nodes {
		if moved[i] {
			moves = append(moves, Edit{Op: OpMove, Source: n, Target: m.dst.nodes[m.ab[i]]})
		}
	}

	edits := make([]Edit, 0, len(removes)+len(inserts)+len(updates)+len(moves))
	edits = append(edits, removes...)
	edits = append(edits, inserts...)
	edits = append(edits, updates...)
	return append(edits, moves...)
}

// markReordered flags the children of source node i that stay under their
// parent's partner j but whose relative order changed. The children kept in
// place are a longest increasing run of target positions.
func (m *Matching) markReordered(i, j int, moved []bool) {
	var kids, positions []int
	for _, c := range m.src.child[i] {
		p := m.ab[c]
		if p < 0 || m.dst.parent[p] != j {
			continue
		}
		kids = append(kids, c)
		positions = append(positions, p)
	}
	keep := longestIncreasing(positions)
	for k, c := range kids {
		if !keep[k] {
			moved[c] = true
		}
	}
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of xs.
func longestIncreasing(xs []int) []bool {
	keep := make([]bool, len(xs))
	if len(xs) == 0 {
		return keep
	}
	tails := []int{} // index into xs of the smallest tail for each length
	prev := make([]int, len(xs))
	for k, x := range xs {
		pos := sort.Search(len(tails), func(t int) bool { return xs[tails[t]] >= x })
		if pos > 0 {
			prev[k] = tails[pos-1]
		} else {
			prev[k] = -1
		}
		if pos == len(tails) {
			tails = append(tails, k)
		} else {
			tails[pos] = k
		}
	}
	for k := tails[len(tails)-1]; k >= 0; k = prev[k] {
		keep[k] = true
	}
	return keep
}

// Diff matches a against b with DefaultOptions and returns the edit script.
func Diff(a, b *Node) []Edit {
	return Script(Match(a, b, DefaultOptions()))
}
