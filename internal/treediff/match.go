package treediff

import (
	"sort"
	"strconv"
	"strings"
)

// Options holds the ChangeDistiller thresholds.
type Options struct {
	// F is the minimum bigram similarity for two nodes to be paired.
	F float64
	// T is the minimum fraction of common matched leaves for two inner
	// nodes to be paired. It is lowered to 0.4 for nodes with at most
	// four leaves.
	T float64
}

// DefaultOptions returns the thresholds recommended by Fluri et al.
func DefaultOptions() Options {
	return Options{F: 0.6, T: 0.6}
}

// Matching pairs nodes of a source tree with nodes of a target tree.
// Every node takes part in at most one pair.
type Matching struct {
	src, dst *tree
	ab, ba   []int // partner index or -1
}

func newMatching(src, dst *tree) *Matching {
	m := &Matching{src: src, dst: dst, ab: make([]int, src.len()), ba: make([]int, dst.len())}
	for i := range m.ab {
		m.ab[i] = -1
	}
	for j := range m.ba {
		m.ba[j] = -1
	}
	return m
}

func (m *Matching) pair(i, j int) {
	m.ab[i] = j
	m.ba[j] = i
}

// Len returns the number of matched pairs.
func (m *Matching) Len() int {
	n := 0
	for _, j := range m.ab {
		if j >= 0 {
			n++
		}
	}
	return n
}

// Partner returns the target node matched with the source node n.
func (m *Matching) Partner(n *Node) (*Node, bool) {
	for i, node := range m.src.nodes {
		if node == n && m.ab[i] >= 0 {
			return m.dst.nodes[m.ab[i]], true
		}
	}
	return nil, false
}

// Match computes a ChangeDistiller matching between the trees rooted at a
// and b.
//
// Identical subtrees are paired first, largest first. Remaining leaves of
// the same kind are paired greedily by descending label similarity, and
// remaining inner nodes are paired in breadth-first order by the share of
// matched leaves they have in common. Ties are resolved by pre-order
// position, so the result is deterministic.
func Match(a, b *Node, opts Options) *Matching {
	m := newMatching(indexTree(a), indexTree(b))
	m.matchIdenticalSubtrees()
	m.matchLeaves(opts)
	m.matchInner(opts)
	return m
}

// matchIdenticalSubtrees pairs structurally identical subtrees of at least
// two nodes.
func (m *Matching) matchIdenticalSubtrees() {
	ids := make(map[string]int)
	srcIDs := subtreeIDs(m.src, ids)
	dstIDs := subtreeIDs(m.dst, ids)

	byID := make(map[int][]int)
	for j := range m.dst.nodes {
		byID[dstIDs[j]] = append(byID[dstIDs[j]], j)
	}

	order := make([]int, m.src.len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return m.src.size[order[x]] > m.src.size[order[y]]
	})

	for _, i := range order {
		if m.src.size[i] < 2 || m.ab[i] >= 0 {
			continue
		}
		best := -1
		for _, j := range byID[srcIDs[i]] {
			if m.ba[j] >= 0 {
				continue
			}
			if best < 0 || abs(i-j) < abs(i-best) {
				best = j
			}
		}
		if best < 0 {
			continue
		}
		// Identical subtrees have identical pre-order layouts.
		for k := 0; k < m.src.size[i]; k++ {
			m.pair(i+k, best+k)
		}
	}
}

// subtreeIDs assigns every node an integer that is equal for two nodes
// exactly when their subtrees are identical. ids is shared between trees.
func subtreeIDs(t *tree, ids map[string]int) []int {
	out := make([]int, t.len())
	for i := t.len() - 1; i >= 0; i-- {
		var sb strings.Builder
		n := t.nodes[i]
		sb.WriteString(n.Kind)
		sb.WriteByte(0)
		sb.WriteString(n.Label)
		sb.WriteByte(0)
		for _, c := range t.child[i] {
			sb.WriteString(strconv.Itoa(out[c]))
			sb.WriteByte(',')
		}
		key := sb.String()
		id, ok := ids[key]
		if !ok {
			id = len(ids)
			ids[key] = id
		}
		out[i] = id
	}
	return out
}

type leafCandidate struct {
	i, j  int
	score float64
}

// matchLeaves pairs unmatched leaves of the same kind whose label
// similarity reaches opts.F, best scores first.
func (m *Matching) matchLeaves(opts Options) {
	var candidates []leafCandidate
	for i := range m.src.nodes {
		if !m.src.isLeaf(i) || m.ab[i] >= 0 {
			continue
		}
		for j := range m.dst.nodes {
			if !m.dst.isLeaf(j) || m.ba[j] >= 0 {
				continue
			}
			if m.src.nodes[i].Kind != m.dst.nodes[j].Kind {
				continue
			}
			score := dice(m.src.nodes[i].Label, m.dst.nodes[j].Label)
			if score >= opts.F {
				candidates = append(candidates, leafCandidate{i: i, j: j, score: score})
			}
		}
	}

	sort.SliceStable(candidates, func(x, y int) bool {
		cx, cy := candidates[x], candidates[y]
		if cx.score != cy.score {
			return cx.score > cy.score
		}
		if dx, dy := abs(cx.i-cx.j), abs(cy.i-cy.j); dx != dy {
			return dx < dy
		}
		if cx.i != cy.i {
			return cx.i < cy.i
		}
		return cx.j < cy.j
	})

	for _, c := range candidates {
		if m.ab[c.i] < 0 && m.ba[c.j] < 0 {
			m.pair(c.i, c.j)
		}
	}
}

// matchInner pairs unmatched inner nodes in breadth-first order. A source
// node is paired with the first unmatched target node of the same kind that
// shares enough matched leaves.
func (m *Matching) matchInner(opts Options) {
	targets := m.dst.bfs()
	for _, i := range m.src.bfs() {
		if m.src.isLeaf(i) || m.ab[i] >= 0 {
			continue
		}
		srcLeaves := m.src.leafCount(i)
		for _, j := range targets {
			if m.dst.isLeaf(j) || m.ba[j] >= 0 {
				continue
			}
			if m.src.nodes[i].Kind != m.dst.nodes[j].Kind {
				continue
			}
			dstLeaves := m.dst.leafCount(j)
			common := m.commonLeaves(i, j)
			similarity := float64(common) / float64(max(srcLeaves, dstLeaves))

			t := opts.T
			if min(srcLeaves, dstLeaves) <= 4 {
				t = 0.4
			}
			if similarity >= 0.8 || (similarity >= t && dice(m.src.text[i], m.dst.text[j]) >= opts.F) {
				m.pair(i, j)
				break
			}
		}
	}
}

// commonLeaves counts leaves under source node i matched to leaves under
// target node j.
func (m *Matching) commonLeaves(i, j int) int {
	n := 0
	for k := i; k < i+m.src.size[i]; k++ {
		if !m.src.isLeaf(k) {
			continue
		}
		if p := m.ab[k]; p >= 0 && m.dst.isLeaf(p) && m.dst.contains(j, p) {
			n++
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
