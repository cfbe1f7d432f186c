// Package metrics computes the similarity measures reported for a pair of
// queries and their batch means.
package metrics

import (
	"math"

	"sql-eval/internal/domain"
	"sql-eval/internal/treediff"
)

// ASTDistance returns the number of edits needed to turn one tree into the
// other, divided by the combined node count of both trees. Two empty trees
// have distance 0.
//
// The edit count is taken in whichever direction yields fewer edits, so the
// distance is symmetric. Because the script never holds more edits than
// there are nodes, the result lies in [0, 1].
func ASTDistance(a, b *treediff.Node) float64 {
	total := treediff.Count(a) + treediff.Count(b)
	if total == 0 {
		return 0
	}
	edits := min(len(treediff.Diff(a, b)), len(treediff.Diff(b, a)))
	return float64(edits) / float64(total)
}

// TokenCounts builds the multiset of token texts.
func TokenCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// TokenCosine returns the cosine similarity of two token multisets, or 0
// when either is empty.
func TokenCosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for tok, ca := range a {
		magA += float64(ca * ca)
		if cb, ok := b[tok]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range b {
		magB += float64(cb * cb)
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	// Counts are integers, so magA*magB is exact and identical multisets
	// give dot/dot == 1 with no rounding.
	sim := dot / math.Sqrt(magA*magB)
	return math.Min(sim, 1)
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, domain.ErrNoResults("cannot aggregate metrics over zero results")
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}
