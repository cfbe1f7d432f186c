package treediff

// dice returns the Sørensen-Dice coefficient over the character bigram
// multisets of a and b. Strings too short to have bigrams are similar only
// when they are equal.
func dice(a, b string) float64 {
	ha, hb := bigrams(a), bigrams(b)
	total := 0
	for _, c := range ha {
		total += c
	}
	for _, c := range hb {
		total += c
	}
	if total == 0 {
		if a == b {
			return 1
		}
		return 0
	}
	overlap := 0
	for g, ca := range ha {
		if cb, ok := hb[g]; ok {
			overlap += min(ca, cb)
		}
	}
	return 2 * float64(overlap) / float64(total)
}

// bigrams counts the pairs of adjacent runes in s.
func bigrams(s string) map[string]int {
	r := []rune(s)
	h := make(map[string]int, len(r))
	for i := 0; i+1 < len(r); i++ {
		h[string(r[i:i+2])]++
	}
	return h
}
