package tokenizer

import "sort"

// DefaultKeywordLimit is the number of keywords shown per document.
const DefaultKeywordLimit = 60

type termCount struct {
	term  string
	count int
}

// TopKeywords returns up to limit distinct tokens ordered by descending
// frequency, ties broken by first appearance. A limit <= 0 returns all of
// them.
func TopKeywords(tokens []string, limit int) []string {
	counts := make(map[string]*termCount, len(tokens))
	ordered := make([]*termCount, 0, len(tokens))
	for _, tok := range tokens {
		tc, ok := counts[tok]
		if !ok {
			tc = &termCount{term: tok}
			counts[tok] = tc
			ordered = append(ordered, tc)
		}
		tc.count++
	}

	// ordered is in first-seen order; a stable sort keeps it for ties.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	result := make([]string, len(ordered))
	for i, tc := range ordered {
		result[i] = tc.term
	}
	return result
}
