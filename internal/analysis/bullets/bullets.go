// Package bullets renders matched and missing skills into résumé suggestion
// sentences.
package bullets

import (
	"fmt"
	"strings"
)

const (
	maxMatched = 8
	maxMissing = 6

	closing = "Delivered measurable results by translating requirements into features, tests, and CI workflows."
)

// Compose returns the templated suggestions: one for matched skills, one for
// missing skills (each only when non-empty) and a fixed closing sentence.
func Compose(matched, missing []string) []string {
	out := make([]string, 0, 3)
	if len(matched) > 0 {
		out = append(out, fmt.Sprintf("Aligned with core requirements including: %s.",
			strings.Join(head(matched, maxMatched), ", ")))
	}
	if len(missing) > 0 {
		out = append(out, fmt.Sprintf("Proactively closing gaps in: %s (actively learning/implementing).",
			strings.Join(head(missing, maxMissing), ", ")))
	}
	return append(out, closing)
}

// WithHint prepends an externally generated suggestion when it is non-empty
// after trimming.
func WithHint(hint string, bullets []string) []string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return bullets
	}
	out := make([]string, 0, len(bullets)+1)
	out = append(out, hint)
	return append(out, bullets...)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
