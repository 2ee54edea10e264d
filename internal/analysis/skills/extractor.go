// Package skills extracts a canonical skill set from free text using a fixed
// allow-list. Multi-word phrases are matched by raw substring containment on
// the lower-cased text (no word boundaries, so "sql server" also matches
// inside "mysql serverless"); single-word skills are matched against the
// normalised tokens. Nothing outside the allow-list is ever reported.
package skills

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis/tokenizer"
)

// Extract returns the sorted canonical skills found in text. The result is
// never nil.
func Extract(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]struct{})

	for _, phrase := range phraseSkills {
		if strings.Contains(lower, phrase) {
			found[phrase] = struct{}{}
		}
	}

	for _, tok := range tokenizer.Normalize(text) {
		if _, ok := tokenSkills[tok]; ok {
			found[tok] = struct{}{}
		}
	}

	canonicalize(found, lower)

	result := make([]string, 0, len(found))
	for skill := range found {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}

// canonicalize rewrites abbreviations to their display form. The two rules
// never interact.
func canonicalize(found map[string]struct{}, lower string) {
	if _, ok := found["next"]; ok && strings.Contains(lower, "next.js") {
		delete(found, "next")
		found["next.js"] = struct{}{}
	}
	if _, ok := found["ml"]; ok {
		delete(found, "ml")
		found["machine learning"] = struct{}{}
	}
}
