// Package scorer compares the skill sets of a job description and a résumé.
package scorer

import (
	"math"
	"sort"
)

// Result is the overlap between two skill sets.
type Result struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   float64  `json:"score"`
}

// Compare computes matched (jd ∩ resume), missing (jd − resume) and the
// intersection-over-union score rounded to three decimals. The union is
// floored at one so two empty sets score zero.
func Compare(jd, resume []string) Result {
	jdSet := toSet(jd)
	resumeSet := toSet(resume)

	matched := make([]string, 0)
	missing := make([]string, 0)
	for skill := range jdSet {
		if _, ok := resumeSet[skill]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	union := len(jdSet) + len(resumeSet) - len(matched)
	if union < 1 {
		union = 1
	}
	return Result{
		Matched: matched,
		Missing: missing,
		Score:   round3(float64(len(matched)) / float64(union)),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}
