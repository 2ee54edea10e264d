// Package tokenizer provides text normalisation for skill analysis.
// It extracts word-like tokens (keeping tech punctuation such as "c++",
// "node.js" or "ci/cd" intact), lower-cases them, and removes stop-words
// and single-character tokens. No stemming is applied.
package tokenizer

import (
	"regexp"
	"strings"
)

// tokenPattern matches a letter followed by letters, digits, or + - / . #
var tokenPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+\-/.#]*`)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "s": {}, "such": {}, "t": {}, "that": {},
	"the": {}, "their": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "will": {}, "with": {}, "you": {},
	"your": {}, "i": {}, "me": {}, "my": {}, "we": {}, "our": {},
	"from": {}, "which": {}, "who": {}, "whom": {}, "whose": {}, "where": {},
	"when": {}, "how": {}, "why": {}, "what": {}, "about": {}, "above": {},
	"below": {}, "between": {}, "while": {}, "do": {}, "does": {}, "did": {},
	"done": {}, "doing": {}, "n't": {}, "cant": {}, "cannot": {}, "could": {},
	"should": {}, "would": {}, "may": {}, "might": {}, "must": {}, "can": {},
}

// Normalize breaks text into lower-cased tokens in order of appearance,
// duplicates included, with stop-words and one-character tokens removed.
func Normalize(text string) []string {
	words := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < 2 {
			continue
		}
		if IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsStopWord reports whether word is in the fixed stop-word set.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
