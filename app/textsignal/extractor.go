package textsignal

import (
	"regexp"
	"strings"
)

// Signals holds the tokens extracted from a raw query string. Keywords are
// lower-cased with stop-words removed; entities keep their original casing.
// Both preserve first-appearance order with duplicates dropped.
type Signals struct {
	Keywords []string
	Entities []string
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "of": true, "to": true,
	"in": true, "on": true, "at": true, "for": true, "from": true,
	"is": true, "are": true, "was": true, "with": true, "about": true,
	"me": true, "my": true, "near": true, "nearby": true, "around": true,
	"show": true, "give": true,
}

var (
	wordSplitRe = regexp.MustCompile(`\W+`)
	entityRe    = regexp.MustCompile(`[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*`)
)

// Extract tokenizes a query into search keywords and proper-noun-like
// entities. It is pure and deterministic; an empty or stop-word-only query
// yields empty slices, never an error.
func Extract(query string) Signals {
	var signals Signals

	seen := make(map[string]bool)
	for _, token := range wordSplitRe.Split(strings.ToLower(query), -1) {
		if token == "" || stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		signals.Keywords = append(signals.Keywords, token)
	}

	seenEntity := make(map[string]bool)
	for _, entity := range entityRe.FindAllString(query, -1) {
		if seenEntity[entity] {
			continue
		}
		seenEntity[entity] = true
		signals.Entities = append(signals.Entities, entity)
	}

	return signals
}
