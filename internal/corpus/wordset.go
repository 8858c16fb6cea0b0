// Package corpus builds the corpus-wide word set (spec §3) and implements
// the gibberish gate (spec §4.7) that guards the ranker from nonsense
// queries.
package corpus

import (
	"strings"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

// WordSet is the set of all tokens appearing anywhere in any record
// (spec §3: `∪ record.tokens`). It is built once at index-build time and
// treated as read-only for the process lifetime.
type WordSet struct {
	words map[string]struct{}
}

// Build constructs the corpus word set from a record slice.
func Build(records []*catalog.Record) *WordSet {
	ws := &WordSet{words: make(map[string]struct{})}
	for _, r := range records {
		for _, tok := range r.Tokens {
			ws.words[tok] = struct{}{}
		}
	}
	return ws
}

// Contains reports whether word is present in the corpus.
func (w *WordSet) Contains(word string) bool {
	_, ok := w.words[word]
	return ok
}

// ContainsSubstring reports whether word appears as a substring of any
// corpus token. Spec §4.7 calls out "xyz" passing admission because it
// appears as a substring in the corpus (e.g. inside "xyzal").
func (w *WordSet) ContainsSubstring(word string) bool {
	if word == "" {
		return false
	}
	for tok := range w.words {
		if strings.Contains(tok, word) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct words in the corpus.
func (w *WordSet) Len() int {
	return len(w.words)
}
