package corpus

// IsGibberish implements the gate of spec §4.7: a query is rejected outright
// (the ranker returns an empty result) when ALL three conditions hold:
//
//  1. the keyword scorer produced zero non-zero records,
//  2. no record has a raw (pre-normalization, 0-100) fuzzy score >= 80, and
//  3. none of the query's words are admitted by the corpus word set, where
//     admission is exact membership OR substring containment — the
//     substring clause is what lets "xyz" through when it appears inside a
//     corpus token like "xyzal" (spec §4.7 worked example).
//
// Callers pass the already-computed keyword and raw fuzzy score vectors so
// this package stays decoupled from the scorer implementations.
func IsGibberish(queryWords []string, keywordScores, rawFuzzyScores []float64, ws *WordSet) bool {
	if anyNonZero(keywordScores) {
		return false
	}
	if anyAtLeast(rawFuzzyScores, 80) {
		return false
	}
	if anyAdmitted(queryWords, ws) {
		return false
	}
	return true
}

func anyNonZero(scores []float64) bool {
	for _, s := range scores {
		if s > 0 {
			return true
		}
	}
	return false
}

func anyAtLeast(scores []float64, floor float64) bool {
	for _, s := range scores {
		if s >= floor {
			return true
		}
	}
	return false
}

func anyAdmitted(words []string, ws *WordSet) bool {
	for _, w := range words {
		if w == "" {
			continue
		}
		if ws.Contains(w) || ws.ContainsSubstring(w) {
			return true
		}
	}
	return false
}
