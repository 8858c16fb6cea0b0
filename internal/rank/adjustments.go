package rank

import (
	"strings"

	"github.com/dealsearch/dealsearch/internal/scorer"
)

// applyFuzzyCap implements spec §4.6 step 2a: when a record has both a
// keyword and a fuzzy signal, the fuzzy contribution is capped at the
// keyword value, so fuzzy matching never amplifies a record that already
// matched exactly.
func applyFuzzyCap(composite, keywordNorm, fuzzyNorm, semantic []float64) []float64 {
	out := make([]float64, len(composite))
	for i := range composite {
		if keywordNorm[i] > 0 && fuzzyNorm[i] > 0 {
			capped := fuzzyNorm[i]
			if keywordNorm[i] < capped {
				capped = keywordNorm[i]
			}
			out[i] = 0.50*keywordNorm[i] + 0.25*capped + 0.25*semantic[i]
			continue
		}
		out[i] = composite[i]
	}
	return out
}

// applySemanticOnlyDiscount implements spec §4.6 step 2b: a record that
// only the semantic scorer found (no keyword, no fuzzy signal) has its
// composite halved, since it lacks any lexical corroboration.
func applySemanticOnlyDiscount(composite, keywordNorm, fuzzyNorm, semantic []float64) []float64 {
	out := make([]float64, len(composite))
	copy(out, composite)
	for i := range out {
		if semantic[i] > 0 && keywordNorm[i] == 0 && fuzzyNorm[i] == 0 {
			out[i] *= 0.5
		}
	}
	return out
}

// applyMultiSourceBonus implements spec §4.6 step 2c: records with a
// signal from more than one scorer get a consensus bonus of 0.1 per
// additional contributing scorer, capped at +0.2.
func applyMultiSourceBonus(composite, keywordNorm, fuzzyRaw, semantic []float64) []float64 {
	out := make([]float64, len(composite))
	copy(out, composite)
	for i := range out {
		k := 0
		if keywordNorm[i] > 0 {
			k++
		}
		if fuzzyRaw[i] >= fuzzyFloor {
			k++
		}
		if semantic[i] > 0 {
			k++
		}
		bonus := 0.1 * float64(max(0, k-1))
		if bonus > 0.2 {
			bonus = 0.2
		}
		out[i] += bonus
	}
	return out
}

// applyOfferNameBoost implements spec §4.6 step 4: a deal whose offer
// name contains a query word (exact, case-insensitive) or whose name has
// a strong fuzzy match against the whole query, has its score multiplied
// by 1.2.
func applyOfferNameBoost(deals []*DealResult, query string) {
	words := strings.Fields(strings.ToLower(query))
	for _, d := range deals {
		name := strings.ToLower(d.Offer.Name)
		exactHit := false
		for _, w := range words {
			if w != "" && strings.Contains(name, w) {
				exactHit = true
				break
			}
		}
		fuzzyHit := scorer.PartialRatio(strings.ToLower(query), name) >= 80
		if exactHit || fuzzyHit {
			d.Score *= 1.2
		}
	}
}

// applyDensityPenalty implements spec §4.6 step 5: a deal's score is
// scaled down in proportion to how few of its products actually matched,
// so a 1-of-20 hit ranks below a 2-of-2 hit at the same raw score.
// Offers with zero products are treated as n_total = n_matched = 1 (no
// penalty), per the spec's stated resolution for offer-only records.
func applyDensityPenalty(deals []*DealResult) {
	for _, d := range deals {
		nTotal := d.totalProducts
		nMatched := d.keywordMatched
		if nMatched == 0 {
			nMatched = d.fuzzyMatched
		}

		if nTotal == 0 {
			nTotal = 1
			nMatched = 1
		}

		density := 0.3 + 0.7*(float64(nMatched)/float64(nTotal))
		d.Score *= density
	}
}
