package scorer

import (
	"context"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

// fuzzyFloor is the raw (0-100) partial-ratio floor below which a record
// scores 0 (spec §4.4).
const fuzzyFloor = 60.0

// FuzzyScorer computes the typo-tolerant partial-ratio score of spec
// §4.4, built on go-edlib's Levenshtein similarity.
type FuzzyScorer struct{}

// NewFuzzyScorer returns a FuzzyScorer.
func NewFuzzyScorer() *FuzzyScorer {
	return &FuzzyScorer{}
}

// Score returns the raw 0-100 partial-ratio score for every record, with
// values below fuzzyFloor clamped to 0. Callers normalize to [0,1] (divide
// by 100) at the composite-score boundary, per spec's open question on
// fuzzy normalization. ctx is checked periodically (spec §5) so a cancelled
// search stops scanning early.
func (s *FuzzyScorer) Score(ctx context.Context, query string, records []*catalog.Record) []float64 {
	scores := make([]float64, len(records))
	if query == "" {
		return scores
	}
	q := strings.ToLower(query)

	for i, r := range records {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			return scores
		}
		best := partialRatio(q, strings.ToLower(r.Offer.Name))
		if r.Product != nil {
			if pr := partialRatio(q, strings.ToLower(r.Product.Name)); pr > best {
				best = pr
			}
		}
		if best < fuzzyFloor {
			best = 0
		}
		scores[i] = best
	}
	return scores
}

// PartialRatio is the substring-alignment Levenshtein ratio exported for
// reuse outside this package (the ranker's offer-name boost, spec §4.6
// step 4, needs the identical partial_ratio definition).
func PartialRatio(a, b string) float64 {
	return partialRatio(a, b)
}

// partialRatio is the substring-alignment Levenshtein ratio, in [0,100]:
// the best-aligning window of the longer string against the shorter one.
// go-edlib exposes only whole-string similarity (StringsSimilarity with
// edlib.Levenshtein, which returns a similarity already normalized to
// [0,1], where 1.0 means identical), so the sliding window here is new
// code that reshapes it into partial-ratio semantics.
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if shorter == "" || longer == "" {
		return 0
	}
	if len(longer) <= len(shorter) {
		return levenshteinSimilarity(shorter, longer)
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		sim := levenshteinSimilarity(shorter, window)
		if sim > best {
			best = sim
		}
	}
	return best
}

// levenshteinSimilarity returns a 0-100 similarity between two strings of
// comparable length.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 100
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim) * 100
}
