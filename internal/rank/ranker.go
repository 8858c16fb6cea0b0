// Package rank fuses the three scorer outputs (keyword, fuzzy, semantic)
// into the composite, deal-grouped, cutoff-truncated result list (spec
// §4.6). It is built the way the teacher's internal/search.RRFFusion is
// built: a small stateless struct exposing a Rank method, with each
// adjustment step implemented as its own function so each is independently
// testable. The per-record steps (fuzzy cap, semantic-only discount,
// multi-source bonus) are pure scores-in/scores-out transformations; the
// per-deal steps (offer-name boost, density penalty) scale each
// DealResult's Score in place.
package rank

import (
	"sort"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

// fuzzyFloor mirrors scorer.fuzzyFloor. The ranker otherwise consumes
// only plain score vectors from the scorers (spec §5's fan-out/fan-in
// boundary); it imports the scorer package only for scorer.PartialRatio,
// reused verbatim by the offer-name boost (spec §4.6 step 4).
const fuzzyFloor = 60.0

// DefaultTopK is the default truncation size (spec §4.6 step 7).
const DefaultTopK = 40

// ScoreComponents preserves the raw per-scorer contribution of a deal's
// best-matching record, returned to callers for explainability.
type ScoreComponents struct {
	Keyword  float64
	Fuzzy    float64
	Semantic float64
}

// DealResult is one ranked offer with its matching products (spec §6).
type DealResult struct {
	Offer            *catalog.Offer
	MatchingProducts []*catalog.Record
	Score            float64
	ScoreComponents  ScoreComponents

	// totalProducts, keywordMatched, and fuzzyMatched back the density
	// penalty (spec §4.6 step 5); they describe the whole offer, not just
	// the records that ended up in MatchingProducts.
	totalProducts  int
	keywordMatched int
	fuzzyMatched   int
}

// Ranker fuses per-record score vectors into the final deal list.
type Ranker struct {
	TopK int
}

// NewRanker returns a Ranker truncating to DefaultTopK results.
func NewRanker() *Ranker {
	return &Ranker{TopK: DefaultTopK}
}

// Rank implements spec §4.6 steps 1-7. keywordRaw, fuzzyRaw (0-100), and
// semantic (already [0,1]) must each have one entry per record, in the
// same order as records.
func (rk *Ranker) Rank(query string, records []*catalog.Record, keywordRaw, fuzzyRaw, semantic []float64) []*DealResult {
	if len(records) == 0 {
		return []*DealResult{}
	}

	topK := rk.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	keywordNorm := normalizeKeyword(keywordRaw)
	fuzzyNorm := normalizeFuzzy(fuzzyRaw)

	composite := make([]float64, len(records))
	for i := range records {
		composite[i] = 0.50*keywordNorm[i] + 0.25*fuzzyNorm[i] + 0.25*semantic[i]
	}

	composite = applyFuzzyCap(composite, keywordNorm, fuzzyNorm, semantic)
	composite = applySemanticOnlyDiscount(composite, keywordNorm, fuzzyNorm, semantic)
	composite = applyMultiSourceBonus(composite, keywordNorm, fuzzyRaw, semantic)

	deals := groupByOffer(records, composite, keywordRaw, fuzzyRaw, semantic)
	applyOfferNameBoost(deals, query)
	applyDensityPenalty(deals)

	sort.Slice(deals, func(i, j int) bool { return dealLess(deals[i], deals[j]) })

	deals = applyAdaptiveCutoff(deals, 0.40, 0.70, 0.5)

	if len(deals) > topK {
		deals = deals[:topK]
	}
	return deals
}

// normalizeKeyword divides by the per-query max only when that max
// exceeds 1, per spec §4.6 step 1.
func normalizeKeyword(raw []float64) []float64 {
	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	norm := make([]float64, len(raw))
	if max > 1 {
		for i, v := range raw {
			norm[i] = v / max
		}
		return norm
	}
	copy(norm, raw)
	return norm
}

// normalizeFuzzy divides the raw 0-100 partial-ratio score by 100.
func normalizeFuzzy(raw []float64) []float64 {
	norm := make([]float64, len(raw))
	for i, v := range raw {
		norm[i] = v / 100.0
	}
	return norm
}

type recordGroup struct {
	offer   *catalog.Offer
	records []*catalog.Record
	indices []int
}

// groupByOffer builds one DealResult per distinct offer_id, carrying only
// records with a positive composite score as matching products, and
// taking the deal-level score as the max composite among that offer's
// records (spec §4.6 step 3).
func groupByOffer(records []*catalog.Record, composite, keywordRaw, fuzzyRaw, semantic []float64) []*DealResult {
	order := make([]string, 0)
	groups := make(map[string]*recordGroup)

	for i, r := range records {
		id := r.Offer.OfferID
		g, ok := groups[id]
		if !ok {
			g = &recordGroup{offer: r.Offer}
			groups[id] = g
			order = append(order, id)
		}
		g.records = append(g.records, r)
		g.indices = append(g.indices, i)
	}

	deals := make([]*DealResult, 0, len(order))
	for _, id := range order {
		g := groups[id]

		bestIdx := -1
		bestScore := 0.0
		var matching []*catalog.Record
		totalProducts, keywordMatched, fuzzyMatched := 0, 0, 0
		for n, idx := range g.indices {
			if g.records[n].HasProduct() {
				totalProducts++
			}
			if keywordRaw[idx] > 0 {
				keywordMatched++
			}
			if fuzzyRaw[idx] >= fuzzyFloor {
				fuzzyMatched++
			}
			if composite[idx] > 0 {
				matching = append(matching, g.records[n])
			}
			if bestIdx == -1 || composite[idx] > bestScore {
				bestIdx = idx
				bestScore = composite[idx]
			}
		}

		deals = append(deals, &DealResult{
			Offer:            g.offer,
			MatchingProducts: matching,
			Score:            bestScore,
			ScoreComponents: ScoreComponents{
				Keyword:  keywordRaw[bestIdx],
				Fuzzy:    fuzzyRaw[bestIdx],
				Semantic: semantic[bestIdx],
			},
			totalProducts:  totalProducts,
			keywordMatched: keywordMatched,
			fuzzyMatched:   fuzzyMatched,
		})
	}
	return deals
}

// dealLess orders deals by score descending, then offer-name length
// ascending, then offer_id ascending (spec §4.6 step 7).
func dealLess(a, b *DealResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.Offer.Name) != len(b.Offer.Name) {
		return len(a.Offer.Name) < len(b.Offer.Name)
	}
	return a.Offer.OfferID < b.Offer.OfferID
}

// applyAdaptiveCutoff discards deals scoring below the adaptive threshold
// τ (spec §4.6 step 6 / §4.8's stricter variant). deals must already be
// sorted by score descending. aboveFactor applies when the top score is
// >= scoreThreshold, belowFactor otherwise.
func applyAdaptiveCutoff(deals []*DealResult, aboveFactor, belowFactor, scoreThreshold float64) []*DealResult {
	if len(deals) == 0 {
		return deals
	}
	top := deals[0].Score

	var tau float64
	if top >= scoreThreshold {
		tau = aboveFactor * top
	} else {
		tau = belowFactor * top
	}

	cut := len(deals)
	for i, d := range deals {
		if d.Score < tau {
			cut = i
			break
		}
	}
	return deals[:cut]
}
