package rank

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultMultiQueryCutoffFactor is the stricter adaptive cutoff factor spec
// §4.8 applies over the merged multi-query result set, in place of the
// single-query adaptive cutoff's two-tier factor (spec §4.6 step 6).
const DefaultMultiQueryCutoffFactor = 0.45

// MultiQueryMerger combines the independently-ranked deal lists produced
// for each of a query's expanded terms into one consensus-boosted result
// set (spec §4.8). It is built the way the teacher's
// search.MultiRRFFusion combines SubQueryResults: keep the best per-key
// result, track how many sub-queries it appeared in, and boost by that
// consensus count.
type MultiQueryMerger struct {
	// CutoffFactor is the fraction of the top merged score a deal must
	// clear to survive (spec §4.8 default: 0.45).
	CutoffFactor float64
}

// NewMultiQueryMerger returns a MultiQueryMerger with the spec default cutoff.
func NewMultiQueryMerger() *MultiQueryMerger {
	return &MultiQueryMerger{CutoffFactor: DefaultMultiQueryCutoffFactor}
}

// RankTerm scores and ranks a single expanded term, returning its deal
// list. MergeTerms calls one of these per term.
type RankTerm func(ctx context.Context, term string) ([]*DealResult, error)

// MergeTerms runs rankTerm for every term with errgroup-bounded
// parallelism — directly modeled on the teacher's parallelSubSearch — then
// merges the resulting per-term deal lists (spec §4.8). A single term's
// failure fails the whole merge, matching the teacher's sub-query fan-out
// (each sub-query result contributes to a single fused answer; a partial
// fan-out would silently under-represent the query).
func (m *MultiQueryMerger) MergeTerms(ctx context.Context, terms []string, rankTerm RankTerm) ([]*DealResult, error) {
	perTerm := make([][]*DealResult, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			deals, err := rankTerm(gctx, term)
			if err != nil {
				return err
			}
			perTerm[i] = deals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m.Merge(perTerm), nil
}

// mergedDeal tracks, for one offer, the best-scoring DealResult seen across
// terms and how many distinct terms matched it.
type mergedDeal struct {
	deal         *DealResult
	termsMatched int
}

// Merge combines already-ranked per-term deal lists into one list: the
// maximum deal score per offer_id, multiplied by
// min(1.3, 1.0 + 0.05*(distinct_terms_matched-1)), then truncated by the
// stricter adaptive cutoff τ = CutoffFactor * top (spec §4.8).
func (m *MultiQueryMerger) Merge(perTerm [][]*DealResult) []*DealResult {
	order := make([]string, 0)
	merged := make(map[string]*mergedDeal)

	for _, deals := range perTerm {
		for _, d := range deals {
			id := d.Offer.OfferID
			e, ok := merged[id]
			if !ok {
				e = &mergedDeal{deal: d}
				merged[id] = e
				order = append(order, id)
			}
			e.termsMatched++
			if d.Score > e.deal.Score {
				e.deal = d
			}
		}
	}

	out := make([]*DealResult, 0, len(order))
	for _, id := range order {
		e := merged[id]
		mult := 1.0 + 0.05*float64(e.termsMatched-1)
		if mult > 1.3 {
			mult = 1.3
		}
		e.deal.Score *= mult
		out = append(out, e.deal)
	}

	sort.Slice(out, func(i, j int) bool { return dealLess(out[i], out[j]) })

	factor := m.CutoffFactor
	if factor <= 0 {
		factor = DefaultMultiQueryCutoffFactor
	}
	// scoreThreshold of 0 always takes the aboveFactor branch: scores are
	// never negative, so this applies a single flat factor rather than the
	// single-query path's two-tier adaptive split.
	return applyAdaptiveCutoff(out, factor, factor, 0)
}
