package scorer

import "context"

// SemanticScorer computes cosine similarity (dot product, since inputs are
// unit-normalized) between a query vector and every record vector, clamped
// to [0,1] (spec §4.5).
type SemanticScorer struct{}

// NewSemanticScorer returns a SemanticScorer.
func NewSemanticScorer() *SemanticScorer {
	return &SemanticScorer{}
}

// Score returns the clamped cosine similarity of queryVec against every
// row of recordVecs. queryVec and each row must already be unit-normalized
// and of the same dimension. ctx is checked periodically (spec §5) so a
// cancelled search stops scanning early.
func (s *SemanticScorer) Score(ctx context.Context, queryVec []float32, recordVecs [][]float32) []float64 {
	scores := make([]float64, len(recordVecs))
	for i, row := range recordVecs {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			return scores
		}
		scores[i] = clampUnit(dotProduct(queryVec, row))
	}
	return scores
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
