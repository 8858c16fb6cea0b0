package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

func dealRecords() []*catalog.Record {
	offers := []*catalog.Offer{
		{OfferID: "O1", Name: "Chocolate Bar Sale", Description: "Rich dark chocolate", Category: "Candy"},
		{OfferID: "O2", Name: "Milk Gallon Deal", Description: "Fresh whole milk", Category: "Dairy"},
	}
	products := []*catalog.Product{
		{OfferID: "O1", Name: "Dark Chocolate Bar", Description: "70% cacao", Department: "Candy"},
		{OfferID: "O1", Name: "Milk Chocolate Bar", Description: "Creamy", Department: "Candy"},
	}
	return catalog.BuildRecords(offers, products)
}

func TestRank_ResultsSortedByScoreDescending(t *testing.T) {
	rk := NewRanker()
	records := dealRecords()
	keyword := []float64{5, 4, 0}
	fuzzy := []float64{0, 0, 0}
	semantic := []float64{0.2, 0.1, 0.05}

	deals := rk.Rank("chocolate", records, keyword, fuzzy, semantic)
	for i := 1; i < len(deals); i++ {
		assert.GreaterOrEqual(t, deals[i-1].Score, deals[i].Score)
	}
}

func TestRank_NoDuplicateOffersInResult(t *testing.T) {
	rk := NewRanker()
	records := dealRecords()
	keyword := []float64{5, 4, 0}
	fuzzy := []float64{0, 0, 0}
	semantic := []float64{0.2, 0.1, 0.05}

	deals := rk.Rank("chocolate", records, keyword, fuzzy, semantic)
	seen := make(map[string]bool)
	for _, d := range deals {
		assert.False(t, seen[d.Offer.OfferID], "duplicate offer %s", d.Offer.OfferID)
		seen[d.Offer.OfferID] = true
	}
}

func TestRank_MatchingProductsBelongToTheirOffer(t *testing.T) {
	rk := NewRanker()
	records := dealRecords()
	keyword := []float64{5, 4, 3}
	fuzzy := []float64{0, 0, 0}
	semantic := []float64{0.2, 0.1, 0.3}

	deals := rk.Rank("chocolate milk", records, keyword, fuzzy, semantic)
	for _, d := range deals {
		for _, p := range d.MatchingProducts {
			assert.Equal(t, d.Offer.OfferID, p.Offer.OfferID)
		}
	}
}

func TestRank_SemanticOnlyRecordGetsQuarterWeightedHalvedComposite(t *testing.T) {
	rk := NewRanker()
	records := []*catalog.Record{
		{Offer: &catalog.Offer{OfferID: "O1", Name: "Beverages"}},
	}
	keyword := []float64{0}
	fuzzy := []float64{0}
	semantic := []float64{0.8}

	deals := rk.Rank("something", records, keyword, fuzzy, semantic)
	require.Len(t, deals, 1)
	// composite = 0.25*0.8*0.5 = 0.1, density for offer-only = 1.0 (no penalty),
	// no offer-name boost ("something" not in "Beverages").
	assert.InDelta(t, 0.1, deals[0].Score, 1e-9)
}

func TestRank_DensityMonotonicity(t *testing.T) {
	rk := NewRanker()

	offerA := &catalog.Offer{OfferID: "A", Name: "Deal A"}
	offerB := &catalog.Offer{OfferID: "B", Name: "Deal B"}

	recordsA := []*catalog.Record{
		{Offer: offerA, Product: &catalog.Product{OfferID: "A", Name: "Match 1"}},
		{Offer: offerA, Product: &catalog.Product{OfferID: "A", Name: "Match 2"}},
	}
	recordsB := make([]*catalog.Record, 0, 20)
	recordsB = append(recordsB, &catalog.Record{Offer: offerB, Product: &catalog.Product{OfferID: "B", Name: "Match 1"}})
	for i := 0; i < 19; i++ {
		recordsB = append(recordsB, &catalog.Record{Offer: offerB, Product: &catalog.Product{OfferID: "B", Name: "No hit"}})
	}

	records := append(recordsA, recordsB...)
	keyword := make([]float64, len(records))
	for i := range recordsA {
		keyword[i] = 3.0
	}
	keyword[len(recordsA)] = 3.0 // exactly one match in B
	fuzzy := make([]float64, len(records))
	semantic := make([]float64, len(records))

	deals := rk.Rank("match", records, keyword, fuzzy, semantic)

	var scoreA, scoreB float64
	for _, d := range deals {
		if d.Offer.OfferID == "A" {
			scoreA = d.Score
		}
		if d.Offer.OfferID == "B" {
			scoreB = d.Score
		}
	}
	assert.Greater(t, scoreA, scoreB)
}

func TestRank_OfferNameBoostRanksAboveEquivalentMatch(t *testing.T) {
	rk := NewRanker()
	offerNamed := &catalog.Offer{OfferID: "A", Name: "Chocolate Deal"}
	offerUnnamed := &catalog.Offer{OfferID: "B", Name: "Snack Deal"}

	records := []*catalog.Record{
		{Offer: offerNamed, Product: &catalog.Product{OfferID: "A", Name: "Item"}},
		{Offer: offerUnnamed, Product: &catalog.Product{OfferID: "B", Name: "Item"}},
	}
	keyword := []float64{3, 3}
	fuzzy := []float64{0, 0}
	semantic := []float64{0, 0}

	deals := rk.Rank("chocolate", records, keyword, fuzzy, semantic)
	require.Len(t, deals, 2)
	assert.Equal(t, "A", deals[0].Offer.OfferID)
}

func TestApplyAdaptiveCutoff_HighTopScoreUsesStricterFactor(t *testing.T) {
	deals := []*DealResult{
		{Offer: &catalog.Offer{OfferID: "A"}, Score: 0.9},
		{Offer: &catalog.Offer{OfferID: "C"}, Score: 0.4},  // above 0.36
		{Offer: &catalog.Offer{OfferID: "B"}, Score: 0.35}, // below 0.40*0.9 = 0.36
	}
	out := applyAdaptiveCutoff(deals, 0.40, 0.70, 0.5)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Offer.OfferID)
	assert.Equal(t, "C", out[1].Offer.OfferID)
}

func TestApplyAdaptiveCutoff_LowTopScoreUsesLooserFactor(t *testing.T) {
	deals := []*DealResult{
		{Offer: &catalog.Offer{OfferID: "A"}, Score: 0.3},
		{Offer: &catalog.Offer{OfferID: "C"}, Score: 0.22}, // above 0.21
		{Offer: &catalog.Offer{OfferID: "B"}, Score: 0.2}, // below 0.70*0.3 = 0.21
	}
	out := applyAdaptiveCutoff(deals, 0.40, 0.70, 0.5)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Offer.OfferID)
	assert.Equal(t, "C", out[1].Offer.OfferID)
}

func TestRank_EmptyRecordsReturnsEmptySlice(t *testing.T) {
	rk := NewRanker()
	deals := rk.Rank("anything", nil, nil, nil, nil)
	assert.Empty(t, deals)
}
