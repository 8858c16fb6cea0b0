package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsearch/dealsearch/internal/catalog"
	"github.com/dealsearch/dealsearch/internal/embed"
)

func testCatalog() ([]*catalog.Record, [][]float32, *embed.StaticEmbedder) {
	offers := []*catalog.Offer{
		{OfferID: "O1", Name: "Chocolate Bar Sale", Description: "Rich dark chocolate bar", Category: "Candy"},
		{OfferID: "O2", Name: "Milk Gallon Deal", Description: "Fresh whole milk", Category: "Dairy"},
		{OfferID: "O3", Name: "Gift Card Bonus", Description: "Buy a gift card, get a bonus", Category: "Gift Cards"},
	}
	products := []*catalog.Product{
		{OfferID: "O1", Name: "Dark Chocolate Bar", Description: "70% cacao", Department: "Candy"},
		{OfferID: "O2", Name: "Whole Milk Gallon", Description: "Vitamin D milk", Department: "Dairy"},
	}
	records := catalog.BuildRecords(offers, products)

	embedder := embed.NewStaticEmbedder()
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.EmbeddingText()
	}
	vectors, err := embedder.EmbedBatch(context.Background(), texts)
	if err != nil {
		panic(err)
	}
	return records, vectors, embedder
}

func TestEngine_Search_ReturnsRankedResultForKeywordMatch(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder)

	deals, err := e.Search(context.Background(), "chocolate", 10)
	require.NoError(t, err)
	require.NotEmpty(t, deals)
	assert.Equal(t, "O1", deals[0].Offer.OfferID)
}

func TestEngine_Search_GibberishQueryReturnsEmptyNotError(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder)

	deals, err := e.Search(context.Background(), "zzqxw flibbertigibbet", 10)
	require.NoError(t, err)
	assert.Empty(t, deals)
}

func TestEngine_Search_RespectsTopK(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder)

	deals, err := e.Search(context.Background(), "deal", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(deals), 1)
}

func TestEngine_SearchStream_EmitsAllResultsInBatches(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder, WithStreamBatchSize(1))

	ch, err := e.SearchStream(context.Background(), "deal", 10)
	require.NoError(t, err)

	var total int
	var batches int
	for batch := range ch {
		batches++
		total += len(batch)
		assert.LessOrEqual(t, len(batch), 1)
	}

	full, err := e.Search(context.Background(), "deal", 10)
	require.NoError(t, err)
	assert.Equal(t, len(full), total)
	if len(full) > 0 {
		assert.Equal(t, len(full), batches)
	}
}

type stubExpander struct {
	terms []string
	err   error
}

func (s stubExpander) Expand(ctx context.Context, query string) ([]string, error) {
	return s.terms, s.err
}

func TestEngine_Search_WithExpanderRoutesToMultiQueryMerge(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder, WithExpander(stubExpander{terms: []string{"chocolate", "milk"}}))

	deals, err := e.Search(context.Background(), "chocolate", 10)
	require.NoError(t, err)
	require.NotEmpty(t, deals)

	ids := make(map[string]bool)
	for _, d := range deals {
		ids[d.Offer.OfferID] = true
	}
	assert.True(t, ids["O1"] || ids["O2"])
}

func TestEngine_Search_ExpanderErrorFallsBackToOriginalQuery(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder, WithExpander(stubExpander{err: errors.New("expansion backend down")}))

	deals, err := e.Search(context.Background(), "chocolate", 10)
	require.NoError(t, err)
	require.NotEmpty(t, deals)
	assert.Equal(t, "O1", deals[0].Offer.OfferID)
}

func TestEngine_Search_SingleExpandedTermSkipsMultiQueryPath(t *testing.T) {
	records, vectors, embedder := testCatalog()
	e := New(records, vectors, embedder, WithExpander(stubExpander{terms: []string{"chocolate"}}))

	deals, err := e.Search(context.Background(), "chocolate", 10)
	require.NoError(t, err)
	require.NotEmpty(t, deals)
	assert.Equal(t, "O1", deals[0].Offer.OfferID)
}
