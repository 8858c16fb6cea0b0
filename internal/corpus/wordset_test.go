package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

func fixtureRecords() []*catalog.Record {
	offers := []*catalog.Offer{
		{OfferID: "O1", Name: "XYZAL Allergy Relief", Description: "24 hour allergy medicine", Category: "Pharmacy"},
		{OfferID: "O2", Name: "Milk Gallon Deal", Description: "Fresh whole milk", Category: "Dairy"},
	}
	return catalog.BuildRecords(offers, nil)
}

func TestWordSet_Contains(t *testing.T) {
	ws := Build(fixtureRecords())
	assert.True(t, ws.Contains("milk"))
	assert.True(t, ws.Contains("allergy"))
	assert.False(t, ws.Contains("zzzzz"))
}

func TestWordSet_ContainsSubstring(t *testing.T) {
	ws := Build(fixtureRecords())
	assert.True(t, ws.ContainsSubstring("xyz")) // substring of "xyzal"
	assert.False(t, ws.ContainsSubstring("qwerty"))
}

func TestWordSet_Len(t *testing.T) {
	ws := Build(fixtureRecords())
	require.Greater(t, ws.Len(), 0)
}

func TestIsGibberish_RejectsNonsense(t *testing.T) {
	ws := Build(fixtureRecords())

	for _, word := range []string{"abcd", "asdf", "qwerty", "zzzzz"} {
		rejected := IsGibberish([]string{word}, []float64{0}, []float64{0}, ws)
		assert.True(t, rejected, "expected %q to be rejected", word)
	}
}

func TestIsGibberish_AdmitsCorpusWord(t *testing.T) {
	ws := Build(fixtureRecords())
	rejected := IsGibberish([]string{"milk"}, []float64{0}, []float64{0}, ws)
	assert.False(t, rejected)
}

func TestIsGibberish_AdmitsSubstringMatch(t *testing.T) {
	ws := Build(fixtureRecords())
	rejected := IsGibberish([]string{"xyz"}, []float64{0}, []float64{0}, ws)
	assert.False(t, rejected)
}

func TestIsGibberish_AdmitsStrongFuzzyHit(t *testing.T) {
	ws := Build(fixtureRecords())
	rejected := IsGibberish([]string{"choclate"}, []float64{0}, []float64{85}, ws)
	assert.False(t, rejected)
}

func TestIsGibberish_AdmitsNonZeroKeywordScore(t *testing.T) {
	ws := Build(fixtureRecords())
	rejected := IsGibberish([]string{"anything"}, []float64{2.5}, []float64{0}, ws)
	assert.False(t, rejected)
}
