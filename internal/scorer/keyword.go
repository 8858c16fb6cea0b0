// Package scorer implements the three independent signal passes over the
// record set — keyword, fuzzy, and semantic — that the ranker fuses into a
// composite score (spec §4.3–§4.5). Each scorer is a stateless pass that
// reads the immutable record set and returns a freshly allocated score
// vector indexed by record position; scorers share no mutable state and
// may run concurrently.
package scorer

import (
	"context"
	"strings"

	"github.com/dealsearch/dealsearch/internal/catalog"
)

// ctxCheckInterval is how many records the scorer processes between
// cancellation checks, so a client disconnect (spec §5) is noticed without
// paying for a context check on every single record.
const ctxCheckInterval = 512

// field weights (spec §4.3).
const (
	weightOfferName    = 3.0
	weightProductName  = 2.0
	weightDescription  = 1.0
	weightOtherField   = 0.5
	bonusWholeWord     = 1.5
	bonusSubstring     = 1.0
)

// KeywordScorer computes the field-weighted exact/substring keyword score
// of spec §4.3.
type KeywordScorer struct{}

// NewKeywordScorer returns a KeywordScorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

// Score returns one score per record in records, in the same order. A
// query that lowercases to no words scores every record 0. ctx is checked
// periodically so a cancelled search (client disconnect, spec §5) stops
// early rather than scanning the whole record set.
func (s *KeywordScorer) Score(ctx context.Context, query string, records []*catalog.Record) []float64 {
	words := queryWords(query)
	scores := make([]float64, len(records))
	if len(words) == 0 {
		return scores
	}

	for i, r := range records {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			return scores
		}
		scores[i] = scoreRecord(words, r)
	}
	return scores
}

// queryWords lowercases and splits query on whitespace, dropping empty
// tokens produced by repeated spaces.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

// recordFields returns the weighted text fields of a record: offer fields
// first, then product fields when the record has a product.
type weightedField struct {
	text   string
	weight float64
}

func recordFields(r *catalog.Record) []weightedField {
	fields := []weightedField{
		{r.Offer.Name, weightOfferName},
		{r.Offer.Description, weightDescription},
		{r.Offer.Category, weightOtherField},
	}
	if r.Product != nil {
		fields = append(fields,
			weightedField{r.Product.Name, weightProductName},
			weightedField{r.Product.Description, weightDescription},
			weightedField{r.Product.Department, weightOtherField},
			weightedField{r.Product.Aisle, weightOtherField},
		)
	}
	return fields
}

// scoreRecord implements spec §4.3: every query word must appear
// somewhere in the record's combined text, or the record scores 0;
// otherwise sum per-(word, field) contributions.
func scoreRecord(words []string, r *catalog.Record) float64 {
	fields := recordFields(r)

	for _, w := range words {
		if w == "" {
			continue
		}
		found := false
		for _, f := range fields {
			if matched, _ := matchField(w, f.text); matched {
				found = true
				break
			}
		}
		if !found {
			return 0
		}
	}

	var total float64
	for _, w := range words {
		if w == "" {
			continue
		}
		for _, f := range fields {
			matched, wholeWord := matchField(w, f.text)
			if !matched {
				continue
			}
			bonus := bonusSubstring
			if wholeWord {
				bonus = bonusWholeWord
			}
			total += f.weight * bonus
		}
	}
	return total
}

// matchField reports whether word appears in fieldText, and whether the
// match is a whole-word (token-bounded) match as opposed to a substring
// match inside some other token.
func matchField(word, fieldText string) (matched bool, wholeWord bool) {
	if fieldText == "" {
		return false, false
	}
	lower := strings.ToLower(fieldText)
	if !strings.Contains(lower, word) {
		return false, false
	}

	for _, tok := range catalog.Tokenize(fieldText) {
		if tok == word {
			return true, true
		}
	}
	return true, false
}
