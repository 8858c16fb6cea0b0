// Package catalog holds the Offer/Product/Record data model and the loader
// that joins the two input snapshots into the flat, searchable Record set
// every scorer operates over.
package catalog

import "strings"

// OfferProgram enumerates the small set of program codes a deal can carry.
type OfferProgram string

const (
	ProgramManufacturer OfferProgram = "MF"
	ProgramPersonalized OfferProgram = "PD"
	ProgramStoreCoupon  OfferProgram = "SC"
	ProgramLoyalty      OfferProgram = "LO"
	ProgramUnknown      OfferProgram = ""
)

// ParseOfferProgram normalizes a raw program code into an OfferProgram,
// defaulting to ProgramUnknown for anything unrecognized rather than erroring
// — offer_pgm is optional per spec §6.
func ParseOfferProgram(raw string) OfferProgram {
	switch OfferProgram(strings.ToUpper(strings.TrimSpace(raw))) {
	case ProgramManufacturer:
		return ProgramManufacturer
	case ProgramPersonalized:
		return ProgramPersonalized
	case ProgramStoreCoupon:
		return ProgramStoreCoupon
	case ProgramLoyalty:
		return ProgramLoyalty
	default:
		return ProgramUnknown
	}
}

// Valid reports whether the program code is one of the known enum values.
func (p OfferProgram) Valid() bool {
	switch p {
	case ProgramManufacturer, ProgramPersonalized, ProgramStoreCoupon, ProgramLoyalty:
		return true
	default:
		return false
	}
}

// Offer is a promotional deal. Offers are constructed once at load time and
// never mutated for the process lifetime (spec §3).
type Offer struct {
	OfferID        string
	Name           string
	Description    string
	Category       string
	OfferPriceText string
	OfferProgram   OfferProgram
	DealType       string
	StartDate      int64 // epoch milliseconds
	EndDate        int64 // epoch milliseconds
	ImageURL       string
}

// Product is a qualifying item inside an offer. A product belongs to exactly
// one offer (spec §3).
type Product struct {
	OfferID      string
	Name         string
	Description  string
	Department   string
	Aisle        string
	Shelf        string
	MemberPrice  *float64
	BasePrice    *float64
	ImageURL     string
}

// Record is the flat, field-weighted searchable unit every scorer indexes
// by RecordIndex (spec §3). Exactly one Record exists per (Offer, Product)
// pair, or one per Offer with zero products.
type Record struct {
	RecordIndex int
	Offer       *Offer
	Product     *Product // nil for an offer-only record

	// Tokens is the lowercased word-split of every textual field on this
	// record, computed once at build time so the corpus word set never
	// re-tokenizes the same text.
	Tokens []string
}

// HasProduct reports whether this record carries product-level fields.
func (r *Record) HasProduct() bool {
	return r.Product != nil
}

// EmbeddingText concatenates the exact field set spec §4.2 names for
// embedding construction: offer name, description, category, and — when
// present — product name, description, and department. Aisle/shelf are
// deliberately excluded here; they still feed AllText for the corpus word
// set.
func (r *Record) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(r.Offer.Name)
	b.WriteByte(' ')
	b.WriteString(r.Offer.Description)
	b.WriteByte(' ')
	b.WriteString(r.Offer.Category)
	if r.Product != nil {
		b.WriteByte(' ')
		b.WriteString(r.Product.Name)
		b.WriteByte(' ')
		b.WriteString(r.Product.Description)
		b.WriteByte(' ')
		b.WriteString(r.Product.Department)
	}
	return b.String()
}

// AllText concatenates every textual field on the record — the superset
// used to build Tokens for the corpus word set (spec §3). The keyword
// scorer does not read it; it scans its own weighted field list.
func (r *Record) AllText() string {
	var b strings.Builder
	b.WriteString(r.EmbeddingText())
	if r.Product != nil {
		b.WriteByte(' ')
		b.WriteString(r.Product.Aisle)
		b.WriteByte(' ')
		b.WriteString(r.Product.Shelf)
	}
	b.WriteByte(' ')
	b.WriteString(r.Offer.OfferPriceText)
	return b.String()
}
