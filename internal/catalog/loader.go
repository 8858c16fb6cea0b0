package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dealsearch/dealsearch/internal/errs"
)

// rawOffer mirrors the deals snapshot shape from spec §6. end_date/start_date
// may arrive as an epoch-ms integer or a numeric string, so they are decoded
// via json.Number and normalized by numberToMillis in DecodeOffers.
type rawOffer struct {
	OfferID        string      `json:"offer_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	OfferPrice     string      `json:"offer_price"`
	OfferProgram   string      `json:"offer_pgm"`
	DealType       string      `json:"deal_type"`
	StartDate      json.Number `json:"start_date"`
	EndDate        json.Number `json:"end_date"`
	ImageURL       string      `json:"image_url"`
}

// rawProduct mirrors the qualifying-products snapshot shape from spec §6.
type rawProduct struct {
	OfferID     string   `json:"offer_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Aisle       string   `json:"aisle"`
	Shelf       string   `json:"shelf"`
	MemberPrice *float64 `json:"member_price"`
	BasePrice   *float64 `json:"base_price"`
	ImageURL    string   `json:"image_url"`
}

// DecodeOffers parses the deals snapshot (spec §6) into Offers in input
// order, failing with an errs.LoadError-rooted error when the document is
// malformed or a required field is missing.
func DecodeOffers(r io.Reader) ([]*Offer, error) {
	var raws []rawOffer
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, errs.LoadError("deals snapshot is not a well-formed JSON array", err)
	}

	offers := make([]*Offer, 0, len(raws))
	for i, raw := range raws {
		if raw.OfferID == "" {
			return nil, errs.MissingOfferField("offer_id", i)
		}
		if raw.Name == "" {
			return nil, errs.MissingOfferField("name", i)
		}

		offers = append(offers, &Offer{
			OfferID:        raw.OfferID,
			Name:           raw.Name,
			Description:    raw.Description,
			Category:       raw.Category,
			OfferPriceText: raw.OfferPrice,
			OfferProgram:   ParseOfferProgram(raw.OfferProgram),
			DealType:       raw.DealType,
			StartDate:      numberToMillis(raw.StartDate),
			EndDate:        numberToMillis(raw.EndDate),
			ImageURL:       raw.ImageURL,
		})
	}
	return offers, nil
}

// DecodeProducts parses the qualifying-products snapshot (spec §6) into
// Products in input order.
func DecodeProducts(r io.Reader) ([]*Product, error) {
	var raws []rawProduct
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, errs.LoadError("qualifying-products snapshot is not a well-formed JSON array", err)
	}

	products := make([]*Product, 0, len(raws))
	for i, raw := range raws {
		if raw.OfferID == "" {
			return nil, errs.New(errs.ErrCodeProductFieldMissing, "product missing required field \"offer_id\"", nil).
				WithDetail("product_index", strconv.Itoa(i))
		}
		if raw.Name == "" {
			return nil, errs.New(errs.ErrCodeProductFieldMissing, "product missing required field \"name\"", nil).
				WithDetail("product_index", strconv.Itoa(i))
		}

		products = append(products, &Product{
			OfferID:     raw.OfferID,
			Name:        raw.Name,
			Description: raw.Description,
			Department:  raw.Department,
			Aisle:       raw.Aisle,
			Shelf:       raw.Shelf,
			MemberPrice: raw.MemberPrice,
			BasePrice:   raw.BasePrice,
			ImageURL:    raw.ImageURL,
		})
	}
	return products, nil
}

// numberToMillis converts a json.Number (integer or numeric string) to an
// epoch-ms int64, defaulting to 0 for an empty or unparsable value.
func numberToMillis(n json.Number) int64 {
	if n == "" {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return v
}

// Load reads the two input documents and joins them into the ordered Record
// set (spec §4.1): one Record per (Offer, Product) pair, or one offer-only
// Record when an offer has zero products. Ordering is deterministic and
// becomes each Record's RecordIndex.
func Load(offersR, productsR io.Reader) ([]*Offer, []*Product, []*Record, error) {
	offers, err := DecodeOffers(offersR)
	if err != nil {
		return nil, nil, nil, err
	}
	products, err := DecodeProducts(productsR)
	if err != nil {
		return nil, nil, nil, err
	}

	records := BuildRecords(offers, products)
	return offers, products, records, nil
}

// BuildRecords performs the join+flatten step of spec §4.1 in isolation,
// usable directly by tests that already have in-memory Offers/Products.
func BuildRecords(offers []*Offer, products []*Product) []*Record {
	byOffer := make(map[string][]*Product, len(offers))
	for _, p := range products {
		byOffer[p.OfferID] = append(byOffer[p.OfferID], p)
	}

	records := make([]*Record, 0, len(offers)+len(products))
	for _, offer := range offers {
		ps := byOffer[offer.OfferID]
		if len(ps) == 0 {
			records = append(records, newRecord(len(records), offer, nil))
			continue
		}
		for _, p := range ps {
			records = append(records, newRecord(len(records), offer, p))
		}
	}
	return records
}

func newRecord(index int, offer *Offer, product *Product) *Record {
	r := &Record{
		RecordIndex: index,
		Offer:       offer,
		Product:     product,
	}
	r.Tokens = Tokenize(r.AllText())
	return r
}

// Validate checks the invariants spec §3 states for a (Offers, Products,
// Records) triple. Intended for tests and startup sanity checks, not the
// query hot path.
func Validate(offers []*Offer, products []*Product, records []*Record) error {
	offerByID := make(map[string]*Offer, len(offers))
	for _, o := range offers {
		offerByID[o.OfferID] = o
	}

	expected := 0
	counts := make(map[string]int, len(offers))
	for _, p := range products {
		counts[p.OfferID]++
	}
	for _, o := range offers {
		n := counts[o.OfferID]
		if n == 0 {
			n = 1
		}
		expected += n
	}
	if len(records) != expected {
		return fmt.Errorf("record count mismatch: got %d, want %d", len(records), expected)
	}

	for i, r := range records {
		if r.RecordIndex != i {
			return fmt.Errorf("record at position %d has RecordIndex %d", i, r.RecordIndex)
		}
		if r.Offer == nil {
			return fmt.Errorf("record %d has nil Offer", i)
		}
		if _, ok := offerByID[r.Offer.OfferID]; !ok {
			return fmt.Errorf("record %d references unknown offer %q", i, r.Offer.OfferID)
		}
		if r.Product != nil && r.Product.OfferID != r.Offer.OfferID {
			return fmt.Errorf("record %d: product offer_id %q does not match offer %q", i, r.Product.OfferID, r.Offer.OfferID)
		}
	}
	return nil
}
