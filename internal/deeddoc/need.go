package deeddoc

import (
	"encoding/json"
	"fmt"
)

// NeedDeedDoc is the doc_json payload of a Need Deed. Field names and nesting
// are the wire format consumed by the HTML projection and existing rendered
// documents; they must not change.
type NeedDeedDoc struct {
	Deed      DeedRef         `json:"deed"`
	Campaign  CampaignRef     `json:"campaign"`
	Backer    PersonRef       `json:"backer"`
	Platform  PlatformRef     `json:"platform"`
	Items     []ItemLine      `json:"items"`
	Totals    Totals          `json:"totals"`
	Delivery  json.RawMessage `json:"delivery,omitempty"`
	Payment   json.RawMessage `json:"payment,omitempty"`
	Signature SignatureRef    `json:"signature"`
}

// DeedRef is the deed's self-description. ID, VerifyURL and DocHash are blank
// when the content hash is computed and backfilled after insert without
// rehashing; Status, Version and SignedAt are set before hashing and are
// covered by it.
type DeedRef struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Version   int    `json:"version"`
	SignedAt  string `json:"signed_at"`
	DocHash   string `json:"doc_hash"`
	VerifyURL string `json:"verify_url"`
}

type CampaignRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PersonRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type PlatformRef struct {
	LegalName     string `json:"legal_name"`
	CompanyNumber string `json:"company_number"`
	Address       string `json:"address"`
}

type ItemLine struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	RowTotal    float64 `json:"rowTotal"`
}

type Totals struct {
	Currency   string `json:"currency"`
	TotalValue string `json:"total_value"`
}

type SignatureRef struct {
	Method    string `json:"method"`
	RecordRef string `json:"record_ref"`
}

// ContentHash hashes the commercial content of the document: the deed's own
// id, verify_url and doc_hash are excluded so that backfilling them after
// insert does not invalidate the digest.
func (d NeedDeedDoc) ContentHash() (string, error) {
	c := d
	c.Deed.ID = ""
	c.Deed.VerifyURL = ""
	c.Deed.DocHash = ""
	return Hash(c)
}

// TotalValue sums the item row totals. Presentation rounding happens only
// when the totals block is formatted, not here.
func TotalValue(items []ItemLine) float64 {
	var total float64
	for _, it := range items {
		total += it.RowTotal
	}
	return total
}

// FormatAmount renders a monetary value with two decimals for the totals
// block and document display.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
