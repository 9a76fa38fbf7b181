package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer statuses
const (
	OfferStatusDraft     = "draft"
	OfferStatusSubmitted = "submitted"
	OfferStatusSigned    = "signed"
	OfferStatusSelected  = "selected"
)

// Valid state transitions: from -> []to. Signing an offer makes it a binding
// Feed Deed; only signed offers are selectable.
var ValidOfferTransitions = map[string][]string{
	OfferStatusDraft:     {OfferStatusSubmitted},
	OfferStatusSubmitted: {OfferStatusSigned},
	OfferStatusSigned:    {OfferStatusSelected},
	OfferStatusSelected:  {},
}

func IsValidOfferTransition(from, to string) bool {
	return containsTransition(ValidOfferTransitions, from, to)
}

// SupplierOffer is a supplier's row-level pricing proposal against a feed
// campaign's bill of materials.
type SupplierOffer struct {
	ID            uuid.UUID  `json:"id"`
	CampaignID    uuid.UUID  `json:"campaign_id"`
	SupplierID    uuid.UUID  `json:"supplier_id"`
	Status        string     `json:"status"`
	PaymentTerms  *string    `json:"payment_terms,omitempty"`
	DeliveryTerms *string    `json:"delivery_terms,omitempty"`
	Warranty      *string    `json:"warranty,omitempty"`
	DeedID        *uuid.UUID `json:"deed_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
}

type SupplierOfferRow struct {
	ID           uuid.UUID `json:"id"`
	OfferID      uuid.UUID `json:"offer_id"`
	ItemID       uuid.UUID `json:"item_id"`
	UnitPrice    float64   `json:"unit_price"`
	MinQty       int       `json:"min_qty"`
	LeadTimeDays *int      `json:"lead_time_days,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

// TotalValue is the offer's order value: sum of unit_price * min_qty.
func OfferTotalValue(rows []SupplierOfferRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.UnitPrice * float64(r.MinQty)
	}
	return total
}
