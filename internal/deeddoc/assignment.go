package deeddoc

// AssignmentDeedDoc is the doc_json payload of an Assignment (Reed) Deed.
// It carries no self-referential deed block, so the whole document is covered
// by the content hash and nothing is patched after insert.
type AssignmentDeedDoc struct {
	Title            string           `json:"title"`
	Type             string           `json:"type"`
	CreatedAt        string           `json:"created_at"`
	Parties          Parties          `json:"parties"`
	FinancialSummary FinancialSummary `json:"financial_summary"`
	Terms            OfferTerms       `json:"terms"`
	Items            []OfferItemLine  `json:"items"`
	LinkedDeeds      LinkedDeeds      `json:"linked_deeds"`
}

type Parties struct {
	Initiator PersonRef     `json:"initiator"`
	Supplier  SupplierParty `json:"supplier"`
	Backers   []BackerParty `json:"backers"`
}

type SupplierParty struct {
	PersonRef
	OfferID string `json:"offer_id"`
}

// BackerParty is one entry per signed Need Deed being assigned; the backer is
// the signer of kind backer on that deed.
type BackerParty struct {
	PersonRef
	NeedDeedID string `json:"need_deed_id"`
}

type FinancialSummary struct {
	TotalOrderValue float64 `json:"total_order_value"`
	WeedFee         float64 `json:"weed_fee"`
	FeePercent      float64 `json:"fee_percent"`
	Currency        string  `json:"currency"`
}

type OfferTerms struct {
	PaymentTerms  string `json:"payment_terms,omitempty"`
	DeliveryTerms string `json:"delivery_terms,omitempty"`
	Warranty      string `json:"warranty,omitempty"`
}

type OfferItemLine struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unitPrice"`
	MinQty       int     `json:"min_qty"`
	LeadTimeDays int     `json:"lead_time_days,omitempty"`
	RowTotal     float64 `json:"rowTotal"`
}

type LinkedDeeds struct {
	CampaignNeedID string   `json:"campaign_need_id"`
	CampaignFeedID string   `json:"campaign_feed_id"`
	NeedDeedIDs    []string `json:"need_deed_ids"`
}

// ContentHash covers the entire assignment document.
func (d AssignmentDeedDoc) ContentHash() (string, error) {
	return Hash(d)
}
