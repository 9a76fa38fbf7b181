package dto

import (
	"encoding/json"
	"time"
)

type AuthTokenRequest struct {
	Payload string `json:"payload"`
}

// Campaigns

type CreateCampaignRequest struct {
	Kind              string          `json:"kind"` // need / feed
	Title             string          `json:"title"`
	Description       *string         `json:"description,omitempty"`
	Currency          string          `json:"currency,omitempty"`
	ThresholdType     *string         `json:"threshold_type,omitempty"` // quantity / value
	ThresholdQuantity *int            `json:"threshold_quantity,omitempty"`
	ThresholdValue    *float64        `json:"threshold_value,omitempty"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
	Delivery          json.RawMessage `json:"delivery,omitempty"`
	Payment           json.RawMessage `json:"payment,omitempty"`
	Deposit           json.RawMessage `json:"deposit,omitempty"`
	Cancellation      json.RawMessage `json:"cancellation,omitempty"`
	SourceCampaignID  *string         `json:"source_campaign_id,omitempty"`
}

type CreateItemRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Variant     json.RawMessage `json:"variant,omitempty"` // carries unit_price
}

// Deeds

type NeedDeedItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type CreateNeedDeedRequest struct {
	CampaignID string         `json:"campaign_id"`
	Items      []NeedDeedItem `json:"items"`
}

type SignDeedRequest struct {
	Method string `json:"method,omitempty"` // defaults to platform_click
}

type UpdateDeedStatusRequest struct {
	Status string `json:"status"`
}

// Offers

type OfferRowRequest struct {
	ItemID       string  `json:"item_id"`
	UnitPrice    float64 `json:"unit_price"`
	MinQty       int     `json:"min_qty"`
	LeadTimeDays *int    `json:"lead_time_days,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type SubmitOfferRequest struct {
	CampaignID    string            `json:"campaign_id"`
	PaymentTerms  *string           `json:"payment_terms,omitempty"`
	DeliveryTerms *string           `json:"delivery_terms,omitempty"`
	Warranty      *string           `json:"warranty,omitempty"`
	Rows          []OfferRowRequest `json:"rows"`
}

// Assignments

type CreateAssignmentRequest struct {
	CampaignNeedID  string `json:"campaign_need_id"`
	CampaignFeedID  string `json:"campaign_feed_id"`
	SelectedOfferID string `json:"selected_offer_id"`
}

// Disputes

type OpenDisputeRequest struct {
	ContextType string `json:"context_type"` // deed / campaign / assignment / offer
	ContextID   string `json:"context_id"`
	Reason      string `json:"reason"`
}

type ResolveDisputeRequest struct {
	Outcome string `json:"outcome"` // resolved / closed
	Note    string `json:"note,omitempty"`
}
