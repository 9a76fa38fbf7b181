package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Campaign kinds
const (
	CampaignKindNeed = "need"
	CampaignKindFeed = "feed"
)

// Need campaign statuses
const (
	NeedStatusDraft          = "draft"
	NeedStatusReview         = "review"
	NeedStatusLive           = "live"
	NeedStatusSeeded         = "seeded"
	NeedStatusClosedUnseeded = "closed_unseeded"
	NeedStatusCanceled       = "canceled"
)

// Feed campaign statuses
const (
	FeedStatusDraft            = "draft"
	FeedStatusOpen             = "open"
	FeedStatusSupplierSelected = "supplier_selected"
	FeedStatusClosedNoWinner   = "closed_no_winner"
)

var ValidNeedTransitions = map[string][]string{
	NeedStatusDraft:          {NeedStatusReview, NeedStatusCanceled},
	NeedStatusReview:         {NeedStatusLive, NeedStatusDraft, NeedStatusCanceled},
	NeedStatusLive:           {NeedStatusSeeded, NeedStatusClosedUnseeded, NeedStatusCanceled},
	NeedStatusSeeded:         {},
	NeedStatusClosedUnseeded: {},
	NeedStatusCanceled:       {},
}

var ValidFeedTransitions = map[string][]string{
	FeedStatusDraft:            {FeedStatusOpen},
	FeedStatusOpen:             {FeedStatusSupplierSelected, FeedStatusClosedNoWinner},
	FeedStatusSupplierSelected: {},
	FeedStatusClosedNoWinner:   {},
}

func IsValidNeedTransition(from, to string) bool {
	return containsTransition(ValidNeedTransitions, from, to)
}

func IsValidFeedTransition(from, to string) bool {
	return containsTransition(ValidFeedTransitions, from, to)
}

func containsTransition(m map[string][]string, from, to string) bool {
	allowed, ok := m[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Threshold types for need campaigns
const (
	ThresholdTypeQuantity = "quantity"
	ThresholdTypeValue    = "value"
)

type Campaign struct {
	ID                uuid.UUID       `json:"id"`
	Kind              string          `json:"kind"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	Title             string          `json:"title"`
	Description       *string         `json:"description,omitempty"`
	Currency          string          `json:"currency"`
	ThresholdType     *string         `json:"threshold_type,omitempty"`
	ThresholdQuantity *int            `json:"threshold_quantity,omitempty"`
	ThresholdValue    *float64        `json:"threshold_value,omitempty"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
	DeliveryJSON      json.RawMessage `json:"delivery_json,omitempty"`
	PaymentJSON       json.RawMessage `json:"payment_json,omitempty"`
	DepositJSON       json.RawMessage `json:"deposit_json,omitempty"`
	CancellationJSON  json.RawMessage `json:"cancellation_json,omitempty"`
	StatusNeed        *string         `json:"status_need,omitempty"`
	StatusFeed        *string         `json:"status_feed,omitempty"`
	SourceCampaignID  *uuid.UUID      `json:"source_campaign_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Status returns the lifecycle status for the campaign's kind.
func (c *Campaign) Status() string {
	if c.Kind == CampaignKindNeed && c.StatusNeed != nil {
		return *c.StatusNeed
	}
	if c.Kind == CampaignKindFeed && c.StatusFeed != nil {
		return *c.StatusFeed
	}
	return ""
}

type CampaignItem struct {
	ID          uuid.UUID       `json:"id"`
	CampaignID  uuid.UUID       `json:"campaign_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Unit        string          `json:"unit"`
	VariantJSON json.RawMessage `json:"variant_json,omitempty"`
}

// UnitPrice extracts variant_json.unit_price. The bool reports whether a
// price was present; callers decide what a missing price means.
func (i *CampaignItem) UnitPrice() (float64, bool) {
	if len(i.VariantJSON) == 0 {
		return 0, false
	}
	var v struct {
		UnitPrice *float64 `json:"unit_price"`
	}
	if err := json.Unmarshal(i.VariantJSON, &v); err != nil || v.UnitPrice == nil {
		return 0, false
	}
	return *v.UnitPrice, true
}
