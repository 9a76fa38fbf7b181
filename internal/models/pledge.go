package models

import (
	"time"

	"github.com/google/uuid"
)

// Pledge statuses
const (
	PledgeStatusActive   = "active"
	PledgeStatusCanceled = "canceled"
)

// Pledge is a backer's per-item quantity commitment underlying a Need Deed.
// One pledge backs exactly one Need Deed and has 1..N item rows.
type Pledge struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PledgeRow struct {
	ID        uuid.UUID `json:"id"`
	PledgeID  uuid.UUID `json:"pledge_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	RowTotal  float64   `json:"row_total"`
}

// Participation links a user to a campaign through a pledge, offer or deed.
type Participation struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Kind       string    `json:"kind"` // backer / supplier / initiator
	RefID      uuid.UUID `json:"ref_id"`
	CreatedAt  time.Time `json:"created_at"`
}
