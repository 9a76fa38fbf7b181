package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment links exactly one need campaign, one feed campaign, one selected
// offer and one assignment deed. At most one assignment per feed campaign.
type Assignment struct {
	ID             uuid.UUID `json:"id"`
	CampaignNeedID uuid.UUID `json:"campaign_need_id"`
	CampaignFeedID uuid.UUID `json:"campaign_feed_id"`
	OfferID        uuid.UUID `json:"offer_id"`
	DeedID         uuid.UUID `json:"deed_id"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
