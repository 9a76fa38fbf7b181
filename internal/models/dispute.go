package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dispute context types
const (
	DisputeContextDeed       = "deed"
	DisputeContextCampaign   = "campaign"
	DisputeContextAssignment = "assignment"
	DisputeContextOffer      = "offer"
)

// Dispute statuses
const (
	DisputeStatusOpen     = "open"
	DisputeStatusInReview = "in_review"
	DisputeStatusResolved = "resolved"
	DisputeStatusClosed   = "closed"
)

// Valid state transitions: from -> []to. Only platform staff move disputes
// out of open/in_review; there are no SLA or escalation timers.
var ValidDisputeTransitions = map[string][]string{
	DisputeStatusOpen:     {DisputeStatusInReview, DisputeStatusResolved, DisputeStatusClosed},
	DisputeStatusInReview: {DisputeStatusResolved, DisputeStatusClosed},
	DisputeStatusResolved: {},
	DisputeStatusClosed:   {},
}

func IsValidDisputeTransition(from, to string) bool {
	return containsTransition(ValidDisputeTransitions, from, to)
}

func IsValidDisputeContext(t string) bool {
	switch t {
	case DisputeContextDeed, DisputeContextCampaign, DisputeContextAssignment, DisputeContextOffer:
		return true
	}
	return false
}

type Dispute struct {
	ID          uuid.UUID       `json:"id"`
	ContextType string          `json:"context_type"`
	ContextID   uuid.UUID       `json:"context_id"`
	OpenedBy    uuid.UUID       `json:"opened_by"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	Resolution  json.RawMessage `json:"resolution,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
}
