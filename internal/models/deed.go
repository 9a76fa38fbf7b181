package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Deed kinds
const (
	DeedKindNeed       = "need_deed"
	DeedKindFeed       = "feed_deed"
	DeedKindAssignment = "assignment_deed"
)

// Deed statuses
const (
	DeedStatusDraft     = "draft"
	DeedStatusSigned    = "signed"
	DeedStatusExecuted  = "executed"
	DeedStatusActive    = "active"
	DeedStatusFulfilled = "fulfilled"
)

// Valid state transitions: from -> []to.
// Need deeds are born signed; assignment deeds are born draft and promoted
// straight to executed when the last invited signer signs.
var ValidDeedTransitions = map[string][]string{
	DeedStatusDraft:     {DeedStatusSigned, DeedStatusExecuted},
	DeedStatusSigned:    {DeedStatusExecuted},
	DeedStatusExecuted:  {DeedStatusActive},
	DeedStatusActive:    {DeedStatusFulfilled},
	DeedStatusFulfilled: {},
}

func IsValidDeedTransition(from, to string) bool {
	allowed, ok := ValidDeedTransitions[from]
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

func IsValidDeedKind(k string) bool {
	return k == DeedKindNeed || k == DeedKindFeed || k == DeedKindAssignment
}

type Deed struct {
	ID                   uuid.UUID       `json:"id"`
	DeedKind             string          `json:"deed_kind"`
	Status               string          `json:"status"`
	Version              int             `json:"version"`
	DocJSON              json.RawMessage `json:"doc_json"`
	DocHash              string          `json:"doc_hash"`
	CampaignID           uuid.UUID       `json:"campaign_id"`
	CreatedBy            uuid.UUID       `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
	OpenedForSignatureAt *time.Time      `json:"opened_for_signature_at,omitempty"`
	ExecutedAt           *time.Time      `json:"executed_at,omitempty"`
}

// Signer kinds
const (
	SignerKindBacker    = "backer"
	SignerKindSupplier  = "supplier"
	SignerKindInitiator = "initiator"
)

// Signer statuses. invited -> signed is the only transition; a signer who
// refuses is modeled as a dispute, not a signer state.
const (
	SignerStatusInvited = "invited"
	SignerStatusSigned  = "signed"
)

type DeedSigner struct {
	ID            uuid.UUID  `json:"id"`
	DeedID        uuid.UUID  `json:"deed_id"`
	UserID        uuid.UUID  `json:"user_id"`
	SignerKind    string     `json:"signer_kind"`
	Status        string     `json:"status"`
	InvitedAt     time.Time  `json:"invited_at"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
	SignatureMeta any        `json:"signature_meta,omitempty"`
}

// SignatureMeta records how a signature was captured.
type SignatureMeta struct {
	Method    string `json:"method"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// SignerProgress is the derived signed/total aggregate for a deed.
// There is no stored counter; this is always computed from signer rows.
type SignerProgress struct {
	Signed int `json:"signed"`
	Total  int `json:"total"`
}

func (p SignerProgress) Complete() bool {
	return p.Total > 0 && p.Signed == p.Total
}
