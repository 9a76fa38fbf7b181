package events

import "context"

// Event types
const (
	EventDeedSigned        = "deed_signed"
	EventDeedExecuted      = "deed_executed"
	EventSignerInvited     = "signer_invited"
	EventAssignmentCreated = "assignment_created"
	EventOfferSelected     = "offer_selected"
	EventDisputeOpened     = "dispute_opened"
	EventDisputeResolved   = "dispute_resolved"
	EventNotification      = "notification"
)

// Streams
const (
	StreamDeeds         = "deeds"
	StreamNotifications = "notifications"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
