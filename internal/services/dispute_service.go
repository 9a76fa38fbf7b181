package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/events"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

type DisputeService struct {
	disputeRepo    *repositories.DisputeRepo
	deedRepo       *repositories.DeedRepo
	campaignRepo   *repositories.CampaignRepo
	pledgeRepo     *repositories.PledgeRepo
	offerRepo      *repositories.OfferRepo
	assignmentRepo *repositories.AssignmentRepo
	auditRepo      *repositories.AuditRepo
	publisher      events.Publisher
	log            *zap.Logger
}

func NewDisputeService(
	disputeRepo *repositories.DisputeRepo,
	deedRepo *repositories.DeedRepo,
	campaignRepo *repositories.CampaignRepo,
	pledgeRepo *repositories.PledgeRepo,
	offerRepo *repositories.OfferRepo,
	assignmentRepo *repositories.AssignmentRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *DisputeService {
	return &DisputeService{
		disputeRepo:    disputeRepo,
		deedRepo:       deedRepo,
		campaignRepo:   campaignRepo,
		pledgeRepo:     pledgeRepo,
		offerRepo:      offerRepo,
		assignmentRepo: assignmentRepo,
		auditRepo:      auditRepo,
		publisher:      publisher,
		log:            log,
	}
}

// Open creates a dispute against a deed, campaign, assignment or offer. The
// opener must be a participant of the context; outsiders get not-found so
// entity existence is not leaked.
func (s *DisputeService) Open(ctx context.Context, userID uuid.UUID, contextType string, contextID uuid.UUID, reason string) (*models.Dispute, error) {
	if !models.IsValidDisputeContext(contextType) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("invalid dispute context type %q", contextType))
	}
	if reason == "" {
		return nil, models.ErrPrecondition(models.CodeInvalidItems, "reason is required")
	}

	allowed, err := s.canDispute(ctx, userID, contextType, contextID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrNotFound(fmt.Sprintf("%s not found", contextType))
	}

	open, err := s.disputeRepo.HasOpenDispute(ctx, userID, contextType, contextID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, models.ErrConflict(models.CodeDuplicateDispute, "you already have an open dispute on this entity")
	}

	d := &models.Dispute{
		ContextType: contextType,
		ContextID:   contextID,
		OpenedBy:    userID,
		Reason:      reason,
		Status:      models.DisputeStatusOpen,
	}
	if err := s.disputeRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "dispute_opened",
		EntityType:  "dispute",
		EntityID:    &d.ID,
		Meta:        map[string]any{"context_type": contextType, "context_id": contextID.String()},
	})
	_ = s.publisher.Publish(ctx, events.StreamNotifications, events.Event{
		Type: events.EventDisputeOpened,
		Payload: map[string]any{
			"dispute_id":   d.ID.String(),
			"context_type": contextType,
			"context_id":   contextID.String(),
		},
	})

	return d, nil
}

// Review moves an open dispute into in_review. Staff only (enforced at the
// route level; actor identity recorded here).
func (s *DisputeService) Review(ctx context.Context, disputeID, staffID uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, models.ErrNotFound("dispute not found")
	}
	if !models.IsValidDisputeTransition(d.Status, models.DisputeStatusInReview) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("invalid transition from %s to %s", d.Status, models.DisputeStatusInReview))
	}

	if err := s.disputeRepo.UpdateStatus(ctx, disputeID, models.DisputeStatusInReview); err != nil {
		return nil, err
	}
	d.Status = models.DisputeStatusInReview

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &staffID,
		ActorType:   "staff",
		Action:      "dispute_in_review",
		EntityType:  "dispute",
		EntityID:    &disputeID,
	})

	return d, nil
}

// Resolve finalizes a dispute as resolved or closed, attaching the staff
// member's resolution note.
func (s *DisputeService) Resolve(ctx context.Context, disputeID, staffID uuid.UUID, outcome, note string) (*models.Dispute, error) {
	if outcome != models.DisputeStatusResolved && outcome != models.DisputeStatusClosed {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("outcome must be %s or %s", models.DisputeStatusResolved, models.DisputeStatusClosed))
	}

	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, models.ErrNotFound("dispute not found")
	}
	if !models.IsValidDisputeTransition(d.Status, outcome) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("invalid transition from %s to %s", d.Status, outcome))
	}

	resolution, err := json.Marshal(map[string]any{
		"outcome":     outcome,
		"note":        note,
		"resolved_by": staffID.String(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Close(ctx, disputeID, outcome, resolution); err != nil {
		return nil, err
	}
	d.Status = outcome
	d.Resolution = resolution

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &staffID,
		ActorType:   "staff",
		Action:      fmt.Sprintf("dispute_%s", outcome),
		EntityType:  "dispute",
		EntityID:    &disputeID,
		Meta:        map[string]any{"note": note},
	})
	_ = s.publisher.Publish(ctx, events.StreamNotifications, events.Event{
		Type: events.EventDisputeResolved,
		Payload: map[string]any{
			"dispute_id": disputeID.String(),
			"status":     outcome,
			"user_id":    d.OpenedBy.String(),
		},
	})

	return d, nil
}

func (s *DisputeService) Get(ctx context.Context, id, requesterID uuid.UUID, isStaff bool) (*models.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("dispute not found")
	}
	if !isStaff && d.OpenedBy != requesterID {
		return nil, models.ErrNotFound("dispute not found")
	}
	return d, nil
}

// List returns the staff queue, or the caller's own disputes for regular
// users.
func (s *DisputeService) List(ctx context.Context, requesterID uuid.UUID, isStaff bool, f repositories.DisputeFilter) ([]models.Dispute, error) {
	if !isStaff {
		f.OpenedBy = &requesterID
	}
	return s.disputeRepo.List(ctx, f)
}

// canDispute applies the per-context access rules.
func (s *DisputeService) canDispute(ctx context.Context, userID uuid.UUID, contextType string, contextID uuid.UUID) (bool, error) {
	switch contextType {
	case models.DisputeContextDeed:
		deed, err := s.deedRepo.GetByID(ctx, contextID)
		if err != nil {
			return false, nil
		}
		if deed.CreatedBy == userID {
			return true, nil
		}
		if _, err := s.deedRepo.GetSigner(ctx, contextID, userID); err == nil {
			return true, nil
		}
		return false, nil

	case models.DisputeContextCampaign:
		campaign, err := s.campaignRepo.GetByID(ctx, contextID)
		if err != nil {
			return false, nil
		}
		if campaign.CreatedBy == userID {
			return true, nil
		}
		hasPledge, err := s.pledgeRepo.UserHasPledge(ctx, contextID, userID)
		if err != nil {
			return false, err
		}
		if hasPledge {
			return true, nil
		}
		offers, err := s.offerRepo.List(ctx, repositories.OfferFilter{CampaignID: &contextID, SupplierID: &userID, Limit: 1})
		if err != nil {
			return false, err
		}
		return len(offers) > 0, nil

	case models.DisputeContextAssignment:
		a, err := s.assignmentRepo.GetByID(ctx, contextID)
		if err != nil {
			return false, nil
		}
		if a.CreatedBy == userID {
			return true, nil
		}
		if _, err := s.deedRepo.GetSigner(ctx, a.DeedID, userID); err == nil {
			return true, nil
		}
		return false, nil

	case models.DisputeContextOffer:
		offer, err := s.offerRepo.GetByID(ctx, contextID)
		if err != nil {
			return false, nil
		}
		if offer.SupplierID == userID {
			return true, nil
		}
		campaign, err := s.campaignRepo.GetByID(ctx, offer.CampaignID)
		if err != nil {
			return false, nil
		}
		return campaign.CreatedBy == userID, nil
	}
	return false, nil
}
