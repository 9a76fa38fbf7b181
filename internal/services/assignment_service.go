package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/config"
	"github.com/mishmeshmosh/backend/internal/deeddoc"
	"github.com/mishmeshmosh/backend/internal/events"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

type AssignmentService struct {
	pool           *pgxpool.Pool
	assignmentRepo *repositories.AssignmentRepo
	deedRepo       *repositories.DeedRepo
	campaignRepo   *repositories.CampaignRepo
	offerRepo      *repositories.OfferRepo
	userRepo       *repositories.UserRepo
	auditRepo      *repositories.AuditRepo
	publisher      events.Publisher
	cfg            *config.Config
	log            *zap.Logger
}

func NewAssignmentService(
	pool *pgxpool.Pool,
	assignmentRepo *repositories.AssignmentRepo,
	deedRepo *repositories.DeedRepo,
	campaignRepo *repositories.CampaignRepo,
	offerRepo *repositories.OfferRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		pool:           pool,
		assignmentRepo: assignmentRepo,
		deedRepo:       deedRepo,
		campaignRepo:   campaignRepo,
		offerRepo:      offerRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		publisher:      publisher,
		cfg:            cfg,
		log:            log,
	}
}

type AssignmentResult struct {
	Assignment *models.Assignment
	Deed       *models.Deed
}

// CreateAssignment assembles the multi-party Assignment Deed binding every
// signed Need Deed of the need campaign to the selected supplier offer. The
// preconditions are checked in a fixed order so callers get stable errors;
// the whole build runs in one transaction.
func (s *AssignmentService) CreateAssignment(ctx context.Context, needCampaignID, feedCampaignID, offerID, initiatorID uuid.UUID) (*AssignmentResult, error) {
	needCampaign, err := s.campaignRepo.GetByID(ctx, needCampaignID)
	if err != nil || needCampaign.Kind != models.CampaignKindNeed || needCampaign.CreatedBy != initiatorID {
		return nil, models.ErrNotFound("need campaign not found")
	}

	feedCampaign, err := s.campaignRepo.GetByID(ctx, feedCampaignID)
	if err != nil || feedCampaign.Kind != models.CampaignKindFeed || feedCampaign.CreatedBy != initiatorID {
		return nil, models.ErrNotFound("feed campaign not found")
	}

	if feedCampaign.Status() != models.FeedStatusSupplierSelected {
		return nil, models.ErrPrecondition(models.CodeSupplierNotSelected, "feed campaign has no selected supplier")
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil || offer.CampaignID != feedCampaignID || offer.Status != models.OfferStatusSelected {
		return nil, models.ErrPrecondition(models.CodeOfferNotFound, "offer is not the selected offer of this campaign")
	}

	if existing, err := s.assignmentRepo.GetByFeedCampaign(ctx, feedCampaignID); err == nil {
		return nil, models.ErrPrecondition(models.CodeAssignmentExists, "assignment already exists for this feed campaign").
			WithExtra("assignment_id", existing.ID.String())
	}

	needDeeds, err := s.deedRepo.ListSignedNeedDeeds(ctx, needCampaignID)
	if err != nil {
		return nil, err
	}
	if len(needDeeds) == 0 {
		return nil, models.ErrPrecondition(models.CodeNoSignedNeedDeeds, "need campaign has no signed need deeds")
	}

	// Resolve the backer behind each need deed, then batch-load everyone.
	backerIDs := make([]uuid.UUID, 0, len(needDeeds))
	backerByDeed := make(map[uuid.UUID]uuid.UUID, len(needDeeds))
	for _, d := range needDeeds {
		signer, err := s.deedRepo.GetBackerSigner(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("need deed %s has no backer signer: %w", d.ID, err)
		}
		backerIDs = append(backerIDs, signer.UserID)
		backerByDeed[d.ID] = signer.UserID
	}
	userIDs := append([]uuid.UUID{initiatorID, offer.SupplierID}, backerIDs...)
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	initiator, ok := users[initiatorID]
	if !ok {
		return nil, models.ErrUnauthorized("user not found")
	}
	supplier, ok := users[offer.SupplierID]
	if !ok {
		return nil, models.ErrInternal("supplier user not found")
	}

	offerRows, err := s.offerRepo.ListRows(ctx, offerID)
	if err != nil {
		return nil, err
	}
	itemIDs := make([]uuid.UUID, 0, len(offerRows))
	for _, r := range offerRows {
		itemIDs = append(itemIDs, r.ItemID)
	}
	catalog, err := s.campaignRepo.GetItems(ctx, feedCampaignID, itemIDs)
	if err != nil {
		return nil, err
	}

	totalValue := models.OfferTotalValue(offerRows)
	weedFee := deeddoc.CalculateWeedFee(totalValue, s.cfg.WeedFeeBPS)

	now := time.Now().UTC()
	doc := deeddoc.AssignmentDeedDoc{
		Title:     fmt.Sprintf("Assignment Deed - %s", feedCampaign.Title),
		Type:      models.DeedKindAssignment,
		CreatedAt: now.Format(time.RFC3339),
		Parties: deeddoc.Parties{
			Initiator: personRef(initiator),
			Supplier: deeddoc.SupplierParty{
				PersonRef: personRef(supplier),
				OfferID:   offer.ID.String(),
			},
		},
		FinancialSummary: deeddoc.FinancialSummary{
			TotalOrderValue: totalValue,
			WeedFee:         weedFee,
			FeePercent:      deeddoc.FeePercent(s.cfg.WeedFeeBPS),
			Currency:        feedCampaign.Currency,
		},
		LinkedDeeds: deeddoc.LinkedDeeds{
			CampaignNeedID: needCampaignID.String(),
			CampaignFeedID: feedCampaignID.String(),
		},
	}
	if offer.PaymentTerms != nil {
		doc.Terms.PaymentTerms = *offer.PaymentTerms
	}
	if offer.DeliveryTerms != nil {
		doc.Terms.DeliveryTerms = *offer.DeliveryTerms
	}
	if offer.Warranty != nil {
		doc.Terms.Warranty = *offer.Warranty
	}

	for _, d := range needDeeds {
		backer, ok := users[backerByDeed[d.ID]]
		if !ok {
			return nil, models.ErrInternal("backer user not found")
		}
		doc.Parties.Backers = append(doc.Parties.Backers, deeddoc.BackerParty{
			PersonRef:  personRef(backer),
			NeedDeedID: d.ID.String(),
		})
		doc.LinkedDeeds.NeedDeedIDs = append(doc.LinkedDeeds.NeedDeedIDs, d.ID.String())
	}

	for _, r := range offerRows {
		line := deeddoc.OfferItemLine{
			ID:        r.ItemID.String(),
			UnitPrice: r.UnitPrice,
			MinQty:    r.MinQty,
			RowTotal:  r.UnitPrice * float64(r.MinQty),
		}
		if it, ok := catalog[r.ItemID]; ok {
			line.Title = it.Title
			line.Unit = it.Unit
		}
		if r.LeadTimeDays != nil {
			line.LeadTimeDays = *r.LeadTimeDays
		}
		doc.Items = append(doc.Items, line)
	}

	hash, err := doc.ContentHash()
	if err != nil {
		return nil, err
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	deedRepo := s.deedRepo.WithTx(tx)
	assignmentRepo := s.assignmentRepo.WithTx(tx)

	deed := &models.Deed{
		DeedKind:             models.DeedKindAssignment,
		Status:               models.DeedStatusDraft,
		Version:              1,
		DocJSON:              docBytes,
		DocHash:              hash,
		CampaignID:           feedCampaignID,
		CreatedBy:            initiatorID,
		OpenedForSignatureAt: &now,
	}
	if err := deedRepo.Create(ctx, deed); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CampaignNeedID: needCampaignID,
		CampaignFeedID: feedCampaignID,
		OfferID:        offerID,
		DeedID:         deed.ID,
		CreatedBy:      initiatorID,
	}
	if err := assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	for _, d := range needDeeds {
		if err := assignmentRepo.LinkNeedDeed(ctx, assignment.ID, d.ID); err != nil {
			return nil, err
		}
	}

	signers := assignmentSigners(deed.ID, backerIDs, offer.SupplierID, initiatorID)
	if err := deedRepo.InviteSigners(ctx, signers); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &initiatorID,
		ActorType:   "user",
		Action:      "assignment_created",
		EntityType:  "assignment",
		EntityID:    &assignment.ID,
		Meta: map[string]any{
			"deed_id":           deed.ID.String(),
			"offer_id":          offerID.String(),
			"total_order_value": totalValue,
			"weed_fee":          weedFee,
			"backer_count":      len(needDeeds),
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamDeeds, events.Event{
		Type: events.EventAssignmentCreated,
		Payload: map[string]any{
			"assignment_id": assignment.ID.String(),
			"deed_id":       deed.ID.String(),
			"campaign_feed_id": feedCampaignID.String(),
		},
	})
	for _, signer := range signers {
		_ = s.publisher.Publish(ctx, events.StreamNotifications, events.Event{
			Type: events.EventSignerInvited,
			Payload: map[string]any{
				"user_id":     signer.UserID.String(),
				"deed_id":     deed.ID.String(),
				"signer_kind": signer.SignerKind,
			},
		})
	}

	return &AssignmentResult{Assignment: assignment, Deed: deed}, nil
}

func (s *AssignmentService) GetAssignment(ctx context.Context, id, requesterID uuid.UUID) (*models.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("assignment not found")
	}

	if a.CreatedBy != requesterID {
		// Any signer of the assignment deed may read it.
		if _, err := s.deedRepo.GetSigner(ctx, a.DeedID, requesterID); err != nil {
			return nil, models.ErrNotFound("assignment not found")
		}
	}
	return a, nil
}

// assignmentSigners builds the invited signer set of an assignment deed:
// N backers + supplier + initiator. A user holding more than one role on the
// deed gets a single signer row (first kind wins).
func assignmentSigners(deedID uuid.UUID, backerIDs []uuid.UUID, supplierID, initiatorID uuid.UUID) []models.DeedSigner {
	signers := make([]models.DeedSigner, 0, len(backerIDs)+2)
	seen := make(map[uuid.UUID]bool, len(backerIDs)+2)
	add := func(userID uuid.UUID, kind string) {
		if seen[userID] {
			return
		}
		seen[userID] = true
		signers = append(signers, models.DeedSigner{
			DeedID:     deedID,
			UserID:     userID,
			SignerKind: kind,
			Status:     models.SignerStatusInvited,
		})
	}
	for _, id := range backerIDs {
		add(id, models.SignerKindBacker)
	}
	add(supplierID, models.SignerKindSupplier)
	add(initiatorID, models.SignerKindInitiator)
	return signers
}

func personRef(u *models.User) deeddoc.PersonRef {
	ref := deeddoc.PersonRef{
		ID:       u.ID.String(),
		FullName: u.FullName,
		Email:    u.Email,
	}
	if u.Phone != nil {
		ref.Phone = *u.Phone
	}
	return ref
}
