package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/events"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

type OfferService struct {
	pool         *pgxpool.Pool
	offerRepo    *repositories.OfferRepo
	campaignRepo *repositories.CampaignRepo
	pledgeRepo   *repositories.PledgeRepo
	auditRepo    *repositories.AuditRepo
	publisher    events.Publisher
	log          *zap.Logger
}

func NewOfferService(
	pool *pgxpool.Pool,
	offerRepo *repositories.OfferRepo,
	campaignRepo *repositories.CampaignRepo,
	pledgeRepo *repositories.PledgeRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *OfferService {
	return &OfferService{
		pool:         pool,
		offerRepo:    offerRepo,
		campaignRepo: campaignRepo,
		pledgeRepo:   pledgeRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		log:          log,
	}
}

type OfferRowInput struct {
	ItemID       uuid.UUID
	UnitPrice    float64
	MinQty       int
	LeadTimeDays *int
	Notes        *string
}

type SubmitOfferInput struct {
	CampaignID    uuid.UUID
	PaymentTerms  *string
	DeliveryTerms *string
	Warranty      *string
	Rows          []OfferRowInput
}

// SubmitOffer records a supplier's row-level proposal against an open feed
// campaign. The offer lands in submitted; signing it is a separate step.
func (s *OfferService) SubmitOffer(ctx context.Context, supplierID uuid.UUID, in SubmitOfferInput) (*models.SupplierOffer, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, models.ErrPrecondition(models.CodeCampaignNotOpen, "campaign not found or not open")
	}
	if campaign.Kind != models.CampaignKindFeed || campaign.Status() != models.FeedStatusOpen {
		return nil, models.ErrPrecondition(models.CodeCampaignNotOpen, "campaign is not open for offers")
	}

	if len(in.Rows) == 0 {
		return nil, models.ErrPrecondition(models.CodeInvalidItems, "at least one offer row is required")
	}
	itemIDs := make([]uuid.UUID, 0, len(in.Rows))
	for _, r := range in.Rows {
		if r.MinQty <= 0 {
			return nil, models.ErrPrecondition(models.CodeInvalidItems,
				fmt.Sprintf("min_qty must be positive for item %s", r.ItemID))
		}
		if r.UnitPrice < 0 {
			return nil, models.ErrPrecondition(models.CodeInvalidItems,
				fmt.Sprintf("unit_price must not be negative for item %s", r.ItemID))
		}
		itemIDs = append(itemIDs, r.ItemID)
	}
	catalog, err := s.campaignRepo.GetItems(ctx, in.CampaignID, itemIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range in.Rows {
		if _, ok := catalog[r.ItemID]; !ok {
			return nil, models.ErrPrecondition(models.CodeInvalidItems,
				fmt.Sprintf("item %s does not belong to this campaign", r.ItemID))
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	offerRepo := s.offerRepo.WithTx(tx)
	pledgeRepo := s.pledgeRepo.WithTx(tx)

	offer := &models.SupplierOffer{
		CampaignID:    in.CampaignID,
		SupplierID:    supplierID,
		Status:        models.OfferStatusSubmitted,
		PaymentTerms:  in.PaymentTerms,
		DeliveryTerms: in.DeliveryTerms,
		Warranty:      in.Warranty,
	}
	if err := offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	for _, r := range in.Rows {
		row := &models.SupplierOfferRow{
			OfferID:      offer.ID,
			ItemID:       r.ItemID,
			UnitPrice:    r.UnitPrice,
			MinQty:       r.MinQty,
			LeadTimeDays: r.LeadTimeDays,
			Notes:        r.Notes,
		}
		if err := offerRepo.CreateRow(ctx, row); err != nil {
			return nil, err
		}
	}

	participation := &models.Participation{
		UserID:     supplierID,
		CampaignID: in.CampaignID,
		Kind:       models.SignerKindSupplier,
		RefID:      offer.ID,
	}
	if err := pledgeRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &supplierID,
		ActorType:   "user",
		Action:      "offer_submitted",
		EntityType:  "offer",
		EntityID:    &offer.ID,
		Meta:        map[string]any{"campaign_id": in.CampaignID.String(), "rows": len(in.Rows)},
	})

	return offer, nil
}

// SignOffer makes a submitted offer binding. At most one signed offer per
// (campaign, supplier); the partial unique index backs this check.
func (s *OfferService) SignOffer(ctx context.Context, offerID, supplierID uuid.UUID) (*models.SupplierOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, models.ErrNotFound("offer not found")
	}
	if offer.SupplierID != supplierID {
		return nil, models.ErrNotFound("offer not found")
	}

	if !models.IsValidOfferTransition(offer.Status, models.OfferStatusSigned) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("invalid transition from %s to %s", offer.Status, models.OfferStatusSigned))
	}

	exists, err := s.offerRepo.HasSignedOffer(ctx, offer.CampaignID, supplierID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrConflict(models.CodeAlreadySigned, "you already have a signed offer on this campaign")
	}

	if err := s.offerRepo.MarkSigned(ctx, offerID, nil); err != nil {
		return nil, err
	}
	offer.Status = models.OfferStatusSigned

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &supplierID,
		ActorType:   "user",
		Action:      "offer_signed",
		EntityType:  "offer",
		EntityID:    &offerID,
		Meta:        map[string]any{"campaign_id": offer.CampaignID.String()},
	})

	return offer, nil
}

// SelectOffer picks exactly one signed offer as the winner, closing the feed
// campaign to further selection and notifying losing suppliers.
func (s *OfferService) SelectOffer(ctx context.Context, campaignID, offerID, ownerID uuid.UUID) (*models.SupplierOffer, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, models.ErrNotFound("campaign not found")
	}
	if campaign.CreatedBy != ownerID {
		return nil, models.ErrNotFound("campaign not found")
	}
	if campaign.Kind != models.CampaignKindFeed {
		return nil, models.ErrPrecondition(models.CodeCampaignNotOpen, "not a feed campaign")
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil || offer.CampaignID != campaignID {
		return nil, models.ErrPrecondition(models.CodeOfferNotFound, "offer not found on this campaign")
	}
	if !models.IsValidOfferTransition(offer.Status, models.OfferStatusSelected) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("offer must be signed to be selected, is %s", offer.Status))
	}
	if !models.IsValidFeedTransition(campaign.Status(), models.FeedStatusSupplierSelected) {
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("campaign cannot select a supplier from status %s", campaign.Status()))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.offerRepo.WithTx(tx).UpdateStatus(ctx, offerID, models.OfferStatusSelected); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.WithTx(tx).UpdateFeedStatus(ctx, campaignID, models.FeedStatusSupplierSelected); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	offer.Status = models.OfferStatusSelected

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      "offer_selected",
		EntityType:  "offer",
		EntityID:    &offerID,
		Meta:        map[string]any{"campaign_id": campaignID.String(), "supplier_id": offer.SupplierID.String()},
	})
	_ = s.publisher.Publish(ctx, events.StreamNotifications, events.Event{
		Type: events.EventOfferSelected,
		Payload: map[string]any{
			"campaign_id": campaignID.String(),
			"offer_id":    offerID.String(),
			"supplier_id": offer.SupplierID.String(),
		},
	})

	// Losing suppliers get a notification each.
	losers, err := s.offerRepo.List(ctx, repositories.OfferFilter{CampaignID: &campaignID, Limit: 100})
	if err != nil {
		s.log.Warn("failed to list losing offers", zap.Error(err))
		return offer, nil
	}
	for _, lost := range losers {
		if lost.ID == offerID || lost.Status == models.OfferStatusSelected {
			continue
		}
		_ = s.publisher.Publish(ctx, events.StreamNotifications, events.Event{
			Type: events.EventNotification,
			Payload: map[string]any{
				"user_id":     lost.SupplierID.String(),
				"subject":     "Offer not selected",
				"text":        fmt.Sprintf("Another supplier was selected for campaign %q.", campaign.Title),
				"campaign_id": campaignID.String(),
				"offer_id":    lost.ID.String(),
			},
		})
	}

	return offer, nil
}

func (s *OfferService) GetOffer(ctx context.Context, id, requesterID uuid.UUID) (*models.SupplierOffer, []models.SupplierOfferRow, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, models.ErrNotFound("offer not found")
	}

	// The supplier and the campaign owner may read the offer.
	if offer.SupplierID != requesterID {
		campaign, err := s.campaignRepo.GetByID(ctx, offer.CampaignID)
		if err != nil || campaign.CreatedBy != requesterID {
			return nil, nil, models.ErrNotFound("offer not found")
		}
	}

	rows, err := s.offerRepo.ListRows(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return offer, rows, nil
}

func (s *OfferService) ListOffers(ctx context.Context, f repositories.OfferFilter) ([]models.SupplierOffer, error) {
	return s.offerRepo.List(ctx, f)
}

// ListCampaignOffers is the owner's comparison view.
func (s *OfferService) ListCampaignOffers(ctx context.Context, campaignID, ownerID uuid.UUID) ([]models.SupplierOffer, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, models.ErrNotFound("campaign not found")
	}
	if campaign.CreatedBy != ownerID {
		return nil, models.ErrNotFound("campaign not found")
	}
	return s.offerRepo.List(ctx, repositories.OfferFilter{CampaignID: &campaignID, Limit: 100})
}
