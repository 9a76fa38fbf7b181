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

type DeedService struct {
	pool         *pgxpool.Pool
	deedRepo     *repositories.DeedRepo
	campaignRepo *repositories.CampaignRepo
	pledgeRepo   *repositories.PledgeRepo
	userRepo     *repositories.UserRepo
	auditRepo    *repositories.AuditRepo
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewDeedService(
	pool *pgxpool.Pool,
	deedRepo *repositories.DeedRepo,
	campaignRepo *repositories.CampaignRepo,
	pledgeRepo *repositories.PledgeRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DeedService {
	return &DeedService{
		pool:         pool,
		deedRepo:     deedRepo,
		campaignRepo: campaignRepo,
		pledgeRepo:   pledgeRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// transition validates and performs a deed status change with audit logging
// and event fan-out.
func (s *DeedService) transition(ctx context.Context, deed *models.Deed, newStatus string, actorID *uuid.UUID, actorType string) error {
	if !models.IsValidDeedTransition(deed.Status, newStatus) {
		return models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("invalid transition from %s to %s", deed.Status, newStatus))
	}

	oldStatus := deed.Status
	if newStatus == models.DeedStatusExecuted {
		if err := s.deedRepo.MarkExecuted(ctx, deed.ID); err != nil {
			return err
		}
	} else {
		if err := s.deedRepo.UpdateStatus(ctx, deed.ID, newStatus); err != nil {
			return err
		}
	}
	deed.Status = newStatus

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: actorID,
		ActorType:   actorType,
		Action:      fmt.Sprintf("deed_status_%s_to_%s", oldStatus, newStatus),
		EntityType:  "deed",
		EntityID:    &deed.ID,
		Meta:        map[string]any{"old_status": oldStatus, "new_status": newStatus},
	})

	eventType := events.EventDeedSigned
	if newStatus == models.DeedStatusExecuted {
		eventType = events.EventDeedExecuted
	}
	_ = s.publisher.Publish(ctx, events.StreamDeeds, events.Event{
		Type: eventType,
		Payload: map[string]any{
			"deed_id":    deed.ID.String(),
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	})

	return nil
}

type NeedDeedItemInput struct {
	ItemID   uuid.UUID
	Quantity int
}

type NeedDeedResult struct {
	Deed     *models.Deed
	PledgeID uuid.UUID
}

// CreateNeedDeed records a backer's pledge against a live need campaign and
// issues the backing Need Deed in a single transaction. The deed is born
// signed: the pledge click is the signature.
func (s *DeedService) CreateNeedDeed(ctx context.Context, campaignID, userID uuid.UUID, items []NeedDeedItemInput, meta models.SignatureMeta) (*NeedDeedResult, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, models.ErrPrecondition(models.CodeCampaignNotOpen, "campaign not found or not open")
	}
	if campaign.Kind != models.CampaignKindNeed || campaign.Status() != models.NeedStatusLive {
		return nil, models.ErrPrecondition(models.CodeCampaignNotOpen, "campaign is not open for pledges")
	}

	if len(items) == 0 {
		return nil, models.ErrPrecondition(models.CodeInvalidItems, "at least one item is required")
	}
	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, models.ErrPrecondition(models.CodeInvalidItems,
				fmt.Sprintf("quantity must be positive for item %s", it.ItemID))
		}
		itemIDs = append(itemIDs, it.ItemID)
	}
	catalog, err := s.campaignRepo.GetItems(ctx, campaignID, itemIDs)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, ok := catalog[it.ItemID]; !ok {
			return nil, models.ErrPrecondition(models.CodeInvalidItems,
				fmt.Sprintf("item %s does not belong to this campaign", it.ItemID))
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.ErrUnauthorized("user not found")
	}

	now := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pledgeRepo := s.pledgeRepo.WithTx(tx)
	deedRepo := s.deedRepo.WithTx(tx)

	pledge := &models.Pledge{
		CampaignID: campaignID,
		UserID:     userID,
		Status:     models.PledgeStatusActive,
	}
	if err := pledgeRepo.Create(ctx, pledge); err != nil {
		return nil, err
	}

	docItems := make([]deeddoc.ItemLine, 0, len(items))
	for _, it := range items {
		catItem := catalog[it.ItemID]
		price, ok := catItem.UnitPrice()
		if !ok {
			s.log.Warn("campaign item has no unit_price, falling back to 0",
				zap.String("item_id", it.ItemID.String()),
				zap.String("campaign_id", campaignID.String()),
			)
		}
		rowTotal := float64(it.Quantity) * price

		row := &models.PledgeRow{
			PledgeID:  pledge.ID,
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			RowTotal:  rowTotal,
		}
		if err := pledgeRepo.CreateRow(ctx, row); err != nil {
			return nil, err
		}

		line := deeddoc.ItemLine{
			ID:        it.ItemID.String(),
			Title:     catItem.Title,
			Unit:      catItem.Unit,
			Quantity:  it.Quantity,
			UnitPrice: price,
			RowTotal:  rowTotal,
		}
		if catItem.Description != nil {
			line.Description = *catItem.Description
		}
		docItems = append(docItems, line)
	}

	doc := deeddoc.NeedDeedDoc{
		Deed: deeddoc.DeedRef{
			Status:   models.DeedStatusSigned,
			Version:  1,
			SignedAt: now.Format(time.RFC3339),
		},
		Campaign: deeddoc.CampaignRef{
			ID:    campaign.ID.String(),
			Title: campaign.Title,
		},
		Backer: deeddoc.PersonRef{
			ID:       user.ID.String(),
			FullName: user.FullName,
			Email:    user.Email,
		},
		Platform: deeddoc.PlatformRef{
			LegalName:     s.cfg.PlatformLegalName,
			CompanyNumber: s.cfg.PlatformINN,
			Address:       s.cfg.PlatformAddress,
		},
		Items: docItems,
		Totals: deeddoc.Totals{
			Currency:   campaign.Currency,
			TotalValue: deeddoc.FormatAmount(deeddoc.TotalValue(docItems)),
		},
		Delivery: campaign.DeliveryJSON,
		Payment:  campaign.PaymentJSON,
		Signature: deeddoc.SignatureRef{
			Method:    "platform_click",
			RecordRef: pledge.ID.String(),
		},
	}
	if campaign.Description != nil {
		doc.Campaign.Description = *campaign.Description
	}
	if user.Phone != nil {
		doc.Backer.Phone = *user.Phone
	}

	hash, err := doc.ContentHash()
	if err != nil {
		return nil, err
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	deed := &models.Deed{
		DeedKind:   models.DeedKindNeed,
		Status:     models.DeedStatusSigned,
		Version:    1,
		DocJSON:    docBytes,
		DocHash:    hash,
		CampaignID: campaignID,
		CreatedBy:  userID,
		ExecutedAt: &now,
	}
	if err := deedRepo.Create(ctx, deed); err != nil {
		return nil, err
	}

	// Backfill the deed's own id and verify_url into the stored document.
	// The hash is not recomputed; it deliberately excludes these fields.
	doc.Deed.ID = deed.ID.String()
	doc.Deed.DocHash = hash
	doc.Deed.VerifyURL = fmt.Sprintf("%s/api/v1/deeds/%s/verify", s.cfg.PublicBaseURL, deed.ID)
	docBytes, err = json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := deedRepo.UpdateDocJSON(ctx, deed.ID, docBytes); err != nil {
		return nil, err
	}
	deed.DocJSON = docBytes

	signer := models.DeedSigner{
		DeedID:        deed.ID,
		UserID:        userID,
		SignerKind:    models.SignerKindBacker,
		Status:        models.SignerStatusSigned,
		SignedAt:      &now,
		SignatureMeta: meta,
	}
	if err := deedRepo.InviteSigners(ctx, []models.DeedSigner{signer}); err != nil {
		return nil, err
	}

	participation := &models.Participation{
		UserID:     userID,
		CampaignID: campaignID,
		Kind:       models.SignerKindBacker,
		RefID:      pledge.ID,
	}
	if err := pledgeRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "need_deed_created",
		EntityType:  "deed",
		EntityID:    &deed.ID,
		Meta: map[string]any{
			"campaign_id": campaignID.String(),
			"pledge_id":   pledge.ID.String(),
			"total_value": doc.Totals.TotalValue,
			"doc_hash":    hash,
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamDeeds, events.Event{
		Type: events.EventDeedSigned,
		Payload: map[string]any{
			"deed_id":     deed.ID.String(),
			"deed_kind":   deed.DeedKind,
			"campaign_id": campaignID.String(),
			"user_id":     userID.String(),
		},
	})

	return &NeedDeedResult{Deed: deed, PledgeID: pledge.ID}, nil
}

// RecordSignature moves one invited signer to signed. When the last signer of
// a draft assignment deed signs, the deed is promoted straight to executed.
func (s *DeedService) RecordSignature(ctx context.Context, deedID, userID uuid.UUID, meta models.SignatureMeta) (*models.Deed, error) {
	deed, err := s.deedRepo.GetByID(ctx, deedID)
	if err != nil {
		return nil, models.ErrNotFound("deed not found")
	}

	signer, err := s.deedRepo.GetSigner(ctx, deedID, userID)
	if err != nil {
		return nil, models.ErrNotFound("you are not a signer of this deed")
	}
	if signer.Status == models.SignerStatusSigned {
		return nil, models.ErrConflict(models.CodeAlreadySigned, "deed already signed by this user")
	}

	// The signature and the possible promotion land in one transaction: a
	// deed whose last signer signed must never stay in draft.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	deedRepo := s.deedRepo.WithTx(tx)

	updated, err := deedRepo.MarkSigned(ctx, deedID, userID, meta)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race against a concurrent sign of the same row.
		return nil, models.ErrConflict(models.CodeAlreadySigned, "deed already signed by this user")
	}

	progress, err := deedRepo.SignerProgress(ctx, deedID)
	if err != nil {
		return nil, err
	}
	promote := shouldPromoteOnSign(deed, progress)
	if promote {
		if err := deedRepo.MarkExecuted(ctx, deedID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "deed_signer_signed",
		EntityType:  "deed",
		EntityID:    &deedID,
		Meta:        map[string]any{"signer_kind": signer.SignerKind, "method": meta.Method},
	})
	_ = s.publisher.Publish(ctx, events.StreamDeeds, events.Event{
		Type: events.EventDeedSigned,
		Payload: map[string]any{
			"deed_id": deedID.String(),
			"user_id": userID.String(),
		},
	})

	if promote {
		oldStatus := deed.Status
		deed.Status = models.DeedStatusExecuted

		_ = s.auditRepo.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     fmt.Sprintf("deed_status_%s_to_%s", oldStatus, deed.Status),
			EntityType: "deed",
			EntityID:   &deedID,
			Meta:       map[string]any{"old_status": oldStatus, "new_status": deed.Status},
		})
		_ = s.publisher.Publish(ctx, events.StreamDeeds, events.Event{
			Type: events.EventDeedExecuted,
			Payload: map[string]any{
				"deed_id":    deedID.String(),
				"old_status": oldStatus,
				"new_status": deed.Status,
			},
		})
	}

	return deed, nil
}

// shouldPromoteOnSign reports whether a just-completed signature set promotes
// the deed. Only draft assignment deeds auto-execute; the promotion fires on
// the signature that brings the set to completion.
func shouldPromoteOnSign(deed *models.Deed, progress models.SignerProgress) bool {
	return deed.DeedKind == models.DeedKindAssignment &&
		deed.Status == models.DeedStatusDraft &&
		progress.Complete()
}

func (s *DeedService) SignerProgress(ctx context.Context, deedID uuid.UUID) (models.SignerProgress, error) {
	return s.deedRepo.SignerProgress(ctx, deedID)
}

func (s *DeedService) GetSigner(ctx context.Context, deedID, userID uuid.UUID) (*models.DeedSigner, error) {
	signer, err := s.deedRepo.GetSigner(ctx, deedID, userID)
	if err != nil {
		return nil, models.ErrNotFound("signer not found")
	}
	return signer, nil
}

func (s *DeedService) ListSigners(ctx context.Context, deedID uuid.UUID) ([]models.DeedSigner, error) {
	if _, err := s.deedRepo.GetByID(ctx, deedID); err != nil {
		return nil, models.ErrNotFound("deed not found")
	}
	return s.deedRepo.ListSigners(ctx, deedID)
}

func (s *DeedService) GetDeed(ctx context.Context, id uuid.UUID) (*models.Deed, error) {
	deed, err := s.deedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("deed not found")
	}
	return deed, nil
}

func (s *DeedService) ListDeeds(ctx context.Context, f repositories.DeedFilter) ([]models.Deed, error) {
	return s.deedRepo.List(ctx, f)
}

// UpdateStatus performs a manually driven lifecycle transition (executed →
// active → fulfilled). Only the creator or staff may drive it.
func (s *DeedService) UpdateStatus(ctx context.Context, deedID, actorID uuid.UUID, actorRole, newStatus string) (*models.Deed, error) {
	deed, err := s.deedRepo.GetByID(ctx, deedID)
	if err != nil {
		return nil, models.ErrNotFound("deed not found")
	}

	isStaff := actorRole == models.RoleModerator || actorRole == models.RoleAdmin
	if deed.CreatedBy != actorID && !isStaff {
		return nil, models.ErrNotFound("deed not found")
	}

	actorType := "user"
	if isStaff && deed.CreatedBy != actorID {
		actorType = "staff"
	}
	if err := s.transition(ctx, deed, newStatus, &actorID, actorType); err != nil {
		return nil, err
	}
	return deed, nil
}

type VerifyResult struct {
	Match        bool   `json:"match"`
	StoredHash   string `json:"stored_hash"`
	ComputedHash string `json:"computed_hash"`
}

// VerifyDeed recomputes the content hash of the stored document and compares
// it against the recorded digest. This is the verify_url target.
func (s *DeedService) VerifyDeed(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	deed, err := s.deedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("deed not found")
	}

	match, computed, err := deeddoc.Verify(deed.DeedKind, deed.DocJSON, deed.DocHash)
	if err != nil {
		return nil, models.ErrInternal("failed to verify deed document")
	}
	return &VerifyResult{
		Match:        match,
		StoredHash:   deed.DocHash,
		ComputedHash: computed,
	}, nil
}

func (s *DeedService) GetDeedEvents(ctx context.Context, deedID uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.deedRepo.GetByID(ctx, deedID); err != nil {
		return nil, models.ErrNotFound("deed not found")
	}
	return s.auditRepo.GetByEntity(ctx, "deed", deedID, 100, 0)
}
