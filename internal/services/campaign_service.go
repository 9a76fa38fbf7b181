package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

type CampaignService struct {
	campaignRepo *repositories.CampaignRepo
	auditRepo    *repositories.AuditRepo
	log          *zap.Logger
}

func NewCampaignService(
	campaignRepo *repositories.CampaignRepo,
	auditRepo *repositories.AuditRepo,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		log:          log,
	}
}

func (s *CampaignService) Create(ctx context.Context, userID uuid.UUID, c *models.Campaign) error {
	if c.Kind != models.CampaignKindNeed && c.Kind != models.CampaignKindFeed {
		return models.ErrPrecondition(models.CodeInvalidTransition, fmt.Sprintf("invalid campaign kind %q", c.Kind))
	}

	c.CreatedBy = userID
	if c.Currency == "" {
		c.Currency = "RUB"
	}
	draft := models.NeedStatusDraft
	if c.Kind == models.CampaignKindNeed {
		c.StatusNeed = &draft
		c.StatusFeed = nil
	} else {
		c.StatusFeed = &draft
		c.StatusNeed = nil
	}

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "campaign_created",
		EntityType:  "campaign",
		EntityID:    &c.ID,
		Meta:        map[string]any{"kind": c.Kind},
	})

	return nil
}

// Publish moves a campaign along its opening path: need draft→review→live,
// feed draft→open. Each call advances one step.
func (s *CampaignService) Publish(ctx context.Context, id, userID uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("campaign not found")
	}
	if c.CreatedBy != userID {
		return nil, models.ErrNotFound("campaign not found")
	}

	from := c.Status()
	var to string
	switch {
	case c.Kind == models.CampaignKindNeed && from == models.NeedStatusDraft:
		to = models.NeedStatusReview
	case c.Kind == models.CampaignKindNeed && from == models.NeedStatusReview:
		to = models.NeedStatusLive
	case c.Kind == models.CampaignKindFeed && from == models.FeedStatusDraft:
		to = models.FeedStatusOpen
	default:
		return nil, models.ErrPrecondition(models.CodeInvalidTransition,
			fmt.Sprintf("campaign cannot be published from status %q", from))
	}

	if c.Kind == models.CampaignKindNeed {
		if !models.IsValidNeedTransition(from, to) {
			return nil, models.ErrPrecondition(models.CodeInvalidTransition,
				fmt.Sprintf("invalid transition from %s to %s", from, to))
		}
		if err := s.campaignRepo.UpdateNeedStatus(ctx, id, to); err != nil {
			return nil, err
		}
		c.StatusNeed = &to
	} else {
		if !models.IsValidFeedTransition(from, to) {
			return nil, models.ErrPrecondition(models.CodeInvalidTransition,
				fmt.Sprintf("invalid transition from %s to %s", from, to))
		}
		if err := s.campaignRepo.UpdateFeedStatus(ctx, id, to); err != nil {
			return nil, err
		}
		c.StatusFeed = &to
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      fmt.Sprintf("campaign_status_%s_to_%s", from, to),
		EntityType:  "campaign",
		EntityID:    &id,
		Meta:        map[string]any{"old_status": from, "new_status": to},
	})

	return c, nil
}

func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ErrNotFound("campaign not found")
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	return s.campaignRepo.List(ctx, f)
}

func (s *CampaignService) AddItem(ctx context.Context, campaignID, userID uuid.UUID, it *models.CampaignItem) error {
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return models.ErrNotFound("campaign not found")
	}
	if c.CreatedBy != userID {
		return models.ErrNotFound("campaign not found")
	}

	it.CampaignID = campaignID
	if it.Unit == "" {
		it.Unit = "pcs"
	}
	return s.campaignRepo.CreateItem(ctx, it)
}

func (s *CampaignService) ListItems(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignItem, error) {
	if _, err := s.campaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, models.ErrNotFound("campaign not found")
	}
	return s.campaignRepo.ListItems(ctx, campaignID)
}
