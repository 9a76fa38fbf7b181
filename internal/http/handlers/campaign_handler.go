package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, log: log}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "title is required"})
	}

	campaign := &models.Campaign{
		Kind:              req.Kind,
		Title:             req.Title,
		Description:       req.Description,
		Currency:          req.Currency,
		ThresholdType:     req.ThresholdType,
		ThresholdQuantity: req.ThresholdQuantity,
		ThresholdValue:    req.ThresholdValue,
		Deadline:          req.Deadline,
		DeliveryJSON:      req.Delivery,
		PaymentJSON:       req.Payment,
		DepositJSON:       req.Deposit,
		CancellationJSON:  req.Cancellation,
	}
	if req.SourceCampaignID != nil {
		sourceID, err := uuid.Parse(*req.SourceCampaignID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid source_campaign_id"})
		}
		campaign.SourceCampaignID = &sourceID
	}

	userID := middleware.GetUserID(c)
	if err := h.campaignService.Create(c.Context(), userID, campaign); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	campaign, err := h.campaignService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{Limit: 20}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("kind"); v != "" {
		filter.Kind = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if c.Query("mine") == "true" {
		userID := middleware.GetUserID(c)
		filter.CreatedBy = &userID
	}

	campaigns, err := h.campaignService.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list campaigns failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) PublishCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	userID := middleware.GetUserID(c)
	campaign, err := h.campaignService.Publish(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) AddItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "title is required"})
	}

	item := &models.CampaignItem{
		Title:       req.Title,
		Description: req.Description,
		Unit:        req.Unit,
		VariantJSON: req.Variant,
	}
	userID := middleware.GetUserID(c)
	if err := h.campaignService.AddItem(c.Context(), id, userID, item); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: item})
}

func (h *CampaignHandler) ListItems(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	items, err := h.campaignService.ListItems(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: items})
}
