package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	log               *zap.Logger
}

func NewAssignmentHandler(assignmentService *services.AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, log: log}
}

func (h *AssignmentHandler) CreateAssignment(c *fiber.Ctx) error {
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	needID, err := uuid.Parse(req.CampaignNeedID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_need_id"})
	}
	feedID, err := uuid.Parse(req.CampaignFeedID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_feed_id"})
	}
	offerID, err := uuid.Parse(req.SelectedOfferID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid selected_offer_id"})
	}

	initiatorID := middleware.GetUserID(c)
	result, err := h.assignmentService.CreateAssignment(c.Context(), needID, feedID, offerID, initiatorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.AssignmentCreatedResponse{
		AssignmentID:     result.Assignment.ID.String(),
		AssignmentDeedID: result.Deed.ID.String(),
	}})
}

func (h *AssignmentHandler) GetAssignment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid assignment id"})
	}

	userID := middleware.GetUserID(c)
	assignment, err := h.assignmentService.GetAssignment(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: assignment})
}
