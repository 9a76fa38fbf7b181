package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/rbac"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
	log            *zap.Logger
}

func NewDisputeHandler(disputeService *services.DisputeService, log *zap.Logger) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService, log: log}
}

// isStaff drives dispute visibility: anyone who may review disputes sees all
// of them, everyone else only their own.
func isStaff(c *fiber.Ctx) bool {
	return rbac.HasPermission(middleware.GetRole(c), rbac.PermReviewDispute)
}

func (h *DisputeHandler) OpenDispute(c *fiber.Ctx) error {
	var req dto.OpenDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	contextID, err := uuid.Parse(req.ContextID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid context_id"})
	}

	userID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Open(c.Context(), userID, req.ContextType, contextID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) ListDisputes(c *fiber.Ctx) error {
	filter := repositories.DisputeFilter{Limit: 20}

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
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("context_type"); v != "" {
		filter.ContextType = &v
	}

	userID := middleware.GetUserID(c)
	disputes, err := h.disputeService.List(c.Context(), userID, isStaff(c), filter)
	if err != nil {
		h.log.Error("list disputes failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: disputes})
}

func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	userID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Get(c.Context(), id, userID, isStaff(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

// ReviewDispute is staff-only, enforced by the router.
func (h *DisputeHandler) ReviewDispute(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	staffID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Review(c.Context(), id, staffID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

// ResolveDispute is staff-only, enforced by the router.
func (h *DisputeHandler) ResolveDispute(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	var req dto.ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil || req.Outcome == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "outcome is required"})
	}

	staffID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Resolve(c.Context(), id, staffID, req.Outcome, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}
