package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

type OfferHandler struct {
	offerService *services.OfferService
	log          *zap.Logger
}

func NewOfferHandler(offerService *services.OfferService, log *zap.Logger) *OfferHandler {
	return &OfferHandler{offerService: offerService, log: log}
}

func (h *OfferHandler) SubmitOffer(c *fiber.Ctx) error {
	var req dto.SubmitOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_id"})
	}

	rows := make([]services.OfferRowInput, 0, len(req.Rows))
	for _, r := range req.Rows {
		itemID, err := uuid.Parse(r.ItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item_id"})
		}
		rows = append(rows, services.OfferRowInput{
			ItemID:       itemID,
			UnitPrice:    r.UnitPrice,
			MinQty:       r.MinQty,
			LeadTimeDays: r.LeadTimeDays,
			Notes:        r.Notes,
		})
	}

	supplierID := middleware.GetUserID(c)
	offer, err := h.offerService.SubmitOffer(c.Context(), supplierID, services.SubmitOfferInput{
		CampaignID:    campaignID,
		PaymentTerms:  req.PaymentTerms,
		DeliveryTerms: req.DeliveryTerms,
		Warranty:      req.Warranty,
		Rows:          rows,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: offer})
}

func (h *OfferHandler) ListOffers(c *fiber.Ctx) error {
	supplierID := middleware.GetUserID(c)
	filter := repositories.OfferFilter{SupplierID: &supplierID, Limit: 20}

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

	offers, err := h.offerService.ListOffers(c.Context(), filter)
	if err != nil {
		h.log.Error("list offers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: offers})
}

func (h *OfferHandler) GetOffer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid offer id"})
	}

	userID := middleware.GetUserID(c)
	offer, rows, err := h.offerService.GetOffer(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"offer": offer,
		"rows":  rows,
	}})
}

func (h *OfferHandler) SignOffer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid offer id"})
	}

	supplierID := middleware.GetUserID(c)
	offer, err := h.offerService.SignOffer(c.Context(), id, supplierID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: offer})
}

// ListCampaignOffers is the feed owner's side-by-side comparison view.
func (h *OfferHandler) ListCampaignOffers(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	ownerID := middleware.GetUserID(c)
	offers, err := h.offerService.ListCampaignOffers(c.Context(), campaignID, ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: offers})
}

func (h *OfferHandler) SelectOffer(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}
	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid offer id"})
	}

	ownerID := middleware.GetUserID(c)
	offer, err := h.offerService.SelectOffer(c.Context(), campaignID, offerID, ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: offer})
}
