package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/render"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

type DeedHandler struct {
	deedService *services.DeedService
	log         *zap.Logger
}

func NewDeedHandler(deedService *services.DeedService, log *zap.Logger) *DeedHandler {
	return &DeedHandler{deedService: deedService, log: log}
}

func (h *DeedHandler) CreateNeedDeed(c *fiber.Ctx) error {
	var req dto.CreateNeedDeedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_id"})
	}

	items := make([]services.NeedDeedItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		itemID, err := uuid.Parse(it.ItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item_id"})
		}
		items = append(items, services.NeedDeedItemInput{ItemID: itemID, Quantity: it.Quantity})
	}

	userID := middleware.GetUserID(c)
	meta := models.SignatureMeta{
		Method:    "platform_click",
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	}

	result, err := h.deedService.CreateNeedDeed(c.Context(), campaignID, userID, items, meta)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.NeedDeedResponse{
		DeedID:   result.Deed.ID.String(),
		PledgeID: result.PledgeID.String(),
	}})
}

func (h *DeedHandler) ListDeeds(c *fiber.Ctx) error {
	filter := repositories.DeedFilter{Limit: 20}

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
		filter.DeedKind = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("campaign_id"); v != "" {
		campaignID, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_id"})
		}
		filter.CampaignID = &campaignID
	} else {
		// Without a campaign scope the listing is always "my deeds".
		userID := middleware.GetUserID(c)
		filter.CreatedBy = &userID
	}

	deeds, err := h.deedService.ListDeeds(c.Context(), filter)
	if err != nil {
		h.log.Error("list deeds failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deeds})
}

func (h *DeedHandler) GetDeed(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	deed, err := h.deedService.GetDeed(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deed})
}

// GetDeedHTML renders the stored document as a printable page. Restricted to
// parties of the deed: the creator and its signers.
func (h *DeedHandler) GetDeedHTML(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	deed, err := h.deedService.GetDeed(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	userID := middleware.GetUserID(c)
	if deed.CreatedBy != userID {
		if _, err := h.deedService.GetSigner(c.Context(), id, userID); err != nil {
			return respondError(c, models.ErrNotFound("deed not found"))
		}
	}

	html, err := render.DeedHTML(deed.DeedKind, deed.DocJSON)
	if err != nil {
		h.log.Error("deed render failed", zap.Error(err), zap.String("deed_id", id.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// VerifyDeed is public: anyone holding the verify_url can check the document
// hash without authenticating.
func (h *DeedHandler) VerifyDeed(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	result, err := h.deedService.VerifyDeed(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.VerifyResponse{
		Match:        result.Match,
		StoredHash:   result.StoredHash,
		ComputedHash: result.ComputedHash,
	}})
}

func (h *DeedHandler) ListSigners(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	signers, err := h.deedService.ListSigners(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	progress, err := h.deedService.SignerProgress(c.Context(), id)
	if err != nil {
		h.log.Error("signer progress failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"signers": signers,
		"progress": dto.SignerProgressResponse{
			Signed: progress.Signed,
			Total:  progress.Total,
			Done:   progress.Complete(),
		},
	}})
}

func (h *DeedHandler) SignDeed(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	var req dto.SignDeedRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	method := req.Method
	if method == "" {
		method = "platform_click"
	}

	userID := middleware.GetUserID(c)
	meta := models.SignatureMeta{
		Method:    method,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	}

	deed, err := h.deedService.RecordSignature(c.Context(), id, userID, meta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deed})
}

func (h *DeedHandler) GetDeedEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	entries, err := h.deedService.GetDeedEvents(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *DeedHandler) UpdateDeedStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deed id"})
	}

	var req dto.UpdateDeedStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "status is required"})
	}

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	deed, err := h.deedService.UpdateStatus(c.Context(), id, userID, role, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: deed})
}
