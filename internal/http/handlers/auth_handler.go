package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mishmeshmosh/backend/internal/auth"
	"github.com/mishmeshmosh/backend/internal/config"
	"github.com/mishmeshmosh/backend/internal/http/dto"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo *repositories.UserRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, cfg: cfg, log: log}
}

// Token exchanges an HMAC-signed gateway payload for a session JWT,
// upserting the user by email on the way.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.AuthTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Payload == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "payload is required"})
	}

	vals, err := auth.ValidateGatewayPayload(req.Payload, h.cfg.GatewaySecret, h.cfg.AuthPayloadMaxAge)
	if err != nil {
		h.log.Debug("gateway payload validation failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	email := vals.Get("email")
	fullName := vals.Get("full_name")
	var phone *string
	if p := vals.Get("phone"); p != "" {
		phone = &p
	}

	user, err := h.userRepo.UpsertByEmail(c.Context(), email, fullName, phone)
	if err != nil {
		h.log.Error("failed to upsert user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Email, user.Role, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{
		Token: token,
		User:  user,
	})
}
