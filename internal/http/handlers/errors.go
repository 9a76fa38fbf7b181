package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/models"
)

// respondError maps service errors to the wire error shape
// {error, code, request_id?, ...extras}. Unknown errors become a plain 500;
// the message is never leaked for those.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.ErrInternal("internal error")
	}

	payload := fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	}
	if reqID, ok := c.Locals(middleware.CtxRequestID).(string); ok && reqID != "" {
		payload["request_id"] = reqID
	}
	for k, v := range appErr.Extra {
		payload[k] = v
	}
	return c.Status(appErr.StatusCode).JSON(payload)
}
