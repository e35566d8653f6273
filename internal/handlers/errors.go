package handlers

import (
	"errors"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto the HTTP taxonomy: validation → 400,
// missing entities → 404, expired key → 403, everything else → 500 (details
// logged by the app error handler, not exposed).
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrAppNotFound),
		errors.Is(err, services.ErrListNotFound),
		errors.Is(err, services.ErrAchievementNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrKeyNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrKeyExpired):
		status = fiber.StatusForbidden
		message = err.Error()
	}

	if status == fiber.StatusInternalServerError {
		// Let the app error handler log the real error and mask the message.
		return fiber.NewError(status, err.Error())
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
