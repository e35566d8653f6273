package middleware

import (
	"errors"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderAPIKey is the shared-secret header game backends authenticate with.
const HeaderAPIKey = "x-api-key"

// RequireAPIKey validates the x-api-key header and stores the resolved scope
// in context locals. Missing key → 401, unknown or expired key → 403.
func RequireAPIKey(keys *services.ApiKeyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderAPIKey)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "API key missing",
			})
		}

		key, err := keys.Resolve(raw)
		if err != nil {
			if errors.Is(err, services.ErrKeyExpired) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "API key expired",
				})
			}
			if errors.Is(err, services.ErrKeyNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Invalid API key",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to validate API key",
			})
		}

		scope.Set(c, scope.KeyScope{
			KeyID:   key.ID,
			ListID:  key.ListID,
			AppID:   key.AppID,
			ExpDate: key.ExpDate,
		})
		return c.Next()
	}
}

// RequireAppMatch rejects requests whose key scope belongs to a different
// app than the :appId path parameter. Runs after RequireAPIKey.
func RequireAppMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		appID, err := uuid.Parse(c.Params("appId"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid app ID",
			})
		}

		s, ok := scope.Get(c)
		if !ok || s.AppID != appID {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "API key does not match this app",
			})
		}
		return c.Next()
	}
}

// RequireListMatch rejects requests whose key scope does not cover the
// :listId path parameter. Runs after RequireAPIKey.
func RequireListMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		listID, err := uuid.Parse(c.Params("listId"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid list ID",
			})
		}

		s, ok := scope.Get(c)
		if !ok || s.ListID != listID {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "API key does not match this list",
			})
		}
		return c.Next()
	}
}
