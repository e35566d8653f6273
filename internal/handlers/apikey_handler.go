package handlers

import (
	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApiKeyHandler struct {
	keys *services.ApiKeyService
}

func NewApiKeyHandler(keys *services.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{keys: keys}
}

// Create handles POST /lists/:listId/apikeys.
func (h *ApiKeyHandler) Create(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	var req dto.CreateApiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	key, err := h.keys.Create(listID, req.ExpDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(key)
}

// ListByList handles GET /lists/:listId/apikeys.
func (h *ApiKeyHandler) ListByList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	keys, err := h.keys.ListByList(listID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(keys)
}

// Revoke handles DELETE /apikeys/:id.
func (h *ApiKeyHandler) Revoke(c *fiber.Ctx) error {
	keyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid key ID",
		})
	}

	if err := h.keys.Revoke(keyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "API key revoked"})
}

// ResolveKeyData handles GET /apikeys?key=, resolving a raw key to the list
// and app it is scoped to. Callers use this to bootstrap a client session.
func (h *ApiKeyHandler) ResolveKeyData(c *fiber.Ctx) error {
	raw := c.Query("key")
	key, err := h.keys.Resolve(raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.KeyScopeResponse{
		ListID: key.ListID,
		AppID:  key.AppID,
	})
}
