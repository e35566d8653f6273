package handlers

import (
	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PlayerHandler struct {
	players *services.PlayerService
}

func NewPlayerHandler(players *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// CreateOrFetch handles POST /apps/:appId/players. Duplicate-safe: an
// existing (appId, playerId) pair is returned rather than recreated.
func (h *PlayerHandler) CreateOrFetch(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	var req dto.CreatePlayerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	player, err := h.players.CreateOrFetch(appID, req.PlayerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(player)
}

// ListByApp handles GET /apps/:appId/players.
func (h *PlayerHandler) ListByApp(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	players, err := h.players.ListByApp(appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(players)
}

// Get handles GET /apps/:appId/players/:pId.
func (h *PlayerHandler) Get(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	player, err := h.players.Get(appID, c.Params("pId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(player)
}

// UpdateProgress handles PATCH /apps/:appId/players/:pId/progress with a
// delta increment.
func (h *PlayerHandler) UpdateProgress(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	var req dto.ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.AchievementID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "achievementId is required",
		})
	}

	player, err := h.players.UpdateProgress(appID, c.Params("pId"), req.AchievementID, req.ProgressDelta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(player)
}

// Delete handles DELETE /apps/:appId/players/:pId.
func (h *PlayerHandler) Delete(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	if err := h.players.Delete(appID, c.Params("pId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Player deleted successfully"})
}
