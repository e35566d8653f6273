package handlers

import (
	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListHandler struct {
	lists *services.ListService
}

func NewListHandler(lists *services.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

// Create handles POST /lists.
func (h *ListHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	list, err := h.lists.Create(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

// ListByApp handles GET /apps/:appId/lists.
func (h *ListHandler) ListByApp(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	lists, err := h.lists.ListByApp(appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lists)
}

// Get handles GET /lists/:listId, returning the list with its ordered
// achievements inlined.
func (h *ListHandler) Get(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	list, achs, err := h.lists.Get(listID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":           list.ID,
		"appId":        list.AppID,
		"title":        list.Title,
		"description":  list.Description,
		"achievements": achs,
	})
}

// Update handles PATCH /lists/:listId.
func (h *ListHandler) Update(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	var req dto.UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	list, err := h.lists.Update(listID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Delete handles DELETE /lists/:listId.
func (h *ListHandler) Delete(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	if err := h.lists.Delete(listID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "AchievementList deleted"})
}

// PlayerView handles GET /lists/:listId/players/:playerId, merging the list
// with one player's progress.
func (h *ListHandler) PlayerView(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	view, err := h.lists.PlayerView(listID, c.Params("playerId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
