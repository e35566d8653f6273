package handlers

import (
	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppHandler struct {
	apps *services.AppService
}

func NewAppHandler(apps *services.AppService) *AppHandler {
	return &AppHandler{apps: apps}
}

// Create handles POST /apps for the authenticated developer.
func (h *AppHandler) Create(c *fiber.Ctx) error {
	ownerID, err := scope.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	app, err := h.apps.Create(ownerID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// List handles GET /apps, scoped to the authenticated developer.
func (h *AppHandler) List(c *fiber.Ctx) error {
	ownerID, err := scope.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	apps, err := h.apps.ListByOwner(ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(apps)
}

// Get handles GET /apps/:appId.
func (h *AppHandler) Get(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	app, err := h.apps.Get(appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// Update handles PATCH /apps/:appId.
func (h *AppHandler) Update(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	var req dto.UpdateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	app, err := h.apps.Update(appID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// Delete handles DELETE /apps/:appId.
func (h *AppHandler) Delete(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid app ID",
		})
	}

	if err := h.apps.Delete(appID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "App deleted successfully"})
}
