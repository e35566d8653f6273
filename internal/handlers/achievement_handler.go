package handlers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/dmolenda/achievehub/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type AchievementHandler struct {
	achievements *services.AchievementService
	images       storage.ImageStore
}

func NewAchievementHandler(achievements *services.AchievementService, images storage.ImageStore) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, images: images}
}

// Create handles POST /lists/:listId/achievements.
func (h *AchievementHandler) Create(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	var req dto.CreateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ach, err := h.achievements.Create(listID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ach)
}

// List handles GET /lists/:listId/achievements, sorted by rank.
func (h *AchievementHandler) List(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	achs, err := h.achievements.ListOrdered(listID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(achs)
}

// Update handles PATCH /lists/:listId/achievements/:id. A present order field
// triggers the range-shift reorder before the remaining field edits apply.
func (h *AchievementHandler) Update(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}
	achID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid achievement ID",
		})
	}

	var req dto.UpdateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ach, err := h.achievements.UpdateFields(listID, achID, &req)
	if err != nil {
		return respondError(c, err)
	}

	if req.Order != nil {
		ach, err = h.achievements.UpdateOrder(listID, achID, *req.Order)
		if err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(ach)
}

// Delete handles DELETE /lists/:listId/achievements/:id.
func (h *AchievementHandler) Delete(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}
	achID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid achievement ID",
		})
	}

	if err := h.achievements.Delete(listID, achID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Achievement deleted successfully"})
}

// BulkReplace handles PUT /lists/:listId/achievements.
func (h *AchievementHandler) BulkReplace(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	var req dto.BulkReplaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Achievements == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Achievements must be an array",
		})
	}

	achs, err := h.achievements.BulkReplace(listID, req.Achievements)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(achs)
}

// Reorder handles PATCH /lists/:listId/achievements/reorder.
func (h *AchievementHandler) Reorder(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}

	var req dto.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.OrderedIDs == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "orderedIds must be an array",
		})
	}

	achs, err := h.achievements.ReorderAll(listID, req.OrderedIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(achs)
}

// UploadImage handles POST /lists/:listId/achievements/:id/uploadImage with a
// multipart "image" file, stores the blob and saves the returned URL.
func (h *AchievementHandler) UploadImage(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid list ID",
		})
	}
	achID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid achievement ID",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No file uploaded",
		})
	}
	if file.Size > maxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Image size must be less than 5MB",
		})
	}
	if !allowedImageTypes[file.Header.Get("Content-Type")] {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid image format. Only JPEG, PNG, GIF and WebP are allowed",
		})
	}

	src, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to open upload: "+err.Error())
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	name := fmt.Sprintf("%s_%d%s", achID, time.Now().UnixMilli(), ext)

	imageURL, err := h.images.Save(name, src)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store image: "+err.Error())
	}

	if _, err := h.achievements.SetImageURL(listID, achID, imageURL); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.UploadImageResponse{
		Message:  "Image uploaded successfully!",
		ImageURL: imageURL,
	})
}
