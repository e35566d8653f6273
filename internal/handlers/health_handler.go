package handlers

import (
	"time"

	"github.com/dmolenda/achievehub/internal/database"
	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	var apps, lists int64
	h.db.Model(&models.App{}).Count(&apps)
	h.db.Model(&models.AchievementList{}).Count(&lists)

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Apps:      apps,
		Lists:     lists,
	})
}
