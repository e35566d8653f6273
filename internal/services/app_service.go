package services

import (
	"errors"
	"fmt"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppService struct {
	db *gorm.DB
}

func NewAppService(db *gorm.DB) *AppService {
	return &AppService{db: db}
}

func (s *AppService) Create(ownerID uuid.UUID, req *dto.CreateAppRequest) (*models.App, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	app := models.App{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return &app, nil
}

func (s *AppService) ListByOwner(ownerID uuid.UUID) ([]models.App, error) {
	var apps []models.App
	if err := s.db.Where("owner_id = ?", ownerID).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch apps: %w", err)
	}
	return apps, nil
}

func (s *AppService) Get(appID uuid.UUID) (*models.App, error) {
	var app models.App
	if err := s.db.First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to load app: %w", err)
	}
	return &app, nil
}

func (s *AppService) Update(appID uuid.UUID, req *dto.UpdateAppRequest) (*models.App, error) {
	app, err := s.Get(appID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		app.Title = *req.Title
	}
	if req.Description != nil {
		app.Description = *req.Description
	}

	if err := s.db.Save(app).Error; err != nil {
		return nil, fmt.Errorf("failed to update app: %w", err)
	}
	return app, nil
}

func (s *AppService) Delete(appID uuid.UUID) error {
	result := s.db.Where("id = ?", appID).Delete(&models.App{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete app: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAppNotFound
	}
	return nil
}
