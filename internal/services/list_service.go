package services

import (
	"errors"
	"fmt"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListService struct {
	db *gorm.DB
}

func NewListService(db *gorm.DB) *ListService {
	return &ListService{db: db}
}

func (s *ListService) Create(req *dto.CreateListRequest) (*models.AchievementList, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var app models.App
	if err := s.db.First(&app, "id = ?", req.AppID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to load app: %w", err)
	}

	list := models.AchievementList{
		ID:          uuid.New(),
		AppID:       req.AppID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.db.Create(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return &list, nil
}

func (s *ListService) ListByApp(appID uuid.UUID) ([]models.AchievementList, error) {
	var lists []models.AchievementList
	if err := s.db.Scopes(scope.ForApp(appID)).Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch lists: %w", err)
	}
	return lists, nil
}

func (s *ListService) Get(listID uuid.UUID) (*models.AchievementList, []models.Achievement, error) {
	var list models.AchievementList
	if err := s.db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrListNotFound
		}
		return nil, nil, fmt.Errorf("failed to load list: %w", err)
	}

	var achs []models.Achievement
	err := s.db.Scopes(scope.ForList(listID)).Order("sort_order ASC").Find(&achs).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	return &list, achs, nil
}

func (s *ListService) Update(listID uuid.UUID, req *dto.UpdateListRequest) (*models.AchievementList, error) {
	var list models.AchievementList
	if err := s.db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		list.Title = *req.Title
	}
	if req.Description != nil {
		list.Description = *req.Description
	}

	if err := s.db.Save(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return &list, nil
}

// Delete removes the list together with its achievements, their player
// progress rows and the API keys scoped to it.
func (s *ListService) Delete(listID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var list models.AchievementList
		if err := tx.First(&list, "id = ?", listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListNotFound
			}
			return fmt.Errorf("failed to load list: %w", err)
		}

		var achIDs []uuid.UUID
		if err := tx.Model(&models.Achievement{}).Scopes(scope.ForList(listID)).Pluck("id", &achIDs).Error; err != nil {
			return fmt.Errorf("failed to collect achievements: %w", err)
		}
		if len(achIDs) > 0 {
			if err := tx.Where("achievement_id IN ?", achIDs).Delete(&models.PlayerProgress{}).Error; err != nil {
				return fmt.Errorf("failed to delete player progress: %w", err)
			}
		}
		if err := tx.Scopes(scope.ForList(listID)).Delete(&models.Achievement{}).Error; err != nil {
			return fmt.Errorf("failed to delete achievements: %w", err)
		}
		if err := tx.Scopes(scope.ForList(listID)).Delete(&models.ApiKey{}).Error; err != nil {
			return fmt.Errorf("failed to delete api keys: %w", err)
		}
		return tx.Delete(&list).Error
	})
}

// PlayerView merges a list's achievements with one player's progress. An
// unknown player yields zero progress rather than an error so fresh players
// can render the full list.
func (s *ListService) PlayerView(listID uuid.UUID, playerID string) (*dto.PlayerListResponse, error) {
	var list models.AchievementList
	if err := s.db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	var achs []models.Achievement
	if err := s.db.Scopes(scope.ForList(listID)).Order("sort_order ASC").Find(&achs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}

	progressByAch := make(map[uuid.UUID]models.PlayerProgress)
	var player models.Player
	err := s.db.Preload("Progress").
		Where("app_id = ? AND player_id = ?", list.AppID, playerID).
		First(&player).Error
	if err == nil {
		for _, p := range player.Progress {
			progressByAch[p.AchievementID] = p
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	resp := &dto.PlayerListResponse{
		ID:           list.ID,
		Title:        list.Title,
		Achievements: make([]dto.PlayerAchievement, 0, len(achs)),
	}
	for _, a := range achs {
		pa := dto.PlayerAchievement{
			ID:           a.ID,
			Title:        a.Title,
			Description:  a.Description,
			Type:         a.Type,
			ProgressGoal: a.ProgressGoal,
			IsHidden:     a.IsHidden,
			ImageURL:     a.ImageURL,
			Order:        a.SortOrder,
		}
		if p, ok := progressByAch[a.ID]; ok {
			pa.CurrentProgress = p.Progress
			pa.DateUnlocked = p.DateUnlocked
		}
		resp.Achievements = append(resp.Achievements, pa)
	}
	return resp, nil
}
