package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmolenda/achievehub/internal/models"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

// CreateOrFetch returns the player for (appID, playerID), creating the row on
// first reference.
func (s *PlayerService) CreateOrFetch(appID uuid.UUID, playerID string) (*models.Player, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: playerId is required", ErrValidation)
	}

	var player models.Player
	err := s.db.Preload("Progress").
		Where("app_id = ? AND player_id = ?", appID, playerID).
		First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	player = models.Player{
		ID:       uuid.New(),
		AppID:    appID,
		PlayerID: playerID,
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &player, nil
}

func (s *PlayerService) ListByApp(appID uuid.UUID) ([]models.Player, error) {
	var players []models.Player
	err := s.db.Preload("Progress").Scopes(scope.ForApp(appID)).Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	return players, nil
}

func (s *PlayerService) Get(appID uuid.UUID, playerID string) (*models.Player, error) {
	var player models.Player
	err := s.db.Preload("Progress").
		Where("app_id = ? AND player_id = ?", appID, playerID).
		First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}

func (s *PlayerService) Delete(appID uuid.UUID, playerID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		err := tx.Where("app_id = ? AND player_id = ?", appID, playerID).First(&player).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to load player: %w", err)
		}
		if err := tx.Where("player_ref = ?", player.ID).Delete(&models.PlayerProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
		return tx.Delete(&player).Error
	})
}

// UpdateProgress increments a player's progress by a delta, creating the
// progress row on first touch. Progress accumulates; when it reaches the
// achievement's goal the unlock timestamp is stamped once.
func (s *PlayerService) UpdateProgress(appID uuid.UUID, playerID string, achievementID uuid.UUID, delta int) (*models.Player, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		err := tx.Where("app_id = ? AND player_id = ?", appID, playerID).First(&player).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to load player: %w", err)
		}

		var ach models.Achievement
		if err := tx.First(&ach, "id = ?", achievementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAchievementNotFound
			}
			return fmt.Errorf("failed to load achievement: %w", err)
		}

		var progress models.PlayerProgress
		err = tx.Where("player_ref = ? AND achievement_id = ?", player.ID, achievementID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.PlayerProgress{
				ID:            uuid.New(),
				PlayerRef:     player.ID,
				AchievementID: achievementID,
			}
		} else if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		progress.Progress += delta
		if progress.DateUnlocked == nil && progress.Progress >= ach.ProgressGoal {
			now := time.Now().UTC()
			progress.DateUnlocked = &now
		}

		return tx.Save(&progress).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(appID, playerID)
}
