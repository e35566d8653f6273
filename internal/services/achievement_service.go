package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementService owns the canonical achievement sequence of each list.
// Invariant: after every operation the sort_order values of a list's
// achievements are exactly {1..N}, no duplicates, no gaps.
type AchievementService struct {
	db    *gorm.DB
	locks *listLocks
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db, locks: newListLocks()}
}

// ListOrdered returns all achievements of a list sorted by rank.
func (s *AchievementService) ListOrdered(listID uuid.UUID) ([]models.Achievement, error) {
	if err := s.requireList(s.db, listID); err != nil {
		return nil, err
	}
	var achs []models.Achievement
	err := s.db.Scopes(scope.ForList(listID)).
		Order("sort_order ASC").
		Find(&achs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	return achs, nil
}

// Create appends a new achievement at rank max+1. The next rank is computed
// inside the same locked scope as the write so concurrent creates and deletes
// cannot make it drift.
func (s *AchievementService) Create(listID uuid.UUID, req *dto.CreateAchievementRequest) (*models.Achievement, error) {
	if req.Title == "" || req.Type == "" {
		return nil, fmt.Errorf("%w: title and type are required", ErrValidation)
	}
	if !models.ValidType(req.Type) {
		return nil, fmt.Errorf("%w: unknown achievement type %q", ErrValidation, req.Type)
	}

	unlock := s.locks.Lock(listID)
	defer unlock()

	var ach models.Achievement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireList(tx, listID); err != nil {
			return err
		}

		maxOrder, err := s.maxOrder(tx, listID)
		if err != nil {
			return err
		}

		ach = models.Achievement{
			ID:           uuid.New(),
			ListID:       listID,
			Title:        req.Title,
			Description:  req.Description,
			Type:         req.Type,
			ProgressGoal: normalizeGoal(req.Type, req.ProgressGoal),
			IsHidden:     req.IsHidden,
			ImageURL:     req.ImageURL,
			SortOrder:    maxOrder + 1,
		}
		if err := tx.Create(&ach).Error; err != nil {
			return fmt.Errorf("failed to create achievement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ach, nil
}

// UpdateFields applies a partial non-order update. If the type actually
// changes value, every player's progress against this achievement is reset to
// (0, nil): threshold and boolean unlock semantics are not comparable.
func (s *AchievementService) UpdateFields(listID, achievementID uuid.UUID, req *dto.UpdateAchievementRequest) (*models.Achievement, error) {
	var ach models.Achievement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireMember(tx, listID, achievementID, &ach); err != nil {
			return err
		}

		originalType := ach.Type

		if req.Title != nil {
			if *req.Title == "" {
				return fmt.Errorf("%w: title must not be empty", ErrValidation)
			}
			ach.Title = *req.Title
		}
		if req.Description != nil {
			ach.Description = *req.Description
		}
		if req.Type != nil {
			if !models.ValidType(*req.Type) {
				return fmt.Errorf("%w: unknown achievement type %q", ErrValidation, *req.Type)
			}
			ach.Type = *req.Type
		}
		if req.ProgressGoal != nil {
			ach.ProgressGoal = *req.ProgressGoal
		}
		ach.ProgressGoal = normalizeGoal(ach.Type, ach.ProgressGoal)
		if req.IsHidden != nil {
			ach.IsHidden = *req.IsHidden
		}
		if req.ImageURL != nil {
			ach.ImageURL = *req.ImageURL
		}

		if err := tx.Save(&ach).Error; err != nil {
			return fmt.Errorf("failed to update achievement: %w", err)
		}

		if ach.Type != originalType {
			if err := resetProgressForAchievement(tx, achievementID); err != nil {
				return err
			}
			slog.Info("achievement type changed, player progress reset",
				"achievement_id", achievementID, "from", originalType, "to", ach.Type)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ach, nil
}

// UpdateOrder moves one achievement to a new rank, shifting the rows between
// the old and new position by one to keep the sequence dense. The shift
// touches every row in the range, so the whole operation runs under the
// list's lock inside one transaction.
func (s *AchievementService) UpdateOrder(listID, achievementID uuid.UUID, newOrder int) (*models.Achievement, error) {
	if newOrder < 1 {
		return nil, fmt.Errorf("%w: order must be a positive integer", ErrValidation)
	}

	unlock := s.locks.Lock(listID)
	defer unlock()

	var ach models.Achievement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireMember(tx, listID, achievementID, &ach); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Achievement{}).Scopes(scope.ForList(listID)).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count achievements: %w", err)
		}
		if newOrder > int(count) {
			return fmt.Errorf("%w: order %d out of range 1..%d", ErrValidation, newOrder, count)
		}

		current := ach.SortOrder
		if newOrder == current {
			return nil
		}

		if newOrder > current {
			// Moving down: rows in (current, newOrder] shift left.
			err := tx.Model(&models.Achievement{}).
				Where("list_id = ? AND sort_order > ? AND sort_order <= ?", listID, current, newOrder).
				UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
			if err != nil {
				return fmt.Errorf("failed to shift achievements: %w", err)
			}
		} else {
			// Moving up: rows in [newOrder, current) shift right.
			err := tx.Model(&models.Achievement{}).
				Where("list_id = ? AND sort_order >= ? AND sort_order < ?", listID, newOrder, current).
				UpdateColumn("sort_order", gorm.Expr("sort_order + 1")).Error
			if err != nil {
				return fmt.Errorf("failed to shift achievements: %w", err)
			}
		}

		ach.SortOrder = newOrder
		if err := tx.Model(&ach).UpdateColumn("sort_order", newOrder).Error; err != nil {
			return fmt.Errorf("failed to set achievement order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ach, nil
}

// Delete removes an achievement and eagerly closes the rank gap by
// decrementing every row that followed it.
func (s *AchievementService) Delete(listID, achievementID uuid.UUID) error {
	unlock := s.locks.Lock(listID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var ach models.Achievement
		if err := s.requireMember(tx, listID, achievementID, &ach); err != nil {
			return err
		}

		if err := tx.Delete(&ach).Error; err != nil {
			return fmt.Errorf("failed to delete achievement: %w", err)
		}

		err := tx.Model(&models.Achievement{}).
			Where("list_id = ? AND sort_order > ?", listID, ach.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
		if err != nil {
			return fmt.Errorf("failed to close order gap: %w", err)
		}

		if err := tx.Where("achievement_id = ?", achievementID).Delete(&models.PlayerProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete player progress: %w", err)
		}
		return nil
	})
}

// BulkReplace applies a full desired end-state: entries with an id update in
// place, entries without one are appended. Afterwards the collection is
// normalized, so duplicate, gapped or out-of-range ranks from the input
// cannot survive the call.
func (s *AchievementService) BulkReplace(listID uuid.UUID, entries []dto.BulkEntry) ([]models.Achievement, error) {
	for _, e := range entries {
		if e.Title == "" || e.Type == "" {
			return nil, fmt.Errorf("%w: title and type are required", ErrValidation)
		}
		if !models.ValidType(e.Type) {
			return nil, fmt.Errorf("%w: unknown achievement type %q", ErrValidation, e.Type)
		}
	}

	unlock := s.locks.Lock(listID)
	defer unlock()

	var result []models.Achievement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireList(tx, listID); err != nil {
			return err
		}

		maxOrder, err := s.maxOrder(tx, listID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.ID != nil {
				var ach models.Achievement
				if err := s.requireMember(tx, listID, *e.ID, &ach); err != nil {
					return err
				}
				originalType := ach.Type

				ach.Title = e.Title
				ach.Description = e.Description
				ach.Type = e.Type
				ach.ProgressGoal = normalizeGoal(e.Type, e.ProgressGoal)
				ach.IsHidden = e.IsHidden
				ach.ImageURL = e.ImageURL
				if e.Order != nil {
					ach.SortOrder = *e.Order
				}
				if err := tx.Save(&ach).Error; err != nil {
					return fmt.Errorf("failed to update achievement %s: %w", ach.ID, err)
				}
				if ach.Type != originalType {
					if err := resetProgressForAchievement(tx, ach.ID); err != nil {
						return err
					}
				}
			} else {
				maxOrder++
				ach := models.Achievement{
					ID:           uuid.New(),
					ListID:       listID,
					Title:        e.Title,
					Description:  e.Description,
					Type:         e.Type,
					ProgressGoal: normalizeGoal(e.Type, e.ProgressGoal),
					IsHidden:     e.IsHidden,
					ImageURL:     e.ImageURL,
					SortOrder:    maxOrder,
				}
				if err := tx.Create(&ach).Error; err != nil {
					return fmt.Errorf("failed to create achievement: %w", err)
				}
			}
		}

		if err := normalizeOrders(tx, listID); err != nil {
			return err
		}

		return tx.Scopes(scope.ForList(listID)).
			Order("sort_order ASC").
			Find(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReorderAll assigns rank index+1 for each id of a full permutation of the
// list. The permutation is validated in both directions before any row is
// written: a foreign or duplicate id, or a missing one, rejects the call
// untouched.
func (s *AchievementService) ReorderAll(listID uuid.UUID, orderedIDs []uuid.UUID) ([]models.Achievement, error) {
	unlock := s.locks.Lock(listID)
	defer unlock()

	var result []models.Achievement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireList(tx, listID); err != nil {
			return err
		}

		var current []models.Achievement
		if err := tx.Scopes(scope.ForList(listID)).Find(&current).Error; err != nil {
			return fmt.Errorf("failed to fetch achievements: %w", err)
		}

		members := make(map[uuid.UUID]int, len(current))
		for _, a := range current {
			members[a.ID] = a.SortOrder
		}

		seen := make(map[uuid.UUID]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if _, ok := members[id]; !ok {
				return fmt.Errorf("%w: achievement %s does not exist in this list", ErrValidation, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: achievement %s appears more than once", ErrValidation, id)
			}
			seen[id] = true
		}
		if len(orderedIDs) != len(current) {
			return fmt.Errorf("%w: orderedIds must include all achievements in the list", ErrValidation)
		}

		for i, id := range orderedIDs {
			if members[id] == i+1 {
				continue
			}
			err := tx.Model(&models.Achievement{}).
				Where("id = ?", id).
				UpdateColumn("sort_order", i+1).Error
			if err != nil {
				return fmt.Errorf("failed to reorder achievement %s: %w", id, err)
			}
		}

		return tx.Scopes(scope.ForList(listID)).
			Order("sort_order ASC").
			Find(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetImageURL stores the blob-store URL on an achievement after an upload.
func (s *AchievementService) SetImageURL(listID, achievementID uuid.UUID, imageURL string) (*models.Achievement, error) {
	var ach models.Achievement
	if err := s.requireMember(s.db, listID, achievementID, &ach); err != nil {
		return nil, err
	}
	if err := s.db.Model(&ach).Update("image_url", imageURL).Error; err != nil {
		return nil, fmt.Errorf("failed to store image url: %w", err)
	}
	return &ach, nil
}

// normalizeOrders resorts a list by current rank and reassigns 1..N,
// restoring the density invariant regardless of what the input left behind.
func normalizeOrders(tx *gorm.DB, listID uuid.UUID) error {
	var achs []models.Achievement
	err := tx.Scopes(scope.ForList(listID)).
		Order("sort_order ASC, created_at ASC").
		Find(&achs).Error
	if err != nil {
		return fmt.Errorf("failed to fetch achievements for normalize: %w", err)
	}

	for i, a := range achs {
		if a.SortOrder == i+1 {
			continue
		}
		err := tx.Model(&models.Achievement{}).
			Where("id = ?", a.ID).
			UpdateColumn("sort_order", i+1).Error
		if err != nil {
			return fmt.Errorf("failed to normalize order: %w", err)
		}
	}
	return nil
}

func resetProgressForAchievement(tx *gorm.DB, achievementID uuid.UUID) error {
	err := tx.Model(&models.PlayerProgress{}).
		Where("achievement_id = ?", achievementID).
		Updates(map[string]interface{}{"progress": 0, "date_unlocked": nil}).Error
	if err != nil {
		return fmt.Errorf("failed to reset player progress: %w", err)
	}
	return nil
}

func (s *AchievementService) requireList(tx *gorm.DB, listID uuid.UUID) error {
	var list models.AchievementList
	if err := tx.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to load list: %w", err)
	}
	return nil
}

func (s *AchievementService) requireMember(tx *gorm.DB, listID, achievementID uuid.UUID, out *models.Achievement) error {
	err := tx.Scopes(scope.ForList(listID)).First(out, "id = ?", achievementID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.requireList(tx, listID); err != nil {
				return err
			}
			return fmt.Errorf("achievement %s not found in this list: %w", achievementID, ErrAchievementNotFound)
		}
		return fmt.Errorf("failed to load achievement: %w", err)
	}
	return nil
}

func (s *AchievementService) maxOrder(tx *gorm.DB, listID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&models.Achievement{}).
		Scopes(scope.ForList(listID)).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute max order: %w", err)
	}
	return max, nil
}

// normalizeGoal keeps ProgressGoal meaningful: milestone achievements pin it
// to 1, progress achievements default to 1 when unset or non-positive.
func normalizeGoal(achType string, goal int) int {
	if achType == models.AchievementTypeMilestone || goal < 1 {
		return 1
	}
	return goal
}
