package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type ProgressUpdateRequest struct {
	AchievementID uuid.UUID `json:"achievementId"`
	ProgressDelta int       `json:"progressDelta"`
}

// PlayerAchievement is one achievement merged with a player's progress, as
// returned by the per-player list view.
type PlayerAchievement struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Type            string     `json:"type"`
	ProgressGoal    int        `json:"progressGoal"`
	IsHidden        bool       `json:"isHidden"`
	ImageURL        string     `json:"imageUrl"`
	Order           int        `json:"order"`
	CurrentProgress int        `json:"currentProgress"`
	DateUnlocked    *time.Time `json:"dateUnlocked"`
}

type PlayerListResponse struct {
	ID           uuid.UUID           `json:"_id"`
	Title        string              `json:"title"`
	Achievements []PlayerAchievement `json:"achievements"`
}
