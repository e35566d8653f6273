package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player is created lazily the first time a caller references a
// (appId, playerId) pair. PlayerID is caller-supplied and unique per app.
type Player struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AppID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_players_app_player" json:"appId"`
	PlayerID  string           `gorm:"size:255;not null;uniqueIndex:idx_players_app_player" json:"playerId"`
	Progress  []PlayerProgress `gorm:"foreignKey:PlayerRef" json:"achievementsProgress"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PlayerProgress tracks one player's progress against one achievement.
// At most one row exists per (player, achievement) pair.
type PlayerProgress struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	PlayerRef     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_player_ach" json:"-"`
	AchievementID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_player_ach;index" json:"achievementId"`
	Progress      int        `gorm:"default:0" json:"progress"`
	DateUnlocked  *time.Time `json:"dateUnlocked"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

func (p *PlayerProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
