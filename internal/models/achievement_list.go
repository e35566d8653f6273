package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementList groups the achievements of one app. Membership is encoded
// by Achievement.ListID; the per-achievement sort_order column is the single
// authoritative ordering.
type AchievementList struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppID       uuid.UUID `gorm:"type:uuid;not null;index" json:"appId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (l *AchievementList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
