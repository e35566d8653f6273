package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// App is a developer-registered game or application that owns achievement
// lists and players.
type App struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID         `gorm:"type:uuid;index" json:"-"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Links       datatypes.JSONMap `json:"links,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
