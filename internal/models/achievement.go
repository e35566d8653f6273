package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement types. Progress achievements accumulate toward ProgressGoal;
// milestone achievements are boolean unlocks (goal fixed at 1).
const (
	AchievementTypeProgress  = "progress"
	AchievementTypeMilestone = "milestone"
)

// Achievement is one entry of an achievement list. SortOrder is 1-based and
// dense within a list: after every mutating operation the orders of the list's
// achievements are exactly {1..N}.
type Achievement struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListID       uuid.UUID `gorm:"type:uuid;not null;index" json:"listId"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Type         string    `gorm:"size:20;not null" json:"type"`
	ProgressGoal int       `gorm:"default:1" json:"progressGoal"`
	IsHidden     bool      `gorm:"default:false" json:"isHidden"`
	ImageURL     string    `gorm:"type:text" json:"imageUrl"`
	SortOrder    int       `gorm:"column:sort_order;not null;index" json:"order"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ValidType reports whether t is a known achievement type.
func ValidType(t string) bool {
	return t == AchievementTypeProgress || t == AchievementTypeMilestone
}
