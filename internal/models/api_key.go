package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiKey is the shared-secret credential that scopes every mutating
// achievement call to one (list, app) pair.
type ApiKey struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"size:64;not null;uniqueIndex" json:"key"`
	ListID    uuid.UUID `gorm:"type:uuid;not null;index" json:"listId"`
	AppID     uuid.UUID `gorm:"type:uuid;not null;index" json:"appId"`
	ExpDate   time.Time `gorm:"not null" json:"expDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func (k *ApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the key is past its expiry date.
func (k *ApiKey) Expired(now time.Time) bool {
	return now.After(k.ExpDate)
}
