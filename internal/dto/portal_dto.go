package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAppRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateAppRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type CreateListRequest struct {
	AppID       uuid.UUID `json:"appId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

type UpdateListRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type CreateApiKeyRequest struct {
	ExpDate *time.Time `json:"expDate"`
}

// KeyScopeResponse resolves an API key to its authorization scope.
type KeyScopeResponse struct {
	ListID uuid.UUID `json:"listId"`
	AppID  uuid.UUID `json:"appId"`
}
