package dto

import "github.com/google/uuid"

type CreateAchievementRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	ProgressGoal int    `json:"progressGoal"`
	IsHidden     bool   `json:"isHidden"`
	ImageURL     string `json:"imageUrl"`
}

// UpdateAchievementRequest carries a partial update. Nil fields are left
// untouched; a non-nil Order triggers the range-shift reorder.
type UpdateAchievementRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Type         *string `json:"type"`
	ProgressGoal *int    `json:"progressGoal"`
	IsHidden     *bool   `json:"isHidden"`
	ImageURL     *string `json:"imageUrl"`
	Order        *int    `json:"order"`
}

// BulkEntry is one element of a bulk replace. Entries without an ID are
// created; entries with an ID are updated in place.
type BulkEntry struct {
	ID           *uuid.UUID `json:"_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	ProgressGoal int        `json:"progressGoal"`
	IsHidden     bool       `json:"isHidden"`
	ImageURL     string     `json:"imageUrl"`
	Order        *int       `json:"order"`
}

type BulkReplaceRequest struct {
	Achievements []BulkEntry `json:"achievements"`
}

type ReorderRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds"`
}

type UploadImageResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}
