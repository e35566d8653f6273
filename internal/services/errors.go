package services

import "errors"

// Shared error taxonomy. Validation and not-found failures are sentinel
// errors so handlers can map them to 400/404 with errors.Is; everything else
// surfaces as a 500.
var (
	ErrValidation          = errors.New("validation failed")
	ErrAppNotFound         = errors.New("app not found")
	ErrListNotFound        = errors.New("achievement list not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrKeyNotFound         = errors.New("api key not found")
	ErrKeyExpired          = errors.New("api key expired")
)
