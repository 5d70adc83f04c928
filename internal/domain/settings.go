package domain

import (
	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/fsrs"
)

// UserSettings holds a user's daily limits and memory model parameters.
// It is read-only input to the scheduler; updates go through the settings
// store, which invalidates any cached copy.
type UserSettings struct {
	UserID           uuid.UUID   `json:"userId"`
	NewCardsPerDay   int         `json:"newCardsPerDay"`
	MaxReviewsPerDay int         `json:"maxReviewsPerDay"`
	Params           fsrs.Params `json:"params"`
}

// DefaultSettings is used for users who have never stored settings.
func DefaultSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:           userID,
		NewCardsPerDay:   20,
		MaxReviewsPerDay: 200,
		Params:           fsrs.DefaultParams(),
	}
}
