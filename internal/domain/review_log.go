package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/fsrs"
)

// ReviewLog is one immutable review event. The memory fields snapshot the
// card as it was immediately before the update that produced this log;
// ElapsedDays is the elapsed time observed at this review and
// LastElapsedDays is the card's previous elapsed value. Rows are append
// only: the log is the system of record for quota counting and history.
type ReviewLog struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	CardID          uuid.UUID   `db:"card_id" json:"cardId"`
	UserID          uuid.UUID   `db:"user_id" json:"userId"`
	Rating          fsrs.Rating `db:"rating" json:"rating"`
	State           fsrs.State  `db:"state" json:"state"`
	Due             *time.Time  `db:"due" json:"due"`
	Stability       float64     `db:"stability" json:"stability"`
	Difficulty      float64     `db:"difficulty" json:"difficulty"`
	ElapsedDays     float64     `db:"elapsed_days" json:"elapsedDays"`
	LastElapsedDays float64     `db:"last_elapsed_days" json:"lastElapsedDays"`
	ScheduledDays   float64     `db:"scheduled_days" json:"scheduledDays"`
	Review          time.Time   `db:"review" json:"review"`
}

// NewReviewLog snapshots a card before the memory update that the given
// rating is about to produce.
func NewReviewLog(card *Card, rating fsrs.Rating, elapsedDays float64, reviewedAt time.Time) *ReviewLog {
	return &ReviewLog{
		ID:              uuid.New(),
		CardID:          card.ID,
		UserID:          card.UserID,
		Rating:          rating,
		State:           card.State,
		Due:             card.Due,
		Stability:       card.Stability,
		Difficulty:      card.Difficulty,
		ElapsedDays:     elapsedDays,
		LastElapsedDays: card.ElapsedDays,
		ScheduledDays:   card.ScheduledDays,
		Review:          reviewedAt,
	}
}
