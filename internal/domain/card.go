package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/fsrs"
)

// Card is a single front/back flashcard together with its memory state.
// Memory fields are only ever written through a review submission; content
// edits touch front/back alone.
type Card struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"userId"`
	DeckID        uuid.UUID  `db:"deck_id" json:"deckId"`
	Front         string     `db:"front" json:"front"`
	Back          string     `db:"back" json:"back"`
	ContentHash   string     `db:"content_hash" json:"-"`
	State         fsrs.State `db:"state" json:"state"`
	Due           *time.Time `db:"due" json:"due"` // nil iff State == New
	Stability     float64    `db:"stability" json:"stability"`
	Difficulty    float64    `db:"difficulty" json:"difficulty"`
	ElapsedDays   float64    `db:"elapsed_days" json:"elapsedDays"`
	ScheduledDays float64    `db:"scheduled_days" json:"scheduledDays"`
	Reps          int        `db:"reps" json:"reps"`
	Lapses        int        `db:"lapses" json:"lapses"`
	LastReview    *time.Time `db:"last_review" json:"lastReview"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Memory extracts the card's scheduling state for the memory model.
func (c *Card) Memory() fsrs.Memory {
	return fsrs.Memory{
		State:         c.State,
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   c.ElapsedDays,
		ScheduledDays: c.ScheduledDays,
		Reps:          c.Reps,
		Lapses:        c.Lapses,
		LastReview:    c.LastReview,
	}
}

// ApplyMemory writes an updated memory state back onto the card.
func (c *Card) ApplyMemory(m fsrs.Memory) {
	c.State = m.State
	c.Due = m.Due
	c.Stability = m.Stability
	c.Difficulty = m.Difficulty
	c.ElapsedDays = m.ElapsedDays
	c.ScheduledDays = m.ScheduledDays
	c.Reps = m.Reps
	c.Lapses = m.Lapses
	c.LastReview = m.LastReview
}
