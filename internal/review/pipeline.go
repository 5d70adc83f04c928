package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/fsrs"
)

// SubmitResult is the outcome of a review submission. LimitReached is a
// normal result, not a failure: nothing was persisted and the caller is
// told how far through the day they are.
type SubmitResult struct {
	Card         *domain.Card  `json:"card,omitempty"`
	LimitReached bool          `json:"dailyLimitReached,omitempty"`
	Progress     DailyProgress `json:"dailyProgress"`
}

// SubmitReview runs a review through fetch, validation, quota check,
// memory update and the paired card+log write. Validation and ownership
// failures happen before any state mutation; the final write pair is
// atomic.
func (s *Service) SubmitReview(ctx context.Context, userID, cardID uuid.UUID, rating fsrs.Rating, reviewedAt *time.Time) (SubmitResult, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return SubmitResult{}, err
	}
	if card.UserID != userID {
		return SubmitResult{}, domain.ErrForbidden
	}

	if !rating.IsValid() {
		return SubmitResult{}, fmt.Errorf("%w: %d", fsrs.ErrInvalidRating, int(rating))
	}

	deck, err := s.store.GetDeckByID(ctx, userID, card.DeckID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.now().UTC()
	if reviewedAt != nil {
		now = reviewedAt.UTC()
	}

	quota, err := s.Remaining(ctx, userID, deck, now)
	if err != nil {
		return SubmitResult{}, err
	}
	if exhausted(quota, card.State) {
		return SubmitResult{LimitReached: true, Progress: quota.Progress}, nil
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	engine, err := fsrs.NewEngine(settings.Params)
	if err != nil {
		return SubmitResult{}, err
	}

	next, err := engine.Next(card.Memory(), rating, now)
	if err != nil {
		return SubmitResult{}, err
	}

	// Snapshot the card before applying the update; the log row is the
	// pre-update system of record.
	log := domain.NewReviewLog(card, rating, next.ElapsedDays, now)
	card.ApplyMemory(next)
	card.UpdatedAt = now

	if err := s.store.SaveReview(ctx, card, log); err != nil {
		return SubmitResult{}, err
	}

	quota.Progress = consume(quota.Progress, log.State)
	return SubmitResult{Card: card, Progress: quota.Progress}, nil
}

// exhausted reports whether the bucket this review would consume is empty.
func exhausted(q Quota, state fsrs.State) bool {
	if state == fsrs.New {
		return q.NewRemaining == 0
	}
	return q.ReviewRemaining == 0
}

// consume advances the progress counters for the bucket the review used.
func consume(p DailyProgress, state fsrs.State) DailyProgress {
	if state == fsrs.New {
		p.NewCardsSeen++
	} else {
		p.ReviewsSeen++
	}
	return p
}
