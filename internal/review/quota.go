package review

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

// quotaWindow is the trailing period reviews are counted against.
const quotaWindow = 24 * time.Hour

// DailyProgress reports consumption against the deck-scaled daily limits.
type DailyProgress struct {
	NewCardsSeen  int `json:"newCardsSeen"`
	ReviewsSeen   int `json:"reviewsSeen"`
	NewCardsLimit int `json:"newCardsLimit"`
	ReviewsLimit  int `json:"reviewsLimit"`
}

// Quota is what a user may still review in one deck right now. The two
// buckets are independent: exhausting one never blocks the other.
type Quota struct {
	NewRemaining    int
	ReviewRemaining int
	Progress        DailyProgress
}

// Remaining computes the user's remaining quota for a deck at asOf. The
// read is deliberately not isolated from concurrent submissions: two
// racing reviews may each see quota available, overshooting the limit by
// a small bounded amount.
func (s *Service) Remaining(ctx context.Context, userID uuid.UUID, deck *domain.Deck, asOf time.Time) (Quota, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return Quota{}, err
	}

	newLimit := scaleLimit(settings.NewCardsPerDay, deck.DailyScaler)
	reviewLimit := scaleLimit(settings.MaxReviewsPerDay, deck.DailyScaler)

	counts, err := s.store.CountReviewsSince(ctx, userID, deck.ID, asOf.Add(-quotaWindow))
	if err != nil {
		return Quota{}, err
	}

	return Quota{
		NewRemaining:    remaining(newLimit, counts.NewSeen),
		ReviewRemaining: remaining(reviewLimit, counts.ReviewSeen),
		Progress: DailyProgress{
			NewCardsSeen:  counts.NewSeen,
			ReviewsSeen:   counts.ReviewSeen,
			NewCardsLimit: newLimit,
			ReviewsLimit:  reviewLimit,
		},
	}, nil
}

// scaleLimit applies the deck's daily scaler and floors at zero.
func scaleLimit(limit int, scaler float64) int {
	scaled := int(math.Floor(float64(limit) * scaler))
	if scaled < 0 {
		return 0
	}
	return scaled
}

func remaining(limit, consumed int) int {
	if r := limit - consumed; r > 0 {
		return r
	}
	return 0
}
