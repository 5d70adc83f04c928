package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

// DeckStats annotates a deck listing. RemainingReviews folds card
// availability together with the quota that is still open.
type DeckStats struct {
	NewCards         int `json:"newCards"`
	DueCards         int `json:"dueCards"`
	TotalCards       int `json:"totalCards"`
	RemainingReviews int `json:"remainingReviews"`
}

// DeckWithStats is one deck plus its aggregate numbers.
type DeckWithStats struct {
	Deck  domain.Deck `json:"deck"`
	Stats DeckStats   `json:"stats"`
}

// ListDecksWithStats returns all of a user's decks annotated with counts,
// using the batch aggregation path: the query cost does not grow with the
// number of decks.
func (s *Service) ListDecksWithStats(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]DeckWithStats, error) {
	decks, err := s.store.ListDecks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return []DeckWithStats{}, nil
	}

	deckIDs := make([]uuid.UUID, len(decks))
	for i, d := range decks {
		deckIDs[i] = d.ID
	}

	counts, err := s.store.BatchDeckStats(ctx, userID, deckIDs, asOf)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]DeckWithStats, len(decks))
	for i, deck := range decks {
		c := counts[deck.ID]
		newLimit := scaleLimit(settings.NewCardsPerDay, deck.DailyScaler)
		reviewLimit := scaleLimit(settings.MaxReviewsPerDay, deck.DailyScaler)
		out[i] = DeckWithStats{
			Deck: deck,
			Stats: DeckStats{
				NewCards:   c.New,
				DueCards:   c.Due,
				TotalCards: c.Total,
				RemainingReviews: min(c.Due, remaining(reviewLimit, c.ReviewSeen24h)) +
					min(c.New, remaining(newLimit, c.NewSeen24h)),
			},
		}
	}
	return out, nil
}
