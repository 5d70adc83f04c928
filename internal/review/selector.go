package review

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/fsrs"
)

// Outcome classifies a candidate selection. EmptyDeck and AllCaughtUp are
// successful, informative results, not errors.
type Outcome string

const (
	OutcomeReady       Outcome = "ready"
	OutcomeEmptyDeck   Outcome = "emptyDeck"
	OutcomeAllCaughtUp Outcome = "allCaughtUp"
)

// ReviewMetrics are the projected due dates for each possible rating,
// computed speculatively without persisting. They always satisfy
// again ≤ hard ≤ good ≤ easy.
type ReviewMetrics struct {
	Again time.Time `json:"again"`
	Hard  time.Time `json:"hard"`
	Good  time.Time `json:"good"`
	Easy  time.Time `json:"easy"`
}

// Candidate is a reviewable card with its what-if projections.
type Candidate struct {
	Card    domain.Card   `json:"card"`
	Metrics ReviewMetrics `json:"reviewMetrics"`
}

// Selection is the result of asking for review candidates.
type Selection struct {
	Outcome    Outcome       `json:"outcome"`
	Cards      []Candidate   `json:"cards,omitempty"`
	Progress   DailyProgress `json:"dailyProgress"`
	TotalCards int           `json:"totalCards"`
}

// singlePickWindow bounds how many eligible cards are fetched per bucket
// when one card is requested and the winner is drawn at random.
const singlePickWindow = 16

// SelectCandidates returns up to count reviewable cards for a deck,
// honoring due dates and both quota buckets.
func (s *Service) SelectCandidates(ctx context.Context, userID uuid.UUID, deck *domain.Deck, count int, asOf time.Time) (Selection, error) {
	total, err := s.store.CountDeckCards(ctx, deck.ID)
	if err != nil {
		return Selection{}, err
	}

	quota, err := s.Remaining(ctx, userID, deck, asOf)
	if err != nil {
		return Selection{}, err
	}

	if total == 0 {
		return Selection{Outcome: OutcomeEmptyDeck, Progress: quota.Progress}, nil
	}

	if count < 1 {
		count = 1
	}

	newTake := min(count, quota.NewRemaining)
	dueTake := min(count, quota.ReviewRemaining)
	if count == 1 {
		// Widen the fetch so the random draw has real ties to pick from.
		newTake = min(singlePickWindow, quota.NewRemaining)
		dueTake = min(singlePickWindow, quota.ReviewRemaining)
	}

	var newCards, dueCards []domain.Card
	if newTake > 0 {
		if newCards, err = s.store.ListNewCards(ctx, deck.ID, userID, newTake); err != nil {
			return Selection{}, err
		}
	}
	if dueTake > 0 {
		if dueCards, err = s.store.ListDueCards(ctx, deck.ID, userID, asOf, dueTake); err != nil {
			return Selection{}, err
		}
	}

	if len(newCards) == 0 && len(dueCards) == 0 {
		return Selection{Outcome: OutcomeAllCaughtUp, Progress: quota.Progress, TotalCards: total}, nil
	}

	var picked []domain.Card
	if count == 1 {
		pool := append(append([]domain.Card{}, dueCards...), newCards...)
		picked = []domain.Card{pool[rand.Intn(len(pool))]}
	} else {
		picked = interleave(dueCards, newCards, count)
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return Selection{}, err
	}
	engine, err := fsrs.NewEngine(settings.Params)
	if err != nil {
		return Selection{}, err
	}

	candidates := make([]Candidate, 0, len(picked))
	for _, card := range picked {
		proj, err := engine.Preview(card.Memory(), asOf)
		if err != nil {
			return Selection{}, err
		}
		candidates = append(candidates, Candidate{
			Card: card,
			Metrics: ReviewMetrics{
				Again: *proj.Again.Due,
				Hard:  *proj.Hard.Due,
				Good:  *proj.Good.Due,
				Easy:  *proj.Easy.Due,
			},
		})
	}

	return Selection{
		Outcome:    OutcomeReady,
		Cards:      candidates,
		Progress:   quota.Progress,
		TotalCards: total,
	}, nil
}

// interleave alternates due and unseen cards (each already in their own
// order) until count cards are drawn or both groups run dry. Each group
// is already capped at its own quota, so both limits hold simultaneously.
func interleave(due, unseen []domain.Card, count int) []domain.Card {
	out := make([]domain.Card, 0, min(count, len(due)+len(unseen)))
	i, j := 0, 0
	for len(out) < count && (i < len(due) || j < len(unseen)) {
		if i < len(due) {
			out = append(out, due[i])
			i++
		}
		if len(out) < count && j < len(unseen) {
			out = append(out, unseen[j])
			j++
		}
	}
	return out
}
