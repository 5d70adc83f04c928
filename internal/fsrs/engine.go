package fsrs

import (
	"fmt"
	"math"
	"time"
)

// Memory is the scheduling state of a card as seen by the memory model.
// It carries no card identity; the engine is a pure function over it.
type Memory struct {
	State         State
	Due           *time.Time // nil iff State == New
	Stability     float64
	Difficulty    float64
	ElapsedDays   float64
	ScheduledDays float64
	Reps          int
	Lapses        int
	LastReview    *time.Time
}

// NewMemory returns the memory state of a card that has never been reviewed.
func NewMemory() Memory {
	return Memory{State: New}
}

// Projection holds the speculative next state for each possible rating.
type Projection struct {
	Again Memory
	Hard  Memory
	Good  Memory
	Easy  Memory
}

// Short-term step intervals used while a card is in Learning/Relearning.
const (
	stepAgain   = 1 * time.Minute
	stepHard    = 5*time.Minute + 30*time.Second
	stepGood    = 10 * time.Minute
	stepRelearn = 10 * time.Minute
)

// Engine computes next memory states from reviews. It holds only
// parameters and precomputed constants; Next and Preview have no side
// effects and are safe to call speculatively.
type Engine struct {
	params Params
	algo   algo
}

// NewEngine validates the parameters and builds an engine from them.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: p, algo: newAlgo(p.Weights)}, nil
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Next returns the memory state after reviewing prior with the given
// rating at now. The input is not mutated.
func (e *Engine) Next(prior Memory, rating Rating, now time.Time) (Memory, error) {
	return e.next(prior, rating, now, e.params.EnableFuzz)
}

// Preview returns the projected next state for all four ratings without
// persisting anything. Fuzz is never applied so the projected due dates
// are stable and ordered: again ≤ hard ≤ good ≤ easy.
func (e *Engine) Preview(prior Memory, now time.Time) (Projection, error) {
	var proj Projection
	targets := map[Rating]*Memory{Again: &proj.Again, Hard: &proj.Hard, Good: &proj.Good, Easy: &proj.Easy}
	for _, r := range Ratings() {
		next, err := e.next(prior, r, now, false)
		if err != nil {
			return Projection{}, err
		}
		*targets[r] = next
	}
	return proj, nil
}

// Retrievability returns the predicted recall probability at now.
// It is 0 for a card that has never been reviewed.
func (e *Engine) Retrievability(m Memory, now time.Time) float64 {
	if m.LastReview == nil || m.Stability <= 0 {
		return 0
	}
	elapsed := now.Sub(*m.LastReview).Hours() / 24.0
	if elapsed < 0 {
		elapsed = 0
	}
	return e.algo.retrievability(elapsed, m.Stability)
}

func (e *Engine) next(prior Memory, rating Rating, now time.Time, withFuzz bool) (Memory, error) {
	if !rating.IsValid() {
		return Memory{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	if err := validatePrior(prior); err != nil {
		return Memory{}, err
	}

	n := prior
	elapsed := 0.0
	if prior.LastReview != nil {
		elapsed = now.Sub(*prior.LastReview).Hours() / 24.0
		if elapsed < 0 {
			elapsed = 0
		}
	}

	var interval time.Duration
	switch prior.State {
	case New:
		n.Stability = e.algo.initStability(rating)
		n.Difficulty = e.algo.initDifficulty(rating, true)
		n.Reps = 1
		n.Lapses = 0
		if e.params.EnableShortTerm && rating != Easy {
			n.State = Learning
			interval = firstStep(rating)
		} else {
			n.State = Review
			interval = e.dayInterval(&n, prior, now, withFuzz)
		}

	case Learning, Relearning:
		e.reviseMemory(&n, rating, elapsed)
		n.Reps++
		switch rating {
		case Again:
			interval = stepAgain
		case Hard:
			interval = stepHard
		default: // Good, Easy
			if !e.params.EnableShortTerm || e.graduated(n.Stability) {
				n.State = Review
				interval = e.dayInterval(&n, prior, now, withFuzz)
			} else {
				interval = stepGood
			}
		}

	case Review:
		e.reviseMemory(&n, rating, elapsed)
		n.Reps++
		if rating == Again {
			n.Lapses++
			n.State = Relearning
			if e.params.EnableShortTerm {
				interval = stepRelearn
			} else {
				interval = e.dayInterval(&n, prior, now, withFuzz)
			}
		} else {
			interval = e.dayInterval(&n, prior, now, withFuzz)
		}
	}

	if interval < 24*time.Hour {
		n.ScheduledDays = 0
	}
	due := now.Add(interval)
	n.Due = &due
	n.ElapsedDays = elapsed
	n.LastReview = &now
	return n, nil
}

// reviseMemory updates stability and difficulty in place. Same-day
// reviews use the short-term stability formula.
func (e *Engine) reviseMemory(n *Memory, rating Rating, elapsed float64) {
	if elapsed < 1 {
		n.Stability = e.algo.shortTermStability(n.Stability, rating)
	} else {
		r := e.algo.retrievability(elapsed, n.Stability)
		n.Stability = e.algo.nextStability(n.Difficulty, n.Stability, r, rating)
	}
	n.Difficulty = e.algo.nextDifficulty(n.Difficulty, rating)
}

// dayInterval computes the day-granularity interval for n and records it
// as ScheduledDays. Fuzz never produces an interval under one day.
func (e *Engine) dayInterval(n *Memory, prior Memory, now time.Time, withFuzz bool) time.Duration {
	days := e.algo.nextInterval(n.Stability, e.params.RequestRetention, e.params.MaximumInterval)
	if withFuzz {
		days = applyFuzz(days, e.params.MaximumInterval, fuzzRNG(prior, now))
	}
	n.ScheduledDays = float64(days)
	return time.Duration(days) * 24 * time.Hour
}

// graduated reports whether stability is high enough that the interval
// implied by the requested retention reaches a full day.
func (e *Engine) graduated(stability float64) bool {
	raw := stability / e.algo.factor * (math.Pow(e.params.RequestRetention, 1.0/e.algo.decay) - 1)
	return raw >= 0.5
}

func validatePrior(m Memory) error {
	if !m.State.IsValid() {
		return fmt.Errorf("%w: state %d", ErrInvalidPriorState, int(m.State))
	}
	if m.Stability < 0 {
		return fmt.Errorf("%w: negative stability %f", ErrInvalidPriorState, m.Stability)
	}
	if m.Difficulty < 0 {
		return fmt.Errorf("%w: negative difficulty %f", ErrInvalidPriorState, m.Difficulty)
	}
	if m.ElapsedDays < 0 || m.ScheduledDays < 0 {
		return fmt.Errorf("%w: negative elapsed/scheduled days", ErrInvalidPriorState)
	}
	if m.Reps < 0 || m.Lapses < 0 {
		return fmt.Errorf("%w: negative reps/lapses", ErrInvalidPriorState)
	}
	if (m.State == New) != (m.Due == nil) {
		return fmt.Errorf("%w: state %s with due=%v", ErrInvalidPriorState, m.State, m.Due)
	}
	if m.State != New && m.Stability == 0 {
		return fmt.Errorf("%w: reviewed card with zero stability", ErrInvalidPriorState)
	}
	return nil
}

// firstStep is the learning step entered on the first review of a new card.
func firstStep(rating Rating) time.Duration {
	switch rating {
	case Again:
		return stepAgain
	case Hard:
		return stepHard
	default:
		return stepGood
	}
}
