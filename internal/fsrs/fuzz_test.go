package fsrs

import (
	"testing"
	"time"
)

func TestFuzzDeterministicPerSeed(t *testing.T) {
	p := DefaultParams() // fuzz enabled
	e := mustEngine(t, p)
	m := matured(t, e)
	now := m.Due.Add(time.Hour)

	first, err := e.Next(m, Good, now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Next(m, Good, now)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !again.Due.Equal(*first.Due) {
			t.Fatalf("same inputs produced different fuzzed dues: %v vs %v", again.Due, first.Due)
		}
	}
}

func TestFuzzNeverBeforeTomorrow(t *testing.T) {
	e := mustEngine(t, DefaultParams())
	m := NewMemory()
	now := t0
	for i := 0; i < 20; i++ {
		next, err := e.Next(m, Good, now)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if next.State == Review && next.Due.Before(now.Add(24*time.Hour)) {
			t.Fatalf("step %d: fuzzed due %v earlier than tomorrow (%v)", i, next.Due, now)
		}
		m = next
		now = next.Due.Add(time.Hour)
	}
}

func TestApplyFuzzBounds(t *testing.T) {
	rng := fuzzRNG(Memory{Stability: 12.5, Reps: 3}, t0)
	for _, ivl := range []int{1, 2, 5, 13, 50, 365} {
		for i := 0; i < 50; i++ {
			got := applyFuzz(ivl, 36500, rng)
			if got < 1 {
				t.Fatalf("applyFuzz(%d) = %d, below one day", ivl, got)
			}
			if ivl < 3 && got != ivl {
				t.Fatalf("applyFuzz(%d) = %d, short intervals must pass through", ivl, got)
			}
		}
	}
}

func TestApplyFuzzRespectsMaxInterval(t *testing.T) {
	rng := fuzzRNG(Memory{Stability: 40}, t0)
	for i := 0; i < 100; i++ {
		if got := applyFuzz(40, 40, rng); got > 40 {
			t.Fatalf("applyFuzz exceeded maximum interval: %d", got)
		}
	}
}

func TestFuzzDelta(t *testing.T) {
	if d := fuzzDelta(2.0); d != 1.0 {
		t.Errorf("fuzzDelta(2.0) = %f, want 1.0", d)
	}
	if d7, d20 := fuzzDelta(7), fuzzDelta(20); d20 <= d7 {
		t.Errorf("fuzzDelta should grow with interval: %f then %f", d7, d20)
	}
}
