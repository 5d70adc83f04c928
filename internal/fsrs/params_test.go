package fsrs

import (
	"errors"
	"testing"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams should validate: %v", err)
	}
}

func TestValidateRejectsRetention(t *testing.T) {
	for _, r := range []float64{0, 1, -0.1, 1.5} {
		p := DefaultParams()
		p.RequestRetention = r
		if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("retention %f: error = %v, want ErrInvalidParameters", r, err)
		}
	}
}

func TestValidateRejectsMaximumInterval(t *testing.T) {
	p := DefaultParams()
	p.MaximumInterval = 0
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("error = %v, want ErrInvalidParameters", err)
	}
}

func TestValidateRejectsWeightBounds(t *testing.T) {
	p := DefaultParams()
	p.Weights[0] = -1
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("below lower bound: error = %v, want ErrInvalidParameters", err)
	}

	p = DefaultParams()
	p.Weights[4] = 99
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("above upper bound: error = %v, want ErrInvalidParameters", err)
	}
}

func TestNewEngineRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.RequestRetention = 2
	if _, err := NewEngine(p); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("error = %v, want ErrInvalidParameters", err)
	}
}
