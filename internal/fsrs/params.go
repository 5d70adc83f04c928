package fsrs

import "fmt"

// Params configures the memory model for one user. The weight vector and
// derived constants follow FSRS v6; RequestRetention is the retention
// probability the scheduler solves for when picking the next interval.
type Params struct {
	RequestRetention float64     `json:"requestRetention"`
	MaximumInterval  int         `json:"maximumInterval"` // days
	Weights          [21]float64 `json:"weights"`
	EnableFuzz       bool        `json:"enableFuzz"`
	EnableShortTerm  bool        `json:"enableShortTerm"`
}

// DefaultWeights are the FSRS v6 default parameter values
// from py-fsrs / fsrs4anki Wiki FSRS-6.
var DefaultWeights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability S₀(G)
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty params
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability params
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability params
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy/short-term params
	0.1542, // w[20] decay exponent
}

// lowerBounds defines the minimum allowed value for each weight.
var lowerBounds = [21]float64{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0, 0.0, 0.0, 0.0,
	0.1,
}

// upperBounds defines the maximum allowed value for each weight.
var upperBounds = [21]float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0, 2.0, 2.0, 0.8,
	0.8,
}

// DefaultParams returns the parameter set used when a user has no stored settings.
func DefaultParams() Params {
	return Params{
		RequestRetention: 0.9,
		MaximumInterval:  36500,
		Weights:          DefaultWeights,
		EnableFuzz:       true,
		EnableShortTerm:  true,
	}
}

// Validate checks retention, interval cap and weight bounds.
func (p Params) Validate() error {
	if p.RequestRetention <= 0 || p.RequestRetention >= 1 {
		return fmt.Errorf("%w: request retention %f out of range (0, 1)", ErrInvalidParameters, p.RequestRetention)
	}
	if p.MaximumInterval < 1 {
		return fmt.Errorf("%w: maximum interval %d must be at least 1 day", ErrInvalidParameters, p.MaximumInterval)
	}
	for i := 0; i < len(p.Weights); i++ {
		if p.Weights[i] < lowerBounds[i] || p.Weights[i] > upperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidParameters, i, p.Weights[i], lowerBounds[i], upperBounds[i])
		}
	}
	return nil
}
