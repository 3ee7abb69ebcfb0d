// Package solver implements a Monte-Carlo solver for master equations with
// possibly negative time-dependent decay rates, following the influence
// martingale method of arXiv:2209.08958. Negative rates are shifted into an
// always-nonnegative biased jump process, and every trajectory carries a
// martingale weight that corrects ensemble averages back to the true
// dynamics.
package solver

import (
	"math"

	"github.com/quantum-menace/qtraj/internal/operator"
)

// RateFunc is a time-dependent decay rate. It may return negative values;
// that is the entire point of this solver.
type RateFunc func(t float64) float64

// ConstantRate returns a rate function that is g at all times.
func ConstantRate(g float64) RateFunc {
	return func(float64) float64 { return g }
}

// ZeroRate is the rate attached to the completeness operator: it never
// produces a real jump on its own.
func ZeroRate(float64) float64 { return 0 }

// OperatorRatePair couples one jump operator with its decay rate. The pair
// sequence is ordered and immutable after solver construction; the position
// of a pair is the channel index recorded in collapse events.
type OperatorRatePair struct {
	Op   *operator.Operator
	Rate RateFunc
}

// RateShift computes sigma(t) = 2*max(0, -min_i rate_i(t)) over the given
// pairs. Stateless and recomputed on demand. The result is nonnegative and
// large enough that rate_i(t)+sigma(t) >= 0 for every channel.
func RateShift(pairs []OperatorRatePair, t float64) float64 {
	minRate := math.Inf(1)
	for _, p := range pairs {
		if g := p.Rate(t); g < minRate {
			minRate = g
		}
	}
	if minRate >= 0 {
		return 0
	}
	return -2 * minRate
}
