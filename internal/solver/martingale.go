package solver

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/quantum-menace/qtraj/internal/mc"
)

var (
	// ErrNotStarted is returned when a martingale value is requested
	// before the tracker has been reset for a trajectory.
	ErrNotStarted = errors.New("solver: trajectory not started, Reset must be called first")

	// ErrBackwardIntegration is returned when a martingale value is
	// requested at a time earlier than every cached time. The tracker only
	// ever integrates forward.
	ErrBackwardIntegration = errors.New("solver: cannot integrate martingale backwards in time")
)

// martingaleTracker maintains the per-trajectory martingale state: a
// memoized forward-only cache of the continuous part and the product rule
// for the discrete part. One tracker belongs to exactly one trajectory and
// is never shared.
type martingaleTracker struct {
	pairs     []OperatorRatePair // augmented sequence, shared read-only
	scale     float64            // the completeness factor a
	quadNodes int

	// Continuous martingale cache. times holds the cache keys in ascending
	// order; values maps a key to mu_c at that exact time. Lookups are by
	// exact float value, so callers must reuse the times they precomputed.
	times  []float64
	values map[float64]float64
}

func newMartingaleTracker(pairs []OperatorRatePair, scale float64, quadNodes int) *martingaleTracker {
	return &martingaleTracker{
		pairs:     pairs,
		scale:     scale,
		quadNodes: quadNodes,
	}
}

// Reset clears the cache and anchors it with mu_c(t0) = 1. Called exactly
// once per trajectory before any other operation.
func (m *martingaleTracker) Reset(t0 float64) {
	m.times = []float64{t0}
	m.values = map[float64]float64{t0: 1}
}

// ContinuousValue returns mu_c(t), integrating the rate shift forward from
// the nearest earlier cached time and memoizing the result.
func (m *martingaleTracker) ContinuousValue(t float64) (float64, error) {
	if m.values == nil {
		return 0, ErrNotStarted
	}
	if v, ok := m.values[t]; ok {
		return v, nil
	}

	idx := sort.SearchFloat64s(m.times, t)
	if idx == 0 {
		return 0, ErrBackwardIntegration
	}
	t0 := m.times[idx-1]

	integral := quad.Fixed(func(s float64) float64 {
		return RateShift(m.pairs, s)
	}, t0, t, m.quadNodes, nil, 0)

	v := m.values[t0] * math.Exp(m.scale*integral)
	m.times = append(m.times, 0)
	copy(m.times[idx+1:], m.times[idx:])
	m.times[idx] = t
	m.values[t] = v
	return v, nil
}

// DiscreteValue returns the product over all recorded collapses of
// rate(t_k) / (rate(t_k) + sigma(t_k)): the likelihood ratio between the
// true jump probability and the shifted one actually simulated. An empty
// collapse list yields 1. Individual factors can be negative; the sign is
// part of the weight and is never clamped.
func (m *martingaleTracker) DiscreteValue(collapses []mc.CollapseEvent) float64 {
	mu := 1.0
	for _, c := range collapses {
		g := m.pairs[c.Index].Rate(c.Time)
		mu *= g / (g + RateShift(m.pairs, c.Time))
	}
	return mu
}

// Current returns the full martingale mu(t) = mu_c(t) * mu_d(collapses).
func (m *martingaleTracker) Current(t float64, collapses []mc.CollapseEvent) (float64, error) {
	muC, err := m.ContinuousValue(t)
	if err != nil {
		return 0, err
	}
	return muC * m.DiscreteValue(collapses), nil
}
