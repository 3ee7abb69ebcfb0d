package solver

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/quantum-menace/qtraj/internal/mc"
	"github.com/quantum-menace/qtraj/internal/operator"
	"github.com/quantum-menace/qtraj/internal/results"
)

// JumpEngine is the narrow view of the stochastic jump-process integrator
// the runner needs. The runner composes an engine rather than extending one.
type JumpEngine interface {
	SetState(t float64, psi operator.Ket, rng *rand.Rand)
	IntegrateTo(t float64) (float64, operator.Ket, error)
	Collapses() []mc.CollapseEvent
	CurrentTime() float64
}

// TrajectoryRunner drives a single trajectory: it advances the jump engine,
// consults the martingale tracker after every step and combines both into
// weighted density matrices. Each runner owns private per-trajectory state
// (tracker cache, engine, RNG) and must not be shared across trajectories.
type TrajectoryRunner struct {
	solver  *Solver
	engine  JumpEngine
	tracker *martingaleTracker
	started bool
}

// NewTrajectoryRunner creates a runner with a fresh integrator for one
// trajectory of the given solver.
func NewTrajectoryRunner(s *Solver) *TrajectoryRunner {
	return &TrajectoryRunner{
		solver:  s,
		engine:  mc.NewIntegrator(s.ham, s.channels, s.opts.Substeps),
		tracker: newMartingaleTracker(s.pairs, s.scale, s.opts.QuadNodes),
	}
}

// Start initializes the trajectory at time t0: the martingale cache is reset
// to {t0: 1} and the engine receives the state and a private generator
// seeded with seed.
func (r *TrajectoryRunner) Start(psi operator.Ket, t0 float64, seed uint64) {
	r.tracker.Reset(t0)
	r.engine.SetState(t0, psi, rand.New(rand.NewSource(seed)))
	r.started = true
}

// Step advances the engine to time t and returns the weighted density
// matrix: the engine's trace-one state multiplied by the current martingale.
// The returned matrix has trace mu(t), not 1, and must not be renormalized.
func (r *TrajectoryRunner) Step(t float64) (*operator.Operator, error) {
	if !r.started {
		return nil, ErrNotStarted
	}
	reached, psi, err := r.engine.IntegrateTo(t)
	if err != nil {
		return nil, fmt.Errorf("solver: jump engine: %w", err)
	}
	mu, err := r.tracker.Current(reached, r.engine.Collapses())
	if err != nil {
		return nil, err
	}
	return psi.ToDensityMatrix().Scale(complex(mu, 0)), nil
}

// RunOneTrajectory executes one full trajectory over the given time grid and
// returns its result for external aggregation. The continuous martingale is
// precomputed over the grid in ascending order first, so no later query can
// run backwards and the quadrature cost is one integral per consecutive
// pair of times.
func (r *TrajectoryRunner) RunOneTrajectory(seed uint64, psi operator.Ket, times []float64, observables []results.Observable) (*results.TrajectoryResult, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("solver: empty time grid")
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("solver: time grid must be non-decreasing")
		}
	}

	r.Start(psi, times[0], seed)
	for _, t := range times[1:] {
		if _, err := r.tracker.ContinuousValue(t); err != nil {
			return nil, err
		}
	}

	res := results.NewTrajectoryResult(seed, observables)

	// The martingale is one at the starting time.
	res.Add(times[0], psi.Copy().Normalize().ToDensityMatrix(), 1)

	for _, t := range times[1:] {
		reached, state, err := r.engine.IntegrateTo(t)
		if err != nil {
			return nil, fmt.Errorf("solver: jump engine: %w", err)
		}
		mu, err := r.tracker.Current(reached, r.engine.Collapses())
		if err != nil {
			return nil, err
		}
		res.Add(reached, state.ToDensityMatrix().Scale(complex(mu, 0)), mu)
	}

	res.Collapses = append([]mc.CollapseEvent(nil), r.engine.Collapses()...)
	return res, nil
}
