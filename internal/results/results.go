// Package results accumulates trajectory and ensemble output for the
// Monte-Carlo solver. States arrive already weighted by the trajectory
// martingale; their trace is the physically meaningful weight and is never
// renormalized here.
package results

import (
	"fmt"

	"github.com/quantum-menace/qtraj/internal/mc"
	"github.com/quantum-menace/qtraj/internal/operator"
)

// Observable is a named operator whose expectation value is tracked.
type Observable struct {
	Name string
	Op   *operator.Operator
}

// TrajectoryResult holds everything one trajectory produced: the weighted
// density matrix at each reported time, the parallel trace-weight sequence
// (the martingale values), the frozen collapse list and the seed that drove
// the trajectory.
type TrajectoryResult struct {
	Seed         uint64
	Times        []float64
	States       []*operator.Operator
	TraceWeights []float64
	Collapses    []mc.CollapseEvent
	Expect       [][]float64 // [observable][time]

	observables []Observable
}

// NewTrajectoryResult creates an empty trajectory result tracking the given
// observables.
func NewTrajectoryResult(seed uint64, observables []Observable) *TrajectoryResult {
	return &TrajectoryResult{
		Seed:        seed,
		Expect:      make([][]float64, len(observables)),
		observables: observables,
	}
}

// Add appends one reported time together with its weighted state and trace
// weight. The state is stored as-is; its trace equals the weight.
func (r *TrajectoryResult) Add(t float64, state *operator.Operator, weight float64) {
	r.Times = append(r.Times, t)
	r.States = append(r.States, state)
	r.TraceWeights = append(r.TraceWeights, weight)
	for i, obs := range r.observables {
		r.Expect[i] = append(r.Expect[i], real(operator.Expect(obs.Op, state)))
	}
}

// EnsembleResult folds trajectories into running ensemble averages. It is
// not safe for concurrent use; the driver folds trajectories in from a
// single goroutine.
type EnsembleResult struct {
	Times           []float64
	AvgStates       []*operator.Operator
	AvgTrace        []float64
	Expect          map[string][]float64
	NumTrajectories int
	Collapses       [][]mc.CollapseEvent

	observables []Observable
}

// NewEnsembleResult creates an empty ensemble accumulator for the given time
// grid and observables.
func NewEnsembleResult(times []float64, observables []Observable) *EnsembleResult {
	e := &EnsembleResult{
		Times:       times,
		AvgStates:   make([]*operator.Operator, len(times)),
		AvgTrace:    make([]float64, len(times)),
		Expect:      make(map[string][]float64, len(observables)),
		observables: observables,
	}
	for _, obs := range observables {
		e.Expect[obs.Name] = make([]float64, len(times))
	}
	return e
}

// Add folds one trajectory into the running averages.
func (e *EnsembleResult) Add(r *TrajectoryResult) error {
	if len(r.Times) != len(e.Times) {
		return fmt.Errorf("results: trajectory reported %d times, ensemble expects %d", len(r.Times), len(e.Times))
	}
	n := float64(e.NumTrajectories)
	for i := range e.Times {
		if e.AvgStates[i] == nil {
			e.AvgStates[i] = r.States[i].Copy()
		} else {
			// Running mean: avg += (x - avg) / (n+1)
			delta := operator.Sub(r.States[i], e.AvgStates[i])
			e.AvgStates[i] = operator.Add(e.AvgStates[i], delta.Scale(complex(1/(n+1), 0)))
		}
		e.AvgTrace[i] += (r.TraceWeights[i] - e.AvgTrace[i]) / (n + 1)
	}
	for j, obs := range e.observables {
		series := e.Expect[obs.Name]
		for i := range series {
			series[i] += (r.Expect[j][i] - series[i]) / (n + 1)
		}
	}
	e.Collapses = append(e.Collapses, r.Collapses)
	e.NumTrajectories++
	return nil
}
