package solver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantum-menace/qtraj/internal/operator"
	"github.com/quantum-menace/qtraj/internal/results"
)

// Run integrates an ensemble of independent trajectories over the given time
// grid and folds them into an ensemble result. Trajectories run on a bounded
// worker pool; each owns a fresh runner, martingale cache and random
// generator seeded with baseSeed+index, so no per-trajectory state is shared.
// Cancellation through ctx abandons unfinished trajectories; their private
// state is simply discarded.
func (s *Solver) Run(ctx context.Context, psi operator.Ket, times []float64, observables []results.Observable, baseSeed uint64) (*results.EnsembleResult, error) {
	ntraj := s.opts.NumTrajectories
	start := time.Now()
	s.log.Info().
		Int("trajectories", ntraj).
		Int("workers", s.opts.Workers).
		Int("times", len(times)).
		Msg("Starting ensemble run")

	trajectories := make([]*results.TrajectoryResult, ntraj)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i := 0; i < ntraj; i++ {
		i := i // per-iteration copy; required under the go 1.21 directive
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runner := NewTrajectoryRunner(s)
			res, err := runner.RunOneTrajectory(baseSeed+uint64(i), psi, times, observables)
			if err != nil {
				return err
			}
			trajectories[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fold sequentially so the running averages are deterministic for a
	// fixed base seed.
	ensemble := results.NewEnsembleResult(times, observables)
	for _, res := range trajectories {
		if err := ensemble.Add(res); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Int("trajectories", ensemble.NumTrajectories).
		Dur("elapsed", time.Since(start)).
		Msg("Ensemble run finished")
	return ensemble, nil
}
