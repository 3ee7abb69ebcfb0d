package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-menace/qtraj/internal/mc"
	"github.com/quantum-menace/qtraj/internal/operator"
)

func sigmaZ() *operator.Operator {
	return operator.New(2, []complex128{1, 0, 0, -1})
}

func TestTrajectoryResultAdd(t *testing.T) {
	obs := []Observable{{Name: "sigma_z", Op: sigmaZ()}}
	r := NewTrajectoryResult(42, obs)

	up := operator.BasisKet(2, 0).ToDensityMatrix()
	down := operator.BasisKet(2, 1).ToDensityMatrix().Scale(complex(-0.5, 0))

	r.Add(0, up, 1)
	r.Add(1, down, -0.5)

	require.Len(t, r.Times, 2)
	assert.Equal(t, []float64{1, -0.5}, r.TraceWeights)
	require.Len(t, r.Expect, 1)
	assert.InDelta(t, 1, r.Expect[0][0], 1e-12)
	// Weighted state: -0.5 * |g><g| gives <sigma_z> = 0.5.
	assert.InDelta(t, 0.5, r.Expect[0][1], 1e-12)
}

func TestEnsembleResultAverages(t *testing.T) {
	obs := []Observable{{Name: "sigma_z", Op: sigmaZ()}}
	times := []float64{0, 1}
	e := NewEnsembleResult(times, obs)

	up := operator.BasisKet(2, 0).ToDensityMatrix()
	down := operator.BasisKet(2, 1).ToDensityMatrix()

	r1 := NewTrajectoryResult(1, obs)
	r1.Add(0, up, 1)
	r1.Add(1, up, 1)
	r1.Collapses = []mc.CollapseEvent{{Time: 0.4, Index: 0}}

	r2 := NewTrajectoryResult(2, obs)
	r2.Add(0, up, 1)
	r2.Add(1, down.Scale(complex(3, 0)), 3)

	require.NoError(t, e.Add(r1))
	require.NoError(t, e.Add(r2))

	assert.Equal(t, 2, e.NumTrajectories)
	assert.InDelta(t, 1, e.AvgTrace[0], 1e-12)
	assert.InDelta(t, 2, e.AvgTrace[1], 1e-12)

	// <sigma_z> at t=1: mean of (+1) and (-3) is -1.
	assert.InDelta(t, -1, e.Expect["sigma_z"][1], 1e-12)

	// Average state at t=1: (up + 3*down)/2, trace 2.
	assert.InDelta(t, 2, real(e.AvgStates[1].Trace()), 1e-12)
	assert.InDelta(t, 0.5, real(e.AvgStates[1].At(0, 0)), 1e-12)
	assert.InDelta(t, 1.5, real(e.AvgStates[1].At(1, 1)), 1e-12)

	require.Len(t, e.Collapses, 2)
	assert.Len(t, e.Collapses[0], 1)
	assert.Empty(t, e.Collapses[1])
}

func TestEnsembleResultLengthMismatch(t *testing.T) {
	e := NewEnsembleResult([]float64{0, 1}, nil)
	r := NewTrajectoryResult(1, nil)
	r.Add(0, operator.BasisKet(2, 0).ToDensityMatrix(), 1)

	assert.Error(t, e.Add(r))
}
