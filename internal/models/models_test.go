package models

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-menace/qtraj/internal/solver"
)

func TestBuildUnknownModel(t *testing.T) {
	_, err := Build("does-not-exist", nil)
	assert.Error(t, err)
}

func TestDampedQubitDefaults(t *testing.T) {
	m, err := Build("damped-qubit", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Hamiltonian.Dim())
	require.Len(t, m.Pairs, 1)
	assert.Len(t, m.InitialState, 2)

	// The default modulation amplitude exceeds one, so the rate must dip
	// negative somewhere in a period.
	negative := false
	for tv := 0.0; tv < 1; tv += 0.01 {
		if m.Pairs[0].Rate(tv) < 0 {
			negative = true
			break
		}
	}
	assert.True(t, negative, "default damped-qubit rate should go negative")
}

func TestDampedQubitRequiresAugmentation(t *testing.T) {
	m, err := Build("damped-qubit", nil)
	require.NoError(t, err)

	s, err := solver.New(m.Hamiltonian, m.Pairs, solver.Options{}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, s.Augmented())
}

func TestEternalModelComplete(t *testing.T) {
	m, err := Build("eternal", Params{"gamma0": 2})
	require.NoError(t, err)
	require.Len(t, m.Pairs, 3)

	// The sigma_z rate is negative for all t > 0.
	assert.Less(t, m.Pairs[2].Rate(0.5), 0.0)
	assert.Equal(t, 0.0, m.Pairs[2].Rate(0))

	s, err := solver.New(m.Hamiltonian, m.Pairs, solver.Options{}, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, s.Augmented(), "three Pauli channels already sum to 3*I")
	assert.InDelta(t, 3, s.ScaleFactor(), 1e-12)
}

func TestParamsOverride(t *testing.T) {
	m, err := Build("damped-qubit", Params{"amp": 0})
	require.NoError(t, err)

	// With zero modulation the rate is constant and positive.
	assert.InDelta(t, 1, m.Pairs[0].Rate(0.3), 1e-12)
	assert.InDelta(t, 1, m.Pairs[0].Rate(2.1), 1e-12)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "damped-qubit")
	assert.Contains(t, names, "eternal")
}
