// Package models provides built-in open-system models for the CLI: small
// qubit systems whose decay rates go negative, the regime the solver exists
// for.
package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/quantum-menace/qtraj/internal/operator"
	"github.com/quantum-menace/qtraj/internal/results"
	"github.com/quantum-menace/qtraj/internal/solver"
)

// Pauli matrices and ladder operators on the qubit.
var (
	sigmaX = func() *operator.Operator {
		return operator.New(2, []complex128{0, 1, 1, 0})
	}
	sigmaY = func() *operator.Operator {
		return operator.New(2, []complex128{0, complex(0, -1), complex(0, 1), 0})
	}
	sigmaZ = func() *operator.Operator {
		return operator.New(2, []complex128{1, 0, 0, -1})
	}
	sigmaMinus = func() *operator.Operator {
		// Lowering operator in the {|e>, |g>} ordering: |g><e|.
		return operator.New(2, []complex128{0, 0, 1, 0})
	}
)

// Model bundles everything needed to run one built-in system: the
// Hamiltonian, the operator-rate pairs (rates may be negative), the initial
// pure state and the observables reported by the run.
type Model struct {
	Name         string
	Hamiltonian  *operator.Operator
	Pairs        []solver.OperatorRatePair
	InitialState operator.Ket
	Observables  []results.Observable
}

// Params holds named numeric parameters for a model. Missing keys fall back
// to model-specific defaults.
type Params map[string]float64

func (p Params) get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Build constructs a built-in model by name.
func Build(name string, params Params) (*Model, error) {
	switch name {
	case "damped-qubit":
		return dampedQubit(params), nil
	case "eternal":
		return eternallyNonMarkovian(params), nil
	default:
		return nil, fmt.Errorf("models: unknown model %q (available: %v)", name, Names())
	}
}

// Names lists the available built-in models.
func Names() []string {
	names := []string{"damped-qubit", "eternal"}
	sort.Strings(names)
	return names
}

// dampedQubit is a decaying two-level atom whose rate oscillates and, for
// modulation amplitudes above one, periodically turns negative:
//
//	gamma(t) = gamma0 * (1 + amp*sin(freq*t))
//
// The single channel sigma_minus gives sum(L^dag L) = |e><e|, which is not
// proportional to the identity, so this model always exercises the
// completeness augmentation.
func dampedQubit(p Params) *Model {
	delta := p.get("delta", 0)
	gamma0 := p.get("gamma0", 1)
	amp := p.get("amp", 1.5)
	freq := p.get("freq", 2*math.Pi)

	excited := operator.New(2, []complex128{1, 0, 0, 0})
	return &Model{
		Name:        "damped-qubit",
		Hamiltonian: sigmaZ().Scale(complex(delta/2, 0)),
		Pairs: []solver.OperatorRatePair{
			{Op: sigmaMinus(), Rate: func(t float64) float64 {
				return gamma0 * (1 + amp*math.Sin(freq*t))
			}},
		},
		InitialState: operator.BasisKet(2, 0), // |e>
		Observables: []results.Observable{
			{Name: "excited_population", Op: excited},
			{Name: "sigma_z", Op: sigmaZ()},
		},
	}
}

// eternallyNonMarkovian is the unital qubit whose sigma_z rate is negative
// for all t > 0:
//
//	gamma_x = gamma_y = gamma0/2,  gamma_z(t) = -gamma0/2 * tanh(t)
//
// The three Pauli channels satisfy sum(L^dag L) = 3*I, so the completeness
// check passes without augmentation.
func eternallyNonMarkovian(p Params) *Model {
	gamma0 := p.get("gamma0", 1)

	return &Model{
		Name:        "eternal",
		Hamiltonian: operator.Zeros(2),
		Pairs: []solver.OperatorRatePair{
			{Op: sigmaX(), Rate: solver.ConstantRate(gamma0 / 2)},
			{Op: sigmaY(), Rate: solver.ConstantRate(gamma0 / 2)},
			{Op: sigmaZ(), Rate: func(t float64) float64 {
				return -gamma0 / 2 * math.Tanh(t)
			}},
		},
		InitialState: operator.BasisKet(2, 0),
		Observables: []results.Observable{
			{Name: "sigma_z", Op: sigmaZ()},
			{Name: "sigma_x", Op: sigmaX()},
		},
	}
}
