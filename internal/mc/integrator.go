// Package mc implements the stochastic pure-state jump-process integrator
// used by the trajectory solver: norm-based Monte-Carlo unraveling of a
// master equation with nonnegative, possibly time-dependent, channel
// coefficients.
package mc

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/quantum-menace/qtraj/internal/operator"
)

// CollapseEvent records one quantum jump: the time it happened and the index
// of the channel that fired. Events are appended in time order and are
// read-only to consumers.
type CollapseEvent struct {
	Time  float64
	Index int
}

// Channel is one dissipative channel: a fixed jump operator scaled by a
// scalar time-dependent coefficient. The effective operator at time t is
// Coeff(t) * Op. Coefficients must be nonnegative for all t.
type Channel struct {
	Op    *operator.Operator
	Coeff func(t float64) float64
}

// bisectIters bounds the bisection refining a jump time inside a substep.
const bisectIters = 40

// Integrator propagates a single stochastic wave-function trajectory. The
// unnormalized state evolves under the non-Hermitian effective Hamiltonian
// H_eff = H - (i/2) sum_k c_k^dag(t) c_k(t); a jump fires whenever the
// squared norm crosses a uniform random target, following the standard
// Monte-Carlo wave-function recipe.
//
// An Integrator belongs to exactly one trajectory at a time; SetState
// reinitializes it for the next one. It is not safe for concurrent use.
type Integrator struct {
	ham      *operator.Operator
	channels []Channel
	ldl      []*operator.Operator // precomputed L_k^dag L_k
	substeps int

	t         float64
	psi       operator.Ket // unnormalized between jumps
	rng       *rand.Rand
	target    float64
	collapses []CollapseEvent
}

// NewIntegrator builds an integrator for the given Hamiltonian and channels.
// substeps is the number of fixed RK4 steps per IntegrateTo interval.
func NewIntegrator(ham *operator.Operator, channels []Channel, substeps int) *Integrator {
	ldl := make([]*operator.Operator, len(channels))
	for k, c := range channels {
		ldl[k] = operator.Mul(c.Op.Dag(), c.Op)
	}
	return &Integrator{
		ham:      ham,
		channels: channels,
		ldl:      ldl,
		substeps: substeps,
	}
}

// SetState initializes the trajectory at time t with the (normalized copy
// of the) given state and a private random generator. Any previous collapse
// history is discarded.
func (it *Integrator) SetState(t float64, psi operator.Ket, rng *rand.Rand) {
	it.t = t
	it.psi = psi.Copy().Normalize()
	it.rng = rng
	it.target = rng.Float64()
	it.collapses = nil
}

// CurrentTime returns the trajectory's current time.
func (it *Integrator) CurrentTime() float64 { return it.t }

// Collapses returns the collapse events recorded so far. The returned slice
// is owned by the integrator; callers must treat it as read-only.
func (it *Integrator) Collapses() []CollapseEvent { return it.collapses }

// IntegrateTo advances the trajectory to time t, applying any jumps along
// the way, and returns the reached time together with a normalized copy of
// the propagated state.
func (it *Integrator) IntegrateTo(t float64) (float64, operator.Ket, error) {
	if it.psi == nil {
		return 0, nil, fmt.Errorf("mc: integrator state not set")
	}
	if t < it.t {
		return 0, nil, fmt.Errorf("mc: cannot integrate from t=%g back to t=%g", it.t, t)
	}

	h := (t - it.t) / float64(it.substeps)
	for step := 0; step < it.substeps; step++ {
		prevT := it.t
		prevPsi := it.psi.Copy()

		it.psi = it.rk4Step(it.t, it.psi, h)
		it.t = prevT + h

		if norm2(it.psi) <= it.target {
			if err := it.applyJump(prevT, prevPsi, h); err != nil {
				return 0, nil, err
			}
		}
	}
	it.t = t // absorb accumulated rounding in the substep sum

	return it.t, it.psi.Copy().Normalize(), nil
}

// deriv evaluates d(psi)/dt = -i H psi - (1/2) sum_k coeff_k(t)^2 L_k^dag L_k psi.
func (it *Integrator) deriv(t float64, psi operator.Ket) operator.Ket {
	out := it.ham.Apply(psi).Scale(complex(0, -1))
	for k, c := range it.channels {
		g := c.Coeff(t)
		if g == 0 {
			continue
		}
		damp := it.ldl[k].Apply(psi).Scale(complex(-0.5*g*g, 0))
		for i := range out {
			out[i] += damp[i]
		}
	}
	return out
}

// rk4Step advances psi from t by h with one classical Runge-Kutta step.
func (it *Integrator) rk4Step(t float64, psi operator.Ket, h float64) operator.Ket {
	k1 := it.deriv(t, psi)
	k2 := it.deriv(t+h/2, axpy(psi, k1, h/2))
	k3 := it.deriv(t+h/2, axpy(psi, k2, h/2))
	k4 := it.deriv(t+h, axpy(psi, k3, h))

	out := psi.Copy()
	for i := range out {
		out[i] += complex(h/6, 0) * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
	return out
}

// applyJump locates the jump time inside the substep [t0, t0+h] by bisection
// on the squared norm, selects a channel proportionally to its jump weight,
// applies it and rearms the jump target.
func (it *Integrator) applyJump(t0 float64, psi0 operator.Ket, h float64) error {
	lo, hi := 0.0, h
	for iter := 0; iter < bisectIters; iter++ {
		mid := (lo + hi) / 2
		probe := it.rk4Step(t0, psi0, mid)
		if norm2(probe) > it.target {
			lo = mid
		} else {
			hi = mid
		}
	}
	tj := t0 + hi
	psiJ := it.rk4Step(t0, psi0, hi)

	weights := make([]float64, len(it.channels))
	total := 0.0
	for k, c := range it.channels {
		g := c.Coeff(tj)
		if g == 0 {
			continue
		}
		jumped := c.Op.Apply(psiJ)
		weights[k] = g * g * norm2(jumped)
		total += weights[k]
	}
	if total <= 0 {
		return fmt.Errorf("mc: no channel available for jump at t=%g", tj)
	}

	r := it.rng.Float64() * total
	chosen := len(it.channels) - 1
	acc := 0.0
	for k, w := range weights {
		acc += w
		if r <= acc && w > 0 {
			chosen = k
			break
		}
	}

	it.psi = it.channels[chosen].Op.Apply(psiJ).Normalize()
	it.collapses = append(it.collapses, CollapseEvent{Time: tj, Index: chosen})
	it.target = it.rng.Float64()

	// Finish the remainder of the substep from the post-jump state.
	if rem := h - hi; rem > 0 {
		it.psi = it.rk4Step(tj, it.psi, rem)
		it.t = t0 + h
		if norm2(it.psi) <= it.target {
			return it.applyJump(tj, it.channels[chosen].Op.Apply(psiJ).Normalize(), rem)
		}
	}
	return nil
}

func norm2(psi operator.Ket) float64 {
	n := psi.Norm()
	return n * n
}

// axpy returns psi + a*k without modifying the inputs.
func axpy(psi, k operator.Ket, a float64) operator.Ket {
	out := psi.Copy()
	ca := complex(a, 0)
	for i := range out {
		out[i] += ca * k[i]
	}
	return out
}
