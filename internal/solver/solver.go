package solver

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/quantum-menace/qtraj/internal/mc"
	"github.com/quantum-menace/qtraj/internal/operator"
)

// Solver is the construction-time, immutable part of the non-Markovian
// Monte-Carlo solver: the Hamiltonian, the augmented operator-rate sequence,
// the completeness factor a and the shifted channels handed to the jump
// integrator. One Solver value is safely shared read-only by any number of
// concurrently running trajectories.
type Solver struct {
	ham      *operator.Operator
	pairs    []OperatorRatePair // augmented: may end with the zero-rate completeness operator
	scale    float64            // the completeness factor a
	extra    bool               // whether an extra operator was appended
	channels []mc.Channel
	opts     Options
	log      zerolog.Logger
}

// New builds a solver for the given Hamiltonian and operator-rate pairs.
// The completeness check runs exactly once here; if sum(L_i^dag L_i) is not
// proportional to the identity, a zero-rate operator is appended so that the
// augmented identity holds. The pair sequence is immutable afterwards.
func New(ham *operator.Operator, pairs []OperatorRatePair, opts Options, log zerolog.Logger) (*Solver, error) {
	opts = opts.normalized()
	log = log.With().Str("component", "nm_solver").Logger()

	if ham == nil {
		return nil, fmt.Errorf("solver: nil Hamiltonian")
	}
	augmented := make([]OperatorRatePair, len(pairs))
	copy(augmented, pairs)

	scale, extra, err := checkCompleteness(augmented, opts.CompletenessRtol, opts.CompletenessAtol)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		if extra.Dim() != ham.Dim() {
			return nil, fmt.Errorf("solver: Hamiltonian dimension %d does not match operators %d", ham.Dim(), extra.Dim())
		}
		augmented = append(augmented, OperatorRatePair{Op: extra, Rate: ZeroRate})
	}

	s := &Solver{
		ham:      ham,
		pairs:    augmented,
		scale:    scale,
		extra:    extra != nil,
		channels: pairedChannels(augmented),
		opts:     opts,
		log:      log,
	}
	log.Info().
		Int("channels", len(augmented)).
		Bool("augmented", s.extra).
		Float64("scale", scale).
		Msg("Solver constructed")
	return s, nil
}

// pairedChannels builds the always-nonnegative jump channels fed to the
// integrator: operator L_i with coefficient sqrt(rate_i(t) + sigma(t)). The
// radicand is clamped at zero so floating-point noise near the boundary
// never reaches the square root.
func pairedChannels(pairs []OperatorRatePair) []mc.Channel {
	channels := make([]mc.Channel, len(pairs))
	for i, p := range pairs {
		rate := p.Rate
		channels[i] = mc.Channel{
			Op: p.Op,
			Coeff: func(t float64) float64 {
				radicand := rate(t) + RateShift(pairs, t)
				if radicand < 0 {
					radicand = 0
				}
				return math.Sqrt(radicand)
			},
		}
	}
	return channels
}

// ScaleFactor returns the completeness proportionality factor a.
func (s *Solver) ScaleFactor() float64 { return s.scale }

// Augmented reports whether an extra zero-rate operator was appended by the
// completeness check.
func (s *Solver) Augmented() bool { return s.extra }

// Pairs returns the augmented operator-rate sequence. Callers must treat the
// returned slice as read-only.
func (s *Solver) Pairs() []OperatorRatePair { return s.pairs }

// Channels returns the shifted jump channels consumed by the integrator.
// Callers must treat the returned slice as read-only.
func (s *Solver) Channels() []mc.Channel { return s.channels }

// RateShift evaluates sigma(t) over the augmented pair sequence.
func (s *Solver) RateShift(t float64) float64 {
	return RateShift(s.pairs, t)
}
