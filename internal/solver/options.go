package solver

import "runtime"

// Default tolerances for the construction-time completeness check.
const (
	DefaultCompletenessRtol = 1e-5
	DefaultCompletenessAtol = 1e-8
)

// Options holds solver configuration. It is built once, validated at solver
// construction and never mutated afterwards; every component that needs a
// knob receives this value explicitly.
type Options struct {
	// CompletenessRtol and CompletenessAtol control the tolerance of the
	// construction-time check that sum(L_i^dag L_i) is proportional to
	// the identity.
	CompletenessRtol float64
	CompletenessAtol float64

	// QuadNodes is the number of Gauss-Legendre nodes used per interval
	// when integrating the rate shift for the continuous martingale.
	QuadNodes int

	// Substeps is the number of fixed RK4 steps the jump integrator takes
	// between consecutive reporting times.
	Substeps int

	// NumTrajectories is the default ensemble size for Run.
	NumTrajectories int

	// Workers bounds the number of trajectories integrated concurrently.
	Workers int
}

// DefaultOptions returns the standard solver configuration.
func DefaultOptions() Options {
	return Options{
		CompletenessRtol: DefaultCompletenessRtol,
		CompletenessAtol: DefaultCompletenessAtol,
		QuadNodes:        32,
		Substeps:         100,
		NumTrajectories:  500,
		Workers:          runtime.NumCPU(),
	}
}

// normalized fills in zero-valued fields with their defaults.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.CompletenessRtol == 0 {
		o.CompletenessRtol = def.CompletenessRtol
	}
	if o.CompletenessAtol == 0 {
		o.CompletenessAtol = def.CompletenessAtol
	}
	if o.QuadNodes <= 0 {
		o.QuadNodes = def.QuadNodes
	}
	if o.Substeps <= 0 {
		o.Substeps = def.Substeps
	}
	if o.NumTrajectories <= 0 {
		o.NumTrajectories = def.NumTrajectories
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	return o
}
