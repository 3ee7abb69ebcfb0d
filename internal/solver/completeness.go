package solver

import (
	"fmt"

	"github.com/quantum-menace/qtraj/internal/operator"
)

// checkCompleteness verifies that omega = sum(L_i^dag * L_i) is proportional
// to the identity within the configured tolerance. If it is, the
// proportionality factor a = tr(omega)/dim is returned with a nil extra
// operator. If it is not, a is the largest eigenvalue of omega, which makes
// a*I - omega positive semi-definite, and the extra operator is the matrix
// square root of that difference. Either way the augmented identity
//
//	sum(L_i^dag L_i) + L_extra^dag L_extra = a*I
//
// holds, which the martingale derivation requires.
//
// A failed proportionality check is not an error; augmentation is the
// expected response. Only numeric failures (eigendecomposition, square root)
// are reported.
func checkCompleteness(pairs []OperatorRatePair, rtol, atol float64) (float64, *operator.Operator, error) {
	if len(pairs) == 0 {
		return 0, nil, fmt.Errorf("solver: no operator-rate pairs given")
	}

	dim := pairs[0].Op.Dim()
	omega := operator.Zeros(dim)
	for i, p := range pairs {
		if p.Op.Dim() != dim {
			return 0, nil, fmt.Errorf("solver: operator %d has dimension %d, want %d", i, p.Op.Dim(), dim)
		}
		omega = operator.Add(omega, operator.Mul(p.Op.Dag(), p.Op))
	}

	aCandidate := real(omega.Trace()) / float64(dim)
	if omega.Equal(operator.Identity(dim).Scale(complex(aCandidate, 0)), rtol, atol) {
		return aCandidate, nil, nil
	}

	a, err := operator.MaxEigHerm(omega)
	if err != nil {
		return 0, nil, fmt.Errorf("solver: completeness eigenvalues: %w", err)
	}

	diff := operator.Sub(operator.Identity(dim).Scale(complex(a, 0)), omega)
	extra, err := operator.SqrtmPSD(diff)
	if err != nil {
		return 0, nil, fmt.Errorf("solver: completeness square root: %w", err)
	}
	return a, extra, nil
}
