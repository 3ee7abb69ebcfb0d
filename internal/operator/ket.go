package operator

import (
	"math/cmplx"

	"gonum.org/v1/gonum/blas/cblas128"
)

// Ket is a pure state vector.
type Ket []complex128

// NewKet creates a ket from the given amplitudes (copied).
func NewKet(amps ...complex128) Ket {
	k := make(Ket, len(amps))
	copy(k, amps)
	return k
}

// BasisKet creates the n-dimensional basis state |i>.
func BasisKet(n, i int) Ket {
	k := make(Ket, n)
	k[i] = 1
	return k
}

// Copy returns a deep copy.
func (k Ket) Copy() Ket {
	out := make(Ket, len(k))
	copy(out, k)
	return out
}

// Norm returns the Euclidean norm ||psi||.
func (k Ket) Norm() float64 {
	return cblas128.Nrm2(cblas128.Vector{N: len(k), Inc: 1, Data: k})
}

// Normalize scales the ket to unit norm in place and returns it.
// A zero ket is left unchanged.
func (k Ket) Normalize() Ket {
	n := k.Norm()
	if n == 0 {
		return k
	}
	inv := complex(1/n, 0)
	for i := range k {
		k[i] *= inv
	}
	return k
}

// Scale multiplies the ket by s in place and returns it.
func (k Ket) Scale(s complex128) Ket {
	for i := range k {
		k[i] *= s
	}
	return k
}

// ToDensityMatrix returns the projector |psi><psi|.
func (k Ket) ToDensityMatrix() *Operator {
	n := len(k)
	rho := Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rho.data[i*n+j] = k[i] * cmplx.Conj(k[j])
		}
	}
	return rho
}
