package operator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// realEmbed maps the complex matrix M = A + iB to the real 2n x 2n matrix
// [[A, -B], [B, A]]. The embedding is an algebra homomorphism, so spectral
// functions (eigenvalues, square roots) computed on the embedding correspond
// exactly to the same functions on M, with every eigenvalue doubled.
func realEmbed(o *Operator) *mat.SymDense {
	n := o.n
	data := make([]float64, 4*n*n)
	stride := 2 * n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := real(o.data[i*n+j])
			b := imag(o.data[i*n+j])
			data[i*stride+j] = a
			data[i*stride+j+n] = -b
			data[(i+n)*stride+j] = b
			data[(i+n)*stride+j+n] = a
		}
	}
	return mat.NewSymDense(stride, data)
}

// fromEmbed reads a complex n x n matrix back out of its 2n x 2n real
// embedding: A from the top-left block, B from the bottom-left block.
func fromEmbed(r *mat.Dense, n int) *Operator {
	out := Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[i*n+j] = complex(r.At(i, j), r.At(i+n, j))
		}
	}
	return out
}

// EigValsHerm returns the eigenvalues of a Hermitian operator in ascending
// order. Gonum's symmetric solver only reads the upper triangle of the real
// embedding, so any anti-Hermitian component of the input is ignored rather
// than reported; callers that care must check Hermiticity themselves.
func EigValsHerm(o *Operator) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(realEmbed(o), false); !ok {
		return nil, fmt.Errorf("operator: symmetric eigendecomposition failed")
	}
	doubled := es.Values(nil)
	// Eigenvalues of the embedding come doubled; collapse adjacent pairs.
	vals := make([]float64, o.n)
	for i := range vals {
		vals[i] = (doubled[2*i] + doubled[2*i+1]) / 2
	}
	return vals, nil
}

// MaxEigHerm returns the largest eigenvalue of a Hermitian operator.
func MaxEigHerm(o *Operator) (float64, error) {
	vals, err := EigValsHerm(o)
	if err != nil {
		return 0, err
	}
	return vals[len(vals)-1], nil
}

// SqrtmPSD returns the principal square root of a positive-semidefinite
// Hermitian operator via its spectral decomposition. Marginally negative
// eigenvalues from floating-point noise are clamped to zero instead of
// producing NaN.
func SqrtmPSD(o *Operator) (*Operator, error) {
	var es mat.EigenSym
	if ok := es.Factorize(realEmbed(o), true); !ok {
		return nil, fmt.Errorf("operator: symmetric eigendecomposition failed")
	}
	vals := es.Values(nil)
	for i, v := range vals {
		if v < 0 {
			v = 0
		}
		vals[i] = math.Sqrt(v)
	}

	var vecs mat.Dense
	es.VectorsTo(&vecs)

	dim := 2 * o.n
	var tmp, root mat.Dense
	tmp.Mul(&vecs, mat.NewDiagDense(dim, vals))
	root.Mul(&tmp, vecs.T())

	return fromEmbed(&root, o.n), nil
}
