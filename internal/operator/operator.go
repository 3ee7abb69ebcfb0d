// Package operator provides dense complex operator algebra for quantum
// simulations: matrix arithmetic, Hermitian eigendecomposition and the
// positive-semidefinite matrix square root.
//
// Matrix products go through gonum's complex BLAS (cblas128). Eigenvalue
// work is delegated to gonum's real symmetric solver via the standard
// real embedding (see herm.go), since gonum has no complex eigensolver.
package operator

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Operator is a dense, square complex matrix stored row-major.
type Operator struct {
	n    int
	data []complex128
}

// New creates an n x n operator from row-major data. The data slice is
// copied. Passing data of the wrong length panics; operator dimensions are
// programmer-controlled construction-time values, not runtime inputs.
func New(n int, data []complex128) *Operator {
	if len(data) != n*n {
		panic(fmt.Sprintf("operator: data length %d does not match dimension %d", len(data), n))
	}
	d := make([]complex128, n*n)
	copy(d, data)
	return &Operator{n: n, data: d}
}

// Zeros creates an n x n zero operator.
func Zeros(n int) *Operator {
	return &Operator{n: n, data: make([]complex128, n*n)}
}

// Identity creates the n x n identity operator.
func Identity(n int) *Operator {
	op := Zeros(n)
	for i := 0; i < n; i++ {
		op.data[i*n+i] = 1
	}
	return op
}

// Dim returns the dimension of the (square) operator.
func (o *Operator) Dim() int { return o.n }

// At returns the element at row i, column j.
func (o *Operator) At(i, j int) complex128 { return o.data[i*o.n+j] }

// Set assigns the element at row i, column j.
func (o *Operator) Set(i, j int, v complex128) { o.data[i*o.n+j] = v }

// Copy returns a deep copy.
func (o *Operator) Copy() *Operator {
	return New(o.n, o.data)
}

// general exposes the operator as a cblas128.General without copying.
func (o *Operator) general() cblas128.General {
	return cblas128.General{Rows: o.n, Cols: o.n, Stride: o.n, Data: o.data}
}

// Dag returns the conjugate transpose.
func (o *Operator) Dag() *Operator {
	out := Zeros(o.n)
	for i := 0; i < o.n; i++ {
		for j := 0; j < o.n; j++ {
			out.data[j*o.n+i] = cmplx.Conj(o.data[i*o.n+j])
		}
	}
	return out
}

// Mul returns the matrix product a*b.
func Mul(a, b *Operator) *Operator {
	if a.n != b.n {
		panic(fmt.Sprintf("operator: dimension mismatch %d x %d", a.n, b.n))
	}
	out := Zeros(a.n)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.general(), b.general(), 0, out.general())
	return out
}

// Add returns a+b.
func Add(a, b *Operator) *Operator {
	if a.n != b.n {
		panic(fmt.Sprintf("operator: dimension mismatch %d x %d", a.n, b.n))
	}
	out := Zeros(a.n)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Sub returns a-b.
func Sub(a, b *Operator) *Operator {
	if a.n != b.n {
		panic(fmt.Sprintf("operator: dimension mismatch %d x %d", a.n, b.n))
	}
	out := Zeros(a.n)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out
}

// Scale returns s*o.
func (o *Operator) Scale(s complex128) *Operator {
	out := Zeros(o.n)
	for i := range out.data {
		out.data[i] = s * o.data[i]
	}
	return out
}

// Trace returns the sum of the diagonal elements.
func (o *Operator) Trace() complex128 {
	var tr complex128
	for i := 0; i < o.n; i++ {
		tr += o.data[i*o.n+i]
	}
	return tr
}

// Equal reports whether o and other agree element-wise within
// |x-y| <= atol + rtol*|y|.
func (o *Operator) Equal(other *Operator, rtol, atol float64) bool {
	if o.n != other.n {
		return false
	}
	for i := range o.data {
		diff := cmplx.Abs(o.data[i] - other.data[i])
		if diff > atol+rtol*cmplx.Abs(other.data[i]) {
			return false
		}
	}
	return true
}

// Apply returns the ket o|psi>.
func (o *Operator) Apply(psi Ket) Ket {
	if len(psi) != o.n {
		panic(fmt.Sprintf("operator: ket length %d does not match dimension %d", len(psi), o.n))
	}
	out := make(Ket, o.n)
	cblas128.Gemv(blas.NoTrans, 1, o.general(),
		cblas128.Vector{N: o.n, Inc: 1, Data: psi}, 0,
		cblas128.Vector{N: o.n, Inc: 1, Data: out})
	return out
}

// Expect returns tr(op * rho), the expectation value of op in the state rho.
// For Hermitian op and Hermitian rho the imaginary part is numerical noise;
// callers decide whether to discard it.
func Expect(op, rho *Operator) complex128 {
	return Mul(op, rho).Trace()
}
