package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// NonZeroDoer is implemented by the sparse formats that can visit their
// stored entries without scanning every position.
type NonZeroDoer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// DoNonZero calls fn for the non zero entries of A, using the sparse
// traversal when A provides one.
func DoNonZero(A mat.Matrix, fn func(i, j int, v float64)) {
	if A == nil {
		return
	}
	switch m := A.(type) {
	case DOK:
		m.M.DoNonZero(fn)
		return
	case CSR:
		m.M.DoNonZero(fn)
		return
	case NonZeroDoer:
		m.DoNonZero(fn)
		return
	}
	nr, nc := A.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if v := A.At(i, j); v != 0 {
				fn(i, j, v)
			}
		}
	}
}

// DOK is an accumulating sparse matrix, used while summing contributions.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// AddAt accumulates val into entry (i,j). Changes receiver.
func (m DOK) AddAt(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// AddMatrix accumulates every non zero entry of A. Changes receiver.
func (m DOK) AddMatrix(A mat.Matrix) (err error) {
	var (
		nr, nc   = m.Dims()
		nrA, ncA = A.Dims()
	)
	if nr != nrA || nc != ncA {
		err = fmt.Errorf("dimension mismatch adding %dx%d into %q of %dx%d", nrA, ncA, m.name, nr, nc)
		return
	}
	m.checkWritable()
	DoNonZero(A, func(i, j int, v float64) {
		m.M.Set(i, j, m.M.At(i, j)+v)
	})
	return
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// CSR is the compressed form handed to the solvers.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)                       { return m.M.Dims() }
func (m CSR) At(i, j int) float64                    { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                          { return m.M.T() }
func (m CSR) NNZ() int                               { return m.M.NNZ() }
func (m CSR) DoNonZero(fn func(i, j int, v float64)) { m.M.DoNonZero(fn) }

// ToSymDense expands the matrix into dense symmetric storage, taking the
// upper triangle as given.
func (m CSR) ToSymDense() (S *mat.SymDense) {
	n, _ := m.Dims()
	S = mat.NewSymDense(n, nil)
	m.M.DoNonZero(func(i, j int, v float64) {
		if i <= j {
			S.SetSym(i, j, v)
		}
	})
	return
}

// IsSymmetric checks that every stored entry matches its transpose within tol.
func (m CSR) IsSymmetric(tol float64) (sym bool) {
	sym = true
	m.M.DoNonZero(func(i, j int, v float64) {
		if d := v - m.M.At(j, i); d > tol || d < -tol {
			sym = false
		}
	})
	return
}
