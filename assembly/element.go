// Package assembly sums element and region contributions into global
// operators indexed by the free degree of freedom numbering of a field.
package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/utils"
)

// SysmatAssembler collects element matrices into a sparse system matrix.
// Rows or columns numbered field.NoEquation are dropped.
type SysmatAssembler interface {
	Start(nRows, nCols int)
	Assemble(Ke mat.Matrix, rows, cols utils.Index) error
	Matrix() utils.DOK
}

// Sparse is the plain symmetric system matrix assembler.
type Sparse struct {
	M       utils.DOK
	started bool
}

func NewSparse() *Sparse { return &Sparse{} }

func (a *Sparse) Start(nRows, nCols int) {
	a.M = utils.NewDOK(nRows, nCols)
	a.started = true
}

func (a *Sparse) Assemble(Ke mat.Matrix, rows, cols utils.Index) (err error) {
	if !a.started {
		return fmt.Errorf("assembler used before Start")
	}
	nr, nc := Ke.Dims()
	if nr != len(rows) || nc != len(cols) {
		return fmt.Errorf("element matrix %dx%d does not match %d rows and %d columns",
			nr, nc, len(rows), len(cols))
	}
	NR, NC := a.M.Dims()
	if err = checkEquations("row", rows, NR); err != nil {
		return
	}
	if err = checkEquations("column", cols, NC); err != nil {
		return
	}
	for i, r := range rows {
		if r == field.NoEquation {
			continue
		}
		for j, c := range cols {
			if c == field.NoEquation {
				continue
			}
			a.M.AddAt(r, c, Ke.At(i, j))
		}
	}
	return
}

// checkEquations rejects any equation number outside [0,n) other than
// field.NoEquation.
func checkEquations(what string, eqs utils.Index, n int) error {
	if bad := eqs.Find(utils.Less, field.NoEquation); len(bad) != 0 {
		return fmt.Errorf("%s equation %d outside [0,%d)", what, eqs[bad[0]], n)
	}
	if m := eqs.Max(); m >= n {
		return fmt.Errorf("%s equation %d outside [0,%d)", what, m, n)
	}
	return nil
}

func (a *Sparse) Matrix() utils.DOK {
	a.started = false
	return a.M
}

// HRZLumping assembles the diagonal of each element matrix scaled so that
// the total of the element matrix is preserved (Hinton, Rock and Zienkiewicz).
type HRZLumping struct {
	Sparse
}

func NewHRZLumping() *HRZLumping { return &HRZLumping{} }

func (a *HRZLumping) Assemble(Me mat.Matrix, rows, cols utils.Index) (err error) {
	var (
		nr, nc      = Me.Dims()
		total, diag float64
	)
	if nr != nc {
		return fmt.Errorf("lumping needs a square element matrix, got %dx%d", nr, nc)
	}
	for i := 0; i < nr; i++ {
		diag += Me.At(i, i)
		for j := 0; j < nc; j++ {
			total += Me.At(i, j)
		}
	}
	lumped := mat.NewDiagDense(nr, nil)
	if diag != 0 {
		factor := total / diag
		for i := 0; i < nr; i++ {
			lumped.SetDiag(i, Me.At(i, i)*factor)
		}
	}
	return a.Sparse.Assemble(lumped, rows, cols)
}

// Vector collects element vectors into a dense system vector.
type Vector struct {
	F       []float64
	started bool
}

func NewVector() *Vector { return &Vector{} }

func (a *Vector) Start(n int) {
	a.F = make([]float64, n)
	a.started = true
}

func (a *Vector) Assemble(fe []float64, rows utils.Index) (err error) {
	if !a.started {
		return fmt.Errorf("assembler used before Start")
	}
	if len(fe) != len(rows) {
		return fmt.Errorf("element vector of %d does not match %d rows", len(fe), len(rows))
	}
	if err = checkEquations("row", rows, len(a.F)); err != nil {
		return
	}
	for i, r := range rows {
		if r == field.NoEquation {
			continue
		}
		a.F[r] += fe[i]
	}
	return
}

func (a *Vector) Vector() *mat.VecDense {
	a.started = false
	if len(a.F) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(a.F), a.F)
}
