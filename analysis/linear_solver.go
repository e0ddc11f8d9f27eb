package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/utils"
)

type SolverState uint8

const (
	Assembled SolverState = iota
	Factorized
	Solved
)

func (s SolverState) String() string {
	switch s {
	case Assembled:
		return "assembled"
	case Factorized:
		return "factorized"
	case Solved:
		return "solved"
	}
	return fmt.Sprintf("SolverState(%d)", uint8(s))
}

// LinearSolver solves K U = F for a symmetric positive definite K. The
// factorization is computed once and reused by every later Solve.
type LinearSolver struct {
	K     *mat.SymDense
	F     *mat.VecDense
	state SolverState
	chol  mat.Cholesky
	u     *mat.VecDense
}

func NewLinearSolver(K mat.Symmetric, F mat.Vector) (ls *LinearSolver, err error) {
	n := K.SymmetricDim()
	if n == 0 {
		err = fmt.Errorf("%w: empty system", ErrInvalidInput)
		return
	}
	if F.Len() != n {
		err = fmt.Errorf("%w: load of length %d for a system of order %d", ErrInvalidInput, F.Len(), n)
		return
	}
	ls = &LinearSolver{
		K: mat.NewSymDense(n, nil),
		F: mat.NewVecDense(n, nil),
	}
	ls.K.CopySym(K)
	ls.F.CopyVec(F)
	return
}

func (ls *LinearSolver) State() SolverState { return ls.state }

// Factorize moves the solver from Assembled to Factorized. It fails with
// ErrFactorization when K is not positive definite and is never retried.
func (ls *LinearSolver) Factorize() error {
	if ls.state != Assembled {
		return nil
	}
	if ok := ls.chol.Factorize(ls.K); !ok {
		return fmt.Errorf("%w: order %d", ErrFactorization, ls.K.SymmetricDim())
	}
	ls.state = Factorized
	return nil
}

// Solve returns U, factorizing first when needed. The returned vector is a
// copy owned by the caller.
func (ls *LinearSolver) Solve() (U *mat.VecDense, err error) {
	if err = ls.Factorize(); err != nil {
		return
	}
	u := mat.NewVecDense(ls.F.Len(), nil)
	if err = tolerable(ls.chol.SolveVecTo(u, ls.F)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFactorization, err)
	}
	if !utils.IsFinite(u) {
		return nil, fmt.Errorf("%w: non-finite displacements", ErrFactorization)
	}
	ls.u = u
	ls.state = Solved
	U = mat.VecDenseCopyOf(u)
	return
}

// Work is the elastic work 1/2 F.U of the last solution.
func (ls *LinearSolver) Work() float64 {
	if ls.state != Solved {
		return 0
	}
	return 0.5 * mat.Dot(ls.F, ls.u)
}

// symmetric expands an assembled operator into dense symmetric storage. The
// lower triangle must match the upper one to within a tolerance relative to
// the largest entry.
func symmetric(name string, A utils.CSR) (*mat.SymDense, error) {
	var scale float64
	A.DoNonZero(func(_, _ int, v float64) { scale = math.Max(scale, math.Abs(v)) })
	if !A.IsSymmetric(utils.NODETOL * scale) {
		return nil, fmt.Errorf("%w: %s is not symmetric", ErrInvalidInput, name)
	}
	return A.ToSymDense(), nil
}
