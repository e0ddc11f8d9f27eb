package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Relative size below which an eigenvalue of inv(A) M is taken as zero,
// i.e. an infinite eigenvalue of A w = lambda M w.
const zeroMuTol = 1.e-12

// eigenpairs is the kernel used by the modal solver.
var eigenpairs = smallestEigenpairs

// smallestEigenpairs solves A w = lambda M w for the nev eigenvalues of
// smallest magnitude, with A symmetric positive definite or M symmetric
// positive definite. The values are returned in ascending magnitude and the
// columns of W are M-normalized. Fewer than nev pairs are returned when the
// problem has fewer finite eigenvalues.
func smallestEigenpairs(A, M *mat.SymDense, nev int) (values []complex128, W *mat.Dense, err error) {
	var cholM mat.Cholesky
	if cholM.Factorize(M) {
		return symmetricPairs(A, &cholM, nev)
	}
	return generalPairs(A, M, nev)
}

// symmetricPairs reduces the problem with M = L L^T to the standard form
// inv(L) A inv(L^T) y = lambda y, then recovers w = inv(L^T) y.
func symmetricPairs(A *mat.SymDense, cholM *mat.Cholesky, nev int) (values []complex128, W *mat.Dense, err error) {
	var (
		n    = A.SymmetricDim()
		L, U mat.TriDense
		X, Y mat.Dense
	)
	cholM.LTo(&L)
	cholM.UTo(&U)
	if err = tolerable(X.Solve(&L, A)); err != nil {
		return nil, nil, fmt.Errorf("%w: reduce to standard form: %v", ErrFactorization, err)
	}
	if err = tolerable(Y.Solve(&L, X.T())); err != nil {
		return nil, nil, fmt.Errorf("%w: reduce to standard form: %v", ErrFactorization, err)
	}
	C := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			C.SetSym(i, j, 0.5*(Y.At(i, j)+Y.At(j, i)))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(C, true); !ok {
		return nil, nil, fmt.Errorf("%w: symmetric eigensolver failed", ErrEigensolveNonConvergence)
	}
	var (
		lambda  = es.Values(nil)
		V, Wall mat.Dense
	)
	es.VectorsTo(&V)
	if err = tolerable(Wall.Solve(&U, &V)); err != nil {
		return nil, nil, fmt.Errorf("%w: recover eigenvectors: %v", ErrFactorization, err)
	}
	order := byMagnitude(len(lambda), func(i int) float64 { return math.Abs(lambda[i]) })
	if nev > len(order) {
		nev = len(order)
	}
	if nev == 0 {
		return nil, &mat.Dense{}, nil
	}
	values = make([]complex128, nev)
	W = mat.NewDense(n, nev, nil)
	for k := 0; k < nev; k++ {
		values[k] = complex(lambda[order[k]], 0)
		W.SetCol(k, mat.Col(nil, order[k], &Wall))
	}
	return
}

// generalPairs handles a semi-definite M, as produced by lumping with
// massless degrees of freedom. The eigenvalues mu of inv(A) M map onto
// lambda = 1/mu; mu = 0 are the infinite eigenvalues and are dropped.
func generalPairs(A, M *mat.SymDense, nev int) (values []complex128, W *mat.Dense, err error) {
	var (
		n     = A.SymmetricDim()
		cholA mat.Cholesky
		B     mat.Dense
	)
	if ok := cholA.Factorize(A); !ok {
		return nil, nil, fmt.Errorf("%w: shifted stiffness with a singular mass, try a non-zero omega shift",
			ErrFactorization)
	}
	if err = tolerable(cholA.SolveTo(&B, M)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFactorization, err)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(&B, mat.EigenRight); !ok {
		return nil, nil, fmt.Errorf("%w: general eigensolver failed", ErrEigensolveNonConvergence)
	}
	var (
		mu     = eig.Values(nil)
		vecs   mat.CDense
		muMax  float64
		finite []int
	)
	eig.VectorsTo(&vecs)
	for _, m := range mu {
		muMax = math.Max(muMax, cmplx.Abs(m))
	}
	for i, m := range mu {
		if muMax > 0 && cmplx.Abs(m) > zeroMuTol*muMax {
			finite = append(finite, i)
		}
	}
	// Largest |mu| first is smallest |lambda| first
	order := byMagnitude(len(finite), func(k int) float64 { return -cmplx.Abs(mu[finite[k]]) })
	if nev > len(order) {
		nev = len(order)
	}
	if nev == 0 {
		return nil, &mat.Dense{}, nil
	}
	values = make([]complex128, nev)
	W = mat.NewDense(n, nev, nil)
	w := mat.NewVecDense(n, nil)
	for k := 0; k < nev; k++ {
		j := finite[order[k]]
		values[k] = 1 / mu[j]
		for i := 0; i < n; i++ {
			w.SetVec(i, real(vecs.At(i, j)))
		}
		if mw := mat.Inner(w, M, w); mw > 0 {
			w.ScaleVec(1/math.Sqrt(mw), w)
		}
		W.SetCol(k, w.RawVector().Data)
	}
	return
}

// tolerable drops the condition number warnings gonum attaches to solutions
// that were nevertheless computed.
func tolerable(err error) error {
	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil
	}
	return err
}

// byMagnitude returns the indices 0..n-1 ordered by ascending key, stable.
func byMagnitude(n int, key func(i int) float64) (order []int) {
	order = make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return key(order[a]) < key(order[b]) })
	return
}
