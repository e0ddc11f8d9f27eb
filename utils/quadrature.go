package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussLegendre returns the n point Gauss-Legendre rule on [-1,1], nodes
// ascending, from the eigen decomposition of the Jacobi matrix.
func GaussLegendre(n int) (x, w []float64) {
	switch {
	case n < 1:
		panic("quadrature needs at least one point")
	case n == 1:
		return []float64{0}, []float64{2}
	}
	JJ := mat.NewSymDense(n, nil)
	for i := 1; i < n; i++ {
		ip := float64(i)
		JJ.SetSym(i-1, i, ip/math.Sqrt(4*ip*ip-1))
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	VV := mat.NewDense(n, n, nil)
	eig.VectorsTo(VV)
	w = make([]float64, n)
	for j := 0; j < n; j++ {
		v := VV.At(0, j)
		w[j] = 2 * v * v
	}
	return
}
