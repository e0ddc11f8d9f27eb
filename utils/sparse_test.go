package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDOKAccumulate(t *testing.T) {
	K := NewDOK(3, 3)
	K.AddAt(0, 0, 1)
	K.AddAt(0, 0, 2)
	K.AddAt(1, 2, 0)
	assert.Equal(t, 3., K.At(0, 0))
	assert.Equal(t, 1, K.NNZ())

	A := mat.NewDense(3, 3, []float64{
		1, -1, 0,
		-1, 1, 0,
		0, 0, 5,
	})
	require.NoError(t, K.AddMatrix(A))
	require.NoError(t, K.AddMatrix(K.ToCSR()))
	assert.Equal(t, 8., K.At(0, 0))
	assert.Equal(t, -2., K.At(1, 0))
	assert.Equal(t, 10., K.At(2, 2))

	assert.Error(t, K.AddMatrix(mat.NewDense(2, 2, nil)))

	K.SetReadOnly("K")
	assert.Panics(t, func() { K.AddAt(0, 0, 1) })
}

func TestCSRToSymDense(t *testing.T) {
	K := NewDOK(2, 2)
	K.AddAt(0, 0, 2)
	K.AddAt(0, 1, -1)
	K.AddAt(1, 0, -1)
	K.AddAt(1, 1, 2)
	C := K.ToCSR()
	assert.True(t, C.IsSymmetric(0))
	S := C.ToSymDense()
	assert.Equal(t, -1., S.At(1, 0))
	assert.Equal(t, 2., S.At(1, 1))

	K.AddAt(1, 0, 1e-3)
	assert.False(t, K.ToCSR().IsSymmetric(1e-6))
}

func TestDoNonZeroDenseFallback(t *testing.T) {
	var (
		A     = mat.NewDense(2, 2, []float64{0, 1, 2, 0})
		count int
		sum   float64
	)
	DoNonZero(A, func(i, j int, v float64) {
		count++
		sum += v
	})
	assert.Equal(t, 2, count)
	assert.Equal(t, 3., sum)
	DoNonZero(nil, func(i, j int, v float64) { t.Fail() })
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{1, 2}))
	assert.False(t, IsFinite([]float64{1, math.NaN()}))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.True(t, IsFinite(&mat.VecDense{}))
	assert.False(t, IsFinite(mat.NewVecDense(1, []float64{math.Inf(-1)})))
	assert.False(t, IsFinite(mat.NewDense(1, 1, []float64{math.NaN()})))
}

func TestIndex(t *testing.T) {
	I := Index{3, -1, 0, 7}
	assert.Equal(t, Index{0, 2, 3}, I.Find(GreaterOrEqual, 0))
	assert.Equal(t, Index{1}, I.Find(Less, 0))
	assert.Equal(t, 7, I.Max())
	assert.Equal(t, -1, Index{}.Max())
}

func TestGaussLegendre(t *testing.T) {
	x, w := GaussLegendre(2)
	assert.InDelta(t, -1/math.Sqrt(3), x[0], 1e-14)
	assert.InDelta(t, 1/math.Sqrt(3), x[1], 1e-14)
	assert.InDelta(t, 1, w[0], 1e-14)
	assert.InDelta(t, 1, w[1], 1e-14)

	// An n point rule integrates polynomials of degree 2n-1 exactly
	for n := 1; n <= 5; n++ {
		x, w = GaussLegendre(n)
		var sum float64
		for i := range x {
			sum += w[i] * math.Pow(x[i], float64(2*n-2))
		}
		assert.InDelta(t, 2/float64(2*n-1), sum, 1e-13, "n = %d", n)
	}
	assert.Panics(t, func() { GaussLegendre(0) })
}
