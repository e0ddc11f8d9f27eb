package femm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/utils"
)

var unit = Material{Name: "unit", E: 1, Rho: 1, Alpha: 1}

func fields(t *testing.T, xyz [][]float64) (geom, u *field.Field) {
	ns, err := field.NewNodeSet(xyz)
	require.NoError(t, err)
	geom = field.NewGeometry(ns)
	u = field.New("u", ns, ns.Dim())
	return
}

func TestNewBarValidation(t *testing.T) {
	_, err := NewBar(nil, 1, unit)
	assert.Error(t, err)
	_, err = NewBar([][2]int{{0, 1}}, 0, unit)
	assert.Error(t, err)
	_, err = NewBar([][2]int{{0, 1}}, 1, Material{Name: "bad"})
	assert.Error(t, err)
}

func TestBarAssociateGeometry(t *testing.T) {
	geom, u := fields(t, [][]float64{{0, 0}, {3, 4}, {3, 4}})
	b, err := NewBar([][2]int{{0, 1}}, 1, unit)
	require.NoError(t, err)
	u.NumberDOFs()
	_, err = b.Stiffness(assembly.NewSparse(), geom, u)
	assert.ErrorIs(t, err, ErrNotAssociated)

	require.NoError(t, b.AssociateGeometry(geom))
	require.NoError(t, b.AssociateGeometry(geom))
	assert.Equal(t, []float64{5}, b.Lengths())

	zero, _ := NewBar([][2]int{{1, 2}}, 1, unit)
	assert.Error(t, zero.AssociateGeometry(geom))
	outside, _ := NewBar([][2]int{{0, 3}}, 1, unit)
	assert.ErrorIs(t, outside.AssociateGeometry(geom), field.ErrOutOfRange)

	scalar := field.New("T", geom.Nodes(), 1)
	scalar.NumberDOFs()
	_, err = b.Stiffness(assembly.NewSparse(), geom, scalar)
	assert.Error(t, err)
}

func TestBarInclinedStiffness(t *testing.T) {
	geom, u := fields(t, [][]float64{{0, 0}, {3, 4}})
	b, _ := NewBar([][2]int{{0, 1}}, 2, Material{Name: "m", E: 10})
	require.NoError(t, b.AssociateGeometry(geom))
	u.NumberDOFs()
	K, err := b.Stiffness(assembly.NewSparse(), geom, u)
	require.NoError(t, err)
	k := 10. * 2 / 5
	c, s := 0.6, 0.8
	assert.InDelta(t, k*c*c, K.At(0, 0), 1e-14)
	assert.InDelta(t, k*c*s, K.At(0, 1), 1e-14)
	assert.InDelta(t, -k*s*s, K.At(1, 3), 1e-14)
	assert.InDelta(t, k*s*s, K.At(3, 3), 1e-14)

	// A rigid translation produces no force
	var f mat.VecDense
	f.MulVec(K, mat.NewVecDense(4, []float64{1, 2, 1, 2}))
	assert.InDelta(t, 0, mat.Norm(&f, 2), 1e-13)
}

func TestBarMass(t *testing.T) {
	geom, u := fields(t, [][]float64{{0}, {2}, {5}})
	b, _ := NewBar([][2]int{{0, 1}, {1, 2}}, 0.5, Material{Name: "m", E: 1, Rho: 4})
	require.NoError(t, b.AssociateGeometry(geom))
	u.NumberDOFs()
	total := 4 * 0.5 * 5.
	for _, a := range []assembly.SysmatAssembler{assembly.NewSparse(), assembly.NewHRZLumping()} {
		M, err := b.Mass(a, geom, u)
		require.NoError(t, err)
		var sum float64
		utils.DoNonZero(M, func(_, _ int, v float64) { sum += v })
		assert.InDelta(t, total, sum, 1e-12)
	}
	Ml, err := b.Mass(assembly.NewHRZLumping(), geom, u)
	require.NoError(t, err)
	assert.InDelta(t, 2, Ml.At(0, 0), 1e-14)
	assert.InDelta(t, 5, Ml.At(1, 1), 1e-14)
	assert.Equal(t, 0., Ml.At(0, 1))
}

func TestBarNonzeroEBCLoads(t *testing.T) {
	geom, u := fields(t, [][]float64{{0}, {1}, {2}})
	b, _ := NewBar([][2]int{{0, 1}, {1, 2}}, 1, Material{Name: "m", E: 3})
	require.NoError(t, b.AssociateGeometry(geom))
	require.NoError(t, u.SetEBC(0, 0, 0))
	require.NoError(t, u.SetEBC(2, 0, 2))
	u.ApplyEBC()
	u.NumberDOFs()
	F, err := b.NonzeroEBCLoads(assembly.NewVector(), geom, u)
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, F.RawVector().Data)
}

func TestBarThermalLoads(t *testing.T) {
	geom, u := fields(t, [][]float64{{0, 0}, {0, 2}, {0, 4}})
	b, _ := NewBar([][2]int{{0, 1}, {1, 2}}, 2, Material{Name: "m", E: 5, Alpha: 0.1})
	require.NoError(t, b.AssociateGeometry(geom))
	require.NoError(t, u.SetEBC(0, 0, 0))
	require.NoError(t, u.SetEBC(0, 1, 0))
	u.NumberDOFs()
	dT := field.FromValue("dT", geom.Nodes(), field.Constant(3))
	F, err := b.ThermalLoads(assembly.NewVector(), geom, u, dT)
	require.NoError(t, err)
	// Interior node forces cancel; the free end is pushed outward by E*A*alpha*dT
	assert.InDeltaSlice(t, []float64{0, 0, 0, 3}, F.RawVector().Data, 1e-14)

	// Nothing is produced without a temperature change
	zero := field.FromValue("dT", geom.Nodes(), field.Value{})
	F, err = b.ThermalLoads(assembly.NewVector(), geom, u, zero)
	require.NoError(t, err)
	assert.Equal(t, 0., mat.Norm(F, 2))
}

func TestBarTractionLoads(t *testing.T) {
	geom, u := fields(t, [][]float64{{0}, {2}})
	b, _ := NewBar([][2]int{{0, 1}}, 1, unit)
	require.NoError(t, b.AssociateGeometry(geom))
	u.NumberDOFs()

	F, err := b.TractionLoads(assembly.NewVector(), geom, u, field.Constant(3))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 3}, F.RawVector().Data, 1e-14)

	// q(x) = x over [0,2]: nodal loads are int N_a x dx = 2/3 and 4/3
	F, err = b.TractionLoads(assembly.NewVector(), geom, u, field.Function(func(xyz []float64) []float64 {
		return []float64{xyz[0]}
	}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2. / 3, 4. / 3}, F.RawVector().Data, 1e-14)

	F, err = b.TractionLoads(assembly.NewVector(), geom, u, field.Value{})
	require.NoError(t, err)
	assert.Equal(t, 0., mat.Norm(F, 2))
}

func TestBarAxialForces(t *testing.T) {
	geom, u := fields(t, [][]float64{{0, 0}, {3, 4}})
	b, _ := NewBar([][2]int{{0, 1}}, 1, Material{Name: "m", E: 10, Alpha: 0.5})
	require.NoError(t, b.AssociateGeometry(geom))
	require.NoError(t, u.SetEBC(1, 0, 0.3))
	require.NoError(t, u.SetEBC(1, 1, 0.4))
	u.ApplyEBC()
	N, err := b.AxialForces(u, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10*0.5/5, N[0], 1e-14)
	dT := field.FromValue("dT", geom.Nodes(), field.Constant(0.2))
	N, err = b.AxialForces(u, dT)
	require.NoError(t, err)
	assert.InDelta(t, 0, N[0], 1e-14)
}

func TestPointFacets(t *testing.T) {
	geom, u := fields(t, [][]float64{{0, 0}, {1, 0}, {2, 0}})
	_, err := NewPointFacets(nil, 1)
	assert.Error(t, err)
	p, err := NewPointFacets([]int{1, 2}, 0.5)
	require.NoError(t, err)
	require.NoError(t, u.SetEBC(1, 1, 0))
	u.NumberDOFs()
	_, err = p.TractionLoads(assembly.NewVector(), geom, u, field.Constant(1, 2))
	assert.ErrorIs(t, err, ErrNotAssociated)
	require.NoError(t, p.AssociateGeometry(geom))
	F, err := p.TractionLoads(assembly.NewVector(), geom, u, field.Function(func(xyz []float64) []float64 {
		return []float64{xyz[0], 2}
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.5, 1, 1}, F.RawVector().Data)

	K, err := p.Stiffness(assembly.NewSparse(), geom, u)
	require.NoError(t, err)
	r, c := K.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 0, K.(utils.DOK).NNZ())

	bad, _ := NewPointFacets([]int{3}, 1)
	assert.ErrorIs(t, bad.AssociateGeometry(geom), field.ErrOutOfRange)
}

func TestMaterials(t *testing.T) {
	mats, err := ParseMaterials([]byte(`
[steel]
E = 200e9
Rho = 7850
Alpha = 1.2e-5

[rubber]
E = 0.01e9
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"rubber", "steel"}, mats.Names())
	assert.Equal(t, 200e9, mats["steel"].E)
	assert.Equal(t, 0., mats["rubber"].Rho)

	_, err = ParseMaterials([]byte("[bad]\nRho = 1\n"))
	assert.Error(t, err)
	_, err = ParseMaterials([]byte("[bad]\nE = -1\n"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "materials.ini")
	require.NoError(t, os.WriteFile(path, []byte("[al]\nE = 70e9\nRho = 2700\n"), 0o644))
	mats, err = LoadMaterials(path)
	require.NoError(t, err)
	assert.Equal(t, 2700., mats["al"].Rho)
	_, err = LoadMaterials(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}
