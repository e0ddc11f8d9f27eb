package femm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/utils"
)

// Bar is a region of 2 node linear axial bars (truss members) in one, two or
// three spatial dimensions. Each node carries one displacement component per
// spatial dimension.
type Bar struct {
	Conn     [][2]int
	Area     float64
	Material Material
	NGauss   int // integration points for distributed loads, 2 when zero

	lengths []float64
	dirs    [][]float64 // unit direction cosines, node 0 to node 1
	dim     int
}

func NewBar(conn [][2]int, area float64, m Material) (b *Bar, err error) {
	if len(conn) == 0 {
		err = fmt.Errorf("bar region without elements")
		return
	}
	if area <= 0 {
		err = fmt.Errorf("bar region: cross section area must be positive, got %g", area)
		return
	}
	if err = m.Validate(); err != nil {
		return
	}
	b = &Bar{Conn: conn, Area: area, Material: m}
	return
}

func (b *Bar) AssociateGeometry(geom *field.Field) (err error) {
	var (
		nodes   = geom.Nodes()
		dim     = geom.NComp()
		lengths = make([]float64, len(b.Conn))
		dirs    = make([][]float64, len(b.Conn))
	)
	for e, c := range b.Conn {
		for _, n := range c {
			if n < 0 || n >= nodes.Count() {
				return fmt.Errorf("bar %d: %w: node %d of %d", e, field.ErrOutOfRange, n, nodes.Count())
			}
		}
		x0, x1 := nodes.XYZ(c[0]), nodes.XYZ(c[1])
		d := make([]float64, dim)
		var L2 float64
		for i := range d {
			d[i] = x1[i] - x0[i]
			L2 += d[i] * d[i]
		}
		L := math.Sqrt(L2)
		if L < utils.NODETOL {
			return fmt.Errorf("bar %d between nodes %d and %d has zero length", e, c[0], c[1])
		}
		for i := range d {
			d[i] /= L
		}
		lengths[e], dirs[e] = L, d
	}
	b.lengths, b.dirs, b.dim = lengths, dirs, dim
	return
}

func (b *Bar) check(u *field.Field) error {
	if b.lengths == nil {
		return ErrNotAssociated
	}
	if u.NComp() != b.dim {
		return fmt.Errorf("bar region in %d dimensions given a field of %d components", b.dim, u.NComp())
	}
	return nil
}

// elementStiffness is (EA/L) [cc' -cc'; -cc' cc'].
func (b *Bar) elementStiffness(e int) (Ke *mat.Dense) {
	var (
		d = b.dim
		k = b.Material.E * b.Area / b.lengths[e]
		c = b.dirs[e]
	)
	Ke = mat.NewDense(2*d, 2*d, nil)
	for a := 0; a < 2; a++ {
		for bb := 0; bb < 2; bb++ {
			sign := -1.
			if a == bb {
				sign = 1
			}
			for i := 0; i < d; i++ {
				for j := 0; j < d; j++ {
					Ke.Set(a*d+i, bb*d+j, sign*k*c[i]*c[j])
				}
			}
		}
	}
	return
}

// elementMass is the consistent mass rho*A*L/6 [2I I; I 2I].
func (b *Bar) elementMass(e int) (Me *mat.Dense) {
	var (
		d = b.dim
		m = b.Material.Rho * b.Area * b.lengths[e] / 6
	)
	Me = mat.NewDense(2*d, 2*d, nil)
	for a := 0; a < 2; a++ {
		for bb := 0; bb < 2; bb++ {
			f := m
			if a == bb {
				f = 2 * m
			}
			for i := 0; i < d; i++ {
				Me.Set(a*d+i, bb*d+i, f)
			}
		}
	}
	return
}

func (b *Bar) Stiffness(a assembly.SysmatAssembler, geom, u *field.Field) (mat.Matrix, error) {
	if err := b.check(u); err != nil {
		return nil, err
	}
	a.Start(u.NFree(), u.NFree())
	for e, c := range b.Conn {
		eqs := utils.Index(u.EqNums(c[:]))
		if err := a.Assemble(b.elementStiffness(e), eqs, eqs); err != nil {
			return nil, fmt.Errorf("bar %d: %w", e, err)
		}
	}
	return a.Matrix(), nil
}

func (b *Bar) Mass(a assembly.SysmatAssembler, geom, u *field.Field) (mat.Matrix, error) {
	if err := b.check(u); err != nil {
		return nil, err
	}
	a.Start(u.NFree(), u.NFree())
	for e, c := range b.Conn {
		eqs := utils.Index(u.EqNums(c[:]))
		if err := a.Assemble(b.elementMass(e), eqs, eqs); err != nil {
			return nil, fmt.Errorf("bar %d: %w", e, err)
		}
	}
	return a.Matrix(), nil
}

// NonzeroEBCLoads assembles -Ke*ue for the elements touching non zero
// prescribed displacements.
func (b *Bar) NonzeroEBCLoads(a *assembly.Vector, geom, u *field.Field) (*mat.VecDense, error) {
	if err := b.check(u); err != nil {
		return nil, err
	}
	a.Start(u.NFree())
	for e, c := range b.Conn {
		ue := u.GatherFixedValues(c[:])
		if !anyNonZero(ue) {
			continue
		}
		var fe mat.VecDense
		fe.MulVec(b.elementStiffness(e), mat.NewVecDense(len(ue), ue))
		fe.ScaleVec(-1, &fe)
		if err := a.Assemble(fe.RawVector().Data, u.EqNums(c[:])); err != nil {
			return nil, fmt.Errorf("bar %d: %w", e, err)
		}
	}
	return a.Vector(), nil
}

// ThermalLoads assembles the equivalent nodal forces E*A*alpha*dT [-c; c] of
// the free thermal elongation, dT being the element average.
func (b *Bar) ThermalLoads(a *assembly.Vector, geom, u, dT *field.Field) (*mat.VecDense, error) {
	if err := b.check(u); err != nil {
		return nil, err
	}
	a.Start(u.NFree())
	d := b.dim
	for e, c := range b.Conn {
		t := 0.5 * (dT.At(c[0], 0) + dT.At(c[1], 0))
		if t == 0 {
			continue
		}
		N := b.Material.E * b.Area * b.Material.Alpha * t
		fe := make([]float64, 2*d)
		for i := 0; i < d; i++ {
			fe[i] = -N * b.dirs[e][i]
			fe[d+i] = N * b.dirs[e][i]
		}
		if err := a.Assemble(fe, u.EqNums(c[:])); err != nil {
			return nil, fmt.Errorf("bar %d: %w", e, err)
		}
	}
	return a.Vector(), nil
}

// TractionLoads integrates a distributed load per unit length along every
// bar. A function traction is evaluated at each integration point.
func (b *Bar) TractionLoads(a *assembly.Vector, geom, u *field.Field, traction field.Value) (*mat.VecDense, error) {
	if err := b.check(u); err != nil {
		return nil, err
	}
	a.Start(u.NFree())
	if !traction.IsSet() {
		return a.Vector(), nil
	}
	var (
		d      = b.dim
		ng     = b.NGauss
		nodes  = geom.Nodes()
		xq     = make([]float64, d)
		fe     = make([]float64, 2*d)
		shapes = make([]float64, 2)
	)
	if ng == 0 {
		ng = 2
	}
	xi, w := utils.GaussLegendre(ng)
	for e, c := range b.Conn {
		x0, x1 := nodes.XYZ(c[0]), nodes.XYZ(c[1])
		J := b.lengths[e] / 2
		for i := range fe {
			fe[i] = 0
		}
		for q := range xi {
			shapes[0], shapes[1] = (1-xi[q])/2, (1+xi[q])/2
			for i := 0; i < d; i++ {
				xq[i] = shapes[0]*x0[i] + shapes[1]*x1[i]
			}
			tr := traction.Vector(xq, d)
			for n := 0; n < 2; n++ {
				for i := 0; i < d; i++ {
					fe[n*d+i] += w[q] * shapes[n] * tr[i] * J
				}
			}
		}
		if err := a.Assemble(fe, u.EqNums(c[:])); err != nil {
			return nil, fmt.Errorf("bar %d: %w", e, err)
		}
	}
	return a.Vector(), nil
}

// Lengths returns the element lengths found by AssociateGeometry.
func (b *Bar) Lengths() []float64 { return b.lengths }

// AxialForces returns the axial force of every bar for the displacement
// field u, tension positive, net of the free thermal elongation when dT is
// not nil.
func (b *Bar) AxialForces(u, dT *field.Field) (N []float64, err error) {
	if err = b.check(u); err != nil {
		return
	}
	N = make([]float64, len(b.Conn))
	for e, c := range b.Conn {
		var (
			d  = b.dim
			ue = u.GatherValues(c[:])
			du float64
		)
		for i := 0; i < d; i++ {
			du += (ue[d+i] - ue[i]) * b.dirs[e][i]
		}
		strain := du / b.lengths[e]
		if dT != nil {
			strain -= b.Material.Alpha * 0.5 * (dT.At(c[0], 0) + dT.At(c[1], 0))
		}
		N[e] = b.Material.E * b.Area * strain
	}
	return
}

func anyNonZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}
