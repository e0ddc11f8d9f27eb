package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/utils"
)

// StiffnessSource returns a region's stiffness keyed by the numbering of u.
type StiffnessSource interface {
	Stiffness(a SysmatAssembler, geom, u *field.Field) (mat.Matrix, error)
}

// MassSource returns a region's mass keyed by the numbering of u.
type MassSource interface {
	Mass(a SysmatAssembler, geom, u *field.Field) (mat.Matrix, error)
}

// LoadSource returns the loads a region produces from the prescribed
// displacements and from a temperature change.
type LoadSource interface {
	NonzeroEBCLoads(a *Vector, geom, u *field.Field) (*mat.VecDense, error)
	ThermalLoads(a *Vector, geom, u, dT *field.Field) (*mat.VecDense, error)
}

// TractionSource returns the load of a traction applied over its facets.
type TractionSource interface {
	TractionLoads(a *Vector, geom, u *field.Field, traction field.Value) (*mat.VecDense, error)
}

// Global accumulates K, M and F over regions. The operators are allocated on
// the first contribution and are owned by one analysis call. Accumulation is
// a plain sum, so the region order only changes floating point rounding.
type Global struct {
	Geom, U *field.Field
	NFree   int
	Lumped  bool // assemble mass with HRZ lumping

	k, m       utils.DOK
	f          []float64
	hasK, hasM bool
	hasF       bool
}

func NewGlobal(geom, u *field.Field) (g *Global, err error) {
	if !u.Numbered() {
		err = fmt.Errorf("field %q must be numbered before assembly", u.Name)
		return
	}
	g = &Global{Geom: geom, U: u, NFree: u.NFree()}
	return
}

func (g *Global) stiffness() utils.DOK {
	if !g.hasK {
		g.k = utils.NewDOK(g.NFree, g.NFree)
		g.hasK = true
	}
	return g.k
}

func (g *Global) mass() utils.DOK {
	if !g.hasM {
		g.m = utils.NewDOK(g.NFree, g.NFree)
		g.hasM = true
	}
	return g.m
}

func (g *Global) load() []float64 {
	if !g.hasF {
		g.f = make([]float64, g.NFree)
		g.hasF = true
	}
	return g.f
}

func (g *Global) AddStiffness(src StiffnessSource) (err error) {
	var Kr mat.Matrix
	if Kr, err = src.Stiffness(NewSparse(), g.Geom, g.U); err != nil {
		return
	}
	if err = g.stiffness().AddMatrix(Kr); err != nil {
		return fmt.Errorf("stiffness: %w", err)
	}
	return
}

func (g *Global) AddMass(src MassSource) (err error) {
	var (
		a  SysmatAssembler = NewSparse()
		Mr mat.Matrix
	)
	if g.Lumped {
		a = NewHRZLumping()
	}
	if Mr, err = src.Mass(a, g.Geom, g.U); err != nil {
		return
	}
	if err = g.mass().AddMatrix(Mr); err != nil {
		return fmt.Errorf("mass: %w", err)
	}
	return
}

func (g *Global) AddNonzeroEBCLoads(src LoadSource) (err error) {
	var F *mat.VecDense
	if F, err = src.NonzeroEBCLoads(NewVector(), g.Geom, g.U); err != nil {
		return
	}
	return g.addLoad("prescribed displacement load", F)
}

func (g *Global) AddThermalLoads(src LoadSource, dT *field.Field) (err error) {
	var F *mat.VecDense
	if F, err = src.ThermalLoads(NewVector(), g.Geom, g.U, dT); err != nil {
		return
	}
	return g.addLoad("thermal load", F)
}

func (g *Global) AddTractionLoads(src TractionSource, traction field.Value) (err error) {
	var F *mat.VecDense
	if F, err = src.TractionLoads(NewVector(), g.Geom, g.U, traction); err != nil {
		return
	}
	return g.addLoad("traction load", F)
}

func (g *Global) addLoad(what string, F *mat.VecDense) error {
	var n int
	if F != nil {
		n = F.Len()
	}
	if n != g.NFree {
		return fmt.Errorf("%s of length %d, expected %d", what, n, g.NFree)
	}
	f := g.load()
	for i := range f {
		f[i] += F.AtVec(i)
	}
	return nil
}

// Constructed reports which operators have received a contribution.
func (g *Global) Constructed() (K, M, F bool) { return g.hasK, g.hasM, g.hasF }

// Stiffness returns K in compressed form, zero if nothing was assembled.
// K is frozen afterwards: a later stiffness contribution panics.
func (g *Global) Stiffness() utils.CSR {
	g.stiffness()
	return g.k.SetReadOnly("K").ToCSR()
}

// Mass returns M in compressed form, zero if nothing was assembled. M is
// frozen afterwards.
func (g *Global) Mass() utils.CSR {
	g.mass()
	return g.m.SetReadOnly("M").ToCSR()
}

// Load returns a copy of F.
func (g *Global) Load() *mat.VecDense {
	f := g.load()
	if len(f) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(f), append([]float64(nil), f...))
}
