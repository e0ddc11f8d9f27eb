package femm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/field"
)

// PointFacets is a set of point boundary facets, the facets of a bar mesh.
// A traction on it loads each node with Area times the traction at the node.
// It contributes no stiffness, mass or body loads.
type PointFacets struct {
	Nodes []int
	Area  float64

	associated bool
}

func NewPointFacets(nodes []int, area float64) (p *PointFacets, err error) {
	if len(nodes) == 0 {
		err = fmt.Errorf("point facet set without nodes")
		return
	}
	p = &PointFacets{Nodes: nodes, Area: area}
	return
}

func (p *PointFacets) AssociateGeometry(geom *field.Field) error {
	for _, n := range p.Nodes {
		if n < 0 || n >= geom.NNodes() {
			return fmt.Errorf("point facet: %w: node %d of %d", field.ErrOutOfRange, n, geom.NNodes())
		}
	}
	p.associated = true
	return nil
}

func (p *PointFacets) Stiffness(a assembly.SysmatAssembler, geom, u *field.Field) (mat.Matrix, error) {
	a.Start(u.NFree(), u.NFree())
	return a.Matrix(), nil
}

func (p *PointFacets) Mass(a assembly.SysmatAssembler, geom, u *field.Field) (mat.Matrix, error) {
	a.Start(u.NFree(), u.NFree())
	return a.Matrix(), nil
}

func (p *PointFacets) NonzeroEBCLoads(a *assembly.Vector, geom, u *field.Field) (*mat.VecDense, error) {
	a.Start(u.NFree())
	return a.Vector(), nil
}

func (p *PointFacets) ThermalLoads(a *assembly.Vector, geom, u, dT *field.Field) (*mat.VecDense, error) {
	a.Start(u.NFree())
	return a.Vector(), nil
}

func (p *PointFacets) TractionLoads(a *assembly.Vector, geom, u *field.Field, traction field.Value) (*mat.VecDense, error) {
	if !p.associated {
		return nil, ErrNotAssociated
	}
	a.Start(u.NFree())
	nodes := geom.Nodes()
	for _, n := range p.Nodes {
		fe := traction.Vector(nodes.XYZ(n), u.NComp())
		for i := range fe {
			fe[i] *= p.Area
		}
		if err := a.Assemble(fe, u.EqNums([]int{n})); err != nil {
			return nil, fmt.Errorf("point facet %d: %w", n, err)
		}
	}
	return a.Vector(), nil
}
