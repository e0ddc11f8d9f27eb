// Package femm holds region model machines: the sources of element level
// stiffness, mass and load contributions for a homogeneous region.
package femm

import (
	"errors"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/field"
)

var ErrNotAssociated = errors.New("femm: geometry not associated")

// Machine is everything the analyses need from a region. All contributions
// are keyed by the free degree of freedom numbering of u.
type Machine interface {
	// AssociateGeometry precomputes geometry derived quantities. It is
	// called once per analysis and may be called again safely.
	AssociateGeometry(geom *field.Field) error
	assembly.StiffnessSource
	assembly.MassSource
	assembly.LoadSource
	assembly.TractionSource
}

var (
	_ Machine = (*Bar)(nil)
	_ Machine = (*PointFacets)(nil)
)
