// Package analysis runs linear static and modal analyses over a set of
// regions, from typed configurations or from a Model Data Exchange record.
package analysis

import (
	"fmt"
	"math"

	"github.com/notargets/gofea/bcs"
	"github.com/notargets/gofea/femm"
	"github.com/notargets/gofea/field"
)

const DefaultNEigvs = 7

// Region is one homogeneous subdomain. FEMMStiffness and FEMMMass override
// FEMM in modal analysis. BodyLoad is accepted and ignored.
type Region struct {
	FEMM          femm.Machine
	FEMMStiffness femm.Machine
	FEMMMass      femm.Machine
	BodyLoad      field.Value
}

func (r Region) stiffness() femm.Machine {
	if r.FEMMStiffness != nil {
		return r.FEMMStiffness
	}
	return r.FEMM
}

func (r Region) mass() femm.Machine {
	if r.FEMMMass != nil {
		return r.FEMMMass
	}
	return r.FEMM
}

// TractionBC applies TractionVector over the facets of FEMM.
type TractionBC struct {
	FEMM           femm.Machine
	TractionVector field.Value
}

// TemperatureChange is the nodal temperature rise driving thermal loads.
type TemperatureChange struct {
	Temperature field.Value
}

// Static configures a linear static analysis.
type Static struct {
	Fens              *field.NodeSet
	Regions           []Region
	EssentialBCs      []bcs.Essential
	TractionBCs       []TractionBC
	TemperatureChange *TemperatureChange
}

// Modal configures a free vibration analysis.
type Modal struct {
	Fens          *field.NodeSet
	Regions       []Region
	EssentialBCs  []bcs.Essential
	NEigvs        int     // DefaultNEigvs when zero
	OmegaShift    float64 // added to K as OmegaShift*M during the eigensolve
	UseLumpedMass bool
}

func validateCommon(fens *field.NodeSet, regions []Region, ebcs []bcs.Essential) error {
	if fens == nil || fens.Count() == 0 {
		return fmt.Errorf("%w: fens", ErrMissingRequiredInput)
	}
	if len(regions) == 0 {
		return fmt.Errorf("%w: regions", ErrMissingRequiredInput)
	}
	for i, bc := range ebcs {
		if len(bc.NodeList) == 0 {
			return fmt.Errorf("%w: node_list of essential bc %d", ErrMissingRequiredInput, i)
		}
		if bc.Component < bcs.AllComponents {
			return fmt.Errorf("%w: component %d of essential bc %d", ErrInvalidInput, bc.Component, i)
		}
	}
	return nil
}

func (c *Static) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: static configuration", ErrMissingRequiredInput)
	}
	if err := validateCommon(c.Fens, c.Regions, c.EssentialBCs); err != nil {
		return err
	}
	for i, r := range c.Regions {
		if r.stiffness() == nil {
			return fmt.Errorf("%w: femm of region %d", ErrMissingCollaborator, i)
		}
	}
	for i, t := range c.TractionBCs {
		if t.FEMM == nil {
			return fmt.Errorf("%w: femm of traction bc %d", ErrMissingCollaborator, i)
		}
		if !t.TractionVector.IsSet() {
			return fmt.Errorf("%w: traction_vector of traction bc %d", ErrMissingRequiredInput, i)
		}
	}
	return nil
}

// Validate checks the configuration and fills in defaults.
func (c *Modal) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: modal configuration", ErrMissingRequiredInput)
	}
	if err := validateCommon(c.Fens, c.Regions, c.EssentialBCs); err != nil {
		return err
	}
	for i, r := range c.Regions {
		if r.stiffness() == nil {
			return fmt.Errorf("%w: stiffness source of region %d", ErrMissingCollaborator, i)
		}
		if r.mass() == nil {
			return fmt.Errorf("%w: mass source of region %d", ErrMissingCollaborator, i)
		}
	}
	switch {
	case c.NEigvs == 0:
		c.NEigvs = DefaultNEigvs
	case c.NEigvs < 0:
		return fmt.Errorf("%w: neigvs %d", ErrInvalidInput, c.NEigvs)
	}
	if math.IsNaN(c.OmegaShift) || math.IsInf(c.OmegaShift, 0) {
		return fmt.Errorf("%w: omega_shift %v", ErrInvalidInput, c.OmegaShift)
	}
	return nil
}
