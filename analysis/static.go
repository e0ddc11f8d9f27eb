package analysis

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/bcs"
	"github.com/notargets/gofea/femm"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/observability"
)

const kindStatic = "static"

type StaticResult struct {
	Geom *field.Field
	U    *field.Field
	Work float64
}

// setup builds the geometry and displacement fields, applies the essential
// boundary conditions and numbers the free degrees of freedom.
func setup(fens *field.NodeSet, ebcs []bcs.Essential) (geom, u *field.Field, err error) {
	geom = field.NewGeometry(fens)
	u = field.New("u", fens, fens.Dim())
	if err = bcs.Apply(u, ebcs); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
		return
	}
	u.NumberDOFs()
	return
}

// associate calls AssociateGeometry once on every distinct machine.
func associate(geom *field.Field, machines ...femm.Machine) error {
	seen := make(map[femm.Machine]bool, len(machines))
	for _, m := range machines {
		if m == nil || seen[m] {
			continue
		}
		seen[m] = true
		if err := m.AssociateGeometry(geom); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}

// LinearStatic solves K U = F for the displacements of the structure and
// returns them with the elastic work 1/2 F.U.
func LinearStatic(ctx context.Context, c *Static) (res *StaticResult, err error) {
	defer func() { observability.RecordAnalysis(kindStatic, outcome(err)) }()
	if err = c.Validate(); err != nil {
		return
	}
	ctx, end := observability.StartStage(ctx, kindStatic, "assemble")
	geom, u, g, err := assembleStatic(c)
	end(err)
	if err != nil {
		return
	}
	nFree := u.NFree()
	observability.RecordFreeDOFs(kindStatic, nFree)

	res = &StaticResult{Geom: geom, U: u}
	if nFree == 0 {
		log.WithField("nodes", c.Fens.Count()).Warn("static analysis has no free degrees of freedom")
		return
	}

	_, end = observability.StartStage(ctx, kindStatic, "solve")
	res.Work, err = solveStatic(g, u)
	end(err)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"nfree": nFree,
		"work":  res.Work,
	}).Info("static analysis complete")
	return
}

func assembleStatic(c *Static) (geom, u *field.Field, g *assembly.Global, err error) {
	if geom, u, err = setup(c.Fens, c.EssentialBCs); err != nil {
		return
	}
	machines := make([]femm.Machine, 0, len(c.Regions)+len(c.TractionBCs))
	for _, r := range c.Regions {
		machines = append(machines, r.stiffness())
	}
	for _, t := range c.TractionBCs {
		machines = append(machines, t.FEMM)
	}
	if err = associate(geom, machines...); err != nil {
		return
	}
	if g, err = assembly.NewGlobal(geom, u); err != nil {
		return
	}
	var temperature field.Value
	if c.TemperatureChange != nil {
		temperature = c.TemperatureChange.Temperature
	}
	dT := field.FromValue("dT", c.Fens, temperature)
	for i, r := range c.Regions {
		m := r.stiffness()
		if err = g.AddStiffness(m); err != nil {
			err = fmt.Errorf("region %d: %w", i, err)
			return
		}
		if err = g.AddNonzeroEBCLoads(m); err != nil {
			err = fmt.Errorf("region %d: %w", i, err)
			return
		}
		if err = g.AddThermalLoads(m, dT); err != nil {
			err = fmt.Errorf("region %d: %w", i, err)
			return
		}
	}
	for i, t := range c.TractionBCs {
		if err = g.AddTractionLoads(t.FEMM, t.TractionVector); err != nil {
			err = fmt.Errorf("traction bc %d: %w", i, err)
			return
		}
	}
	log.WithFields(log.Fields{
		"nodes":     c.Fens.Count(),
		"regions":   len(c.Regions),
		"tractions": len(c.TractionBCs),
		"nfree":     u.NFree(),
	}).Debug("static operators assembled")
	return
}

func solveStatic(g *assembly.Global, u *field.Field) (work float64, err error) {
	K, err := symmetric("stiffness", g.Stiffness())
	if err != nil {
		return
	}
	ls, err := NewLinearSolver(K, g.Load())
	if err != nil {
		return
	}
	var U *mat.VecDense
	if U, err = ls.Solve(); err != nil {
		return
	}
	if err = u.ScatterSysvec(U); err != nil {
		return
	}
	work = ls.Work()
	return
}
