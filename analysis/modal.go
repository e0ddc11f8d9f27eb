package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/femm"
	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/observability"
)

const kindModal = "modal"

type ModalResult struct {
	Geom *field.Field
	U    *field.Field // numbered scratch field the mode shapes scatter into

	NRequested int
	NConverged int
	// W holds the M-normalized eigenvectors as columns, in ascending order
	// of frequency.
	W              *mat.Dense
	Eigenvalues    []float64 // cleaned, ascending
	Omega          []float64 // angular frequencies, ascending
	RawEigenvalues []complex128
}

// Err reports a shortfall in converged eigenpairs. It is nil when every
// requested pair converged.
func (r *ModalResult) Err() error {
	if r.NConverged < r.NRequested {
		return fmt.Errorf("%w: %d of %d", ErrEigensolveNonConvergence, r.NConverged, r.NRequested)
	}
	return nil
}

// ModeShape returns eigenvector i scattered into a copy of the displacement
// field; fixed entries keep their prescribed values.
func (r *ModalResult) ModeShape(i int) (shape *field.Field, err error) {
	if i < 0 || i >= r.NConverged {
		err = fmt.Errorf("%w: mode %d of %d", ErrInvalidInput, i, r.NConverged)
		return
	}
	return ScatterMode(r.U, r.W, i)
}

// ScatterMode returns column i of the eigenvector matrix W scattered into a
// copy of the numbered field u.
func ScatterMode(u *field.Field, W *mat.Dense, i int) (shape *field.Field, err error) {
	var nModes int
	if W != nil && !W.IsEmpty() {
		_, nModes = W.Dims()
	}
	if i < 0 || i >= nModes {
		err = fmt.Errorf("%w: mode %d of %d", ErrInvalidInput, i, nModes)
		return
	}
	shape = u.Copy()
	shape.Name = fmt.Sprintf("mode%d", i)
	err = shape.ScatterSysvec(W.ColView(i))
	return
}

// Unshift maps the eigenvalues of (K + sigma M) w = lambda M w back onto
// those of K w = lambda M w.
func Unshift(shifted []complex128, sigma float64) (raw []complex128) {
	raw = make([]complex128, len(shifted))
	for i, v := range shifted {
		raw[i] = v - complex(sigma, 0)
	}
	return
}

// CleanEigenvalues drops imaginary parts, takes the absolute value of
// negative eigenvalues and sorts ascending. The problem is real symmetric, so
// imaginary parts and small negative values are numerical noise; this is a
// cleanup policy and does not correct any physics. order[k] is the position
// in raw of the k-th cleaned eigenvalue.
func CleanEigenvalues(raw []complex128) (lambda []float64, order []int) {
	clean := make([]float64, len(raw))
	for i, v := range raw {
		clean[i] = math.Abs(real(v))
	}
	order = byMagnitude(len(clean), func(i int) float64 { return clean[i] })
	lambda = make([]float64, len(clean))
	for k, i := range order {
		lambda[k] = clean[i]
	}
	return
}

func AngularFrequencies(lambda []float64) (omega []float64) {
	omega = make([]float64, len(lambda))
	for i, l := range lambda {
		omega[i] = math.Sqrt(l)
	}
	return
}

// ModalAnalysis solves the generalized eigenproblem of the structure for the
// NEigvs eigenvalues of smallest magnitude. Fewer converged pairs than
// requested is not an error here, see ModalResult.Err.
func ModalAnalysis(ctx context.Context, c *Modal) (res *ModalResult, err error) {
	defer func() { observability.RecordAnalysis(kindModal, outcome(err)) }()
	if err = c.Validate(); err != nil {
		return
	}
	ctx, end := observability.StartStage(ctx, kindModal, "assemble")
	geom, u, g, err := assembleModal(c)
	end(err)
	if err != nil {
		return
	}
	nFree := u.NFree()
	observability.RecordFreeDOFs(kindModal, nFree)

	res = &ModalResult{
		Geom:       geom,
		U:          u,
		NRequested: c.NEigvs,
		W:          &mat.Dense{},
	}
	if nFree > 0 {
		_, end = observability.StartStage(ctx, kindModal, "eigensolve")
		err = res.solve(g, c.OmegaShift)
		end(err)
		if err != nil {
			return nil, err
		}
	}
	observability.RecordConvergedModes(res.NConverged)

	fields := log.Fields{
		"nfree":     nFree,
		"requested": res.NRequested,
		"converged": res.NConverged,
	}
	if shortfall := res.Err(); shortfall != nil {
		log.WithFields(fields).Warn(shortfall.Error())
		return
	}
	log.WithFields(fields).Info("modal analysis complete")
	return
}

func assembleModal(c *Modal) (geom, u *field.Field, g *assembly.Global, err error) {
	if geom, u, err = setup(c.Fens, c.EssentialBCs); err != nil {
		return
	}
	machines := make([]femm.Machine, 0, 2*len(c.Regions))
	for _, r := range c.Regions {
		machines = append(machines, r.stiffness(), r.mass())
	}
	if err = associate(geom, machines...); err != nil {
		return
	}
	if g, err = assembly.NewGlobal(geom, u); err != nil {
		return
	}
	g.Lumped = c.UseLumpedMass
	for i, r := range c.Regions {
		if err = g.AddStiffness(r.stiffness()); err != nil {
			err = fmt.Errorf("region %d: %w", i, err)
			return
		}
		if err = g.AddMass(r.mass()); err != nil {
			err = fmt.Errorf("region %d: %w", i, err)
			return
		}
	}
	log.WithFields(log.Fields{
		"nodes":   c.Fens.Count(),
		"regions": len(c.Regions),
		"nfree":   u.NFree(),
		"lumped":  c.UseLumpedMass,
	}).Debug("modal operators assembled")
	return
}

func (r *ModalResult) solve(g *assembly.Global, sigma float64) error {
	K, err := symmetric("stiffness", g.Stiffness())
	if err != nil {
		return err
	}
	M, err := symmetric("mass", g.Mass())
	if err != nil {
		return err
	}
	var A, S mat.SymDense
	S.ScaleSym(sigma, M)
	A.AddSym(K, &S)

	shifted, W, err := eigenpairs(&A, M, r.NRequested)
	switch {
	case errors.Is(err, ErrEigensolveNonConvergence):
		// Reported through Err with nothing converged
		log.WithError(err).Warn("eigensolver did not converge")
		r.NConverged = 0
		return nil
	case err != nil:
		return err
	}
	r.RawEigenvalues = Unshift(shifted, sigma)
	lambda, order := CleanEigenvalues(r.RawEigenvalues)
	r.NConverged = len(lambda)
	r.Eigenvalues = lambda
	r.Omega = AngularFrequencies(lambda)
	if r.NConverged == 0 {
		return nil
	}
	n, _ := W.Dims()
	r.W = mat.NewDense(n, r.NConverged, nil)
	for k, j := range order {
		r.W.SetCol(k, mat.Col(nil, j, W))
	}
	return nil
}
