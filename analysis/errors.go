package analysis

import (
	"errors"
)

var (
	ErrMissingRequiredInput = errors.New("analysis: missing required input")
	ErrMissingCollaborator  = errors.New("analysis: missing contribution source")
	ErrUnrecognizedOption   = errors.New("analysis: unrecognized option")
	ErrInvalidInput         = errors.New("analysis: invalid input")
	ErrFactorization        = errors.New("analysis: stiffness is not positive definite")
	// ErrEigensolveNonConvergence is never returned by ModalAnalysis. Fewer
	// converged pairs than requested, including an eigensolver that does not
	// converge at all, are reported by ModalResult.Err.
	ErrEigensolveNonConvergence = errors.New("analysis: fewer eigenpairs converged than requested")
)

// outcome labels an analysis result for the metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingRequiredInput):
		return "missing_input"
	case errors.Is(err, ErrMissingCollaborator):
		return "missing_collaborator"
	case errors.Is(err, ErrUnrecognizedOption):
		return "unrecognized_option"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrFactorization):
		return "factorization"
	}
	return "error"
}
