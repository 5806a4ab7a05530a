// Package link core types: collaborator interfaces and sentinel errors.
//
// The interfaces below are the engine's only view of the probabilistic
// collaborators. Concrete implementations live outside the core (see
// package density for gonum-backed ones) — the engine never assumes more
// than these capabilities.
package link

import "errors"

// Sentinel errors returned by factory construction and evaluation.
var (
	// ErrNilPrior indicates that a factory was constructed without a prior.
	ErrNilPrior = errors.New("link: prior must not be nil")

	// ErrNilLikelihood indicates that a factory was constructed without a likelihood.
	ErrNilLikelihood = errors.New("link: likelihood must not be nil")

	// ErrNilModel indicates that a factory was constructed without a forward model.
	ErrNilModel = errors.New("link: forward model must not be nil")

	// ErrBadDimension indicates a non-positive parameter dimension.
	ErrBadDimension = errors.New("link: parameter dimension must be positive")

	// ErrDimensionMismatch indicates that a parameter vector of the wrong
	// length was passed to CreateLink.
	ErrDimensionMismatch = errors.New("link: parameter vector has wrong dimension")

	// ErrModelFailure wraps any error raised by the forward model during
	// evaluation. Model failures are fatal: evaluation is deterministic,
	// so the caller must not retry the same point.
	ErrModelFailure = errors.New("link: forward model evaluation failed")
)

// Prior is the engine's view of a prior distribution: it must evaluate
// its log-density at a point and draw samples (used to seed chains when
// no initial parameters are supplied).
type Prior interface {
	// LogPDF returns the log prior density at x. A return of -Inf (or any
	// non-finite value) marks x as outside the support.
	LogPDF(x []float64) float64

	// Rand fills dst with one sample from the prior and returns it.
	// If dst is nil, a new slice of the prior's dimension is allocated.
	Rand(dst []float64) []float64
}

// Likelihood scores a forward-model output against the observed data.
type Likelihood interface {
	// LogLike returns the log-likelihood of the data given the model output.
	LogLike(output []float64) float64
}

// Model is an externally supplied black-box forward model: a callable
// taking a parameter vector and returning the model output.
type Model interface {
	Evaluate(params []float64) ([]float64, error)
}

// QoIModel is optionally implemented by a Model that can report a derived
// quantity of interest for the most recent evaluation.
type QoIModel interface {
	QoI() float64
}

// Factory is the capability that maps a parameter vector to an evaluated
// Link. Implementations must honor the prior short-circuit invariant and
// must never swallow forward-model errors.
type Factory interface {
	// CreateLink evaluates the point and packages it into a Link.
	CreateLink(params []float64) (*Link, error)

	// Dim reports the expected parameter dimension.
	Dim() int
}
