package link

import (
	"fmt"
	"math"
)

// ModelFunc is a forward model in its simplest form: a deterministic
// function from a parameter vector to a model output.
type ModelFunc func(params []float64) ([]float64, error)

// QoIFunc optionally derives a scalar quantity of interest from an
// evaluated point.
type QoIFunc func(params, output []float64) float64

// ModelFactory is the direct factory variant: the forward model is a
// function supplied at construction and stored as an immutable field.
//
// Evaluation order is fixed: prior first (with short-circuit), then the
// model, then the likelihood, then the optional quantity of interest.
type ModelFactory struct {
	prior      Prior
	likelihood Likelihood
	modelFunc  ModelFunc
	qoiFunc    QoIFunc // optional, nil means QoI = NaN
	dim        int
}

// NewModelFactory validates its collaborators and returns a direct
// factory of the given parameter dimension.
//
// Preconditions (checked in order):
//  1. dim must be positive (ErrBadDimension).
//  2. prior must be non-nil (ErrNilPrior).
//  3. likelihood must be non-nil (ErrNilLikelihood).
//  4. model must be non-nil (ErrNilModel).
func NewModelFactory(dim int, prior Prior, likelihood Likelihood, model ModelFunc) (*ModelFactory, error) {
	if dim <= 0 {
		return nil, ErrBadDimension
	}
	if prior == nil {
		return nil, ErrNilPrior
	}
	if likelihood == nil {
		return nil, ErrNilLikelihood
	}
	if model == nil {
		return nil, ErrNilModel
	}

	return &ModelFactory{prior: prior, likelihood: likelihood, modelFunc: model, dim: dim}, nil
}

// WithQoI returns the same factory with a quantity-of-interest function
// attached. Intended for construction-time chaining only.
func (f *ModelFactory) WithQoI(qoi QoIFunc) *ModelFactory {
	f.qoiFunc = qoi

	return f
}

// Dim reports the expected parameter dimension.
func (f *ModelFactory) Dim() int { return f.dim }

// Prior exposes the factory's prior (used by the sampler to draw initial
// states when the caller supplies none).
func (f *ModelFactory) Prior() Prior { return f.prior }

// Likelihood exposes the factory's likelihood (used by error models to
// re-evaluate corrected outputs).
func (f *ModelFactory) Likelihood() Likelihood { return f.likelihood }

// CreateLink evaluates one point:
//
//  1. Validate the parameter dimension (ErrDimensionMismatch).
//  2. Evaluate the prior; if non-finite, short-circuit to an
//     out-of-support Link without touching the model.
//  3. Invoke the forward model; any error is wrapped in ErrModelFailure.
//  4. Score the output with the likelihood.
//  5. Compute the optional quantity of interest and package the Link.
func (f *ModelFactory) CreateLink(params []float64) (*Link, error) {
	if len(params) != f.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(params), f.dim)
	}

	lp := f.prior.LogPDF(params)
	if !isFinite(lp) {
		return OutOfSupport(params, lp), nil
	}

	output, err := f.modelFunc(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFailure, err)
	}

	ll := f.likelihood.LogLike(output)

	qoi := math.NaN()
	if f.qoiFunc != nil {
		qoi = f.qoiFunc(params, output)
	}

	return New(params, output, qoi, lp, ll), nil
}

// BlackBoxFactory is the black-box factory variant: the forward model is
// an externally supplied Model object composed at construction (never
// replaced afterwards). When the model also implements QoIModel, the
// quantity of interest is read back after each successful evaluation.
type BlackBoxFactory struct {
	prior      Prior
	likelihood Likelihood
	model      Model
	dim        int
}

// NewBlackBoxFactory validates its collaborators and returns a black-box
// factory wrapping the supplied model object. Preconditions match
// NewModelFactory.
func NewBlackBoxFactory(dim int, prior Prior, likelihood Likelihood, model Model) (*BlackBoxFactory, error) {
	if dim <= 0 {
		return nil, ErrBadDimension
	}
	if prior == nil {
		return nil, ErrNilPrior
	}
	if likelihood == nil {
		return nil, ErrNilLikelihood
	}
	if model == nil {
		return nil, ErrNilModel
	}

	return &BlackBoxFactory{prior: prior, likelihood: likelihood, model: model, dim: dim}, nil
}

// Dim reports the expected parameter dimension.
func (f *BlackBoxFactory) Dim() int { return f.dim }

// Prior exposes the factory's prior.
func (f *BlackBoxFactory) Prior() Prior { return f.prior }

// Likelihood exposes the factory's likelihood.
func (f *BlackBoxFactory) Likelihood() Likelihood { return f.likelihood }

// CreateLink evaluates one point through the wrapped model object.
// Evaluation order and error semantics match ModelFactory.CreateLink;
// the only difference is step 5: if the model implements QoIModel, its
// QoI() is consulted after the evaluation call.
func (f *BlackBoxFactory) CreateLink(params []float64) (*Link, error) {
	if len(params) != f.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(params), f.dim)
	}

	lp := f.prior.LogPDF(params)
	if !isFinite(lp) {
		return OutOfSupport(params, lp), nil
	}

	output, err := f.model.Evaluate(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFailure, err)
	}

	ll := f.likelihood.LogLike(output)

	qoi := math.NaN()
	if q, ok := f.model.(QoIModel); ok {
		qoi = q.QoI()
	}

	return New(params, output, qoi, lp, ll), nil
}

// isFinite reports whether v is neither NaN nor ±Inf.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
