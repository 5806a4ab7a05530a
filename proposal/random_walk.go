package proposal

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/bagr-sus/tinyDA/link"
)

// GaussianRandomWalk proposes candidates by perturbing the current state
// with a zero-mean Gaussian step of fixed covariance scaling²·C:
//
//	candidate = current + scaling·ξ,  ξ ~ N(0, C)
//
// The kernel is symmetric, so LogRatio is identically zero and the
// acceptance test reduces to the plain posterior ratio. No adaptation is
// performed.
type GaussianRandomWalk struct {
	step    *gaussianStep
	cov     *mat.SymDense
	scaling float64
	seed    uint64
}

// NewGaussianRandomWalk builds a fixed-covariance random walk.
//
// Preconditions (checked in order):
//  1. cov must be non-nil with positive size (ErrBadDimension).
//  2. scaling must be positive (ErrBadScaling).
//  3. cov must be positive-definite (ErrNotPositiveDefinite).
func NewGaussianRandomWalk(cov *mat.SymDense, scaling float64, seed uint64) (*GaussianRandomWalk, error) {
	if cov == nil || cov.SymmetricDim() == 0 {
		return nil, ErrBadDimension
	}
	if scaling <= 0 {
		return nil, ErrBadScaling
	}

	step, err := newGaussianStep(scaledCov(cov, scaling*scaling), rand.NewSource(seed))
	if err != nil {
		return nil, err
	}

	return &GaussianRandomWalk{step: step, cov: cloneSym(cov), scaling: scaling, seed: seed}, nil
}

// Propose draws candidate = current + scaling·ξ.
func (p *GaussianRandomWalk) Propose(current []float64) []float64 {
	return p.step.perturb(current)
}

// Adapt is a no-op: the random-walk covariance is fixed.
func (p *GaussianRandomWalk) Adapt(int, bool, []*link.Link) {}

// LogRatio is zero: the kernel is symmetric.
func (p *GaussianRandomWalk) LogRatio(_, _ *link.Link) float64 { return 0 }

// Clone returns an independent instance with a fresh random source.
func (p *GaussianRandomWalk) Clone(seed uint64) Proposal {
	c, err := NewGaussianRandomWalk(p.cov, p.scaling, seed)
	if err != nil {
		// The configuration was already validated at construction.
		panic(err)
	}

	return c
}

// Dim reports the parameter dimension.
func (p *GaussianRandomWalk) Dim() int { return p.cov.SymmetricDim() }
