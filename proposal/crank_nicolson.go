package proposal

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/bagr-sus/tinyDA/link"
)

// CrankNicolson is the preconditioned Crank–Nicolson kernel for targets
// whose prior is Gaussian N(μ, C):
//
//	candidate = μ + √(1−β²)·(current − μ) + β·ξ,   ξ ~ N(0, C)
//
// The kernel is reversible with respect to the prior, so the correct
// acceptance ratio uses the likelihood alone. LogRatio therefore returns
// prior(current) − prior(candidate), cancelling the prior terms that the
// sampler's posterior ratio would otherwise double-count.
type CrankNicolson struct {
	step *gaussianStep
	cov  *mat.SymDense
	mean []float64
	beta float64
	seed uint64
}

// NewCrankNicolson builds a pCN kernel against the Gaussian prior
// N(mean, cov) with step size beta.
//
// Preconditions (checked in order):
//  1. cov must be non-nil, sized like mean (ErrBadDimension).
//  2. beta must lie in (0, 1] (ErrBadBeta).
//  3. cov must be positive-definite (ErrNotPositiveDefinite).
func NewCrankNicolson(mean []float64, cov *mat.SymDense, beta float64, seed uint64) (*CrankNicolson, error) {
	if cov == nil || cov.SymmetricDim() == 0 || cov.SymmetricDim() != len(mean) {
		return nil, ErrBadDimension
	}
	if beta <= 0 || beta > 1 {
		return nil, ErrBadBeta
	}

	step, err := newGaussianStep(cov, rand.NewSource(seed))
	if err != nil {
		return nil, err
	}

	m := make([]float64, len(mean))
	copy(m, mean)

	return &CrankNicolson{step: step, cov: cloneSym(cov), mean: m, beta: beta, seed: seed}, nil
}

// Propose draws the pCN candidate about the prior mean.
func (p *CrankNicolson) Propose(current []float64) []float64 {
	contraction := math.Sqrt(1 - p.beta*p.beta)
	xi := p.step.draw()

	y := make([]float64, len(current))
	for i := range y {
		y[i] = p.mean[i] + contraction*(current[i]-p.mean[i]) + p.beta*xi[i]
	}

	return y
}

// Adapt is a no-op for the fixed-β kernel.
func (p *CrankNicolson) Adapt(int, bool, []*link.Link) {}

// LogRatio folds the pCN prior cancellation into the acceptance ratio:
// the sampler's posterior difference plus this term leaves exactly the
// likelihood ratio, preserving detailed balance against the prior.
func (p *CrankNicolson) LogRatio(current, candidate *link.Link) float64 {
	return current.PriorLogPDF - candidate.PriorLogPDF
}

// Clone returns an independent kernel with a fresh random source.
func (p *CrankNicolson) Clone(seed uint64) Proposal {
	c, err := NewCrankNicolson(p.mean, p.cov, p.beta, seed)
	if err != nil {
		panic(err)
	}

	return c
}

// Dim reports the parameter dimension.
func (p *CrankNicolson) Dim() int { return len(p.mean) }

// AdaptiveCrankNicolson wraps the pCN kernel with a Robbins–Monro
// recursion on the step size β: after the adaptation-start iteration,
// every acceptance nudges β up and every rejection nudges it down, with
// a decaying gain, so the realized acceptance rate converges to the
// target. β stays clamped inside (0, 1].
type AdaptiveCrankNicolson struct {
	CrankNicolson
	beta0  float64
	target float64
	gamma  float64
	t0     int
}

// NewAdaptiveCrankNicolson builds a pCN kernel whose β adapts toward the
// target acceptance rate. Preconditions match NewCrankNicolson, plus the
// target must lie in (0, 1) (ErrBadScaling otherwise).
func NewAdaptiveCrankNicolson(mean []float64, cov *mat.SymDense, beta, target float64, seed uint64) (*AdaptiveCrankNicolson, error) {
	if target <= 0 || target >= 1 {
		return nil, ErrBadScaling
	}

	inner, err := NewCrankNicolson(mean, cov, beta, seed)
	if err != nil {
		return nil, err
	}

	return &AdaptiveCrankNicolson{
		CrankNicolson: *inner,
		beta0:         beta,
		target:        target,
		gamma:         DefaultGamma,
		t0:            DefaultAdaptStart,
	}, nil
}

// Adapt applies one Robbins–Monro step to β.
//
//	accepted: β ← β · exp(+g·(1−target))
//	rejected: β ← β · exp(−g·target)
//
// with gain g = gamma/√(iteration−t0+1). At the target acceptance rate
// the expected drift is zero, so β stabilizes.
func (p *AdaptiveCrankNicolson) Adapt(iteration int, accepted bool, _ []*link.Link) {
	if iteration < p.t0 {
		return
	}

	g := p.gamma / math.Sqrt(float64(iteration-p.t0+1))
	if accepted {
		p.beta *= math.Exp(g * (1 - p.target))
	} else {
		p.beta *= math.Exp(-g * p.target)
	}

	// Clamp to the valid pCN range; β = 1 is an independence sampler.
	if p.beta > 1 {
		p.beta = 1
	}
	if p.beta < 1e-9 {
		p.beta = 1e-9
	}
}

// Beta exposes the current step size (diagnostics and tests).
func (p *AdaptiveCrankNicolson) Beta() float64 { return p.beta }

// Clone returns an independent kernel restarted at the initial β.
func (p *AdaptiveCrankNicolson) Clone(seed uint64) Proposal {
	c, err := NewAdaptiveCrankNicolson(p.mean, p.cov, p.beta0, p.target, seed)
	if err != nil {
		panic(err)
	}
	c.gamma = p.gamma
	c.t0 = p.t0

	return c
}
