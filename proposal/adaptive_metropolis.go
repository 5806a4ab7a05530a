package proposal

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/bagr-sus/tinyDA/link"
)

// AdaptiveMetropolis is the Haario-style adaptive random walk. Until the
// adaptation-start iteration t0 it behaves exactly like a fixed random
// walk with the initial covariance C0. From t0 onward the kernel
// covariance tracks the chain's own empirical covariance:
//
//	C_t = sd · (Σ̂_t + ε·I),   sd = 2.4² / d  (unless overridden)
//
// where Σ̂_t is a Welford running covariance of the visited states and ε
// is the regularization floor that keeps C_t positive-definite. The
// recursion reads only the newest state per step (O(1) memory).
//
// Should a covariance update still fail to factorize — impossible with
// ε > 0 unless the configuration is broken — Adapt panics: per the error
// taxonomy this is a programming error, not a recoverable condition.
type AdaptiveMetropolis struct {
	step    *gaussianStep
	moments *RunningMoments
	cov0    *mat.SymDense
	dim     int
	sd      float64 // global scale on the empirical covariance
	epsilon float64 // diagonal regularization floor
	t0      int     // adaptation start iteration
	seed    uint64
}

// AMOption tweaks an AdaptiveMetropolis kernel at construction.
type AMOption func(*AdaptiveMetropolis)

// WithAdaptStart sets the iteration t0 before which no adaptation occurs.
// Non-positive values adapt from the very first step.
func WithAdaptStart(t0 int) AMOption {
	return func(p *AdaptiveMetropolis) { p.t0 = t0 }
}

// WithEpsilon overrides the diagonal regularization floor.
// Must be positive; zero would forfeit the positive-definiteness guarantee.
func WithEpsilon(eps float64) AMOption {
	return func(p *AdaptiveMetropolis) {
		if eps <= 0 {
			panic(ErrBadScaling.Error())
		}
		p.epsilon = eps
	}
}

// WithScale overrides the global scale sd (default 2.4²/d).
func WithScale(sd float64) AMOption {
	return func(p *AdaptiveMetropolis) {
		if sd <= 0 {
			panic(ErrBadScaling.Error())
		}
		p.sd = sd
	}
}

// NewAdaptiveMetropolis builds an adaptive random walk starting from the
// initial covariance cov0.
//
// Preconditions (checked in order):
//  1. cov0 must be non-nil with positive size (ErrBadDimension).
//  2. cov0 must be positive-definite (ErrNotPositiveDefinite).
func NewAdaptiveMetropolis(cov0 *mat.SymDense, seed uint64, opts ...AMOption) (*AdaptiveMetropolis, error) {
	if cov0 == nil || cov0.SymmetricDim() == 0 {
		return nil, ErrBadDimension
	}

	d := cov0.SymmetricDim()
	p := &AdaptiveMetropolis{
		moments: NewRunningMoments(d),
		cov0:    cloneSym(cov0),
		dim:     d,
		sd:      2.4 * 2.4 / float64(d),
		epsilon: DefaultEpsilon,
		t0:      DefaultAdaptStart,
		seed:    seed,
	}
	for _, opt := range opts {
		opt(p)
	}

	step, err := newGaussianStep(cov0, rand.NewSource(seed))
	if err != nil {
		return nil, err
	}
	p.step = step

	return p, nil
}

// Propose draws candidate = current + ξ with the current kernel covariance.
func (p *AdaptiveMetropolis) Propose(current []float64) []float64 {
	return p.step.perturb(current)
}

// Adapt folds the newest visited state into the running moments and,
// once past t0 with at least two observations, re-tunes the kernel to
// sd·(Σ̂ + ε·I).
func (p *AdaptiveMetropolis) Adapt(iteration int, _ bool, history []*link.Link) {
	if len(history) == 0 {
		return
	}
	p.moments.Push(history[len(history)-1].Parameters)

	if iteration < p.t0 || p.moments.Count() < 2 {
		return
	}

	cov := p.moments.Cov(nil)
	cov.ScaleSym(p.sd, cov)
	for i := 0; i < p.dim; i++ {
		cov.SetSym(i, i, cov.At(i, i)+p.sd*p.epsilon)
	}

	if err := p.step.setCov(cov); err != nil {
		panic(fmt.Sprintf("adaptive covariance lost positive-definiteness: %v", err))
	}
}

// LogRatio is zero: the kernel is symmetric at every fixed tuning state.
func (p *AdaptiveMetropolis) LogRatio(_, _ *link.Link) float64 { return 0 }

// Clone returns an independent kernel with the same configuration, the
// initial covariance, and empty running moments.
func (p *AdaptiveMetropolis) Clone(seed uint64) Proposal {
	c, err := NewAdaptiveMetropolis(p.cov0, seed,
		WithAdaptStart(p.t0), WithEpsilon(p.epsilon), WithScale(p.sd))
	if err != nil {
		panic(err)
	}

	return c
}

// Dim reports the parameter dimension.
func (p *AdaptiveMetropolis) Dim() int { return p.dim }

// Moments exposes the running mean/covariance estimate (read-only use;
// primarily for diagnostics and tests).
func (p *AdaptiveMetropolis) Moments() *RunningMoments { return p.moments }
