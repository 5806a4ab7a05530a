package proposal

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/bagr-sus/tinyDA/link"
)

// MultipleTry implements the multiple-try Metropolis scheme over a
// symmetric inner kernel. Each step draws k independent tries from the
// inner kernel, scores every try through the supplied (cheap) factory,
// selects one try by a posterior-weighted draw, and then draws k−1
// reference points around the selection (the current state completes the
// reference set). The selection probability is accounted for in
// LogRatio as
//
//	log Σ w(tries) − log Σ w(references)
//
// which restores detailed balance for the weighted selection.
//
// The factory is consulted during Propose, so the kernel performs k−1
// extra model evaluations per step beyond what the sampler itself does;
// pair it with a coarse factory. A factory failure during try scoring is
// fatal (panic), matching the engine's no-retry evaluation contract.
type MultipleTry struct {
	inner     Proposal
	factory   link.Factory
	rng       *rand.Rand
	k         int
	lastRatio float64
	seed      uint64
}

// NewMultipleTry wraps inner with a k-try selection layer scored by factory.
//
// Preconditions (checked in order):
//  1. inner must be non-nil (ErrNilInner).
//  2. factory must be non-nil (ErrNilFactory).
//  3. k must be at least 2 (ErrBadTries).
func NewMultipleTry(inner Proposal, factory link.Factory, k int, seed uint64) (*MultipleTry, error) {
	if inner == nil {
		return nil, ErrNilInner
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	if k < 2 {
		return nil, ErrBadTries
	}

	return &MultipleTry{
		inner:   inner,
		factory: factory,
		rng:     rand.New(rand.NewSource(seed)),
		k:       k,
		seed:    seed,
	}, nil
}

// Propose draws k tries, selects one by importance weight, builds the
// reference set, and caches the selection log-ratio for LogRatio.
func (p *MultipleTry) Propose(current []float64) []float64 {
	tries := make([][]float64, p.k)
	wTry := make([]float64, p.k)
	for i := 0; i < p.k; i++ {
		tries[i] = p.inner.Propose(current)
		wTry[i] = p.posteriorAt(tries[i])
	}

	logSumTry := floats.LogSumExp(wTry)

	var selected []float64
	if math.IsInf(logSumTry, -1) {
		// Every try is out of support: selection weights are undefined,
		// fall back to a uniform pick. The candidate will be rejected by
		// the acceptance test anyway, so the ratio is moot; keep it 0.
		selected = tries[p.rng.Intn(p.k)]
		p.lastRatio = 0

		return selected
	}

	// Weighted selection with a single uniform draw over the normalized
	// cumulative weights.
	u := p.rng.Float64()
	cum := 0.0
	selected = tries[p.k-1]
	for i := 0; i < p.k; i++ {
		cum += math.Exp(wTry[i] - logSumTry)
		if u <= cum {
			selected = tries[i]

			break
		}
	}

	// Reference set: k−1 fresh draws around the selection, plus the
	// current state itself.
	wRef := make([]float64, p.k)
	for i := 0; i < p.k-1; i++ {
		wRef[i] = p.posteriorAt(p.inner.Propose(selected))
	}
	wRef[p.k-1] = p.posteriorAt(current)

	p.lastRatio = logSumTry - floats.LogSumExp(wRef)

	return selected
}

// posteriorAt scores a point through the factory, panicking on model
// failure (fatal per the evaluation contract).
func (p *MultipleTry) posteriorAt(params []float64) float64 {
	lnk, err := p.factory.CreateLink(params)
	if err != nil {
		panic(fmt.Sprintf("multiple-try scoring failed: %v", err))
	}

	return lnk.Posterior
}

// Adapt delegates to the inner kernel.
func (p *MultipleTry) Adapt(iteration int, accepted bool, history []*link.Link) {
	p.inner.Adapt(iteration, accepted, history)
}

// LogRatio returns the selection log-ratio cached by the latest Propose.
func (p *MultipleTry) LogRatio(_, _ *link.Link) float64 { return p.lastRatio }

// Clone returns an independent kernel wrapping a clone of the inner one.
func (p *MultipleTry) Clone(seed uint64) Proposal {
	c, err := NewMultipleTry(p.inner.Clone(seed+1), p.factory, p.k, seed)
	if err != nil {
		panic(err)
	}

	return c
}

// Dim reports the parameter dimension.
func (p *MultipleTry) Dim() int { return p.inner.Dim() }
