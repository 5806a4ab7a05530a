package sampler

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bagr-sus/tinyDA/link"
	"github.com/bagr-sus/tinyDA/proposal"
)

// Sample runs nChains independent Markov chains for the given number of
// outer (finest-level) iterations and returns the full recorded history.
//
// The hierarchy of factories is ordered coarsest first. One factory
// yields plain Metropolis–Hastings; two yield Delayed Acceptance; more
// yield Multilevel Delayed Acceptance with recursive subchains.
//
// Validation (fail fast, in order, before any model evaluation):
//  1. factories must be non-empty (ErrNoFactories) and nil-free
//     (ErrNilFactory).
//  2. prop must be non-nil (ErrNilProposal).
//  3. iterations must be positive (ErrBadIterations).
//  4. nChains must be positive (ErrBadChains).
//  5. the subchain length must be positive (ErrBadSubchainLength).
//  6. all factories, the proposal and (when given) the initial
//     parameters must agree on the dimension (ErrDimensionMismatch).
//  7. error models, when given, must number exactly len(factories)-1
//     (ErrBadErrorModels).
//  8. without initial parameters the coarsest factory must expose a
//     prior to draw from (ErrNoInitialParameters).
//
// Each chain receives a cloned proposal, cloned error models and a
// private random source derived from the seed, so chains share no
// mutable state; factories are shared and must be safe for concurrent
// use when nChains > 1. The first chain failure cancels the run and is
// returned; partial histories of failed runs are discarded.
func Sample(factories []link.Factory, prop proposal.Proposal, iterations, nChains int, opts ...Option) (Records, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(factories, prop, iterations, nChains, &o); err != nil {
		return nil, err
	}

	// Initial states are drawn up front, sequentially: the prior's random
	// source is not ours to share across goroutines.
	initials := make([][]float64, nChains)
	for i := range initials {
		if o.InitialParameters != nil {
			initials[i] = o.InitialParameters
		} else {
			initials[i] = factories[0].(priorSampler).Prior().Rand(nil)
		}
	}

	g, ctx := errgroup.WithContext(o.Ctx)
	if o.MaxParallel > 0 {
		g.SetLimit(o.MaxParallel)
	}

	results := make([]map[string][]*link.Link, nChains)
	for i := 0; i < nChains; i++ {
		i := i
		g.Go(func() error {
			// Chain seeds are spaced so the proposal, the acceptance
			// draws and any future per-chain source never collide.
			chainSeed := o.Seed + uint64(i)*seedStride

			c, err := newChain(factories, prop, &o, chainSeed, initials[i])
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			if err = c.run(ctx, iterations); err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			results[i] = c.records

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make(Records, nChains)
	for i, res := range results {
		records[i] = res
	}

	return records, nil
}

// seedStride spaces per-chain seeds apart.
const seedStride = 1 << 16

// validate is Sample's fail-fast ladder; see Sample for the order.
func validate(factories []link.Factory, prop proposal.Proposal, iterations, nChains int, o *Options) error {
	if len(factories) == 0 {
		return ErrNoFactories
	}
	for i, f := range factories {
		if f == nil {
			return fmt.Errorf("%w: level %d", ErrNilFactory, i)
		}
	}
	if prop == nil {
		return ErrNilProposal
	}
	if iterations <= 0 {
		return ErrBadIterations
	}
	if nChains <= 0 {
		return ErrBadChains
	}
	if o.SubchainLength <= 0 {
		return ErrBadSubchainLength
	}

	dim := factories[0].Dim()
	for i, f := range factories {
		if f.Dim() != dim {
			return fmt.Errorf("%w: level %d has dim %d, level 0 has %d", ErrDimensionMismatch, i, f.Dim(), dim)
		}
	}
	if prop.Dim() != dim {
		return fmt.Errorf("%w: proposal has dim %d, levels have %d", ErrDimensionMismatch, prop.Dim(), dim)
	}
	if o.InitialParameters != nil && len(o.InitialParameters) != dim {
		return fmt.Errorf("%w: initial parameters have dim %d, levels have %d", ErrDimensionMismatch, len(o.InitialParameters), dim)
	}

	if len(o.ErrorModels) > 0 && len(o.ErrorModels) != len(factories)-1 {
		return fmt.Errorf("%w: got %d models for %d levels", ErrBadErrorModels, len(o.ErrorModels), len(factories))
	}

	if o.InitialParameters == nil {
		if _, ok := factories[0].(priorSampler); !ok {
			return ErrNoInitialParameters
		}
	}

	return nil
}
