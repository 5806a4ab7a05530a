package sampler

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"github.com/bagr-sus/tinyDA/errormodel"
	"github.com/bagr-sus/tinyDA/link"
	"github.com/bagr-sus/tinyDA/proposal"
)

// chain is the per-chain state machine. It owns a cloned proposal,
// cloned error models and a private uniform source; nothing in here is
// ever touched by another chain.
//
// Stack bookkeeping: current[l] is the raw current link of level l.
// For l >= 1, aligned[l] is a consistent snapshot of levels 0..l-1 as
// they stood when current[l] was last established. Every delayed-
// acceptance step at level l restores that snapshot before running its
// subchain, which is exactly the MLDA subchain-restart rule: a rejection
// at level l rolls the whole coarser stack back to the state the
// retained link was generated from.
type chain struct {
	factories []link.Factory
	prop      proposal.Proposal
	models    []errormodel.Model // one per non-finest level, or nil
	rng       *rand.Rand
	sub       int
	records   map[string][]*link.Link
	current   []*link.Link
	aligned   [][]*link.Link
	iter0     int // level-0 step counter, drives proposal adaptation
}

// acceptSeedOffset places the chain's acceptance-draw stream half a
// seedStride away from the chain seed handed to the proposal's Clone.
// Clone implementations derive internal sub-seeds by small increments
// from that seed, so the acceptance uniforms can never share a source
// stream with the proposal's own randomness.
const acceptSeedOffset = seedStride / 2

// newChain evaluates the initial point at every level and sets up the
// aligned stack snapshots. The initial link of each level is the first
// entry of its record.
func newChain(factories []link.Factory, prop proposal.Proposal, o *Options, seed uint64, initial []float64) (*chain, error) {
	levels := len(factories)

	c := &chain{
		factories: factories,
		prop:      prop.Clone(seed),
		rng:       rand.New(rand.NewSource(seed + acceptSeedOffset)),
		sub:       o.SubchainLength,
		records:   make(map[string][]*link.Link, levels),
		current:   make([]*link.Link, levels),
		aligned:   make([][]*link.Link, levels),
	}
	if len(o.ErrorModels) > 0 {
		c.models = make([]errormodel.Model, len(o.ErrorModels))
		for i, m := range o.ErrorModels {
			c.models[i] = m.Clone()
		}
	}

	for l := 0; l < levels; l++ {
		lnk, err := factories[l].CreateLink(initial)
		if err != nil {
			return nil, err
		}
		c.current[l] = lnk
		if l >= 1 {
			snap := make([]*link.Link, l)
			copy(snap, c.current[:l])
			c.aligned[l] = snap
		}
		c.record(l, c.view(l, lnk))
	}

	return c, nil
}

// run advances the finest level for the requested number of outer
// iterations, polling ctx between iterations.
func (c *chain) run(ctx context.Context, iterations int) error {
	finest := len(c.factories) - 1
	for t := 0; t < iterations; t++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.step(finest); err != nil {
			return err
		}
	}

	return nil
}

// step performs one acceptance-test step at the given level: a plain
// Metropolis step at level 0, a delayed-acceptance step (with subchain
// candidate generation) at every level above it.
func (c *chain) step(level int) error {
	if level == 0 {
		return c.metropolisStep()
	}

	// 1) Restore the coarser stack to the snapshot aligned with this
	//    level's current state, including the alignment prefixes.
	snap := c.aligned[level]
	for k := 0; k < level; k++ {
		c.current[k] = snap[k]
	}
	for k := 1; k < level; k++ {
		c.aligned[k] = snap[:k]
	}

	// 2) Subchain: exactly sub internal steps at the next-coarser level.
	for k := 0; k < c.sub; k++ {
		if err := c.step(level - 1); err != nil {
			return err
		}
	}

	// 3) The subchain's final state is the candidate offered upward.
	cand := c.current[level-1]
	if cand == snap[level-1] {
		// Null candidate: the subchain never moved. The second-stage
		// ratio is exactly zero, so the test accepts with probability
		// one and the expensive model need not run again.
		c.record(level, c.view(level, c.current[level]))

		return nil
	}

	// 4) Second-stage evaluation at this level.
	fineCand, err := c.factories[level].CreateLink(cand.Parameters)
	if err != nil {
		return err
	}

	// 5) Paired observation: both models ran at cand.Parameters. Feed
	//    the error model before the test; Correct below re-reads the
	//    updated state for BOTH sides, keeping the test consistent.
	if m := c.model(level - 1); m != nil && cand.ModelOutput != nil && fineCand.ModelOutput != nil {
		m.Update(cand, fineCand)
	}

	// 6) Delayed-acceptance ratio: the fine-level posterior difference
	//    minus the coarse-level difference already spent in the subchain.
	curFine := c.view(level, c.current[level])
	candFine := c.view(level, fineCand)
	curCoarse := c.view(level-1, snap[level-1])
	candCoarse := c.view(level-1, cand)

	logAlpha := (candFine.Posterior - curFine.Posterior) - (candCoarse.Posterior - curCoarse.Posterior)
	if c.accept(logAlpha) {
		c.current[level] = fineCand

		stack := make([]*link.Link, level)
		if level >= 2 {
			copy(stack, c.aligned[level-1])
		}
		stack[level-1] = cand
		c.aligned[level] = stack
	}
	c.record(level, c.view(level, c.current[level]))

	return nil
}

// metropolisStep is the single-level kernel: propose, evaluate, test,
// adapt.
func (c *chain) metropolisStep() error {
	cur := c.current[0]

	candParams := c.prop.Propose(cur.Parameters)
	cand, err := c.factories[0].CreateLink(candParams)
	if err != nil {
		return err
	}

	curV := c.view(0, cur)
	candV := c.view(0, cand)

	logAlpha := candV.Posterior - curV.Posterior + c.prop.LogRatio(curV, candV)
	accepted := c.accept(logAlpha)
	if accepted {
		c.current[0] = cand
	}
	c.record(0, c.view(0, c.current[0]))

	c.prop.Adapt(c.iter0, accepted, c.records[LevelName(0)])
	c.iter0++

	return nil
}

// accept is the exact Metropolis test: one uniform draw compared
// directly against the acceptance probability exp(logAlpha). A NaN
// ratio (both posteriors -Inf) rejects, retaining the current state.
func (c *chain) accept(logAlpha float64) bool {
	return c.rng.Float64() < math.Exp(logAlpha)
}

// view returns the error-model-corrected view of a link at the given
// level; the finest level and model-less runs pass through raw.
func (c *chain) view(level int, lnk *link.Link) *link.Link {
	if m := c.model(level); m != nil {
		return m.Correct(lnk)
	}

	return lnk
}

// model returns the error model of a non-finest level, or nil.
func (c *chain) model(level int) errormodel.Model {
	if c.models == nil || level >= len(c.factories)-1 {
		return nil
	}

	return c.models[level]
}

// record appends a link to the level's visited sequence.
func (c *chain) record(level int, lnk *link.Link) {
	name := LevelName(level)
	c.records[name] = append(c.records[name], lnk)
}
