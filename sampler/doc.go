// Package sampler is the acceptance engine and chain driver of tinyDA:
// single-level Metropolis–Hastings, two-level Delayed Acceptance, and
// N-level Multilevel Delayed Acceptance (MLDA) with finite-length
// coarse subchains.
//
// The level hierarchy is an ordered list of link factories, coarsest
// first. With one factory the engine is plain MH. With two or more, each
// level below the finest acts as a cheap proposal generator for the
// level above it: a subchain of fixed length explores the coarser
// levels, and its final state is offered as the candidate to the next
// finer level's delayed-acceptance test
//
//	log α₂ = (Δ posterior at the finer level) − (Δ posterior at the coarser level)
//
// which cancels the coarse-level bias already "spent" in the subchain.
// A subchain that never accepts still offers its unchanged state as a
// valid null candidate; the engine recognizes this case and re-records
// the current fine state without re-running the expensive model.
//
// Adaptive error models (package errormodel) can be attached to every
// non-finest level. The engine corrects BOTH sides of every acceptance
// test from the raw model outputs with the same estimator state —
// violating that symmetry would silently break detailed balance.
//
// Within one chain everything is strictly sequential (the Markov
// property demands it). Across chains the problem is embarrassingly
// parallel: each chain gets a cloned proposal, cloned error models and a
// private random source derived from the base seed, and the driver fans
// chains out through an errgroup. Factories are shared across chains and
// must therefore be safe for concurrent use when running more than one
// chain.
//
// Cancellation is coarse-grained: the context is polled between outer
// iterations, and an aborted chain abandons its partial history.
//
// Quick usage (two-level Delayed Acceptance):
//
//	records, err := sampler.Sample(
//	    []link.Factory{coarse, fine},
//	    prop,
//	    5000, // outer iterations
//	    4,    // chains
//	    sampler.WithSubchainLength(10),
//	    sampler.WithSeed(1),
//	    sampler.WithInitialParameters([]float64{0, 0}),
//	)
package sampler
