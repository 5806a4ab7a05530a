// Package tinyda is a compact toolkit for Delayed Acceptance MCMC —
// Bayesian sampling when the exact ("fine") forward model is expensive
// and cheaper approximations ("coarse" models) are available.
//
// 🚀 What is tinyDA?
//
//	A modern, dependency-light sampling engine that brings together:
//		• Link & factories: one evaluated point in parameter space, produced
//		  by pluggable forward-model factories (direct or black-box)
//		• Proposals: random walk, preconditioned Crank–Nicolson, adaptive
//		  Metropolis, adaptive pCN, DREAM-Z ensembles, multiple-try
//		• Delayed Acceptance: two-level and multilevel (MLDA) acceptance
//		  tests with finite-length coarse subchains
//		• Adaptive error models: online correction of coarse-model bias
//		  from paired coarse/fine evaluations
//		• Parallel chains: embarrassingly parallel multi-chain runs with
//		  per-chain deterministic seeding
//
// ✨ Why choose tinyDA?
//
//   - Beginner-friendly – minimal API, clear, intuitive naming
//   - Rock-solid guarantees – detailed-balance-preserving acceptance
//     ratios, exact reproducibility under a fixed seed
//   - Pure Go – dense linear algebra via gonum, no cgo
//   - Extensible – bring your own priors, likelihoods and forward models
//     through small capability interfaces
//
// Under the hood, everything is organized into five subpackages:
//
//	link/       — Link value, Factory capability, prior short-circuit
//	density/    — gonum-backed Gaussian & uniform priors/likelihoods
//	proposal/   — the self-adapting proposal family
//	errormodel/ — state-independent & state-dependent bias estimation
//	sampler/    — MH / DA / MLDA acceptance engine and chain driver
//
// Quick sketch of a two-level run:
//
//	coarse ──propose──▶ candidate ──coarse test──▶ pass? ──fine test──▶ accept
//	                                   │fail                   │fail
//	                                   ▼                       ▼
//	                               reject cheap            reject exact
//
//	go get github.com/bagr-sus/tinyDA
package tinyda
