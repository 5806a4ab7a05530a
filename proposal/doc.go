// Package proposal implements the family of candidate-generation kernels
// used by the sampler, together with their online self-adaptation.
//
// Every kernel satisfies the single Proposal capability:
//
//	Propose(current) – draw a candidate parameter vector
//	Adapt(...)       – update internal tuning state after a step
//	LogRatio(...)    – the proposal's contribution to the acceptance
//	                   log-ratio (0 for symmetric kernels)
//	Clone(seed)      – an independent same-configuration instance for
//	                   another chain
//
// Variants:
//
//   - GaussianRandomWalk    — fixed-covariance random walk; symmetric.
//   - AdaptiveMetropolis    — Haario-style adaptive covariance: a Welford
//     running mean/covariance feeds the kernel sd·(Σ̂ + ε·I) after the
//     adaptation-start iteration.
//   - CrankNicolson         — preconditioned Crank–Nicolson against a
//     Gaussian prior; the prior-cancellation term is folded into
//     LogRatio to preserve detailed balance.
//   - AdaptiveCrankNicolson — pCN with Robbins–Monro adaptation of the
//     step size β toward a target acceptance rate.
//   - DREAMZ                — differential-evolution candidate from an
//     archive of past chain states; symmetric.
//   - MultipleTry           — draws several tries per step through an
//     inner kernel, selects one by importance weight, and accounts for
//     the selection probability in LogRatio.
//
// Adaptation is O(1) memory per step: the running recursions never
// re-read chain history beyond the newest state. Tuning state belongs to
// exactly one chain; Clone is the only sanctioned way to reuse a
// configuration across chains.
package proposal
