// Package errormodel implements online estimation and correction of the
// systematic discrepancy between a coarse and a fine forward model.
//
// During Delayed Acceptance sampling, every second-stage (fine)
// evaluation yields a paired observation: both models were run at the
// same parameter point. Update folds the output discrepancy
// (fine − coarse) into a running estimate; Correct re-evaluates a coarse
// link's likelihood at the bias-shifted output before the link enters
// any acceptance test.
//
// Two estimators are provided:
//
//   - StateIndependent — a single global bias vector (running mean of the
//     discrepancy).
//   - StateDependent   — a location-conditioned bias: joint running
//     moments of (parameters, discrepancy) feed the linear-Gaussian
//     conditional μ_b + Σ_bθ·Σ_θθ⁻¹·(θ − μ_θ), so the correction varies
//     across parameter space. Until the parameter covariance is
//     positive-definite the estimator falls back to the global mean.
//
// Correctness hazard: both sides of one acceptance test MUST see the
// same correction state. Correct always recomputes from the link's raw
// model output, so the sampler can (and does) re-correct the retained
// current link at every test instead of caching a stale corrected value.
//
// A model instance belongs to one chain; Clone produces an independent
// instance with fresh statistics for another chain.
package errormodel
