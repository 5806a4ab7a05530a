// Package link defines the atomic currency of the sampling engine:
// the Link — one fully evaluated point in parameter space — and the
// Factory capability that turns a raw parameter vector into a Link by
// invoking a forward model and scoring it against prior and likelihood.
//
// A Link is a value: once a factory returns it, none of its fields ever
// change. Correction layers (see package errormodel) produce *new* Links
// rather than mutating existing ones, so every recorded chain entry is a
// faithful snapshot of what the acceptance test saw.
//
// Two factory variants cover the two ways a forward model enters the
// system:
//
//   - ModelFactory    — "direct": the model is a plain function supplied
//     at construction (ModelFunc field).
//   - BlackBoxFactory — "black-box": the model is an externally supplied
//     object implementing Model; if it additionally implements QoIModel,
//     a quantity of interest is read back after each evaluation.
//
// Both honor the short-circuit invariant: when the prior log-density at
// the requested point is not finite, the (expensive) forward model is
// never invoked and the returned Link carries Posterior = -Inf. This is
// a performance guarantee, not an optimization hint.
//
// Errors raised by the forward model itself are fatal and propagate to
// the caller wrapped in ErrModelFailure; evaluation is deterministic, so
// retrying the same point would only fail again.
package link
