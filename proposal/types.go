package proposal

import (
	"errors"

	"github.com/bagr-sus/tinyDA/link"
)

// Sentinel errors returned by proposal constructors.
var (
	// ErrBadDimension indicates a non-positive parameter dimension.
	ErrBadDimension = errors.New("proposal: dimension must be positive")

	// ErrNotPositiveDefinite indicates a proposal covariance whose
	// Cholesky factorization failed at construction time.
	ErrNotPositiveDefinite = errors.New("proposal: covariance must be positive-definite")

	// ErrBadBeta indicates a Crank–Nicolson step size outside (0, 1].
	ErrBadBeta = errors.New("proposal: beta must lie in (0, 1]")

	// ErrBadScaling indicates a non-positive global scaling factor.
	ErrBadScaling = errors.New("proposal: scaling must be positive")

	// ErrBadTries indicates a multiple-try count below 2.
	ErrBadTries = errors.New("proposal: need at least 2 tries")

	// ErrNilInner indicates a wrapper constructed without an inner kernel.
	ErrNilInner = errors.New("proposal: inner proposal must not be nil")

	// ErrNilFactory indicates a multiple-try kernel without a factory.
	ErrNilFactory = errors.New("proposal: factory must not be nil")
)

// Tuning defaults shared by the adaptive variants.
const (
	// DefaultAdaptStart is the iteration before which no adaptation occurs.
	DefaultAdaptStart = 100

	// DefaultEpsilon is the regularization floor added to the diagonal of
	// every empirical covariance to keep the kernel positive-definite.
	DefaultEpsilon = 1e-6

	// DefaultTargetAcceptance is the acceptance rate the adaptive pCN
	// step-size recursion steers toward (optimal-scaling heuristic).
	DefaultTargetAcceptance = 0.234

	// DefaultGamma is the Robbins–Monro gain for step-size adaptation.
	DefaultGamma = 1.01
)

// Proposal is the common capability of every candidate-generation kernel.
//
// A Proposal instance is owned by exactly one chain. Its methods are
// called strictly sequentially: Propose, then (after the factory and
// acceptance test ran) Adapt, then Propose again. Implementations keep
// mutable tuning state and are NOT safe for concurrent use; use Clone to
// obtain an independent instance for another chain.
type Proposal interface {
	// Propose draws a candidate parameter vector conditioned on the
	// current state. The returned slice is freshly allocated.
	Propose(current []float64) []float64

	// Adapt updates internal tuning state after one acceptance test.
	// iteration counts steps at the proposal's level (0-based), accepted
	// reports the outcome, and history is the visited-state record at
	// that level with the newest state last. Implementations read at most
	// O(1) elements of history per call.
	Adapt(iteration int, accepted bool, history []*link.Link)

	// LogRatio returns the proposal's correction term in the acceptance
	// log-ratio: log q(current|candidate) - log q(candidate|current),
	// plus any variant-specific weighting (pCN prior cancellation,
	// multiple-try selection probability). Zero for symmetric kernels.
	LogRatio(current, candidate *link.Link) float64

	// Clone returns an independent proposal with the same configuration,
	// fresh tuning state, and a private random source derived from seed.
	// Implementations must derive any internal sub-seed (inner kernels,
	// selection draws) as seed plus a small increment, well below 256;
	// the sampler reserves seed offsets of 1<<15 and above for its own
	// streams so acceptance draws never share a source with a proposal.
	Clone(seed uint64) Proposal

	// Dim reports the parameter dimension the kernel operates on.
	Dim() int
}
