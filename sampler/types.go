package sampler

import (
	"errors"
	"fmt"

	"github.com/bagr-sus/tinyDA/link"
)

// Sentinel errors reported by Sample's validation ladder. All of them
// fire at chain-setup time, before any model evaluation.
var (
	// ErrNoFactories indicates an empty level hierarchy.
	ErrNoFactories = errors.New("sampler: need at least one link factory")

	// ErrNilFactory indicates a nil entry in the level hierarchy.
	ErrNilFactory = errors.New("sampler: factory must not be nil")

	// ErrNilProposal indicates a missing proposal kernel.
	ErrNilProposal = errors.New("sampler: proposal must not be nil")

	// ErrBadIterations indicates a non-positive outer iteration count.
	ErrBadIterations = errors.New("sampler: iterations must be positive")

	// ErrBadChains indicates a non-positive chain count.
	ErrBadChains = errors.New("sampler: number of chains must be positive")

	// ErrBadSubchainLength indicates a non-positive subchain length.
	ErrBadSubchainLength = errors.New("sampler: subchain length must be positive")

	// ErrDimensionMismatch indicates that the factories, the proposal and
	// the initial parameters disagree on the parameter dimension.
	ErrDimensionMismatch = errors.New("sampler: parameter dimensions disagree")

	// ErrBadErrorModels indicates an error-model list whose length does
	// not equal the number of non-finest levels.
	ErrBadErrorModels = errors.New("sampler: need exactly one error model per non-finest level")

	// ErrNoInitialParameters indicates that no initial parameters were
	// supplied and the coarsest factory cannot draw them from a prior.
	ErrNoInitialParameters = errors.New("sampler: no initial parameters and the coarsest factory exposes no prior")
)

// LevelName returns the record key of hierarchy level l (coarsest = 0):
// "level0", "level1", ...
func LevelName(l int) string { return fmt.Sprintf("level%d", l) }

// Records holds the recorded history of a run: chain index → level name
// → the ordered sequence of visited links (initial state first). The
// finest level holds exactly iterations+1 links per chain; coarser
// levels hold more, one entry per subchain step.
type Records map[int]map[string][]*link.Link

// Chain returns the recorded sequence of one chain at one level
// (nil when absent).
func (r Records) Chain(chain, level int) []*link.Link {
	byLevel, ok := r[chain]
	if !ok {
		return nil
	}

	return byLevel[LevelName(level)]
}

// priorSampler is satisfied by factories able to draw initial states
// from their prior (both concrete factories in package link qualify).
type priorSampler interface {
	Prior() link.Prior
}
