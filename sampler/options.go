package sampler

import (
	"context"

	"github.com/bagr-sus/tinyDA/errormodel"
)

// Options configures a sampling run.
//
// SubchainLength – number of internal steps each non-finest level runs
//
//	before offering a candidate upward (default 1).
//
// InitialParameters – common starting point for every chain; when nil,
//
//	each chain draws its own start from the coarsest factory's prior.
//
// ErrorModels – one adaptive error model per non-finest level (optional).
// Seed        – base seed; chain i derives its private sources from it.
// Ctx         – polled between outer iterations for cancellation.
// MaxParallel – cap on concurrently running chains (0 = no cap).
type Options struct {
	SubchainLength    int
	InitialParameters []float64
	ErrorModels       []errormodel.Model
	Seed              uint64
	Ctx               context.Context
	MaxParallel       int
}

// Option represents a functional option for configuring Sample.
type Option func(*Options)

// WithSubchainLength sets the per-level subchain length (the
// "subsampling rate"). Must be positive; validated by Sample.
func WithSubchainLength(k int) Option {
	return func(o *Options) { o.SubchainLength = k }
}

// WithInitialParameters starts every chain from x instead of drawing
// from the coarsest prior.
func WithInitialParameters(x []float64) Option {
	return func(o *Options) {
		c := make([]float64, len(x))
		copy(c, x)
		o.InitialParameters = c
	}
}

// WithErrorModels attaches one adaptive error model per non-finest
// level, coarsest first. Each chain receives independent clones.
func WithErrorModels(models ...errormodel.Model) Option {
	return func(o *Options) { o.ErrorModels = models }
}

// WithSeed fixes the base random seed. Two runs with identical
// configuration and seed produce bit-identical records (assuming the
// initial parameters are supplied or the prior is seeded).
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithContext attaches a cancellation context, polled between outer
// iterations.
func WithContext(ctx context.Context) Option {
	return func(o *Options) { o.Ctx = ctx }
}

// WithMaxParallel caps how many chains run concurrently. Useful when
// model evaluations are memory-hungry; 1 forces sequential execution.
func WithMaxParallel(n int) Option {
	return func(o *Options) { o.MaxParallel = n }
}

// DefaultOptions returns the baseline configuration: subchain length 1,
// prior-drawn initial states, no error models, seed 0, background
// context, unlimited parallelism.
func DefaultOptions() Options {
	return Options{
		SubchainLength: 1,
		Seed:           0,
		Ctx:            context.Background(),
	}
}
