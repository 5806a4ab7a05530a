// Package sampler_test exercises the acceptance engine end to end:
// validation ladder, single-level detailed balance, delayed-acceptance
// exactness and early exit, subchain bookkeeping, error-model wiring,
// reproducibility and cancellation.
package sampler_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/bagr-sus/tinyDA/density"
	"github.com/bagr-sus/tinyDA/errormodel"
	"github.com/bagr-sus/tinyDA/link"
	"github.com/bagr-sus/tinyDA/proposal"
	"github.com/bagr-sus/tinyDA/sampler"
)

// constLike is a flat likelihood: the posterior equals the prior.
type constLike struct{}

func (constLike) LogLike([]float64) float64 { return 0 }

// shiftLike scores the first output component against a target value.
type shiftLike struct{ target float64 }

func (s shiftLike) LogLike(output []float64) float64 {
	d := output[0] - s.target
	return -0.5 * d * d
}

// identity forwards parameters as model output.
func identity(p []float64) ([]float64, error) {
	out := make([]float64, len(p))
	copy(out, p)

	return out, nil
}

// countingFactory wraps a factory and counts CreateLink calls.
// Only safe with a single chain.
type countingFactory struct {
	inner link.Factory
	calls int
}

func (f *countingFactory) CreateLink(params []float64) (*link.Link, error) {
	f.calls++

	return f.inner.CreateLink(params)
}

func (f *countingFactory) Dim() int { return f.inner.Dim() }

// jumpProposal always proposes current + offset (deterministic), used to
// force out-of-support candidates.
type jumpProposal struct {
	offset float64
	dim    int
}

func (p jumpProposal) Propose(current []float64) []float64 {
	y := make([]float64, len(current))
	for i := range y {
		y[i] = current[i] + p.offset
	}

	return y
}

func (jumpProposal) Adapt(int, bool, []*link.Link) {}

func (jumpProposal) LogRatio(_, _ *link.Link) float64 { return 0 }

func (p jumpProposal) Clone(uint64) proposal.Proposal { return p }

func (p jumpProposal) Dim() int { return p.dim }

// standardNormalFactory builds a 1D factory whose posterior is N(0,1):
// standard normal prior, flat likelihood, identity model.
func standardNormalFactory(t *testing.T) link.Factory {
	t.Helper()

	prior, err := density.NewIsotropicGaussian([]float64{0}, 1, nil)
	require.NoError(t, err)
	f, err := link.NewModelFactory(1, prior, constLike{}, identity)
	require.NoError(t, err)

	return f
}

// levelFactory builds a 1D factory with N(0,1) prior and a likelihood
// pulling toward target, used to give hierarchy levels distinct
// posteriors.
func levelFactory(t *testing.T, target float64) link.Factory {
	t.Helper()

	prior, err := density.NewIsotropicGaussian([]float64{0}, 1, nil)
	require.NoError(t, err)
	f, err := link.NewModelFactory(1, prior, shiftLike{target: target}, identity)
	require.NoError(t, err)

	return f
}

func rwProposal(t *testing.T, scale float64, seed uint64) proposal.Proposal {
	t.Helper()

	cov := mat.NewSymDense(1, []float64{scale * scale})
	p, err := proposal.NewGaussianRandomWalk(cov, 1, seed)
	require.NoError(t, err)

	return p
}

// ------------------------------------------------------------------------
// 1. Validation ladder.
// ------------------------------------------------------------------------

func TestSample_Validation(t *testing.T) {
	f := standardNormalFactory(t)
	p := rwProposal(t, 1, 0)
	init := sampler.WithInitialParameters([]float64{0})

	_, err := sampler.Sample(nil, p, 10, 1, init)
	require.ErrorIs(t, err, sampler.ErrNoFactories)

	_, err = sampler.Sample([]link.Factory{nil}, p, 10, 1, init)
	require.ErrorIs(t, err, sampler.ErrNilFactory)

	_, err = sampler.Sample([]link.Factory{f}, nil, 10, 1, init)
	require.ErrorIs(t, err, sampler.ErrNilProposal)

	_, err = sampler.Sample([]link.Factory{f}, p, 0, 1, init)
	require.ErrorIs(t, err, sampler.ErrBadIterations)

	_, err = sampler.Sample([]link.Factory{f}, p, 10, 0, init)
	require.ErrorIs(t, err, sampler.ErrBadChains)

	_, err = sampler.Sample([]link.Factory{f}, p, 10, 1, init, sampler.WithSubchainLength(0))
	require.ErrorIs(t, err, sampler.ErrBadSubchainLength)

	_, err = sampler.Sample([]link.Factory{f}, p, 10, 1, sampler.WithInitialParameters([]float64{0, 0}))
	require.ErrorIs(t, err, sampler.ErrDimensionMismatch)

	em, _ := errormodel.NewStateIndependent(constLike{})
	_, err = sampler.Sample([]link.Factory{f}, p, 10, 1, init, sampler.WithErrorModels(em))
	require.ErrorIs(t, err, sampler.ErrBadErrorModels)
}

func TestSample_DimensionMismatchAcrossLevels(t *testing.T) {
	coarse := standardNormalFactory(t)

	prior2, err := density.NewIsotropicGaussian([]float64{0, 0}, 1, nil)
	require.NoError(t, err)
	fine, err := link.NewModelFactory(2, prior2, constLike{}, identity)
	require.NoError(t, err)

	_, err = sampler.Sample([]link.Factory{coarse, fine}, rwProposal(t, 1, 0), 10, 1,
		sampler.WithInitialParameters([]float64{0}))
	require.ErrorIs(t, err, sampler.ErrDimensionMismatch)
}

// ------------------------------------------------------------------------
// 2. The engine suite.
// ------------------------------------------------------------------------

type SamplerSuite struct {
	suite.Suite
}

// TestSingleLevelDetailedBalance runs a symmetric random walk on a
// standard normal posterior and checks the empirical moments of a long
// chain against the analytic target.
func (s *SamplerSuite) TestSingleLevelDetailedBalance() {
	const iterations = 20000

	records, err := sampler.Sample(
		[]link.Factory{standardNormalFactory(s.T())},
		rwProposal(s.T(), 2.4, 7),
		iterations, 1,
		sampler.WithSeed(7),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	chain := records.Chain(0, 0)
	require.Len(s.T(), chain, iterations+1)

	xs := make([]float64, 0, len(chain))
	for _, lnk := range chain[2000:] { // discard burn-in
		xs = append(xs, lnk.Parameters[0])
	}

	require.InDelta(s.T(), 0, stat.Mean(xs, nil), 0.2)
	require.InDelta(s.T(), 1, stat.Variance(xs, nil), 0.35)
}

// TestDelayedAcceptanceReducesToMH: with identical coarse and fine
// models the second-stage ratio is exactly zero, so the fine level must
// follow every subchain product. This is the delayed-acceptance
// exactness property.
func (s *SamplerSuite) TestDelayedAcceptanceReducesToMH() {
	const (
		iterations = 200
		sub        = 5
	)

	records, err := sampler.Sample(
		[]link.Factory{levelFactory(s.T(), 1), levelFactory(s.T(), 1)},
		rwProposal(s.T(), 1, 3),
		iterations, 1,
		sampler.WithSeed(3),
		sampler.WithSubchainLength(sub),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	coarse := records.Chain(0, 0)
	fine := records.Chain(0, 1)
	require.Len(s.T(), fine, iterations+1)
	require.Len(s.T(), coarse, iterations*sub+1)

	// fine[t] must equal the end state of the t-th subchain.
	for t := 0; t <= iterations; t++ {
		require.Equal(s.T(), coarse[t*sub].Parameters[0], fine[t].Parameters[0],
			"outer step %d diverged from its subchain product", t)
	}
}

// TestEarlyExitNeverTouchesFineModel forces every coarse candidate out
// of the prior support: the subchain never moves, so the fine model is
// evaluated exactly once (the initial state).
func (s *SamplerSuite) TestEarlyExitNeverTouchesFineModel() {
	boxPrior, err := density.NewUniformBox([]float64{-1}, []float64{1}, nil)
	require.NoError(s.T(), err)

	coarseInner, err := link.NewModelFactory(1, boxPrior, constLike{}, identity)
	require.NoError(s.T(), err)
	fineInner, err := link.NewModelFactory(1, boxPrior, constLike{}, identity)
	require.NoError(s.T(), err)

	coarse := &countingFactory{inner: coarseInner}
	fine := &countingFactory{inner: fineInner}

	// Candidates always land at current + 100: outside the box.
	_, err = sampler.Sample(
		[]link.Factory{coarse, fine},
		jumpProposal{offset: 100, dim: 1},
		50, 1,
		sampler.WithSubchainLength(3),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	require.Equal(s.T(), 1, fine.calls, "fine model must only see the initial evaluation")
	require.Equal(s.T(), 1+50*3, coarse.calls, "every subchain step still scores its candidate")
}

// TestSubchainEvaluationBudget checks the candidate-propagation
// contract: subchain length k costs exactly k coarse evaluations per
// outer iteration, plus the shared initial one.
func (s *SamplerSuite) TestSubchainEvaluationBudget() {
	const (
		iterations = 40
		sub        = 7
	)

	coarse := &countingFactory{inner: levelFactory(s.T(), 0)}
	fine := &countingFactory{inner: levelFactory(s.T(), 0.5)}

	_, err := sampler.Sample(
		[]link.Factory{coarse, fine},
		rwProposal(s.T(), 1, 5),
		iterations, 1,
		sampler.WithSeed(5),
		sampler.WithSubchainLength(sub),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	require.Equal(s.T(), 1+iterations*sub, coarse.calls)
	require.LessOrEqual(s.T(), fine.calls, 1+iterations, "at most one fine evaluation per outer step")
}

// TestMultilevelRecordShape runs three levels and checks the per-level
// record lengths implied by the recursive subchain structure.
func (s *SamplerSuite) TestMultilevelRecordShape() {
	const (
		iterations = 30
		sub        = 4
	)

	records, err := sampler.Sample(
		[]link.Factory{levelFactory(s.T(), 0), levelFactory(s.T(), 0.3), levelFactory(s.T(), 0.6)},
		rwProposal(s.T(), 1, 11),
		iterations, 1,
		sampler.WithSeed(11),
		sampler.WithSubchainLength(sub),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	require.Len(s.T(), records.Chain(0, 2), iterations+1)
	require.Len(s.T(), records.Chain(0, 1), iterations*sub+1)
	require.Len(s.T(), records.Chain(0, 0), iterations*sub*sub+1)
}

// TestErrorModelNeutralWhenLevelsAgree: with identical coarse and fine
// models the learned bias is identically zero, so attaching an error
// model must not change the sampled path at all. This is the
// sampler-level guard for the both-sides-corrected invariant.
func (s *SamplerSuite) TestErrorModelNeutralWhenLevelsAgree() {
	run := func(withEM bool) sampler.Records {
		opts := []sampler.Option{
			sampler.WithSeed(13),
			sampler.WithSubchainLength(2),
			sampler.WithInitialParameters([]float64{0}),
		}
		if withEM {
			em, err := errormodel.NewStateIndependent(shiftLike{target: 1})
			require.NoError(s.T(), err)
			opts = append(opts, sampler.WithErrorModels(em))
		}

		records, err := sampler.Sample(
			[]link.Factory{levelFactory(s.T(), 1), levelFactory(s.T(), 1)},
			rwProposal(s.T(), 1, 13),
			100, 1,
			opts...,
		)
		require.NoError(s.T(), err)

		return records
	}

	plain := run(false)
	corrected := run(true)

	for level := 0; level <= 1; level++ {
		a, b := plain.Chain(0, level), corrected.Chain(0, level)
		require.Equal(s.T(), len(a), len(b))
		for i := range a {
			require.Equal(s.T(), a[i].Parameters[0], b[i].Parameters[0],
				"level %d step %d: zero bias must leave the path untouched", level, i)
			require.Equal(s.T(), a[i].Posterior, b[i].Posterior)
		}
	}
}

// TestErrorModelPullsCoarseTowardFine: the coarse level is biased by a
// constant output offset; the state-independent model must learn it and
// the corrected coarse records must converge to fine-level likelihoods.
func (s *SamplerSuite) TestErrorModelPullsCoarseTowardFine() {
	// Coarse model shifts the output by +2; fine is identity. True
	// discrepancy (fine - coarse) is therefore -2 at every point.
	prior, err := density.NewIsotropicGaussian([]float64{0}, 1, nil)
	require.NoError(s.T(), err)
	shifted := func(p []float64) ([]float64, error) {
		return []float64{p[0] + 2}, nil
	}
	coarse, err := link.NewModelFactory(1, prior, shiftLike{target: 0}, shifted)
	require.NoError(s.T(), err)
	fine, err := link.NewModelFactory(1, prior, shiftLike{target: 0}, identity)
	require.NoError(s.T(), err)

	em, err := errormodel.NewStateIndependent(shiftLike{target: 0})
	require.NoError(s.T(), err)

	records, err := sampler.Sample(
		[]link.Factory{coarse, fine},
		rwProposal(s.T(), 1.5, 17),
		400, 1,
		sampler.WithSeed(17),
		sampler.WithSubchainLength(2),
		sampler.WithInitialParameters([]float64{0}),
		sampler.WithErrorModels(em),
	)
	require.NoError(s.T(), err)

	// Late coarse records carry corrected likelihoods: corrected output
	// = (x+2) + bias ≈ x, so the recorded coarse log-likelihood must be
	// close to the fine one at the same parameters.
	chain := records.Chain(0, 0)
	last := chain[len(chain)-1]
	x := last.Parameters[0]
	require.InDelta(s.T(), -0.5*x*x, last.LogLikelihood, 0.2,
		"corrected coarse likelihood should track the fine model")

	// The prototype model handed to Sample stays untouched: chains adapt
	// clones only.
	require.Nil(s.T(), em.Bias())
}

// TestReproducibility: same configuration and seed, bit-identical
// records — across multiple chains and three levels.
func (s *SamplerSuite) TestReproducibility() {
	run := func() sampler.Records {
		records, err := sampler.Sample(
			[]link.Factory{levelFactory(s.T(), 0), levelFactory(s.T(), 0.3), levelFactory(s.T(), 0.6)},
			rwProposal(s.T(), 1, 23),
			60, 3,
			sampler.WithSeed(23),
			sampler.WithSubchainLength(3),
			sampler.WithInitialParameters([]float64{0.5}),
		)
		require.NoError(s.T(), err)

		return records
	}

	a, b := run(), run()
	require.Equal(s.T(), len(a), len(b))
	for chain := 0; chain < 3; chain++ {
		for level := 0; level < 3; level++ {
			ca, cb := a.Chain(chain, level), b.Chain(chain, level)
			require.Equal(s.T(), len(ca), len(cb))
			for i := range ca {
				require.Equal(s.T(), ca[i].Parameters, cb[i].Parameters)
				require.Equal(s.T(), ca[i].Posterior, cb[i].Posterior)
			}
		}
	}
}

// TestChainsAreIndependent: different chains explore different paths.
func (s *SamplerSuite) TestChainsAreIndependent() {
	records, err := sampler.Sample(
		[]link.Factory{standardNormalFactory(s.T())},
		rwProposal(s.T(), 1, 29),
		200, 2,
		sampler.WithSeed(29),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.NoError(s.T(), err)

	a, b := records.Chain(0, 0), records.Chain(1, 0)
	same := true
	for i := range a {
		if a[i].Parameters[0] != b[i].Parameters[0] {
			same = false

			break
		}
	}
	require.False(s.T(), same, "chains with distinct derived seeds must diverge")
}

// TestCancellation: a pre-cancelled context aborts before finishing.
func (s *SamplerSuite) TestCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sampler.Sample(
		[]link.Factory{standardNormalFactory(s.T())},
		rwProposal(s.T(), 1, 1),
		1000, 1,
		sampler.WithContext(ctx),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.ErrorIs(s.T(), err, context.Canceled)
}

// TestEvaluationFailureAborts: a model error surfaces to the caller.
func (s *SamplerSuite) TestEvaluationFailureAborts() {
	prior, err := density.NewIsotropicGaussian([]float64{0}, 1, nil)
	require.NoError(s.T(), err)

	failing := func(p []float64) ([]float64, error) {
		if math.Abs(p[0]) > 0.0 { // any move away from the origin fails
			return nil, context.DeadlineExceeded
		}

		return identity(p)
	}
	f, err := link.NewModelFactory(1, prior, constLike{}, failing)
	require.NoError(s.T(), err)

	_, err = sampler.Sample(
		[]link.Factory{f},
		rwProposal(s.T(), 1, 31),
		100, 1,
		sampler.WithSeed(31),
		sampler.WithInitialParameters([]float64{0}),
	)
	require.ErrorIs(s.T(), err, link.ErrModelFailure)
}

func TestSamplerSuite(t *testing.T) {
	suite.Run(t, new(SamplerSuite))
}
