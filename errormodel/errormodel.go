package errormodel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/bagr-sus/tinyDA/link"
	"github.com/bagr-sus/tinyDA/proposal"
)

// Sentinel errors returned by error-model constructors.
var (
	// ErrNilLikelihood indicates a model constructed without the coarse
	// level's likelihood (needed to re-evaluate corrected outputs).
	ErrNilLikelihood = errors.New("errormodel: likelihood must not be nil")
)

// Model is the adaptive error model capability consumed by the sampler.
type Model interface {
	// Update folds one paired observation into the bias estimate. It must
	// only be called when both links were evaluated at the same parameter
	// point (a successful second-stage evaluation).
	Update(coarse, fine *link.Link)

	// Correct returns a copy of raw whose log-likelihood is re-evaluated
	// at the bias-corrected model output. Links without model output
	// (prior short-circuit) pass through unchanged.
	Correct(raw *link.Link) *link.Link

	// Clone returns an independent model with fresh statistics for
	// another chain.
	Clone() Model
}

// StateIndependent estimates a single global bias vector: the running
// mean of (fine output − coarse output) over all paired observations.
type StateIndependent struct {
	likelihood link.Likelihood
	moments    *proposal.RunningMoments // sized lazily at first Update
}

// NewStateIndependent builds a global-bias model re-evaluating corrected
// outputs through the given coarse likelihood.
func NewStateIndependent(likelihood link.Likelihood) (*StateIndependent, error) {
	if likelihood == nil {
		return nil, ErrNilLikelihood
	}

	return &StateIndependent{likelihood: likelihood}, nil
}

// Update folds the output discrepancy of one paired observation.
func (m *StateIndependent) Update(coarse, fine *link.Link) {
	m.moments = pushDiscrepancy(m.moments, coarse.ModelOutput, fine.ModelOutput, nil)
}

// Correct re-evaluates raw's likelihood at output + bias. Before the
// first Update (or for output-less links) raw is returned unchanged.
func (m *StateIndependent) Correct(raw *link.Link) *link.Link {
	if raw.ModelOutput == nil || m.moments == nil {
		return raw
	}

	bias := m.moments.Mean()
	corrected := make([]float64, len(raw.ModelOutput))
	for i := range corrected {
		corrected[i] = raw.ModelOutput[i] + bias[i]
	}

	return raw.WithLogLikelihood(m.likelihood.LogLike(corrected))
}

// Clone returns an independent model with no accumulated statistics.
func (m *StateIndependent) Clone() Model {
	return &StateIndependent{likelihood: m.likelihood}
}

// Bias returns the current global bias estimate (nil before any Update).
func (m *StateIndependent) Bias() []float64 {
	if m.moments == nil {
		return nil
	}

	return m.moments.Mean()
}

// StateDependent estimates a location-conditioned bias surface. It keeps
// joint running moments of the stacked vector (θ, b) — parameters and
// discrepancy — and corrects with the linear-Gaussian conditional mean
//
//	bias(θ) = μ_b + Σ_bθ · Σ_θθ⁻¹ · (θ − μ_θ).
//
// While fewer paired observations than minObs have arrived, or whenever
// Σ_θθ fails to factorize, the model falls back to the global mean μ_b
// (the documented defensive policy for the non-PD edge).
type StateDependent struct {
	likelihood link.Likelihood
	moments    *proposal.RunningMoments // over (θ, b), sized lazily
	paramDim   int
	outDim     int
	minObs     int
}

// NewStateDependent builds a location-conditioned bias model. The
// conditional kicks in once max(3, paramDim+2) paired observations have
// arrived; before that it behaves like StateIndependent.
func NewStateDependent(likelihood link.Likelihood) (*StateDependent, error) {
	if likelihood == nil {
		return nil, ErrNilLikelihood
	}

	return &StateDependent{likelihood: likelihood}, nil
}

// Update folds one paired observation into the joint moments.
func (m *StateDependent) Update(coarse, fine *link.Link) {
	if m.moments == nil {
		m.paramDim = len(coarse.Parameters)
		m.outDim = len(coarse.ModelOutput)
		m.minObs = m.paramDim + 2
		if m.minObs < 3 {
			m.minObs = 3
		}
	}
	m.moments = pushDiscrepancy(m.moments, coarse.ModelOutput, fine.ModelOutput, coarse.Parameters)
}

// Correct re-evaluates raw's likelihood at output + bias(θ).
func (m *StateDependent) Correct(raw *link.Link) *link.Link {
	if raw.ModelOutput == nil || m.moments == nil {
		return raw
	}

	bias := m.localBias(raw.Parameters)
	corrected := make([]float64, len(raw.ModelOutput))
	for i := range corrected {
		corrected[i] = raw.ModelOutput[i] + bias[i]
	}

	return raw.WithLogLikelihood(m.likelihood.LogLike(corrected))
}

// localBias evaluates the conditional-mean bias at θ, falling back to
// the global mean when the estimate is not yet well-conditioned.
func (m *StateDependent) localBias(theta []float64) []float64 {
	mean := m.moments.Mean()
	global := mean[m.paramDim:] // μ_b

	if m.moments.Count() < m.minObs {
		return global
	}

	joint := m.moments.Cov(nil)

	// Σ_θθ block.
	sigTT := mat.NewSymDense(m.paramDim, nil)
	for i := 0; i < m.paramDim; i++ {
		for j := i; j < m.paramDim; j++ {
			sigTT.SetSym(i, j, joint.At(i, j))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sigTT) {
		return global
	}

	// w = Σ_θθ⁻¹ (θ − μ_θ).
	delta := mat.NewVecDense(m.paramDim, nil)
	for i := 0; i < m.paramDim; i++ {
		delta.SetVec(i, theta[i]-mean[i])
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, delta); err != nil {
		return global
	}

	// bias_i = μ_b[i] + Σ_bθ[i,:] · w.
	bias := make([]float64, m.outDim)
	for i := 0; i < m.outDim; i++ {
		dot := 0.0
		for j := 0; j < m.paramDim; j++ {
			dot += joint.At(m.paramDim+i, j) * w.AtVec(j)
		}
		bias[i] = global[i] + dot
	}

	return bias
}

// Clone returns an independent model with no accumulated statistics.
func (m *StateDependent) Clone() Model {
	return &StateDependent{likelihood: m.likelihood}
}

// pushDiscrepancy appends one (θ?, fine−coarse) observation to moments,
// allocating the accumulator on first use. With params == nil only the
// discrepancy is tracked.
func pushDiscrepancy(moments *proposal.RunningMoments, coarseOut, fineOut, params []float64) *proposal.RunningMoments {
	if len(coarseOut) != len(fineOut) {
		panic(fmt.Sprintf("errormodel: paired outputs disagree in dimension: %d vs %d", len(coarseOut), len(fineOut)))
	}

	obs := make([]float64, 0, len(params)+len(coarseOut))
	obs = append(obs, params...)
	for i := range coarseOut {
		obs = append(obs, fineOut[i]-coarseOut[i])
	}

	if moments == nil {
		moments = proposal.NewRunningMoments(len(obs))
	}
	moments.Push(obs)

	return moments
}
