package proposal

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// gaussianStep is the shared draw engine of the Gaussian kernels: a
// zero-mean multivariate normal whose covariance can be swapped when an
// adaptive variant re-tunes. The random source survives covariance
// swaps, so a fixed seed still yields one deterministic draw stream.
type gaussianStep struct {
	normal *distmv.Normal
	src    rand.Source
	dim    int
}

// newGaussianStep builds a zero-mean step of the given covariance.
// Returns ErrNotPositiveDefinite when the Cholesky factorization fails.
func newGaussianStep(cov *mat.SymDense, src rand.Source) (*gaussianStep, error) {
	d := cov.SymmetricDim()
	normal, ok := distmv.NewNormal(make([]float64, d), cov, src)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	return &gaussianStep{normal: normal, src: src, dim: d}, nil
}

// setCov replaces the step covariance, keeping the random source.
func (s *gaussianStep) setCov(cov *mat.SymDense) error {
	normal, ok := distmv.NewNormal(make([]float64, s.dim), cov, s.src)
	if !ok {
		return ErrNotPositiveDefinite
	}
	s.normal = normal

	return nil
}

// draw returns one zero-mean step ξ.
func (s *gaussianStep) draw() []float64 { return s.normal.Rand(nil) }

// perturb returns current + ξ as a fresh slice.
func (s *gaussianStep) perturb(current []float64) []float64 {
	y := s.normal.Rand(nil)
	for i := range y {
		y[i] += current[i]
	}

	return y
}

// scaledCov returns factor·cov as a new matrix.
func scaledCov(cov *mat.SymDense, factor float64) *mat.SymDense {
	d := cov.SymmetricDim()
	out := mat.NewSymDense(d, nil)
	out.ScaleSym(factor, cov)

	return out
}

// cloneSym returns an independent copy of cov.
func cloneSym(cov *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(cov.SymmetricDim(), nil)
	out.CopySym(cov)

	return out
}
