package density

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel errors returned by density constructors.
var (
	// ErrEmptyMean indicates an empty mean vector.
	ErrEmptyMean = errors.New("density: mean vector must be non-empty")

	// ErrNotPositiveDefinite indicates a covariance matrix whose Cholesky
	// factorization failed.
	ErrNotPositiveDefinite = errors.New("density: covariance must be positive-definite")

	// ErrBadBounds indicates box bounds with lower[i] >= upper[i] or
	// mismatched lengths.
	ErrBadBounds = errors.New("density: invalid box bounds")

	// ErrBadSigma indicates a non-positive isotropic standard deviation.
	ErrBadSigma = errors.New("density: sigma must be positive")
)

// Gaussian is a multivariate normal density. It satisfies both the
// link.Prior capability (LogPDF + Rand) and the link.Likelihood
// capability (LogLike), so the same type serves as a prior over
// parameters or as a data likelihood N(data, noise) over model outputs.
type Gaussian struct {
	normal *distmv.Normal
	dim    int
}

// NewGaussian builds a Gaussian with the given mean and covariance.
// The source feeds Rand; it may be nil for evaluation-only use.
// Returns ErrEmptyMean or ErrNotPositiveDefinite on invalid input; a
// nil or mis-sized covariance counts as not positive-definite.
func NewGaussian(mean []float64, cov *mat.SymDense, src rand.Source) (*Gaussian, error) {
	if len(mean) == 0 {
		return nil, ErrEmptyMean
	}
	if cov == nil || cov.SymmetricDim() != len(mean) {
		return nil, ErrNotPositiveDefinite
	}

	n, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	return &Gaussian{normal: n, dim: len(mean)}, nil
}

// NewIsotropicGaussian builds a Gaussian with covariance sigma²·I.
func NewIsotropicGaussian(mean []float64, sigma float64, src rand.Source) (*Gaussian, error) {
	if sigma <= 0 {
		return nil, ErrBadSigma
	}

	cov := mat.NewSymDense(len(mean), nil)
	for i := 0; i < len(mean); i++ {
		cov.SetSym(i, i, sigma*sigma)
	}

	return NewGaussian(mean, cov, src)
}

// Dim reports the dimension of the density.
func (g *Gaussian) Dim() int { return g.dim }

// LogPDF returns the log-density at x (link.Prior capability).
func (g *Gaussian) LogPDF(x []float64) float64 { return g.normal.LogProb(x) }

// LogLike returns the log-likelihood of the configured data (the mean)
// given a model output (link.Likelihood capability).
func (g *Gaussian) LogLike(output []float64) float64 { return g.normal.LogProb(output) }

// Rand fills dst with one draw and returns it; dst == nil allocates.
func (g *Gaussian) Rand(dst []float64) []float64 { return g.normal.Rand(dst) }

// UniformBox is a product of independent uniform marginals on
// [lower[i], upper[i]]. Outside the box the log-density is -Inf, which
// triggers the factories' short-circuit path.
type UniformBox struct {
	marginals []distuv.Uniform
	logVolume float64
}

// NewUniformBox builds a box prior from matching lower/upper bounds.
func NewUniformBox(lower, upper []float64, src rand.Source) (*UniformBox, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return nil, ErrBadBounds
	}

	marginals := make([]distuv.Uniform, len(lower))
	logVol := 0.0
	for i := range lower {
		if lower[i] >= upper[i] {
			return nil, ErrBadBounds
		}
		marginals[i] = distuv.Uniform{Min: lower[i], Max: upper[i], Src: src}
		logVol += math.Log(upper[i] - lower[i])
	}

	return &UniformBox{marginals: marginals, logVolume: logVol}, nil
}

// Dim reports the dimension of the box.
func (u *UniformBox) Dim() int { return len(u.marginals) }

// LogPDF returns -log(volume) inside the box and -Inf outside.
func (u *UniformBox) LogPDF(x []float64) float64 {
	if len(x) != len(u.marginals) {
		return math.Inf(-1)
	}
	for i, m := range u.marginals {
		if x[i] < m.Min || x[i] > m.Max {
			return math.Inf(-1)
		}
	}

	return -u.logVolume
}

// Rand fills dst with one draw from the box and returns it.
func (u *UniformBox) Rand(dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(u.marginals))
	}
	for i, m := range u.marginals {
		dst[i] = m.Rand()
	}

	return dst
}
