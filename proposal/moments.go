package proposal

import "gonum.org/v1/gonum/mat"

// RunningMoments maintains a numerically stable online estimate of the
// mean and covariance of a stream of vectors using Welford's recursion.
// Memory is O(d²) regardless of how many vectors were pushed; the full
// history is never stored or revisited.
type RunningMoments struct {
	n    int
	mean []float64
	m2   *mat.SymDense // running sum of outer products of deviations
}

// NewRunningMoments returns an empty accumulator for d-dimensional data.
func NewRunningMoments(d int) *RunningMoments {
	return &RunningMoments{
		mean: make([]float64, d),
		m2:   mat.NewSymDense(d, nil),
	}
}

// Push folds one observation into the running estimate.
//
// Welford update:
//
//	n      += 1
//	delta   = x - mean          (deviation from the old mean)
//	mean   += delta / n
//	delta2  = x - mean          (deviation from the new mean)
//	M2     += delta ⊗ delta2
func (r *RunningMoments) Push(x []float64) {
	r.n++
	d := len(r.mean)

	delta := make([]float64, d)
	for i := 0; i < d; i++ {
		delta[i] = x[i] - r.mean[i]
		r.mean[i] += delta[i] / float64(r.n)
	}

	for i := 0; i < d; i++ {
		d2i := x[i] - r.mean[i]
		for j := i; j < d; j++ {
			r.m2.SetSym(i, j, r.m2.At(i, j)+delta[j]*d2i)
		}
	}
}

// Count reports how many observations were pushed.
func (r *RunningMoments) Count() int { return r.n }

// Mean returns a copy of the running mean.
func (r *RunningMoments) Mean() []float64 {
	m := make([]float64, len(r.mean))
	copy(m, r.mean)

	return m
}

// Cov writes the sample covariance (M2 / (n-1)) into dst and returns it.
// dst == nil allocates. With fewer than two observations the covariance
// is all zeros.
func (r *RunningMoments) Cov(dst *mat.SymDense) *mat.SymDense {
	d := len(r.mean)
	if dst == nil {
		dst = mat.NewSymDense(d, nil)
	}
	if r.n < 2 {
		dst.Zero()

		return dst
	}

	scale := 1 / float64(r.n-1)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			dst.SetSym(i, j, r.m2.At(i, j)*scale)
		}
	}

	return dst
}
