package proposal

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/bagr-sus/tinyDA/link"
)

// DREAMZ is an ensemble (DREAM(Z)-type) kernel: candidates are built
// from the difference of two states sampled from an archive Z of past
// chain states,
//
//	candidate = current + γ·(z₁ − z₂) + e,   e_i ~ U(−b, b),
//
// so the proposal automatically picks up the scale and orientation of
// the target without an explicit covariance. The archive grows during
// Adapt (one entry every thin steps); while it holds fewer than three
// states the kernel falls back to an isotropic random walk. The jump
// distribution is symmetric in (z₁, z₂), so LogRatio is zero.
type DREAMZ struct {
	fallback *gaussianStep
	rng      *rand.Rand
	archive  [][]float64
	dim      int
	gamma    float64 // jump scale, default 2.38/√(2d)
	b        float64 // half-width of the uniform jitter
	thin     int     // archive append period
	sigma0   float64 // fallback random-walk std before the archive fills
	seed     uint64
}

// NewDREAMZ builds an ensemble kernel of the given dimension.
//
// Preconditions (checked in order):
//  1. dim must be positive (ErrBadDimension).
//  2. sigma0 must be positive (ErrBadScaling) — it drives the warmup walk.
func NewDREAMZ(dim int, sigma0 float64, seed uint64) (*DREAMZ, error) {
	if dim <= 0 {
		return nil, ErrBadDimension
	}
	if sigma0 <= 0 {
		return nil, ErrBadScaling
	}

	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, sigma0*sigma0)
	}
	fallback, err := newGaussianStep(cov, rand.NewSource(seed))
	if err != nil {
		return nil, err
	}

	return &DREAMZ{
		fallback: fallback,
		rng:      rand.New(rand.NewSource(seed + 1)),
		dim:      dim,
		gamma:    2.38 / math.Sqrt(2*float64(dim)),
		b:        1e-4,
		thin:     10,
		sigma0:   sigma0,
		seed:     seed,
	}, nil
}

// Propose draws a differential-evolution candidate from the archive, or
// a warmup random-walk candidate while the archive is still too small.
func (p *DREAMZ) Propose(current []float64) []float64 {
	if len(p.archive) < 3 {
		return p.fallback.perturb(current)
	}

	i := p.rng.Intn(len(p.archive))
	j := p.rng.Intn(len(p.archive) - 1)
	if j >= i {
		j++ // distinct archive rows
	}
	z1, z2 := p.archive[i], p.archive[j]

	y := make([]float64, p.dim)
	for k := 0; k < p.dim; k++ {
		jitter := p.b * (2*p.rng.Float64() - 1)
		y[k] = current[k] + p.gamma*(z1[k]-z2[k]) + jitter
	}

	return y
}

// Adapt appends the newest visited state to the archive every thin
// steps. The archive only ever grows; DREAM(Z) theory requires past
// states to stay eligible for jumps.
func (p *DREAMZ) Adapt(iteration int, _ bool, history []*link.Link) {
	if len(history) == 0 || iteration%p.thin != 0 {
		return
	}

	last := history[len(history)-1].Parameters
	state := make([]float64, len(last))
	copy(state, last)
	p.archive = append(p.archive, state)
}

// LogRatio is zero: the jump distribution is symmetric.
func (p *DREAMZ) LogRatio(_, _ *link.Link) float64 { return 0 }

// Clone returns an independent kernel with the same configuration and an
// empty archive.
func (p *DREAMZ) Clone(seed uint64) Proposal {
	c, err := NewDREAMZ(p.dim, p.sigma0, seed)
	if err != nil {
		panic(err)
	}
	c.gamma = p.gamma
	c.b = p.b
	c.thin = p.thin

	return c
}

// Dim reports the parameter dimension.
func (p *DREAMZ) Dim() int { return p.dim }

// ArchiveSize reports how many states the archive holds (tests).
func (p *DREAMZ) ArchiveSize() int { return len(p.archive) }
