// Package density provides ready-made probability-density collaborators
// for the sampling engine, backed by gonum's distribution types.
//
// The engine itself (packages link, sampler) only ever sees the small
// Prior and Likelihood capability interfaces; this package exists so a
// user can assemble a working posterior in a few lines without writing
// density code:
//
//   - Gaussian   — multivariate normal over distmv.Normal; usable both as
//     a Prior (log-density + sampling) and as a Likelihood (the mean is
//     the observed data, the covariance the noise model).
//   - UniformBox — independent uniform marginals over distuv.Uniform;
//     -Inf outside the box, which exercises the factories' prior
//     short-circuit path.
//
// All types take an explicit rand.Source (golang.org/x/exp/rand, the
// source type gonum distributions consume) so runs remain reproducible.
package density
