// Package contour computes credible regions of a joint sample from a kernel
// density estimate.
//
// Given paired draws (x_i, y_i) the engine
//
//  1. fits a Gaussian KDE with Scott's bandwidth factor n^(-1/6) applied to
//     the sample covariance,
//  2. evaluates it on a regular grid spanning the observed range of each axis,
//  3. for every requested mass fraction f, bisects on the density level L until
//     the grid mass at or above L is a fraction f of the total,
//  4. traces the boundary rings at each level with a pluggable Tracer, and
//  5. classifies every draw as inside or outside (a straggler) of the
//     outermost level's rings.
//
// Levels are always ordered outer to inner, largest mass fraction first, so
// the outermost level is Levels[0].
//
// Straggler classification tests containment in any ring of the outermost
// level. When that level is not a single connected region (several islands,
// or a ring with a hole) the classification is approximate: a draw inside a
// hole still counts as inside. This is a known limitation.
package contour
