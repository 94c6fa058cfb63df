// Package acor estimates the integrated autocorrelation time of a chain.
//
// For a stationary sequence x with autocorrelation function ρ, the integrated
// autocorrelation time is
//
//	τ = 1 + 2 Σ_{k≥1} ρ(k)
//
// and a chain of N draws carries roughly N/τ independent samples.
//
// Summing the empirical ρ over every lag is useless: the tail is pure noise
// whose variance grows with the number of terms. Summing over a fixed short
// window cuts off real correlation. The estimator here uses a self-consistent
// window instead: the cutoff M is the smallest lag with
//
//	M ≥ c · τ(M)
//
// where τ(M) is the partial sum up to M and c is the window factor (5 by
// default). If the chain is too short for such an M to exist, Estimate fails
// with INSUFFICIENT_SAMPLES instead of returning a biased value.
//
// Autocovariances are computed with a zero-padded real FFT, so the cost is
// O(N log N) regardless of the window.
package acor
