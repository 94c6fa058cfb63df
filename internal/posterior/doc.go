// Package posterior reduces traces to effective sample sizes and posterior
// summaries.
//
// EffectiveSampleSize divides the chain length by the integrated
// autocorrelation time of each dimension. Summarize reports, per dimension,
// the median, the standard deviation and the 68%, 95% and 99% central credible
// intervals taken from the empirical percentiles of the draws.
//
// Histogram and MarginalDensity provide the one-dimensional views a plotting
// layer needs without doing any rendering here.
package posterior
