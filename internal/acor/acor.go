package acor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/roach88/chainstat/internal/trace"
)

// DefaultWindow is the default window factor c in M ≥ c·τ(M).
const DefaultWindow = 5.0

// DefaultMinLengthFactor is the default minimum chain length as a multiple of
// the window factor.
const DefaultMinLengthFactor = 2.0

// Result is the outcome of one estimate.
type Result struct {
	// Tau is the integrated autocorrelation time.
	Tau float64

	// Mean is the sample mean of the chain.
	Mean float64

	// Sigma is the standard error of Mean accounting for correlation,
	// sqrt(τ·C(0)/N).
	Sigma float64

	// Window is the self-consistent summation cutoff M.
	Window int
}

type options struct {
	window    float64
	minFactor float64
}

// Option configures Estimate.
type Option func(*options)

// WithWindow sets the window factor c. Values below 1 are ignored.
func WithWindow(c float64) Option {
	return func(o *options) {
		if c >= 1 {
			o.window = c
		}
	}
}

// WithMinLengthFactor sets the minimum chain length as a multiple of the
// window factor. Values below 1 are ignored.
func WithMinLengthFactor(f float64) Option {
	return func(o *options) {
		if f >= 1 {
			o.minFactor = f
		}
	}
}

func newOptions(opts []Option) options {
	o := options{window: DefaultWindow, minFactor: DefaultMinLengthFactor}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Estimate computes the integrated autocorrelation time of xs.
//
// Errors:
//   - DEGENERATE_TRACE if xs has zero variance, a non-finite value, or the
//     windowed sum is not positive
//   - INSUFFICIENT_SAMPLES if xs is shorter than the minimum length or no
//     self-consistent window exists within the first len(xs)/minFactor lags
func Estimate(xs []float64, opts ...Option) (Result, error) {
	o := newOptions(opts)
	n := len(xs)

	if minLen := o.minFactor * o.window; float64(n) < minLen {
		return Result{}, trace.InsufficientSamples(
			fmt.Sprintf("%d draws, need at least %g", n, minLen), n)
	}
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, trace.Degenerate(fmt.Sprintf("non-finite value at draw %d", i))
		}
	}

	mean, acov := autocovariance(xs)
	c0 := acov[0]
	if c0 == 0 {
		return Result{}, trace.Degenerate("zero variance")
	}

	// Lags past n/minFactor are too poorly estimated to end the window on.
	maxWindow := min(n-1, int(float64(n)/o.minFactor))
	tau := 1.0
	for m := 1; m <= maxWindow; m++ {
		tau += 2 * acov[m] / c0
		if float64(m) < o.window*tau {
			continue
		}
		if tau <= 0 {
			return Result{}, trace.Degenerate(
				fmt.Sprintf("non-positive autocorrelation time %g at window %d", tau, m))
		}
		return Result{
			Tau:    tau,
			Mean:   mean,
			Sigma:  math.Sqrt(tau * c0 / float64(n)),
			Window: m,
		}, nil
	}

	return Result{}, trace.InsufficientSamples(
		fmt.Sprintf("no self-consistent window within %d lags (partial tau %g)", maxWindow, tau), n)
}

// Tau returns only the autocorrelation time of xs.
func Tau(xs []float64, opts ...Option) (float64, error) {
	r, err := Estimate(xs, opts...)
	if err != nil {
		return 0, err
	}
	return r.Tau, nil
}

// Trace estimates τ independently for every dimension of t, in dimension
// order. The first failing dimension fails the call; its error carries the
// dimension index.
func Trace(t trace.Trace, opts ...Option) ([]float64, error) {
	if t.IsZero() {
		return nil, trace.InsufficientSamples("empty trace", 0)
	}
	m := t.Reshape2D()
	taus := make([]float64, m.Dims())
	for d := range taus {
		col, err := m.Column(d)
		if err != nil {
			return nil, err
		}
		taus[d], err = Tau(col, opts...)
		if err != nil {
			return nil, withDim(err, d)
		}
	}
	return taus, nil
}

// Function returns the normalized autocorrelation ρ(0..maxLag) of xs.
// A negative maxLag or one beyond the chain selects every lag up to len(xs)-1.
func Function(xs []float64, maxLag int) ([]float64, error) {
	if len(xs) < 2 {
		return nil, trace.InsufficientSamples(
			fmt.Sprintf("%d draws, need at least 2", len(xs)), len(xs))
	}
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, trace.Degenerate(fmt.Sprintf("non-finite value at draw %d", i))
		}
	}
	if maxLag < 0 || maxLag >= len(xs) {
		maxLag = len(xs) - 1
	}

	_, acov := autocovariance(xs)
	if acov[0] == 0 {
		return nil, trace.Degenerate("zero variance")
	}
	rho := make([]float64, maxLag+1)
	for k := range rho {
		rho[k] = acov[k] / acov[0]
	}
	return rho, nil
}

// autocovariance returns the mean of xs and its biased autocovariance
// C(k) = 1/N Σ (x_i - mean)(x_{i+k} - mean) for k in [0, N).
func autocovariance(xs []float64) (float64, []float64) {
	n := len(xs)
	mean := 0.0
	for _, v := range xs {
		mean += v
	}
	mean /= float64(n)

	// Padding to at least 2N removes the circular wrap-around.
	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	for i, v := range xs {
		padded[i] = v - mean
	}

	fft := fourier.NewFFT(size)
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	seq := fft.Sequence(nil, coeff)

	acov := make([]float64, n)
	norm := float64(size) * float64(n)
	for k := range acov {
		acov[k] = seq[k] / norm
	}
	// Round-off leaves tiny noise where the exact variance is zero.
	if acov[0] <= 0 || isNegligible(acov[0], xs, mean) {
		acov[0] = 0
	}
	return mean, acov
}

// isNegligible reports whether variance is indistinguishable from zero at the
// scale of the data.
func isNegligible(variance float64, xs []float64, mean float64) bool {
	scale := math.Abs(mean)
	for _, v := range xs {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		return true
	}
	return variance <= (scale*scale)*1e-28
}

func withDim(err error, d int) error {
	var te *trace.Error
	if errors.As(err, &te) {
		return te.WithDetail("dim", fmt.Sprintf("%d", d))
	}
	return fmt.Errorf("dimension %d: %w", d, err)
}
