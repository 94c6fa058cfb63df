// Package synth generates seeded synthetic chains with known diagnostics.
//
// The generators back the estimator tests and the diagnostic scenarios: an
// AR(1) chain with coefficient φ has integrated autocorrelation time
// (1+φ)/(1-φ), and independent bivariate Gaussian draws have known credible
// regions. The same seed always yields the same chain.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/chainstat/internal/trace"
)

// source returns the deterministic generator for a seed.
func source(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// AR1 returns n draws of x_t = φ x_{t-1} + ε_t with ε_t ~ N(0, 1).
// The chain starts from the stationary distribution N(0, 1/(1-φ²)), so there
// is no burn-in transient. |φ| must be below 1.
func AR1(n int, phi float64, seed uint64) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("synth: length must be positive, got %d", n)
	}
	if math.Abs(phi) >= 1 {
		return nil, fmt.Errorf("synth: AR(1) coefficient %g is not stationary", phi)
	}

	eps := distuv.Normal{Mu: 0, Sigma: 1, Src: source(seed)}
	xs := make([]float64, n)
	xs[0] = eps.Rand() / math.Sqrt(1-phi*phi)
	for i := 1; i < n; i++ {
		xs[i] = phi*xs[i-1] + eps.Rand()
	}
	return xs, nil
}

// AR1Tau is the analytic integrated autocorrelation time of an AR(1) chain.
func AR1Tau(phi float64) float64 {
	return (1 + phi) / (1 - phi)
}

// AR1Trace returns an (n x dims) trace whose columns are independent AR(1)
// chains sharing φ. A single dimension yields a flat trace.
func AR1Trace(n, dims int, phi float64, seed uint64) (trace.Trace, error) {
	if dims <= 0 {
		return trace.Trace{}, fmt.Errorf("synth: dims must be positive, got %d", dims)
	}
	data := make([]float64, n*dims)
	for d := 0; d < dims; d++ {
		col, err := AR1(n, phi, seed+uint64(d))
		if err != nil {
			return trace.Trace{}, err
		}
		for i, v := range col {
			data[i*dims+d] = v
		}
	}
	if dims == 1 {
		return trace.Flat(data)
	}
	return trace.New([]int{n, dims}, data)
}

// Gaussian2 returns n independent draws from a zero-mean bivariate normal with
// unit variances and correlation rho, as an (n x 2) trace.
func Gaussian2(n int, rho float64, seed uint64) (trace.Trace, error) {
	if n <= 0 {
		return trace.Trace{}, fmt.Errorf("synth: length must be positive, got %d", n)
	}
	cov := mat.NewSymDense(2, []float64{1, rho, rho, 1})
	dist, ok := distmv.NewNormal([]float64{0, 0}, cov, source(seed))
	if !ok {
		return trace.Trace{}, fmt.Errorf("synth: correlation %g gives a singular covariance", rho)
	}
	data := make([]float64, 0, 2*n)
	draw := make([]float64, 2)
	for i := 0; i < n; i++ {
		dist.Rand(draw)
		data = append(data, draw...)
	}
	return trace.New([]int{n, 2}, data)
}

// Constant returns a flat trace of n copies of value.
func Constant(n int, value float64) (trace.Trace, error) {
	if n <= 0 {
		return trace.Trace{}, fmt.Errorf("synth: length must be positive, got %d", n)
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	return trace.Flat(data)
}
