package posterior

import (
	"github.com/roach88/chainstat/internal/acor"
	"github.com/roach88/chainstat/internal/trace"
)

// EffectiveSampleSize returns N/τ_d for every dimension d of t.
//
// If any dimension's autocorrelation time cannot be estimated the whole call
// fails; callers that want partial diagnostics estimate per column with
// acor.Estimate.
func EffectiveSampleSize(t trace.Trace, opts ...acor.Option) ([]float64, error) {
	taus, err := acor.Trace(t, opts...)
	if err != nil {
		return nil, err
	}
	return FromTau(t.Iterations(), taus), nil
}

// FromTau converts autocorrelation times to effective sample sizes for a
// chain of n draws.
func FromTau(n int, taus []float64) []float64 {
	ess := make([]float64, len(taus))
	for d, tau := range taus {
		ess[d] = float64(n) / tau
	}
	return ess
}
