// Package analysis is the query surface over a sample store.
//
// An Analyzer wraps a *store.Samples owned by the caller and answers the
// diagnostic queries by name: autocorrelation times, effective sample sizes,
// posterior summaries and joint density contours. Every error names the
// parameter it concerns; nothing falls back to a default value.
package analysis

import (
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/chainstat/internal/acor"
	"github.com/roach88/chainstat/internal/contour"
	"github.com/roach88/chainstat/internal/posterior"
	"github.com/roach88/chainstat/internal/store"
	"github.com/roach88/chainstat/internal/trace"
)

// Analyzer answers diagnostic queries against a sample store.
type Analyzer struct {
	samples     *store.Samples
	acorOpts    []acor.Option
	contourOpts []contour.Option
	logger      *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithAcorOptions sets the options passed to the autocorrelation estimator.
func WithAcorOptions(opts ...acor.Option) Option {
	return func(a *Analyzer) {
		a.acorOpts = append(a.acorOpts, opts...)
	}
}

// WithContourOptions sets the default options of JointDensityContours.
func WithContourOptions(opts ...contour.Option) Option {
	return func(a *Analyzer) {
		a.contourOpts = append(a.contourOpts, opts...)
	}
}

// WithLogger sets the logger for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer over samples. The store is read, never written.
func New(samples *store.Samples, opts ...Option) *Analyzer {
	a := &Analyzer{
		samples: samples,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get returns an independent copy of the named trace.
func (a *Analyzer) Get(name string) (trace.Trace, error) {
	return a.samples.Get(name)
}

// Autocorrelation returns the integrated autocorrelation time of every
// dimension of the named trace.
func (a *Analyzer) Autocorrelation(name string) ([]float64, error) {
	t, err := a.samples.Get(name)
	if err != nil {
		return nil, err
	}
	taus, err := acor.Trace(t, a.acorOpts...)
	if err != nil {
		return nil, named(err, name)
	}
	a.logger.Debug("autocorrelation", "name", name, "tau", taus)
	return taus, nil
}

// EffectiveSampleSize returns N/τ for every dimension of the named trace,
// using exactly the τ values Autocorrelation reports.
func (a *Analyzer) EffectiveSampleSize(name string) ([]float64, error) {
	t, err := a.samples.Get(name)
	if err != nil {
		return nil, err
	}
	taus, err := a.Autocorrelation(name)
	if err != nil {
		return nil, err
	}
	return posterior.FromTau(t.Iterations(), taus), nil
}

// PosteriorSummary summarizes every dimension of the named trace.
func (a *Analyzer) PosteriorSummary(name string) ([]posterior.Summary, error) {
	t, err := a.samples.Get(name)
	if err != nil {
		return nil, err
	}
	ess, err := a.EffectiveSampleSize(name)
	if err != nil {
		return nil, err
	}
	sums, err := posterior.Summarize(trace.NormalizeName(name), t, ess)
	if err != nil {
		return nil, named(err, name)
	}
	return sums, nil
}

// JointDensityContours computes credible contours for dimension dim1 of name1
// against dimension dim2 of name2, paired by draw index. With no fractions
// the configured (or default) mass fractions are used.
func (a *Analyzer) JointDensityContours(name1 string, dim1 int, name2 string, dim2 int, fractions ...float64) (*contour.Result, error) {
	x, err := a.column(name1, dim1)
	if err != nil {
		return nil, err
	}
	y, err := a.column(name2, dim2)
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, trace.ShapeMismatch(trace.NormalizeName(name2), len(x), len(y)).
			WithDetail("paired_with", trace.NormalizeName(name1))
	}

	opts := append([]contour.Option(nil), a.contourOpts...)
	if len(fractions) > 0 {
		opts = append(opts, contour.WithFractions(fractions...))
	}
	r, err := contour.Compute(x, y, opts...)
	if err != nil {
		return nil, named(err, name1+","+name2)
	}
	a.logger.Debug("joint density contours",
		"x", name1, "x_dim", dim1,
		"y", name2, "y_dim", dim2,
		"stragglers", len(r.Stragglers))
	return r, nil
}

// AutocorrelationFunction returns ρ(0..maxLag) of one dimension of the named
// trace. A negative maxLag selects every lag.
func (a *Analyzer) AutocorrelationFunction(name string, dim, maxLag int) ([]float64, error) {
	col, err := a.column(name, dim)
	if err != nil {
		return nil, err
	}
	rho, err := acor.Function(col, maxLag)
	if err != nil {
		return nil, named(err, name)
	}
	return rho, nil
}

// Histogram bins one dimension of the named trace.
func (a *Analyzer) Histogram(name string, dim, bins int) (posterior.Histogram, error) {
	col, err := a.column(name, dim)
	if err != nil {
		return posterior.Histogram{}, err
	}
	h, err := posterior.NewHistogram(col, bins)
	if err != nil {
		return posterior.Histogram{}, named(err, name)
	}
	return h, nil
}

// MarginalDensity returns a kernel density estimate of one dimension of the
// named trace.
func (a *Analyzer) MarginalDensity(name string, dim, points int) (posterior.Density, error) {
	col, err := a.column(name, dim)
	if err != nil {
		return posterior.Density{}, err
	}
	d, err := posterior.MarginalDensity(col, points)
	if err != nil {
		return posterior.Density{}, named(err, name)
	}
	return d, nil
}

// column returns dimension dim of the named trace, with trailing axes
// flattened row-major.
func (a *Analyzer) column(name string, dim int) ([]float64, error) {
	t, err := a.samples.Get(name)
	if err != nil {
		return nil, err
	}
	col, err := t.Reshape2D().Column(dim)
	if err != nil {
		return nil, named(err, name)
	}
	return col, nil
}

// named attributes a diagnostic error to a parameter.
func named(err error, name string) error {
	var te *trace.Error
	if errors.As(err, &te) && te.Name == "" {
		return te.WithName(trace.NormalizeName(name))
	}
	return err
}
