package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/chainstat/internal/analysis"
	"github.com/roach88/chainstat/internal/synth"
	"github.com/roach88/chainstat/internal/trace"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Target   string // Chain or chain pair under test
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Target)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// target renders what an assertion looks at, e.g. "x[0]" or "g[0],g[1]".
func target(a Assertion) string {
	switch {
	case a.Type == AssertCoverage, a.Operation == OpContours:
		if a.X == nil || a.Y == nil {
			return ""
		}
		return fmt.Sprintf("%s[%d],%s[%d]", a.X.Chain, a.X.Dim, a.Y.Chain, a.Y.Dim)
	case a.Type == AssertTau, a.Type == AssertMedian, a.Operation == OpHistogram:
		return fmt.Sprintf("%s[%d]", a.Chain, a.Dim)
	default:
		return a.Chain
	}
}

// errorHistogramBins is the bin count used when an error assertion runs the
// histogram operation.
const errorHistogramBins = 10

// assertionContext holds what assertions need beyond the analyzer.
type assertionContext struct {
	an     *analysis.Analyzer
	chains map[string]Chain
}

func (c *assertionContext) evaluate(a Assertion) (string, error) {
	switch a.Type {
	case AssertTau:
		return c.assertTau(a)
	case AssertESSIdentity:
		return c.assertESSIdentity(a)
	case AssertMedian:
		return c.assertMedian(a)
	case AssertCoverage:
		return c.assertCoverage(a)
	case AssertError:
		return c.assertError(a)
	default:
		return "", fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTau compares τ of one dimension with expect, or with the analytic
// value of an AR(1) chain when expect is absent.
func (c *assertionContext) assertTau(a Assertion) (string, error) {
	var want float64
	switch {
	case a.Expect != nil:
		want = *a.Expect
	case c.chains[trace.NormalizeName(a.Chain)].Process == ProcessAR1:
		want = synth.AR1Tau(c.chains[trace.NormalizeName(a.Chain)].Phi)
	default:
		return "", &AssertionError{
			Type:     AssertTau,
			Target:   target(a),
			Expected: "expect value or an ar1 chain",
			Actual:   "no reference τ",
		}
	}
	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultTauTolerance
	}

	taus, err := c.an.Autocorrelation(a.Chain)
	if err != nil {
		return "", failed(a, fmt.Sprintf("τ ≈ %g", want), err)
	}
	if a.Dim < 0 || a.Dim >= len(taus) {
		return "", failed(a, fmt.Sprintf("τ ≈ %g", want), trace.DimensionNotFound(a.Chain, a.Dim, len(taus)))
	}

	got := taus[a.Dim]
	detail := fmt.Sprintf("tau=%.4g want=%.4g", got, want)
	if math.Abs(got-want) > tol*math.Abs(want) {
		return detail, &AssertionError{
			Type:     AssertTau,
			Target:   target(a),
			Expected: fmt.Sprintf("τ within %g%% of %g", 100*tol, want),
			Actual:   fmt.Sprintf("τ = %g", got),
		}
	}
	return detail, nil
}

// assertESSIdentity checks ESS == N/τ in every dimension, exactly.
func (c *assertionContext) assertESSIdentity(a Assertion) (string, error) {
	t, err := c.an.Get(a.Chain)
	if err != nil {
		return "", failed(a, "ESS = N/τ", err)
	}
	taus, err := c.an.Autocorrelation(a.Chain)
	if err != nil {
		return "", failed(a, "ESS = N/τ", err)
	}
	ess, err := c.an.EffectiveSampleSize(a.Chain)
	if err != nil {
		return "", failed(a, "ESS = N/τ", err)
	}

	n := float64(t.Iterations())
	for d := range taus {
		if ess[d] != n/taus[d] {
			return "", &AssertionError{
				Type:     AssertESSIdentity,
				Target:   target(a),
				Expected: fmt.Sprintf("ESS[%d] = %g", d, n/taus[d]),
				Actual:   fmt.Sprintf("ESS[%d] = %g", d, ess[d]),
			}
		}
	}
	return fmt.Sprintf("dims=%d", len(taus)), nil
}

func (c *assertionContext) assertMedian(a Assertion) (string, error) {
	want := *a.Expect
	sums, err := c.an.PosteriorSummary(a.Chain)
	if err != nil {
		return "", failed(a, fmt.Sprintf("median ≈ %g", want), err)
	}
	if a.Dim < 0 || a.Dim >= len(sums) {
		return "", failed(a, fmt.Sprintf("median ≈ %g", want), trace.DimensionNotFound(a.Chain, a.Dim, len(sums)))
	}

	got := sums[a.Dim].Median
	detail := fmt.Sprintf("median=%.4g", got)
	if math.Abs(got-want) > a.Tolerance {
		return detail, &AssertionError{
			Type:     AssertMedian,
			Target:   target(a),
			Expected: fmt.Sprintf("median within %g of %g", a.Tolerance, want),
			Actual:   fmt.Sprintf("median = %g", got),
		}
	}
	return detail, nil
}

// assertCoverage checks that each contour encloses about its mass fraction
// of the points.
func (c *assertionContext) assertCoverage(a Assertion) (string, error) {
	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultCoverageTolerance
	}

	res, err := c.an.JointDensityContours(a.X.Chain, a.X.Dim, a.Y.Chain, a.Y.Dim, a.Fractions...)
	if err != nil {
		return "", failed(a, "contours", err)
	}

	coverage := res.Coverage()
	parts := make([]string, len(coverage))
	for i, level := range res.Levels {
		parts[i] = fmt.Sprintf("%.4g:%.4g", level.Fraction, coverage[i])
	}
	detail := strings.Join(parts, " ")

	for i, level := range res.Levels {
		if math.Abs(coverage[i]-level.Fraction) > tol {
			return detail, &AssertionError{
				Type:     AssertCoverage,
				Target:   target(a),
				Expected: fmt.Sprintf("coverage within %g of %g", tol, level.Fraction),
				Actual:   fmt.Sprintf("coverage = %g", coverage[i]),
			}
		}
	}
	return detail, nil
}

// assertError runs an operation and checks that it fails with the given code.
func (c *assertionContext) assertError(a Assertion) (string, error) {
	var err error
	switch a.Operation {
	case OpGet:
		_, err = c.an.Get(a.Chain)
	case OpAutocorrelation:
		_, err = c.an.Autocorrelation(a.Chain)
	case OpESS:
		_, err = c.an.EffectiveSampleSize(a.Chain)
	case OpSummary:
		_, err = c.an.PosteriorSummary(a.Chain)
	case OpHistogram:
		_, err = c.an.Histogram(a.Chain, a.Dim, errorHistogramBins)
	case OpContours:
		_, err = c.an.JointDensityContours(a.X.Chain, a.X.Dim, a.Y.Chain, a.Y.Dim, a.Fractions...)
	default:
		return "", fmt.Errorf("unknown operation %q", a.Operation)
	}

	want := trace.ErrorCode(a.Code)
	if err == nil {
		return "", &AssertionError{
			Type:     AssertError,
			Target:   target(a),
			Expected: fmt.Sprintf("%s fails with %s", a.Operation, want),
			Actual:   "no error",
		}
	}
	if got := trace.CodeOf(err); got != want {
		return err.Error(), &AssertionError{
			Type:     AssertError,
			Target:   target(a),
			Expected: fmt.Sprintf("%s fails with %s", a.Operation, want),
			Actual:   err.Error(),
		}
	}
	return err.Error(), nil
}

// failed reports an unexpected operation error as an assertion failure.
func failed(a Assertion, expected string, err error) error {
	return &AssertionError{
		Type:     a.Type,
		Target:   target(a),
		Expected: expected,
		Actual:   err.Error(),
	}
}
