package posterior

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/roach88/chainstat/internal/trace"
)

// Band is a central credible interval given by a pair of percentiles.
type Band struct {
	Label string
	Lower float64 // percentile, 0-100
	Upper float64 // percentile, 0-100
}

// Bands are the reported credible intervals, narrowest first.
var Bands = []Band{
	{Label: "68%", Lower: 16, Upper: 84},
	{Label: "95%", Lower: 2.5, Upper: 97.5},
	{Label: "99%", Lower: 0.5, Upper: 99.5},
}

// Interval is a credible interval evaluated on a column.
type Interval struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Summary describes the posterior of one element of a parameter.
type Summary struct {
	Name      string     `json:"name"`
	Element   int        `json:"element"`
	Scalar    bool       `json:"scalar"`
	ESS       float64    `json:"ess"`
	Median    float64    `json:"median"`
	StdDev    float64    `json:"std_dev"`
	Intervals []Interval `json:"intervals"`
}

// Summarize computes a Summary for every dimension of t. ess must hold one
// effective sample size per dimension, as returned by EffectiveSampleSize.
//
// Percentiles interpolate linearly between order statistics and the standard deviation is
// the population (1/N) one. Both are order-independent.
func Summarize(name string, t trace.Trace, ess []float64) ([]Summary, error) {
	if t.IsZero() {
		return nil, trace.InsufficientSamples("empty trace", 0).WithName(name)
	}
	m := t.Reshape2D()
	if len(ess) != m.Dims() {
		return nil, trace.ShapeMismatch(name, m.Dims(), len(ess))
	}

	summaries := make([]Summary, m.Dims())
	for d := range summaries {
		col, err := m.Column(d)
		if err != nil {
			return nil, err
		}
		summaries[d] = summarizeColumn(col)
		summaries[d].Name = name
		summaries[d].Element = d
		summaries[d].Scalar = t.IsFlat()
		summaries[d].ESS = ess[d]
	}
	return summaries, nil
}

// Percentile returns the p-th percentile (0-100) of xs. xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	s := stats.Sample{Xs: slices.Clone(xs)}
	s.Sort()
	return quantile(&s, p/100)
}

// quantile interpolates linearly between the order statistics of the sorted
// sample s (Hyndman-Fan type 7, numpy's default percentile).
func quantile(s *stats.Sample, q float64) float64 {
	xs := s.Xs
	if len(xs) == 0 {
		return math.NaN()
	}
	h := float64(len(xs)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	switch {
	case i < 0:
		return xs[0]
	case i >= len(xs)-1:
		return xs[len(xs)-1]
	}
	return xs[i] + (h-lo)*(xs[i+1]-xs[i])
}

func summarizeColumn(col []float64) Summary {
	s := stats.Sample{Xs: col}
	s.Sort()

	sum := Summary{
		Median: quantile(&s, 0.5),
		StdDev: stat.PopStdDev(col, nil),
	}
	for _, b := range Bands {
		sum.Intervals = append(sum.Intervals, Interval{
			Label: b.Label,
			Lower: quantile(&s, b.Lower/100),
			Upper: quantile(&s, b.Upper/100),
		})
	}
	return sum
}

// reportWriter remembers the first write error and skips later writes.
type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Report writes a human-readable block for each summary. It returns the
// first write error.
func Report(w io.Writer, summaries []Summary) error {
	rw := &reportWriter{w: w}
	for _, s := range summaries {
		if s.Scalar {
			rw.printf("Posterior summary for parameter %s\n", s.Name)
		} else {
			rw.printf("Posterior summary for parameter %s element %d\n", s.Name, s.Element)
		}
		rw.printf("----------------------------------------------\n")
		rw.printf("Effective number of independent samples: %.4g\n", s.ESS)
		rw.printf("Median: %.6g\n", s.Median)
		rw.printf("Standard deviation: %.6g\n", s.StdDev)
		for _, iv := range s.Intervals {
			rw.printf("%s credibility interval: [%.6g, %.6g]\n", iv.Label, iv.Lower, iv.Upper)
		}
	}
	return rw.err
}
