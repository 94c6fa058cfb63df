package posterior

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/roach88/chainstat/internal/trace"
)

// Histogram is an equal-width histogram of a column.
type Histogram struct {
	// Edges has len(Counts)+1 bin boundaries.
	Edges []float64 `json:"edges"`

	// Counts holds the number of draws per bin. The last bin is closed.
	Counts []int `json:"counts"`

	// Density is Counts normalized so the histogram integrates to one.
	Density []float64 `json:"density"`
}

// NewHistogram bins xs into bins equal-width bins over [min, max].
// A column with a single distinct value is binned over [v-0.5, v+0.5].
func NewHistogram(xs []float64, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("histogram: bins must be positive, got %d", bins)
	}
	if len(xs) == 0 {
		return Histogram{}, trace.InsufficientSamples("histogram of empty column", 0)
	}

	lo, hi := stats.Bounds(xs)
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Histogram{}, trace.Degenerate("histogram of non-finite column")
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	h := Histogram{
		Edges:   vec.Linspace(lo, hi, bins+1),
		Counts:  make([]int, bins),
		Density: make([]float64, bins),
	}
	width := (hi - lo) / float64(bins)
	for _, x := range xs {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	for i, c := range h.Counts {
		h.Density[i] = float64(c) / (float64(len(xs)) * width)
	}
	return h, nil
}

// Density is a one-dimensional kernel density estimate sampled on a grid.
type Density struct {
	X         []float64 `json:"x"`
	PDF       []float64 `json:"pdf"`
	Bandwidth float64   `json:"bandwidth"`
}

// MarginalDensity evaluates a Gaussian KDE of xs at points evenly spaced
// over the data range padded by three bandwidths on each side.
//
// The bandwidth follows Scott's rule. When the interquartile range is zero
// but the column still varies, Silverman's rule is used instead. A column
// with zero variance is DEGENERATE_TRACE.
func MarginalDensity(xs []float64, points int) (Density, error) {
	if points < 2 {
		return Density{}, fmt.Errorf("density: need at least 2 points, got %d", points)
	}
	if len(xs) < 2 {
		return Density{}, trace.InsufficientSamples(
			fmt.Sprintf("density of %d draws", len(xs)), len(xs))
	}

	sample := stats.Sample{Xs: append([]float64(nil), xs...)}
	sample.Sort()
	bw := stats.BandwidthScott(sample)
	if bw <= 0 {
		bw = stats.BandwidthSilverman(sample)
	}
	if bw <= 0 || math.IsNaN(bw) {
		return Density{}, trace.Degenerate("zero variance")
	}

	kde := stats.KDE{
		Sample:    sample,
		Kernel:    stats.GaussianKernel,
		Bandwidth: bw,
	}
	lo, hi := sample.Bounds()
	grid := vec.Linspace(lo-3*bw, hi+3*bw, points)
	pdf := make([]float64, len(grid))
	for i, x := range grid {
		pdf[i] = kde.PDF(x)
	}
	return Density{X: grid, PDF: pdf, Bandwidth: bw}, nil
}
