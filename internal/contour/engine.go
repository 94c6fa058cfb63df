package contour

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// DefaultBins is the default number of grid points per axis.
const DefaultBins = 100

// DefaultFractions are the 3σ, 2σ and 1σ mass fractions of a Gaussian.
var DefaultFractions = []float64{0.9973, 0.9545, 0.6827}

type options struct {
	bins      int
	fractions []float64
	tolerance float64
	tracer    Tracer
}

// Option configures Compute.
type Option func(*options)

// WithBins sets the number of grid points per axis.
func WithBins(n int) Option {
	return func(o *options) { o.bins = n }
}

// WithFractions sets the target mass fractions. Order does not matter.
func WithFractions(fs ...float64) Option {
	return func(o *options) {
		if len(fs) > 0 {
			o.fractions = slices.Clone(fs)
		}
	}
}

// WithTolerance sets the bisection tolerance relative to the grid range.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithTracer replaces the default marching-squares tracer.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// Level is one credible contour.
type Level struct {
	// Fraction is the target enclosed mass.
	Fraction float64 `json:"fraction"`

	// Density is the KDE value at the boundary.
	Density float64 `json:"density"`

	// Rings are the closed boundary paths at Density.
	Rings []orb.Ring `json:"-"`
}

// Area is the area enclosed at this level. Holes, traced clockwise,
// subtract from the outer boundaries.
func (l Level) Area() float64 {
	total := 0.0
	for _, ring := range l.Rings {
		total += float64(ring.Orientation()) * math.Abs(planar.Area(ring))
	}
	return total
}

// Result is the outcome of Compute.
type Result struct {
	Grid *Grid

	// Levels are ordered outer to inner (descending Fraction).
	Levels []Level

	// Inside[i] reports whether draw i lies within the outermost level.
	Inside []bool

	// Stragglers lists the indices of draws outside the outermost level.
	Stragglers []int

	x, y []float64
}

// Compute fits a KDE to the paired draws and derives the credible contours.
func Compute(x, y []float64, opts ...Option) (*Result, error) {
	o := options{
		bins:      DefaultBins,
		fractions: slices.Clone(DefaultFractions),
		tolerance: DefaultTolerance,
		tracer:    MarchingSquares{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bins < 2 {
		return nil, fmt.Errorf("contour: bins must be at least 2, got %d", o.bins)
	}
	for _, f := range o.fractions {
		if !(f > 0 && f < 1) {
			return nil, fmt.Errorf("contour: mass fraction %g outside (0, 1)", f)
		}
	}

	kde, err := NewKDE(x, y)
	if err != nil {
		return nil, err
	}
	grid := EvaluateGrid(kde, x, y, o.bins)
	values := grid.Values()

	fractions := slices.Clone(o.fractions)
	slices.SortFunc(fractions, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	r := &Result{
		Grid:   grid,
		Levels: make([]Level, len(fractions)),
		x:      slices.Clone(x),
		y:      slices.Clone(y),
	}
	for i, f := range fractions {
		density, err := FindLevel(values, f, o.tolerance)
		if err != nil {
			return nil, err
		}
		r.Levels[i] = Level{
			Fraction: f,
			Density:  density,
			Rings:    o.tracer.Trace(grid, density),
		}
	}

	r.Inside = r.classify(r.Levels[0].Rings)
	for i, in := range r.Inside {
		if !in {
			r.Stragglers = append(r.Stragglers, i)
		}
	}
	return r, nil
}

// Coverage returns, per level, the fraction of draws inside that level's
// rings. For a well-resolved contour it is close to the level's Fraction.
func (r *Result) Coverage() []float64 {
	cov := make([]float64, len(r.Levels))
	if len(r.x) == 0 {
		return cov
	}
	for i, lvl := range r.Levels {
		inside := 0
		for _, in := range r.classify(lvl.Rings) {
			if in {
				inside++
			}
		}
		cov[i] = float64(inside) / float64(len(r.x))
	}
	return cov
}

func (r *Result) classify(rings []orb.Ring) []bool {
	bounds := make([]orb.Bound, len(rings))
	for i, ring := range rings {
		bounds[i] = ring.Bound()
	}
	inside := make([]bool, len(r.x))
	for i := range r.x {
		inside[i] = containedIn(rings, bounds, orb.Point{r.x[i], r.y[i]})
	}
	return inside
}

// Contains reports whether p lies in any of the rings, boundary included.
func Contains(rings []orb.Ring, p orb.Point) bool {
	for _, ring := range rings {
		if planar.RingContains(ring, p) {
			return true
		}
	}
	return false
}

func containedIn(rings []orb.Ring, bounds []orb.Bound, p orb.Point) bool {
	for i, ring := range rings {
		if bounds[i].Contains(p) && planar.RingContains(ring, p) {
			return true
		}
	}
	return false
}

// Simplified returns a copy of l with every ring reduced by Douglas-Peucker
// at threshold, in data units. Rings that collapse below four points are
// dropped.
func (l Level) Simplified(threshold float64) Level {
	dp := simplify.DouglasPeucker(threshold)
	out := Level{Fraction: l.Fraction, Density: l.Density, Rings: make([]orb.Ring, 0, len(l.Rings))}
	for _, ring := range l.Rings {
		s := dp.Ring(ring.Clone())
		if len(s) < 4 {
			continue
		}
		out.Rings = append(out.Rings, s)
	}
	return out
}
