package contour

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/chainstat/internal/synth"
	"github.com/roach88/chainstat/internal/trace"
)

func gaussianColumns(t *testing.T, n int, rho float64, seed uint64) ([]float64, []float64) {
	t.Helper()
	tr, err := synth.Gaussian2(n, rho, seed)
	require.NoError(t, err)
	x, err := tr.Column(0)
	require.NoError(t, err)
	y, err := tr.Column(1)
	require.NoError(t, err)
	return x, y
}

func TestComputeGaussianCoverage(t *testing.T) {
	x, y := gaussianColumns(t, 10000, 0.5, 2024)

	r, err := Compute(x, y)
	require.NoError(t, err)
	require.Len(t, r.Levels, 3)

	cov := r.Coverage()
	for i, lvl := range r.Levels {
		assert.InDelta(t, lvl.Fraction, cov[i], 0.03, "fraction %g", lvl.Fraction)
	}

	// Outer to inner: fractions fall and densities rise.
	assert.Equal(t, []float64{0.9973, 0.9545, 0.6827},
		[]float64{r.Levels[0].Fraction, r.Levels[1].Fraction, r.Levels[2].Fraction})
	assert.Less(t, r.Levels[0].Density, r.Levels[1].Density)
	assert.Less(t, r.Levels[1].Density, r.Levels[2].Density)
	assert.Greater(t, r.Levels[0].Area(), r.Levels[1].Area())
	assert.Greater(t, r.Levels[1].Area(), r.Levels[2].Area())

	// Stragglers are exactly the draws outside the outermost level.
	require.Len(t, r.Inside, 10000)
	outside := 0
	for _, in := range r.Inside {
		if !in {
			outside++
		}
	}
	assert.Len(t, r.Stragglers, outside)
	assert.InDelta(t, 1-cov[0], float64(outside)/10000, 1e-12)
}

func TestComputeSortsFractions(t *testing.T) {
	x, y := gaussianColumns(t, 2000, 0, 3)

	r, err := Compute(x, y, WithFractions(0.5, 0.9), WithBins(40))
	require.NoError(t, err)
	require.Len(t, r.Levels, 2)
	assert.Equal(t, 0.9, r.Levels[0].Fraction)
	assert.Equal(t, 0.5, r.Levels[1].Fraction)
	assert.Len(t, r.Grid.X, 40)
}

func TestComputeValidation(t *testing.T) {
	x, y := gaussianColumns(t, 100, 0, 1)

	_, err := Compute(x, y, WithBins(1))
	assert.Error(t, err)

	_, err = Compute(x, y, WithFractions(0.5, 1))
	assert.Error(t, err)

	_, err = Compute(x, y[:50])
	assert.True(t, trace.IsShapeMismatch(err))

	_, err = Compute(x[:2], y[:2])
	assert.True(t, trace.IsInsufficientSamples(err))
}

func TestComputeDegenerateColumn(t *testing.T) {
	x, _ := gaussianColumns(t, 500, 0, 9)
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 4
	}
	_, err := Compute(x, y)
	require.Error(t, err)
	assert.True(t, trace.IsDegenerate(err))

	// Perfectly correlated columns have a singular covariance too.
	_, err = Compute(x, x)
	assert.True(t, trace.IsDegenerate(err))
}

func TestFindLevel(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	// Mass at or above 4 is 0.4, above 3 is 0.7.
	level, err := FindLevel(values, 0.4, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4, level, 1e-9)

	level, err = FindLevel(values, 0.55, 0)
	require.NoError(t, err)
	assert.Greater(t, level, 3.0)
	assert.LessOrEqual(t, level, 4.0)
}

func TestFindLevelConstantGrid(t *testing.T) {
	_, err := FindLevel([]float64{2, 2, 2, 2}, 0.68, 0)
	require.Error(t, err)
	assert.True(t, trace.IsContourConvergence(err))

	var te *trace.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "0.68", te.Details["fraction"])
}

func TestFindLevelNoMass(t *testing.T) {
	_, err := FindLevel([]float64{0, 0, 0}, 0.5, 0)
	assert.True(t, trace.IsContourConvergence(err))

	_, err = FindLevel(nil, 0.5, 0)
	assert.True(t, trace.IsContourConvergence(err))
}

func TestKDEMatchesSinglePointKernel(t *testing.T) {
	x := []float64{0, 1, 0, 1}
	y := []float64{0, 0, 1, 1}
	k, err := NewKDE(x, y)
	require.NoError(t, err)

	cov := k.Covariance()
	factor := math.Pow(4, -1.0/6)
	// Sample variance of {0,1,0,1} is 1/3, covariance 0.
	assert.InDelta(t, factor*factor/3, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 0, cov.At(0, 1), 1e-12)

	// Direct evaluation of the mixture at the centroid.
	s2 := cov.At(0, 0)
	want := 0.0
	for i := range x {
		d2 := ((0.5-x[i])*(0.5-x[i]) + (0.5-y[i])*(0.5-y[i])) / s2
		want += math.Exp(-0.5*d2) / (2 * math.Pi * s2)
	}
	want /= 4
	assert.InDelta(t, want, k.At(0.5, 0.5), 1e-12)
}

func singleBlobGrid(n int) *Grid {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(i)
	}
	z := mat.NewDense(n, n, nil)
	c := float64(n-1) / 2
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			dx, dy := float64(i)-c, float64(j)-c
			z.Set(j, i, math.Exp(-(dx*dx+dy*dy)/8))
		}
	}
	return &Grid{X: axis, Y: axis, Z: z}
}

func TestMarchingSquaresSingleBlob(t *testing.T) {
	g := singleBlobGrid(21)
	rings := MarchingSquares{}.Trace(g, math.Exp(-0.5))

	require.Len(t, rings, 1)
	ring := rings[0]
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.CCW, ring.Orientation())

	// The level set is the circle of radius 2 around (10, 10).
	for _, p := range ring {
		r := math.Hypot(p[0]-10, p[1]-10)
		assert.InDelta(t, 2, r, 0.15)
	}
	assert.True(t, Contains(rings, orb.Point{10, 10}))
	assert.False(t, Contains(rings, orb.Point{14, 10}))
}

func TestMarchingSquaresClosesAtBorder(t *testing.T) {
	// A field increasing to the right: the region x >= 2 touches three sides.
	axis := []float64{0, 1, 2, 3, 4}
	z := mat.NewDense(5, 5, nil)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			z.Set(j, i, float64(i))
		}
	}
	rings := MarchingSquares{}.Trace(&Grid{X: axis, Y: axis, Z: z}, 2)

	require.Len(t, rings, 1)
	assert.True(t, rings[0].Closed())
	assert.True(t, Contains(rings, orb.Point{3, 2}))
	assert.True(t, Contains(rings, orb.Point{4, 0}))
	assert.False(t, Contains(rings, orb.Point{1, 2}))
}

func TestMarchingSquaresTwoIslands(t *testing.T) {
	axis := []float64{0, 1, 2, 3, 4, 5, 6}
	z := mat.NewDense(7, 7, nil)
	z.Set(3, 1, 1)
	z.Set(3, 5, 1)
	rings := MarchingSquares{}.Trace(&Grid{X: axis, Y: axis, Z: z}, 0.5)

	require.Len(t, rings, 2)
	assert.True(t, Contains(rings, orb.Point{1, 3}))
	assert.True(t, Contains(rings, orb.Point{5, 3}))
	assert.False(t, Contains(rings, orb.Point{3, 3}))
}

func TestMarchingSquaresHole(t *testing.T) {
	axis := []float64{0, 1, 2, 3, 4, 5, 6}
	z := mat.NewDense(7, 7, nil)
	for j := 1; j <= 5; j++ {
		for i := 1; i <= 5; i++ {
			z.Set(j, i, 1)
		}
	}
	z.Set(3, 3, 0)
	rings := MarchingSquares{}.Trace(&Grid{X: axis, Y: axis, Z: z}, 0.5)

	require.Len(t, rings, 2)
	var ccw, cw int
	for _, r := range rings {
		switch r.Orientation() {
		case orb.CCW:
			ccw++
		case orb.CW:
			cw++
		}
	}
	assert.Equal(t, 1, ccw)
	assert.Equal(t, 1, cw)

	lvl := Level{Rings: rings}
	// A 5x5 square with its corners clipped, minus the diamond around (3, 3).
	assert.InDelta(t, 24.5-0.5, lvl.Area(), 1e-9)
}

type fixedTracer struct {
	ring orb.Ring
}

func (f fixedTracer) Trace(*Grid, float64) []orb.Ring { return []orb.Ring{f.ring} }

func TestWithTracer(t *testing.T) {
	x, y := gaussianColumns(t, 500, 0, 5)
	square := orb.Ring{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}

	r, err := Compute(x, y, WithTracer(fixedTracer{square}), WithBins(20))
	require.NoError(t, err)

	for i := range x {
		want := math.Abs(x[i]) <= 1 && math.Abs(y[i]) <= 1
		assert.Equal(t, want, r.Inside[i], "draw %d", i)
	}
}

func TestLevelSimplified(t *testing.T) {
	square := orb.Ring{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}, {0, 0}}
	speck := orb.Ring{{5, 5}, {5.01, 5}, {5.01, 5.01}, {5, 5.01}, {5, 5}}
	lvl := Level{Fraction: 0.5, Density: 0.1, Rings: []orb.Ring{square, speck}}

	s := lvl.Simplified(0.1)
	assert.Equal(t, 0.5, s.Fraction)
	require.Len(t, s.Rings, 1, "the speck collapses and is dropped")
	assert.Equal(t, orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, s.Rings[0])
	assert.InDelta(t, 4, s.Area(), 1e-12)

	assert.Len(t, lvl.Rings[0], 9, "input rings are untouched")
}
