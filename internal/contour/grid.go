package contour

import (
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
	"gonum.org/v1/gonum/mat"
)

// Grid is a scalar field sampled on a regular lattice.
// Z.At(j, i) is the value at (X[i], Y[j]).
type Grid struct {
	X []float64
	Y []float64
	Z *mat.Dense
}

// EvaluateGrid samples k on bins x bins points spanning [min, max] of each
// axis of the sample.
func EvaluateGrid(k *KDE, x, y []float64, bins int) *Grid {
	xlo, xhi := stats.Bounds(x)
	ylo, yhi := stats.Bounds(y)
	g := &Grid{
		X: vec.Linspace(xlo, xhi, bins),
		Y: vec.Linspace(ylo, yhi, bins),
		Z: mat.NewDense(bins, bins, nil),
	}
	for j, yv := range g.Y {
		for i, xv := range g.X {
			g.Z.Set(j, i, k.At(xv, yv))
		}
	}
	return g
}

// Values returns the grid values in row-major order.
func (g *Grid) Values() []float64 {
	r, c := g.Z.Dims()
	out := make([]float64, 0, r*c)
	for j := 0; j < r; j++ {
		out = append(out, g.Z.RawRowView(j)...)
	}
	return out
}
