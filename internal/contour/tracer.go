package contour

import (
	"maps"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// Tracer turns a scalar field and a level into closed boundary rings.
// Every returned ring is closed (first point equals last) and encloses the
// region where the field is at or above the level.
type Tracer interface {
	Trace(g *Grid, level float64) []orb.Ring
}

// MarchingSquares is the default Tracer.
//
// The grid is padded with one ring of cells below the level, so regions that
// touch the grid border are closed just outside it. Outer boundaries come out
// counter-clockwise and holes clockwise. Saddle cells are resolved by the
// value at the cell center.
type MarchingSquares struct{}

// Trace implements Tracer.
func (MarchingSquares) Trace(g *Grid, level float64) []orb.Ring {
	l := newLattice(g, level)

	// next maps the edge where a boundary segment starts to the edge where it
	// ends. Each crossed edge starts exactly one segment and ends exactly one.
	next := make(map[int]int)
	var exits, enters [4]int
	for j := 0; j < l.ny-1; j++ {
		for i := 0; i < l.nx-1; i++ {
			corners := [4][2]int{{i, j}, {i + 1, j}, {i + 1, j + 1}, {i, j + 1}}
			edges := [4]int{l.hEdge(i, j), l.vEdge(i+1, j), l.hEdge(i, j+1), l.vEdge(i, j)}

			var in [4]bool
			for k, c := range corners {
				in[k] = l.at(c[0], c[1]) >= level
			}

			ne, nn := 0, 0
			for k := 0; k < 4; k++ {
				a, b := in[k], in[(k+1)%4]
				switch {
				case a && !b:
					exits[ne] = k
					ne++
				case !a && b:
					enters[nn] = k
					nn++
				}
			}

			switch ne {
			case 0:
			case 1:
				next[edges[exits[0]]] = edges[enters[0]]
			case 2:
				center := 0.0
				for _, c := range corners {
					center += l.at(c[0], c[1])
				}
				connected := center/4 >= level
				for _, k := range exits[:2] {
					step := -1
					if connected {
						step = 1
					}
					e := (k + step + 4) % 4
					for !(!in[e] && in[(e+1)%4]) {
						e = (e + step + 4) % 4
					}
					next[edges[k]] = edges[e]
				}
			}
		}
	}

	var rings []orb.Ring
	visited := make(map[int]bool, len(next))
	for _, start := range slices.Sorted(maps.Keys(next)) {
		if visited[start] {
			continue
		}
		var ring orb.Ring
		for e := start; !visited[e]; e = next[e] {
			visited[e] = true
			ring = append(ring, l.point(e))
		}
		ring = append(ring, ring[0])
		rings = append(rings, ring)
	}
	return rings
}

// lattice is a grid padded by one node on every side.
type lattice struct {
	xs, ys []float64
	z      []float64
	nx, ny int
	level  float64
}

func newLattice(g *Grid, level float64) *lattice {
	nx, ny := len(g.X)+2, len(g.Y)+2
	l := &lattice{
		xs:    padAxis(g.X),
		ys:    padAxis(g.Y),
		z:     make([]float64, nx*ny),
		nx:    nx,
		ny:    ny,
		level: level,
	}
	below := level - math.Max(1, math.Abs(level))
	for i := range l.z {
		l.z[i] = below
	}
	for j := range g.Y {
		for i := range g.X {
			l.z[(j+1)*nx+i+1] = g.Z.At(j, i)
		}
	}
	return l
}

func padAxis(axis []float64) []float64 {
	step := 1.0
	if len(axis) > 1 && axis[1] != axis[0] {
		step = axis[1] - axis[0]
	}
	out := make([]float64, 0, len(axis)+2)
	out = append(out, axis[0]-step)
	out = append(out, axis...)
	return append(out, axis[len(axis)-1]+step)
}

func (l *lattice) at(i, j int) float64 { return l.z[j*l.nx+i] }

// hEdge identifies the edge from node (i, j) to (i+1, j).
func (l *lattice) hEdge(i, j int) int { return 2 * (j*l.nx + i) }

// vEdge identifies the edge from node (i, j) to (i, j+1).
func (l *lattice) vEdge(i, j int) int { return 2*(j*l.nx+i) + 1 }

// point interpolates where the level crosses edge e. The interpolation always
// runs from the edge's lower node so both cells sharing the edge agree.
func (l *lattice) point(e int) orb.Point {
	node := e / 2
	i, j := node%l.nx, node/l.nx
	i2, j2 := i+1, j
	if e%2 == 1 {
		i2, j2 = i, j+1
	}
	za, zb := l.at(i, j), l.at(i2, j2)
	t := (l.level - za) / (zb - za)
	return orb.Point{
		l.xs[i] + t*(l.xs[i2]-l.xs[i]),
		l.ys[j] + t*(l.ys[j2]-l.ys[j]),
	}
}
