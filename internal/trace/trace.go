package trace

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Trace is the sequence of draws for one parameter.
//
// The shape mirrors the array the sampler produced: shape[0] is the number of
// iterations and the trailing axes describe the parameter itself. A scalar
// parameter loaded from a single-column table is flat (shape [n]); Reshape2D turns
// it into an (n x 1) matrix. Data is stored row-major.
//
// The zero Trace is empty and reports zero iterations.
type Trace struct {
	shape []int
	data  []float64
}

// New creates a Trace with the given shape, copying data.
// Returns an error if the shape is empty, has a non-positive axis, does not
// match len(data), or if any value is NaN or infinite.
func New(shape []int, data []float64) (Trace, error) {
	if len(shape) == 0 {
		return Trace{}, fmt.Errorf("trace: empty shape")
	}
	size := 1
	for i, n := range shape {
		if n <= 0 {
			return Trace{}, fmt.Errorf("trace: axis %d has non-positive length %d", i, n)
		}
		size *= n
	}
	if size != len(data) {
		return Trace{}, fmt.Errorf("trace: shape %v needs %d values, got %d", shape, size, len(data))
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Trace{}, fmt.Errorf("trace: non-finite value %v at index %d", v, i)
		}
	}
	return Trace{shape: slices.Clone(shape), data: slices.Clone(data)}, nil
}

// Flat creates a one-dimensional Trace of scalar draws.
func Flat(values []float64) (Trace, error) {
	return New([]int{len(values)}, values)
}

// FromMatrix creates an (iterations x dims) Trace from a matrix.
func FromMatrix(m mat.Matrix) (Trace, error) {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return New([]int{r, c}, data)
}

// MustNew is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNew(shape []int, data []float64) Trace {
	t, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return t
}

// IsZero reports whether t holds no draws.
func (t Trace) IsZero() bool {
	return len(t.shape) == 0
}

// Shape returns a copy of the trace shape.
func (t Trace) Shape() []int {
	return slices.Clone(t.shape)
}

// Ndim returns the number of axes, including the iteration axis.
func (t Trace) Ndim() int {
	return len(t.shape)
}

// IsFlat reports whether t is a one-dimensional trace of scalar draws.
func (t Trace) IsFlat() bool {
	return len(t.shape) == 1
}

// Iterations returns the number of draws.
func (t Trace) Iterations() int {
	if t.IsZero() {
		return 0
	}
	return t.shape[0]
}

// Dims returns the number of scalar elements per draw.
// Trailing axes are flattened, so a (n x 3 x 2) trace has 6 dimensions.
func (t Trace) Dims() int {
	if t.IsZero() {
		return 0
	}
	d := 1
	for _, n := range t.shape[1:] {
		d *= n
	}
	return d
}

// Values returns a copy of the row-major data.
func (t Trace) Values() []float64 {
	return slices.Clone(t.data)
}

// Column returns a copy of the draws for dimension d.
func (t Trace) Column(d int) ([]float64, error) {
	dims := t.Dims()
	if d < 0 || d >= dims {
		return nil, DimensionNotFound("", d, dims)
	}
	n := t.Iterations()
	col := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = t.data[i*dims+d]
	}
	return col, nil
}

// Row returns a copy of draw i.
func (t Trace) Row(i int) []float64 {
	dims := t.Dims()
	return slices.Clone(t.data[i*dims : (i+1)*dims])
}

// Matrix returns an independent (iterations x dims) copy of the trace.
func (t Trace) Matrix() *mat.Dense {
	return mat.NewDense(t.Iterations(), t.Dims(), slices.Clone(t.data))
}

// Clone returns a deep copy of t.
func (t Trace) Clone() Trace {
	return Trace{shape: slices.Clone(t.shape), data: slices.Clone(t.data)}
}

// Reshape2D returns t as an (iterations x dims) trace.
// Traces that are already two-dimensional are returned unchanged.
func (t Trace) Reshape2D() Trace {
	if t.Ndim() == 2 || t.IsZero() {
		return t
	}
	return Trace{shape: []int{t.Iterations(), t.Dims()}, data: t.data}
}

// Append returns t with one more draw. The draw must have exactly Dims() values.
// Appending to the zero Trace creates a flat trace for a single value and an
// (1 x k) trace otherwise.
func (t Trace) Append(draw []float64) (Trace, error) {
	for _, v := range draw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return t, fmt.Errorf("trace: non-finite value %v in draw", v)
		}
	}
	if t.IsZero() {
		if len(draw) == 0 {
			return t, fmt.Errorf("trace: empty draw")
		}
		if len(draw) == 1 {
			return Trace{shape: []int{1}, data: slices.Clone(draw)}, nil
		}
		return Trace{shape: []int{1, len(draw)}, data: slices.Clone(draw)}, nil
	}
	if len(draw) != t.Dims() {
		return t, ShapeMismatch("", t.Dims(), len(draw))
	}
	shape := slices.Clone(t.shape)
	shape[0]++
	return Trace{shape: shape, data: append(slices.Clip(t.data), draw...)}, nil
}

// Equal reports whether t and o have the same shape and values.
func (t Trace) Equal(o Trace) bool {
	return slices.Equal(t.shape, o.shape) && slices.Equal(t.data, o.data)
}

// String implements fmt.Stringer.
func (t Trace) String() string {
	return fmt.Sprintf("Trace%v", t.shape)
}
