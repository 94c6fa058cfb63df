package trace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		data  []float64
	}{
		{"empty shape", nil, nil},
		{"zero rows", []int{0}, nil},
		{"negative axis", []int{2, -1}, []float64{1, 2}},
		{"size mismatch", []int{2, 2}, []float64{1, 2, 3}},
		{"nan", []int{2}, []float64{1, math.NaN()}},
		{"inf", []int{2}, []float64{math.Inf(1), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.shape, tt.data)
			assert.Error(t, err)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	data := []float64{1, 2, 3}
	tr, err := Flat(data)
	require.NoError(t, err)

	data[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, tr.Values())
}

func TestShapeAccessors(t *testing.T) {
	flat := MustNew([]int{4}, []float64{1, 2, 3, 4})
	assert.True(t, flat.IsFlat())
	assert.Equal(t, 1, flat.Ndim())
	assert.Equal(t, 4, flat.Iterations())
	assert.Equal(t, 1, flat.Dims())

	cube := MustNew([]int{2, 3, 2}, make([]float64, 12))
	assert.False(t, cube.IsFlat())
	assert.Equal(t, 3, cube.Ndim())
	assert.Equal(t, 2, cube.Iterations())
	assert.Equal(t, 6, cube.Dims())

	var zero Trace
	assert.True(t, zero.IsZero())
	assert.Equal(t, 0, zero.Iterations())
	assert.Equal(t, 0, zero.Dims())
}

func TestColumn(t *testing.T) {
	tr := MustNew([]int{3, 2}, []float64{
		1, 10,
		2, 20,
		3, 30,
	})

	col, err := tr.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, col)

	col[0] = -1
	again, err := tr.Column(1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again[0], "column must be a copy")

	_, err = tr.Column(2)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = tr.Column(-1)
	assert.True(t, IsNotFound(err))
}

func TestColumnFlattensTrailingAxes(t *testing.T) {
	// Two draws of a 2x2 parameter, row-major.
	tr := MustNew([]int{2, 2, 2}, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})

	col, err := tr.Column(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, col)
}

func TestReshape2D(t *testing.T) {
	flat := MustNew([]int{3}, []float64{1, 2, 3})
	reshaped := flat.Reshape2D()
	assert.Equal(t, []int{3, 1}, reshaped.Shape())
	assert.Equal(t, []float64{1, 2, 3}, reshaped.Values())

	again := reshaped.Reshape2D()
	assert.True(t, again.Equal(reshaped))

	cube := MustNew([]int{2, 2, 2}, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, []int{2, 4}, cube.Reshape2D().Shape())
}

func TestMatrixIsIndependent(t *testing.T) {
	tr := MustNew([]int{2, 2}, []float64{1, 2, 3, 4})
	m := tr.Matrix()

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 3.0, m.At(1, 0))

	m.Set(0, 0, 42)
	assert.Equal(t, []float64{1, 2, 3, 4}, tr.Values())
}

func TestFromMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tr, err := FromMatrix(m)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, tr.Shape())
	assert.Equal(t, []float64{4, 5, 6}, tr.Row(1))
}

func TestAppend(t *testing.T) {
	var tr Trace

	tr, err := tr.Append([]float64{1.5})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, tr.Shape())

	tr, err = tr.Append([]float64{2.5})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, tr.Shape())
	assert.Equal(t, []float64{1.5, 2.5}, tr.Values())

	_, err = tr.Append([]float64{1, 2})
	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err))

	var vec Trace
	vec, err = vec.Append([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, vec.Shape())

	_, err = vec.Append([]float64{math.NaN(), 1})
	assert.Error(t, err)
}

func TestAppendSiblingsDoNotShareData(t *testing.T) {
	var base Trace
	var err error
	for _, v := range []float64{1, 2, 3} {
		base, err = base.Append([]float64{v})
		require.NoError(t, err)
	}

	a, err := base.Append([]float64{10})
	require.NoError(t, err)
	b, err := base.Append([]float64{20})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3, 10}, a.Values())
	assert.Equal(t, []float64{1, 2, 3, 20}, b.Values())
	assert.Equal(t, []float64{1, 2, 3}, base.Values())
}

func TestCloneAndEqual(t *testing.T) {
	a := MustNew([]int{2}, []float64{1, 2})
	b := a.Clone()
	assert.True(t, a.Equal(b))

	c := MustNew([]int{2, 1}, []float64{1, 2})
	assert.False(t, a.Equal(c))
}
