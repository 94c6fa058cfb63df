package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestAR1Deterministic(t *testing.T) {
	a, err := AR1(100, 0.5, 7)
	require.NoError(t, err)
	b, err := AR1(100, 0.5, 7)
	require.NoError(t, err)
	c, err := AR1(100, 0.5, 8)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAR1Stationary(t *testing.T) {
	xs, err := AR1(50000, 0.5, 1)
	require.NoError(t, err)

	mean, std := stat.PopMeanStdDev(xs, nil)
	assert.InDelta(t, 0, mean, 0.05)
	// Stationary variance is 1/(1-φ²) = 4/3.
	assert.InDelta(t, 1.1547, std, 0.03)
}

func TestAR1Rejects(t *testing.T) {
	_, err := AR1(0, 0.5, 1)
	assert.Error(t, err)
	_, err = AR1(10, 1, 1)
	assert.Error(t, err)
}

func TestAR1Tau(t *testing.T) {
	assert.InDelta(t, 3.0, AR1Tau(0.5), 1e-12)
	assert.InDelta(t, 1.0, AR1Tau(0), 1e-12)
}

func TestAR1Trace(t *testing.T) {
	flat, err := AR1Trace(10, 1, 0.2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, flat.Shape())

	multi, err := AR1Trace(10, 3, 0.2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 3}, multi.Shape())

	col0, err := multi.Column(0)
	require.NoError(t, err)
	assert.Equal(t, flat.Values(), col0, "column d uses seed+d")
}

func TestGaussian2(t *testing.T) {
	tr, err := Gaussian2(20000, 0.6, 11)
	require.NoError(t, err)
	assert.Equal(t, []int{20000, 2}, tr.Shape())

	x, _ := tr.Column(0)
	y, _ := tr.Column(1)
	assert.InDelta(t, 0.6, stat.Correlation(x, y, nil), 0.03)

	_, err = Gaussian2(10, 1, 1)
	assert.Error(t, err)
}

func TestConstant(t *testing.T) {
	tr, err := Constant(4, 2.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, tr.Values())
}
