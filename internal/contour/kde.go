package contour

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/roach88/chainstat/internal/trace"
)

// minRelativeDet is the smallest accepted 1-ρ² of the sample.
const minRelativeDet = 1e-12

// KDE is a bivariate Gaussian kernel density estimate.
//
// The kernel covariance is the sample covariance scaled by Scott's factor
// squared. Evaluation works in whitened coordinates, where the kernel is an
// isotropic unit Gaussian.
type KDE struct {
	// whitened holds L⁻¹ p_i for every sample point, row-major (n x 2).
	whitened []float64
	linv     *mat.TriDense
	norm     float64
	n        int
	cov      *mat.SymDense
}

// NewKDE fits a KDE to the paired sample (x[i], y[i]).
//
// Returns SHAPE_MISMATCH if the columns differ in length,
// INSUFFICIENT_SAMPLES for fewer than 3 points and DEGENERATE_TRACE if the
// sample covariance is singular (for example a constant or perfectly
// correlated column).
func NewKDE(x, y []float64) (*KDE, error) {
	if len(x) != len(y) {
		return nil, trace.ShapeMismatch("", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return nil, trace.InsufficientSamples(
			fmt.Sprintf("joint density of %d points, need at least 3", n), n)
	}

	data := mat.NewDense(n, 2, nil)
	data.SetCol(0, x)
	data.SetCol(1, y)

	cov := mat.NewSymDense(2, nil)
	stat.CovarianceMatrix(cov, data, nil)
	factor := math.Pow(float64(n), -1.0/6)
	cov.ScaleSym(factor*factor, cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, trace.Degenerate("singular joint covariance")
	}
	// Relative to the product of the variances, the determinant is 1-ρ².
	det := chol.Det()
	if !(det > minRelativeDet*cov.At(0, 0)*cov.At(1, 1)) {
		return nil, trace.Degenerate("singular joint covariance")
	}

	var l, linv mat.TriDense
	chol.LTo(&l)
	if err := linv.InverseTri(&l); err != nil {
		return nil, trace.Degenerate(fmt.Sprintf("ill-conditioned joint covariance: %v", err))
	}

	k := &KDE{
		whitened: make([]float64, 0, 2*n),
		linv:     &linv,
		norm:     1 / (float64(n) * 2 * math.Pi * math.Sqrt(det)),
		n:        n,
		cov:      cov,
	}
	for i := 0; i < n; i++ {
		wx, wy := k.whiten(x[i], y[i])
		k.whitened = append(k.whitened, wx, wy)
	}
	return k, nil
}

// Covariance returns a copy of the kernel covariance.
func (k *KDE) Covariance() *mat.SymDense {
	c := mat.NewSymDense(2, nil)
	c.CopySym(k.cov)
	return c
}

// At evaluates the density at (x, y).
func (k *KDE) At(x, y float64) float64 {
	wx, wy := k.whiten(x, y)
	sum := 0.0
	for i := 0; i < len(k.whitened); i += 2 {
		dx := wx - k.whitened[i]
		dy := wy - k.whitened[i+1]
		sum += math.Exp(-0.5 * (dx*dx + dy*dy))
	}
	return sum * k.norm
}

func (k *KDE) whiten(x, y float64) (float64, float64) {
	// L⁻¹ is lower triangular.
	return k.linv.At(0, 0) * x,
		k.linv.At(1, 0)*x + k.linv.At(1, 1)*y
}
