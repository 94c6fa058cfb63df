package contour

import (
	"math"

	"github.com/roach88/chainstat/internal/trace"
)

// maxBisections bounds the level search. Halving the bracket this many times
// exhausts float64 precision for any finite range.
const maxBisections = 200

// DefaultTolerance is the bisection tolerance relative to the grid range.
const DefaultTolerance = 1e-12

// FindLevel returns the density level L such that the values at or above L
// hold the given fraction of the total.
//
// The enclosed mass is non-increasing in L, so the level is bracketed by the
// minimum and maximum value. Returns CONTOUR_CONVERGENCE if the bracket does
// not straddle the target (for example when every value is equal) or if the
// search does not converge.
func FindLevel(values []float64, fraction, tolerance float64) (float64, error) {
	if len(values) == 0 {
		return 0, trace.ContourConvergence(fraction, "empty grid")
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	total := 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		total += v
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, trace.ContourConvergence(fraction, "grid has no positive mass")
	}

	excess := func(level float64) float64 {
		above := 0.0
		for _, v := range values {
			if v >= level {
				above += v
			}
		}
		return above/total - fraction
	}

	flo, fhi := excess(lo), excess(hi)
	switch {
	case flo == 0:
		return lo, nil
	case fhi == 0:
		return hi, nil
	case flo*fhi > 0:
		return 0, trace.ContourConvergence(fraction, "level is not bracketed by the grid range")
	}

	xtol := tolerance * (hi - lo)
	for i := 0; i < maxBisections; i++ {
		mid := lo + (hi-lo)/2
		fmid := excess(mid)
		if fmid == 0 || (hi-lo)/2 <= xtol {
			return mid, nil
		}
		if fmid > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, trace.ContourConvergence(fraction, "bisection did not converge")
}
