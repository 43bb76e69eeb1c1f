package density

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// splineDegree is the polynomial degree of the smoothing basis (cubic).
const splineDegree = 3

// knotVector clamps the increasing breakpoints by repeating each end
// splineDegree more times.
func knotVector(breaks []float64) []float64 {
	t := make([]float64, 0, len(breaks)+2*splineDegree)
	for i := 0; i < splineDegree; i++ {
		t = append(t, breaks[0])
	}
	t = append(t, breaks...)
	for i := 0; i < splineDegree; i++ {
		t = append(t, breaks[len(breaks)-1])
	}
	return t
}

// basisValues evaluates every B-spline of the knot vector at x using the
// Cox-de Boor recursion.
func basisValues(t []float64, x float64) []float64 {
	nb := len(t) - splineDegree - 1
	// Degree-0 indicator functions over the full knot vector.
	b := make([]float64, len(t)-1)
	last := len(t) - 1
	for i := 0; i < last; i++ {
		if t[i] <= x && x < t[i+1] {
			b[i] = 1
		}
	}
	// x at the right boundary belongs to the last non-empty interval.
	if x == t[last] {
		for i := last - 1; i >= 0; i-- {
			if t[i] < t[i+1] {
				b[i] = 1
				break
			}
		}
	}
	for d := 1; d <= splineDegree; d++ {
		for i := 0; i < len(t)-1-d; i++ {
			var v float64
			if den := t[i+d] - t[i]; den > 0 {
				v += (x - t[i]) / den * b[i]
			}
			if den := t[i+d+1] - t[i+1]; den > 0 {
				v += (t[i+d+1] - x) / den * b[i+1]
			}
			b[i] = v
		}
	}
	return b[:nb]
}

// basisMatrix evaluates the basis clamped on breaks at each point; the
// result is len(points) x (len(breaks)+degree-1).
func basisMatrix(points, breaks []float64) *mat.Dense {
	t := knotVector(breaks)
	nb := len(t) - splineDegree - 1
	m := mat.NewDense(len(points), nb, nil)
	for r, x := range points {
		m.SetRow(r, basisValues(t, x))
	}
	return m
}

// quantileBreaks places up to nKnots breakpoints at equal-mass quantiles of
// marginal, restricted to its support [lo, hi] (the first and last positive
// entries). Breakpoints are bin offsets from lo; the first is 0 and the
// last is hi-lo. Quantiles falling on the same bin collapse into one
// breakpoint. ok is false when marginal has no positive entry.
func quantileBreaks(marginal []float64, nKnots int) (breaks []float64, lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, v := range marginal {
		if v > 0 {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return nil, 0, 0, false
	}

	sub := make([]float64, hi-lo+1)
	for i, v := range marginal[lo : hi+1] {
		sub[i] = max(v, 0)
	}
	cum := floats.CumSum(make([]float64, len(sub)), sub)
	total := cum[len(cum)-1]

	breaks = []float64{0}
	for j := 1; j < nKnots-1; j++ {
		target := total * float64(j) / float64(nKnots-1) * (1 - 1e-12)
		i := sort.SearchFloat64s(cum, target)
		if p := float64(i); p > breaks[len(breaks)-1] && i < hi-lo {
			breaks = append(breaks, p)
		}
	}
	if end := float64(hi - lo); end > breaks[len(breaks)-1] {
		breaks = append(breaks, end)
	}
	return breaks, lo, hi, true
}
