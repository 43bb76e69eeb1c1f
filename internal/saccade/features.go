package saccade

import (
	"fmt"
	"math"

	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/units"
)

// Features holds saccade features for orders 1..N, indexed by order-1.
// Every slice is aligned with the source dataset's fixations; entries
// without a valid predecessor in the same trajectory are NaN.
type Features struct {
	Angles      [][]float64
	Lengths     [][]float64
	AngleDiffs  [][]float64
	LengthDiffs [][]float64
}

// OrderFeatures is the feature set of a single order.
type OrderFeatures struct {
	Angles     []float64
	Lengths    []float64
	AngleDiff  []float64
	LengthDiff []float64
}

// Orders returns the highest order held.
func (f *Features) Orders() int { return len(f.Lengths) }

// Order returns the features of order r (1-based).
func (f *Features) Order(r int) OrderFeatures {
	return OrderFeatures{
		Angles:     f.Angles[r-1],
		Lengths:    f.Lengths[r-1],
		AngleDiff:  f.AngleDiffs[r-1],
		LengthDiff: f.LengthDiffs[r-1],
	}
}

// Extract computes, for r = 1..order, the length and angle (degrees, atan2
// convention) of the displacement between each fixation and the fixation r
// steps earlier, and the difference between each first-order saccade and the
// preceding order-r saccade.
//
// Angle differences are raw (range [-360, 360]); callers reshift them before
// histogramming.
func Extract(fm *fixmat.Fixmat, order int) (*Features, error) {
	if order < 1 {
		return nil, fmt.Errorf("saccade order must be at least 1, got %d", order)
	}
	if err := fm.Validate(); err != nil {
		return nil, err
	}

	n := fm.Len()
	minFix := fm.MinFix()
	f := &Features{
		Angles:      make([][]float64, 0, order),
		Lengths:     make([][]float64, 0, order),
		AngleDiffs:  make([][]float64, 0, order),
		LengthDiffs: make([][]float64, 0, order),
	}

	for r := 1; r <= order; r++ {
		prevX := fixmat.RollFloat(fm.X, r)
		prevY := fixmat.RollFloat(fm.Y, r)

		lengths := make([]float64, n)
		angles := make([]float64, n)
		for i := 0; i < n; i++ {
			// The r-th predecessor lies in an earlier trajectory.
			if fm.Fix[i] <= minFix+r-1 {
				lengths[i] = math.NaN()
				angles[i] = math.NaN()
				continue
			}
			dx := fm.X[i] - prevX[i]
			dy := fm.Y[i] - prevY[i]
			lengths[i] = math.Hypot(dx, dy)
			angles[i] = units.Degrees(math.Atan2(dy, dx))
		}
		f.Lengths = append(f.Lengths, lengths)
		f.Angles = append(f.Angles, angles)

		prevLen := fixmat.RollFloat(lengths, 1)
		prevAng := fixmat.RollFloat(angles, 1)
		ld := make([]float64, n)
		ad := make([]float64, n)
		for i := 0; i < n; i++ {
			ld[i] = f.Lengths[0][i] - prevLen[i]
			ad[i] = f.Angles[0][i] - prevAng[i]
		}
		f.LengthDiffs = append(f.LengthDiffs, ld)
		f.AngleDiffs = append(f.AngleDiffs, ad)
	}
	return f, nil
}

// Valid returns the values of a and b at positions where neither is NaN.
func Valid(a, b []float64) (va, vb []float64) {
	for i := range a {
		if i >= len(b) {
			break
		}
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		va = append(va, a[i])
		vb = append(vb, b[i])
	}
	return va, vb
}
