// Package density turns raw saccade-difference samples into smoothed
// probability surfaces over a fixed grid.
package density

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/fixgen/internal/hist"
)

// ErrEmptyDensity is returned when a fit carries no probability mass.
var ErrEmptyDensity = errors.New("fitted density is empty")

// Fitter smooths samples into a non-negative surface over the grid given by
// yEdges and xEdges. Each sample is a (y, x) pair. When ref is non-nil it is
// used as the raw histogram instead of binning samples. Implementations must
// not retain or modify their arguments.
type Fitter interface {
	FitPDF(samples [][2]float64, yEdges, xEdges []float64, yKnots, xKnots int, ref *hist.Histogram2D) (*hist.Histogram2D, error)
}

// FitterFunc adapts a function to the Fitter interface.
type FitterFunc func(samples [][2]float64, yEdges, xEdges []float64, yKnots, xKnots int, ref *hist.Histogram2D) (*hist.Histogram2D, error)

// FitPDF calls f.
func (f FitterFunc) FitPDF(samples [][2]float64, yEdges, xEdges []float64, yKnots, xKnots int, ref *hist.Histogram2D) (*hist.Histogram2D, error) {
	return f(samples, yEdges, xEdges, yKnots, xKnots, ref)
}

// rawHistogram returns a copy of ref, or the normalised counts of samples.
func rawHistogram(samples [][2]float64, yEdges, xEdges []float64, ref *hist.Histogram2D) (*hist.Histogram2D, error) {
	if ref != nil {
		if ref.Rows != len(yEdges)-1 || ref.Cols != len(xEdges)-1 {
			return nil, fmt.Errorf("reference histogram is %dx%d, grid is %dx%d",
				ref.Rows, ref.Cols, len(yEdges)-1, len(xEdges)-1)
		}
		return ref.Clone(), nil
	}
	ys := make([]float64, len(samples))
	xs := make([]float64, len(samples))
	for i, s := range samples {
		ys[i], xs[i] = s[0], s[1]
	}
	h, err := hist.Counts(ys, xs, yEdges, xEdges)
	if err != nil {
		return nil, err
	}
	h.Normalize()
	return h, nil
}

// HistogramFitter performs no smoothing: the fitted surface is the raw
// histogram.
type HistogramFitter struct{}

// FitPDF returns the raw histogram of samples (or a copy of ref).
func (HistogramFitter) FitPDF(samples [][2]float64, yEdges, xEdges []float64, _, _ int, ref *hist.Histogram2D) (*hist.Histogram2D, error) {
	return rawHistogram(samples, yEdges, xEdges, ref)
}

// SplineFitter smooths the raw histogram with a tensor-product cubic
// B-spline fitted by least squares, then clamps negative values to zero.
// Along each axis the spline spans only the occupied bins of the raw
// marginal, with knots at equal-mass quantiles of that marginal, so knots
// bunch where the samples are and empty bins stay empty. Axes whose
// occupied range has fewer bins than basis functions are left unsmoothed.
type SplineFitter struct{}

// FitPDF implements Fitter.
func (SplineFitter) FitPDF(samples [][2]float64, yEdges, xEdges []float64, yKnots, xKnots int, ref *hist.Histogram2D) (*hist.Histogram2D, error) {
	if yKnots < 2 || xKnots < 2 {
		return nil, fmt.Errorf("spline fit needs at least two knots per axis, got %d and %d", yKnots, xKnots)
	}
	raw, err := rawHistogram(samples, yEdges, xEdges, ref)
	if err != nil {
		return nil, err
	}
	rows, cols := raw.Shape()
	h := mat.NewDense(rows, cols, append([]float64(nil), raw.Data...))

	rowMass := make([]float64, rows)
	for r := range rowMass {
		rowMass[r] = floats.Sum(h.RawRowView(r))
	}
	colMass := make([]float64, cols)
	for c := range colMass {
		colMass[c] = mat.Sum(h.ColView(c))
	}

	// Smooth along y: project every column onto the y basis.
	sm, err := smoothAxis(h, rowMass, yKnots)
	if err != nil {
		return nil, fmt.Errorf("y-axis spline fit: %w", err)
	}
	// Smooth along x on the transposed grid.
	var ht mat.Dense
	ht.CloneFrom(sm.T())
	smt, err := smoothAxis(&ht, colMass, xKnots)
	if err != nil {
		return nil, fmt.Errorf("x-axis spline fit: %w", err)
	}
	h.CloneFrom(smt.T())

	out := raw.Clone()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, math.Max(h.At(r, c), 0))
		}
	}
	return out, nil
}

// smoothAxis fits every column of h with a spline over the rows occupied
// in marginal and zeroes the rows outside that range. h is returned
// unchanged when the range is too short for the basis.
func smoothAxis(h *mat.Dense, marginal []float64, nKnots int) (*mat.Dense, error) {
	breaks, lo, hi, ok := quantileBreaks(marginal, nKnots)
	if !ok || len(breaks) < 2 {
		return h, nil
	}
	n := hi - lo + 1
	points := make([]float64, n)
	for i := range points {
		points[i] = float64(i)
	}
	b := basisMatrix(points, breaks)
	if _, nb := b.Dims(); nb > n {
		return h, nil
	}

	rows, cols := h.Dims()
	var occupied mat.Dense
	occupied.CloneFrom(h.Slice(lo, hi+1, 0, cols))
	fitted, err := project(b, &occupied)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, cols, nil)
	out.Slice(lo, hi+1, 0, cols).(*mat.Dense).Copy(fitted)
	return out, nil
}

// project returns B * argmin_W ||B W - Y||, the least-squares projection of
// the columns of y onto the span of b.
func project(b, y *mat.Dense) (*mat.Dense, error) {
	var w mat.Dense
	if err := w.Solve(b, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, err
		}
		// Ill-conditioned but solved; keep the result.
	}
	var fitted mat.Dense
	fitted.Mul(b, &w)
	return &fitted, nil
}

// renormalize scales h to sum to one.
func renormalize(h *hist.Histogram2D) error {
	total := floats.Sum(h.Data)
	if !(total > 0) || math.IsInf(total, 0) {
		return ErrEmptyDensity
	}
	floats.Scale(1/total, h.Data)
	return nil
}
