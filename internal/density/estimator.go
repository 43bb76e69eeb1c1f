package density

import (
	"fmt"
	"math"

	"github.com/banshee-data/fixgen/internal/hist"
	"github.com/banshee-data/fixgen/internal/saccade"
)

// Default knot counts for the length (y) and angle (x) axes.
const (
	DefaultYKnots = 4
	DefaultXKnots = 10
)

// collapsedLengthRange is the length-difference half range, in degrees, of
// the collapsed grid; 36 degrees is the diagonal of a typical screen.
const collapsedLengthRange = 36

// Estimator fits second-order densities over (length difference, angle
// difference) space.
type Estimator struct {
	Fitter Fitter
	YKnots int
	XKnots int
}

// NewEstimator returns an Estimator using the spline smoother and default
// knot counts.
func NewEstimator() *Estimator {
	return &Estimator{Fitter: SplineFitter{}, YKnots: DefaultYKnots, XKnots: DefaultXKnots}
}

func (e *Estimator) fitter() Fitter {
	if e.Fitter == nil {
		return SplineFitter{}
	}
	return e.Fitter
}

func (e *Estimator) knots() (int, int) {
	y, x := e.YKnots, e.XKnots
	if y == 0 {
		y = DefaultYKnots
	}
	if x == 0 {
		x = DefaultXKnots
	}
	return y, x
}

// validPairs drops NaN pairs and reshifts the angle differences.
func validPairs(angleDiffs, lengthDiffs []float64) (ad, ld []float64, err error) {
	if len(angleDiffs) != len(lengthDiffs) {
		return nil, nil, fmt.Errorf("%w: %d angle vs %d length differences", hist.ErrMisaligned, len(angleDiffs), len(lengthDiffs))
	}
	ld, ad = saccade.Valid(lengthDiffs, angleDiffs)
	return saccade.ReshiftAll(ad), ld, nil
}

func pairs(ld, ad []float64) [][2]float64 {
	out := make([][2]float64, len(ld))
	for i := range ld {
		out[i] = [2]float64{ld[i], ad[i]}
	}
	return out
}

// FitCollapsed fits the density of (length difference, |angle difference|)
// on a grid of 73 one-degree length bins by 181 one-degree angle bins. The
// edge-corrected histogram of the folded data is handed to the fitter.
func (e *Estimator) FitCollapsed(angleDiffs, lengthDiffs []float64) (*hist.Histogram2D, error) {
	ad, ld, err := validPairs(angleDiffs, lengthDiffs)
	if err != nil {
		return nil, err
	}
	for i := range ad {
		ad[i] = math.Abs(ad[i])
	}
	yEdges := hist.Linspace(-collapsedLengthRange-0.5, collapsedLengthRange+0.5, 2*collapsedLengthRange+2)
	xEdges := hist.Linspace(-0.5, 180.5, 182)

	ref, err := hist.New2D(ld, ad, yEdges, xEdges)
	if err != nil {
		return nil, err
	}
	yk, xk := e.knots()
	h, err := e.fitter().FitPDF(pairs(ld, ad), yEdges, xEdges, yk, xk, ref)
	if err != nil {
		return nil, fmt.Errorf("collapsed density fit: %w", err)
	}
	if err := renormalize(h); err != nil {
		return nil, err
	}
	return h, nil
}

// FitFull fits the density of (length difference, signed angle difference)
// with length differences in [-diag, diag] (one bin per unit) and angle
// differences in 360 one-degree bins centred on -180..179. Differences above
// 179.5 degrees wrap to the -180 bin.
func (e *Estimator) FitFull(angleDiffs, lengthDiffs []float64, diag int) (*hist.Histogram2D, error) {
	if diag < 1 {
		return nil, fmt.Errorf("length range must be positive, got %d", diag)
	}
	ad, ld, err := validPairs(angleDiffs, lengthDiffs)
	if err != nil {
		return nil, err
	}
	for i := range ad {
		if ad[i] > 179.5 {
			ad[i] -= 360
		}
	}
	yEdges := hist.Linspace(float64(-diag), float64(diag), 2*diag+1)
	xEdges := hist.Linspace(-180.5, 179.5, 361)

	yk, xk := e.knots()
	h, err := e.fitter().FitPDF(pairs(ld, ad), yEdges, xEdges, yk, xk, nil)
	if err != nil {
		return nil, fmt.Errorf("full density fit: %w", err)
	}
	if err := renormalize(h); err != nil {
		return nil, err
	}
	return h, nil
}
