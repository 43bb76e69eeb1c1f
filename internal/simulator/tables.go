package simulator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/fixgen/internal/density"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/hist"
	"github.com/banshee-data/fixgen/internal/saccade"
	"github.com/banshee-data/fixgen/internal/units"
)

// trajectoryLengthBins is the bin count of the trajectory-length histogram.
const trajectoryLengthBins = 1000

// Table2D is a flattened cumulative table with the grid shape it came from.
type Table2D struct {
	CumSum     []float64
	Rows, Cols int
}

// Table1D is a cumulative table whose indices map to values via Borders.
type Table1D struct {
	CumSum  []float64
	Borders []float64
}

func newTable2D(h *hist.Histogram2D) Table2D {
	return Table2D{CumSum: hist.CumSum(h), Rows: h.Rows, Cols: h.Cols}
}

// secondOrderDensity fits the full density of consecutive-saccade length
// differences (degrees of visual angle) and angle differences.
func secondOrderDensity(fm *fixmat.Fixmat, f *saccade.Features, est *density.Estimator) (*hist.Histogram2D, error) {
	o := f.Order(1)
	ld := make([]float64, len(o.LengthDiff))
	for i, v := range o.LengthDiff {
		ld[i] = units.PixelsToDegrees(v, fm.PixelsPerDegree)
	}
	diag := units.ScreenDiagonalDegrees(fm.ImageHeight, fm.ImageWidth, fm.PixelsPerDegree)
	return est.FitFull(o.AngleDiff, ld, diag)
}

// firstSaccadeTable histograms the (length, angle) of the first saccade of
// every trajectory. Lengths are binned in whole pixels up to the screen
// diagonal and angles in whole degrees from -180 to 180.
func firstSaccadeTable(fm *fixmat.Fixmat, f *saccade.Features) (Table2D, error) {
	o := f.Order(1)
	mask := fixmat.RollBool(fm.TrajectoryStarts(), 1)
	var lengths, angles []float64
	for i, first := range mask {
		if first {
			lengths = append(lengths, o.Lengths[i])
			angles = append(angles, saccade.Reshift(o.Angles[i]))
		}
	}
	diag := units.ScreenDiagonalPixels(fm.ImageHeight, fm.ImageWidth)
	h, err := hist.New2D(lengths, angles, hist.Range(diag), hist.Linspace(-180.5, 180.5, 362))
	if err != nil {
		return Table2D{}, fmt.Errorf("first saccade histogram: %w", err)
	}
	return newTable2D(h), nil
}

// firstCoordinateTable histograms the first fixation of every trajectory
// over the image in whole-pixel bins.
func firstCoordinateTable(fm *fixmat.Fixmat) (Table2D, error) {
	var ys, xs []float64
	for i, start := range fm.TrajectoryStarts() {
		if start {
			ys = append(ys, fm.Y[i])
			xs = append(xs, fm.X[i])
		}
	}
	h, err := hist.New2D(ys, xs, hist.Range(fm.ImageHeight), hist.Range(fm.ImageWidth))
	if err != nil {
		return Table2D{}, fmt.Errorf("first coordinate histogram: %w", err)
	}
	return newTable2D(h), nil
}

// trajectoryLengthTable histograms the fixation count of every trajectory,
// read from the index preceding each trajectory start.
func trajectoryLengthTable(fm *fixmat.Fixmat) (Table1D, error) {
	prev := fixmat.RollInt(fm.Fix, 1)
	var lengths []float64
	for i, start := range fm.TrajectoryStarts() {
		if start {
			lengths = append(lengths, float64(prev[i]))
		}
	}
	counts, borders, err := hist.New1D(lengths, trajectoryLengthBins)
	if err != nil {
		return Table1D{}, fmt.Errorf("trajectory length histogram: %w", err)
	}
	floats.Scale(1/floats.Sum(counts), counts)
	t := Table1D{
		CumSum:  floats.CumSum(make([]float64, len(counts)), counts),
		Borders: borders,
	}
	return t, nil
}
