// Package report compares the second-order statistics of an empirical
// dataset with a generated one and renders the fitted density.
package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fixgen/internal/density"
	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/hist"
	"github.com/banshee-data/fixgen/internal/saccade"
	"github.com/banshee-data/fixgen/internal/units"
)

// Summary holds first- and second-order saccade statistics of a dataset.
// Lengths are in pixels, angles in degrees.
type Summary struct {
	Fixations            int
	Trajectories         int
	MeanTrajectoryLength float64

	MeanSaccadeLength float64
	StdSaccadeLength  float64
	CircularMeanAngle float64

	MeanLengthDiff   float64
	StdLengthDiff    float64
	MeanAbsAngleDiff float64
	StdAbsAngleDiff  float64
}

// Comparison pairs two summaries with two-sample Kolmogorov-Smirnov
// distances between their feature distributions.
type Comparison struct {
	Empirical Summary
	Surrogate Summary

	KSLength     float64
	KSLengthDiff float64
	KSAngleDiff  float64
}

// sample is the valid first-order feature set of one dataset.
type sample struct {
	lengths     []float64
	angles      []float64
	lengthDiffs []float64
	angleDiffs  []float64 // absolute, reshifted
}

func features(fm *fixmat.Fixmat) (*sample, error) {
	f, err := saccade.Extract(fm, 1)
	if err != nil {
		return nil, err
	}
	o := f.Order(1)
	s := &sample{}
	s.lengths, s.angles = saccade.Valid(o.Lengths, o.Angles)
	s.lengthDiffs, s.angleDiffs = saccade.Valid(o.LengthDiff, o.AngleDiff)
	for i, a := range s.angleDiffs {
		s.angleDiffs[i] = math.Abs(saccade.Reshift(a))
	}
	return s, nil
}

// Summarize computes a Summary of fm. Statistics with no samples are NaN.
func Summarize(fm *fixmat.Fixmat) (Summary, error) {
	s, err := features(fm)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return s.summary(fm), nil
}

func (s *sample) summary(fm *fixmat.Fixmat) Summary {
	out := Summary{
		Fixations:    fm.Len(),
		Trajectories: fm.NumTrajectories(),
	}
	if out.Trajectories > 0 {
		out.MeanTrajectoryLength = float64(out.Fixations) / float64(out.Trajectories)
	}
	out.MeanSaccadeLength, out.StdSaccadeLength = meanStd(s.lengths)
	out.MeanLengthDiff, out.StdLengthDiff = meanStd(s.lengthDiffs)
	out.MeanAbsAngleDiff, out.StdAbsAngleDiff = meanStd(s.angleDiffs)

	out.CircularMeanAngle = math.NaN()
	if len(s.angles) > 0 {
		rad := make([]float64, len(s.angles))
		for i, a := range s.angles {
			rad[i] = units.Radians(a)
		}
		out.CircularMeanAngle = units.Degrees(stat.CircularMean(rad, nil))
	}
	return out
}

// Compare summarizes both datasets and measures how far apart their
// saccade length, length-difference and angle-difference distributions are.
func Compare(empirical, surrogate *fixmat.Fixmat) (Comparison, error) {
	e, err := features(empirical)
	if err != nil {
		return Comparison{}, fmt.Errorf("empirical: %w", err)
	}
	s, err := features(surrogate)
	if err != nil {
		return Comparison{}, fmt.Errorf("surrogate: %w", err)
	}
	return Comparison{
		Empirical:    e.summary(empirical),
		Surrogate:    s.summary(surrogate),
		KSLength:     ks(e.lengths, s.lengths),
		KSLengthDiff: ks(e.lengthDiffs, s.lengthDiffs),
		KSAngleDiff:  ks(e.angleDiffs, s.angleDiffs),
	}, nil
}

func meanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// ks returns the two-sample Kolmogorov-Smirnov statistic, or NaN when
// either side is empty.
func ks(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.NaN()
	}
	x := append([]float64(nil), a...)
	y := append([]float64(nil), b...)
	sort.Float64s(x)
	sort.Float64s(y)
	return stat.KolmogorovSmirnov(x, nil, y, nil)
}

// CollapsedDensity fits the folded second-order density of fm: length
// differences in degrees of visual angle against absolute angle
// differences. A nil estimator uses density.NewEstimator.
func CollapsedDensity(fm *fixmat.Fixmat, est *density.Estimator) (*hist.Histogram2D, error) {
	f, err := saccade.Extract(fm, 1)
	if err != nil {
		return nil, err
	}
	if est == nil {
		est = density.NewEstimator()
	}
	o := f.Order(1)
	ld := make([]float64, len(o.LengthDiff))
	for i, v := range o.LengthDiff {
		ld[i] = units.PixelsToDegrees(v, fm.PixelsPerDegree)
	}
	return est.FitCollapsed(o.AngleDiff, ld)
}
