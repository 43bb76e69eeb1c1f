package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/hist"
)

// Output file names written by WriteAll.
const (
	SummaryFile         = "summary.txt"
	DensityPNGFile      = "density.png"
	DensityHTMLFile     = "density.html"
	LengthHistogramFile = "lengths.png"
)

// WriteText prints a side-by-side comparison table.
func WriteText(w io.Writer, c Comparison) error {
	rows := []struct {
		name string
		e, s float64
	}{
		{"fixations", float64(c.Empirical.Fixations), float64(c.Surrogate.Fixations)},
		{"trajectories", float64(c.Empirical.Trajectories), float64(c.Surrogate.Trajectories)},
		{"mean trajectory length", c.Empirical.MeanTrajectoryLength, c.Surrogate.MeanTrajectoryLength},
		{"mean saccade length", c.Empirical.MeanSaccadeLength, c.Surrogate.MeanSaccadeLength},
		{"std saccade length", c.Empirical.StdSaccadeLength, c.Surrogate.StdSaccadeLength},
		{"circular mean angle", c.Empirical.CircularMeanAngle, c.Surrogate.CircularMeanAngle},
		{"mean length diff", c.Empirical.MeanLengthDiff, c.Surrogate.MeanLengthDiff},
		{"std length diff", c.Empirical.StdLengthDiff, c.Surrogate.StdLengthDiff},
		{"mean |angle diff|", c.Empirical.MeanAbsAngleDiff, c.Surrogate.MeanAbsAngleDiff},
		{"std |angle diff|", c.Empirical.StdAbsAngleDiff, c.Surrogate.StdAbsAngleDiff},
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%-24s %12s %12s\n", "", "empirical", "surrogate")
	for _, r := range rows {
		fmt.Fprintf(&buf, "%-24s %12.3f %12.3f\n", r.name, r.e, r.s)
	}
	fmt.Fprintf(&buf, "\nKolmogorov-Smirnov distance\n")
	fmt.Fprintf(&buf, "%-24s %12.4f\n", "saccade length", c.KSLength)
	fmt.Fprintf(&buf, "%-24s %12.4f\n", "length diff", c.KSLengthDiff)
	fmt.Fprintf(&buf, "%-24s %12.4f\n", "|angle diff|", c.KSAngleDiff)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteAll writes the comparison table, the length histogram and, when
// density is non-nil, both density renderings into dir. It returns the
// paths written.
func WriteAll(dir string, empirical, surrogate *fixmat.Fixmat, density *hist.Histogram2D, fsys fsutil.FileSystem) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	c, err := Compare(empirical, surrogate)
	if err != nil {
		return nil, err
	}

	var written []string
	summaryPath := filepath.Join(dir, SummaryFile)
	var buf bytes.Buffer
	if err := WriteText(&buf, c); err != nil {
		return written, err
	}
	if err := fsys.WriteFile(summaryPath, buf.Bytes(), 0o644); err != nil {
		return written, err
	}
	written = append(written, summaryPath)

	lengthsPath := filepath.Join(dir, LengthHistogramFile)
	if err := LengthHistogramPNG(empirical, surrogate, lengthsPath, fsys); err != nil {
		return written, err
	}
	written = append(written, lengthsPath)

	if density == nil {
		return written, nil
	}
	pngPath := filepath.Join(dir, DensityPNGFile)
	if err := DensityHeatmapPNG(density, pngPath, fsys); err != nil {
		return written, err
	}
	written = append(written, pngPath)

	buf.Reset()
	if err := DensityHeatmapHTML(density, &buf); err != nil {
		return written, err
	}
	htmlPath := filepath.Join(dir, DensityHTMLFile)
	if err := fsys.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return written, err
	}
	return append(written, htmlPath), nil
}
