package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fixgen/internal/fixmat"
	"github.com/banshee-data/fixgen/internal/fsutil"
	"github.com/banshee-data/fixgen/internal/hist"
)

const lengthHistogramBins = 40

var (
	empiricalColor = color.RGBA{R: 49, G: 104, B: 142, A: 160}
	surrogateColor = color.RGBA{R: 253, G: 174, B: 97, A: 160}
)

// densityGrid adapts a histogram to plotter.GridXYZ: columns run along
// the angle difference, rows along the length difference.
type densityGrid struct {
	h       *hist.Histogram2D
	xCenter []float64
	yCenter []float64
}

func newDensityGrid(h *hist.Histogram2D) densityGrid {
	return densityGrid{h: h, xCenter: centers(h.XEdges), yCenter: centers(h.YEdges)}
}

func (g densityGrid) Dims() (c, r int)   { return g.h.Cols, g.h.Rows }
func (g densityGrid) Z(c, r int) float64 { return g.h.At(r, c) }
func (g densityGrid) X(c int) float64    { return g.xCenter[c] }
func (g densityGrid) Y(r int) float64    { return g.yCenter[r] }

func centers(edges []float64) []float64 {
	out := make([]float64, len(edges)-1)
	for i := range out {
		out[i] = (edges[i] + edges[i+1]) / 2
	}
	return out
}

// DensityHeatmapPNG renders a fitted second-order density to path.
func DensityHeatmapPNG(h *hist.Histogram2D, path string, fsys fsutil.FileSystem) error {
	if h == nil || h.Rows < 2 || h.Cols < 2 {
		return errors.New("density heatmap needs at least a 2x2 density")
	}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(newDensityGrid(h), cm.Palette(255))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Second-order saccade density"
	p.X.Label.Text = "Angle difference (deg)"
	p.Y.Label.Text = "Length difference"
	p.Add(hm)

	return savePNG(p, 8*vg.Inch, 6*vg.Inch, path, fsys)
}

// LengthHistogramPNG overlays the saccade length distributions of both
// datasets, each normalized to unit area.
func LengthHistogramPNG(empirical, surrogate *fixmat.Fixmat, path string, fsys fsutil.FileSystem) error {
	e, err := features(empirical)
	if err != nil {
		return fmt.Errorf("empirical: %w", err)
	}
	s, err := features(surrogate)
	if err != nil {
		return fmt.Errorf("surrogate: %w", err)
	}
	if len(e.lengths) == 0 || len(s.lengths) == 0 {
		return errors.New("length histogram needs saccades in both datasets")
	}

	p := plot.New()
	p.Title.Text = "Saccade length"
	p.X.Label.Text = "Length (px)"
	p.Y.Label.Text = "Density"

	for _, series := range []struct {
		name   string
		values []float64
		fill   color.Color
	}{
		{"empirical", e.lengths, empiricalColor},
		{"surrogate", s.lengths, surrogateColor},
	} {
		h, err := plotter.NewHist(plotter.Values(series.values), lengthHistogramBins)
		if err != nil {
			return fmt.Errorf("%s histogram: %w", series.name, err)
		}
		h.Normalize(1)
		h.FillColor = series.fill
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		p.Legend.Add(series.name, h)
	}
	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return savePNG(p, 8*vg.Inch, 5*vg.Inch, path, fsys)
}

func savePNG(p *plot.Plot, w, h vg.Length, path string, fsys fsutil.FileSystem) error {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
