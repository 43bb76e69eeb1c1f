package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fixgen/internal/hist"
)

// densityColors is the viridis ramp used for interactive density maps.
var densityColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// DensityHeatmapHTML writes an interactive heatmap of a fitted second-order
// density as a standalone HTML page.
func DensityHeatmapHTML(h *hist.Histogram2D, w io.Writer) error {
	if h == nil || h.Rows == 0 || h.Cols == 0 {
		return errors.New("density heatmap needs a non-empty density")
	}

	xLabels := axisLabels(centers(h.XEdges))
	yLabels := axisLabels(centers(h.YEdges))

	data := make([]opts.HeatMapData, 0, h.Rows*h.Cols)
	maxP := 0.0
	for r := 0; r < h.Rows; r++ {
		for c := 0; c < h.Cols; c++ {
			v := h.At(r, c)
			if v > maxP {
				maxP = v
			}
			if v == 0 {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Second-order density", Width: "1000px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Second-order saccade density", Subtitle: fmt.Sprintf("%dx%d bins", h.Rows, h.Cols)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Angle difference (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels, Name: "Length difference", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxP),
			InRange:    &opts.VisualMapInRange{Color: densityColors},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries("density", data)

	page := components.NewPage()
	page.AddCharts(hm)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func axisLabels(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'g', 4, 64)
	}
	return out
}
