// Package render draws the fraud-detection charts with gonum/plot and writes
// them as PNG files.
package render

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/KaramelBytes/fraudlens-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Chart identifies one output image.
type Chart string

const (
	ChartOverview    Chart = "overview"
	ChartTemporal    Chart = "temporal"
	ChartCategory    Chart = "mcc"
	ChartCorrelation Chart = "correlation"
	ChartBoxplot     Chart = "boxplot"
)

var fileNames = map[Chart]string{
	ChartOverview:    "fraud_detection_analysis.png",
	ChartTemporal:    "anomaly_temporal_distribution.png",
	ChartCategory:    "mcc_anomaly_distribution.png",
	ChartCorrelation: "feature_correlation_heatmap.png",
	ChartBoxplot:     "transaction_amount_boxplot.png",
}

// AllCharts returns every chart in output order.
func AllCharts() []Chart {
	return []Chart{ChartOverview, ChartTemporal, ChartCategory, ChartCorrelation, ChartBoxplot}
}

// FileName returns the fixed output file name of the chart.
func (c Chart) FileName() string { return fileNames[c] }

// ParseChart resolves a chart by name, case-insensitively.
func ParseChart(s string) (Chart, error) {
	c := Chart(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fileNames[c]; !ok {
		names := make([]string, 0, len(fileNames))
		for _, ch := range AllCharts() {
			names = append(names, string(ch))
		}
		return "", fmt.Errorf("unknown chart %q (available: %s)", s, strings.Join(names, ", "))
	}
	return c, nil
}

// ParseCharts resolves a list of chart names in order, dropping repeats.
func ParseCharts(names []string) ([]Chart, error) {
	seen := make(map[Chart]bool, len(names))
	charts := make([]Chart, 0, len(names))
	for _, name := range names {
		c, err := ParseChart(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		charts = append(charts, c)
	}
	return charts, nil
}

// Params are the numeric knobs of the charts.
type Params struct {
	// Threshold is drawn as a reference line on the score histogram.
	Threshold     float64
	TopK          int
	BucketCount   int
	TopCategories int
	HistBins      int
	CorrFields    []string
}

// DefaultParams returns the standard chart parameters.
func DefaultParams() Params {
	return Params{
		Threshold:     0.85,
		TopK:          10,
		BucketCount:   30,
		TopCategories: 10,
		HistBins:      50,
		CorrFields:    analysis.DefaultCorrelationFields,
	}
}

// Input is the pair of aligned tables every chart reads.
type Input struct {
	Transactions dataset.Transactions
	Anomalies    dataset.Anomalies
}

// Renderer draws charts into OutDir.
type Renderer struct {
	Style  Style
	Params Params
	OutDir string
}

// New returns a Renderer with the default style and parameters.
func New(outDir string) *Renderer {
	return &Renderer{Style: DefaultStyle(), Params: DefaultParams(), OutDir: outDir}
}

// Render draws one chart and returns the path written.
func (r *Renderer) Render(c Chart, in Input) (string, error) {
	switch c {
	case ChartOverview:
		return r.Overview(in)
	case ChartTemporal:
		return r.Temporal(in)
	case ChartCategory:
		return r.Categories(in)
	case ChartCorrelation:
		return r.Correlation(in)
	case ChartBoxplot:
		return r.Boxplot(in)
	}
	return "", fmt.Errorf("unknown chart %q", c)
}

// save draws onto a fresh image canvas and writes it atomically as PNG.
func (r *Renderer) save(c Chart, size Size, drawFn func(dc draw.Canvas)) (string, error) {
	if err := utils.EnsureDir(r.OutDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	img := vgimg.NewWith(
		vgimg.UseWH(size.W, size.H),
		vgimg.UseDPI(r.Style.DPI),
		vgimg.UseBackgroundColor(r.Style.Background),
	)
	drawFn(draw.New(img))
	path := filepath.Join(r.OutDir, c.FileName())
	if err := utils.SafeWriteTo(path, vgimg.PngCanvas{Canvas: img}); err != nil {
		return "", fmt.Errorf("save %s: %w", c.FileName(), err)
	}
	return path, nil
}

func (r *Renderer) saveSingle(c Chart, size Size, p *plot.Plot) (string, error) {
	return r.save(c, size, func(dc draw.Canvas) { p.Draw(dc) })
}

// newPlot returns a plot styled per r.Style.
func (r *Renderer) newPlot(title, xLabel, yLabel string) *plot.Plot {
	s := r.Style
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = s.TitleSize
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font.Size = s.LabelSize
	p.Y.Label.TextStyle.Font.Size = s.LabelSize
	p.X.Tick.Label.Font.Size = s.TickSize
	p.Y.Tick.Label.Font.Size = s.TickSize
	p.Legend.TextStyle.Font.Size = s.TextSize
	p.Legend.Top = true
	p.BackgroundColor = s.PlotBackground
	if s.Grid {
		g := plotter.NewGrid()
		g.Vertical.Color = s.GridColor
		g.Horizontal.Color = s.GridColor
		p.Add(g)
	}
	return p
}

func (r *Renderer) rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// vline returns a dashed vertical reference line from 0 to top.
func vline(x, top float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = vg.Points(2)
	l.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	return l, nil
}

// finite drops NaN and infinite values.
func finite(vals []float64) plotter.Values {
	out := make(plotter.Values, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func maxWeight(h *plotter.Histogram) float64 {
	m := 0.0
	for _, b := range h.Bins {
		m = math.Max(m, b.Weight)
	}
	return m
}

func categoryLabel(v string) string {
	if v == "" {
		return "(blank)"
	}
	return v
}
