package render

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Temporal draws the anomaly count per time bucket.
func (r *Renderer) Temporal(in Input) (string, error) {
	h, err := analysis.TemporalBuckets(in.Transactions, in.Anomalies, r.Params.BucketCount)
	if err != nil {
		return "", err
	}
	p := r.newPlot("Temporal Distribution of Detected Anomalies", "Transaction Date", "Number of Anomalies")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	r.rotateX(p)

	width := h.Width()
	if width <= 0 {
		// every date is the same; show one day-wide bar
		width = 24 * time.Hour
	}
	hist := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(h.Counts)),
		Width:     width.Seconds(),
		FillColor: r.Style.TemporalColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, c := range h.Counts {
		lo := float64(h.BucketStart(i).Unix())
		hist.Bins[i] = plotter.HistogramBin{Min: lo, Max: lo + width.Seconds(), Weight: float64(c)}
	}
	p.Add(hist)
	return r.saveSingle(ChartTemporal, r.Style.Temporal, p)
}

// Categories draws the merchant categories with the most anomalies.
func (r *Renderer) Categories(in Input) (string, error) {
	anomalous, err := analysis.SelectAnomalous(in.Transactions, in.Anomalies)
	if err != nil {
		return "", err
	}
	counts, err := analysis.Frequencies(anomalous, dataset.FieldMCCDescription, r.Params.TopCategories)
	if err != nil {
		return "", err
	}
	p := r.newPlot(fmt.Sprintf("Top %d Merchant Categories with Anomalies", r.Params.TopCategories), "Number of Anomalies", "Merchant Category")
	if len(counts) == 0 {
		p.Title.Text += " (no data)"
		return r.saveSingle(ChartCategory, r.Style.Category, p)
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		j := len(counts) - 1 - i
		vals[j] = float64(c.Count)
		names[j] = categoryLabel(c.Value)
	}
	if err := r.hbars(p, vals, names, r.Style.CategoryColor); err != nil {
		return "", err
	}
	return r.saveSingle(ChartCategory, r.Style.Category, p)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// field on the top row.
type corrGrid struct {
	m *analysis.CorrMatrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) X(c int) float64 { return float64(c) }

func (g corrGrid) Y(r int) float64 { return float64(r) }

func (g corrGrid) Z(c, r int) float64 {
	return g.m.At(len(g.m.Columns)-1-r, c)
}

// Correlation draws an annotated heatmap of the correlation matrix on a
// diverging palette centered at zero. Undefined cells use the NaN color.
func (r *Renderer) Correlation(in Input) (string, error) {
	m, err := analysis.CorrelationMatrix(in.Transactions, r.Params.CorrFields)
	if err != nil {
		return "", err
	}
	n := len(m.Columns)
	grid := corrGrid{m: m}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = r.Style.NaNColor

	p := r.newPlot("Correlation Matrix of Numerical Features", "", "")
	p.Add(hm)

	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v := grid.Z(col, row)
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(row)})
			if math.IsNaN(v) {
				labels = append(labels, "n/a")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].YAlign = draw.YCenter
		lbl.TextStyle[i].Font.Size = r.Style.TextSize
	}
	p.Add(lbl)

	ynames := make([]string, n)
	for i, c := range m.Columns {
		ynames[n-1-i] = c
	}
	p.NominalX(m.Columns...)
	p.NominalY(ynames...)
	return r.saveSingle(ChartCorrelation, r.Style.Heatmap, p)
}

// Boxplot draws the amount distribution of normal and anomalous transactions.
func (r *Renderer) Boxplot(in Input) (string, error) {
	an, no, err := analysis.GroupValues(in.Transactions, in.Anomalies, dataset.FieldAmount)
	if err != nil {
		return "", err
	}
	if len(no) == 0 {
		return "", &analysis.EmptyGroupError{Group: analysis.GroupNormal, Field: dataset.FieldAmount}
	}
	if len(an) == 0 {
		return "", &analysis.EmptyGroupError{Group: analysis.GroupAnomalous, Field: dataset.FieldAmount}
	}
	p := r.newPlot("Transaction Amount Distribution: Normal vs Anomalous", "Is Anomaly (0: Normal, 1: Anomaly)", "Transaction Amount ($)")
	for i, vals := range [][]float64{no, an} {
		b, err := plotter.NewBoxPlot(vg.Points(60), float64(i), plotter.Values(vals))
		if err != nil {
			return "", err
		}
		b.FillColor = r.Style.BoxColor
		p.Add(b)
	}
	p.NominalX("0", "1")
	return r.saveSingle(ChartBoxplot, r.Style.Boxplot, p)
}
