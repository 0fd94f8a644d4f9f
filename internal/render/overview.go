package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Overview draws the 3x2 panel summary of amounts, scores and top anomalies.
func (r *Renderer) Overview(in Input) (string, error) {
	t, a := in.Transactions, in.Anomalies
	if err := a.Require(dataset.FieldEnsembleScore, dataset.FieldKMeansScore, dataset.FieldIsoScore, dataset.FieldReconstructionError); err != nil {
		return "", err
	}
	anomalous, err := analysis.SelectAnomalous(t, a)
	if err != nil {
		return "", err
	}

	single := func(p *plot.Plot, err error) (panel, error) { return panel{plot: p}, err }
	builds := []func() (panel, error){
		func() (panel, error) { return single(r.amountPanel(t)) },
		func() (panel, error) { return single(r.scorePanel(a)) },
		func() (panel, error) { return r.methodsPanel(a) },
		func() (panel, error) { return r.reconPanel(a) },
		func() (panel, error) { return single(r.topPanel(anomalous)) },
		func() (panel, error) { return single(r.regionPanel(anomalous)) },
	}
	plots := make([][]*plot.Plot, 3)
	bars := make([][]*plot.Plot, 3)
	for i, build := range builds {
		pn, err := build()
		if err != nil {
			return "", err
		}
		plots[i/2] = append(plots[i/2], pn.plot)
		bars[i/2] = append(bars[i/2], pn.bar)
	}

	tiles := draw.Tiles{
		Rows:      3,
		Cols:      2,
		PadX:      vg.Inch / 2,
		PadY:      vg.Inch / 2,
		PadTop:    vg.Inch / 4,
		PadBottom: vg.Inch / 4,
		PadLeft:   vg.Inch / 4,
		PadRight:  vg.Inch / 4,
	}
	return r.save(ChartOverview, r.Style.Overview, func(dc draw.Canvas) {
		canvases := plot.Align(plots, tiles, dc)
		for j := range plots {
			for i := range plots[j] {
				c := canvases[j][i]
				if bar := bars[j][i]; bar != nil {
					var bc draw.Canvas
					c, bc = splitColorBar(c)
					bar.Draw(bc)
				}
				plots[j][i].Draw(c)
			}
		}
	})
}

// panel is one overview tile, optionally with a color scale drawn at its right.
type panel struct {
	plot *plot.Plot
	bar  *plot.Plot
}

// splitColorBar carves a narrow strip off the right of c for a color bar.
func splitColorBar(c draw.Canvas) (area, bar draw.Canvas) {
	w := c.Max.X - c.Min.X
	x := c.Max.X - w*0.14
	area = draw.Canvas{Canvas: c.Canvas, Rectangle: vg.Rectangle{Min: c.Min, Max: vg.Point{X: x, Y: c.Max.Y}}}
	bar = draw.Canvas{Canvas: c.Canvas, Rectangle: vg.Rectangle{Min: vg.Point{X: x + w*0.02, Y: c.Min.Y}, Max: c.Max}}
	return area, bar
}

func (r *Renderer) amountPanel(t dataset.Transactions) (*plot.Plot, error) {
	if err := t.Require(dataset.FieldAmount); err != nil {
		return nil, err
	}
	vals := make([]float64, len(t.Rows))
	for i, tx := range t.Rows {
		vals[i] = tx.Amount
	}
	amounts := finite(vals)
	p := r.newPlot("Distribution of Transaction Amounts", "Transaction Amount ($)", "Frequency")
	if len(amounts) == 0 {
		p.Title.Text += " (no data)"
		return p, nil
	}
	h, err := plotter.NewHist(amounts, r.Params.HistBins)
	if err != nil {
		return nil, fmt.Errorf("amount histogram: %w", err)
	}
	h.FillColor = r.Style.AmountColor
	p.Add(h)

	top := maxWeight(h)
	mean, err := vline(stat.Mean(amounts, nil), top, r.Style.MeanColor)
	if err != nil {
		return nil, err
	}
	median, err := vline(analysis.Median(amounts), top, r.Style.MedianColor)
	if err != nil {
		return nil, err
	}
	p.Add(mean, median)
	p.Legend.Add("Mean", mean)
	p.Legend.Add("Median", median)
	return p, nil
}

func (r *Renderer) scorePanel(a dataset.Anomalies) (*plot.Plot, error) {
	vals := make([]float64, len(a.Rows))
	for i, an := range a.Rows {
		vals[i] = an.EnsembleScore
	}
	scores := finite(vals)
	p := r.newPlot("Distribution of Anomaly Scores", "Ensemble Anomaly Score", "Frequency")
	if len(scores) == 0 {
		p.Title.Text += " (no data)"
		return p, nil
	}
	h, err := plotter.NewHist(scores, r.Params.HistBins)
	if err != nil {
		return nil, fmt.Errorf("score histogram: %w", err)
	}
	h.FillColor = r.Style.ScoreColor
	p.Add(h)
	th, err := vline(r.Params.Threshold, maxWeight(h), r.Style.MeanColor)
	if err != nil {
		return nil, err
	}
	p.Add(th)
	p.Legend.Add(fmt.Sprintf("Threshold (%g)", r.Params.Threshold), th)
	return p, nil
}

// colorScatter plots xs against ys with each point colored by cs through cm,
// and returns a color bar for the value range it used. Points with a missing
// coordinate or color value are skipped; with none left the bar is nil.
func (r *Renderer) colorScatter(p *plot.Plot, xs, ys, cs []float64, cm palette.ColorMap, label string) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(xs))
	colors := make([]float64, 0, len(xs))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(cs[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
		colors = append(colors, cs[i])
		lo, hi = math.Min(lo, cs[i]), math.Max(hi, cs[i])
	}
	if len(pts) == 0 {
		p.Title.Text += " (no data)"
		return nil, nil
	}
	if lo == hi {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)
	cm.SetAlpha(r.Style.PointAlpha)

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := sc.GlyphStyle
		gs.Shape = draw.CircleGlyph{}
		if c, err := cm.At(colors[i]); err == nil {
			gs.Color = c
		}
		return gs
	}
	p.Add(sc)
	return r.colorBar(cm, label), nil
}

// colorBar draws the scale of cm as a vertical bar labelled with label.
func (r *Renderer) colorBar(cm palette.ColorMap, label string) *plot.Plot {
	s := r.Style
	p := plot.New()
	p.HideX()
	p.Y.Label.Text = label
	p.Y.Label.TextStyle.Font.Size = s.LabelSize
	p.Y.Tick.Label.Font.Size = s.TickSize
	p.BackgroundColor = s.PlotBackground
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: 128})
	return p
}

func (r *Renderer) methodsPanel(a dataset.Anomalies) (panel, error) {
	n := len(a.Rows)
	xs, ys, cs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, an := range a.Rows {
		xs[i], ys[i], cs[i] = an.KMeansScoreNorm, an.IsoScoreNorm, an.EnsembleScore
	}
	p := r.newPlot("Correlation: KMeans vs Isolation Forest Scores", "KMeans Score (normalized)", "Isolation Forest Score (normalized)")
	bar, err := r.colorScatter(p, xs, ys, cs, moreland.Kindlmann(), "Ensemble Score")
	return panel{plot: p, bar: bar}, err
}

func (r *Renderer) reconPanel(a dataset.Anomalies) (panel, error) {
	n := len(a.Rows)
	xs, ys, cs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, an := range a.Rows {
		xs[i], ys[i], cs[i] = an.ReconstructionError, an.EnsembleScore, float64(an.IsAnomaly)
	}
	p := r.newPlot("LSTM Reconstruction Error vs Ensemble Score", "Reconstruction Error", "Ensemble Score")
	bar, err := r.colorScatter(p, xs, ys, cs, moreland.SmoothBlueRed(), "Is Anomaly")
	return panel{plot: p, bar: bar}, err
}

func (r *Renderer) topPanel(anomalous analysis.Subset) (*plot.Plot, error) {
	top, err := analysis.TopK(anomalous, r.Params.TopK, dataset.FieldAmount)
	if err != nil {
		return nil, err
	}
	p := r.newPlot(fmt.Sprintf("Top %d Anomalies by Transaction Amount", r.Params.TopK), "Transaction Amount ($)", "Merchant Name")
	if top.Len() == 0 {
		p.Title.Text += " (no data)"
		return p, nil
	}
	// Largest amount on top.
	vals := make(plotter.Values, top.Len())
	names := make([]string, top.Len())
	for i, row := range top.Rows {
		j := top.Len() - 1 - i
		vals[j] = row.Amount
		names[j] = categoryLabel(row.MerchantName)
	}
	return p, r.hbars(p, vals, names, r.Style.TopColor)
}

func (r *Renderer) regionPanel(anomalous analysis.Subset) (*plot.Plot, error) {
	counts, err := analysis.Frequencies(anomalous, dataset.FieldRegion, 0)
	if err != nil {
		return nil, err
	}
	p := r.newPlot("Distribution of Anomalies by Region", "Region", "Number of Anomalies")
	if len(counts) == 0 {
		p.Title.Text += " (no data)"
		return p, nil
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.Count)
		names[i] = categoryLabel(c.Value)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("region bars: %w", err)
	}
	bars.Color = r.Style.RegionColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	r.rotateX(p)
	return p, nil
}

// hbars adds a horizontal bar chart with one nominal Y tick per bar.
func (r *Renderer) hbars(p *plot.Plot, vals plotter.Values, names []string, c color.Color) error {
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return fmt.Errorf("bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = c
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)
	return nil
}
