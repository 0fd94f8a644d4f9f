package render

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Style holds every presentation setting used by a Renderer. It is passed
// explicitly; nothing in this package keeps process-wide style state.
type Style struct {
	DPI int

	TitleSize vg.Length
	LabelSize vg.Length
	TickSize  vg.Length
	TextSize  vg.Length

	Background     color.Color
	PlotBackground color.Color
	Grid           bool
	GridColor      color.Color

	AmountColor   color.Color
	ScoreColor    color.Color
	TopColor      color.Color
	RegionColor   color.Color
	TemporalColor color.Color
	CategoryColor color.Color
	BoxColor      color.Color
	MeanColor     color.Color
	MedianColor   color.Color
	NaNColor      color.Color

	// PointAlpha is applied to scatter colormaps.
	PointAlpha float64

	Overview Size
	Temporal Size
	Category Size
	Heatmap  Size
	Boxplot  Size
}

// Size is a figure size.
type Size struct {
	W, H vg.Length
}

// DefaultStyle returns the publication style used for the standard charts.
func DefaultStyle() Style {
	return Style{
		DPI:       300,
		TitleSize: vg.Points(16),
		LabelSize: vg.Points(14),
		TickSize:  vg.Points(12),
		TextSize:  vg.Points(12),

		Background:     color.White,
		PlotBackground: hex(0xf8f8f8),
		Grid:           true,
		GridColor:      color.RGBA{R: 0, G: 0, B: 0, A: 77},

		AmountColor:   hex(0x2ecc71),
		ScoreColor:    hex(0x3498db),
		TopColor:      hex(0xe74c3c),
		RegionColor:   hex(0x9b59b6),
		TemporalColor: hex(0x2ecc71),
		CategoryColor: hex(0x3498db),
		BoxColor:      hex(0x2ecc71),
		MeanColor:     color.RGBA{R: 255, A: 255},
		MedianColor:   color.RGBA{G: 128, A: 255},
		NaNColor:      color.Gray{Y: 200},

		PointAlpha: 0.6,

		Overview: Size{20 * vg.Inch, 15 * vg.Inch},
		Temporal: Size{15 * vg.Inch, 6 * vg.Inch},
		Category: Size{12 * vg.Inch, 6 * vg.Inch},
		Heatmap:  Size{10 * vg.Inch, 8 * vg.Inch},
		Boxplot:  Size{10 * vg.Inch, 6 * vg.Inch},
	}
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
