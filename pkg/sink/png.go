package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG draws a static raster of the chart at rest: every mark at its
// baseline, axes ticked the same way as the SVG.
func RenderPNG(c Chart, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}

	l := c.Layout
	m := l.Dims.Margin
	sc := c.Scene
	x, y := sc.Scales.X().Domain(), sc.Scales.Y().Domain()

	series := make([]chart.Series, 0, sc.Len())
	for i, mk := range sc.Marks() {
		base := sc.Baseline(i)
		series = append(series, chart.ContinuousSeries{
			Name: mk.ID,
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotColor:    toDrawing(base.Fill, base.Opacity),
				DotWidth:    base.Radius * r.scale,
			},
			XValues: []float64{mk.Record.JitteredX},
			YValues: []float64{float64(mk.Record.Popularity)},
		})
	}

	axis := chart.Style{
		FontSize:    10 * r.scale,
		FontColor:   toDrawing(axisRGBA, 1),
		StrokeColor: toDrawing(axisRGBA, 1),
	}
	name := chart.Style{FontSize: 12 * r.scale, FontColor: toDrawing(scales.BrandGreen, 1)}

	graph := chart.Chart{
		Width:  int(math.Round(float64(l.Dims.Width) * r.scale)),
		Height: int(math.Round(float64(l.Dims.Height) * r.scale)),
		Background: chart.Style{
			FillColor: toDrawing(pageRGBA, 1),
			Padding: chart.Box{
				Top:    int(m.Top * r.scale),
				Left:   int(m.Left * r.scale),
				Right:  int(m.Right * r.scale),
				Bottom: int(m.Bottom * r.scale),
			},
		},
		Canvas: chart.Style{FillColor: toDrawing(l.Panel.Fill, l.Panel.Opacity)},
		XAxis: chart.XAxis{
			Name:      l.XAxis.Title,
			NameStyle: name,
			Style:     axis,
			Range:     &chart.ContinuousRange{Min: x.Lo, Max: x.Hi},
			Ticks:     chartTicks(l.XAxis.Ticks),
		},
		YAxis: chart.YAxis{
			Name:      l.YAxis.Title,
			NameStyle: name,
			Style:     axis,
			Range:     &chart.ContinuousRange{Min: y.Lo, Max: y.Hi},
			Ticks:     chartTicks(l.YAxis.Ticks),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render png")
	}
	return buf.Bytes(), nil
}

func chartTicks(ts []layout.Tick) []chart.Tick {
	out := make([]chart.Tick, 0, len(ts))
	for _, t := range ts {
		out = append(out, chart.Tick{Value: t.Value, Label: t.Label})
	}
	return out
}

var (
	axisRGBA = color.RGBA{R: 0xb3, G: 0xb3, B: 0xb3, A: 0xff}
	pageRGBA = color.RGBA{R: 0x19, G: 0x14, B: 0x14, A: 0xff}
)

func toDrawing(c color.RGBA, opacity float64) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(255 * math.Max(0, math.Min(1, opacity))))}
}
