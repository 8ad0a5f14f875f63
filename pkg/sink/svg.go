package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"
	svgf "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
)

const (
	axisColor   = "#b3b3b3"
	mutedColor  = "#535353"
	legendID    = "legend-gradient"
	fontFamily  = `font-family="Helvetica Neue,Helvetica,Arial,sans-serif"`
	tickLength  = 6
	titleOffset = 70
)

// Chart is what the renderers draw: the joined scene plus its layout.
type Chart struct {
	Scene  *join.Scene
	Layout layout.Layout
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	animated bool
}

// WithEntrance draws every mark collapsed to radius 0 with its resting
// radius in data-r, for a page script to animate. Without it marks are
// drawn at rest.
func WithEntrance() SVGOption { return func(r *svgRenderer) { r.animated = true } }

// RenderSVG draws the chart as a standalone SVG document.
func RenderSVG(c Chart, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	l := c.Layout
	m := l.Dims.Margin
	canvas := svg.New(&buf)
	canvas.Start(l.Dims.Width, l.Dims.Height, fontFamily, `class="trackviz"`)

	renderDefs(canvas, l.Legend)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", px(m.Left), px(m.Top)))

	renderPanel(canvas, l.Panel)
	renderXAxis(canvas, l.XAxis, l.Panel.Height)
	renderYAxis(canvas, l.YAxis)
	renderLegend(canvas, l.Legend)
	renderMarks(canvas, c.Scene, r.animated)

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func px(v float64) int { return int(math.Round(v)) }

func renderDefs(canvas *svg.SVG, lg layout.Legend) {
	stops := make([]svg.Offcolor, 0, len(lg.Stops))
	for _, s := range lg.Stops {
		stops = append(stops, svg.Offcolor{
			Offset:  uint8(math.Round(s.Offset * 100)),
			Color:   scales.Hex(s.Color),
			Opacity: 1,
		})
	}
	canvas.Def()
	canvas.LinearGradient(legendID, 0, 0, 100, 0, stops)
	canvas.DefEnd()
}

func renderPanel(canvas *svg.SVG, p layout.Panel) {
	r := px(p.CornerRadius)
	canvas.Roundrect(0, 0, px(p.Width), px(p.Height), r, r,
		`class="panel"`,
		fmt.Sprintf(`fill="%s"`, scales.Hex(p.Fill)),
		fmt.Sprintf(`opacity="%g"`, p.Opacity))
}

func renderXAxis(canvas *svg.SVG, a layout.Axis, height float64) {
	y := px(height)
	canvas.Group(`class="axis x-axis"`, fmt.Sprintf(`transform="translate(0,%d)"`, y))
	canvas.Line(0, 0, px(a.Length), 0, "stroke:"+axisColor)
	for _, t := range a.Ticks {
		x := px(t.Pos)
		canvas.Line(x, 0, x, tickLength, "stroke:"+axisColor)
		canvas.Text(x, tickLength+12, t.Label, `text-anchor="middle"`, `font-size="11"`, `fill="`+axisColor+`"`)
	}
	canvas.Gend()
	canvas.Text(px(a.Length/2), y+titleOffset, a.Title,
		`class="axis-title"`, `text-anchor="middle"`, `font-size="14"`, `font-weight="bold"`,
		`fill="`+scales.Hex(scales.BrandGreen)+`"`)
}

func renderYAxis(canvas *svg.SVG, a layout.Axis) {
	canvas.Group(`class="axis y-axis"`)
	canvas.Line(0, 0, 0, px(a.Length), "stroke:"+axisColor)
	for _, t := range a.Ticks {
		y := px(t.Pos)
		canvas.Line(-tickLength, y, 0, y, "stroke:"+axisColor)
		canvas.Text(-tickLength-3, y, t.Label, `text-anchor="end"`, `dy=".32em"`, `font-size="11"`, `fill="`+axisColor+`"`)
	}
	canvas.Gend()
	canvas.Text(px(-a.Length/2), -85, a.Title,
		`class="axis-title"`, `transform="rotate(-90)"`, `text-anchor="middle"`, `font-size="14"`, `font-weight="bold"`,
		`fill="`+scales.Hex(scales.BrandGreen)+`"`)
}

func renderLegend(canvas *svg.SVG, lg layout.Legend) {
	w, h := px(lg.Width), px(lg.Height)
	canvas.Group(`class="legend"`, fmt.Sprintf(`transform="translate(%d,%d)"`, px(lg.X), px(lg.Y)))
	canvas.Rect(0, 0, w, h, fmt.Sprintf("fill:url(#%s);stroke:%s;stroke-width:1", legendID, mutedColor))
	canvas.Text(0, -8, lg.Title, `font-size="10"`, `font-weight="bold"`, `fill="`+axisColor+`"`)
	canvas.Text(0, h+12, lg.MinLabel, `font-size="8"`, `fill="`+mutedColor+`"`)
	canvas.Text(w, h+12, lg.MaxLabel, `text-anchor="end"`, `font-size="8"`, `fill="`+mutedColor+`"`)
	canvas.Gend()
}

// renderMarks draws circles through svgo's float API on the same writer, so
// positions and radii keep sub-pixel precision.
func renderMarks(canvas *svg.SVG, sc *join.Scene, animated bool) {
	canvas.Group(`class="marks"`)
	fc := &svgf.SVG{Writer: canvas.Writer, Decimals: 2}
	for i, m := range sc.Marks() {
		base := sc.Baseline(i)
		a := base
		if animated {
			a = m.Attrs
		}
		fc.Circle(a.X, a.Y, a.Radius,
			fmt.Sprintf(`id="%s"`, m.ID),
			`class="mark"`,
			fmt.Sprintf(`data-index="%d"`, i),
			fmt.Sprintf(`data-r="%.3f"`, base.Radius),
			fmt.Sprintf(`fill="%s"`, scales.Hex(a.Fill)),
			fmt.Sprintf(`stroke="%s"`, scales.Hex(a.Stroke)),
			fmt.Sprintf(`stroke-width="%g"`, a.StrokeWidth),
			fmt.Sprintf(`opacity="%g"`, a.Opacity))
	}
	canvas.Gend()
}
