// Package layout derives the static chart furniture from a scale set: the
// background panel, both axes with their titles, and the follower legend.
//
// Every tick position and label is computed from the scales in
// [scales.Set], so the axes can never disagree with the marks drawn by
// pkg/join. A [Layout] is a plain value; renderers in pkg/sink only read it.
package layout

import (
	"fmt"
	"image/color"
	"math"

	"github.com/matzehuels/trackviz/pkg/scales"
)

// Legend geometry, in pixels relative to the plot origin.
const (
	LegendX      = 20
	LegendY      = -45
	LegendWidth  = 180
	LegendHeight = 12

	// LegendStops is the number of gradient stops sampled from the color
	// scale, including both endpoints.
	LegendStops = 11
)

// Text shown on the chart.
const (
	DefaultXTitle      = "Release Year"
	DefaultYTitle      = "Track Popularity"
	DefaultLegendTitle = "Artist Followers"
	MinLegendLabel     = "Few"
	MaxLegendLabel     = "Many"
)

// Orientation says which edge of the plot an axis is drawn on.
type Orientation int

const (
	Bottom Orientation = iota
	Left
)

// Tick is one labelled position on an axis.
type Tick struct {
	Value float64 // domain value
	Pos   float64 // pixel offset along the axis
	Label string
}

// Axis is a positioned, labelled axis.
type Axis struct {
	Orient Orientation
	Length float64
	Ticks  []Tick
	Title  string
}

// Panel is the rounded background rectangle behind the plot area.
type Panel struct {
	Width, Height float64
	CornerRadius  float64
	Fill          color.RGBA
	Opacity       float64
}

// LegendStop is one sample of the color scale.
type LegendStop struct {
	Offset float64 // 0..1 along the bar
	Value  float64 // follower count sampled
	Color  color.RGBA
}

// Legend is the follower color bar.
type Legend struct {
	X, Y          float64
	Width, Height float64
	Title         string
	MinLabel      string
	MaxLabel      string
	Stops         []LegendStop
}

// Layout is everything drawn around the marks.
type Layout struct {
	Dims   scales.Dimensions
	Panel  Panel
	XAxis  Axis
	YAxis  Axis
	Legend Legend
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	xTitle, yTitle, legendTitle string
	ticks                       int
}

// WithTitles overrides the axis titles. Empty strings keep the default.
func WithTitles(x, y string) Option {
	return func(b *builder) {
		if x != "" {
			b.xTitle = x
		}
		if y != "" {
			b.yTitle = y
		}
	}
}

// WithLegendTitle overrides the legend title.
func WithLegendTitle(t string) Option {
	return func(b *builder) {
		if t != "" {
			b.legendTitle = t
		}
	}
}

// WithTicks sets the requested tick count for both axes.
func WithTicks(n int) Option {
	return func(b *builder) {
		if n > 0 {
			b.ticks = n
		}
	}
}

// Build lays out the panel, axes and legend for s.
func Build(s *scales.Set, opts ...Option) Layout {
	b := builder{
		xTitle:      DefaultXTitle,
		yTitle:      DefaultYTitle,
		legendTitle: DefaultLegendTitle,
		ticks:       scales.DefaultTicks,
	}
	for _, opt := range opts {
		opt(&b)
	}

	dims := s.Dimensions()
	return Layout{
		Dims: dims,
		Panel: Panel{
			Width:        dims.PlotWidth(),
			Height:       dims.PlotHeight(),
			CornerRadius: 8,
			Fill:         scales.NearBlack,
			Opacity:      0.3,
		},
		XAxis: Axis{
			Orient: Bottom,
			Length: dims.PlotWidth(),
			Ticks:  YearTicks(s.X(), b.ticks),
			Title:  b.xTitle,
		},
		YAxis: Axis{
			Orient: Left,
			Length: dims.PlotHeight(),
			Ticks:  PercentTicks(s.Y(), b.ticks),
			Title:  b.yTitle,
		},
		Legend: BuildLegend(s.Color(), b.legendTitle),
	}
}

// YearTicks labels the x scale's ticks as whole years. Fractional ticks are
// dropped whenever at least two whole years fall inside the domain.
func YearTicks(x scales.Linear, n int) []Tick {
	values := x.Ticks(n)

	whole := make([]float64, 0, len(values))
	for _, v := range values {
		if v == math.Trunc(v) {
			whole = append(whole, v)
		}
	}
	if len(whole) >= 2 {
		values = whole
	}

	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{Value: v, Pos: x.Map(v), Label: fmt.Sprintf("%d", int(math.Round(v)))})
	}
	return ticks
}

// PercentTicks labels the y scale's ticks with a "%" suffix.
func PercentTicks(y scales.Linear, n int) []Tick {
	values := y.Ticks(n)
	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{Value: v, Pos: y.Map(v), Label: fmt.Sprintf("%g%%", v)})
	}
	return ticks
}

// BuildLegend samples the color scale at LegendStops points evenly spaced
// in log space, so the bar shows the same interpolation as the marks.
func BuildLegend(c scales.Color, title string) Legend {
	d := c.Domain()
	stops := make([]LegendStop, LegendStops)
	last := float64(LegendStops - 1)
	for i := range stops {
		t := float64(i) / last
		v := d.Lo * math.Pow(d.Hi/d.Lo, t)
		stops[i] = LegendStop{Offset: t, Value: v, Color: c.Map(v)}
	}
	return Legend{
		X:        LegendX,
		Y:        LegendY,
		Width:    LegendWidth,
		Height:   LegendHeight,
		Title:    title,
		MinLabel: MinLegendLabel,
		MaxLabel: MaxLegendLabel,
		Stops:    stops,
	}
}
