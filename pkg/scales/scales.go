// Package scales builds the four mappings the bubble chart is drawn with.
//
// A [Set] holds the x, y, radius and color scales. It is built once from a
// working set by [New] and never changes afterwards: every type here has
// unexported state and value-receiver methods only.
//
//	x      linear  [min(jx)-0.6, max(jx)+0.6] -> [0, plotWidth]
//	y      linear  [0, 100] (niced)           -> [plotHeight, 0]
//	radius sqrt    [min(dur), max(dur)]       -> [4, 25]
//	color  log10   [min(followers), max(...)] -> near-black .. brand green
//
// Linear and logarithmic normalization come from go-moremath/scale. Ticks
// treat the requested count as a hint and step by 1, 2 or 5 times a power
// of ten. Colors blend the sRGB components with go-colorful.
package scales

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
)

const (
	// XPadding widens the x domain on both sides, in years.
	XPadding = 0.6

	// MinRadius and MaxRadius bound the radius range in pixels.
	MinRadius = 4.0
	MaxRadius = 25.0

	// DefaultTicks is the tick count requested for both axes.
	DefaultTicks = 8
)

// Interval is a closed numeric interval. Lo may exceed Hi for inverted
// ranges.
type Interval struct {
	Lo, Hi float64
}

// lerp maps t in [0,1] onto the interval.
func (iv Interval) lerp(t float64) float64 {
	return iv.Lo + t*(iv.Hi-iv.Lo)
}

func (iv Interval) mid() float64 { return (iv.Lo + iv.Hi) / 2 }

// Linear maps a domain onto a range linearly.
type Linear struct {
	s    scale.Linear
	rng  Interval
	flat bool
}

// NewLinear returns a linear scale. A degenerate domain maps every value
// to the middle of the range.
func NewLinear(domain, rng Interval) Linear {
	return Linear{
		s:    scale.Linear{Min: domain.Lo, Max: domain.Hi},
		rng:  rng,
		flat: domain.Lo == domain.Hi,
	}
}

// Nice returns a copy of l whose domain is extended to multiples of the
// tick step for about n ticks.
func (l Linear) Nice(n int) Linear {
	if l.flat || n < 1 {
		return l
	}
	lo, hi := l.s.Min, l.s.Max
	prev := 0.0
	for range 10 {
		step := TickStep(lo, hi, n)
		if step == prev || step == 0 {
			break
		}
		lo = math.Floor(lo/step) * step
		hi = math.Ceil(hi/step) * step
		prev = step
	}
	l.s.Min, l.s.Max = lo, hi
	return l
}

// Map returns the range value for x.
func (l Linear) Map(x float64) float64 {
	if l.flat {
		return l.rng.mid()
	}
	return l.rng.lerp(l.s.Map(x))
}

// Domain returns the input interval.
func (l Linear) Domain() Interval { return Interval{l.s.Min, l.s.Max} }

// Range returns the output interval.
func (l Linear) Range() Interval { return l.rng }

// Ticks returns round tick values inside the domain. n is a hint: the
// result may hold somewhat more or fewer ticks.
func (l Linear) Ticks(n int) []float64 {
	if l.flat || n < 1 {
		return []float64{l.s.Min}
	}
	lo, hi := math.Min(l.s.Min, l.s.Max), math.Max(l.s.Min, l.s.Max)
	step := TickStep(lo, hi, n)
	if step == 0 {
		return []float64{lo}
	}

	// Below 1 the step is applied as a divisor so 0.1*3 stays 0.3.
	inv := 0.0
	if step < 1 {
		inv = math.Round(1 / step)
	}
	var ticks []float64
	for i := math.Ceil(lo / step); ; i++ {
		v := i * step
		if inv > 0 {
			v = i / inv
		}
		if v > hi+step*1e-9 {
			break
		}
		ticks = append(ticks, v)
	}
	return ticks
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// TickStep returns the spacing of about n ticks over [lo, hi]: 1, 2 or 5
// times a power of ten.
func TickStep(lo, hi float64, n int) float64 {
	span := math.Abs(hi - lo)
	if n < 1 || span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	raw := span / float64(n)
	step := math.Pow(10, math.Floor(math.Log10(raw)))
	switch ratio := raw / step; {
	case ratio >= e10:
		step *= 10
	case ratio >= e5:
		step *= 5
	case ratio >= e2:
		step *= 2
	}
	return step
}

// Sqrt maps a domain onto a range through the square root, so that area
// rather than radius grows linearly with the input.
type Sqrt struct {
	domain Interval
	lin    Linear
}

// NewSqrt returns a square-root scale. The domain must be non-negative.
func NewSqrt(domain, rng Interval) Sqrt {
	return Sqrt{
		domain: domain,
		lin:    NewLinear(Interval{math.Sqrt(domain.Lo), math.Sqrt(domain.Hi)}, rng),
	}
}

// Map returns the range value for x.
func (s Sqrt) Map(x float64) float64 { return s.lin.Map(math.Sqrt(x)) }

// Domain returns the input interval.
func (s Sqrt) Domain() Interval { return s.domain }

// Range returns the output interval.
func (s Sqrt) Range() Interval { return s.lin.rng }

// Log maps a strictly positive domain onto a range logarithmically.
type Log struct {
	s      scale.Log
	domain Interval
	rng    Interval
	flat   bool
}

// NewLog returns a base-10 logarithmic scale. The domain must be positive.
func NewLog(domain, rng Interval) (Log, error) {
	if domain.Lo <= 0 || domain.Hi <= 0 {
		return Log{}, errors.New(errors.ErrCodeInvalidInput, "log scale domain must be positive, got [%g, %g]", domain.Lo, domain.Hi)
	}
	l := Log{domain: domain, rng: rng, flat: domain.Lo == domain.Hi}
	if l.flat {
		return l, nil
	}
	s, err := scale.NewLog(domain.Lo, domain.Hi, 10)
	if err != nil {
		return Log{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "log scale")
	}
	l.s = s
	return l, nil
}

// Map returns the range value for x.
func (l Log) Map(x float64) float64 {
	if l.flat {
		return l.rng.mid()
	}
	return l.rng.lerp(l.s.Map(x))
}

// Domain returns the input interval.
func (l Log) Domain() Interval { return l.domain }

// Range returns the output interval.
func (l Log) Range() Interval { return l.rng }

// Dimensions describes the drawing surface.
type Dimensions struct {
	Width, Height int
	Margin        Margin
}

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultDimensions returns the standard 1100x650 surface with room for
// the axes on the left and bottom and the legend above the plot.
func DefaultDimensions() Dimensions {
	return Dimensions{
		Width:  1100,
		Height: 650,
		Margin: Margin{Top: 60, Right: 40, Bottom: 80, Left: 100},
	}
}

// PlotWidth is the width of the plot area inside the margins.
func (d Dimensions) PlotWidth() float64 {
	return math.Max(0, float64(d.Width)-d.Margin.Left-d.Margin.Right)
}

// PlotHeight is the height of the plot area inside the margins.
func (d Dimensions) PlotHeight() float64 {
	return math.Max(0, float64(d.Height)-d.Margin.Top-d.Margin.Bottom)
}

// Validate rejects surfaces without a drawable plot area.
func (d Dimensions) Validate() error {
	if d.PlotWidth() <= 0 || d.PlotHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "surface %dx%d leaves no plot area", d.Width, d.Height)
	}
	return nil
}

// Set is the immutable scale context shared by layout, join and
// interaction.
type Set struct {
	x, y   Linear
	radius Sqrt
	color  Color
	dims   Dimensions
}

// New builds the scale set for a non-empty working set.
func New(ws *catalog.WorkingSet, dims Dimensions, pal Palette) (*Set, error) {
	if ws == nil || ws.Len() == 0 {
		return nil, errors.DataLoad(nil, "working set is empty")
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}

	jx := ws.JitterExtent()
	x := NewLinear(
		Interval{jx.Min - XPadding, jx.Max + XPadding},
		Interval{0, dims.PlotWidth()},
	)
	y := NewLinear(
		Interval{0, 100},
		Interval{dims.PlotHeight(), 0},
	).Nice(DefaultTicks)

	dur := ws.DurationExtent()
	radius := NewSqrt(Interval{dur.Min, dur.Max}, Interval{MinRadius, MaxRadius})

	fol := ws.FollowerExtent()
	color, err := NewColor(Interval{fol.Min, fol.Max}, pal)
	if err != nil {
		return nil, fmt.Errorf("color scale: %w", err)
	}

	return &Set{x: x, y: y, radius: radius, color: color, dims: dims}, nil
}

// X maps jittered release position to horizontal pixels.
func (s *Set) X() Linear { return s.x }

// Y maps popularity to vertical pixels, 100 at the top.
func (s *Set) Y() Linear { return s.y }

// Radius maps duration in minutes to circle radius.
func (s *Set) Radius() Sqrt { return s.radius }

// Color maps follower count to fill color.
func (s *Set) Color() Color { return s.color }

// Dimensions returns the surface the set was built for.
func (s *Set) Dimensions() Dimensions { return s.dims }
