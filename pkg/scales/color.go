package scales

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/trackviz/pkg/errors"
)

var (
	// NearBlack is the color of the least-followed creator.
	NearBlack = color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}

	// BrandGreen is the color of the most-followed creator and of the
	// hover highlight stroke.
	BrandGreen = color.RGBA{R: 0x1d, G: 0xb9, B: 0x54, A: 0xff}
)

// Palette is the pair of colors the follower scale interpolates between.
type Palette struct {
	Low, High color.RGBA
}

// DefaultPalette runs from near-black to brand green.
func DefaultPalette() Palette {
	return Palette{Low: NearBlack, High: BrandGreen}
}

// Color maps follower counts to colors: a log10 scale onto [0,1] followed
// by a straight blend of the sRGB components.
type Color struct {
	log       Log
	low, high colorful.Color
}

// NewColor returns a color scale over a positive follower domain.
func NewColor(domain Interval, pal Palette) (Color, error) {
	l, err := NewLog(domain, Interval{0, 1})
	if err != nil {
		return Color{}, err
	}
	low, _ := colorful.MakeColor(pal.Low)
	high, _ := colorful.MakeColor(pal.High)
	return Color{log: l, low: low, high: high}, nil
}

// Map returns the color for a follower count.
func (c Color) Map(v float64) color.RGBA {
	return c.At(c.log.Map(v))
}

// At returns the gradient color at t in [0,1].
func (c Color) At(t float64) color.RGBA {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	return toRGBA(c.low.BlendRgb(c.high, t))
}

// Domain returns the follower interval.
func (c Color) Domain() Interval { return c.log.Domain() }

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidFormat, "invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Blend interpolates each sRGB component of a and b independently.
func Blend(a, b color.RGBA, t float64) color.RGBA {
	if a == b {
		return a
	}
	t = math.Max(0, math.Min(1, t))
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	return toRGBA(ca.BlendRgb(cb, t))
}

// toRGBA rounds each component to the nearest byte.
func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
