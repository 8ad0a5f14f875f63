package join

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// Baseline styling shared by every mark at rest.
const (
	BaselineStrokeWidth = 1.5
	BaselineOpacity     = 0.6
)

// NeutralGray is the resting stroke color.
var NeutralGray = color.RGBA{R: 0xb3, G: 0xb3, B: 0xb3, A: 0xff}

// Attrs are the visual attributes of a mark.
type Attrs struct {
	X, Y        float64
	Radius      float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	Opacity     float64
}

// Field selects animatable attributes. Position and fill are fixed by the
// scales and never animate.
type Field uint8

const (
	FieldRadius Field = 1 << iota
	FieldStroke
	FieldStrokeWidth
	FieldOpacity

	AllFields = FieldRadius | FieldStroke | FieldStrokeWidth | FieldOpacity
)

var fieldNames = map[Field]string{
	FieldRadius:      "r",
	FieldStroke:      "stroke",
	FieldStrokeWidth: "stroke-width",
	FieldOpacity:     "opacity",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// fields expands a mask into single fields in a fixed order.
func (f Field) fields() []Field {
	out := make([]Field, 0, 4)
	for _, one := range []Field{FieldRadius, FieldStroke, FieldStrokeWidth, FieldOpacity} {
		if f&one != 0 {
			out = append(out, one)
		}
	}
	return out
}

// Mark is the visual counterpart of exactly one record.
type Mark struct {
	// ID is stable for the life of the chart and doubles as the DOM id.
	ID     string
	Record catalog.Record
	Attrs  Attrs

	// Highlighted is set while the pointer is over the mark.
	Highlighted bool
}

// MarkID returns the DOM id for the record at working-set position i.
func MarkID(i int) string { return fmt.Sprintf("mark-%d", i) }

// Baseline returns the resting attributes of r under s. It is a pure
// function: calling it twice yields identical results.
func Baseline(r catalog.Record, s *scales.Set) Attrs {
	return Attrs{
		X:           s.X().Map(r.JitteredX),
		Y:           s.Y().Map(float64(r.Popularity)),
		Radius:      s.Radius().Map(r.DurationMinutes),
		Fill:        s.Color().Map(float64(r.Followers)),
		Stroke:      NeutralGray,
		StrokeWidth: BaselineStrokeWidth,
		Opacity:     BaselineOpacity,
	}
}

// Initial returns the attributes a mark is created with: its baseline,
// collapsed to zero radius.
func Initial(r catalog.Record, s *scales.Set) Attrs {
	a := Baseline(r, s)
	a.Radius = 0
	return a
}
