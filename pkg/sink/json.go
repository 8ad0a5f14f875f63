package sink

import (
	"encoding/json"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
)

type jsonOutput struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Margin jsonMargin     `json:"margin"`
	Scales jsonScales     `json:"scales"`
	XTicks []jsonTick     `json:"x_ticks"`
	YTicks []jsonTick     `json:"y_ticks"`
	Legend jsonLegend     `json:"legend"`
	Stats  *catalog.Stats `json:"stats,omitempty"`
	Marks  []jsonMark     `json:"marks"`
}

type jsonMargin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

type jsonScales struct {
	X      [2]float64 `json:"x"`
	Y      [2]float64 `json:"y"`
	Radius [2]float64 `json:"radius"`
	Color  [2]float64 `json:"color"`
}

type jsonLegend struct {
	Title string     `json:"title"`
	Stops []jsonStop `json:"stops"`
}

type jsonTick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type jsonStop struct {
	Offset float64 `json:"offset"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

type jsonMark struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Creator    string  `json:"creator"`
	Popularity int     `json:"popularity"`
	Followers  int64   `json:"followers"`
	Duration   float64 `json:"duration_min"`
	Explicit   bool    `json:"explicit,omitempty"`
	Year       int     `json:"year"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"r"`
	Fill       string  `json:"fill"`
}

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	stats *catalog.Stats
}

// WithJSONStats records the normalization counters in the output.
func WithJSONStats(s catalog.Stats) JSONOption { return func(r *jsonRenderer) { r.stats = &s } }

// RenderJSON exports the chart at rest as a pretty-printed JSON document:
// scale domains, ticks, legend stops and one entry per mark.
func RenderJSON(c Chart, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	l, sc := c.Layout, c.Scene
	s := sc.Scales
	out := jsonOutput{
		Width:  l.Dims.Width,
		Height: l.Dims.Height,
		Margin: jsonMargin(l.Dims.Margin),
		Scales: jsonScales{
			X:      pair(s.X().Domain()),
			Y:      pair(s.Y().Domain()),
			Radius: pair(s.Radius().Domain()),
			Color:  pair(s.Color().Domain()),
		},
		XTicks: jsonTicks(l.XAxis.Ticks),
		YTicks: jsonTicks(l.YAxis.Ticks),
		Legend: jsonLegend{Title: l.Legend.Title},
		Marks:  make([]jsonMark, 0, sc.Len()),
	}
	for _, st := range l.Legend.Stops {
		out.Legend.Stops = append(out.Legend.Stops, jsonStop{Offset: st.Offset, Value: st.Value, Color: scales.Hex(st.Color)})
	}
	out.Stats = r.stats
	for i, m := range sc.Marks() {
		a := sc.Baseline(i)
		rec := m.Record
		out.Marks = append(out.Marks, jsonMark{
			ID:         m.ID,
			Title:      rec.Title,
			Creator:    rec.Creator,
			Popularity: rec.Popularity,
			Followers:  rec.Followers,
			Duration:   rec.DurationMinutes,
			Explicit:   rec.Explicit,
			Year:       rec.ReleaseYear,
			X:          a.X,
			Y:          a.Y,
			Radius:     a.Radius,
			Fill:       scales.Hex(a.Fill),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

func pair(iv scales.Interval) [2]float64 { return [2]float64{iv.Lo, iv.Hi} }

func jsonTicks(ts []layout.Tick) []jsonTick {
	out := make([]jsonTick, 0, len(ts))
	for _, t := range ts {
		out = append(out, jsonTick{Value: t.Value, Label: t.Label})
	}
	return out
}
