package interact

import (
	"slices"
	"testing"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/scales"
)

func testController(t *testing.T) *Controller {
	t.Helper()
	recs := []catalog.Record{
		{Index: 0, Title: "Alpha", Creator: "One", Popularity: 90, Followers: 40_000, DurationMinutes: 3.0, ReleaseYear: 2022, ReleaseMonth: 1, JitteredX: catalog.JitterX(2022, 1)},
		{Index: 1, Title: "Bravo", Creator: "Two", Popularity: 85, Followers: 1_200_000, DurationMinutes: 3.5, ReleaseYear: 2022, ReleaseMonth: 6, JitteredX: catalog.JitterX(2022, 6)},
		{Index: 2, Title: "Charlie", Creator: "Three", Popularity: 60, Followers: 700, DurationMinutes: 5.25, ReleaseYear: 2023, ReleaseMonth: 9, JitteredX: catalog.JitterX(2023, 9)},
	}
	ws := catalog.FromRecords(recs, 0)
	s, err := scales.New(ws, scales.DefaultDimensions(), scales.DefaultPalette())
	if err != nil {
		t.Fatalf("scales.New() error = %v", err)
	}
	sc := join.Join(ws, s, join.DefaultTiming())
	sc.Timeline.Settle()
	return NewController(sc)
}

func opacities(c *Controller) []float64 {
	out := make([]float64, 0, c.Scene().Len())
	for _, m := range c.Scene().Marks() {
		out = append(out, m.Attrs.Opacity)
	}
	return out
}

func TestHoverHighlightsAndDims(t *testing.T) {
	c := testController(t)
	c.Handle(Enter(0))
	c.Scene().Timeline.Settle()

	if got := opacities(c); !slices.Equal(got, []float64{1, 0.15, 0.15}) {
		t.Errorf("opacities = %v, want [1 0.15 0.15]", got)
	}
	a := c.Scene().Mark(0).Attrs
	base := c.Scene().Baseline(0)
	if a.Radius != base.Radius*1.5 {
		t.Errorf("hovered radius = %v, want %v", a.Radius, base.Radius*1.5)
	}
	if a.Stroke != scales.BrandGreen || a.StrokeWidth != 3 {
		t.Errorf("hovered stroke = %v/%v", a.Stroke, a.StrokeWidth)
	}
	if c.State(0) != Hovered || c.State(1) != Dimmed || c.State(2) != Dimmed {
		t.Errorf("states = %v %v %v", c.State(0), c.State(1), c.State(2))
	}
	if !c.Scene().Mark(0).Highlighted || c.Scene().Mark(1).Highlighted {
		t.Error("highlight flags not set correctly")
	}
}

func TestLeaveResetsEveryMark(t *testing.T) {
	c := testController(t)
	c.Handle(Enter(0))
	c.Scene().Timeline.Settle()
	c.Handle(Leave(0))
	c.Scene().Timeline.Settle()

	if got := opacities(c); !slices.Equal(got, []float64{0.6, 0.6, 0.6}) {
		t.Errorf("opacities = %v, want all 0.6", got)
	}
	for i, m := range c.Scene().Marks() {
		if m.Attrs != c.Scene().Baseline(i) {
			t.Errorf("mark %d = %+v, want baseline %+v", i, m.Attrs, c.Scene().Baseline(i))
		}
		if c.State(i) != Idle {
			t.Errorf("mark %d state = %v, want idle", i, c.State(i))
		}
	}
}

func TestLeaveMidTransitionWins(t *testing.T) {
	c := testController(t)
	c.Handle(Enter(1))
	c.Advance(c.Scene().Timing.Hover / 2)
	c.Handle(Leave(1))
	c.Scene().Timeline.Settle()

	for i, m := range c.Scene().Marks() {
		if m.Attrs != c.Scene().Baseline(i) {
			t.Errorf("mark %d did not settle at baseline: %+v", i, m.Attrs)
		}
	}
}

func TestClickShowsTooltipAndBackgroundHides(t *testing.T) {
	c := testController(t)
	c.Handle(ClickMark(1, 200, 300))

	tip := c.Tooltip()
	if !tip.Visible {
		t.Fatal("tooltip hidden after click")
	}
	if tip.Title != "Bravo" || tip.Followers != "1.2M" {
		t.Errorf("tooltip = %+v", tip)
	}
	if tip.Left != 215 || tip.Top != 272 {
		t.Errorf("tooltip at (%v, %v), want (215, 272)", tip.Left, tip.Top)
	}
	if sel, ok := c.Selected(); !ok || sel != 1 {
		t.Errorf("Selected() = %d, %v", sel, ok)
	}

	c.Handle(ClickBackground())
	if c.Tooltip().Visible {
		t.Error("tooltip still visible after background click")
	}
	if _, ok := c.Selected(); ok {
		t.Error("selection survived background click")
	}
}

func TestClickDoesNotChangeAttributes(t *testing.T) {
	c := testController(t)
	before := slices.Clone(c.Scene().Marks())
	c.Handle(ClickMark(2, 0, 0))
	c.Scene().Timeline.Settle()
	if !slices.Equal(before, c.Scene().Marks()) {
		t.Error("click changed mark attributes")
	}
}

func TestRespondIsPure(t *testing.T) {
	base := join.Attrs{Radius: 10, Stroke: join.NeutralGray, StrokeWidth: 1.5, Opacity: 0.6}

	to, fields, ok := Respond(3, base, Enter(3))
	if !ok || fields != join.AllFields || to.Radius != 15 || to.Opacity != 1 {
		t.Errorf("Respond(target) = %+v, %v, %v", to, fields, ok)
	}
	to2, _, _ := Respond(3, base, Enter(3))
	if to != to2 {
		t.Error("Respond is not deterministic")
	}

	to, fields, ok = Respond(4, base, Enter(3))
	if !ok || fields != join.FieldOpacity || to.Opacity != 0.15 || to.Radius != 10 {
		t.Errorf("Respond(other) = %+v, %v, %v", to, fields, ok)
	}

	if _, _, ok := Respond(3, base, ClickMark(3, 0, 0)); ok {
		t.Error("click should not change attributes")
	}
	if to, _, _ := Respond(4, base, Leave(3)); to != base {
		t.Errorf("leave = %+v, want baseline", to)
	}
}

func TestFormatFollowers(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1K"},
		{45_300, "45K"},
		{999_499, "999K"},
		{1_000_000, "1.0M"},
		{1_200_000, "1.2M"},
		{12_345_678, "12.3M"},
	}
	for _, tt := range tests {
		if got := FormatFollowers(tt.in); got != tt.want {
			t.Errorf("FormatFollowers(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTooltipLines(t *testing.T) {
	tip := TooltipFor(catalog.Record{Title: "T", Creator: "C", ReleaseYear: 2022, Popularity: 85, Followers: 1_200_000, DurationMinutes: 3.54}, 0, 0)
	want := []string{"T", "by C", "2022 • 85%", "1.2M followers • 3.5min"}
	if got := tip.Lines(); !slices.Equal(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
	if (Tooltip{}).Lines() != nil {
		t.Error("hidden tooltip has lines")
	}
}

func TestOutOfRangeEventIgnored(t *testing.T) {
	c := testController(t)
	c.Handle(Enter(99))
	if c.Scene().Timeline.Pending() != 0 {
		t.Error("event on a missing mark scheduled transitions")
	}
}
