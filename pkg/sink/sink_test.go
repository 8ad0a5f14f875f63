package sink

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
)

func testChart(t *testing.T) Chart {
	t.Helper()
	recs := []catalog.Record{
		{Index: 0, Title: "Alpha", Creator: "Ann", Popularity: 90, Followers: 1_200_000, DurationMinutes: 3.5, ReleaseYear: 2022, ReleaseMonth: 6, JitteredX: catalog.JitterX(2022, 6)},
		{Index: 1, Title: "Bravo <live>", Creator: "Ben", Popularity: 70, Followers: 5_000, DurationMinutes: 2.0, ReleaseYear: 2021, ReleaseMonth: 2, JitteredX: catalog.JitterX(2021, 2)},
		{Index: 2, Title: "Charlie", Creator: "Cat", Popularity: 50, Followers: 800, DurationMinutes: 6.0, ReleaseYear: 2024, ReleaseMonth: 11, JitteredX: catalog.JitterX(2024, 11)},
	}
	ws := catalog.FromRecords(recs, 0)
	s, err := scales.New(ws, scales.DefaultDimensions(), scales.DefaultPalette())
	if err != nil {
		t.Fatalf("scales.New() error = %v", err)
	}
	return Chart{Scene: join.Join(ws, s, join.DefaultTiming()), Layout: layout.Build(s)}
}

func parse(t *testing.T, data []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	return doc
}

func attrFloat(t *testing.T, s *goquery.Selection, name string) float64 {
	t.Helper()
	raw, _ := s.Attr(name)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		t.Fatalf("%s = %q: %v", name, raw, err)
	}
	return v
}

func TestRenderHTML(t *testing.T) {
	data, err := RenderHTML(testChart(t))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parse(t, data)

	if doc.Find("#chart").Length() != 1 {
		t.Fatal("missing #chart")
	}
	if doc.Find("#tooltip").Length() != 1 {
		t.Fatal("missing #tooltip")
	}
	circles := doc.Find("#chart svg circle.mark")
	if circles.Length() != 3 {
		t.Fatalf("circles = %d, want 3", circles.Length())
	}
	circles.Each(func(i int, s *goquery.Selection) {
		if r := attrFloat(t, s, "r"); r != 0 {
			t.Errorf("circle %d r = %v, want 0 before the entrance", i, r)
		}
		if id, _ := s.Attr("id"); id != join.MarkID(i) {
			t.Errorf("circle %d id = %q", i, id)
		}
	})
	if doc.Find(".error-panel").Length() != 0 {
		t.Error("chart page has an error panel")
	}

	var cfg pageConfig
	if err := json.Unmarshal([]byte(doc.Find("#trackviz-data").Text()), &cfg); err != nil {
		t.Fatalf("page config: %v", err)
	}
	if cfg.Container != "chart" || cfg.Tooltip != "tooltip" {
		t.Errorf("config ids = %q, %q", cfg.Container, cfg.Tooltip)
	}
	if cfg.Timing.Stagger != 15 || cfg.Timing.Entrance != 2000 || cfg.Timing.Hover != 200 || cfg.Timing.Ease != "elastic" {
		t.Errorf("config timing = %+v", cfg.Timing)
	}
	if len(cfg.Tooltips) != 3 || cfg.Tooltips[1].Lines[0] != "Bravo <live>" {
		t.Errorf("config tooltips = %+v", cfg.Tooltips)
	}
	if cfg.Tooltips[0].Lines[3] != "1.2M followers • 3.5min" {
		t.Errorf("tooltip line = %q", cfg.Tooltips[0].Lines[3])
	}
}

func TestRenderHTMLCustomIDs(t *testing.T) {
	data, err := RenderHTML(testChart(t), WithContainerID("viz"), WithTooltipID("tip"), WithTitle("Top Tracks"))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parse(t, data)
	if doc.Find("#viz svg").Length() != 1 || doc.Find("#tip").Length() != 1 {
		t.Error("custom ids not applied")
	}
	if got := doc.Find("title").Text(); got != "Top Tracks" {
		t.Errorf("title = %q", got)
	}
	if !strings.Contains(doc.Find("style").Text(), "#tip") {
		t.Error("tooltip style not bound to custom id")
	}
}

func TestRenderErrorHTML(t *testing.T) {
	cause := errors.DataLoad(nil, "open missing.csv")
	data, err := RenderErrorHTML("missing.csv", cause)
	if err != nil {
		t.Fatalf("RenderErrorHTML() error: %v", err)
	}
	doc := parse(t, data)

	panel := doc.Find("#chart .error-panel")
	if panel.Length() != 1 {
		t.Fatal("missing error panel")
	}
	if got := panel.Find("h2").Text(); got != "File not found" {
		t.Errorf("heading = %q", got)
	}
	if got := panel.Find(".hint").Text(); got != "Looking for: missing.csv" {
		t.Errorf("hint = %q", got)
	}
	if doc.Find("svg").Length() != 0 {
		t.Error("error document contains an svg")
	}
	if doc.Find("#tooltip").Length() != 1 {
		t.Error("error document lacks the tooltip element")
	}
	if doc.Find("script").Length() != 0 {
		t.Error("error document carries the page script")
	}
}

func TestRenderSVG(t *testing.T) {
	c := testChart(t)
	doc := parse(t, RenderSVG(c))

	circles := doc.Find("circle.mark")
	if circles.Length() != 3 {
		t.Fatalf("circles = %d, want 3", circles.Length())
	}
	circles.Each(func(i int, s *goquery.Selection) {
		if r := attrFloat(t, s, "r"); r == 0 {
			t.Errorf("circle %d drawn collapsed without WithEntrance", i)
		}
		if op, _ := s.Attr("opacity"); op != "0.6" {
			t.Errorf("circle %d opacity = %q", i, op)
		}
	})
	if got := doc.Find("defs stop").Length(); got != layout.LegendStops {
		t.Errorf("legend stops = %d, want %d", got, layout.LegendStops)
	}
	if !strings.Contains(doc.Text(), "Release Year") || !strings.Contains(doc.Text(), "Track Popularity") {
		t.Error("axis titles missing")
	}
}

func TestRenderSVGSubPixelGeometry(t *testing.T) {
	c := testChart(t)
	doc := parse(t, RenderSVG(c))

	doc.Find("circle.mark").Each(func(i int, s *goquery.Selection) {
		base := c.Scene.Baseline(i)
		for _, attr := range []struct {
			name string
			want float64
		}{{"cx", base.X}, {"cy", base.Y}, {"r", base.Radius}} {
			if got := attrFloat(t, s, attr.name); math.Abs(got-attr.want) > 0.005 {
				t.Errorf("circle %d %s = %v, want %v", i, attr.name, got, attr.want)
			}
		}
	})
}

func TestRenderJSON(t *testing.T) {
	c := testChart(t)
	data, err := RenderJSON(c, WithJSONStats(catalog.Stats{Rows: 5, Kept: 3, Filtered: 2}))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Width != 1100 || out.Height != 650 {
		t.Errorf("size = %dx%d", out.Width, out.Height)
	}
	if len(out.Marks) != 3 || out.Marks[0].Title != "Alpha" {
		t.Errorf("marks = %+v", out.Marks)
	}
	if out.Stats == nil || out.Stats.Filtered != 2 {
		t.Errorf("stats = %+v", out.Stats)
	}
	if len(out.Legend.Stops) != layout.LegendStops {
		t.Errorf("legend stops = %d", len(out.Legend.Stops))
	}
	if out.Scales.Y != [2]float64{0, 100} {
		t.Errorf("y domain = %v", out.Scales.Y)
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testChart(t))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG")
	}
}
