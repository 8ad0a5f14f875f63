package sink

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"

	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/interact"
	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// Default element ids of the chart page.
const (
	DefaultContainerID = "chart"
	DefaultTooltipID   = "tooltip"
	DefaultTitle       = "Track Popularity Over Time"
)

// HTMLOption configures the chart page and the error document.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	container string
	tooltip   string
	title     string
}

// WithContainerID sets the id of the element holding the chart.
func WithContainerID(id string) HTMLOption {
	return func(r *htmlRenderer) {
		if id != "" {
			r.container = id
		}
	}
}

// WithTooltipID sets the id of the tooltip element.
func WithTooltipID(id string) HTMLOption {
	return func(r *htmlRenderer) {
		if id != "" {
			r.tooltip = id
		}
	}
}

// WithTitle sets the page title and heading.
func WithTitle(t string) HTMLOption {
	return func(r *htmlRenderer) {
		if t != "" {
			r.title = t
		}
	}
}

func newHTMLRenderer(opts []HTMLOption) htmlRenderer {
	r := htmlRenderer{container: DefaultContainerID, tooltip: DefaultTooltipID, title: DefaultTitle}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

type pageData struct {
	Title     string
	Container string
	Tooltip   string
	CSS       template.CSS
	SVG       template.HTML
	Config    template.JS
	Script    template.JS
	Failure   *failure
}

type failure struct {
	Heading string
	Hint    string
	Message string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>{{.CSS}}</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div id="{{.Container}}">
{{- if .Failure}}
    <div class="error-panel">
      <h2>{{.Failure.Heading}}</h2>
      <p class="hint">{{.Failure.Hint}}</p>
      <p class="message">{{.Failure.Message}}</p>
    </div>
{{- else}}
{{.SVG}}
{{- end}}
  </div>
  <div id="{{.Tooltip}}"></div>
{{- if not .Failure}}
  <script type="application/json" id="trackviz-data">{{.Config}}</script>
  <script>{{.Script}}</script>
{{- end}}
</body>
</html>
`))

type pageConfig struct {
	Container string        `json:"container"`
	Tooltip   string        `json:"tooltip"`
	Timing    pageTiming    `json:"timing"`
	Style     pageStyle     `json:"style"`
	Tooltips  []pageTooltip `json:"tooltips"`
}

type pageTiming struct {
	Stagger  int64  `json:"stagger"`
	Entrance int64  `json:"entrance"`
	Hover    int64  `json:"hover"`
	Ease     string `json:"ease"`
}

type pageStyle struct {
	Stroke           string  `json:"stroke"`
	StrokeWidth      float64 `json:"strokeWidth"`
	Opacity          float64 `json:"opacity"`
	HoverRadius      float64 `json:"hoverRadius"`
	HoverStroke      string  `json:"hoverStroke"`
	HoverStrokeWidth float64 `json:"hoverStrokeWidth"`
	HoverOpacity     float64 `json:"hoverOpacity"`
	DimmedOpacity    float64 `json:"dimmedOpacity"`
	TooltipDX        float64 `json:"tooltipDX"`
	TooltipDY        float64 `json:"tooltipDY"`
}

type pageTooltip struct {
	Lines []string `json:"lines"`
}

// RenderHTML renders the interactive chart page: the SVG with every mark
// collapsed for its entrance, the tooltip element and the page script.
func RenderHTML(c Chart, opts ...HTMLOption) ([]byte, error) {
	r := newHTMLRenderer(opts)

	cfg, err := json.Marshal(buildPageConfig(c.Scene, r))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode page config")
	}

	return r.execute(pageData{
		SVG:    template.HTML(inlineSVG(RenderSVG(c, WithEntrance()))),
		Config: template.JS(cfg),
		Script: template.JS(pageJS),
	})
}

// RenderErrorHTML renders the failure document: the same page with an
// error panel in place of the chart and no script.
func RenderErrorHTML(source string, cause error, opts ...HTMLOption) ([]byte, error) {
	r := newHTMLRenderer(opts)
	f := &failure{Heading: "File not found", Hint: "Looking for: " + source}
	if cause != nil {
		f.Message = errors.UserMessage(cause)
	}
	return r.execute(pageData{Failure: f})
}

func (r htmlRenderer) execute(d pageData) ([]byte, error) {
	d.Title = r.title
	d.Container = r.container
	d.Tooltip = r.tooltip
	d.CSS = template.CSS(strings.ReplaceAll(pageCSS, "#TOOLTIP", "#"+r.tooltip))

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}

func buildPageConfig(sc *join.Scene, r htmlRenderer) pageConfig {
	tm := sc.Timing
	name := tm.EaseName
	if name == "" {
		name = "elastic"
	}
	cfg := pageConfig{
		Container: r.container,
		Tooltip:   r.tooltip,
		Timing: pageTiming{
			Stagger:  tm.Stagger.Milliseconds(),
			Entrance: tm.Entrance.Milliseconds(),
			Hover:    tm.Hover.Milliseconds(),
			Ease:     name,
		},
		Style: pageStyle{
			Stroke:           scales.Hex(join.NeutralGray),
			StrokeWidth:      join.BaselineStrokeWidth,
			Opacity:          join.BaselineOpacity,
			HoverRadius:      interact.HoverRadiusFactor,
			HoverStroke:      scales.Hex(scales.BrandGreen),
			HoverStrokeWidth: interact.HoverStrokeWidth,
			HoverOpacity:     interact.HoverOpacity,
			DimmedOpacity:    interact.DimmedOpacity,
			TooltipDX:        interact.TooltipOffsetX,
			TooltipDY:        interact.TooltipOffsetY,
		},
		Tooltips: make([]pageTooltip, 0, sc.Len()),
	}
	for _, m := range sc.Marks() {
		cfg.Tooltips = append(cfg.Tooltips, pageTooltip{Lines: interact.TooltipFor(m.Record, 0, 0).Lines()})
	}
	return cfg
}

// inlineSVG drops the XML prolog svgo writes so the document can sit inside
// an HTML body.
func inlineSVG(doc []byte) []byte {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		return doc[i:]
	}
	return doc
}
