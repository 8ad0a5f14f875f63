// Package pipeline provides the chart pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline runs in three stages:
//
//  1. Load: fetch the table bytes from a file, URL or bucket (or take them
//     from the request body) and decode the CSV.
//  2. Build: normalize rows into the working set, build the scale set once,
//     lay out axes and legend, and join one mark per record.
//  3. Render: write the requested artifacts (html, svg, png, json).
//
// A table that cannot be loaded, or that leaves no valid record, stops the
// run with a DATA_LOAD error; no partial chart is produced. [RenderFailure]
// turns such an error into the error panel document.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "tracks.csv",
//	    Formats: []string{"html"},
//	})
//	if err != nil {
//	    page, _ := pipeline.RenderFailure(err, opts)
//	    ...
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
	"github.com/matzehuels/trackviz/pkg/sink"
	"github.com/matzehuels/trackviz/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxRecords caps the working set.
	DefaultMaxRecords = catalog.DefaultMaxRecords

	// DefaultStaggerMS delays the entrance of mark i by i*DefaultStaggerMS.
	DefaultStaggerMS = 15

	// DefaultEntranceMS is the grow-in duration of one mark.
	DefaultEntranceMS = 2000

	// DefaultHoverMS is the duration of highlight and reset transitions.
	DefaultHoverMS = 200

	// DefaultEase is the entrance easing.
	DefaultEase = "elastic"
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Source  string          `json:"source,omitempty"`
	Data    []byte          `json:"-"` // raw table, used instead of Source when set
	Columns catalog.Columns `json:"columns"`
	Refresh bool            `json:"refresh,omitempty"`

	// Build options
	MaxRecords  int    `json:"max_records,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	LowColor    string `json:"low_color,omitempty"`
	HighColor   string `json:"high_color,omitempty"`
	XTitle      string `json:"x_title,omitempty"`
	YTitle      string `json:"y_title,omitempty"`
	LegendTitle string `json:"legend_title,omitempty"`
	StaggerMS   int64  `json:"stagger_ms,omitempty"`
	EntranceMS  int64  `json:"entrance_ms,omitempty"`
	HoverMS     int64  `json:"hover_ms,omitempty"`
	Ease        string `json:"ease,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	ContainerID string   `json:"container_id,omitempty"`
	TooltipID   string   `json:"tooltip_id,omitempty"`
	Title       string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	palette   scales.Palette
	ease      join.Easing
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DatasetHash is the content hash of the table bytes.
	DatasetHash string

	// WorkingSet is the normalized, ordered, truncated record list.
	WorkingSet *catalog.WorkingSet

	// Scene holds the scale set and the joined marks.
	Scene *join.Scene

	// Layout is everything drawn around the marks.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Chart returns the renderable chart of the result.
func (r *Result) Chart() sink.Chart { return sink.Chart{Scene: r.Scene, Layout: r.Layout} }

// Stats contains pipeline execution statistics.
type Stats struct {
	catalog.Stats
	Bytes      int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	DatasetHit bool // remote table bytes came from cache
	RenderHit  bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: html, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" && o.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "source or data is required")
	}
	if o.MaxRecords < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_records must not be negative")
	}
	if o.StaggerMS < 0 || o.EntranceMS < 0 || o.HoverMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}

	if o.MaxRecords == 0 {
		o.MaxRecords = DefaultMaxRecords
	}
	dims := scales.DefaultDimensions()
	if o.Width == 0 {
		o.Width = dims.Width
	}
	if o.Height == 0 {
		o.Height = dims.Height
	}
	if err := o.Dimensions().Validate(); err != nil {
		return err
	}

	if o.StaggerMS == 0 {
		o.StaggerMS = DefaultStaggerMS
	}
	if o.EntranceMS == 0 {
		o.EntranceMS = DefaultEntranceMS
	}
	if o.HoverMS == 0 {
		o.HoverMS = DefaultHoverMS
	}
	if o.Ease == "" {
		o.Ease = DefaultEase
	}
	ease, err := join.ParseEasing(o.Ease)
	if err != nil {
		return err
	}
	o.ease = ease

	o.palette = scales.DefaultPalette()
	if o.LowColor != "" {
		if o.palette.Low, err = scales.ParseHex(o.LowColor); err != nil {
			return err
		}
	}
	if o.HighColor != "" {
		if o.palette.High, err = scales.ParseHex(o.HighColor); err != nil {
			return err
		}
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.ContainerID == "" {
		o.ContainerID = sink.DefaultContainerID
	}
	if o.TooltipID == "" {
		o.TooltipID = sink.DefaultTooltipID
	}
	if o.ContainerID == o.TooltipID {
		return errors.New(errors.ErrCodeInvalidInput, "container and tooltip ids must differ (both %q)", o.ContainerID)
	}
	if o.Title == "" {
		o.Title = sink.DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Dimensions returns the drawing surface.
func (o *Options) Dimensions() scales.Dimensions {
	d := scales.DefaultDimensions()
	d.Width, d.Height = o.Width, o.Height
	return d
}

// Timing returns the animation timing.
func (o *Options) Timing() join.Timing {
	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	ease := o.ease
	if ease == nil {
		ease = join.DefaultEntranceEasing
	}
	return join.Timing{
		Stagger:  ms(o.StaggerMS),
		Entrance: ms(o.EntranceMS),
		Hover:    ms(o.HoverMS),
		Ease:     ease,
		EaseName: o.Ease,
	}
}

// Palette returns the follower color palette.
func (o *Options) Palette() scales.Palette {
	if o.palette == (scales.Palette{}) {
		return scales.DefaultPalette()
	}
	return o.palette
}

// SourceLabel names the table in messages: the location, or "uploaded
// table" for raw data.
func (o *Options) SourceLabel() string {
	if o.Source != "" {
		return o.Source
	}
	return "uploaded table"
}

// IsRemote reports whether the source is fetched over the network.
func (o *Options) IsRemote() bool {
	return o.Data == nil && source.Classify(o.Source).Remote()
}

// HTMLOptions returns the page options for the html artifact and the error
// document.
func (o *Options) HTMLOptions() []sink.HTMLOption {
	return []sink.HTMLOption{
		sink.WithContainerID(o.ContainerID),
		sink.WithTooltipID(o.TooltipID),
		sink.WithTitle(o.Title),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	c := o.Columns
	return cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		MaxRecords:  o.MaxRecords,
		Columns:     []string{c.Title, c.Creator, c.Popularity, c.Followers, c.Duration, c.Explicit, c.ReleaseDate},
		StaggerMS:   o.StaggerMS,
		EntranceMS:  o.EntranceMS,
		HoverMS:     o.HoverMS,
		Ease:        o.Ease,
		LowColor:    scales.Hex(o.Palette().Low),
		HighColor:   scales.Hex(o.Palette().High),
		ContainerID: o.ContainerID,
		TooltipID:   o.TooltipID,
		Title:       fmt.Sprintf("%s|%s|%s|%s", o.Title, o.XTitle, o.YTitle, o.LegendTitle),
	}
}
