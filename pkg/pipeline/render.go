package pipeline

import (
	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/sink"
)

// Render generates output artifacts in the requested formats.
func Render(c sink.Chart, st catalog.Stats, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(c, st, format, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(c sink.Chart, st catalog.Stats, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return sink.RenderHTML(c, opts.HTMLOptions()...)
	case FormatSVG:
		return sink.RenderSVG(c), nil
	case FormatPNG:
		return sink.RenderPNG(c)
	case FormatJSON:
		return sink.RenderJSON(c, sink.WithJSONStats(st))
	default:
		return nil, ValidateFormat(format)
	}
}

// RenderFailure produces the failure surface for err: the chart page with
// an error panel naming the source in place of the chart.
func RenderFailure(err error, opts Options) ([]byte, error) {
	return sink.RenderErrorHTML(opts.SourceLabel(), err, opts.HTMLOptions()...)
}
