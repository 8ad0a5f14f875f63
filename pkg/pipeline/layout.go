package pipeline

import (
	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/layout"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// Build derives the scale set from ws once, lays out the axes and legend
// and joins one mark per record.
func Build(ws *catalog.WorkingSet, opts Options) (*join.Scene, layout.Layout, error) {
	s, err := scales.New(ws, opts.Dimensions(), opts.Palette())
	if err != nil {
		return nil, layout.Layout{}, err
	}
	l := layout.Build(s,
		layout.WithTitles(opts.XTitle, opts.YTitle),
		layout.WithLegendTitle(opts.LegendTitle),
	)
	return join.Join(ws, s, opts.Timing()), l, nil
}

func errEmpty(st catalog.Stats) error {
	return errors.DataLoad(nil, "no valid records (%d rows read, %d filtered, %d field anomalies)",
		st.Rows, st.Filtered, st.Anomalies)
}
