package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/source"
)

// Parse decodes table bytes and normalizes them into the working set.
//
// A malformed table is a DATA_LOAD error. So is a table that leaves no
// valid record: a chart with no marks is never drawn.
func Parse(data []byte, opts Options) (*catalog.WorkingSet, error) {
	table, err := catalog.ReadCSV(bytes.NewReader(data), opts.Columns)
	if err != nil {
		return nil, err
	}
	ws := catalog.BuildWorkingSet(table.Rows, catalog.Options{
		Columns:    opts.Columns,
		MaxRecords: opts.MaxRecords,
	})
	if ws.Len() == 0 {
		return nil, errEmpty(ws.Stats())
	}
	return ws, nil
}

// Load reads the source bytes through l. Raw Data in opts wins over Source.
func Load(ctx context.Context, l source.Loader, opts Options) ([]byte, error) {
	if opts.Data != nil {
		return opts.Data, nil
	}
	return source.Read(ctx, l, opts.Source)
}
