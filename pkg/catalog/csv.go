package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	trverrors "github.com/matzehuels/trackviz/pkg/errors"
)

// Table is a decoded source table.
type Table struct {
	Header []string
	Rows   []RawRecord
}

// ReadCSV decodes a comma-separated table with a header row.
//
// A missing header, a ragged or unterminated row, or a header lacking any of
// the required columns in cols is a DATA_LOAD error. Empty lines are skipped.
func ReadCSV(r io.Reader, cols Columns) (*Table, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, trverrors.DataLoad(nil, "source table is empty")
	}
	if err != nil {
		return nil, trverrors.DataLoad(err, "read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var missing []string
	for _, col := range cols.required() {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, trverrors.DataLoad(nil, "missing required columns: %s", strings.Join(missing, ", "))
	}

	t := &Table{Header: header}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, trverrors.DataLoad(err, "malformed table")
		}
		row := make(RawRecord, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
