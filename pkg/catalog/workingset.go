package catalog

import (
	"math"
	"slices"
	"sort"
)

// DefaultMaxRecords is the size of the working set.
const DefaultMaxRecords = 300

// Stats summarizes one normalization pass.
type Stats struct {
	Rows      int `json:"rows"`      // data rows read
	Kept      int `json:"kept"`      // records in the working set
	Filtered  int `json:"filtered"`  // rows failing the invariant
	Truncated int `json:"truncated"` // valid rows beyond MaxRecords
	Anomalies int `json:"anomalies"` // fields that failed to coerce
}

// Dropped is the number of rows not in the working set.
func (s Stats) Dropped() int { return s.Filtered + s.Truncated }

// WorkingSet is the fixed, ordered sequence of records a chart is drawn
// from. It is never mutated after BuildWorkingSet returns.
type WorkingSet struct {
	records []Record
	stats   Stats
}

// Options controls BuildWorkingSet.
type Options struct {
	Columns    Columns
	MaxRecords int // 0 means DefaultMaxRecords
}

// BuildWorkingSet normalizes rows, keeps the valid ones, orders them by
// popularity (descending, ties in source order) and truncates to
// MaxRecords.
func BuildWorkingSet(rows []RawRecord, opts Options) *WorkingSet {
	recs := make([]Record, 0, len(rows))
	anomalies := 0
	for i, raw := range rows {
		rec, fieldAnomalies := Normalize(raw, i, opts.Columns)
		anomalies += len(fieldAnomalies)
		recs = append(recs, rec)
	}
	ws := FromRecords(recs, opts.MaxRecords)
	ws.stats.Anomalies = anomalies
	return ws
}

// FromRecords builds a working set from already normalized records. The
// input slice is not modified.
func FromRecords(recs []Record, maxRecords int) *WorkingSet {
	limit := maxRecords
	if limit <= 0 {
		limit = DefaultMaxRecords
	}

	ws := &WorkingSet{stats: Stats{Rows: len(recs)}}
	kept := make([]Record, 0, min(len(recs), limit))
	for _, rec := range recs {
		if !rec.Valid() {
			ws.stats.Filtered++
			continue
		}
		kept = append(kept, rec)
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Popularity > kept[b].Popularity
	})
	if len(kept) > limit {
		ws.stats.Truncated = len(kept) - limit
		kept = kept[:limit]
	}
	ws.records = slices.Clip(kept)
	ws.stats.Kept = len(ws.records)
	return ws
}

// Len returns the number of records.
func (w *WorkingSet) Len() int { return len(w.records) }

// At returns the i-th record in working-set order.
func (w *WorkingSet) At(i int) Record { return w.records[i] }

// Records returns a copy of the records in working-set order.
func (w *WorkingSet) Records() []Record { return slices.Clone(w.records) }

// Stats returns the normalization summary.
func (w *WorkingSet) Stats() Stats { return w.stats }

// Extent is a closed numeric interval.
type Extent struct {
	Min, Max float64
}

// extent returns the min and max of f over the working set.
func (w *WorkingSet) extent(f func(Record) float64) Extent {
	e := Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, r := range w.records {
		v := f(r)
		e.Min = math.Min(e.Min, v)
		e.Max = math.Max(e.Max, v)
	}
	return e
}

// JitterExtent spans the records' jittered x positions.
func (w *WorkingSet) JitterExtent() Extent {
	return w.extent(func(r Record) float64 { return r.JitteredX })
}

// DurationExtent spans the records' durations in minutes.
func (w *WorkingSet) DurationExtent() Extent {
	return w.extent(func(r Record) float64 { return r.DurationMinutes })
}

// FollowerExtent spans the records' creator follower counts.
func (w *WorkingSet) FollowerExtent() Extent {
	return w.extent(func(r Record) float64 { return float64(r.Followers) })
}
