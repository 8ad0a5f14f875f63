package catalog

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// explicitTrue is the only spelling of the explicit flag that means true.
const explicitTrue = "TRUE"

// dateLayouts are tried in order when parsing the release date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
}

var (
	errMissing  = errors.New("missing value")
	errNotANum  = errors.New("not a number")
	errBadDate  = errors.New("unrecognized date")
	errOutRange = errors.New("out of range")
)

// Normalize coerces one raw row into a Record. index is the row's position
// among the data rows and is kept on the record for stable ordering.
//
// Normalize never fails. Fields that cannot be coerced are returned as
// anomalies and leave the record in a state that fails Valid.
func Normalize(raw RawRecord, index int, cols Columns) (Record, []*FieldAnomaly) {
	cols = cols.withDefaults()

	var anomalies []*FieldAnomaly
	num := func(col string) float64 {
		v, err := parseNumber(raw[col])
		if err != nil {
			anomalies = append(anomalies, &FieldAnomaly{Row: index, Column: col, Value: raw[col], Err: err})
		}
		return v
	}

	rec := Record{
		Index:    index,
		Title:    strings.TrimSpace(raw[cols.Title]),
		Creator:  strings.TrimSpace(raw[cols.Creator]),
		Explicit: strings.TrimSpace(raw[cols.Explicit]) == explicitTrue,
	}

	rec.Popularity = toInt(num(cols.Popularity))
	rec.Followers = toInt64(num(cols.Followers))
	rec.DurationMinutes = num(cols.Duration)

	released, err := parseDate(raw[cols.ReleaseDate])
	if err != nil {
		anomalies = append(anomalies, &FieldAnomaly{Row: index, Column: cols.ReleaseDate, Value: raw[cols.ReleaseDate], Err: err})
		rec.JitteredX = math.NaN()
		return rec, anomalies
	}
	rec.Released = released
	rec.ReleaseYear = released.Year()
	rec.ReleaseMonth = int(released.Month())
	rec.JitteredX = JitterX(rec.ReleaseYear, rec.ReleaseMonth)
	return rec, anomalies
}

// parseNumber returns NaN and an error for anything that is not a finite
// number.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), errMissing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), errNotANum
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), errOutRange
	}
	return v, nil
}

// toInt rounds v, mapping NaN to zero so the record fails the filter.
func toInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

func toInt64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(v))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errMissing
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDate
}
