package catalog

import (
	"fmt"
	"math"
	"time"
)

// RawRecord is one undecoded row of the source table.
type RawRecord map[string]string

// Columns names the source columns each Record field is read from.
type Columns struct {
	Title       string `koanf:"title" json:"title"`
	Creator     string `koanf:"creator" json:"creator"`
	Popularity  string `koanf:"popularity" json:"popularity"`
	Followers   string `koanf:"followers" json:"followers"`
	Duration    string `koanf:"duration" json:"duration"`
	Explicit    string `koanf:"explicit" json:"explicit"`
	ReleaseDate string `koanf:"release_date" json:"release_date"`
}

// DefaultColumns returns the column names of the bundled track export.
func DefaultColumns() Columns {
	return Columns{
		Title:       "track_name",
		Creator:     "artist_name",
		Popularity:  "track_popularity",
		Followers:   "artist_followers",
		Duration:    "track_duration_min",
		Explicit:    "explicit",
		ReleaseDate: "album_release_date",
	}
}

// withDefaults fills empty names from DefaultColumns.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Creator == "" {
		c.Creator = d.Creator
	}
	if c.Popularity == "" {
		c.Popularity = d.Popularity
	}
	if c.Followers == "" {
		c.Followers = d.Followers
	}
	if c.Duration == "" {
		c.Duration = d.Duration
	}
	if c.Explicit == "" {
		c.Explicit = d.Explicit
	}
	if c.ReleaseDate == "" {
		c.ReleaseDate = d.ReleaseDate
	}
	return c
}

// required lists the columns a table must have for any record to survive
// the working-set filter.
func (c Columns) required() []string {
	return []string{c.Popularity, c.Followers, c.Duration, c.ReleaseDate}
}

// Record is a normalized track. Records are never modified after Normalize
// returns them.
type Record struct {
	// Index is the zero-based data row the record came from. It breaks
	// popularity ties and keys the record's mark.
	Index int `json:"index"`

	Title   string `json:"title"`
	Creator string `json:"creator"`

	Popularity      int     `json:"popularity"`
	Followers       int64   `json:"followers"`
	DurationMinutes float64 `json:"duration_minutes"`
	Explicit        bool    `json:"explicit"`

	Released     time.Time `json:"released"`
	ReleaseYear  int       `json:"release_year"`
	ReleaseMonth int       `json:"release_month"`

	// JitteredX spreads tracks of one year across the year's width.
	JitteredX float64 `json:"jittered_x"`
}

// MinReleaseYear is the earliest release year kept in the working set.
const MinReleaseYear = 2021

// Valid reports whether r satisfies the working-set invariant.
func (r Record) Valid() bool {
	return r.Popularity > 0 && r.Popularity <= 100 &&
		r.Followers > 0 &&
		r.DurationMinutes > 0 && !math.IsInf(r.DurationMinutes, 0) &&
		r.ReleaseYear >= MinReleaseYear
}

// JitterX returns the continuous x position for a release year and month.
func JitterX(year, month int) float64 {
	return float64(year) + float64(month)/12 - 0.5
}

// FieldAnomaly records a field that failed to coerce. It is informational:
// the affected row is dropped by the working-set filter, never reported.
type FieldAnomaly struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (a *FieldAnomaly) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot coerce %q: %v", a.Row, a.Column, a.Value, a.Err)
}

func (a *FieldAnomaly) Unwrap() error { return a.Err }
