package catalog

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/trackviz/pkg/errors"
)

func row(pop, followers, dur, explicit, date string) RawRecord {
	return RawRecord{
		"track_name":         "Song",
		"artist_name":        "Artist",
		"track_popularity":   pop,
		"artist_followers":   followers,
		"track_duration_min": dur,
		"explicit":           explicit,
		"album_release_date": date,
	}
}

func TestNormalizeScenario(t *testing.T) {
	rec, anomalies := Normalize(row("85", "1200000", "3.5", "TRUE", "2022-06-15"), 0, DefaultColumns())

	if len(anomalies) != 0 {
		t.Fatalf("anomalies = %v, want none", anomalies)
	}
	if rec.Popularity != 85 {
		t.Errorf("Popularity = %d, want 85", rec.Popularity)
	}
	if rec.Followers != 1200000 {
		t.Errorf("Followers = %d, want 1200000", rec.Followers)
	}
	if rec.DurationMinutes != 3.5 {
		t.Errorf("DurationMinutes = %v, want 3.5", rec.DurationMinutes)
	}
	if !rec.Explicit {
		t.Error("Explicit = false, want true")
	}
	if rec.ReleaseYear != 2022 || rec.ReleaseMonth != 6 {
		t.Errorf("release = %d-%d, want 2022-6", rec.ReleaseYear, rec.ReleaseMonth)
	}
	if math.Abs(rec.JitteredX-2022.0) > 1e-9 {
		t.Errorf("JitteredX = %v, want 2022.0", rec.JitteredX)
	}
	if !rec.Valid() {
		t.Error("Valid() = false, want true")
	}
}

func TestNormalizeExplicit(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"TRUE", true},
		{"FALSE", false},
		{"true", false},
		{"1", false},
		{"", false},
	}
	for _, tt := range tests {
		rec, _ := Normalize(row("50", "10", "3", tt.in, "2022-01-01"), 0, DefaultColumns())
		if rec.Explicit != tt.want {
			t.Errorf("explicit %q = %v, want %v", tt.in, rec.Explicit, tt.want)
		}
	}
}

func TestNormalizeDateLayouts(t *testing.T) {
	tests := []struct {
		in          string
		year, month int
	}{
		{"2022-06-15", 2022, 6},
		{"2023-11", 2023, 11},
		{"2021", 2021, 1},
		{"2024-02-03T10:00:00Z", 2024, 2},
	}
	for _, tt := range tests {
		rec, anomalies := Normalize(row("50", "10", "3", "", tt.in), 0, DefaultColumns())
		if len(anomalies) != 0 {
			t.Errorf("%q: anomalies = %v", tt.in, anomalies)
		}
		if rec.ReleaseYear != tt.year || rec.ReleaseMonth != tt.month {
			t.Errorf("%q: got %d-%d, want %d-%d", tt.in, rec.ReleaseYear, rec.ReleaseMonth, tt.year, tt.month)
		}
	}
}

func TestNormalizeAnomalies(t *testing.T) {
	rec, anomalies := Normalize(row("abc", "", "3.5", "TRUE", "not a date"), 7, DefaultColumns())

	if len(anomalies) != 3 {
		t.Fatalf("anomalies = %d, want 3", len(anomalies))
	}
	for _, a := range anomalies {
		if a.Row != 7 {
			t.Errorf("anomaly row = %d, want 7", a.Row)
		}
	}
	if anomalies[0].Column != "track_popularity" || anomalies[0].Value != "abc" {
		t.Errorf("first anomaly = %+v", anomalies[0])
	}
	if rec.Valid() {
		t.Error("record with anomalies should fail Valid()")
	}
	if !math.IsNaN(rec.JitteredX) {
		t.Errorf("JitteredX = %v, want NaN", rec.JitteredX)
	}
}

func TestValidInvariant(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
		want bool
	}{
		{"ok", row("1", "1", "0.1", "", "2021-01-01"), true},
		{"max popularity", row("100", "1", "1", "", "2021-01-01"), true},
		{"zero popularity", row("0", "10", "3", "", "2022-01-01"), false},
		{"popularity over 100", row("101", "10", "3", "", "2022-01-01"), false},
		{"zero followers", row("50", "0", "3", "", "2022-01-01"), false},
		{"zero duration", row("50", "10", "0", "", "2022-01-01"), false},
		{"negative duration", row("50", "10", "-2", "", "2022-01-01"), false},
		{"too old", row("50", "10", "3", "", "2020-12-31"), false},
		{"nan duration", row("50", "10", "NaN", "", "2022-01-01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := Normalize(tt.raw, 0, DefaultColumns())
			if got := rec.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v (record %+v)", got, tt.want, rec)
			}
		})
	}
}

func TestBuildWorkingSetOrdering(t *testing.T) {
	rows := []RawRecord{
		row("50", "10", "3", "", "2022-01-01"),
		row("90", "10", "3", "", "2022-01-01"),
		row("50", "10", "3", "", "2022-01-01"),
		row("0", "10", "3", "", "2022-01-01"),
		row("90", "10", "3", "", "2022-01-01"),
	}
	ws := BuildWorkingSet(rows, Options{})

	wantIdx := []int{1, 4, 0, 2}
	if ws.Len() != len(wantIdx) {
		t.Fatalf("Len() = %d, want %d", ws.Len(), len(wantIdx))
	}
	for i, want := range wantIdx {
		if got := ws.At(i).Index; got != want {
			t.Errorf("At(%d).Index = %d, want %d", i, got, want)
		}
	}

	st := ws.Stats()
	if st.Rows != 5 || st.Kept != 4 || st.Filtered != 1 || st.Dropped() != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestBuildWorkingSetTruncates(t *testing.T) {
	rows := make([]RawRecord, 0, 450)
	for i := range 450 {
		rows = append(rows, row(fmt.Sprint(1+i%100), "10", "3", "", "2023-04-01"))
	}
	ws := BuildWorkingSet(rows, Options{})

	if ws.Len() != DefaultMaxRecords {
		t.Fatalf("Len() = %d, want %d", ws.Len(), DefaultMaxRecords)
	}
	if ws.Stats().Truncated != 150 {
		t.Errorf("Truncated = %d, want 150", ws.Stats().Truncated)
	}
	for i := 1; i < ws.Len(); i++ {
		if ws.At(i).Popularity > ws.At(i-1).Popularity {
			t.Fatalf("not descending at %d: %d > %d", i, ws.At(i).Popularity, ws.At(i-1).Popularity)
		}
	}
}

func TestBuildWorkingSetCountsAnomalies(t *testing.T) {
	rows := []RawRecord{
		row("85", "1200000", "3.5", "TRUE", "2022-06-15"),
		row("x", "1200000", "3.5", "TRUE", "2022-06-15"),
	}
	ws := BuildWorkingSet(rows, Options{})
	if ws.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ws.Len())
	}
	if ws.Stats().Anomalies != 1 {
		t.Errorf("Anomalies = %d, want 1", ws.Stats().Anomalies)
	}
}

func TestRecordsIsACopy(t *testing.T) {
	ws := BuildWorkingSet([]RawRecord{row("85", "10", "3", "", "2022-06-15")}, Options{})
	recs := ws.Records()
	recs[0].Popularity = 1
	if ws.At(0).Popularity != 85 {
		t.Error("mutating Records() changed the working set")
	}
}

func TestExtents(t *testing.T) {
	ws := BuildWorkingSet([]RawRecord{
		row("80", "100", "2", "", "2021-01-01"),
		row("70", "5000", "6", "", "2024-12-01"),
	}, Options{})

	if e := ws.DurationExtent(); e.Min != 2 || e.Max != 6 {
		t.Errorf("DurationExtent = %+v", e)
	}
	if e := ws.FollowerExtent(); e.Min != 100 || e.Max != 5000 {
		t.Errorf("FollowerExtent = %+v", e)
	}
	if e := ws.JitterExtent(); math.Abs(e.Min-JitterX(2021, 1)) > 1e-9 || math.Abs(e.Max-JitterX(2024, 12)) > 1e-9 {
		t.Errorf("JitterExtent = %+v", e)
	}
}

func TestReadCSV(t *testing.T) {
	input := "track_name,artist_name,track_popularity,artist_followers,track_duration_min,explicit,album_release_date\n" +
		"Song A,Artist,85,1200000,3.5,TRUE,2022-06-15\n" +
		"\n" +
		"Song B,Other,60,900,4.1,FALSE,2023-01-02\n"

	tbl, err := ReadCSV(strings.NewReader(input), DefaultColumns())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if got := tbl.Rows[0]["track_name"]; got != "Song A" {
		t.Errorf("track_name = %q, want Song A", got)
	}
	if got := tbl.Rows[1]["track_popularity"]; got != "60" {
		t.Errorf("popularity = %q, want 60", got)
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	input := "\ufefftrack_popularity,artist_followers,track_duration_min,album_release_date\n85,10,3,2022-01-01\n"
	tbl, err := ReadCSV(strings.NewReader(input), DefaultColumns())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if tbl.Header[0] != "track_popularity" {
		t.Errorf("Header[0] = %q, want track_popularity", tbl.Header[0])
	}
}

func TestReadCSVDataLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing columns", "track_name,artist_name\nA,B\n"},
		{"ragged row", "track_popularity,artist_followers,track_duration_min,album_release_date\n85,10\n"},
		{"bad quote", "track_popularity,artist_followers,track_duration_min,album_release_date\n\"85,10,3,2022\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.input), DefaultColumns())
			if err == nil {
				t.Fatalf("ReadCSV() = %+v, want error", tbl)
			}
			if tbl != nil {
				t.Error("ReadCSV() returned a partial table alongside an error")
			}
			if !errors.Is(err, errors.ErrCodeDataLoad) {
				t.Errorf("error code = %q, want DATA_LOAD", errors.GetCode(err))
			}
		})
	}
}

func TestCustomColumns(t *testing.T) {
	cols := Columns{Popularity: "pop", ReleaseDate: "released"}
	input := "pop,artist_followers,track_duration_min,released\n77,10,3,2022-03-01\n"
	tbl, err := ReadCSV(strings.NewReader(input), cols)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	ws := BuildWorkingSet(tbl.Rows, Options{Columns: cols})
	if ws.Len() != 1 || ws.At(0).Popularity != 77 {
		t.Errorf("working set = %+v", ws.Records())
	}
}
