package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matzehuels/trackviz/pkg/errors"
)

const table = "track_popularity,artist_followers,track_duration_min,album_release_date\n85,1200000,3.5,2022-06-15\n"

func TestClassify(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		remote bool
	}{
		{"tracks.csv", KindFile, false},
		{"file:///srv/tracks.csv", KindFile, false},
		{"http://example.com/t.csv", KindHTTP, true},
		{"HTTPS://example.com/t.csv", KindHTTP, true},
		{"gs://bucket/t.csv", KindGCS, true},
	}
	for _, tt := range tests {
		k := Classify(tt.in)
		if k != tt.want || k.Remote() != tt.remote {
			t.Errorf("Classify(%q) = %v (remote %v), want %v", tt.in, k, k.Remote(), tt.want)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.csv")
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOpener()
	defer o.Close()

	for _, loc := range []string{path, "file://" + path} {
		data, err := Read(context.Background(), o, loc)
		if err != nil {
			t.Fatalf("Read(%q) error = %v", loc, err)
		}
		if string(data) != table {
			t.Errorf("Read(%q) = %q", loc, data)
		}
	}
}

func TestOpenMissingFileIsDataLoad(t *testing.T) {
	_, err := NewOpener().Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, errors.ErrCodeDataLoad) {
		t.Errorf("error = %v, want DATA_LOAD", err)
	}
}

func TestOpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(table))
	}))
	defer srv.Close()

	o := NewOpener()
	data, err := Read(context.Background(), o, srv.URL+"/tracks.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != table {
		t.Errorf("Read() = %q", data)
	}

	_, err = o.Open(context.Background(), srv.URL+"/missing.csv")
	if !errors.Is(err, errors.ErrCodeDataLoad) {
		t.Fatalf("404 error = %v, want DATA_LOAD", err)
	}
}

func TestOpenHTTPNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOpener().Open(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Open() succeeded on 503")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestOpenerTimeout(t *testing.T) {
	tests := []struct {
		name string
		opts func(c *resty.Client) []Option
		want time.Duration
	}{
		{"default", func(*resty.Client) []Option { return nil }, DefaultTimeout},
		{"timeout only", func(*resty.Client) []Option { return []Option{WithTimeout(5 * time.Second)} }, 5 * time.Second},
		{"timeout before client", func(c *resty.Client) []Option {
			return []Option{WithTimeout(5 * time.Second), WithHTTPClient(c)}
		}, 5 * time.Second},
		{"client before timeout", func(c *resty.Client) []Option {
			return []Option{WithHTTPClient(c), WithTimeout(5 * time.Second)}
		}, 5 * time.Second},
		{"client keeps its own", func(c *resty.Client) []Option {
			return []Option{WithHTTPClient(c.SetTimeout(time.Minute)), WithTimeout(0)}
		}, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOpener(tt.opts(resty.New())...)
			if got := o.http.GetClient().Timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGCS(t *testing.T) {
	b, o, err := ParseGCS("gs://charts/data/tracks.csv")
	if err != nil || b != "charts" || o != "data/tracks.csv" {
		t.Errorf("ParseGCS = %q, %q, %v", b, o, err)
	}
	for _, bad := range []string{"gs://", "gs://bucket", "gs://bucket/", "gs:///obj"} {
		if _, _, err := ParseGCS(bad); err == nil {
			t.Errorf("ParseGCS(%q) = nil error", bad)
		}
	}
}

func TestMemoryAndStatic(t *testing.T) {
	m := Memory{"a.csv": []byte(table)}
	if data, err := Read(context.Background(), m, "a.csv"); err != nil || string(data) != table {
		t.Errorf("Memory read = %q, %v", data, err)
	}
	if _, err := m.Open(context.Background(), "b.csv"); !errors.Is(err, errors.ErrCodeDataLoad) {
		t.Errorf("Memory missing = %v, want DATA_LOAD", err)
	}
	if data, err := Read(context.Background(), Static(table), "anything"); err != nil || string(data) != table {
		t.Errorf("Static read = %q, %v", data, err)
	}
}
