package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/observability"
	"github.com/matzehuels/trackviz/pkg/pipeline"
	"github.com/matzehuels/trackviz/pkg/source"
)

const tracksCSV = `track_name,artist_name,track_popularity,artist_followers,track_duration_min,explicit,album_release_date
Alpha,Ann,85,1200000,3.5,TRUE,2022-06-15
Bravo,Ben,70,5000,2.0,FALSE,2021-02-01
Charlie,Cat,50,800,6.0,FALSE,2024-11-20
`

func newTestServer(t *testing.T, src string, opts ...Option) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, nil)
	runner.Loader = source.Memory{"tracks.csv": []byte(tracksCSV)}

	ts := httptest.NewServer(New(runner, pipeline.Options{Source: src}, opts...).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")
	resp := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.Find("#chart circle.mark").Length(); n != 3 {
		t.Errorf("marks = %d, want 3", n)
	}
	if doc.Find("#tooltip").Length() != 1 {
		t.Error("missing tooltip element")
	}
	if doc.Find(".error-panel").Length() != 0 {
		t.Error("unexpected error panel")
	}
}

func TestIndexFailure(t *testing.T) {
	tests := []struct {
		name   string
		source string
		status int
	}{
		{"local", "missing.csv", http.StatusInternalServerError},
		{"remote", "https://example.com/missing.csv", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.source)
			resp := get(t, ts.URL+"/")
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}

			doc, err := goquery.NewDocumentFromReader(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			panel := doc.Find("#chart .error-panel")
			if panel.Length() != 1 {
				t.Fatal("missing error panel")
			}
			if h := panel.Find("h2").Text(); h != "File not found" {
				t.Errorf("heading = %q", h)
			}
			if hint := panel.Find(".hint").Text(); !strings.Contains(hint, tt.source) {
				t.Errorf("hint = %q, want it to name %s", hint, tt.source)
			}
			if doc.Find("svg").Length() != 0 {
				t.Error("failure page contains a chart")
			}
		})
	}
}

func TestArtifact(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")

	resp := get(t, ts.URL+"/chart.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("svg status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := readBody(t, resp); strings.Count(body, `class="mark"`) != 3 {
		t.Error("svg does not hold 3 marks")
	}

	resp = get(t, ts.URL+"/chart.json?max=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json status = %d", resp.StatusCode)
	}
	var out struct {
		Marks []json.RawMessage `json:"marks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Marks) != 2 {
		t.Errorf("marks = %d, want 2", len(out.Marks))
	}

	if resp := get(t, ts.URL+"/chart.pdf"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("pdf status = %d, want 404", resp.StatusCode)
	}
	if resp := get(t, ts.URL+"/chart.svg?max=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad query status = %d, want 400", resp.StatusCode)
	}
	if resp := get(t, ts.URL+"/chart.svg?ease=wobble"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad ease status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadThenFetch(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")

	resp, err := http.Post(ts.URL+"/api/charts", "text/csv", strings.NewReader(tracksCSV))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	var up uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(up.ID); err != nil {
		t.Errorf("id %q is not a uuid", up.ID)
	}
	if up.Marks != 3 {
		t.Errorf("marks = %d, want 3", up.Marks)
	}

	page := get(t, ts.URL+up.URL)
	if page.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d", page.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(page.Body)
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.Find("circle.mark").Length(); n != 3 {
		t.Errorf("stored marks = %d, want 3", n)
	}
}

func TestUploadMalformed(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")

	for name, body := range map[string]string{
		"ragged":  "track_popularity,artist_followers,track_duration_min,album_release_date\n85\n",
		"columns": "name,plays\nA,1\n",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/charts", "text/csv", strings.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != "DATA_LOAD" || e.Error == "" {
				t.Errorf("error body = %+v", e)
			}
		})
	}
}

func TestStoredNotFound(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")
	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		if resp := get(t, ts.URL+"/charts/"+id); resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET /charts/%s status = %d, want 404", id, resp.StatusCode)
		}
	}
}

func TestMetrics(t *testing.T) {
	prom := observability.NewPrometheusHooks()
	ts := newTestServer(t, "tracks.csv", WithMetrics(prom))

	get(t, ts.URL+"/healthz")
	get(t, ts.URL+"/charts/"+uuid.NewString())

	body := readBody(t, get(t, ts.URL+"/metrics"))
	for _, want := range []string{
		`trackviz_http_requests_total{code="200",route="/healthz"} 1`,
		`trackviz_http_requests_total{code="404",route="/charts/{id}"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestNoMetricsRoute(t *testing.T) {
	ts := newTestServer(t, "tracks.csv")
	if resp := get(t, ts.URL+"/metrics"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without metrics", resp.StatusCode)
	}
}
