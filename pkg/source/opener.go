package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-resty/resty/v2"

	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/observability"
)

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 30 * time.Second

// Opener is the production Loader. It dispatches on the location scheme.
// Opener is safe for concurrent use.
type Opener struct {
	http    *resty.Client
	timeout time.Duration

	mu        sync.Mutex
	gcs       *storage.Client
	ownsGCS   bool
	newGCS    func(context.Context) (*storage.Client, error)
	userAgent string
}

// Option configures an Opener.
type Option func(*Opener)

// WithHTTPClient replaces the resty client used for http(s) locations.
func WithHTTPClient(c *resty.Client) Option { return func(o *Opener) { o.http = c } }

// WithTimeout sets the per-request timeout for remote fetches. It applies
// to the final client, whatever the order of options.
func WithTimeout(d time.Duration) Option {
	return func(o *Opener) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithGCSClient uses c for gs:// locations instead of creating a client
// from application default credentials. The caller keeps ownership of c.
func WithGCSClient(c *storage.Client) Option {
	return func(o *Opener) { o.gcs = c; o.ownsGCS = false }
}

// WithUserAgent sets the User-Agent sent with HTTP requests.
func WithUserAgent(ua string) Option { return func(o *Opener) { o.userAgent = ua } }

// NewOpener returns an Opener. The GCS client is created lazily on the
// first gs:// location.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{
		http: resty.New().SetTimeout(DefaultTimeout),
		newGCS: func(ctx context.Context) (*storage.Client, error) {
			return storage.NewClient(ctx)
		},
		userAgent: "trackviz",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.timeout > 0 {
		o.http.SetTimeout(o.timeout)
	}
	return o
}

// Open implements Loader.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch Classify(location) {
	case KindHTTP:
		return o.openHTTP(ctx, location)
	case KindGCS:
		return o.openGCS(ctx, location)
	default:
		return openFile(location)
	}
}

// Close releases the GCS client if the Opener created it.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs != nil && o.ownsGCS {
		err := o.gcs.Close()
		o.gcs = nil
		return err
	}
	return nil
}

func openFile(location string) (io.ReadCloser, error) {
	path := strings.TrimPrefix(location, "file://")
	if err := errors.ValidatePath(path); err != nil {
		return nil, errors.DataLoad(err, "invalid source path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataLoad(err, "open %s", path)
	}
	return f, nil
}

func (o *Opener) openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, errors.DataLoad(err, "invalid source URL")
	}
	host, path := splitURL(url)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := o.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5").
		SetHeader("User-Agent", o.userAgent).
		Get(url)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, errors.DataLoad(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url), "fetch %s", url)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode(), time.Since(start))
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, errors.DataLoad(nil, "fetch %s: status %d", url, resp.StatusCode())
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

func splitURL(raw string) (host, path string) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}

// ParseGCS splits gs://bucket/object into its parts.
func ParseGCS(location string) (bucket, object string, err error) {
	const scheme = "gs://"
	if len(location) < len(scheme) || !strings.EqualFold(location[:len(scheme)], scheme) {
		return "", "", errors.New(errors.ErrCodeInvalidPath, "invalid GCS location %q (want gs://bucket/object)", location)
	}
	bucket, object, ok := strings.Cut(location[len(scheme):], "/")
	if !ok || bucket == "" || object == "" {
		return "", "", errors.New(errors.ErrCodeInvalidPath, "invalid GCS location %q (want gs://bucket/object)", location)
	}
	return bucket, object, nil
}

func (o *Opener) openGCS(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCS(location)
	if err != nil {
		return nil, errors.DataLoad(err, "invalid source location")
	}
	client, err := o.gcsClient(ctx)
	if err != nil {
		return nil, errors.DataLoad(err, "create storage client")
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, errors.DataLoad(err, "open %s", location)
	}
	return r, nil
}

func (o *Opener) gcsClient(ctx context.Context) (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs != nil {
		return o.gcs, nil
	}
	c, err := o.newGCS(ctx)
	if err != nil {
		return nil, err
	}
	o.gcs, o.ownsGCS = c, true
	return c, nil
}
