// Package source fetches the raw catalog table.
//
// A location is one of:
//
//	tracks.csv, ./data/tracks.csv, file:///srv/tracks.csv   local file
//	http://host/tracks.csv, https://host/tracks.csv         HTTP GET (resty)
//	gs://bucket/path/tracks.csv                             Google Cloud Storage
//
// Every failure, whatever the transport, is reported as a DATA_LOAD error
// from pkg/errors. Nothing is retried: a failed load is final for the
// chart that requested it.
package source

import (
	"context"
	"io"
	"strings"

	"github.com/matzehuels/trackviz/pkg/errors"
)

// Loader opens a source table for reading. Implementations must return a
// DATA_LOAD error when the table cannot be obtained.
type Loader interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Kind classifies a location by transport.
type Kind int

const (
	KindFile Kind = iota
	KindHTTP
	KindGCS
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindGCS:
		return "gcs"
	default:
		return "file"
	}
}

// Remote reports whether the location is fetched over the network.
func (k Kind) Remote() bool { return k != KindFile }

// Classify returns the transport a location uses.
func Classify(location string) Kind {
	l := strings.ToLower(location)
	switch {
	case strings.HasPrefix(l, "http://"), strings.HasPrefix(l, "https://"):
		return KindHTTP
	case strings.HasPrefix(l, "gs://"):
		return KindGCS
	default:
		return KindFile
	}
}

// Read opens location with l and reads it fully.
func Read(ctx context.Context, l Loader, location string) ([]byte, error) {
	rc, err := l.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.DataLoad(err, "read %s", location)
	}
	return data, nil
}
