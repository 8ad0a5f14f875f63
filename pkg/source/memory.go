package source

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/matzehuels/trackviz/pkg/errors"
)

// Memory is a Loader over in-memory tables keyed by location.
type Memory map[string][]byte

// Open implements Loader.
func (m Memory) Open(_ context.Context, location string) (io.ReadCloser, error) {
	data, ok := m[location]
	if !ok {
		return nil, errors.DataLoad(os.ErrNotExist, "open %s", location)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Static is a Loader that returns the same table for every location. It
// serves uploaded tables.
type Static []byte

// Open implements Loader.
func (s Static) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}
