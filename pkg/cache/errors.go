package cache

import (
	"context"

	"github.com/matzehuels/trackviz/pkg/errors"
)

// ErrNotFound is returned by [Lookup] on a miss. It carries the NOT_FOUND
// code.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "cache entry not found")

// Lookup is Get with a miss reported as ErrNotFound.
func Lookup(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}
