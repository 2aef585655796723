package guest

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("guest cart not found")

// Storage persists one serialized cart blob per guest key. Writes are
// total replacements; concurrent writers for the same key are
// last-write-wins with no coordination, which is an accepted limitation
// of guest carts.
//
// The store defines this interface, not the backends.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
