package cache

import (
	"context"
	"errors"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

// CartView caches the last fetched server cart per user so repeated
// storefront reads don't round-trip to the backend. Mutations invalidate
// it; the next read refetches.
type CartView interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
