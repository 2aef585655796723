package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/cache"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/guest"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/remote"
)

// RemoteClient is the slice of the backend cart contract the facade needs.
// Consumers define this interface, not the HTTP implementation.
type RemoteClient interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddLine(ctx context.Context, productID, variantID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, lineID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int) (*domain.Cart, error)
	UpdateVariant(ctx context.Context, lineID, newVariantID string) (*domain.Cart, error)
	SyncLines(ctx context.Context, items []remote.SyncItem) (*domain.Cart, error)
}

// Facade is the single cart entry point for the rest of the storefront.
// Every call routes on the supplied session alone: anonymous sessions hit
// the guest store, authenticated ones hit the backend. The facade keeps
// no mode state of its own, so a login changes routing only for the calls
// that come after it.
type Facade struct {
	guest  *guest.Store
	remote RemoteClient
	view   cache.CartView
	sfg    singleflight.Group // Prevents view stampede on concurrent reads
	log    *zap.Logger
}

func NewFacade(guestStore *guest.Store, remoteClient RemoteClient, view cache.CartView, log *zap.Logger) *Facade {
	return &Facade{
		guest:  guestStore,
		remote: remoteClient,
		view:   view,
		log:    log,
	}
}

// GetCart returns the live cart for the session. Authenticated reads are
// served from the cached view when possible; a miss fetches from the
// backend and fills the view off the request path.
func (f *Facade) GetCart(ctx context.Context, sess auth.Session) (*domain.Cart, error) {
	if !sess.IsAuthenticated() {
		return f.guest.Read(ctx, sess.GuestID), nil
	}

	v, err, _ := f.sfg.Do(sess.UserID, func() (interface{}, error) {
		cached, err := f.view.Get(ctx, sess.UserID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.log.Warn("cart view get failed", zap.Error(err))
		}

		cart, err := f.remote.GetCart(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := f.view.Set(context.Background(), sess.UserID, cart); err != nil {
				f.log.Warn("cart view set failed", zap.Error(err))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (f *Facade) AddLine(ctx context.Context, sess auth.Session, product *domain.Product, variantID string, quantity int) (*domain.Cart, error) {
	if !sess.IsAuthenticated() {
		return f.guest.AddLine(ctx, sess.GuestID, product, variantID, quantity)
	}

	cart, err := f.remote.AddLine(ctx, product.ID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	f.invalidateView(sess.UserID)
	return cart, nil
}

func (f *Facade) RemoveLine(ctx context.Context, sess auth.Session, lineID string) (*domain.Cart, error) {
	if !sess.IsAuthenticated() {
		return f.guest.RemoveLine(ctx, sess.GuestID, lineID), nil
	}

	cart, err := f.remote.RemoveLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	f.invalidateView(sess.UserID)
	return cart, nil
}

func (f *Facade) UpdateQuantity(ctx context.Context, sess auth.Session, lineID string, quantity int) (*domain.Cart, error) {
	if !sess.IsAuthenticated() {
		return f.guest.UpdateQuantity(ctx, sess.GuestID, lineID, quantity)
	}

	cart, err := f.remote.UpdateQuantity(ctx, lineID, quantity)
	if err != nil {
		return nil, err
	}
	f.invalidateView(sess.UserID)
	return cart, nil
}

// UpdateVariant routes a variant switch. In authenticated mode the
// backend decides between merge and rewrite; the returned cart is taken
// as-is rather than assuming either outcome.
func (f *Facade) UpdateVariant(ctx context.Context, sess auth.Session, lineID, newVariantID string) (*domain.Cart, error) {
	if !sess.IsAuthenticated() {
		return f.guest.UpdateVariant(ctx, sess.GuestID, lineID, newVariantID)
	}

	cart, err := f.remote.UpdateVariant(ctx, lineID, newVariantID)
	if err != nil {
		return nil, err
	}
	f.invalidateView(sess.UserID)
	return cart, nil
}

func (f *Facade) invalidateView(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.view.Delete(ctx, userID); err != nil {
		f.log.Warn("cart view invalidate failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
