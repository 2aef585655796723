package merge

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/cache"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/guest"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/remote"
)

// Syncer is the one backend operation the coordinator needs.
type Syncer interface {
	SyncLines(ctx context.Context, items []remote.SyncItem) (*domain.Cart, error)
}

// Coordinator folds a guest cart into the server cart when its session
// becomes authenticated. Per guest key it is a two-state machine, Idle
// then Merged: the transition fires at most once, and a failed sync
// leaves the machine Idle with the guest cart intact so a later
// transition can retry. The sync endpoint collapses duplicate (product,
// variant) pairs, which makes the at-least-once delivery safe.
type Coordinator struct {
	guest  *guest.Store
	syncer Syncer
	view   cache.CartView
	log    *zap.Logger

	mu       sync.Mutex
	merged   map[string]struct{}
	inflight map[string]struct{}
}

func NewCoordinator(guestStore *guest.Store, syncer Syncer, view cache.CartView, log *zap.Logger) *Coordinator {
	return &Coordinator{
		guest:    guestStore,
		syncer:   syncer,
		view:     view,
		log:      log,
		merged:   make(map[string]struct{}),
		inflight: make(map[string]struct{}),
	}
}

// OnSessionChange is the auth observer hook. A transition from anonymous
// to authenticated with a guest cart present triggers the merge. Merge
// failures are swallowed into a retry-later state here: a broken merge
// must not block the rest of the storefront.
func (c *Coordinator) OnSessionChange(ctx context.Context, from, to auth.Session) {
	if from.IsAuthenticated() || !to.IsAuthenticated() {
		return
	}
	guestID := to.GuestID
	if guestID == "" {
		guestID = from.GuestID
	}
	if guestID == "" {
		return
	}

	if err := c.Merge(ctx, guestID, to); err != nil {
		c.log.Warn("guest cart merge failed, will retry on next login observation",
			zap.String("guest_id", guestID),
			zap.String("user_id", to.UserID),
			zap.Error(err))
	}
}

// Merge performs the one-shot reconciliation for one guest key. Safe to
// call repeatedly; once the state is Merged every later call is a no-op.
func (c *Coordinator) Merge(ctx context.Context, guestID string, sess auth.Session) error {
	c.mu.Lock()
	if _, done := c.merged[guestID]; done {
		c.mu.Unlock()
		return nil
	}
	if _, busy := c.inflight[guestID]; busy {
		c.mu.Unlock()
		return nil
	}
	c.inflight[guestID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, guestID)
		c.mu.Unlock()
	}()

	guestCart := c.guest.Read(ctx, guestID)
	if len(guestCart.Lines) == 0 {
		c.markMerged(guestID)
		return nil
	}

	items := make([]remote.SyncItem, 0, len(guestCart.Lines))
	for _, line := range guestCart.Lines {
		items = append(items, remote.SyncItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}

	ctx = auth.WithSession(ctx, sess)
	if _, err := c.syncer.SyncLines(ctx, items); err != nil {
		// Stay Idle: the guest cart must survive so the merge can retry
		return err
	}

	c.guest.Clear(ctx, guestID)
	c.markMerged(guestID)
	c.invalidateView(sess.UserID)

	c.log.Info("guest cart merged",
		zap.String("guest_id", guestID),
		zap.String("user_id", sess.UserID),
		zap.Int("lines", len(items)))
	return nil
}

// Merged reports whether the guest key already completed its merge.
func (c *Coordinator) Merged(guestID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, done := c.merged[guestID]
	return done
}

func (c *Coordinator) markMerged(guestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merged[guestID] = struct{}{}
}

func (c *Coordinator) invalidateView(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.view.Delete(ctx, userID); err != nil {
		c.log.Warn("cart view invalidate failed after merge",
			zap.String("user_id", userID), zap.Error(err))
	}
}
