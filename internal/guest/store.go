package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

// Store is the only read/write path to guest carts. Every mutation reads
// the full cart, applies the change in memory and writes the whole blob
// back. Storage trouble never surfaces as an error: reads degrade to an
// empty cart and writes are dropped, because a broken guest cart must not
// take the storefront down with it.
type Store struct {
	storage Storage
	log     *zap.Logger
}

func NewStore(storage Storage, log *zap.Logger) *Store {
	return &Store{
		storage: storage,
		log:     log,
	}
}

func cartKey(guestID string) string {
	return fmt.Sprintf("guestcart:%s", guestID)
}

// Read returns the guest's cart. Absent, corrupt or unreadable storage
// all yield an empty cart.
func (s *Store) Read(ctx context.Context, guestID string) *domain.Cart {
	data, err := s.storage.Load(ctx, cartKey(guestID))
	if errors.Is(err, ErrNotFound) {
		return domain.EmptyCart(domain.GuestOwner)
	}
	if err != nil {
		s.log.Warn("guest cart load failed, treating as empty",
			zap.String("guest_id", guestID), zap.Error(err))
		return domain.EmptyCart(domain.GuestOwner)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.log.Warn("guest cart blob is corrupt, treating as empty",
			zap.String("guest_id", guestID), zap.Error(err))
		return domain.EmptyCart(domain.GuestOwner)
	}

	if cart.Owner == "" {
		cart.Owner = domain.GuestOwner
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return &cart
}

// Write persists the full cart, replacing whatever was stored before.
// A failed write is logged and dropped.
func (s *Store) Write(ctx context.Context, guestID string, cart *domain.Cart) {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		s.log.Warn("guest cart marshal failed, dropping write",
			zap.String("guest_id", guestID), zap.Error(err))
		return
	}
	if err := s.storage.Save(ctx, cartKey(guestID), data); err != nil {
		s.log.Warn("guest cart save failed, dropping write",
			zap.String("guest_id", guestID), zap.Error(err))
	}
}

// AddLine resolves the variant and either increments the existing
// (product, variant) line or appends a new one, clamping quantity to the
// variant's stock. An unresolvable variant aborts the mutation before
// anything is written.
func (s *Store) AddLine(ctx context.Context, guestID string, product *domain.Product, variantID string, quantity int) (*domain.Cart, error) {
	variant, err := domain.ResolveVariant(product, variantID)
	if err != nil {
		return nil, err
	}

	cart := s.Read(ctx, guestID)
	if existing := cart.FindPair(product.ID, variantID); existing != nil {
		existing.Quantity = domain.ClampQuantity(existing.Quantity+quantity, variant.Stock)
		if existing.Quantity < 1 {
			// Stock dropped to zero since the line was created.
			cart.RemoveLine(existing.ID)
		}
	} else {
		clamped := domain.ClampQuantity(quantity, variant.Stock)
		if clamped >= 1 {
			cart.Lines = append(cart.Lines, domain.CartLine{
				ID:           uuid.New().String(),
				ProductID:    product.ID,
				Product:      product,
				VariantID:    variant.ID,
				VariantLabel: variant.Label,
				UnitPrice:    variant.UnitPrice,
				Quantity:     clamped,
				AddedAt:      time.Now(),
			})
		}
	}

	s.Write(ctx, guestID, cart)
	return cart, nil
}

// RemoveLine deletes the line by ID. Absent lines are a no-op.
func (s *Store) RemoveLine(ctx context.Context, guestID, lineID string) *domain.Cart {
	cart := s.Read(ctx, guestID)
	cart.RemoveLine(lineID)
	s.Write(ctx, guestID, cart)
	return cart
}

// UpdateQuantity re-resolves the line's variant from its stored product
// snapshot and sets the quantity clamped to that variant's stock. Absent
// lines are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, guestID, lineID string, quantity int) (*domain.Cart, error) {
	cart := s.Read(ctx, guestID)
	line := cart.FindLine(lineID)
	if line == nil {
		return cart, nil
	}

	variant, err := domain.ResolveVariant(line.Product, line.VariantID)
	if err != nil {
		return nil, err
	}

	line.Quantity = domain.ClampQuantity(quantity, variant.Stock)
	if line.Quantity < 1 {
		cart.RemoveLine(line.ID)
	}

	s.Write(ctx, guestID, cart)
	return cart, nil
}

// UpdateVariant switches a line to another variant of the same product.
// When another line already targets the new (product, variant) pair the
// two merge into one with summed, clamped quantity; otherwise the line is
// rewritten in place with the new variant's label and price.
func (s *Store) UpdateVariant(ctx context.Context, guestID, lineID, newVariantID string) (*domain.Cart, error) {
	cart := s.Read(ctx, guestID)
	line := cart.FindLine(lineID)
	if line == nil {
		return cart, nil
	}

	variant, err := domain.ResolveVariant(line.Product, newVariantID)
	if err != nil {
		return nil, err
	}

	target := cart.FindPair(line.ProductID, newVariantID)
	if target != nil && target.ID != line.ID {
		// Merge into the existing pair so the cart never holds two lines
		// for the same (product, variant).
		target.Quantity = domain.ClampQuantity(target.Quantity+line.Quantity, variant.Stock)
		if target.Quantity < 1 {
			cart.RemoveLine(target.ID)
		}
		cart.RemoveLine(lineID)
	} else {
		line.VariantID = variant.ID
		line.VariantLabel = variant.Label
		line.UnitPrice = variant.UnitPrice
		line.Quantity = domain.ClampQuantity(line.Quantity, variant.Stock)
		if line.Quantity < 1 {
			cart.RemoveLine(line.ID)
		}
	}

	s.Write(ctx, guestID, cart)
	return cart, nil
}

// Clear erases the guest cart from storage entirely. Used when a merge
// completes; distinct from writing an empty cart.
func (s *Store) Clear(ctx context.Context, guestID string) {
	if err := s.storage.Delete(ctx, cartKey(guestID)); err != nil {
		s.log.Warn("guest cart delete failed",
			zap.String("guest_id", guestID), zap.Error(err))
	}
}
