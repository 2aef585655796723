package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuestOwner is the owner sentinel for carts that belong to an
// unauthenticated session.
const GuestOwner = "guest"

// CartLine is one (product, variant, quantity) entry in a cart.
//
// Guest lines embed the full product snapshot because nothing server-side
// can resolve the product for them; authenticated lines carry only the
// product ID. Label and unit price are denormalized copies taken at
// selection time, so they can drift from the catalog until checkout
// re-validates them.
type CartLine struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Product      *Product        `json:"product,omitempty"`
	VariantID    string          `json:"variant_id"`
	VariantLabel string          `json:"variant_label"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	AddedAt      time.Time       `json:"added_at"`
}

type Cart struct {
	Owner     string     `json:"owner"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EmptyCart returns a cart with no lines for the given owner.
func EmptyCart(owner string) *Cart {
	now := time.Now()
	return &Cart{
		Owner:     owner,
		Lines:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindLine returns a pointer into Lines for the line with the given ID,
// or nil when absent.
func (c *Cart) FindLine(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// FindPair returns a pointer into Lines for the line matching the
// (product, variant) pair, or nil when absent. At most one such line can
// exist in a well-formed cart.
func (c *Cart) FindPair(productID, variantID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].VariantID == variantID {
			return &c.Lines[i]
		}
	}
	return nil
}

// RemoveLine deletes the line with the given ID, preserving order.
// No-op when the line is absent.
func (c *Cart) RemoveLine(lineID string) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Subtotal sums unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ClampQuantity reduces a requested quantity down to the available stock.
// A non-positive result means the variant cannot hold a line at all.
func ClampQuantity(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
