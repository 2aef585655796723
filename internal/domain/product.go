package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrVariantNotFound = errors.New("variant not found on product")

// Variant is a purchasable size/option of a product. It is an immutable
// snapshot taken from the catalog at read time; Stock is advisory on this
// side of the wire and authoritative only on the commerce backend.
type Variant struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ListPrice decimal.Decimal `json:"list_price"`
	Stock     int             `json:"stock"`
	Default   bool            `json:"default"`
}

type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"image_url"`
	Variants []Variant `json:"variants"`
}

// ResolveVariant looks up a variant by ID on the given product.
// Returns ErrVariantNotFound when the product has no such variant;
// callers must abort the mutation they were about to perform.
func ResolveVariant(p *Product, variantID string) (Variant, error) {
	if p == nil {
		return Variant{}, ErrVariantNotFound
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, nil
		}
	}
	return Variant{}, ErrVariantNotFound
}

// DefaultVariant returns the variant flagged as default, falling back to
// the first variant when none is flagged.
func DefaultVariant(p *Product) (Variant, error) {
	if p == nil || len(p.Variants) == 0 {
		return Variant{}, ErrVariantNotFound
	}
	for _, v := range p.Variants {
		if v.Default {
			return v, nil
		}
	}
	return p.Variants[0], nil
}
