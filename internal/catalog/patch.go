package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patch is a sparse set of field changes. Nil fields are left untouched.
// A non-nil empty Image clears the product image.
type Patch struct {
	Name        *string
	Description *string
	Barcode     *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Image       *string
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Barcode == nil && p.Price == nil &&
		p.Stock == nil && p.Category == nil && p.Image == nil
}

// ClearsImage reports whether the patch removes the image.
func (p Patch) ClearsImage() bool {
	return p.Image != nil && *p.Image == ""
}

// Apply returns a copy of product with the patch merged in and UpdatedAt set to now.
// ID and CreatedAt are never changed. An empty patch returns the product unchanged.
func (p Patch) Apply(product Product, now time.Time) Product {
	if p.IsEmpty() {
		return product
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Barcode != nil {
		product.Barcode = *p.Barcode
	}
	if p.Price != nil {
		product.Price = RoundPrice(*p.Price)
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Image != nil {
		if p.ClearsImage() {
			product.Image = nil
		} else {
			image := *p.Image
			product.Image = &image
		}
	}
	product.UpdatedAt = now
	return product
}
