// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Every implementation enumerates products in ascending ID order.
type ProductStore interface {
	// FindAll returns the page of products matching the filter and the total number of matches.
	// Returns an empty slice if nothing matches.
	FindAll(ctx context.Context, filter catalog.Filter, page catalog.Page) ([]catalog.Product, int, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)

	// FindByBarcode retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product carries the barcode.
	FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)

	// Create stores a new product and assigns its ID.
	// Returns ErrDuplicateBarcode if the barcode is already taken.
	Create(ctx context.Context, product catalog.Product) (*catalog.Product, error)

	// Update merges the patch into the product and stamps it with now.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrDuplicateBarcode if another product holds the new barcode.
	Update(ctx context.Context, id int64, patch catalog.Patch, now time.Time) (*catalog.Product, error)

	// DeleteByID removes a product and returns the removed record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*catalog.Product, error)

	// Categories returns product counts per category in order of first appearance.
	Categories(ctx context.Context) ([]catalog.CategoryCount, error)

	// Stats returns the inventory summary.
	Stats(ctx context.Context) (catalog.Stats, error)
}
