package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	"github.com/abgdnv/inventory/internal/errors"
)

// inMemory implements ProductStore using a slice kept in ID order.
type inMemory struct {
	mu       sync.RWMutex
	products []catalog.Product
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore.
// IDs start at 1 and are never reused.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make([]catalog.Product, 0),
		nextID:   1,
	}
}

// FindAll filters the products and returns the requested page.
func (s *inMemory) FindAll(_ context.Context, filter catalog.Filter, page catalog.Page) ([]catalog.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := filter.Apply(s.products)
	list := catalog.Paginate(matched, page)
	result := make([]catalog.Product, len(list))
	for i, p := range list {
		result[i] = clone(p)
	}
	return result, len(matched), nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := clone(s.products[i])
	return &p, nil
}

// FindByBarcode retrieves a product by its barcode.
func (s *inMemory) FindByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfBarcode(barcode)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := clone(s.products[i])
	return &p, nil
}

// Create adds a new product and assigns the next ID.
func (s *inMemory) Create(_ context.Context, product catalog.Product) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfBarcode(product.Barcode) >= 0 {
		return nil, errors.ErrDuplicateBarcode
	}
	product.ID = s.nextID
	product.Price = catalog.RoundPrice(product.Price)
	s.nextID++
	s.products = append(s.products, clone(product))
	return &product, nil
}

// Update merges the patch into an existing product.
func (s *inMemory) Update(_ context.Context, id int64, patch catalog.Patch, now time.Time) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	if patch.Barcode != nil {
		if j := s.indexOfBarcode(*patch.Barcode); j >= 0 && j != i {
			return nil, errors.ErrDuplicateBarcode
		}
	}
	updated := patch.Apply(s.products[i], now)
	s.products[i] = updated
	p := clone(updated)
	return &p, nil
}

// DeleteByID removes a product by its ID and returns it.
func (s *inMemory) DeleteByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	deleted := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	return &deleted, nil
}

// Categories counts the products per category.
func (s *inMemory) Categories(_ context.Context) ([]catalog.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return catalog.CountCategories(s.products), nil
}

// Stats summarizes the stored products.
func (s *inMemory) Stats(_ context.Context) (catalog.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return catalog.Summarize(s.products), nil
}

// indexOf returns the position of the product with the given ID, or -1.
// Products are appended with increasing IDs, so the slice stays sorted.
func (s *inMemory) indexOf(id int64) int {
	i, found := slices.BinarySearchFunc(s.products, id, func(p catalog.Product, id int64) int {
		return cmp.Compare(p.ID, id)
	})
	if !found {
		return -1
	}
	return i
}

func (s *inMemory) indexOfBarcode(barcode string) int {
	return slices.IndexFunc(s.products, func(p catalog.Product) bool {
		return p.Barcode == barcode
	})
}

// clone copies the product so callers never share the image pointer with the store.
func clone(p catalog.Product) catalog.Product {
	if p.Image != nil {
		image := *p.Image
		p.Image = &image
	}
	return p
}
