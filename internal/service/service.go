// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns the page of products matching the query.
	// Returns an empty page if nothing matches.
	FindAll(ctx context.Context, query ListQuery) (*ProductPage, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindByBarcode retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product carries the barcode.
	FindByBarcode(ctx context.Context, barcode string) (*ProductDto, error)

	// Create adds a new product to the system.
	// Returns ErrDuplicateBarcode if the barcode is already taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the supplied fields into an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrDuplicateBarcode if another product holds the new barcode.
	Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID and returns the removed product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*ProductDto, error)

	// Categories returns every category with its product count.
	Categories(ctx context.Context) ([]CategoryDto, error)

	// Stats returns the inventory summary.
	Stats(ctx context.Context) (*StatsDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository      store.ProductStore
	publisher       messaging.Publisher
	productsCounter metric.Int64Counter
	now             func() time.Time
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("inventory-service")
	productsCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	return &Service{
		repository:      repo,
		publisher:       publisher,
		productsCounter: productsCounter,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// FindAll filters and paginates the products.
func (s *Service) FindAll(ctx context.Context, query ListQuery) (*ProductPage, error) {
	page := catalog.NewPage(query.Page, query.Limit)
	products, total, err := s.repository.FindAll(ctx, query.toFilter(), page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return &ProductPage{
		Products:   productDTOs,
		Pagination: catalog.NewPagination(page, total),
	}, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// FindByBarcode retrieves a product by its barcode and returns it as a ProductDto.
// Returns ErrProductNotFound if no product carries the barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*ProductDto, error) {
	product, err := s.repository.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by barcode %s: %w", barcode, err)
	}

	return toDto(product), nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns ErrDuplicateBarcode if the barcode is already taken.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.ensureBarcodeFree(ctx, product.Barcode, 0); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	now := s.now()
	var image *string
	if product.Image != nil && *product.Image != "" {
		image = product.Image
	}
	created, err := s.repository.Create(ctx, catalog.Product{
		Name:        product.Name,
		Description: product.Description,
		Barcode:     product.Barcode,
		Price:       catalog.PriceFromFloat(*product.Price),
		Stock:       *product.Stock,
		Category:    product.Category,
		Image:       image,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.NewProductCreated(toEvent(ctx, created, now)))
	// increase the number of created products
	s.productsCounter.Add(ctx, 1)

	return toDto(created), nil
}

// Update merges the supplied fields into the product and returns the result as a ProductDto.
// An empty payload returns the product unchanged.
func (s *Service) Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error) {
	current, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	patch := product.toPatch()
	if patch.IsEmpty() {
		return toDto(current), nil
	}
	if patch.Barcode != nil && *patch.Barcode != current.Barcode {
		if err := s.ensureBarcodeFree(ctx, *patch.Barcode, id); err != nil {
			return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
		}
	}

	now := s.now()
	updated, err := s.repository.Update(ctx, id, patch, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	s.publish(ctx, events.NewProductUpdated(toEvent(ctx, updated, now)))
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID and returns the deleted product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*ProductDto, error) {
	deleted, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}

	s.publish(ctx, events.NewProductDeleted(toEvent(ctx, deleted, s.now())))
	return toDto(deleted), nil
}

// Categories returns every category with its product count, in order of first appearance.
func (s *Service) Categories(ctx context.Context) ([]CategoryDto, error) {
	counts, err := s.repository.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	categories := make([]CategoryDto, len(counts))
	for i, c := range counts {
		categories[i] = CategoryDto{Name: c.Name, Count: c.Count}
	}
	return categories, nil
}

// Stats returns the inventory summary.
func (s *Service) Stats(ctx context.Context) (*StatsDto, error) {
	stats, err := s.repository.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return toStatsDto(stats), nil
}

// ensureBarcodeFree returns ErrDuplicateBarcode if a product other than ownerID holds the barcode.
func (s *Service) ensureBarcodeFree(ctx context.Context, barcode string, ownerID int64) error {
	existing, err := s.repository.FindByBarcode(ctx, barcode)
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check barcode %s: %w", barcode, err)
	case existing.ID != ownerID:
		return fmt.Errorf("barcode %s belongs to product %d: %w", barcode, existing.ID, perrors.ErrDuplicateBarcode)
	default:
		return nil
	}
}

// publish sends the event. The change is already stored, so failures are only logged.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

func toEvent(ctx context.Context, p *catalog.Product, at time.Time) events.ProductEvent {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return events.ProductEvent{
		Carrier:    carrier,
		ProductID:  p.ID,
		Barcode:    p.Barcode,
		Name:       p.Name,
		Price:      p.Price.InexactFloat64(),
		Stock:      p.Stock,
		Category:   p.Category,
		OccurredAt: at,
	}
}
