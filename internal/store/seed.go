package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	"github.com/shopspring/decimal"
)

// SampleProducts returns the starter catalog, stamped with now.
func SampleProducts(now time.Time) []catalog.Product {
	return []catalog.Product{
		{
			Name:        "Laptop HP Pavilion",
			Description: "Laptop para uso profesional con procesador Intel i7",
			Barcode:     "1234567890123",
			Price:       decimal.RequireFromString("899.99"),
			Stock:       15,
			Category:    "Electrónicos",
			Image:       imageURL("https://example.com/laptop.jpg"),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Name:        "Mouse Logitech MX",
			Description: "Mouse inalámbrico ergonómico para oficina",
			Barcode:     "2345678901234",
			Price:       decimal.RequireFromString("79.99"),
			Stock:       50,
			Category:    "Accesorios",
			Image:       imageURL("https://example.com/mouse.jpg"),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Name:        "Teclado Mecánico",
			Description: "Teclado mecánico RGB para gaming",
			Barcode:     "3456789012345",
			Price:       decimal.RequireFromString("129.99"),
			Stock:       25,
			Category:    "Gaming",
			Image:       imageURL("https://example.com/teclado.jpg"),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Seed loads the sample products into an empty store. A non-empty store is left alone.
// It returns the number of products inserted.
func Seed(ctx context.Context, s ProductStore, now time.Time) (int, error) {
	_, total, err := s.FindAll(ctx, catalog.Filter{}, catalog.NewPage(1, 1))
	if err != nil {
		return 0, fmt.Errorf("failed to check store before seeding: %w", err)
	}
	if total > 0 {
		return 0, nil
	}
	inserted := 0
	for _, p := range SampleProducts(now) {
		if _, err := s.Create(ctx, p); err != nil {
			return inserted, fmt.Errorf("failed to seed product %q: %w", p.Barcode, err)
		}
		inserted++
	}
	return inserted, nil
}

func imageURL(url string) *string {
	return &url
}
