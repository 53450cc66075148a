// Package catalog holds the product model and the in-process rules applied to it:
// filtering, pagination, partial updates and aggregation.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fraction digits kept for prices.
const PriceScale = 2

// LowStockThreshold is the stock level below which a product counts as low on stock.
const LowStockThreshold = 10

// Product represents a product entity in the inventory.
type Product struct {
	ID          int64
	Name        string
	Description string
	Barcode     string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Image       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoundPrice rounds a price to PriceScale fraction digits, half away from zero.
func RoundPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PriceScale)
}

// PriceFromFloat converts a wire price into a rounded decimal.
func PriceFromFloat(price float64) decimal.Decimal {
	return RoundPrice(decimal.NewFromFloat(price))
}
