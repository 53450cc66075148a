package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPage is the page returned when the client does not ask for one.
	DefaultPage = 1
	// DefaultLimit is the page size used when the client does not ask for one.
	DefaultLimit = 10
)

// Filter holds the listing criteria. Zero values impose no constraint.
// All supplied criteria must hold for a product to match.
type Filter struct {
	// Category matches products whose category contains it, ignoring case.
	Category string
	// PriceMin and PriceMax are inclusive bounds.
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	// StockMin is an inclusive lower bound on stock.
	StockMin *int
	// Search matches products whose name or description contains it, ignoring case.
	Search string
}

// IsEmpty reports whether the filter has no criteria.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.PriceMin == nil && f.PriceMax == nil && f.StockMin == nil && f.Search == ""
}

// Matches reports whether the product satisfies every supplied criterion.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && !containsFold(p.Category, f.Category) {
		return false
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.StockMin != nil && p.Stock < *f.StockMin {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
		return false
	}
	return true
}

// Apply returns the products matching the filter, preserving their order.
func (f Filter) Apply(products []Product) []Product {
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Page selects a window of a result set. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// NewPage returns a page, substituting defaults for non-positive values.
func NewPage(number, limit int) Page {
	if number <= 0 {
		number = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination describes the page returned to the client.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination builds the metadata for a page over totalItems results.
func NewPagination(page Page, totalItems int) Pagination {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = (totalItems + page.Limit - 1) / page.Limit
	}
	return Pagination{
		CurrentPage:  page.Number,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: page.Limit,
	}
}

// Paginate returns the slice of items on the page. A page past the end is empty.
func Paginate[T any](items []T, page Page) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+page.Limit, len(items))
	return items[start:end]
}
