package catalog

import "github.com/shopspring/decimal"

// CategoryCount is the number of products in a category.
type CategoryCount struct {
	Name  string
	Count int
}

// PriceRef identifies a product by its price.
type PriceRef struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Stats summarizes the whole inventory.
type Stats struct {
	TotalProducts   int
	TotalStock      int
	AveragePrice    decimal.Decimal
	LowStock        int
	TotalCategories int
	MostExpensive   *PriceRef
	Cheapest        *PriceRef
}

// CountCategories groups products by category in order of first appearance.
func CountCategories(products []Product) []CategoryCount {
	counts := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			index[p.Category] = len(counts)
			counts = append(counts, CategoryCount{Name: p.Category, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// Summarize computes the inventory statistics. Ties on price keep the first product seen.
func Summarize(products []Product) Stats {
	stats := Stats{
		TotalProducts: len(products),
		AveragePrice:  decimal.Zero,
	}
	if len(products) == 0 {
		return stats
	}

	categories := make(map[string]struct{})
	sum := decimal.Zero
	for i, p := range products {
		stats.TotalStock += p.Stock
		if p.Stock < LowStockThreshold {
			stats.LowStock++
		}
		categories[p.Category] = struct{}{}
		sum = sum.Add(p.Price)

		if i == 0 || p.Price.GreaterThan(stats.MostExpensive.Price) {
			stats.MostExpensive = &PriceRef{ID: p.ID, Name: p.Name, Price: p.Price}
		}
		if i == 0 || p.Price.LessThan(stats.Cheapest.Price) {
			stats.Cheapest = &PriceRef{ID: p.ID, Name: p.Name, Price: p.Price}
		}
	}
	stats.TotalCategories = len(categories)
	stats.AveragePrice = RoundPrice(sum.Div(decimal.NewFromInt(int64(len(products)))))
	return stats
}
