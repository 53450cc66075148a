package rest

import (
	"net/http"

	"github.com/abgdnv/inventory/internal/catalog"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/pkg/web"
)

// listFilters echoes the filter parameters exactly as the client sent them.
type listFilters struct {
	Category string `json:"categoria,omitempty"`
	PriceMin string `json:"precio_min,omitempty"`
	PriceMax string `json:"precio_max,omitempty"`
	StockMin string `json:"stock_min,omitempty"`
	Search   string `json:"search,omitempty"`
}

// parseListQuery reads the listing parameters of r.
// It returns one message per malformed parameter.
func parseListQuery(r *http.Request) (service.ListQuery, listFilters, []string) {
	q := web.NewQueryParams(r)
	filters := listFilters{
		Category: q.String("categoria"),
		PriceMin: q.String("precio_min"),
		PriceMax: q.String("precio_max"),
		StockMin: q.String("stock_min"),
		Search:   q.String("search"),
	}
	query := service.ListQuery{
		Category: filters.Category,
		PriceMin: q.OptionalFloat("precio_min", web.Gte(0.0), "greater than or equal to 0"),
		PriceMax: q.OptionalFloat("precio_max", web.Gte(0.0), "greater than or equal to 0"),
		StockMin: q.OptionalInt("stock_min", web.Gte[int64](0), "greater than or equal to 0"),
		Search:   filters.Search,
		Page:     q.Int("page", catalog.DefaultPage, web.Gt[int64](0), "greater than 0"),
		Limit:    q.Int("limit", catalog.DefaultLimit, web.Gt[int64](0), "greater than 0"),
	}
	return query, filters, q.Errors()
}
