package service

import (
	"strings"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	"github.com/oapi-codegen/nullable"
	"github.com/shopspring/decimal"
)

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Barcode     string    `json:"codigoBarras"`
	Price       float64   `json:"precio"`
	Stock       int       `json:"stock"`
	Category    string    `json:"categoria"`
	Image       *string   `json:"imagen"`
	CreatedAt   time.Time `json:"fechaCreacion"`
	UpdatedAt   time.Time `json:"fechaActualizacion"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name        string   `json:"nombre"       validate:"required,min=2,max=100"`
	Description string   `json:"descripcion"  validate:"required,min=10,max=500"`
	Barcode     string   `json:"codigoBarras" validate:"required,barcode"`
	Price       *float64 `json:"precio"       validate:"required,gt=0,lte=999999.99"`
	Stock       *int     `json:"stock"        validate:"required,gte=0,lte=999999"`
	Category    string   `json:"categoria"    validate:"required,min=2,max=50"`
	Image       *string  `json:"imagen"       validate:"omitempty,imageurl"`
}

// Normalize trims surrounding whitespace from every text field and rounds the price
// to the stored precision, so validation sees the value that will be persisted.
func (d *ProductCreateDto) Normalize() {
	roundPrice(d.Price)
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Barcode = strings.TrimSpace(d.Barcode)
	d.Category = strings.TrimSpace(d.Category)
	trimPtr(d.Image)
}

// ProductUpdateDto carries a partial update. Absent fields are left unchanged.
// An image set to null or to an empty string removes the image.
type ProductUpdateDto struct {
	Name        *string                   `json:"nombre"       validate:"omitnil,min=2,max=100"`
	Description *string                   `json:"descripcion"  validate:"omitnil,min=10,max=500"`
	Barcode     *string                   `json:"codigoBarras" validate:"omitnil,barcode"`
	Price       *float64                  `json:"precio"       validate:"omitnil,gt=0,lte=999999.99"`
	Stock       *int                      `json:"stock"        validate:"omitnil,gte=0,lte=999999"`
	Category    *string                   `json:"categoria"    validate:"omitnil,min=2,max=50"`
	Image       nullable.Nullable[string] `json:"imagen"       validate:"omitempty,imageurl"`
}

// Normalize trims surrounding whitespace from every supplied text field and rounds the price.
func (d *ProductUpdateDto) Normalize() {
	roundPrice(d.Price)
	trimPtr(d.Name)
	trimPtr(d.Description)
	trimPtr(d.Barcode)
	trimPtr(d.Category)
	if d.Image.IsSpecified() && !d.Image.IsNull() {
		d.Image.Set(strings.TrimSpace(d.Image.MustGet()))
	}
}

// toPatch converts the payload into a catalog.Patch.
func (d ProductUpdateDto) toPatch() catalog.Patch {
	patch := catalog.Patch{
		Name:        d.Name,
		Description: d.Description,
		Barcode:     d.Barcode,
		Stock:       d.Stock,
		Category:    d.Category,
	}
	if d.Price != nil {
		price := catalog.PriceFromFloat(*d.Price)
		patch.Price = &price
	}
	if d.Image.IsSpecified() {
		image := ""
		if !d.Image.IsNull() {
			image = d.Image.MustGet()
		}
		patch.Image = &image
	}
	return patch
}

// ListQuery holds the listing criteria as received from the client.
type ListQuery struct {
	Category string
	PriceMin *float64
	PriceMax *float64
	StockMin *int
	Search   string
	Page     int
	Limit    int
}

func (q ListQuery) toFilter() catalog.Filter {
	filter := catalog.Filter{
		Category: q.Category,
		StockMin: q.StockMin,
		Search:   q.Search,
	}
	if q.PriceMin != nil {
		v := decimal.NewFromFloat(*q.PriceMin)
		filter.PriceMin = &v
	}
	if q.PriceMax != nil {
		v := decimal.NewFromFloat(*q.PriceMax)
		filter.PriceMax = &v
	}
	return filter
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []ProductDto
	Pagination catalog.Pagination
}

// CategoryDto is a category with the number of products in it.
type CategoryDto struct {
	Name  string `json:"nombre"`
	Count int    `json:"cantidad"`
}

// PriceRefDto identifies the product holding a price extreme.
type PriceRefDto struct {
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
}

// StatsDto is the inventory summary.
type StatsDto struct {
	TotalProducts    int          `json:"totalProducts"`
	TotalStock       int          `json:"totalStock"`
	AveragePrice     float64      `json:"averagePrice"`
	LowStockProducts int          `json:"lowStockProducts"`
	TotalCategories  int          `json:"totalCategories"`
	MostExpensive    *PriceRefDto `json:"mostExpensive"`
	Cheapest         *PriceRefDto `json:"cheapest"`
}

// toDto converts a catalog.Product to a ProductDto.
func toDto(product *catalog.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Barcode:     product.Barcode,
		Price:       product.Price.InexactFloat64(),
		Stock:       product.Stock,
		Category:    product.Category,
		Image:       product.Image,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func toPriceRefDto(ref *catalog.PriceRef) *PriceRefDto {
	if ref == nil {
		return nil
	}
	return &PriceRefDto{ID: ref.ID, Name: ref.Name, Price: ref.Price.InexactFloat64()}
}

func toStatsDto(stats catalog.Stats) *StatsDto {
	return &StatsDto{
		TotalProducts:    stats.TotalProducts,
		TotalStock:       stats.TotalStock,
		AveragePrice:     stats.AveragePrice.InexactFloat64(),
		LowStockProducts: stats.LowStock,
		TotalCategories:  stats.TotalCategories,
		MostExpensive:    toPriceRefDto(stats.MostExpensive),
		Cheapest:         toPriceRefDto(stats.Cheapest),
	}
}

func roundPrice(price *float64) {
	if price != nil {
		*price = catalog.PriceFromFloat(*price).InexactFloat64()
	}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
