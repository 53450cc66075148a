package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product    *service.ProductDto
	page       *service.ProductPage
	categories []service.CategoryDto
	stats      *service.StatsDto
	error      error

	lastQuery  service.ListQuery
	lastCreate service.ProductCreateDto
	lastUpdate service.ProductUpdateDto
}

func (m *mockProductService) FindAll(_ context.Context, query service.ListQuery) (*service.ProductPage, error) {
	m.lastQuery = query
	return m.page, m.error
}

func (m *mockProductService) FindByID(_ context.Context, _ int64) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockProductService) FindByBarcode(_ context.Context, _ string) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockProductService) Create(_ context.Context, dto service.ProductCreateDto) (*service.ProductDto, error) {
	m.lastCreate = dto
	return m.product, m.error
}

func (m *mockProductService) Update(_ context.Context, _ int64, dto service.ProductUpdateDto) (*service.ProductDto, error) {
	m.lastUpdate = dto
	return m.product, m.error
}

func (m *mockProductService) DeleteByID(_ context.Context, _ int64) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockProductService) Categories(_ context.Context) ([]service.CategoryDto, error) {
	return m.categories, m.error
}

func (m *mockProductService) Stats(_ context.Context) (*service.StatsDto, error) {
	return m.stats, m.error
}

var _ service.ProductService = (*mockProductService)(nil)

func newRouter(svc service.ProductService, exposeErrors bool) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(svc, logger, exposeErrors).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func mouse() *service.ProductDto {
	return &service.ProductDto{
		ID:          2,
		Name:        "Mouse Logitech MX",
		Description: "Mouse inalámbrico ergonómico",
		Barcode:     "2345678901234",
		Price:       79.99,
		Stock:       50,
		Category:    "Accesorios",
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

const mouseJSON = `{"id":2,"nombre":"Mouse Logitech MX","descripcion":"Mouse inalámbrico ergonómico","codigoBarras":"2345678901234","precio":79.99,"stock":50,"categoria":"Accesorios","imagen":null,"fechaCreacion":"2025-05-20T10:30:00Z","fechaActualizacion":"2025-05-20T10:30:00Z"}`

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockProductService
		productID    string
		exposeErrors bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  &mockProductService{product: mouse()},
			productID:    "2",
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"data":` + mouseJSON + `}`,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			productID:    "999",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"error":"Product not found","message":"No product with ID 999"}`,
		},
		{
			name:         "Error - invalid id",
			mockService:  &mockProductService{},
			productID:    "-3",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid ID: -3"}`,
		},
		{
			name:         "Error - service error hidden",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			productID:    "2",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"error":"Failed to retrieve product with ID 2"}`,
		},
		{
			name:         "Error - service error exposed",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			productID:    "2",
			exposeErrors: true,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"error":"Failed to retrieve product with ID 2","message":"connection refused"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(tc.mockService, tc.exposeErrors)

			// when
			rr := serve(router, http.MethodGet, "/api/productos/"+tc.productID, "")

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_FindByBarcode(t *testing.T) {
	// given
	router := newRouter(&mockProductService{error: perrors.ErrProductNotFound}, false)

	// when
	rr := serve(router, http.MethodGet, "/api/productos/codigo/0000000000", "")

	// then
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Product not found","message":"No product with barcode 0000000000"}`, rr.Body.String())

	// given
	router = newRouter(&mockProductService{product: mouse()}, false)

	// when
	rr = serve(router, http.MethodGet, "/api/productos/codigo/2345678901234", "")

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":`+mouseJSON+`}`, rr.Body.String())
}

func Test_Handler_FindAll(t *testing.T) {
	testCases := []struct {
		name          string
		target        string
		mockService   *mockProductService
		expectedCode  int
		expectedBody  string
		expectedQuery service.ListQuery
	}{
		{
			name:   "Success - defaults and empty page",
			target: "/api/productos",
			mockService: &mockProductService{page: &service.ProductPage{
				Products:   []service.ProductDto{},
				Pagination: catalog.Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 10},
			}},
			expectedCode:  http.StatusOK,
			expectedBody:  `{"success":true,"data":[],"pagination":{"currentPage":1,"totalPages":0,"totalItems":0,"itemsPerPage":10},"filters":{}}`,
			expectedQuery: service.ListQuery{Page: 1, Limit: 10},
		},
		{
			name:   "Success - filters echoed",
			target: "/api/productos?categoria=acc&precio_min=50&search=mouse&page=1&limit=5",
			mockService: &mockProductService{page: &service.ProductPage{
				Products:   []service.ProductDto{*mouse()},
				Pagination: catalog.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: 5},
			}},
			expectedCode:  http.StatusOK,
			expectedBody:  `{"success":true,"data":[` + mouseJSON + `],"pagination":{"currentPage":1,"totalPages":1,"totalItems":1,"itemsPerPage":5},"filters":{"categoria":"acc","precio_min":"50","search":"mouse"}}`,
			expectedQuery: service.ListQuery{Category: "acc", PriceMin: floatPtr(50), Search: "mouse", Page: 1, Limit: 5},
		},
		{
			name:         "Error - malformed parameters",
			target:       "/api/productos?precio_max=cheap&limit=0",
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid query parameters","details":["precio_max must be a number greater than or equal to 0","limit must be an integer greater than 0"]}`,
		},
		{
			name:         "Error - service error",
			target:       "/api/productos",
			mockService:  &mockProductService{error: errors.New("db down")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"error":"Failed to fetch products"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(tc.mockService, false)

			// when
			rr := serve(router, http.MethodGet, tc.target, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedQuery, tc.mockService.lastQuery)
			}
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	validBody := `{"nombre":"  Mouse Logitech MX ","descripcion":"Mouse inalámbrico ergonómico","codigoBarras":"2345678901234","precio":79.99,"stock":50,"categoria":"Accesorios"}`

	testCases := []struct {
		name         string
		body         string
		mockService  *mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			body:         validBody,
			mockService:  &mockProductService{product: mouse()},
			expectedCode: http.StatusCreated,
			expectedBody: `{"success":true,"message":"Product created successfully","data":` + mouseJSON + `}`,
		},
		{
			name:         "Error - missing fields",
			body:         `{}`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["nombre is required","descripcion is required","codigoBarras is required","precio is required","stock is required","categoria is required"]}`,
		},
		{
			name:         "Error - malformed body",
			body:         `{"nombre":`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid request body","message":"unexpected EOF"}`,
		},
		{
			name:         "Error - duplicate barcode",
			body:         validBody,
			mockService:  &mockProductService{error: perrors.ErrDuplicateBarcode},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Duplicate barcode","message":"Another product already uses barcode 2345678901234"}`,
		},
		{
			name:         "Error - price rounding to zero",
			body:         `{"nombre":"Goma","descripcion":"Goma de borrar blanca","codigoBarras":"2345678901234","precio":0.001,"stock":5,"categoria":"Oficina"}`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["precio must be a number greater than 0"]}`,
		},
		{
			name:         "Error - price rounding above the maximum",
			body:         `{"nombre":"Goma","descripcion":"Goma de borrar blanca","codigoBarras":"2345678901234","precio":999999.995,"stock":5,"categoria":"Oficina"}`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["precio must not exceed 999999.99"]}`,
		},
		{
			name:         "Error - rejected by store constraint",
			body:         validBody,
			mockService:  &mockProductService{error: perrors.ErrInvalidProduct},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["product violates a data constraint"]}`,
		},
		{
			name:         "Error - service error",
			body:         validBody,
			mockService:  &mockProductService{error: errors.New("db down")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"error":"Failed to create product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(tc.mockService, false)

			// when
			rr := serve(router, http.MethodPost, "/api/productos", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}

	t.Run("Success - text fields trimmed", func(t *testing.T) {
		mockService := &mockProductService{product: mouse()}
		rr := serve(newRouter(mockService, false), http.MethodPost, "/api/productos", validBody)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Mouse Logitech MX", mockService.lastCreate.Name)
	})

	t.Run("Success - price rounded before reaching the service", func(t *testing.T) {
		mockService := &mockProductService{product: mouse()}
		body := strings.Replace(validBody, `"precio":79.99`, `"precio":0.005`, 1)
		rr := serve(newRouter(mockService, false), http.MethodPost, "/api/productos", body)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.InDelta(t, 0.01, *mockService.lastCreate.Price, 1e-9)
	})
}

func Test_Handler_Update(t *testing.T) {
	testCases := []struct {
		name         string
		id           string
		body         string
		mockService  *mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			id:           "2",
			body:         `{"stock":3}`,
			mockService:  &mockProductService{product: mouse()},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"message":"Product updated successfully","data":` + mouseJSON + `}`,
		},
		{
			name:         "Error - invalid fields",
			id:           "2",
			body:         `{"precio":-1,"imagen":"not-a-url"}`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["precio must be a number greater than 0","imagen must be a valid URL ending in .jpg, .jpeg, .png, .gif or .webp"]}`,
		},
		{
			name:         "Error - price rounding to zero",
			id:           "2",
			body:         `{"precio":0.004}`,
			mockService:  &mockProductService{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["precio must be a number greater than 0"]}`,
		},
		{
			name:         "Error - rejected by store constraint",
			id:           "2",
			body:         `{"precio":10}`,
			mockService:  &mockProductService{error: perrors.ErrInvalidProduct},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Invalid input data","details":["product violates a data constraint"]}`,
		},
		{
			name:         "Error - product not found",
			id:           "7",
			body:         `{"stock":3}`,
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"error":"Product not found","message":"No product with ID 7"}`,
		},
		{
			name:         "Error - duplicate barcode",
			id:           "2",
			body:         `{"codigoBarras":"1234567890123"}`,
			mockService:  &mockProductService{error: perrors.ErrDuplicateBarcode},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"error":"Duplicate barcode","message":"Another product already uses barcode 1234567890123"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(tc.mockService, false)

			// when
			rr := serve(router, http.MethodPut, "/api/productos/"+tc.id, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}

	t.Run("Success - null image reaches the service as a removal", func(t *testing.T) {
		mockService := &mockProductService{product: mouse()}
		rr := serve(newRouter(mockService, false), http.MethodPut, "/api/productos/2", `{"imagen":null}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, mockService.lastUpdate.Image.IsSpecified())
		assert.True(t, mockService.lastUpdate.Image.IsNull())
		assert.Nil(t, mockService.lastUpdate.Stock)
	})
}

func Test_Handler_DeleteByID(t *testing.T) {
	// given
	router := newRouter(&mockProductService{product: mouse()}, false)

	// when
	rr := serve(router, http.MethodDelete, "/api/productos/2", "")

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Product deleted successfully","data":`+mouseJSON+`}`, rr.Body.String())

	// given
	router = newRouter(&mockProductService{error: perrors.ErrProductNotFound}, false)

	// when
	rr = serve(router, http.MethodDelete, "/api/productos/2", "")

	// then
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func Test_Handler_CategoriesAndStats(t *testing.T) {
	// given
	mockService := &mockProductService{
		categories: []service.CategoryDto{{Name: "Electrónicos", Count: 1}, {Name: "Accesorios", Count: 2}},
		stats: &service.StatsDto{
			TotalProducts:    3,
			TotalStock:       90,
			AveragePrice:     369.99,
			LowStockProducts: 0,
			TotalCategories:  2,
			MostExpensive:    &service.PriceRefDto{ID: 1, Name: "Laptop HP Pavilion", Price: 899.99},
			Cheapest:         &service.PriceRefDto{ID: 2, Name: "Mouse Logitech MX", Price: 79.99},
		},
	}
	router := newRouter(mockService, false)

	// when
	categories := serve(router, http.MethodGet, "/api/productos/categorias", "")
	stats := serve(router, http.MethodGet, "/api/productos/stats", "")

	// then
	assert.Equal(t, http.StatusOK, categories.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"nombre":"Electrónicos","cantidad":1},{"nombre":"Accesorios","cantidad":2}]}`, categories.Body.String())
	assert.Equal(t, http.StatusOK, stats.Code)
	assert.JSONEq(t, `{"success":true,"data":{"totalProducts":3,"totalStock":90,"averagePrice":369.99,"lowStockProducts":0,"totalCategories":2,"mostExpensive":{"id":1,"nombre":"Laptop HP Pavilion","precio":899.99},"cheapest":{"id":2,"nombre":"Mouse Logitech MX","precio":79.99}}}`, stats.Body.String())
}

func Test_Handler_StaticRoutes(t *testing.T) {
	router := newRouter(&mockProductService{}, false)

	t.Run("docs", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/api/productos/docs", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"title":"Products API - Documentation"`)
	})

	t.Run("info", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Products API - Inventory System","version":"1.0.0","endpoints":{"productos":"/api/productos","documentacion":"/api/productos/docs"}}`, rr.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/api/unknown", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Route not found","message":"Route /api/unknown does not exist"}`, rr.Body.String())
	})

	t.Run("unsupported method", func(t *testing.T) {
		rr := serve(router, http.MethodPatch, "/api/productos/2", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Method not allowed","message":"Method PATCH is not supported for /api/productos/2"}`, rr.Body.String())
	})
}

func floatPtr(f float64) *float64 { return &f }
