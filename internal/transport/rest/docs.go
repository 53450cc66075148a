package rest

import (
	"net/http"

	"github.com/abgdnv/inventory/pkg/web"
)

const apiVersion = "1.0.0"

type endpointDoc struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Description string            `json:"description"`
	QueryParams map[string]string `json:"query_params,omitempty"`
	Body        map[string]string `json:"body,omitempty"`
}

type apiDoc struct {
	Title     string        `json:"title"`
	Version   string        `json:"version"`
	Endpoints []endpointDoc `json:"endpoints"`
}

var productFields = map[string]string{
	"nombre":       "string (required, 2-100 characters)",
	"descripcion":  "string (required, 10-500 characters)",
	"codigoBarras": "string (required, unique, 10-15 digits)",
	"precio":       "number (required, > 0, <= 999999.99)",
	"stock":        "integer (required, 0-999999)",
	"categoria":    "string (required, 2-50 characters)",
	"imagen":       "string (optional, http(s) URL ending in .jpg, .jpeg, .png, .gif or .webp)",
}

var docs = apiDoc{
	Title:   "Products API - Documentation",
	Version: apiVersion,
	Endpoints: []endpointDoc{
		{
			Method:      http.MethodGet,
			Path:        basePath,
			Description: "List products",
			QueryParams: map[string]string{
				"categoria":  "Filter by category (substring, case-insensitive)",
				"precio_min": "Minimum price",
				"precio_max": "Maximum price",
				"stock_min":  "Minimum stock",
				"search":     "Search in name or description",
				"page":       "Page number, default 1",
				"limit":      "Items per page, default 10",
			},
		},
		{Method: http.MethodGet, Path: basePath + "/{id}", Description: "Get a product by ID"},
		{Method: http.MethodGet, Path: basePath + "/codigo/{codigoBarras}", Description: "Get a product by barcode"},
		{Method: http.MethodPost, Path: basePath, Description: "Create a product", Body: productFields},
		{Method: http.MethodPut, Path: basePath + "/{id}", Description: "Update the supplied fields of a product; imagen null or empty removes the image"},
		{Method: http.MethodDelete, Path: basePath + "/{id}", Description: "Delete a product"},
		{Method: http.MethodGet, Path: basePath + "/categorias", Description: "List categories with product counts"},
		{Method: http.MethodGet, Path: basePath + "/stats", Description: "Inventory statistics"},
	},
}

// Docs describes every product endpoint.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.requestLogger(r), http.StatusOK, docs)
}

// Info describes the service and where to find the API.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.requestLogger(r), http.StatusOK, map[string]any{
		"message": "Products API - Inventory System",
		"version": apiVersion,
		"endpoints": map[string]string{
			"productos":     basePath,
			"documentacion": basePath + "/docs",
		},
	})
}
