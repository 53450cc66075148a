// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/internal/validation"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
)

const basePath = "/api/productos"

type Handler struct {
	service      service.ProductService
	validate     *validation.Validator
	logger       *slog.Logger
	exposeErrors bool
}

// NewHandler creates a new Handler with the provided service.
// When exposeErrors is true, 500 responses carry the underlying error message.
func NewHandler(service service.ProductService, logger *slog.Logger, exposeErrors bool) *Handler {
	return &Handler{
		service:      service,
		validate:     validation.New(),
		logger:       logger.With("component", "rest"),
		exposeErrors: exposeErrors,
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/", h.Info)
	r.Route(basePath, func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/docs", h.Docs)
		r.Get("/stats", h.Stats)
		r.Get("/categorias", h.Categories)
		r.Get("/codigo/{codigoBarras}", h.FindByBarcode)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get(server.HealthPath, h.HealthCheck)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
}

// FindAll retrieves a filtered page of products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	query, filters, details := parseListQuery(r)
	if len(details) > 0 {
		mLogger.WarnContext(r.Context(), "Invalid list parameters", "details", details)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, web.Envelope{
			Success: false,
			Error:   "Invalid query parameters",
			Details: details,
		})
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find products", "query", query)
	page, err := h.service.FindAll(r.Context(), query)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondInternal(w, mLogger, "Failed to fetch products", err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(page.Products))
	web.RespondJSON(w, mLogger, http.StatusOK, web.Envelope{
		Success:    true,
		Data:       page.Products,
		Pagination: page.Pagination,
		Filters:    filters,
	})
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			respondNotFound(w, mLogger, fmt.Sprintf("No product with ID %d", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		h.respondInternal(w, mLogger, fmt.Sprintf("Failed to retrieve product with ID %d", id), err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondData(w, mLogger, http.StatusOK, found)
}

// FindByBarcode retrieves a product by its barcode.
func (h *Handler) FindByBarcode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	barcode := strings.TrimSpace(r.PathValue("codigoBarras"))

	mLogger.DebugContext(r.Context(), "Received request to find product by barcode", "barcode", barcode)
	found, err := h.service.FindByBarcode(r.Context(), barcode)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "barcode", barcode)
			respondNotFound(w, mLogger, fmt.Sprintf("No product with barcode %s", barcode))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "barcode", barcode, "error", err)
		h.respondInternal(w, mLogger, "Failed to retrieve product with barcode "+barcode, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "barcode", barcode)
	web.RespondData(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var productCreateDto service.ProductCreateDto
	if !decodeBody(w, r, mLogger, &productCreateDto) {
		return
	}
	productCreateDto.Normalize()
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)
	if details := h.validate.Struct(productCreateDto); details != nil {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", details)
		web.RespondValidation(w, mLogger, details)
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		switch {
		case errors.Is(err, perrors.ErrDuplicateBarcode):
			mLogger.WarnContext(r.Context(), "Duplicate barcode", "barcode", productCreateDto.Barcode)
			respondDuplicate(w, mLogger, productCreateDto.Barcode)
			return
		case errors.Is(err, perrors.ErrInvalidProduct):
			mLogger.WarnContext(r.Context(), "Product rejected by store constraints", "error", err)
			web.RespondValidation(w, mLogger, []string{perrors.ErrInvalidProduct.Error()})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		h.respondInternal(w, mLogger, "Failed to create product", err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, web.Envelope{
		Success: true,
		Message: "Product created successfully",
		Data:    newProduct,
	})
}

// Update merges the supplied fields into an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productUpdateDto service.ProductUpdateDto
	if !decodeBody(w, r, mLogger, &productUpdateDto) {
		return
	}
	productUpdateDto.Normalize()
	if details := h.validate.Struct(productUpdateDto); details != nil {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", details)
		web.RespondValidation(w, mLogger, details)
		return
	}

	updated, err := h.service.Update(r.Context(), id, productUpdateDto)
	if err != nil {
		switch {
		case errors.Is(err, perrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			respondNotFound(w, mLogger, fmt.Sprintf("No product with ID %d", id))
		case errors.Is(err, perrors.ErrDuplicateBarcode):
			var barcode string
			if productUpdateDto.Barcode != nil {
				barcode = *productUpdateDto.Barcode
			}
			mLogger.WarnContext(r.Context(), "Duplicate barcode on update", "ID", id, "barcode", barcode)
			respondDuplicate(w, mLogger, barcode)
		case errors.Is(err, perrors.ErrInvalidProduct):
			mLogger.WarnContext(r.Context(), "Product rejected by store constraints", "ID", id, "error", err)
			web.RespondValidation(w, mLogger, []string{perrors.ErrInvalidProduct.Error()})
		default:
			mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
			h.respondInternal(w, mLogger, fmt.Sprintf("Failed to update product with ID %d", id), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, web.Envelope{
		Success: true,
		Message: "Product updated successfully",
		Data:    updated,
	})
}

// DeleteByID deletes a product by its ID and returns the removed product.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			respondNotFound(w, mLogger, fmt.Sprintf("No product with ID %d", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		h.respondInternal(w, mLogger, fmt.Sprintf("Failed to delete product with ID %d", id), err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, web.Envelope{
		Success: true,
		Message: "Product deleted successfully",
		Data:    deleted,
	})
}

// Categories lists every category with its product count.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving categories", "error", err)
		h.respondInternal(w, mLogger, "Failed to fetch categories", err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, categories)
}

// Stats returns the inventory summary.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing stats", "error", err)
		h.respondInternal(w, mLogger, "Failed to compute statistics", err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, stats)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// NotFound answers requests for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	web.RespondJSON(w, mLogger, http.StatusNotFound, web.Envelope{
		Success: false,
		Error:   "Route not found",
		Message: fmt.Sprintf("Route %s does not exist", r.URL.RequestURI()),
	})
}

// MethodNotAllowed answers requests whose route exists under another method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	web.RespondJSON(w, mLogger, http.StatusMethodNotAllowed, web.Envelope{
		Success: false,
		Error:   "Method not allowed",
		Message: fmt.Sprintf("Method %s is not supported for %s", r.Method, r.URL.Path),
	})
}

func (h *Handler) respondInternal(w http.ResponseWriter, logger *slog.Logger, title string, err error) {
	web.RespondInternal(w, logger, title, err, h.exposeErrors)
}

func respondNotFound(w http.ResponseWriter, logger *slog.Logger, message string) {
	web.RespondJSON(w, logger, http.StatusNotFound, web.Envelope{
		Success: false,
		Error:   "Product not found",
		Message: message,
	})
}

func respondDuplicate(w http.ResponseWriter, logger *slog.Logger, barcode string) {
	web.RespondJSON(w, logger, http.StatusBadRequest, web.Envelope{
		Success: false,
		Error:   "Duplicate barcode",
		Message: fmt.Sprintf("Another product already uses barcode %s", barcode),
	})
}

// decodeBody reads a JSON object into dst and answers 400 when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondJSON(w, logger, http.StatusBadRequest, web.Envelope{
			Success: false,
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// requestLogger creates a logger scoped to the request method and path.
// The request and trace IDs are added from the context when logging with *Context methods.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("method", r.Method, "path", r.URL.Path)
}
