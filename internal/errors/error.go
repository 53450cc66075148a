// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateBarcode = errors.New("barcode already in use")
	// ErrInvalidProduct is returned when the store rejects a value its constraints do not allow.
	ErrInvalidProduct = errors.New("product violates a data constraint")
)
