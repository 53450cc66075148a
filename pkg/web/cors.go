package web

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig configures CORS behavior.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAgeSeconds    int
}

// Options converts the configuration into go-chi/cors options.
// Unset origins allow any origin, and the request ID header is always exposed.
func (c CORSConfig) Options() cors.Options {
	return cors.Options{
		AllowedOrigins:   defaultIfEmpty(c.AllowedOrigins, []string{"*"}),
		AllowedMethods:   defaultIfEmpty(c.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		AllowedHeaders:   defaultIfEmpty(c.AllowedHeaders, []string{"Content-Type", "Authorization"}),
		ExposedHeaders:   append([]string{RequestIDHeader}, c.ExposeHeaders...),
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAgeSeconds,
	}
}

// CORS returns the go-chi/cors middleware for cfg.
// Preflight requests from allowed origins are answered without reaching the router.
func CORS(cfg CORSConfig) func(next http.Handler) http.Handler {
	return cors.Handler(cfg.Options())
}

func defaultIfEmpty(in, fallback []string) []string {
	if len(in) == 0 {
		return fallback
	}
	return in
}
