// Package server builds the HTTP listener and the router shared by the service entrypoints.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthPath is the liveness probe route. Requests to it are not traced.
const HealthPath = "/healthz"

type HTTPConfig struct {
	Addr           string
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	ReadHeader     time.Duration
}

// NewHTTPServer creates the server. Errors reported by net/http are written to logger at warn level.
func NewHTTPServer(cfg HTTPConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}

// NewChiRouter creates a chi router with CORS, request IDs, request logging and panic recovery.
func NewChiRouter(logger *slog.Logger, cors web.CORSConfig) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.CleanPath)
	mux.Use(web.CORS(cors))
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	return mux
}

// WithTracing wraps handler so every request except health probes starts a server span named after operation.
func WithTracing(handler http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(handler, operation,
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != HealthPath }),
	)
}
