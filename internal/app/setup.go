// Package app contains the application setup for the inventory service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/internal/transport/rest"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "inventory"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	CORS           web.CORSConfig
	ExposeErrors   bool
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewProductStore returns the PostgreSQL store when a pool is given and the in-memory store otherwise.
func NewProductStore(dbPool *pgxpool.Pool) store.ProductStore {
	if dbPool == nil {
		return store.NewInMemoryStore()
	}
	return store.NewPgStore(dbPool)
}

// SeedStore loads the sample catalog into an empty store.
func SeedStore(ctx context.Context, repo store.ProductStore, logger *slog.Logger) error {
	inserted, err := store.Seed(ctx, repo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}
	logger.Info("Store seeded", slog.Int("inserted", inserted))
	return nil
}

func SetupDependencies(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger, cfg *config.Config) *Dependencies {
	pService := service.NewService(repo, publisher)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
		CORS: web.CORSConfig{
			AllowedOrigins:   cfg.CORS.Origins,
			AllowCredentials: cfg.CORS.Credentials,
			MaxAgeSeconds:    cfg.CORS.MaxAge,
		},
		ExposeErrors: !cfg.App.IsProduction(),
		MetricsPath:  cfg.Telemetry.Metrics.Path,
	}
}

// SetupHttpHandler initializes the router and routes for the inventory service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, deps.CORS)
	wireRoutes(mux, deps)
	return server.WithTracing(mux, serviceName)
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger, deps.ExposeErrors)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	handler := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Addr:           cfg.HTTPServer.Addr(),
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, handler, deps.Logger)
}
