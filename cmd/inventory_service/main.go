// Package main runs the inventory HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/inventory/internal/app"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/migrations"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"github.com/abgdnv/inventory/pkg/messaging"
	natsclient "github.com/abgdnv/inventory/pkg/nats"
	"github.com/abgdnv/inventory/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const serviceName = "inventory"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, sets up the store and the event publisher, and starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	// create tracer provider
	tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		logger.Error("error creating tracer provider", slog.Any("error", err))
		return err
	}

	var dbPool *pgxpool.Pool
	if cfg.Store.Driver == config.StorePostgres {
		if cfg.Database.Migrate {
			if err := bootstrap.RunMigrations(migrations.FS, cfg.Database.URL); err != nil {
				return err
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err = bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		logger.Info("Successfully connected to the database!")
	}
	repo := app.NewProductStore(dbPool)

	if cfg.Store.Seed {
		if err := app.SeedStore(ctx, repo, logger); err != nil {
			return err
		}
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.Nats.Enabled {
		nc, err := natsclient.NewClient(cfg.Nats.Url, cfg.Nats.ClientName, cfg.Nats.Timeout, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Error("Failed to drain NATS connection", slog.String("error", err.Error()))
			}
		}()
		js, err := natsclient.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if err := natsclient.EnsureStream(ctx, js, natsclient.StreamOptions{
			Name:     messaging.ProductsStream,
			Subjects: messaging.ProductsSubjects,
			MaxAge:   cfg.Nats.StreamMaxAge,
		}); err != nil {
			return err
		}
		publisher = natsclient.NewNatsPublisher(js, messaging.ProductsStream)
		logger.Info("Publishing product events to NATS", slog.String("stream", messaging.ProductsStream))
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		meterProvider, handler, err := telemetry.InstallMeterProvider(serviceName)
		if err != nil {
			logger.Error("error creating meter provider", slog.Any("error", err))
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shutdown meter provider", slog.String("error", err.Error()))
			}
		}()
		metricsHandler = handler
		logger.Info("Serving metrics", slog.String("path", cfg.Telemetry.Metrics.Path))
	}

	deps := app.SetupDependencies(repo, publisher, logger, cfg)
	deps.MetricsHandler = metricsHandler
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr), slog.String("store", cfg.Store.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	// gracefully shutdown tracer provider
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down tracer provider")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
