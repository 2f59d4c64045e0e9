package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haldis/storefront-engine/internal/api"
	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/config"
	"github.com/haldis/storefront-engine/internal/events"
	"github.com/haldis/storefront-engine/internal/fetcher"
	"github.com/haldis/storefront-engine/internal/liquid"
	"github.com/haldis/storefront-engine/internal/platform/postgres"
	"github.com/haldis/storefront-engine/internal/renderer"
	"github.com/haldis/storefront-engine/internal/resolver"
	"github.com/haldis/storefront-engine/internal/template"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cache        *cache.Manager
	eventEmitter events.EventEmitter
	renderer     *renderer.PageRenderer
	router       http.Handler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Cache manager; a disabled manager keeps every lookup a miss, for
	// local theme development.
	if cfg.Cache.Enabled {
		app.cache = cache.NewManager()
	} else {
		app.cache = cache.NewDisabledManager()
		logger.Warn("render cache disabled by configuration")
	}

	// Stores
	tenantStore := postgres.NewPostgresTenantStore(db)
	productStore := postgres.NewPostgresProductStore(db)
	collectionStore := postgres.NewPostgresCollectionStore(db)
	pageStore := postgres.NewPostgresPageStore(db)
	navigationStore := postgres.NewPostgresNavigationStore(db)
	cartStore := postgres.NewPostgresCartStore(db)
	checkoutStore := postgres.NewPostgresCheckoutStore(db)

	// Theme storage and templating
	objectStore := template.NewDirObjectStore(cfg.Storage.BucketName)
	templateLoader := template.NewLoader(objectStore, app.cache, logger)
	engine := liquid.NewEngine()

	// Fetchers
	productFetcher := fetcher.NewProductFetcher(productStore, app.cache, logger)
	collectionFetcher := fetcher.NewCollectionFetcher(collectionStore, productStore, app.cache, logger)
	pageFetcher := fetcher.NewPageFetcher(pageStore, app.cache, logger)
	navigationFetcher := fetcher.NewNavigationFetcher(navigationStore, pageStore, app.cache, logger)
	cartExpiry := time.Duration(cfg.Cart.ExpiryDays) * 24 * time.Hour
	cartFetcher := fetcher.NewCartFetcher(cartStore, productStore, app.cache, cartExpiry, logger)
	checkoutFetcher := fetcher.NewCheckoutFetcher(checkoutStore, cartFetcher, cfg.Checkout.SessionTTL, logger)

	// Rendering pipeline
	domainResolver := resolver.New(tenantStore, app.cache, logger)
	contextBuilder := renderer.NewContextBuilder(
		productFetcher,
		collectionFetcher,
		pageFetcher,
		navigationFetcher,
		cartFetcher,
		checkoutFetcher,
		logger,
	)
	sectionRenderer := renderer.NewSectionRenderer(templateLoader, engine, logger)
	errorRenderer := renderer.NewErrorRenderer(engine, logger)
	debug := cfg.Server.LogLevel == "debug"
	app.renderer = renderer.NewPageRenderer(
		domainResolver,
		templateLoader,
		contextBuilder,
		sectionRenderer,
		errorRenderer,
		engine,
		app.cache,
		debug,
		logger,
	)

	// Change events feed the cache invalidation service.
	emitter := events.NewInMemoryEventEmitter(logger)
	invalidationService := cache.NewInvalidationService(app.cache, logger)
	emitter.RegisterHandler(events.NewInvalidationHandler(invalidationService, logger))
	app.eventEmitter = emitter

	// HTTP surface
	app.router = api.NewRouter(api.RouterDeps{
		Storefront:   api.NewStorefrontHandler(app.renderer, logger),
		Cart:         api.NewCartHandler(domainResolver, cartFetcher, logger),
		Checkout:     api.NewCheckoutHandler(domainResolver, checkoutFetcher, logger),
		Invalidation: api.NewInvalidationHandler(app.eventEmitter, logger),
		Logger:       logger,
	})

	logger.Info("application initialized",
		slog.String("theme_root", cfg.Storage.BucketName),
		slog.Bool("cache_enabled", cfg.Cache.Enabled))
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown completes. It
// listens for SIGINT/SIGTERM and drains in-flight requests before
// returning.
func (app *application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", slog.Int("port", app.config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		app.logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
