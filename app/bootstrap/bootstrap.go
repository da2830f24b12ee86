// Package bootstrap builds the logger, store and services shared by the
// API server, the worker and pricectl.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/price-tracker/app/config"
	"github.com/price-tracker/app/services"
	"github.com/price-tracker/internal/search"
)

// NewLogger returns a production logger when app.env is production and a
// development logger otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	return zc.Build()
}

// App holds everything a process entry point needs.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         services.KVStore
	Index         *search.ProductIndex
	Merchants     *services.MerchantService
	Products      *services.ProductService
	Confirmations *services.ConfirmationService
	Preferences   *services.PreferencesService
}

// New opens the configured store and, when enabled, the product index. An
// unreachable index is logged and search falls back to scanning the store.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := services.NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	app := &App{Config: cfg, Logger: logger, Store: store}

	var index services.ProductIndex
	if cfg.Meilisearch.Enabled {
		app.Index = openIndex(cfg, logger)
		if app.Index != nil {
			index = app.Index
		}
	}

	app.Merchants = services.NewMerchantService(store, nil, logger)
	app.Products = services.NewProductService(store, app.Merchants, index, nil, logger)
	app.Confirmations = services.NewConfirmationService(store, app.Products, nil, logger)
	app.Preferences = services.NewPreferencesService(store, logger)
	return app, nil
}

func openIndex(cfg *config.Config, logger *zap.Logger) *search.ProductIndex {
	idx, err := search.NewProductIndex(search.Config{
		Host:      cfg.Meilisearch.URL,
		APIKey:    cfg.Meilisearch.APIKey,
		IndexName: cfg.Meilisearch.Index,
		Timeout:   cfg.Meilisearch.Timeout,
	}, logger)
	if err != nil {
		logger.Warn("Meilisearch unavailable, product search will scan the store", zap.Error(err))
		return nil
	}
	if err := idx.EnsureSettings(); err != nil {
		logger.Warn("Failed to apply Meilisearch settings", zap.Error(err))
	}
	return idx
}

// Close releases the store.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Error closing store", zap.Error(err))
	}
}
