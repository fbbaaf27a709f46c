// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"otowatch/internal/api"
	"otowatch/internal/logging"
	"otowatch/internal/metrics"
	"otowatch/internal/reconcile"
	"otowatch/internal/storage/memory"
	"otowatch/internal/storage/postgres"
)

// App holds all the shared, long-lived services for the application.
// It is initialized once at startup and passed to the components that need it.
type App struct {
	logger     *zap.Logger
	store      reconcile.Store
	closeStore func()
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore provides access to the listing identity store.
func (a *App) GetStore() reconcile.Store {
	return a.store
}

// NewApp creates and initializes a new App struct based on the application's
// configuration. It is the central point for service initialization and reads
// configuration values from Viper. When no database DSN is configured the app
// falls back to an in-memory store so a dry run needs no infrastructure.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")
	metrics.Init()

	a := &App{logger: l}

	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		l.Warn("No database DSN configured; using in-memory store. Auction numbers will not survive this run.")
		a.store = memory.NewListingStore()
	} else {
		l.Info("Connecting to PostgreSQL...")
		store, err := postgres.NewListingStore(ctx, postgres.ListingStoreConfig{
			DSN:   dsn,
			Table: viper.GetString("database.table"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.store = store
		a.closeStore = store.Close
	}

	if viper.GetBool("api.enabled") {
		addr := viper.GetString("api.addr")
		go func() {
			l.Info("Starting observability server", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, api.NewHandler()); err != nil {
				l.Error("Observability server failed", zap.Error(err))
			}
		}()
	}

	l.Info("Application services initialized successfully.")
	return a, nil
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")
	if a.closeStore != nil {
		a.closeStore()
	}
	if err := a.logger.Sync(); err != nil {
		// Best effort; stderr sync failures are expected on some platforms.
		a.logger.Warn("Error syncing logger on shutdown", zap.Error(err))
	}
}
