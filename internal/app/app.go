package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"logbook/internal/audit"
	"logbook/internal/config"
	"logbook/internal/logger"
	"logbook/internal/store"
	logbookhttp "logbook/internal/transport/http"
)

// App owns the assembled service: the store, the event log and the HTTP
// server. Build it with NewApp, run it with Run.
type App struct {
	cfg    *config.Config
	store  store.Store
	events *audit.Store
	server *logbookhttp.Server
}

// NewApp builds the application from configuration without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves HTTP and follows config changes until ctx is cancelled, then
// closes the stores.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	logger.Infof("logbook listening on %s (db=%s)", a.server.Addr(), a.cfg.Database.Path)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	if src := a.cfg.Source(); src != "" {
		group.Go(func() error {
			return config.Watch(ctx, src, func(next *config.Config) {
				logger.SetLevel(next.App.LogLevel)
			})
		})
	}
	return group.Wait()
}

// Close releases the database handles.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			logger.Warnf("close event log: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warnf("close store: %v", err)
		}
	}
}

// Server exposes the HTTP server, mainly for tests.
func (a *App) Server() *logbookhttp.Server {
	if a == nil {
		return nil
	}
	return a.server
}
