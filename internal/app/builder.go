package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"logbook/internal/audit"
	"logbook/internal/auth"
	"logbook/internal/config"
	"logbook/internal/export"
	"logbook/internal/logger"
	"logbook/internal/report"
	"logbook/internal/seed"
	"logbook/internal/service"
	"logbook/internal/store"
	"logbook/internal/store/sqlite"
	logbookhttp "logbook/internal/transport/http"
)

// AppBuilder assembles the application layer by layer. The Fn fields exist so
// tests can swap a stage out without touching the rest of the wiring.
type AppBuilder struct {
	cfg *config.Config

	storeFn  func(config.DatabaseConfig) (store.Store, error)
	eventsFn func(config.DatabaseConfig) (*audit.Store, error)
	serverFn func(config.AppConfig, *logbookhttp.Router) (*logbookhttp.Server, error)

	storeOverride store.Store
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:      cfg,
		storeFn:  buildStore,
		eventsFn: buildEventLog,
		serverFn: buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	st := b.storeOverride
	if st == nil {
		var err error
		st, err = b.storeFn(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	events, err := b.eventsFn(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	sessions := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.SessionTTLHours)*time.Hour)
	traders := service.NewTraderService(st, events, cfg.Auth)
	trades := service.NewTradeService(st, events)

	router := &logbookhttp.Router{
		Traders:  traders,
		Trades:   trades,
		Stats:    service.NewStatsService(st),
		Exporter: export.NewExporter(st),
		Reports:  report.NewRenderer(st),
		Events:   events,
		Sessions: sessions,
	}
	if cfg.Seed.Enabled && strings.TrimSpace(cfg.Seed.Path) != "" {
		router.Importer = seed.NewImporter(traders, trades)
		router.SeedPath = cfg.Seed.Path
		logger.Infof("seed import enabled from %s", cfg.Seed.Path)
	}

	server, err := b.serverFn(cfg.App, router)
	if err != nil {
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:    cfg,
		store:  st,
		events: events,
		server: server,
	}, nil
}

func buildStore(cfg config.DatabaseConfig) (store.Store, error) {
	return sqlite.NewSqliteStore(cfg.Path)
}

func buildEventLog(cfg config.DatabaseConfig) (*audit.Store, error) {
	if strings.TrimSpace(cfg.AuditPath) == "" {
		return nil, nil
	}
	return audit.NewStore(cfg.AuditPath)
}

func buildHTTPServer(cfg config.AppConfig, router *logbookhttp.Router) (*logbookhttp.Server, error) {
	return logbookhttp.NewServer(cfg.HTTPAddr, router)
}

func WithStore(st store.Store) AppBuilderOption {
	return func(b *AppBuilder) {
		if st != nil {
			b.storeOverride = st
		}
	}
}

func WithEventLog(fn func(config.DatabaseConfig) (*audit.Store, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.eventsFn = fn
		}
	}
}

func WithHTTPServer(fn func(config.AppConfig, *logbookhttp.Router) (*logbookhttp.Server, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.serverFn = fn
		}
	}
}
