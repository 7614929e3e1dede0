package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/promowizard/internal/config"
	"github.com/aretw0/promowizard/pkg/adapters/file"
	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/adapters/redis"
	"github.com/aretw0/promowizard/pkg/adapters/remote"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/observability"
	"github.com/aretw0/promowizard/pkg/persistence/middleware"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/aretw0/promowizard/pkg/session"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
)

// App bundles the services every host needs.
type App struct {
	Config   config.Config
	Sessions *session.Manager
	Shells   *memory.ShellRegistry
	Stores   []domain.StoreSelection
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// Build wires catalog, submitter, session store and metrics from cfg.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Shells:   memory.NewShellRegistry(),
		Stores:   []domain.StoreSelection{},
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}

	catalogSvc, err := app.catalog()
	if err != nil {
		return nil, err
	}
	submitter, err := app.submitter()
	if err != nil {
		return nil, err
	}
	store, locker, err := app.sessionStore(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	metrics := observability.NewMetrics(app.Registry, observability.WithLogger(logger))
	hooks := observability.Combine(metrics.Hooks(), debugHooks(logger))

	factory := func(sessionID, accountID string) *wizard.Controller {
		return wizard.New(catalogSvc, submitter,
			wizard.WithAccountID(accountID),
			wizard.WithShell(app.Shells.For(sessionID)),
			wizard.WithLogger(logger.With("session_id", sessionID)),
			wizard.WithLifecycleHooks(hooks),
			wizard.WithStrictSubmit(cfg.Wizard.StrictSubmit),
		)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Wizard.LockTTL),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, factory, opts...)
	return app, nil
}

func (a *App) catalog() (ports.CatalogService, error) {
	cfg := a.Config.Catalog
	if cfg.BaseURL != "" {
		opts := []remote.Option{
			remote.WithFields(cfg.Fields),
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			remote.WithLogger(a.Logger),
		}
		for k, v := range cfg.Headers {
			opts = append(opts, remote.WithHeader(k, v))
		}
		client, err := remote.New(cfg.BaseURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("catalog service: %w", err)
		}
		a.Logger.Info("Using remote catalog", "base_url", cfg.BaseURL)
		return client, nil
	}

	if cfg.Fixture != "" {
		fixture, err := memory.LoadFixture(cfg.Fixture)
		if err != nil {
			return nil, fmt.Errorf("catalog fixture: %w", err)
		}
		if fixture.PageSize == 0 {
			fixture.PageSize = cfg.PageSize
		}
		a.Stores = fixture.Stores
		a.Logger.Info("Using catalog fixture", "path", cfg.Fixture, "products", len(fixture.Products), "stores", len(fixture.Stores))
		return memory.NewCatalogFromFixture(fixture), nil
	}

	a.Logger.Warn("No catalog configured; the product list is empty")
	return memory.NewCatalog(cfg.PageSize), nil
}

func (a *App) submitter() (ports.SubmitService, error) {
	cfg := a.Config.Submit
	if cfg.BaseURL == "" {
		a.Logger.Info("No promotion service configured; submissions are kept in memory")
		return memory.NewSubmitter(), nil
	}

	opts := []remote.Option{
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		remote.WithLogger(a.Logger),
	}
	for k, v := range cfg.Headers {
		opts = append(opts, remote.WithHeader(k, v))
	}
	client, err := remote.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("promotion service: %w", err)
	}
	return client, nil
}

func (a *App) sessionStore(ctx context.Context) (ports.SessionStore, ports.DistributedLocker, error) {
	cfg := a.Config.Persistence

	var store ports.SessionStore
	var locker ports.DistributedLocker
	switch cfg.Driver {
	case config.DriverFile:
		store = file.New(cfg.Dir)
	case config.DriverRedis:
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		store = rs
		if cfg.Redis.Lock {
			locker = redis.NewLocker(rs.Client(), rs.Prefix()+"lock:")
		}
	default:
		store = memory.NewStore()
	}

	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg.EncryptionKey, cfg.FallbackKeys)
		if err != nil {
			return nil, nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(enc))
	}

	a.Logger.Info("Session store ready", "driver", cfg.Driver, "encrypted", cfg.EncryptionKey != "", "distributed_lock", locker != nil)
	return store, locker, nil
}

func encryptionConfig(active string, fallbacks []string) (middleware.EncryptionConfig, error) {
	key, err := middleware.ParseKey(active)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("persistence.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: key}
	for i, s := range fallbacks {
		k, err := middleware.ParseKey(s)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("persistence.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, k)
	}
	return enc, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
