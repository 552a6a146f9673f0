package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	commshandler "github.com/proptrack/proptrack/domains/communications/be/handler"
	commsservice "github.com/proptrack/proptrack/domains/communications/be/service"
	dashboardhandler "github.com/proptrack/proptrack/domains/dashboard/be/handler"
	dashboardservice "github.com/proptrack/proptrack/domains/dashboard/be/service"
	maintenancehandler "github.com/proptrack/proptrack/domains/maintenance/be/handler"
	maintenanceservice "github.com/proptrack/proptrack/domains/maintenance/be/service"
	notificationshandler "github.com/proptrack/proptrack/domains/notifications/be/handler"
	notificationsservice "github.com/proptrack/proptrack/domains/notifications/be/service"
	paymentshandler "github.com/proptrack/proptrack/domains/payments/be/handler"
	paymentsservice "github.com/proptrack/proptrack/domains/payments/be/service"
	propertieshandler "github.com/proptrack/proptrack/domains/properties/be/handler"
	propertiesservice "github.com/proptrack/proptrack/domains/properties/be/service"
	usershandler "github.com/proptrack/proptrack/domains/users/be/handler"
	usersrepo "github.com/proptrack/proptrack/domains/users/be/repo"
	usersservice "github.com/proptrack/proptrack/domains/users/be/service"
	"github.com/proptrack/proptrack/platform/go/dataset"
	"github.com/proptrack/proptrack/platform/go/invite"
	"github.com/proptrack/proptrack/platform/go/persistence"
	platformstorage "github.com/proptrack/proptrack/platform/go/storage"
	"github.com/proptrack/proptrack/platform/go/workspace"
)

// dependencies holds everything the router needs. Built once at startup.
type dependencies struct {
	source     dataset.Source
	sourceKind string
	// assetsReady is nil when assets are served from a static base URL.
	assetsReady func(ctx context.Context) error

	authMiddleware func(http.Handler) http.Handler

	dashboard      *dashboardhandler.Handler
	properties     *propertieshandler.Handler
	payments       *paymentshandler.Handler
	maintenance    *maintenancehandler.Handler
	communications *commshandler.Handler
	notifications  *notificationshandler.Handler
	users          *usershandler.Handler
}

func buildDependencies(ctx context.Context, cfg config, logger *zap.Logger) (*dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	source, kind, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeSource)

	assets, assetsReady, closeAssets, err := buildAssetResolver(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, closeAssets)

	authMiddleware, inviter, err := buildAuthMiddleware(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	deps := newDependencies(source, assets, inviter, logger)
	deps.sourceKind = kind
	deps.assetsReady = assetsReady
	deps.authMiddleware = authMiddleware
	return deps, cleanup, nil
}

// newDependencies builds every service and handler on top of one data source.
func newDependencies(source dataset.Source, assets workspace.AssetResolver, inviter invite.Inviter, logger *zap.Logger) *dependencies {
	loader := workspace.New(source, nil, assets)

	return &dependencies{
		source:         source,
		dashboard:      dashboardhandler.New(dashboardservice.New(loader), logger),
		properties:     propertieshandler.New(propertiesservice.New(loader), logger),
		payments:       paymentshandler.New(paymentsservice.New(loader), logger),
		maintenance:    maintenancehandler.New(maintenanceservice.New(loader), logger),
		communications: commshandler.New(commsservice.New(loader), logger),
		notifications:  notificationshandler.New(notificationsservice.New(loader), logger),
		users: usershandler.New(
			usersservice.New(loader, usersrepo.NewSourceRepository(source), inviter),
			logger,
		),
	}
}

// openSource selects the data source. Postgres failures fall back to the in-memory fixture
// when DATA_FALLBACK is set, so the dashboard still renders in development.
func openSource(ctx context.Context, cfg config, logger *zap.Logger) (dataset.Source, string, func(), error) {
	switch cfg.DataSource {
	case "memory":
		return dataset.NewMemorySource(dataset.Fixture(time.Now().UTC())), "memory", func() {}, nil
	case "postgres":
		source, closeFn, err := openPostgres(ctx, cfg.DatabaseURL)
		if err == nil {
			return source, "postgres", closeFn, nil
		}
		if !cfg.DataFallback {
			return nil, "", func() {}, err
		}
		logger.Warn("postgres unavailable; serving in-memory fixture", zap.Error(err))
		return dataset.NewMemorySource(dataset.Fixture(time.Now().UTC())), "memory-fallback", func() {}, nil
	default:
		return nil, "", func() {}, fmt.Errorf("invalid DATA_SOURCE %q (use memory or postgres)", cfg.DataSource)
	}
}

func openPostgres(ctx context.Context, databaseURL string) (dataset.Source, func(), error) {
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres pool: %w", err)
	}

	if err := persistence.ApplySchema(ctx, pool); err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("apply schema: %w", err)
	}

	source, err := persistence.NewPostgresSource(pool)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init postgres source: %w", err)
	}

	return source, func() { persistence.ClosePool(pool) }, nil
}

func buildAssetResolver(ctx context.Context, cfg config) (workspace.AssetResolver, func(context.Context) error, func(), error) {
	switch cfg.AssetBackend {
	case "static":
		return platformstorage.NewStaticResolver(cfg.AssetBaseURL), nil, func() {}, nil
	case "gcs":
		if cfg.AssetBucket == "" {
			return nil, nil, nil, fmt.Errorf("ASSET_BUCKET required when ASSET_BACKEND=gcs")
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init gcs client: %w", err)
		}
		checker := platformstorage.NewPrefixChecker(client, cfg.AssetBucket)
		ready := func(ctx context.Context) error { return checker.Check(ctx, cfg.AssetPrefix) }
		resolver := platformstorage.NewGCSResolver(client, cfg.AssetBucket, cfg.AssetPrefix, cfg.AssetURLTTL)
		return resolver, ready, func() { _ = client.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("invalid ASSET_BACKEND %q (use static or gcs)", cfg.AssetBackend)
	}
}
