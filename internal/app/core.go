package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/budget"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/cache"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/consolidation"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/dataprocessing"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/infrastructure"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/snapshots"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Core is the analytics stack without a transport. The HTTP server and the
// command line tools share it.
type Core struct {
	Store      storage.ObjectStore
	Properties *config.PropertyRegistry
	Registry   *snapshots.Registry
	Engine     *consolidation.Engine
	Budgets    *budget.Store
	Analytics  *services.AnalyticsService
	Probes     []services.Prober

	closers []func() error
}

// CoreOption customises BuildCore
type CoreOption func(*coreOptions)

type coreOptions struct {
	store   storage.ObjectStore
	now     func() time.Time
	metrics *infrastructure.BusinessMetrics
	tracer  *infrastructure.OTelProviders
}

// WithObjectStore replaces the configured storage backend
func WithObjectStore(store storage.ObjectStore) CoreOption {
	return func(o *coreOptions) { o.store = store }
}

// WithClock fixes "today" for category selection and budget stamps
func WithClock(now func() time.Time) CoreOption {
	return func(o *coreOptions) { o.now = now }
}

// WithTelemetry records metrics and spans through the given providers
func WithTelemetry(providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics) CoreOption {
	return func(o *coreOptions) {
		o.tracer = providers
		o.metrics = metrics
	}
}

// BuildCore wires storage, schema mapping, the snapshot registry, the dataset
// cache, the consolidation engine, budgets and the analytics service
func BuildCore(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...CoreOption) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := coreOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	props, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build property registry: %w", err)
	}

	store := o.store
	if store == nil {
		if store, err = storage.Open(ctx, cfg.Storage.Options(), logger); err != nil {
			return nil, fmt.Errorf("failed to open object store: %w", err)
		}
	}

	table, err := dataprocessing.LoadAliasTable(cfg.Schema.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema aliases: %w", err)
	}
	mapper, err := dataprocessing.NewSchemaMapper(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema mapper: %w", err)
	}
	normalizer := dataprocessing.NewRecordNormalizer(mapper, logger)

	core := &Core{Store: store, Properties: props}
	core.Probes = append(core.Probes, services.StorageProbe(store))

	datasets, err := core.buildCache(cfg.Cache, logger, o.metrics)
	if err != nil {
		return nil, err
	}

	core.Registry = snapshots.NewRegistry(store, logger, snapshots.WithClock(o.now))
	core.Engine = consolidation.NewEngine(core.Registry, normalizer, logger,
		consolidation.WithCache(datasets, cfg.Cache.TTL),
		consolidation.WithParseObserver(o.metrics.RecordParse),
	)
	core.Budgets = budget.NewStore(store, normalizer, logger, budget.WithClock(o.now))

	svcOpts := []services.Option{services.WithMetrics(o.metrics)}
	if o.tracer != nil {
		svcOpts = append(svcOpts, services.WithTracer(o.tracer.Tracer))
	}
	core.Analytics = services.NewAnalyticsService(props, core.Engine, core.Budgets, logger, svcOpts...)

	logger.InfoContext(ctx, "Analytics core ready",
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.Int("schema_version", mapper.Version()),
		slog.Int("properties", len(props.All())))
	return core, nil
}

func (c *Core) buildCache(cfg config.CacheConfig, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*cache.Cache[*domain.ConsolidatedDataset], error) {
	var backend cache.Store
	switch strings.ToLower(cfg.Backend) {
	case "redis":
		rs := cache.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.KeyPrefix)
		c.closers = append(c.closers, rs.Close)
		c.Probes = append(c.Probes, services.CacheProbe(rs))
		backend = rs
	case "memory", "":
		ms := cache.NewMemoryStore(cfg.MaxEntries)
		if cfg.JanitorInterval > 0 {
			ms.StartJanitor(cfg.JanitorInterval)
		}
		c.closers = append(c.closers, func() error { ms.Stop(); return nil })
		backend = ms
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	return cache.New[*domain.ConsolidatedDataset](backend, cfg.TTL,
		cache.WithLogger[*domain.ConsolidatedDataset](logger),
		cache.WithObserver[*domain.ConsolidatedDataset](func(ctx context.Context, _ string, hit bool) {
			metrics.RecordCacheLookup(ctx, hit)
		}),
	), nil
}

// Close releases the cache backend
func (c *Core) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
