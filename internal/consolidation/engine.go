package consolidation

import (
	"context"
	"log/slog"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/cache"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/dataprocessing"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/snapshots"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// ParseObserver is told about the diagnostics of every snapshot that gets parsed
type ParseObserver func(ctx context.Context, snap domain.Snapshot, diag domain.ParseDiagnostics)

// Engine consolidates snapshots into datasets
type Engine struct {
	registry   *snapshots.Registry
	normalizer *dataprocessing.RecordNormalizer
	cache      *cache.Cache[*domain.ConsolidatedDataset]
	ttl        time.Duration
	observer   ParseObserver
	logger     *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithCache enables result caching. Without it every call recomputes.
func WithCache(c *cache.Cache[*domain.ConsolidatedDataset], ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		e.ttl = ttl
	}
}

// WithParseObserver registers a diagnostics observer
func WithParseObserver(o ParseObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine. A nil normalizer uses the embedded alias table.
func NewEngine(registry *snapshots.Registry, normalizer *dataprocessing.RecordNormalizer, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = dataprocessing.NewRecordNormalizer(nil, logger)
	}
	e := &Engine{
		registry:   registry,
		normalizer: normalizer,
		logger:     logger.With(slog.String("component", "consolidation")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the snapshot registry the engine reads from
func (e *Engine) Registry() *snapshots.Registry {
	return e.registry
}

// CacheKey is the cache key of a consolidated dataset
func CacheKey(folder string, year int) string {
	return cache.Key("consolidated", folder, year)
}

// Consolidate returns the dataset of a property and year. The result is never nil; it is
// empty when no usable snapshot exists.
func (e *Engine) Consolidate(ctx context.Context, folder string, year int) *domain.ConsolidatedDataset {
	if e.cache == nil {
		return e.build(ctx, folder, year)
	}

	ds, err := e.cache.GetOrCompute(ctx, CacheKey(folder, year), e.ttl, func(ctx context.Context) (*domain.ConsolidatedDataset, error) {
		return e.build(ctx, folder, year), nil
	})
	if err != nil || ds == nil {
		return domain.EmptyDataset(folder, year)
	}
	return ds
}

// Invalidate drops the cached dataset of a property and year
func (e *Engine) Invalidate(ctx context.Context, folder string, year int) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Invalidate(ctx, CacheKey(folder, year))
}

func (e *Engine) build(ctx context.Context, folder string, year int) *domain.ConsolidatedDataset {
	log := e.logger.With(slog.String("property", folder), slog.Int("year", year))
	category := e.registry.CategoryFor(year)
	snaps := e.registry.DiscoverCategory(ctx, folder, year, category)

	if len(snaps) == 0 {
		log.InfoContext(ctx, "No snapshots for dataset", slog.String("category", string(category)))
		ds := domain.EmptyDataset(folder, year)
		ds.Category = category
		return ds
	}

	var ds *domain.ConsolidatedDataset
	if category == domain.CategoryForecast {
		ds = e.LoadSnapshot(ctx, snaps[0])
	} else {
		// oldest first, so each newer baseline replaces the days it defines
		ds = domain.EmptyDataset(folder, year)
		for i := len(snaps) - 1; i >= 0; i-- {
			loaded := e.LoadSnapshot(ctx, snaps[i])
			if loaded.IsEmpty() {
				ds.Diagnostics.Merge(loaded.Diagnostics)
				continue
			}
			ds = Overlay(ds, loaded)
		}
	}
	ds.Category = category

	log.DebugContext(ctx, "Dataset consolidated",
		slog.String("category", string(category)),
		slog.Int("records", len(ds.Records)),
		slog.Int("sources", len(ds.Sources)))
	return ds
}

// LoadSnapshot fetches and normalizes one snapshot, keeping only the days of the snapshot's
// year. Fetch and parse failures yield an empty dataset carrying the error in its diagnostics.
func (e *Engine) LoadSnapshot(ctx context.Context, snap domain.Snapshot) *domain.ConsolidatedDataset {
	log := e.logger.With(slog.String("key", snap.StorageKey))

	ds := domain.EmptyDataset(snap.Property, snap.Year)
	ds.Category = snap.Category

	data, err := e.registry.Store().Get(ctx, snap.StorageKey)
	if err != nil {
		log.WarnContext(ctx, "Snapshot fetch failed, treating as no data", slog.String("error", err.Error()))
		ds.Diagnostics.Fail(err)
		e.observe(ctx, snap, ds.Diagnostics)
		return ds
	}

	res, err := e.normalizer.Normalize(ctx, snap.Filename, data)
	if err != nil {
		log.WarnContext(ctx, "Snapshot could not be parsed, treating as no data", slog.String("error", err.Error()))
		ds.Diagnostics.Fail(err)
		e.observe(ctx, snap, ds.Diagnostics)
		return ds
	}

	records := domain.InYear(res.Records, snap.Year)
	if dropped := len(res.Records) - len(records); dropped > 0 {
		log.DebugContext(ctx, "Days outside the snapshot year ignored", slog.Int("count", dropped))
	}

	loaded := domain.NewDataset(snap.Property, snap.Year, []string{snap.StorageKey}, records)
	loaded.Category = snap.Category
	loaded.Diagnostics = res.Diagnostics
	e.observe(ctx, snap, loaded.Diagnostics)
	return loaded
}

func (e *Engine) observe(ctx context.Context, snap domain.Snapshot, diag domain.ParseDiagnostics) {
	if e.observer != nil {
		e.observer(ctx, snap, diag)
	}
}

// Overlay combines two datasets day by day. Wherever both define a date the overlay's record
// replaces the base record entirely; fields are never merged. Neither input is modified.
func Overlay(base, overlay *domain.ConsolidatedDataset) *domain.ConsolidatedDataset {
	if base == nil {
		base = &domain.ConsolidatedDataset{}
	}
	if overlay == nil {
		overlay = &domain.ConsolidatedDataset{}
	}

	records := make([]domain.DailyRecord, 0, len(base.Records)+len(overlay.Records))
	records = append(records, base.Records...)
	records = append(records, overlay.Records...)

	sources := make([]string, 0, len(base.Sources)+len(overlay.Sources))
	sources = append(sources, base.Sources...)
	sources = append(sources, overlay.Sources...)

	property, year := overlay.Property, overlay.Year
	if property == "" {
		property, year = base.Property, base.Year
	}

	out := domain.NewDataset(property, year, sources, records)
	out.Category = overlay.Category
	if out.Category == "" {
		out.Category = base.Category
	}
	out.Diagnostics.Merge(base.Diagnostics)
	out.Diagnostics.Merge(overlay.Diagnostics)
	return out
}
