package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/analytics"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/budget"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/consolidation"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/infrastructure"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/snapshots"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// DefaultTopMovers is the number of gainers and losers listed in a pickup report
const DefaultTopMovers = 5

// KPIOptions tunes a KPI report
type KPIOptions struct {
	// Metric selects the month-by-month comparison table; empty means revenue
	Metric string
	// End closes the year-to-date window; zero means the last date on the books
	End time.Time
}

// KPIReport bundles the KPI views of one property and year
type KPIReport struct {
	Property   string                      `json:"property"`
	Year       int                         `json:"year"`
	Month      int                         `json:"month,omitempty"`
	Period     domain.PeriodComparison     `json:"period"`
	YearToDate domain.PeriodComparison     `json:"year_to_date"`
	Metric     string                      `json:"metric"`
	Months     []domain.MonthComparisonRow `json:"months"`
	Weekdays   []domain.WeekdayRow         `json:"weekdays"`
	Daily      []domain.DailyBreakdownRow  `json:"daily,omitempty"`
}

// PickupReport is a snapshot-to-snapshot comparison with its totals
type PickupReport struct {
	Result  *domain.ComparisonResult `json:"result"`
	Totals  domain.ComparisonTotals  `json:"totals"`
	Gainers []domain.ComparisonEntry `json:"gainers"`
	Losers  []domain.ComparisonEntry `json:"losers"`
}

// PaceReport is a year-over-year comparison with the snapshots it used
type PaceReport struct {
	Result *domain.ComparisonResult `json:"result"`
	Meta   domain.PaceMeta          `json:"meta"`
	Months []domain.PaceMonth       `json:"months"`
}

// BudgetResult is a saved projection
type BudgetResult struct {
	Key  string             `json:"key"`
	Kind domain.BudgetKind  `json:"kind"`
	Plan *domain.BudgetPlan `json:"plan"`
}

// AnalyticsService exposes the analytics core per property and year
type AnalyticsService struct {
	properties *config.PropertyRegistry
	registry   *snapshots.Registry
	engine     *consolidation.Engine
	pace       *analytics.PaceMatcher
	budgets    *budget.Store
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures an AnalyticsService
type Option func(*AnalyticsService)

// WithMetrics records operation metrics
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(s *AnalyticsService) { s.metrics = m }
}

// WithTracer wraps operations in spans
func WithTracer(t trace.Tracer) Option {
	return func(s *AnalyticsService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewAnalyticsService wires the service. budgets may be nil, which disables the budget operations.
func NewAnalyticsService(
	properties *config.PropertyRegistry,
	engine *consolidation.Engine,
	budgets *budget.Store,
	logger *slog.Logger,
	opts ...Option,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "analytics_service"))

	s := &AnalyticsService{
		properties: properties,
		registry:   engine.Registry(),
		engine:     engine,
		budgets:    budgets,
		tracer:     tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName),
		logger:     logger,
	}
	s.pace = analytics.NewPaceMatcher(s.registry, engine, logger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Properties lists the configured properties
func (s *AnalyticsService) Properties() []domain.Property {
	return s.properties.All()
}

// ResolveProperty maps any property name to its definition
func (s *AnalyticsService) ResolveProperty(name string) (domain.Property, error) {
	p, ok := s.properties.Lookup(name)
	if !ok {
		return domain.Property{}, fmt.Errorf("%q: %w", name, ErrUnknownProperty)
	}
	return p, nil
}

// Snapshots lists the snapshots of a property and year, newest first. An empty list is not an error.
func (s *AnalyticsService) Snapshots(ctx context.Context, q domain.Query) (snaps []domain.Snapshot, err error) {
	ctx, done := s.begin(ctx, "snapshots", q)
	defer func() { done(err) }()

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	snaps = s.registry.Discover(ctx, p.Folder, q.Year)
	s.metrics.RecordDiscovery(ctx, p.Folder, q.Year, len(snaps))
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	return snaps, nil
}

// Dataset returns the consolidated dataset of a property and year
func (s *AnalyticsService) Dataset(ctx context.Context, q domain.Query) (ds *domain.ConsolidatedDataset, err error) {
	ctx, done := s.begin(ctx, "dataset", q)
	defer func() { done(err) }()

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	ds = s.engine.Consolidate(ctx, p.Folder, q.Year)
	if ds.IsEmpty() {
		return nil, fmt.Errorf("%s %d: %w", p.Folder, q.Year, ErrNoData)
	}
	return ds, nil
}

// KPI computes the period, year-to-date, monthly, weekday and (for a month) daily views.
// The year before is consolidated too so every view carries its year-over-year delta.
func (s *AnalyticsService) KPI(ctx context.Context, q domain.Query, opts KPIOptions) (report *KPIReport, err error) {
	ctx, done := s.begin(ctx, "kpi", q)
	defer func() { done(err) }()

	metricName := opts.Metric
	if metricName == "" {
		metricName = string(kpi.MetricRevenue)
	}
	metric, err := kpi.ParseMetric(metricName)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidQuery)
	}

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	current := s.engine.Consolidate(ctx, p.Folder, q.Year)
	if current.IsEmpty() {
		return nil, fmt.Errorf("%s %d: %w", p.Folder, q.Year, ErrNoData)
	}
	previous := s.engine.Consolidate(ctx, p.Folder, q.Year-1)

	records := make([]domain.DailyRecord, 0, len(current.Records)+len(previous.Records))
	records = append(records, previous.Records...)
	records = append(records, current.Records...)
	hint := roomsHint(q, p)

	report = &KPIReport{
		Property:   p.Folder,
		Year:       q.Year,
		Month:      q.Month,
		YearToDate: kpi.YearToDate(records, q.Year, opts.End, hint),
		Metric:     string(metric),
		Months:     kpi.ComparisonTable(records, q.Year, metric, hint),
		Weekdays:   kpi.WeekdayPerformance(records, q.Year, q.Month),
	}
	if q.Month > 0 {
		report.Period = kpi.Monthly(records, q.Year, q.Month, hint)
		report.Daily = kpi.DailyBreakdown(records, q.Year, q.Month)
	} else {
		report.Period = kpi.Yearly(records, q.Year, hint)
	}
	return report, nil
}

// Pickup compares two snapshots of the same property and year. Empty names pick the two
// newest snapshots.
func (s *AnalyticsService) Pickup(ctx context.Context, q domain.Query, recentName, previousName string) (report *PickupReport, err error) {
	ctx, done := s.begin(ctx, "pickup", q)
	defer func() { done(err) }()

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	snaps := s.registry.Discover(ctx, p.Folder, q.Year)
	s.metrics.RecordDiscovery(ctx, p.Folder, q.Year, len(snaps))
	switch {
	case len(snaps) == 0:
		return nil, fmt.Errorf("%s %d: %w", p.Folder, q.Year, ErrNoData)
	case len(snaps) < 2 && (recentName == "" || previousName == ""):
		return nil, fmt.Errorf("%s %d has %d snapshot: %w", p.Folder, q.Year, len(snaps), ErrInsufficientHistory)
	}

	recent, previous := snaps[0], snaps[1%len(snaps)]
	if recentName != "" {
		if recent, err = s.findSnapshot(ctx, p.Folder, q.Year, recentName); err != nil {
			return nil, err
		}
	}
	if previousName != "" {
		if previous, err = s.findSnapshot(ctx, p.Folder, q.Year, previousName); err != nil {
			return nil, err
		}
	}

	res := analytics.Pickup(s.engine.LoadSnapshot(ctx, recent), s.engine.LoadSnapshot(ctx, previous))
	res.Property, res.Year = p.Folder, q.Year
	gainers, losers := analytics.TopMovers(res, DefaultTopMovers)

	s.logger.DebugContext(ctx, "Pickup computed",
		slog.String("property", p.Folder),
		slog.String("recent", recent.Filename),
		slog.String("previous", previous.Filename),
		slog.Int("dates", len(res.Entries)))

	return &PickupReport{
		Result:  res,
		Totals:  analytics.PickupTotals(res),
		Gainers: gainers,
		Losers:  losers,
	}, nil
}

// Pace compares the newest snapshot with its counterpart one booking year earlier
func (s *AnalyticsService) Pace(ctx context.Context, q domain.Query) (report *PaceReport, err error) {
	ctx, done := s.begin(ctx, "pace", q)
	defer func() { done(err) }()

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	res, meta, err := s.pace.Pace(ctx, p.Folder, q.Year)
	switch {
	case errors.Is(err, analytics.ErrNoHistory):
		return nil, fmt.Errorf("%s %d: %w: %w", p.Folder, q.Year, ErrInsufficientHistory, err)
	case err != nil:
		return nil, err
	case meta.SnapshotRecent == "":
		return nil, fmt.Errorf("%s %d: %w", p.Folder, q.Year, ErrNoData)
	}
	s.metrics.RecordPace(ctx, meta.IsExactPace)

	return &PaceReport{Result: res, Meta: meta, Months: analytics.PaceMonthly(res)}, nil
}

// Inspect reports the state of a snapshot folder. An empty category means the
// category the year is served from.
func (s *AnalyticsService) Inspect(ctx context.Context, q domain.Query, category domain.Category) (report *domain.StorageReport, err error) {
	ctx, done := s.begin(ctx, "inspect", q)
	defer func() { done(err) }()

	p, category, err := s.folderAndCategory(q, category)
	if err != nil {
		return nil, err
	}
	return s.registry.Inspect(ctx, p.Folder, q.Year, category)
}

// RebuildIndex rewrites index.json from the folder listing and drops the cached dataset
func (s *AnalyticsService) RebuildIndex(ctx context.Context, q domain.Query, category domain.Category) (names []string, err error) {
	ctx, done := s.begin(ctx, "rebuild_index", q)
	defer func() { done(err) }()

	p, category, err := s.folderAndCategory(q, category)
	if err != nil {
		return nil, err
	}
	names, err = s.registry.RebuildIndex(ctx, p.Folder, q.Year, category)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordIndexRebuild(ctx, string(category))
	if err := s.engine.Invalidate(ctx, p.Folder, q.Year); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cache after index rebuild",
			slog.String("property", p.Folder),
			slog.Int("year", q.Year),
			slog.String("error", err.Error()))
	}
	return names, nil
}

// InvalidateCache drops the cached dataset of a property and year
func (s *AnalyticsService) InvalidateCache(ctx context.Context, q domain.Query) (err error) {
	ctx, done := s.begin(ctx, "invalidate", q)
	defer func() { done(err) }()

	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return err
	}
	return s.engine.Invalidate(ctx, p.Folder, q.Year)
}

// SaveBudget projects q.Year from the year before and saves the plan.
// params.Rooms defaults to the property's room count.
func (s *AnalyticsService) SaveBudget(ctx context.Context, q domain.Query, params domain.BudgetParams, kind domain.BudgetKind) (result *BudgetResult, err error) {
	ctx, done := s.begin(ctx, "budget_save", q)
	defer func() { done(err) }()

	if s.budgets == nil {
		return nil, fmt.Errorf("budget store not configured: %w", ErrInvalidQuery)
	}
	if kind == "" {
		kind = domain.BudgetTest
	}
	if kind != domain.BudgetOfficial && kind != domain.BudgetTest {
		return nil, fmt.Errorf("budget kind %q: %w", kind, ErrInvalidQuery)
	}
	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	if params.Rooms <= 0 {
		params.Rooms = p.Rooms
	}

	base := s.engine.Consolidate(ctx, p.Folder, q.Year-1)
	if base.IsEmpty() {
		return nil, fmt.Errorf("no base data for %s %d: %w", p.Folder, q.Year-1, ErrNoData)
	}
	plan := budget.Project(base, params)

	key, err := s.budgets.Save(ctx, plan, kind)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordBudgetSaved(ctx, string(kind))
	return &BudgetResult{Key: key, Kind: kind, Plan: plan}, nil
}

// CompareBudget sets the official budget of q.Year against the bookings on the books
func (s *AnalyticsService) CompareBudget(ctx context.Context, q domain.Query) (cmp *domain.BudgetComparison, err error) {
	ctx, done := s.begin(ctx, "budget_compare", q)
	defer func() { done(err) }()

	if s.budgets == nil {
		return nil, fmt.Errorf("budget store not configured: %w", ErrInvalidQuery)
	}
	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return nil, err
	}
	hint := roomsHint(q, p)

	planned, err := s.budgets.LoadOfficial(ctx, p.Folder, q.Year, *hint)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrBudgetNotFound, err)
		}
		return nil, err
	}
	otb := s.engine.Consolidate(ctx, p.Folder, q.Year)
	cmp = budget.CompareToOTB(planned, otb, hint)
	cmp.Property, cmp.Year = p.Folder, q.Year
	return cmp, nil
}

// Aggregate sums every configured property for a year
func (s *AnalyticsService) Aggregate(ctx context.Context, year int) (ds *domain.ConsolidatedDataset, err error) {
	ctx, done := s.begin(ctx, "aggregate", domain.Query{Property: "all", Year: year})
	defer func() { done(err) }()

	ds = s.engine.ConsolidateAll(ctx, s.properties.Folders(), year)
	if ds.IsEmpty() {
		return nil, fmt.Errorf("all properties %d: %w", year, ErrNoData)
	}
	return ds, nil
}

func (s *AnalyticsService) findSnapshot(ctx context.Context, folder string, year int, name string) (domain.Snapshot, error) {
	snap, ok := s.registry.Find(ctx, folder, year, name)
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", name, ErrSnapshotMissing)
	}
	return snap, nil
}

func (s *AnalyticsService) folderAndCategory(q domain.Query, category domain.Category) (domain.Property, domain.Category, error) {
	p, err := s.ResolveProperty(q.Property)
	if err != nil {
		return domain.Property{}, "", err
	}
	if category == "" {
		category = s.registry.CategoryFor(q.Year)
	}
	if !category.Valid() {
		return domain.Property{}, "", fmt.Errorf("category %q: %w", category, ErrInvalidQuery)
	}
	return p, category, nil
}

// begin opens the span of an operation. The returned func ends it and records
// the outcome; expected data conditions are not span errors.
func (s *AnalyticsService) begin(ctx context.Context, op string, q domain.Query) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analytics."+op, trace.WithAttributes(
		attribute.String("property", q.Property),
		attribute.Int("year", q.Year),
	))

	return ctx, func(err error) {
		defer span.End()
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)

		if err == nil || isExpected(err) {
			if err != nil {
				span.SetAttributes(attribute.String("outcome", err.Error()))
			}
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordSystemError(ctx, "analytics_service")
		infrastructure.LoggerWithContext(ctx).ErrorContext(ctx, "Analytics operation failed",
			slog.String("component", "analytics_service"),
			slog.String("operation", op),
			slog.String("property", q.Property),
			slog.Int("year", q.Year),
			slog.String("error", err.Error()))
	}
}

func isExpected(err error) bool {
	for _, target := range []error{ErrNoData, ErrInsufficientHistory, ErrUnknownProperty, ErrInvalidQuery, ErrBudgetNotFound, ErrSnapshotMissing} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func roomsHint(q domain.Query, p domain.Property) *int {
	if h := q.Hint(); h != nil {
		return h
	}
	if p.Rooms > 0 {
		return domain.IntPtr(p.Rooms)
	}
	return domain.IntPtr(config.DefaultRoomsHint)
}
