package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/analytics"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/budget"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/consolidation"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/shared/testutil"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/snapshots"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

const (
	febSnapshot = "La_Terrazza_Forecast_Snapshot_20250201.xlsx"
	marSnapshot = "La_Terrazza_Forecast_Snapshot_20250301.xlsx"
)

func newService(t *testing.T, fx *testutil.SnapshotFixtures) *AnalyticsService {
	t.Helper()
	clock := func() time.Time { return fixedNow }

	props, err := config.NewPropertyRegistry(nil)
	require.NoError(t, err)
	registry := snapshots.NewRegistry(fx.Store, nil, snapshots.WithClock(clock))
	engine := consolidation.NewEngine(registry, nil, nil)
	budgets := budget.NewStore(fx.Store, nil, nil, budget.WithClock(clock))
	return NewAnalyticsService(props, engine, budgets, nil)
}

func seedTerrazza(fx *testutil.SnapshotFixtures) {
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025, febSnapshot,
		testutil.D("2025-04-01", 100, 1),
		testutil.D("2025-04-02", 200, 2),
	)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025, marSnapshot,
		testutil.D("2025-04-01", 300, 3),
		testutil.D("2025-04-02", 150, 1),
	)
	fx.Put(domain.CategoryBaseline, "La_Terrazza", 2024, "storico_2024.xlsx",
		testutil.D("2024-04-01", 80, 1),
		testutil.D("2024-04-02", 90, 1),
	)
}

func TestResolveProperty(t *testing.T) {
	svc := newService(t, testutil.NewSnapshotFixtures(t))

	p, err := svc.ResolveProperty("la terrazza di jenny")
	require.NoError(t, err)
	assert.Equal(t, "La_Terrazza", p.Folder)

	_, err = svc.ResolveProperty("Hotel Nowhere")
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.Len(t, svc.Properties(), 3)
}

func TestSnapshotsEmptyIsNotAnError(t *testing.T) {
	svc := newService(t, testutil.NewSnapshotFixtures(t))

	snaps, err := svc.Snapshots(context.Background(), domain.Query{Property: "Lavagnini", Year: 2025})
	require.NoError(t, err)
	assert.NotNil(t, snaps)
	assert.Empty(t, snaps)
}

func TestSnapshotsNewestFirst(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)

	snaps, err := svc.Snapshots(context.Background(), domain.Query{Property: "La_Terrazza", Year: 2025})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, marSnapshot, snaps[0].Filename)
}

func TestDatasetNoData(t *testing.T) {
	svc := newService(t, testutil.NewSnapshotFixtures(t))

	_, err := svc.Dataset(context.Background(), domain.Query{Property: "Lavagnini", Year: 2025})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = svc.Dataset(context.Background(), domain.Query{Property: "unknown", Year: 2025})
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestKPIYearlyAndMonthly(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	ctx := context.Background()

	report, err := svc.KPI(ctx, domain.Query{Property: "La_Terrazza", Year: 2025}, KPIOptions{})
	require.NoError(t, err)
	assert.Equal(t, "revenue", report.Metric)
	assert.Equal(t, 450.0, report.Period.Current.Revenue)
	assert.Equal(t, 170.0, report.Period.Previous.Revenue)
	assert.Len(t, report.Months, 12)
	assert.Empty(t, report.Daily)

	monthly, err := svc.KPI(ctx, domain.Query{Property: "La_Terrazza", Year: 2025, Month: 4}, KPIOptions{Metric: "adr"})
	require.NoError(t, err)
	assert.Equal(t, "adr", monthly.Metric)
	assert.Equal(t, 450.0, monthly.Period.Current.Revenue)
	assert.Len(t, monthly.Daily, 2)
}

func TestKPIErrors(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	ctx := context.Background()

	_, err := svc.KPI(ctx, domain.Query{Property: "La_Terrazza", Year: 2025}, KPIOptions{Metric: "profit"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.KPI(ctx, domain.Query{Property: "Pitti_Palace", Year: 2025}, KPIOptions{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPickupDefaultsToTwoNewest(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)

	report, err := svc.Pickup(context.Background(), domain.Query{Property: "La_Terrazza", Year: 2025}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "La_Terrazza", report.Result.Property)
	assert.Equal(t, 2, report.Totals.Dates)
	assert.Equal(t, 150.0, report.Totals.Revenue.Delta)
	require.Len(t, report.Gainers, 1)
	assert.Equal(t, 200.0, report.Gainers[0].Revenue.Delta)
	require.Len(t, report.Losers, 1)
	assert.Equal(t, -50.0, report.Losers[0].Revenue.Delta)
}

func TestPickupExplicitSnapshots(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	q := domain.Query{Property: "La_Terrazza", Year: 2025}

	report, err := svc.Pickup(context.Background(), q, febSnapshot, marSnapshot)
	require.NoError(t, err)
	assert.Equal(t, -150.0, report.Totals.Revenue.Delta)

	_, err = svc.Pickup(context.Background(), q, "missing.xlsx", "")
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestPickupNeedsTwoSnapshots(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	fx.Put(domain.CategoryForecast, "Lavagnini", 2025, "Lavagnini_Forecast_Snapshot_20250301.xlsx",
		testutil.D("2025-04-01", 100, 1),
	)
	svc := newService(t, fx)
	ctx := context.Background()

	_, err := svc.Pickup(ctx, domain.Query{Property: "Lavagnini", Year: 2025}, "", "")
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = svc.Pickup(ctx, domain.Query{Property: "Pitti_Palace", Year: 2025}, "", "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPaceFallsBackToOldestSnapshot(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)

	report, err := svc.Pace(context.Background(), domain.Query{Property: "La_Terrazza", Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, marSnapshot, report.Meta.SnapshotRecent)
	assert.False(t, report.Meta.IsExactPace)
	assert.NotEmpty(t, report.Meta.SnapshotOld)
}

func TestPaceErrors(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	fx.Put(domain.CategoryForecast, "Lavagnini", 2025, "Lavagnini_Forecast_Snapshot_20250301.xlsx",
		testutil.D("2025-04-01", 100, 1),
	)
	svc := newService(t, fx)
	ctx := context.Background()

	_, err := svc.Pace(ctx, domain.Query{Property: "Lavagnini", Year: 2025})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
	assert.ErrorIs(t, err, analytics.ErrNoHistory)

	_, err = svc.Pace(ctx, domain.Query{Property: "Pitti_Palace", Year: 2025})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRebuildIndexAndInspect(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	ctx := context.Background()
	q := domain.Query{Property: "La_Terrazza", Year: 2025}

	names, err := svc.RebuildIndex(ctx, q, "")
	require.NoError(t, err)
	assert.Len(t, names, 2)

	report, err := svc.Inspect(ctx, q, domain.CategoryForecast)
	require.NoError(t, err)
	assert.True(t, report.IndexPresent)
	assert.Equal(t, 2, report.SnapshotCount)

	_, err = svc.Inspect(ctx, q, domain.Category("Archive"))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestInvalidateCache(t *testing.T) {
	svc := newService(t, testutil.NewSnapshotFixtures(t))

	assert.NoError(t, svc.InvalidateCache(context.Background(), domain.Query{Property: "Lavagnini", Year: 2025}))
	assert.ErrorIs(t, svc.InvalidateCache(context.Background(), domain.Query{Property: "nope", Year: 2025}), ErrUnknownProperty)
}

func TestSaveAndCompareBudget(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	ctx := context.Background()
	q := domain.Query{Property: "La_Terrazza", Year: 2025}

	_, err := svc.CompareBudget(ctx, q)
	assert.ErrorIs(t, err, ErrBudgetNotFound)

	result, err := svc.SaveBudget(ctx, q, domain.BudgetParams{OccupancyIncrease: 5, ADRIncrease: 10}, domain.BudgetOfficial)
	require.NoError(t, err)
	assert.Equal(t, budget.OfficialKey("La_Terrazza", 2025), result.Key)
	assert.Equal(t, 2024, result.Plan.BaseYear)
	assert.Equal(t, 2025, result.Plan.TargetYear)
	assert.Equal(t, 5, result.Plan.Params.Rooms, "rooms default to the property")

	cmp, err := svc.CompareBudget(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "La_Terrazza", cmp.Property)
	assert.Equal(t, 2025, cmp.Year)
	assert.Equal(t, 450.0, cmp.OTB.Revenue)
}

func TestSaveBudgetErrors(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	svc := newService(t, fx)
	ctx := context.Background()

	_, err := svc.SaveBudget(ctx, domain.Query{Property: "La_Terrazza", Year: 2025}, domain.BudgetParams{}, domain.BudgetKind("draft"))
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.SaveBudget(ctx, domain.Query{Property: "La_Terrazza", Year: 2024}, domain.BudgetParams{}, domain.BudgetTest)
	assert.ErrorIs(t, err, ErrNoData, "2023 has no base data")
}

func TestAggregate(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedTerrazza(fx)
	fx.Put(domain.CategoryForecast, "Lavagnini", 2025, "Lavagnini_Forecast_Snapshot_20250301.xlsx",
		testutil.D("2025-04-01", 50, 1),
	)
	svc := newService(t, fx)

	ds, err := svc.Aggregate(context.Background(), 2025)
	require.NoError(t, err)
	var total float64
	for _, r := range ds.Records {
		total += r.Revenue
	}
	assert.Equal(t, 500.0, total)

	_, err = svc.Aggregate(context.Background(), 2030)
	assert.ErrorIs(t, err, ErrNoData)
}
