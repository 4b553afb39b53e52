package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/consolidation"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/shared/testutil"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/snapshots"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// todayCapture is the capture date of the newest 2025 snapshot in the fixtures
var todayCapture = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func paceTarget() time.Time {
	return todayCapture.AddDate(0, 0, -PaceOffsetDays)
}

func snapshotName(d time.Time) string {
	return fmt.Sprintf("La_Terrazza_Forecast_Snapshot_%s.xlsx", d.Format("20060102"))
}

func newMatcher(fx *testutil.SnapshotFixtures) *PaceMatcher {
	registry := snapshots.NewRegistry(fx.Store, nil, snapshots.WithClock(func() time.Time { return fixedNow }))
	engine := consolidation.NewEngine(registry, nil, nil)
	return NewPaceMatcher(registry, engine, nil)
}

func seedToday(fx *testutil.SnapshotFixtures) {
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025, snapshotName(todayCapture),
		testutil.D("2025-04-01", 300, 3),
		testutil.D("2025-04-02", 150, 1),
		testutil.D("2025-05-01", 90, 1),
	)
}

func TestPacePicksNearestSnapshot(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	near := paceTarget().AddDate(0, 0, -2)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2024, snapshotName(near),
		testutil.D("2024-04-02", 200, 2),
		testutil.D("2024-05-02", 0, 0),
	)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2024, snapshotName(paceTarget().AddDate(0, 0, 12)),
		testutil.D("2024-04-02", 999, 9),
	)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2023, snapshotName(paceTarget().AddDate(0, 0, -400)),
		testutil.D("2023-04-04", 111, 1),
	)

	res, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	require.NoError(t, err)

	assert.True(t, meta.IsExactPace)
	assert.Equal(t, 2, meta.DistanceDays)
	assert.True(t, meta.DateOld.Equal(near))
	assert.True(t, meta.DateRecent.Equal(todayCapture))
	assert.True(t, meta.TargetDate.Equal(paceTarget()))
	assert.Equal(t, snapshotName(near), meta.SnapshotOld)

	require.Len(t, res.Entries, 2, "2025-04-02 has no aligned day")
	first := res.Entries[0]
	assert.Equal(t, "2025-04-01", first.Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-04-02", first.PreviousDate.Format(domain.DateLayout))
	assert.Equal(t, time.Tuesday, first.Date.Weekday())
	assert.Equal(t, first.Date.Weekday(), first.PreviousDate.Weekday())
	assert.Equal(t, 100.0, first.Revenue.Delta)

	months := PaceMonthly(res)
	require.Len(t, months, 2)
	assert.Equal(t, domain.PaceMonth{Month: 4, Name: "Aprile", Revenue: 300, RevenueLastYear: 200, Delta: 100, DeltaPct: 50}, months[0])
	assert.Equal(t, 0.0, months[1].DeltaPct, "no last-year revenue")
	assert.Equal(t, 90.0, months[1].Delta)
}

func TestPaceFallsBackToOldestSnapshot(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	oldest := paceTarget().AddDate(0, 0, -60)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2024, snapshotName(paceTarget().AddDate(0, 0, 40)),
		testutil.D("2024-04-02", 999, 9),
	)
	fx.Put(domain.CategoryBaseline, "La_Terrazza", 2024, fmt.Sprintf("baseline_%s.xlsx", oldest.Format("02012006")),
		testutil.D("2024-04-02", 120, 1),
	)

	res, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	require.NoError(t, err)

	assert.False(t, meta.IsExactPace)
	assert.True(t, meta.DateOld.Equal(oldest))
	assert.Equal(t, 60, meta.DistanceDays)
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, 120.0, res.Entries[0].Revenue.Previous)
}

func TestPaceSearchesOlderYears(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	old := paceTarget().AddDate(0, 0, -365)
	fx.Put(domain.CategoryBaseline, "La_Terrazza", 2023, fmt.Sprintf("baseline_%s.xlsx", old.Format("02012006")),
		testutil.D("2023-04-04", 80, 1),
	)

	res, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	require.NoError(t, err)

	assert.False(t, meta.IsExactPace)
	assert.True(t, meta.DateOld.Equal(old))
	assert.Equal(t, 365, meta.DistanceDays)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "2025-04-01", res.Entries[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2023-04-04", res.Entries[0].PreviousDate.Format(domain.DateLayout))
	assert.Equal(t, 80.0, res.Entries[0].Revenue.Previous)
}

func TestPaceFallsBackToOldestAcrossYears(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	oldest := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2024, snapshotName(paceTarget().AddDate(0, 0, 40)),
		testutil.D("2024-04-02", 999, 9),
	)
	fx.Put(domain.CategoryBaseline, "La_Terrazza", 2023, fmt.Sprintf("baseline_%s.xlsx", oldest.Format("02012006")),
		testutil.D("2023-04-04", 70, 1),
	)

	_, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	require.NoError(t, err)

	assert.False(t, meta.IsExactPace)
	assert.True(t, meta.DateOld.Equal(oldest))
	assert.Equal(t, "baseline_03032023.xlsx", meta.SnapshotOld)
}

func TestPaceStopsAfterEmptyYears(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025-PaceMaxEmptyYears-2, snapshotName(paceTarget().AddDate(-3, 0, 0)),
		testutil.D("2021-04-06", 50, 1),
	)

	_, _, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestPaceWithoutHistory(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	seedToday(fx)

	res, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	assert.ErrorIs(t, err, ErrNoHistory)
	assert.True(t, res.IsEmpty())
	assert.Equal(t, snapshotName(todayCapture), meta.SnapshotRecent)
}

func TestPaceWithoutSnapshots(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)

	res, meta, err := newMatcher(fx).Pace(context.Background(), "La_Terrazza", 2025)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	assert.Equal(t, domain.PaceMeta{}, meta)
}

func TestMatch(t *testing.T) {
	target := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	snap := func(name string, offset int) domain.Snapshot {
		return domain.Snapshot{Filename: name, CaptureDate: target.AddDate(0, 0, offset)}
	}

	tests := []struct {
		name       string
		candidates []domain.Snapshot
		want       string
		distance   int
	}{
		{"closest within tolerance", []domain.Snapshot{snap("a", -2), snap("b", 12), snap("c", -400)}, "a", 2},
		{"tolerance is inclusive", []domain.Snapshot{snap("a", 10), snap("b", -30)}, "a", 10},
		{"oldest when nothing is near", []domain.Snapshot{snap("a", 40), snap("b", -45), snap("c", 80)}, "b", 45},
		{"single candidate", []domain.Snapshot{snap("only", 200)}, "only", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := Match(tt.candidates, target)
			assert.Equal(t, tt.want, got.Filename)
			assert.Equal(t, tt.distance, d)
		})
	}
}
