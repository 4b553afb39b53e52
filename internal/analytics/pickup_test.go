package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

func rec(date string, revenue float64, sold int) domain.DailyRecord {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return domain.DailyRecord{Date: t, Revenue: revenue, RoomsSold: sold}
}

func TestPickupInnerJoin(t *testing.T) {
	a := domain.NewDataset("La_Terrazza", 2025, []string{"snap_b.xlsx"}, []domain.DailyRecord{
		rec("2025-01-01", 100, 2),
		rec("2025-01-02", 50, 1),
	})
	b := domain.NewDataset("La_Terrazza", 2025, []string{"snap_a.xlsx"}, []domain.DailyRecord{
		rec("2025-01-01", 80, 1),
	})

	res := Pickup(a, b)

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, "2025-01-01", e.Date.Format(domain.DateLayout))
	assert.Equal(t, 20.0, e.Revenue.Delta)
	assert.Equal(t, 1.0, e.RoomsSold.Delta)
	assert.Equal(t, domain.ComparisonPickup, res.Kind)
	assert.Equal(t, "snap_b.xlsx", res.RecentSource)
	assert.Equal(t, "snap_a.xlsx", res.PreviousSource)
}

func TestPickupSameSnapshotIsAllZero(t *testing.T) {
	a := domain.NewDataset("La_Terrazza", 2025, []string{"snap.xlsx"}, []domain.DailyRecord{
		rec("2025-01-01", 100, 2),
		rec("2025-01-02", 50, 1),
	})
	again := domain.NewDataset("La_Terrazza", 2025, []string{"snap.xlsx"}, a.Records)

	res := Pickup(a, again)

	require.Len(t, res.Entries, 2)
	for _, e := range res.Entries {
		assert.Zero(t, e.Revenue.Delta)
		assert.Zero(t, e.RoomsSold.Delta)
		assert.Zero(t, e.ADR.Delta)
		assert.Zero(t, e.RevPAR.Delta)
		assert.Zero(t, e.OccupancyPct.Delta)
		assert.Equal(t, e.Revenue.Recent, e.Revenue.Previous)
	}
}

func TestPickupEmptyInputs(t *testing.T) {
	res := Pickup(nil, nil)
	assert.True(t, res.IsEmpty())
	assert.NotNil(t, res.Entries)

	a := domain.NewDataset("p", 2025, []string{"a"}, []domain.DailyRecord{rec("2025-01-01", 1, 1)})
	assert.True(t, Pickup(a, domain.EmptyDataset("p", 2025)).IsEmpty())
}

func TestPickupTotalsAndMovers(t *testing.T) {
	a := domain.NewDataset("p", 2025, []string{"new"}, []domain.DailyRecord{
		rec("2025-01-01", 100, 2),
		rec("2025-01-02", 50, 1),
		rec("2025-01-03", 10, 1),
		rec("2025-01-04", 70, 1),
	})
	b := domain.NewDataset("p", 2025, []string{"old"}, []domain.DailyRecord{
		rec("2025-01-01", 80, 1),
		rec("2025-01-02", 50, 1),
		rec("2025-01-03", 40, 2),
		rec("2025-01-04", 20, 1),
	})
	res := Pickup(a, b)

	totals := PickupTotals(res)
	assert.Equal(t, 4, totals.Dates)
	assert.Equal(t, 230.0, totals.Revenue.Recent)
	assert.Equal(t, 190.0, totals.Revenue.Previous)
	assert.Equal(t, 40.0, totals.Revenue.Delta)
	assert.Equal(t, 0.0, totals.RoomsSold.Delta)

	gainers, losers := TopMovers(res, 1)
	require.Len(t, gainers, 1)
	require.Len(t, losers, 1)
	assert.Equal(t, "2025-01-04", gainers[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-01-03", losers[0].Date.Format(domain.DateLayout))

	gainers, losers = TopMovers(res, 10)
	assert.Len(t, gainers, 2)
	assert.Len(t, losers, 1)

	gainers, losers = TopMovers(nil, 3)
	assert.Nil(t, gainers)
	assert.Nil(t, losers)
}
