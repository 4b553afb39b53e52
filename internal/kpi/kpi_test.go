package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

func day(date string, revenue float64, sold int) domain.DailyRecord {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return domain.DailyRecord{Date: t, Revenue: revenue, RoomsSold: sold}
}

func withCapacity(r domain.DailyRecord, rooms int) domain.DailyRecord {
	r.RoomsAvailable = domain.IntPtr(rooms)
	return r
}

func withOccupancy(r domain.DailyRecord, occ float64) domain.DailyRecord {
	r.OccupancyPct = occ
	return r
}

func TestAggregateResolutionOrder(t *testing.T) {
	hint := domain.IntPtr(5)

	t.Run("declared capacity wins over the hint", func(t *testing.T) {
		records := []domain.DailyRecord{
			withCapacity(day("2025-01-01", 300, 3), 4),
			withCapacity(day("2025-01-02", 100, 1), 4),
		}
		m := Aggregate(records, hint)
		assert.Equal(t, domain.BasisCapacity, m.Basis)
		assert.Equal(t, 400.0, m.Revenue)
		assert.Equal(t, 4, m.RoomsSold)
		assert.Equal(t, 100.0, m.ADR)
		assert.Equal(t, 8, m.RoomsAvailable)
		assert.Equal(t, 50.0, m.OccupancyPct)
		assert.Equal(t, 50.0, m.RevPAR)
		assert.Equal(t, 2, m.DaysCount)
	})

	t.Run("room hint times days", func(t *testing.T) {
		records := []domain.DailyRecord{day("2025-01-01", 300, 3), day("2025-01-02", 100, 1)}
		m := Aggregate(records, hint)
		assert.Equal(t, domain.BasisRoomHint, m.Basis)
		assert.Equal(t, 10, m.RoomsAvailable)
		assert.Equal(t, 40.0, m.OccupancyPct)
		assert.Equal(t, 40.0, m.RevPAR)
	})

	t.Run("mean occupancy fallback", func(t *testing.T) {
		records := []domain.DailyRecord{
			withOccupancy(day("2025-01-01", 300, 3), 60),
			withOccupancy(day("2025-01-02", 100, 1), 20),
		}
		m := Aggregate(records, nil)
		assert.Equal(t, domain.BasisMeanOccupancy, m.Basis)
		assert.Equal(t, 40.0, m.OccupancyPct)
		assert.Equal(t, 40.0, m.RevPAR, "adr times occupancy")
		assert.Zero(t, m.RoomsAvailable)
	})

	t.Run("no rooms sold", func(t *testing.T) {
		m := Aggregate([]domain.DailyRecord{day("2025-01-01", 0, 0)}, nil)
		assert.Equal(t, 0.0, m.ADR)
		assert.Equal(t, 0.0, m.RevPAR)
	})

	t.Run("empty subset", func(t *testing.T) {
		m := Aggregate(nil, hint)
		assert.Equal(t, domain.Metrics{Basis: domain.BasisNone}, m)
	})
}

func TestAggregateRoundsMoney(t *testing.T) {
	records := []domain.DailyRecord{day("2025-01-01", 0.1, 1), day("2025-01-02", 0.2, 1), day("2025-01-03", 100, 1)}
	m := Aggregate(records, nil)
	assert.Equal(t, 100.3, m.Revenue)
	assert.Equal(t, 33.43, m.ADR)
}

func TestDeltaThreeWayRule(t *testing.T) {
	zero := domain.Metrics{}
	hundred := domain.Metrics{Revenue: 100, RoomsSold: 4, ADR: 25}
	eighty := domain.Metrics{Revenue: 80, RoomsSold: 5, ADR: 16}

	d := Delta(zero, zero)
	assert.Equal(t, domain.FieldDelta{}, d.Revenue)

	d = Delta(hundred, zero)
	assert.Equal(t, 100.0, d.Revenue.Abs)
	assert.Equal(t, 100.0, d.Revenue.Pct)

	d = Delta(hundred, eighty)
	assert.Equal(t, 20.0, d.Revenue.Abs)
	assert.Equal(t, 25.0, d.Revenue.Pct)
	assert.Equal(t, -1.0, d.RoomsSold.Abs)
	assert.Equal(t, -20.0, d.RoomsSold.Pct)
	assert.Equal(t, 56.25, d.ADR.Pct)

	assert.Equal(t, -100.0, PctChange(0, 50))
}

func records2024And2025() []domain.DailyRecord {
	return []domain.DailyRecord{
		day("2024-01-15", 100, 1),
		day("2024-03-10", 200, 2),
		day("2024-03-20", 50, 1),
		day("2025-01-15", 150, 1),
		day("2025-03-10", 300, 3),
		day("2025-03-25", 500, 4),
	}
}

func TestYearly(t *testing.T) {
	c := Yearly(records2024And2025(), 2025, nil)
	assert.Equal(t, "2025", c.Label)
	assert.Equal(t, 950.0, c.Current.Revenue)
	assert.Equal(t, 350.0, c.Previous.Revenue)
	assert.Equal(t, 600.0, c.Delta.Revenue.Abs)
	assert.Equal(t, 171.43, c.Delta.Revenue.Pct)
}

func TestMonthly(t *testing.T) {
	c := Monthly(records2024And2025(), 2025, 3, domain.IntPtr(2))
	assert.Equal(t, "Marzo 2025", c.Label)
	assert.Equal(t, 800.0, c.Current.Revenue)
	assert.Equal(t, 2, c.Current.DaysCount)
	assert.Equal(t, 175.0, c.Current.OccupancyPct)
	assert.Equal(t, 250.0, c.Previous.Revenue)
}

func TestYearToDate(t *testing.T) {
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	c := YearToDate(records2024And2025(), 2025, end, nil)
	assert.Equal(t, "YTD 2025-03-15", c.Label)
	assert.Equal(t, 450.0, c.Current.Revenue)
	assert.Equal(t, 300.0, c.Previous.Revenue)

	c = YearToDate(records2024And2025(), 2025, time.Time{}, nil)
	assert.Equal(t, "YTD 2025-03-25", c.Label)
	assert.Equal(t, 950.0, c.Current.Revenue)
	assert.Equal(t, 350.0, c.Previous.Revenue)

	leap := []domain.DailyRecord{day("2023-02-28", 10, 1), day("2024-02-29", 20, 1)}
	c = YearToDate(leap, 2024, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, 10.0, c.Previous.Revenue)
}

func TestDailyBreakdown(t *testing.T) {
	rows := DailyBreakdown(records2024And2025(), 2025, 3)
	require.Len(t, rows, 2)
	assert.Equal(t, 10, rows[0].Day)
	assert.Equal(t, "Lun", rows[0].Weekday)
	assert.Equal(t, "Mar", rows[1].Weekday)
	assert.Empty(t, DailyBreakdown(nil, 2025, 3))
}

func TestComparisonTable(t *testing.T) {
	rows := ComparisonTable(records2024And2025(), 2025, MetricRevenue, nil)
	require.Len(t, rows, 12)
	assert.Equal(t, "Gennaio", rows[0].Name)
	assert.Equal(t, 150.0, rows[0].Current)
	assert.Equal(t, 100.0, rows[0].Previous)
	assert.Equal(t, 50.0, rows[0].Pct)
	assert.Equal(t, domain.MonthComparisonRow{Month: 2, Name: "Febbraio"}, rows[1])

	rooms := ComparisonTable(records2024And2025(), 2025, MetricRoomsSold, nil)
	assert.Equal(t, 7.0, rooms[2].Current)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricRevenue, m)

	m, err = ParseMetric("adr")
	require.NoError(t, err)
	assert.Equal(t, MetricADR, m)

	_, err = ParseMetric("profit")
	assert.Error(t, err)
}

func TestWeekdayPerformance(t *testing.T) {
	records := []domain.DailyRecord{
		withOccupancy(day("2025-03-10", 100, 1), 50), // Monday
		withOccupancy(day("2025-03-17", 300, 3), 70), // Monday
		day("2025-03-15", 80, 1),                     // Saturday
		day("2025-04-14", 999, 9),                    // Monday, other month
	}

	rows := WeekdayPerformance(records, 2025, 3)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lunedì", rows[0].Weekday)
	assert.Equal(t, 2, rows[0].Days)
	assert.Equal(t, 400.0, rows[0].Revenue)
	assert.Equal(t, 60.0, rows[0].OccupancyPct)
	assert.Equal(t, "Sabato", rows[1].Weekday)

	all := WeekdayPerformance(records, 2025, 0)
	assert.Equal(t, 3, all[0].Days)
}
