package kpi

import (
	"fmt"
	"sort"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Metric names a single KPI field
type Metric string

const (
	MetricRevenue   Metric = "revenue"
	MetricRoomsSold Metric = "rooms_sold"
	MetricADR       Metric = "adr"
	MetricOccupancy Metric = "occupancy_pct"
	MetricRevPAR    Metric = "revpar"
)

// ParseMetric validates a metric name; an empty name means revenue
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case "":
		return MetricRevenue, nil
	case MetricRevenue, MetricRoomsSold, MetricADR, MetricOccupancy, MetricRevPAR:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value reads the metric from an aggregate
func (m Metric) Value(metrics domain.Metrics) float64 {
	switch m {
	case MetricRoomsSold:
		return float64(metrics.RoomsSold)
	case MetricADR:
		return metrics.ADR
	case MetricOccupancy:
		return metrics.OccupancyPct
	case MetricRevPAR:
		return metrics.RevPAR
	default:
		return metrics.Revenue
	}
}

func (m Metric) delta(d domain.Delta) domain.FieldDelta {
	switch m {
	case MetricRoomsSold:
		return d.RoomsSold
	case MetricADR:
		return d.ADR
	case MetricOccupancy:
		return d.OccupancyPct
	case MetricRevPAR:
		return d.RevPAR
	default:
		return d.Revenue
	}
}

// DailyBreakdown lists the days of one month in date order
func DailyBreakdown(records []domain.DailyRecord, year, month int) []domain.DailyBreakdownRow {
	days := inMonth(records, year, month)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	rows := make([]domain.DailyBreakdownRow, 0, len(days))
	for _, r := range days {
		rows = append(rows, domain.DailyBreakdownRow{
			Day:          r.Date.Day(),
			Weekday:      WeekdayAbbr(r.Date.Weekday()),
			Revenue:      Round2(r.Revenue),
			RoomsSold:    r.RoomsSold,
			ADR:          Round2(r.ADR),
			OccupancyPct: Round2(r.OccupancyPct),
			RevPAR:       Round2(r.RevPAR),
		})
	}
	return rows
}

// ComparisonTable compares one metric month by month against the previous year
func ComparisonTable(records []domain.DailyRecord, year int, metric Metric, roomHint *int) []domain.MonthComparisonRow {
	rows := make([]domain.MonthComparisonRow, 0, 12)
	for month := 1; month <= 12; month++ {
		c := Monthly(records, year, month, roomHint)
		d := metric.delta(c.Delta)
		rows = append(rows, domain.MonthComparisonRow{
			Month:    month,
			Name:     MonthName(month),
			Current:  metric.Value(c.Current),
			Previous: metric.Value(c.Previous),
			Abs:      d.Abs,
			Pct:      d.Pct,
		})
	}
	return rows
}

// WeekdayPerformance groups a year, or one month of it when month is 1-12, by weekday.
// Revenue and rooms are summed; adr, occupancy and revpar are daily means. Weekdays with
// no data are omitted.
func WeekdayPerformance(records []domain.DailyRecord, year, month int) []domain.WeekdayRow {
	var acc [7]struct {
		days      int
		revenue   float64
		sold      int
		adr       float64
		occupancy float64
		revpar    float64
	}

	for _, r := range records {
		if r.Date.Year() != year || (month >= 1 && month <= 12 && int(r.Date.Month()) != month) {
			continue
		}
		a := &acc[weekdayIndex(r.Date.Weekday())]
		a.days++
		a.revenue += r.Revenue
		a.sold += r.RoomsSold
		a.adr += r.ADR
		a.occupancy += r.OccupancyPct
		a.revpar += r.RevPAR
	}

	var rows []domain.WeekdayRow
	for i, a := range acc {
		if a.days == 0 {
			continue
		}
		n := float64(a.days)
		rows = append(rows, domain.WeekdayRow{
			Weekday:      weekdayNames[i],
			Days:         a.days,
			Revenue:      Round2(a.revenue),
			RoomsSold:    a.sold,
			ADR:          Round2(a.adr / n),
			OccupancyPct: Round2(a.occupancy / n),
			RevPAR:       Round2(a.revpar / n),
		})
	}
	return rows
}
