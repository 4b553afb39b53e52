package kpi

import (
	"github.com/shopspring/decimal"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Aggregate computes the KPIs of an arbitrary record subset. roomHint may be nil.
func Aggregate(records []domain.DailyRecord, roomHint *int) domain.Metrics {
	if len(records) == 0 {
		return domain.Metrics{Basis: domain.BasisNone}
	}

	revenue := decimal.Zero
	sold := 0
	capacity := 0
	hasCapacity := false
	occupancySum := 0.0
	for _, r := range records {
		revenue = revenue.Add(decimal.NewFromFloat(r.Revenue))
		sold += r.RoomsSold
		occupancySum += r.OccupancyPct
		if c, ok := r.Capacity(); ok {
			capacity += c
			hasCapacity = true
		}
	}

	m := domain.Metrics{
		Revenue:   round(revenue),
		RoomsSold: sold,
		DaysCount: len(records),
	}

	adr := decimal.Zero
	if sold > 0 {
		adr = revenue.Div(decimal.NewFromInt(int64(sold)))
	}
	m.ADR = round(adr)

	var available int
	switch {
	case hasCapacity:
		m.Basis = domain.BasisCapacity
		available = capacity
	case roomHint != nil && *roomHint > 0:
		m.Basis = domain.BasisRoomHint
		available = *roomHint * len(records)
	default:
		m.Basis = domain.BasisMeanOccupancy
		occ := decimal.NewFromFloat(occupancySum).Div(decimal.NewFromInt(int64(len(records))))
		m.OccupancyPct = round(occ)
		if occ.IsPositive() {
			m.RevPAR = round(adr.Mul(occ).Div(decimal.NewFromInt(100)))
		}
		return m
	}

	m.RoomsAvailable = available
	if available > 0 {
		avail := decimal.NewFromInt(int64(available))
		m.OccupancyPct = round(decimal.NewFromInt(int64(sold)).Div(avail).Mul(decimal.NewFromInt(100)))
		m.RevPAR = round(revenue.Div(avail))
	}
	return m
}

// Delta compares current against previous for every KPI field
func Delta(current, previous domain.Metrics) domain.Delta {
	return domain.Delta{
		Revenue:      FieldDelta(current.Revenue, previous.Revenue),
		RoomsSold:    FieldDelta(float64(current.RoomsSold), float64(previous.RoomsSold)),
		ADR:          FieldDelta(current.ADR, previous.ADR),
		OccupancyPct: FieldDelta(current.OccupancyPct, previous.OccupancyPct),
		RevPAR:       FieldDelta(current.RevPAR, previous.RevPAR),
	}
}

// FieldDelta is the absolute and percent change of one value
func FieldDelta(current, previous float64) domain.FieldDelta {
	return domain.FieldDelta{
		Abs: Round2(current - previous),
		Pct: PctChange(current, previous),
	}
}

// PctChange is the percent change from previous to current, rounded to two decimals.
// It is 0 when both are 0 and 100 when only previous is 0.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return Round2((current - previous) / previous * 100)
}

// Round2 rounds half away from zero to two decimals
func Round2(f float64) float64 {
	return round(decimal.NewFromFloat(f))
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
