package budget

import (
	"math"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Project builds the budget for the year after base.Year from the base days
func Project(base *domain.ConsolidatedDataset, params domain.BudgetParams) *domain.BudgetPlan {
	plan := &domain.BudgetPlan{
		Params: params,
		Days:   []domain.BudgetDay{},
	}
	if base == nil {
		plan.Months, plan.Total = Summarize(plan.Days)
		return plan
	}
	plan.Property = base.Property
	plan.BaseYear = base.Year
	plan.TargetYear = base.Year + 1

	for _, r := range base.Records {
		target, ok := nextYear(r.Date)
		if !ok {
			continue
		}
		month := int(r.Date.Month())
		occInc := increment(params.OccupancyIncrease, params.MonthlyOccupancy, month)
		adrInc := increment(params.ADRIncrease, params.MonthlyADR, month)

		occ := math.Min(math.Max(r.OccupancyPct*(1+occInc/100), 0), 100)
		adr := r.ADR * (1 + adrInc/100)

		plan.Days = append(plan.Days, domain.BudgetDay{
			Date:            target,
			BaseDate:        r.Date,
			BaseOccupancy:   kpi.Round2(r.OccupancyPct),
			BaseADR:         kpi.Round2(r.ADR),
			BaseRevenue:     kpi.Round2(r.Revenue),
			TargetOccupancy: kpi.Round2(occ),
			TargetADR:       kpi.Round2(adr),
			TargetRevenue:   kpi.Round2(float64(params.Rooms) * occ / 100 * adr),
		})
	}

	plan.Months, plan.Total = Summarize(plan.Days)
	return plan
}

func increment(global float64, monthly map[int]float64, month int) float64 {
	if v := monthly[month]; v != 0 {
		return v
	}
	return global
}

// nextYear moves a date one year forward. 29 February has no counterpart in a common year
// and is skipped.
func nextYear(t time.Time) (time.Time, bool) {
	y, m, d := t.Date()
	next := time.Date(y+1, m, d, 0, 0, 0, 0, time.UTC)
	if next.Month() != m {
		return time.Time{}, false
	}
	return next, true
}

type monthAcc struct {
	days                   int
	baseOcc, targetOcc     float64
	baseADR, targetADR     float64
	baseRevenue, targetRev float64
}

func (a *monthAcc) add(d domain.BudgetDay) {
	a.days++
	a.baseOcc += d.BaseOccupancy
	a.targetOcc += d.TargetOccupancy
	a.baseADR += d.BaseADR
	a.targetADR += d.TargetADR
	a.baseRevenue += d.BaseRevenue
	a.targetRev += d.TargetRevenue
}

func (a *monthAcc) summary(month int, name string) domain.BudgetMonth {
	m := domain.BudgetMonth{Month: month, Name: name}
	if a.days == 0 {
		return m
	}
	n := float64(a.days)
	m.BaseOccupancy = kpi.Round2(a.baseOcc / n)
	m.TargetOccupancy = kpi.Round2(a.targetOcc / n)
	m.BaseADR = kpi.Round2(a.baseADR / n)
	m.TargetADR = kpi.Round2(a.targetADR / n)
	m.BaseRevenue = kpi.Round2(a.baseRevenue)
	m.TargetRevenue = kpi.Round2(a.targetRev)
	m.ExtraRevenue = kpi.Round2(a.targetRev - a.baseRevenue)
	if a.baseRevenue != 0 {
		m.GrowthPct = kpi.Round2((a.targetRev - a.baseRevenue) / a.baseRevenue * 100)
	}
	return m
}

// Summarize rolls days up by target month. Occupancy and ADR are daily means, revenue is
// summed, and growth is 0 for months without base revenue. Months without days are omitted.
func Summarize(days []domain.BudgetDay) ([]domain.BudgetMonth, domain.BudgetMonth) {
	var months [12]monthAcc
	var total monthAcc
	for _, d := range days {
		months[d.Date.Month()-1].add(d)
		total.add(d)
	}

	out := []domain.BudgetMonth{}
	for i := range months {
		if months[i].days == 0 {
			continue
		}
		out = append(out, months[i].summary(i+1, kpi.MonthName(i+1)))
	}
	return out, total.summary(0, "Totale")
}
