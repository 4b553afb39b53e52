package budget

import (
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// CompareToOTB sets the on-the-books dataset against the budget for the same year. Deltas
// are OTB minus budget; coverage is OTB revenue as a percentage of budget revenue, 0 for
// months without budget.
func CompareToOTB(budget, otb *domain.ConsolidatedDataset, roomHint *int) *domain.BudgetComparison {
	var budgetRecords, otbRecords []domain.DailyRecord
	if budget != nil {
		budgetRecords = budget.Records
	}
	if otb != nil {
		otbRecords = otb.Records
	}

	cmp := &domain.BudgetComparison{
		Budget: kpi.Aggregate(budgetRecords, roomHint),
		OTB:    kpi.Aggregate(otbRecords, roomHint),
		Months: make([]domain.BudgetVsOTBMonth, 0, 12),
	}
	cmp.Delta = kpi.Delta(cmp.OTB, cmp.Budget)
	switch {
	case otb != nil:
		cmp.Property, cmp.Year = otb.Property, otb.Year
	case budget != nil:
		cmp.Property, cmp.Year = budget.Property, budget.Year
	}

	var budgetByMonth, otbByMonth [12]float64
	for _, r := range budgetRecords {
		budgetByMonth[r.Date.Month()-1] += r.Revenue
	}
	for _, r := range otbRecords {
		otbByMonth[r.Date.Month()-1] += r.Revenue
	}

	for i := 0; i < 12; i++ {
		m := domain.BudgetVsOTBMonth{
			Month:  i + 1,
			Name:   kpi.MonthName(i + 1),
			Budget: kpi.Round2(budgetByMonth[i]),
			OTB:    kpi.Round2(otbByMonth[i]),
			Delta:  kpi.Round2(otbByMonth[i] - budgetByMonth[i]),
		}
		if budgetByMonth[i] != 0 {
			m.CoveragePct = kpi.Round2(otbByMonth[i] / budgetByMonth[i] * 100)
		}
		cmp.Months = append(cmp.Months, m)
	}
	return cmp
}
