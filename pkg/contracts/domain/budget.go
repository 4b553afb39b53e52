package domain

import "time"

// BudgetKind selects where a budget is saved
type BudgetKind string

const (
	BudgetOfficial BudgetKind = "official"
	BudgetTest     BudgetKind = "test"
)

// BudgetParams drives a budget projection. Monthly overrides of 0 fall back to the global increment.
type BudgetParams struct {
	OccupancyIncrease float64         `json:"occupancy_increase" validate:"min=-100,max=100"`
	ADRIncrease       float64         `json:"adr_increase" validate:"min=-100,max=500"`
	MonthlyOccupancy  map[int]float64 `json:"monthly_occupancy,omitempty" validate:"omitempty,month_keys"`
	MonthlyADR        map[int]float64 `json:"monthly_adr,omitempty" validate:"omitempty,month_keys"`
	Rooms             int             `json:"rooms" validate:"required,min=1,max=10000"`
}

// BudgetDay is the projection for one target-year date
type BudgetDay struct {
	Date            time.Time `json:"date"`
	BaseDate        time.Time `json:"base_date"`
	BaseOccupancy   float64   `json:"base_occupancy_pct"`
	BaseADR         float64   `json:"base_adr"`
	BaseRevenue     float64   `json:"base_revenue"`
	TargetOccupancy float64   `json:"occupancy_pct"`
	TargetADR       float64   `json:"adr"`
	TargetRevenue   float64   `json:"revenue"`
}

// BudgetMonth summarises a projection month
type BudgetMonth struct {
	Month           int     `json:"month"`
	Name            string  `json:"name"`
	BaseOccupancy   float64 `json:"base_occupancy_pct"`
	TargetOccupancy float64 `json:"target_occupancy_pct"`
	BaseADR         float64 `json:"base_adr"`
	TargetADR       float64 `json:"target_adr"`
	BaseRevenue     float64 `json:"base_revenue"`
	TargetRevenue   float64 `json:"target_revenue"`
	ExtraRevenue    float64 `json:"extra_revenue"`
	GrowthPct       float64 `json:"growth_pct"`
}

// BudgetPlan is a full projection of a base year onto the following year
type BudgetPlan struct {
	Property   string        `json:"property"`
	BaseYear   int           `json:"base_year"`
	TargetYear int           `json:"target_year"`
	Params     BudgetParams  `json:"params"`
	Days       []BudgetDay   `json:"days"`
	Months     []BudgetMonth `json:"months"`
	Total      BudgetMonth   `json:"total"`
}

// BudgetVsOTBMonth compares budgeted revenue with on-the-books revenue for one month
type BudgetVsOTBMonth struct {
	Month       int     `json:"month"`
	Name        string  `json:"name"`
	Budget      float64 `json:"budget"`
	OTB         float64 `json:"otb"`
	Delta       float64 `json:"delta"`
	CoveragePct float64 `json:"coverage_pct"`
}

// BudgetComparison is the annual and monthly budget versus OTB view
type BudgetComparison struct {
	Property string             `json:"property"`
	Year     int                `json:"year"`
	Budget   Metrics            `json:"budget"`
	OTB      Metrics            `json:"otb"`
	Delta    Delta              `json:"delta"`
	Months   []BudgetVsOTBMonth `json:"months"`
}
