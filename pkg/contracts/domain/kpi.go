package domain

// OccupancyBasis names the denominator used to resolve occupancy and RevPAR
type OccupancyBasis string

const (
	BasisCapacity      OccupancyBasis = "rooms_available"
	BasisRoomHint      OccupancyBasis = "room_hint"
	BasisMeanOccupancy OccupancyBasis = "mean_occupancy"
	BasisNone          OccupancyBasis = "none"
)

// Metrics is an aggregate over an arbitrary subset of daily records
type Metrics struct {
	Revenue        float64        `json:"revenue"`
	RoomsSold      int            `json:"rooms_sold"`
	ADR            float64        `json:"adr"`
	OccupancyPct   float64        `json:"occupancy_pct"`
	RevPAR         float64        `json:"revpar"`
	DaysCount      int            `json:"days_count"`
	RoomsAvailable int            `json:"rooms_available,omitempty"`
	Basis          OccupancyBasis `json:"occupancy_basis"`
}

// FieldDelta is the absolute and percent change of a single KPI
type FieldDelta struct {
	Abs float64 `json:"abs"`
	Pct float64 `json:"pct"`
}

// Delta compares two Metrics field by field
type Delta struct {
	Revenue      FieldDelta `json:"revenue"`
	RoomsSold    FieldDelta `json:"rooms_sold"`
	ADR          FieldDelta `json:"adr"`
	OccupancyPct FieldDelta `json:"occupancy_pct"`
	RevPAR       FieldDelta `json:"revpar"`
}

// PeriodComparison holds a period aggregate, the same period one year earlier and their delta
type PeriodComparison struct {
	Label    string  `json:"label"`
	Current  Metrics `json:"current"`
	Previous Metrics `json:"previous"`
	Delta    Delta   `json:"delta"`
}

// DailyBreakdownRow is one day of a monthly breakdown table
type DailyBreakdownRow struct {
	Day          int     `json:"day"`
	Weekday      string  `json:"weekday"`
	Revenue      float64 `json:"revenue"`
	RoomsSold    int     `json:"rooms_sold"`
	ADR          float64 `json:"adr"`
	OccupancyPct float64 `json:"occupancy_pct"`
	RevPAR       float64 `json:"revpar"`
}

// MonthComparisonRow is one month of a year-over-year table for a single metric
type MonthComparisonRow struct {
	Month    int     `json:"month"`
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Abs      float64 `json:"abs"`
	Pct      float64 `json:"pct"`
}

// WeekdayRow aggregates all days falling on one weekday
type WeekdayRow struct {
	Weekday      string  `json:"weekday"`
	Days         int     `json:"days"`
	Revenue      float64 `json:"revenue"`
	RoomsSold    int     `json:"rooms_sold"`
	ADR          float64 `json:"adr"`
	OccupancyPct float64 `json:"occupancy_pct"`
	RevPAR       float64 `json:"revpar"`
}
