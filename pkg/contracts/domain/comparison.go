package domain

import "time"

// ComparisonKind distinguishes pickup from pace results
type ComparisonKind string

const (
	ComparisonPickup ComparisonKind = "pickup"
	ComparisonPace   ComparisonKind = "pace"
)

// FieldComparison carries both source values of a field and their difference
type FieldComparison struct {
	Recent   float64 `json:"recent"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
}

// Compare builds a FieldComparison
func Compare(recent, previous float64) FieldComparison {
	return FieldComparison{Recent: recent, Previous: previous, Delta: recent - previous}
}

// ComparisonEntry is one matched date. For pace, PreviousDate is the aligned date one booking year earlier.
type ComparisonEntry struct {
	Date         time.Time       `json:"date"`
	PreviousDate time.Time       `json:"previous_date"`
	Revenue      FieldComparison `json:"revenue"`
	RoomsSold    FieldComparison `json:"rooms_sold"`
	ADR          FieldComparison `json:"adr"`
	RevPAR       FieldComparison `json:"revpar"`
	OccupancyPct FieldComparison `json:"occupancy_pct"`
}

// ComparisonResult is built once per request and never persisted
type ComparisonResult struct {
	Kind           ComparisonKind    `json:"kind"`
	Property       string            `json:"property"`
	Year           int               `json:"year"`
	RecentSource   string            `json:"recent_source"`
	PreviousSource string            `json:"previous_source"`
	Entries        []ComparisonEntry `json:"entries"`
}

// IsEmpty reports whether no dates matched
func (c *ComparisonResult) IsEmpty() bool {
	return c == nil || len(c.Entries) == 0
}

// ComparisonTotals sums the deltas of a comparison
type ComparisonTotals struct {
	Revenue   FieldComparison `json:"revenue"`
	RoomsSold FieldComparison `json:"rooms_sold"`
	Dates     int             `json:"dates"`
}

// PaceMeta describes which snapshots a pace comparison used
type PaceMeta struct {
	DateRecent     time.Time `json:"date_recent"`
	DateOld        time.Time `json:"date_old"`
	TargetDate     time.Time `json:"target_date"`
	DistanceDays   int       `json:"distance_days"`
	IsExactPace    bool      `json:"is_exact_pace"`
	SnapshotRecent string    `json:"snapshot_recent"`
	SnapshotOld    string    `json:"snapshot_old"`
}

// PaceMonth is the monthly rollup of a pace comparison
type PaceMonth struct {
	Month           int     `json:"month"`
	Name            string  `json:"name"`
	Revenue         float64 `json:"revenue"`
	RevenueLastYear float64 `json:"revenue_last_year"`
	Delta           float64 `json:"delta"`
	DeltaPct        float64 `json:"delta_pct"`
}
