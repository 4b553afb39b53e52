package domain

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date layout used for keys and CSV output
const DateLayout = "2006-01-02"

// DailyRecord represents one calendar day for one property
type DailyRecord struct {
	Date           time.Time `json:"date"`
	Revenue        float64   `json:"revenue"`
	RoomsSold      int       `json:"rooms_sold"`
	RoomsAvailable *int      `json:"rooms_available,omitempty"`
	ADR            float64   `json:"adr"`
	RevPAR         float64   `json:"revpar"`
	OccupancyPct   float64   `json:"occupancy_pct"`
	Blocked        int       `json:"blocked,omitempty"`
}

// Key returns the calendar-date key of the record
func (r DailyRecord) Key() string {
	return r.Date.Format(DateLayout)
}

// Capacity returns the rooms available for the day and whether the source declared it
func (r DailyRecord) Capacity() (int, bool) {
	if r.RoomsAvailable == nil {
		return 0, false
	}
	return *r.RoomsAvailable, true
}

// Day truncates a time to its calendar date in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// ConsolidatedDataset is the ordered collection of daily records for one property and year.
// Datasets are shared read-only; build a new one instead of editing Records.
type ConsolidatedDataset struct {
	Property    string           `json:"property"`
	Year        int              `json:"year"`
	Category    Category         `json:"category,omitempty"`
	Sources     []string         `json:"sources"`
	Records     []DailyRecord    `json:"records"`
	Diagnostics ParseDiagnostics `json:"diagnostics"`
}

// NewDataset builds a dataset from records, keeping one record per date (later records win)
// and ordering the result by date.
func NewDataset(property string, year int, sources []string, records []DailyRecord) *ConsolidatedDataset {
	byDate := make(map[string]DailyRecord, len(records))
	for _, r := range records {
		r.Date = Day(r.Date)
		byDate[r.Key()] = r
	}

	out := make([]DailyRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return &ConsolidatedDataset{
		Property: property,
		Year:     year,
		Sources:  append([]string(nil), sources...),
		Records:  out,
	}
}

// EmptyDataset returns a dataset with no records
func EmptyDataset(property string, year int) *ConsolidatedDataset {
	return &ConsolidatedDataset{Property: property, Year: year, Sources: []string{}, Records: []DailyRecord{}}
}

// IsEmpty reports whether the dataset carries no records
func (d *ConsolidatedDataset) IsEmpty() bool {
	return d == nil || len(d.Records) == 0
}

// Identity identifies the snapshot(s) the dataset was built from
func (d *ConsolidatedDataset) Identity() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Sources, "|")
}

// ByDate indexes records by calendar-date key
func (d *ConsolidatedDataset) ByDate() map[string]DailyRecord {
	if d == nil {
		return map[string]DailyRecord{}
	}
	idx := make(map[string]DailyRecord, len(d.Records))
	for _, r := range d.Records {
		idx[r.Key()] = r
	}
	return idx
}

// Filter returns the records matching keep, in date order
func (d *ConsolidatedDataset) Filter(keep func(DailyRecord) bool) []DailyRecord {
	if d == nil {
		return nil
	}
	var out []DailyRecord
	for _, r := range d.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// InYear restricts records to the given calendar year
func InYear(records []DailyRecord, year int) []DailyRecord {
	var out []DailyRecord
	for _, r := range records {
		if r.Date.Year() == year {
			out = append(out, r)
		}
	}
	return out
}
