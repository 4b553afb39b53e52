package domain

import "time"

// Category is the top-level object-store folder a snapshot lives under
type Category string

const (
	CategoryForecast Category = "Forecast"
	CategoryBaseline Category = "History_Baseline"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c == CategoryForecast || c == CategoryBaseline
}

// CaptureDateSource records how a snapshot's capture date was determined
type CaptureDateSource string

const (
	CaptureFromDayFirstToken  CaptureDateSource = "filename_ddmmyyyy"
	CaptureFromYearFirstToken CaptureDateSource = "filename_yyyymmdd"
	CaptureFromISOToken       CaptureDateSource = "filename_iso"
	CaptureFromLastModified   CaptureDateSource = "last_modified"
)

// Snapshot is a discovered source file. It is recomputed on every discovery call.
type Snapshot struct {
	Property    string            `json:"property"`
	Year        int               `json:"year"`
	CaptureDate time.Time         `json:"capture_date"`
	StorageKey  string            `json:"storage_key"`
	Filename    string            `json:"filename"`
	Category    Category          `json:"category"`
	DateSource  CaptureDateSource `json:"date_source"`
}

// StorageReport summarises the state of one snapshot folder
type StorageReport struct {
	Prefix        string   `json:"prefix"`
	Objects       []string `json:"objects"`
	IndexPresent  bool     `json:"index_present"`
	IndexEntries  []string `json:"index_entries,omitempty"`
	MissingFiles  []string `json:"missing_files,omitempty"`
	Unindexed     []string `json:"unindexed,omitempty"`
	SnapshotCount int      `json:"snapshot_count"`
}
