package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Header is the column layout of a typical Kross forecast export
var Header = []any{"Data", "Totale revenue", "Occupate", "Occupate %", "ADR", "RevPar", "Unità"}

// Day is one fixture row in the layout of Header
type Day struct {
	Date     time.Time
	Revenue  float64
	Sold     int
	Rooms    int
	Occupied float64
}

// D is shorthand for a fixture day
func D(date string, revenue float64, sold int) Day {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return Day{Date: t, Revenue: revenue, Sold: sold}
}

// WithRooms sets the declared capacity of the day
func (d Day) WithRooms(rooms int) Day {
	d.Rooms = rooms
	return d
}

// Rows renders days below Header using the Italian dd/mm/yyyy date format
func Rows(days ...Day) [][]any {
	rows := [][]any{Header}
	for _, d := range days {
		row := []any{d.Date.Format("02/01/2006"), d.Revenue, d.Sold, d.Occupied, nil, nil, nil}
		if d.Rooms > 0 {
			row[6] = d.Rooms
		}
		rows = append(rows, row)
	}
	return rows
}

// Workbook writes rows to a single-sheet xlsx document, starting at A1
func Workbook(t testing.TB, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for r, row := range rows {
		for c, val := range row {
			if val == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// SnapshotFixtures seeds an in-memory object store with snapshot workbooks
type SnapshotFixtures struct {
	t     testing.TB
	Store *storage.MemoryStore
}

// NewSnapshotFixtures creates fixtures over an empty memory store
func NewSnapshotFixtures(t testing.TB) *SnapshotFixtures {
	return &SnapshotFixtures{t: t, Store: storage.NewMemoryStore()}
}

// Put stores a workbook built from days and returns its key
func (f *SnapshotFixtures) Put(category domain.Category, folder string, year int, filename string, days ...Day) string {
	f.t.Helper()
	key := fmt.Sprintf("%s/%s/%d/%s", category, folder, year, filename)
	f.Store.PutAt(key, Workbook(f.t, "Forecast", Rows(days...)), time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
	return key
}

// PutRaw stores arbitrary bytes under a snapshot key
func (f *SnapshotFixtures) PutRaw(category domain.Category, folder string, year int, filename string, data []byte) string {
	key := fmt.Sprintf("%s/%s/%d/%s", category, folder, year, filename)
	f.Store.PutAt(key, data, time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
	return key
}
