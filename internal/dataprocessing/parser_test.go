package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows to a single-sheet workbook, starting at A1
func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
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

func TestNormalizeWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Forecast", [][]any{
		{"Report Forecast La Terrazza"},
		{"Data", "Totale revenue", "Occupate", "Occupate %", "ADR", "RevPar", "Unità", "Note"},
		{"01/01/2025", "1.234,56", 3, "75%", nil, nil, 4, "capodanno"},
		{"02/01/2025", 500, 2, "50", 250, 125, 4},
		{"Totale", "1.734,56", 5},
		{"03/01/2025", "abc", 1, "25", nil, nil, 4},
	})

	n := NewRecordNormalizer(nil, nil)
	res, err := n.Normalize(context.Background(), "Terrazza_Forecast_Snapshot_20250115.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, "Forecast", res.Sheet)
	require.Len(t, res.Records, 3)

	first := res.Records[0]
	assert.True(t, first.Date.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 1234.56, first.Revenue, 1e-9)
	assert.Equal(t, 3, first.RoomsSold)
	assert.InDelta(t, 75, first.OccupancyPct, 1e-9)
	assert.InDelta(t, 411.52, first.ADR, 1e-9, "adr derived from revenue and rooms sold")
	assert.InDelta(t, 308.64, first.RevPAR, 1e-9, "revpar derived from capacity")
	require.NotNil(t, first.RoomsAvailable)
	assert.Equal(t, 4, *first.RoomsAvailable)

	second := res.Records[1]
	assert.InDelta(t, 250, second.ADR, 1e-9, "source adr kept")
	assert.InDelta(t, 125, second.RevPAR, 1e-9)

	third := res.Records[2]
	assert.Equal(t, 0.0, third.Revenue)
	assert.Equal(t, 1, third.RoomsSold)

	d := res.Diagnostics
	assert.Equal(t, 4, d.RowsRead)
	assert.Equal(t, 3, d.RowsKept)
	assert.Equal(t, 1, d.DroppedRows)
	assert.Equal(t, 1, d.RejectedCells)
	require.Len(t, d.Samples, 2)
	assert.Equal(t, "summary_row", d.Samples[0].Reason)
	assert.Equal(t, "revenue", d.Samples[1].Field)
	assert.Equal(t, "abc", d.Samples[1].Value)
}

func TestNormalizeWorkbookSkipsSheetsWithoutDates(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Legenda"))
	_, err := f.NewSheet("Dati")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Dati", "A1", "Giorno"))
	require.NoError(t, f.SetCellValue("Dati", "B1", "Ricavo"))
	require.NoError(t, f.SetCellValue("Dati", "A2", "2025-07-01"))
	require.NoError(t, f.SetCellValue("Dati", "B2", 90))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := NewRecordNormalizer(nil, nil).Normalize(context.Background(), "baseline.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Dati", res.Sheet)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 90.0, res.Records[0].Revenue)
	assert.Nil(t, res.Records[0].RoomsAvailable, "capacity absent when the source has no rooms column")
}

func TestNormalizeWorkbookNativeDates(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]any{
		{"Data", "Totale revenue", "Occupate"},
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 300.5, 2},
	})

	res, err := NewRecordNormalizer(nil, nil).Normalize(context.Background(), "snap.xlsx", data)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2025-02-10", res.Records[0].Key())
	assert.InDelta(t, 150.25, res.Records[0].ADR, 1e-9)
}

func TestNormalizeErrors(t *testing.T) {
	n := NewRecordNormalizer(nil, nil)

	_, err := n.Normalize(context.Background(), "notes.txt", []byte("hello"))
	assert.Error(t, err)

	_, err = n.Normalize(context.Background(), "broken.xlsx", []byte("not a zip"))
	assert.Error(t, err)

	data := buildWorkbook(t, "Sheet1", [][]any{{"Camera", "Ospite"}, {"101", "Rossi"}})
	_, err = n.Normalize(context.Background(), "rooms.xlsx", data)
	assert.Error(t, err)
}

func TestNormalizeCSV(t *testing.T) {
	csvData := "\xef\xbb\xbfData;Totale revenue;Occupate;Occupate %\n" +
		"01/02/2025;\"1.000,00\";4;80%\n" +
		"totale;1000;4;\n" +
		"02/02/2025;500;2;40%\n"

	res, err := NewRecordNormalizer(nil, nil).Normalize(context.Background(), "budget.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1000.0, res.Records[0].Revenue)
	assert.InDelta(t, 80, res.Records[0].OccupancyPct, 1e-9)
	assert.InDelta(t, 250, res.Records[0].ADR, 1e-9)
	assert.InDelta(t, 200, res.Records[0].RevPAR, 1e-9, "revpar from adr and occupancy without capacity")
	assert.Equal(t, 1, res.Diagnostics.DroppedRows)
}

func TestNormalizeRows(t *testing.T) {
	n := NewRecordNormalizer(nil, nil)

	t.Run("fractional occupancy is rescaled", func(t *testing.T) {
		res, err := n.NormalizeRows("s", [][]string{
			{"Data", "Occupate %"},
			{"2025-01-01", "0.5"},
			{"2025-01-02", "0.25"},
		})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.InDelta(t, 50, res.Records[0].OccupancyPct, 1e-9)
		assert.InDelta(t, 25, res.Records[1].OccupancyPct, 1e-9)
	})

	t.Run("later duplicate date wins", func(t *testing.T) {
		res, err := n.NormalizeRows("s", [][]string{
			{"Data", "Revenue"},
			{"2025-01-01", "10"},
			{"2025-01-02", "20"},
			{"01/01/2025", "30"},
		})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, 30.0, res.Records[0].Revenue)
		assert.Equal(t, 20.0, res.Records[1].Revenue)
		assert.Equal(t, 1, res.Diagnostics.DroppedRows)
	})

	t.Run("excel serial dates and blank rows", func(t *testing.T) {
		res, err := n.NormalizeRows("s", [][]string{
			{"Data", "Revenue"},
			{"45658", "10"},
			{"", ""},
			{"45659", ""},
		})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, "2025-01-01", res.Records[0].Key())
		assert.Equal(t, 1, res.Diagnostics.EmptyCells)
		assert.True(t, res.Diagnostics.Clean())
	})

	t.Run("missing numeric columns default to zero", func(t *testing.T) {
		res, err := n.NormalizeRows("s", [][]string{{"Data"}, {"2025-03-01"}})
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		r := res.Records[0]
		assert.Zero(t, r.Revenue)
		assert.Zero(t, r.RoomsSold)
		assert.Zero(t, r.ADR)
		assert.Zero(t, r.OccupancyPct)
		assert.Zero(t, r.RevPAR)
	})

	t.Run("no header", func(t *testing.T) {
		_, err := n.NormalizeRows("s", [][]string{{"a", "b"}})
		assert.Error(t, err)
	})
}
