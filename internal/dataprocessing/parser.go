package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched for
const headerScanRows = 20

// Result is the outcome of normalizing one spreadsheet
type Result struct {
	Sheet       string
	Records     []domain.DailyRecord
	Columns     ColumnMap
	Diagnostics domain.ParseDiagnostics
}

// RecordNormalizer turns one raw spreadsheet into canonical daily records
type RecordNormalizer struct {
	mapper *SchemaMapper
	logger *slog.Logger
}

// NewRecordNormalizer creates a normalizer. A nil mapper uses the embedded alias table.
func NewRecordNormalizer(mapper *SchemaMapper, logger *slog.Logger) *RecordNormalizer {
	if mapper == nil {
		m, err := NewSchemaMapper(DefaultAliasTable())
		if err != nil {
			panic(err)
		}
		mapper = m
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordNormalizer{
		mapper: mapper,
		logger: logger.With(slog.String("component", "record_normalizer")),
	}
}

// Normalize parses xlsx or csv content, choosing the reader from the file extension.
// An error means the document could not be read at all; per-cell problems only show up
// in the diagnostics.
func (n *RecordNormalizer) Normalize(ctx context.Context, name string, data []byte) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		res, err = n.normalizeCSV(data)
	case ".xlsx", ".xlsm", ".xls":
		res, err = n.normalizeWorkbook(data)
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", name, err)
	}

	d := res.Diagnostics
	if !d.Clean() {
		n.logger.WarnContext(ctx, "Snapshot normalized with data-quality issues",
			slog.String("file", name),
			slog.String("sheet", res.Sheet),
			slog.Int("rows_kept", d.RowsKept),
			slog.Int("dropped_rows", d.DroppedRows),
			slog.Int("rejected_cells", d.RejectedCells))
	} else {
		n.logger.DebugContext(ctx, "Snapshot normalized",
			slog.String("file", name),
			slog.String("sheet", res.Sheet),
			slog.Int("rows_kept", d.RowsKept))
	}
	return res, nil
}

func (n *RecordNormalizer) normalizeWorkbook(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	// Raw values keep numbers dot-decimal and dates as serials regardless of cell style.
	opts := excelize.Options{RawCellValue: true}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, opts)
		if err != nil {
			continue
		}
		if headerRow, cols := n.findHeader(rows); headerRow >= 0 {
			return n.normalizeRows(sheet, rows, headerRow, cols), nil
		}
	}
	return nil, fmt.Errorf("no sheet with a date column found")
}

func (n *RecordNormalizer) normalizeCSV(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, rec)
	}

	headerRow, cols := n.findHeader(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("no date column found")
	}
	return n.normalizeRows("csv", rows, headerRow, cols), nil
}

// NormalizeRows normalizes an in-memory table whose header row is located automatically
func (n *RecordNormalizer) NormalizeRows(sheet string, rows [][]string) (*Result, error) {
	headerRow, cols := n.findHeader(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("no date column found in %s", sheet)
	}
	return n.normalizeRows(sheet, rows, headerRow, cols), nil
}

func (n *RecordNormalizer) findHeader(rows [][]string) (int, ColumnMap) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		cols := n.mapper.Map(rows[i])
		if cols.Has(FieldDate) {
			return i, cols
		}
	}
	return -1, ColumnMap{}
}

func (n *RecordNormalizer) normalizeRows(sheet string, rows [][]string, headerRow int, cols ColumnMap) *Result {
	res := &Result{Sheet: sheet, Columns: cols}
	diag := &res.Diagnostics

	type parsedRow struct {
		rec       domain.DailyRecord
		occupancy float64
	}
	var parsed []parsedRow
	seen := make(map[string]int)

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		diag.RowsRead++
		rowNum := i + 1

		rawDate := cell(row, cols, FieldDate)
		date, status := ParseDate(rawDate)
		if status != DateValid {
			diag.Drop(domain.RejectedCell{Sheet: sheet, Row: rowNum, Field: string(FieldDate), Value: rawDate, Reason: status.String()})
			continue
		}

		values := make(map[Field]float64, len(NumericFields))
		present := make(map[Field]bool, len(NumericFields))
		for _, field := range NumericFields {
			if !cols.Has(field) {
				continue
			}
			raw := cell(row, cols, field)
			v, st := ParseNumber(raw)
			switch st {
			case CellValid:
				present[field] = true
			case CellEmpty:
				diag.EmptyCells++
			case CellMalformed:
				diag.Reject(domain.RejectedCell{Sheet: sheet, Row: rowNum, Field: string(field), Value: raw, Reason: st.String()})
			}
			values[field] = v
		}

		rec := domain.DailyRecord{
			Date:      date,
			Revenue:   values[FieldRevenue],
			RoomsSold: roundInt(values[FieldRoomsSold]),
			ADR:       values[FieldADR],
			RevPAR:    values[FieldRevPAR],
			Blocked:   roundInt(values[FieldBlocked]),
		}
		if present[FieldRooms] {
			rec.RoomsAvailable = domain.IntPtr(roundInt(values[FieldRooms]))
		}

		pr := parsedRow{rec: rec, occupancy: values[FieldOccupancyPct]}
		key := rec.Key()
		if idx, dup := seen[key]; dup {
			diag.Drop(domain.RejectedCell{Sheet: sheet, Row: rowNum, Field: string(FieldDate), Value: rawDate, Reason: "duplicate_date"})
			parsed[idx] = pr
			continue
		}
		seen[key] = len(parsed)
		parsed = append(parsed, pr)
	}

	// Occupancy exported as a fraction is rescaled to a percentage for the whole sheet.
	maxOcc := 0.0
	for _, p := range parsed {
		maxOcc = math.Max(maxOcc, p.occupancy)
	}
	scale := 1.0
	if maxOcc > 0 && maxOcc <= 1 {
		scale = 100
	}

	res.Records = make([]domain.DailyRecord, 0, len(parsed))
	for _, p := range parsed {
		rec := p.rec
		rec.OccupancyPct = p.occupancy * scale
		deriveMetrics(&rec)
		res.Records = append(res.Records, rec)
	}
	diag.RowsKept = len(res.Records)

	return res
}

// deriveMetrics fills adr, occupancy and revpar when the source left them at zero
func deriveMetrics(r *domain.DailyRecord) {
	if r.ADR == 0 && r.RoomsSold > 0 {
		r.ADR = r.Revenue / float64(r.RoomsSold)
	}
	capacity, ok := r.Capacity()
	if ok && capacity > 0 {
		if r.OccupancyPct == 0 && r.RoomsSold > 0 {
			r.OccupancyPct = float64(r.RoomsSold) / float64(capacity) * 100
		}
		if r.RevPAR == 0 && r.Revenue > 0 {
			r.RevPAR = r.Revenue / float64(capacity)
		}
		return
	}
	if r.RevPAR == 0 && r.OccupancyPct > 0 {
		r.RevPAR = r.ADR * r.OccupancyPct / 100
	}
}

func cell(row []string, cols ColumnMap, field Field) string {
	idx, ok := cols.Columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

// detectDelimiter picks ';' for semicolon separated exports, ',' otherwise
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
