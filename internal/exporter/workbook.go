package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// DatasetSheet is the sheet name used by DatasetXLSX
const DatasetSheet = "Dataset"

// DatasetXLSX encodes a dataset as a single-sheet workbook with numeric cells
func DatasetXLSX(ds *domain.ConsolidatedDataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DatasetSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(DatasetHeaders))
	for i, h := range DatasetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(DatasetSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	if ds != nil {
		for i, r := range ds.Records {
			row := []any{r.Key(), r.Revenue, r.RoomsSold, nil, r.ADR, r.OccupancyPct, r.RevPAR}
			if c, ok := r.Capacity(); ok {
				row[3] = c
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(DatasetSheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
