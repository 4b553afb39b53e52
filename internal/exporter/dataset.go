package exporter

import (
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// DatasetHeaders is the column layout of a dataset export
var DatasetHeaders = []string{"date", "revenue", "rooms_sold", "rooms", "adr", "occupancy_pct", "revpar"}

// ComparisonHeaders is the column layout of a pickup or pace export
var ComparisonHeaders = []string{
	"date", "previous_date",
	"revenue_recent", "revenue_previous", "revenue_delta",
	"rooms_sold_recent", "rooms_sold_previous", "rooms_sold_delta",
	"adr_delta", "revpar_delta", "occupancy_pct_delta",
}

// BudgetHeaders is the column layout of a saved budget
var BudgetHeaders = []string{"date", "occupancy_pct", "adr", "revenue"}

// DatasetRows renders dataset records in date order
func DatasetRows(ds *domain.ConsolidatedDataset) [][]string {
	if ds == nil {
		return nil
	}
	rows := make([][]string, 0, len(ds.Records))
	for _, r := range ds.Records {
		rows = append(rows, []string{
			r.Key(),
			formatFloat(r.Revenue),
			formatInt(r.RoomsSold),
			formatOptionalInt(r.RoomsAvailable),
			formatFloat(r.ADR),
			formatFloat(r.OccupancyPct),
			formatFloat(r.RevPAR),
		})
	}
	return rows
}

// DatasetCSV encodes a dataset as CSV with a BOM
func DatasetCSV(ds *domain.ConsolidatedDataset) ([]byte, error) {
	return encode(DatasetHeaders, DatasetRows(ds), true)
}

// ComparisonCSV encodes every matched date of a comparison
func ComparisonCSV(res *domain.ComparisonResult) ([]byte, error) {
	var rows [][]string
	if res != nil {
		rows = make([][]string, 0, len(res.Entries))
		for _, e := range res.Entries {
			rows = append(rows, []string{
				formatDate(e.Date),
				formatDate(e.PreviousDate),
				formatFloat(e.Revenue.Recent),
				formatFloat(e.Revenue.Previous),
				formatFloat(e.Revenue.Delta),
				formatInt(int(e.RoomsSold.Recent)),
				formatInt(int(e.RoomsSold.Previous)),
				formatInt(int(e.RoomsSold.Delta)),
				formatFloat(e.ADR.Delta),
				formatFloat(e.RevPAR.Delta),
				formatFloat(e.OccupancyPct.Delta),
			})
		}
	}
	return encode(ComparisonHeaders, rows, true)
}

// BudgetCSV encodes the target days of a plan. No BOM is written so the file reads back
// with the same header names.
func BudgetCSV(plan *domain.BudgetPlan) ([]byte, error) {
	var rows [][]string
	if plan != nil {
		rows = make([][]string, 0, len(plan.Days))
		for _, d := range plan.Days {
			rows = append(rows, []string{
				formatDate(d.Date),
				formatFloat(d.TargetOccupancy),
				formatFloat(d.TargetADR),
				formatFloat(d.TargetRevenue),
			})
		}
	}
	return encode(BudgetHeaders, rows, false)
}
