package consolidation

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/dataprocessing"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// AllProperties is the property name of a multi-property aggregate
const AllProperties = "ALL"

// maxParallelLoads bounds concurrent consolidations in ConsolidateAll
const maxParallelLoads = 4

// ConsolidateAll consolidates every folder for year and sums them per date. Revenue, rooms
// sold and capacity add up; adr, occupancy and revpar are derived again from the sums.
func (e *Engine) ConsolidateAll(ctx context.Context, folders []string, year int) *domain.ConsolidatedDataset {
	datasets := make([]*domain.ConsolidatedDataset, len(folders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, folder := range folders {
		g.Go(func() error {
			datasets[i] = e.Consolidate(gctx, folder, year)
			return nil
		})
	}
	_ = g.Wait()

	out := Sum(AllProperties, year, datasets...)
	e.logger.DebugContext(ctx, "Aggregate dataset built",
		slog.Int("year", year),
		slog.Int("properties", len(folders)),
		slog.Int("records", len(out.Records)))
	return out
}

type dayTotal struct {
	revenue     float64
	sold        int
	capacity    int
	hasCapacity bool
	occupancy   float64
	members     int
}

// Sum adds datasets together per date
func Sum(property string, year int, datasets ...*domain.ConsolidatedDataset) *domain.ConsolidatedDataset {
	totals := make(map[string]*dayTotal)
	dates := make(map[string]domain.DailyRecord)
	var sources []string
	var diag domain.ParseDiagnostics

	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		sources = append(sources, ds.Sources...)
		diag.Merge(ds.Diagnostics)
		for _, r := range ds.Records {
			key := r.Key()
			t, ok := totals[key]
			if !ok {
				t = &dayTotal{}
				totals[key] = t
				dates[key] = r
			}
			t.revenue += r.Revenue
			t.sold += r.RoomsSold
			t.occupancy += r.OccupancyPct
			t.members++
			if c, ok := r.Capacity(); ok {
				t.capacity += c
				t.hasCapacity = true
			}
		}
	}

	records := make([]domain.DailyRecord, 0, len(totals))
	for key, t := range totals {
		rec := domain.DailyRecord{
			Date:      dates[key].Date,
			Revenue:   dataprocessing.Round2(t.revenue),
			RoomsSold: t.sold,
		}
		if t.sold > 0 {
			rec.ADR = dataprocessing.Round2(t.revenue / float64(t.sold))
		}
		if t.hasCapacity {
			rec.RoomsAvailable = domain.IntPtr(t.capacity)
			if t.capacity > 0 {
				rec.OccupancyPct = dataprocessing.Round2(float64(t.sold) / float64(t.capacity) * 100)
				rec.RevPAR = dataprocessing.Round2(t.revenue / float64(t.capacity))
			}
		} else if t.members > 0 {
			rec.OccupancyPct = dataprocessing.Round2(t.occupancy / float64(t.members))
			rec.RevPAR = dataprocessing.Round2(rec.ADR * rec.OccupancyPct / 100)
		}
		records = append(records, rec)
	}

	sort.Strings(sources)
	out := domain.NewDataset(property, year, sources, records)
	out.Diagnostics = diag
	return out
}
