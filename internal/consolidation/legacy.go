package consolidation

import (
	"context"
	"log/slog"
	"sort"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// LegacyLoad reproduces the multi-source loader used before the forecast/baseline split:
// every baseline file of the year, oldest first, then every forecast file in ascending
// filename order, each one replacing the days it defines.
func (e *Engine) LegacyLoad(ctx context.Context, folder string, year int) *domain.ConsolidatedDataset {
	baselines := e.registry.DiscoverCategory(ctx, folder, year, domain.CategoryBaseline)
	forecasts := e.registry.DiscoverCategory(ctx, folder, year, domain.CategoryForecast)

	sort.SliceStable(forecasts, func(i, j int) bool { return forecasts[i].Filename < forecasts[j].Filename })

	layers := make([]domain.Snapshot, 0, len(baselines)+len(forecasts))
	for i := len(baselines) - 1; i >= 0; i-- {
		layers = append(layers, baselines[i])
	}
	layers = append(layers, forecasts...)

	ds := domain.EmptyDataset(folder, year)
	for _, snap := range layers {
		ds = Overlay(ds, e.LoadSnapshot(ctx, snap))
	}

	e.logger.DebugContext(ctx, "Legacy dataset loaded",
		slog.String("property", folder),
		slog.Int("year", year),
		slog.Int("baselines", len(baselines)),
		slog.Int("forecasts", len(forecasts)),
		slog.Int("records", len(ds.Records)))
	return ds
}
