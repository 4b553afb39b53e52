package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// RebuildIndex rewrites index.json from a full listing of the folder. Filenames are
// written in descending order.
func (r *Registry) RebuildIndex(ctx context.Context, folder string, year int, category domain.Category) ([]string, error) {
	prefix := Prefix(category, folder, year)

	objects, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		if path.Dir(obj.Key)+"/" == prefix && IsSnapshotFile(obj.Name()) {
			names = append(names, obj.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	if err := r.store.Put(ctx, prefix+IndexFile, data); err != nil {
		return nil, fmt.Errorf("failed to write %s%s: %w", prefix, IndexFile, err)
	}

	r.logger.InfoContext(ctx, "Snapshot index rebuilt",
		slog.String("prefix", prefix),
		slog.Int("entries", len(names)))
	return names, nil
}

// Inspect compares the folder listing with its index
func (r *Registry) Inspect(ctx context.Context, folder string, year int, category domain.Category) (*domain.StorageReport, error) {
	prefix := Prefix(category, folder, year)

	objects, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	report := &domain.StorageReport{Prefix: prefix, Objects: make([]string, 0, len(objects))}
	files := make(map[string]bool)
	for _, obj := range objects {
		report.Objects = append(report.Objects, obj.Key)
		if IsSnapshotFile(obj.Name()) {
			files[obj.Name()] = true
		}
	}

	entries, ok := r.readIndex(ctx, prefix)
	report.IndexPresent = ok
	report.IndexEntries = entries

	indexed := make(map[string]bool, len(entries))
	for _, e := range entries {
		indexed[path.Base(e)] = true
		if !files[path.Base(e)] {
			report.MissingFiles = append(report.MissingFiles, e)
		}
	}
	if ok {
		for name := range files {
			if !indexed[name] {
				report.Unindexed = append(report.Unindexed, name)
			}
		}
		sort.Strings(report.Unindexed)
	}

	report.SnapshotCount = len(r.DiscoverCategory(ctx, folder, year, category))
	return report, nil
}
