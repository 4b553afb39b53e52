package analytics

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

const (
	// PaceOffsetDays is the look-back that keeps weekdays aligned year over year
	PaceOffsetDays = 364
	// PaceTolerance is the largest distance from the target that still counts as an exact match
	PaceTolerance = 10
	// PaceMaxEmptyYears consecutive years without snapshots end the history search
	PaceMaxEmptyYears = 2
	// PaceEarliestYear is the oldest year folder the history search visits
	PaceEarliestYear = 2000
)

// ErrNoHistory is returned by Pace when no snapshot other than the newest one exists
var ErrNoHistory = errors.New("no earlier snapshot to compare against")

// Discoverer lists snapshots
type Discoverer interface {
	Discover(ctx context.Context, folder string, year int) []domain.Snapshot
	DiscoverCategory(ctx context.Context, folder string, year int, category domain.Category) []domain.Snapshot
}

// Loader turns one snapshot into a dataset
type Loader interface {
	LoadSnapshot(ctx context.Context, snap domain.Snapshot) *domain.ConsolidatedDataset
}

// PaceMatcher pairs the newest snapshot with its counterpart one booking year earlier
type PaceMatcher struct {
	snapshots Discoverer
	loader    Loader
	logger    *slog.Logger
}

// NewPaceMatcher creates a matcher
func NewPaceMatcher(snapshots Discoverer, loader Loader, logger *slog.Logger) *PaceMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaceMatcher{
		snapshots: snapshots,
		loader:    loader,
		logger:    logger.With(slog.String("component", "pace_matcher")),
	}
}

// Pace compares the newest snapshot of a property and year with the best snapshot around
// 364 days earlier. With no snapshots at all the result is empty and the error nil; with a
// single snapshot ErrNoHistory is returned.
func (m *PaceMatcher) Pace(ctx context.Context, folder string, year int) (*domain.ComparisonResult, domain.PaceMeta, error) {
	res := &domain.ComparisonResult{Kind: domain.ComparisonPace, Property: folder, Year: year, Entries: []domain.ComparisonEntry{}}

	current := m.snapshots.Discover(ctx, folder, year)
	if len(current) == 0 {
		return res, domain.PaceMeta{}, nil
	}
	today := current[0]
	target := today.CaptureDate.AddDate(0, 0, -PaceOffsetDays)

	candidates := m.candidates(ctx, folder, year, today, current[1:])
	meta := domain.PaceMeta{
		DateRecent:     today.CaptureDate,
		TargetDate:     target,
		SnapshotRecent: today.Filename,
	}
	if len(candidates) == 0 {
		return res, meta, ErrNoHistory
	}

	old, distance := Match(candidates, target)
	meta.DateOld = old.CaptureDate
	meta.DistanceDays = distance
	meta.IsExactPace = distance <= PaceTolerance
	meta.SnapshotOld = old.Filename

	log := m.logger.With(
		slog.String("property", folder),
		slog.Int("year", year),
		slog.String("recent", today.Filename),
		slog.String("old", old.Filename),
		slog.Int("distance_days", distance))
	if !meta.IsExactPace {
		log.WarnContext(ctx, "No snapshot near the pace target, using the oldest snapshot")
	} else {
		log.DebugContext(ctx, "Pace snapshot matched")
	}

	recent := m.loader.LoadSnapshot(ctx, today)
	previous := m.loader.LoadSnapshot(ctx, old)
	res.RecentSource = recent.Identity()
	res.PreviousSource = previous.Identity()
	res.Entries = alignedJoin(recent, previous, today.Year-old.Year)
	return res, meta, nil
}

// candidates gathers every other snapshot of the requested year in both categories, then
// walks back one year at a time until PaceMaxEmptyYears consecutive years hold nothing or
// PaceEarliestYear is passed
func (m *PaceMatcher) candidates(ctx context.Context, folder string, year int, today domain.Snapshot, older []domain.Snapshot) []domain.Snapshot {
	all := append([]domain.Snapshot(nil), older...)
	all = append(all, m.discoverYear(ctx, folder, year)...)

	empty := 0
	for y := year - 1; y >= PaceEarliestYear && empty < PaceMaxEmptyYears; y-- {
		found := m.discoverYear(ctx, folder, y)
		if len(found) == 0 {
			empty++
			continue
		}
		empty = 0
		all = append(all, found...)
	}

	seen := map[string]bool{today.StorageKey: true}
	out := make([]domain.Snapshot, 0, len(all))
	for _, s := range all {
		if seen[s.StorageKey] {
			continue
		}
		seen[s.StorageKey] = true
		out = append(out, s)
	}
	return out
}

func (m *PaceMatcher) discoverYear(ctx context.Context, folder string, year int) []domain.Snapshot {
	var found []domain.Snapshot
	found = append(found, m.snapshots.DiscoverCategory(ctx, folder, year, domain.CategoryForecast)...)
	return append(found, m.snapshots.DiscoverCategory(ctx, folder, year, domain.CategoryBaseline)...)
}

// Match picks the candidate closest to target. When the closest one is further than
// PaceTolerance days away the oldest candidate is returned instead, with its own distance.
// candidates must not be empty.
func Match(candidates []domain.Snapshot, target time.Time) (domain.Snapshot, int) {
	sorted := append([]domain.Snapshot(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CaptureDate.Equal(sorted[j].CaptureDate) {
			return sorted[i].CaptureDate.After(sorted[j].CaptureDate)
		}
		return sorted[i].Filename > sorted[j].Filename
	})

	best, bestDistance := sorted[0], distanceDays(sorted[0].CaptureDate, target)
	for _, s := range sorted[1:] {
		if d := distanceDays(s.CaptureDate, target); d < bestDistance {
			best, bestDistance = s, d
		}
	}
	if bestDistance <= PaceTolerance {
		return best, bestDistance
	}

	oldest := sorted[len(sorted)-1]
	return oldest, distanceDays(oldest.CaptureDate, target)
}

func distanceDays(a, b time.Time) int {
	return int(math.Round(math.Abs(a.Sub(b).Hours()) / 24))
}

// alignedJoin matches each recent day with the old day PaceOffsetDays earlier per year of
// difference between the snapshots
func alignedJoin(recent, previous *domain.ConsolidatedDataset, years int) []domain.ComparisonEntry {
	shift := PaceOffsetDays * years
	aligned := make(map[string]domain.DailyRecord, len(previous.Records))
	for _, r := range previous.Records {
		aligned[r.Date.AddDate(0, 0, shift).Format(domain.DateLayout)] = r
	}

	entries := []domain.ComparisonEntry{}
	for _, r := range recent.Records {
		if p, ok := aligned[r.Key()]; ok {
			entries = append(entries, compareRecords(r, p))
		}
	}
	return entries
}

// PaceMonthly rolls a pace comparison up by month of the recent date. Months without
// matched dates are omitted; the percent change is 0 when last year's revenue is 0.
func PaceMonthly(res *domain.ComparisonResult) []domain.PaceMonth {
	if res.IsEmpty() {
		return []domain.PaceMonth{}
	}

	var months [12]struct {
		revenue, lastYear float64
		count             int
	}
	for _, e := range res.Entries {
		m := &months[e.Date.Month()-1]
		m.revenue += e.Revenue.Recent
		m.lastYear += e.Revenue.Previous
		m.count++
	}

	out := []domain.PaceMonth{}
	for i, m := range months {
		if m.count == 0 {
			continue
		}
		pm := domain.PaceMonth{
			Month:           i + 1,
			Name:            kpi.MonthName(i + 1),
			Revenue:         kpi.Round2(m.revenue),
			RevenueLastYear: kpi.Round2(m.lastYear),
			Delta:           kpi.Round2(m.revenue - m.lastYear),
		}
		if m.lastYear != 0 {
			pm.DeltaPct = kpi.Round2((m.revenue - m.lastYear) / m.lastYear * 100)
		}
		out = append(out, pm)
	}
	return out
}
