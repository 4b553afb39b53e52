package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/dataprocessing"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/exporter"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// ErrNotFound is returned when no official budget exists for a property and year
var ErrNotFound = errors.New("budget not found")

const (
	officialRoot = "Budgets-Official"
	testRoot     = "Budgets-Test"
)

// OfficialKey is the storage key of the official budget
func OfficialKey(folder string, year int) string {
	return storage.Key(officialRoot, fmt.Sprintf("%s-%d", folder, year), "budget_official.csv")
}

// TestKey is the storage key of a test budget saved at t
func TestKey(folder string, year int, t time.Time) string {
	return storage.Key(testRoot, fmt.Sprintf("%s-%d", folder, year), "budget_test_"+t.Format("20060102_1504")+".csv")
}

// Store saves and loads budgets
type Store struct {
	objects    storage.ObjectStore
	normalizer *dataprocessing.RecordNormalizer
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used to stamp test budgets
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a budget store
func NewStore(objects storage.ObjectStore, normalizer *dataprocessing.RecordNormalizer, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = dataprocessing.NewRecordNormalizer(nil, logger)
	}
	s := &Store{
		objects:    objects,
		normalizer: normalizer,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "budget_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the plan's target days and returns the key written. An official save
// replaces the previous official budget.
func (s *Store) Save(ctx context.Context, plan *domain.BudgetPlan, kind domain.BudgetKind) (string, error) {
	var key string
	switch kind {
	case domain.BudgetOfficial:
		key = OfficialKey(plan.Property, plan.TargetYear)
	case domain.BudgetTest:
		key = TestKey(plan.Property, plan.TargetYear, s.now())
	default:
		return "", fmt.Errorf("unknown budget kind %q", kind)
	}

	data, err := exporter.BudgetCSV(plan)
	if err != nil {
		return "", fmt.Errorf("failed to encode budget: %w", err)
	}
	if err := s.objects.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to save budget %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "Budget saved",
		slog.String("key", key),
		slog.String("kind", string(kind)),
		slog.Int("days", len(plan.Days)))
	return key, nil
}

// LoadOfficial reads the official budget of a property and year. Saved budgets carry no
// room counts, so with rooms > 0 each day gets rooms as capacity and rooms x occupancy/100
// rooms sold.
func (s *Store) LoadOfficial(ctx context.Context, folder string, year, rooms int) (*domain.ConsolidatedDataset, error) {
	key := OfficialKey(folder, year)
	data, err := s.objects.Get(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%s %d: %w", folder, year, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read budget %s: %w", key, err)
	}

	res, err := s.normalizer.Normalize(ctx, key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget %s: %w", key, err)
	}

	records := make([]domain.DailyRecord, 0, len(res.Records))
	for _, r := range domain.InYear(res.Records, year) {
		if rooms > 0 {
			r.RoomsAvailable = domain.IntPtr(rooms)
			r.RoomsSold = int(math.Round(float64(rooms) * r.OccupancyPct / 100))
		}
		records = append(records, r)
	}

	ds := domain.NewDataset(folder, year, []string{key}, records)
	ds.Diagnostics = res.Diagnostics
	return ds, nil
}
