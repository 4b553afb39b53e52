package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// IndexFile is the companion listing kept next to the snapshot files
const IndexFile = "index.json"

// Registry discovers snapshots for a property and year
type Registry struct {
	store  storage.ObjectStore
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the clock used to decide the current calendar year
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a registry over store
func NewRegistry(store storage.ObjectStore, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		store:  store,
		now:    time.Now,
		logger: logger.With(slog.String("component", "snapshot_registry")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store exposes the backing object store
func (r *Registry) Store() storage.ObjectStore {
	return r.store
}

// CurrentYear returns the calendar year of the registry clock
func (r *Registry) CurrentYear() int {
	return r.now().Year()
}

// CategoryFor applies the folder rule: Forecast for the current year, History_Baseline otherwise
func (r *Registry) CategoryFor(year int) domain.Category {
	if year == r.CurrentYear() {
		return domain.CategoryForecast
	}
	return domain.CategoryBaseline
}

// Prefix returns the object-store prefix of one snapshot folder
func Prefix(category domain.Category, folder string, year int) string {
	return storage.Prefix(string(category), folder, fmt.Sprint(year))
}

// Discover lists the snapshots of a property and year, newest first. An empty result means no data;
// storage failures are logged and also yield an empty result.
func (r *Registry) Discover(ctx context.Context, folder string, year int) []domain.Snapshot {
	return r.DiscoverCategory(ctx, folder, year, r.CategoryFor(year))
}

// DiscoverCategory lists snapshots of an explicit category, bypassing the year rule
func (r *Registry) DiscoverCategory(ctx context.Context, folder string, year int, category domain.Category) []domain.Snapshot {
	prefix := Prefix(category, folder, year)
	log := r.logger.With(slog.String("prefix", prefix))

	names, fromIndex := r.readIndex(ctx, prefix)

	var listed map[string]storage.ObjectInfo
	needListing := !fromIndex
	if fromIndex {
		// the listing is only needed for entries without a date in the name
		for _, name := range names {
			if _, src := ExtractCaptureDate(name, time.Time{}); src == domain.CaptureFromLastModified && IsSnapshotFile(name) {
				needListing = true
				break
			}
		}
	}
	if needListing {
		objects, err := r.store.List(ctx, prefix)
		if err != nil {
			log.WarnContext(ctx, "Snapshot listing failed, treating as no data", slog.String("error", err.Error()))
			return []domain.Snapshot{}
		}
		listed = make(map[string]storage.ObjectInfo, len(objects))
		for _, obj := range objects {
			listed[obj.Name()] = obj
		}
		if !fromIndex {
			names = names[:0]
			for _, obj := range objects {
				if path.Dir(obj.Key)+"/" == prefix {
					names = append(names, obj.Name())
				}
			}
		}
	}

	snaps := make([]domain.Snapshot, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = path.Base(name)
		if !IsSnapshotFile(name) || seen[name] {
			continue
		}
		seen[name] = true

		obj, exists := listed[name]
		capture, src := ExtractCaptureDate(name, obj.LastModified)
		if src == domain.CaptureFromLastModified && !exists {
			log.WarnContext(ctx, "Indexed snapshot has no date token and no object, skipping",
				slog.String("filename", name))
			continue
		}

		snaps = append(snaps, domain.Snapshot{
			Property:    folder,
			Year:        year,
			CaptureDate: capture,
			StorageKey:  prefix + name,
			Filename:    name,
			Category:    category,
			DateSource:  src,
		})
	}

	SortNewestFirst(snaps)

	if len(snaps) == 0 {
		log.DebugContext(ctx, "No snapshots found", slog.Bool("index", fromIndex))
	} else {
		log.DebugContext(ctx, "Snapshots discovered",
			slog.Int("count", len(snaps)),
			slog.Bool("index", fromIndex),
			slog.String("newest", snaps[0].Filename))
	}
	return snaps
}

// Newest returns the most recent snapshot of a property and year
func (r *Registry) Newest(ctx context.Context, folder string, year int) (domain.Snapshot, bool) {
	snaps := r.Discover(ctx, folder, year)
	if len(snaps) == 0 {
		return domain.Snapshot{}, false
	}
	return snaps[0], true
}

// Find looks up a snapshot by filename within a property and year
func (r *Registry) Find(ctx context.Context, folder string, year int, filename string) (domain.Snapshot, bool) {
	for _, s := range r.Discover(ctx, folder, year) {
		if s.Filename == filename {
			return s, true
		}
	}
	return domain.Snapshot{}, false
}

// SortNewestFirst orders by capture date descending, then filename descending
func SortNewestFirst(snaps []domain.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].CaptureDate.Equal(snaps[j].CaptureDate) {
			return snaps[i].CaptureDate.After(snaps[j].CaptureDate)
		}
		return snaps[i].Filename > snaps[j].Filename
	})
}

// readIndex returns the filenames listed in index.json and whether a usable index was found
func (r *Registry) readIndex(ctx context.Context, prefix string) ([]string, bool) {
	data, err := r.store.Get(ctx, prefix+IndexFile)
	if err != nil {
		if !storage.IsNotFound(err) {
			r.logger.WarnContext(ctx, "Failed to read snapshot index, falling back to listing",
				slog.String("prefix", prefix), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		r.logger.WarnContext(ctx, "Snapshot index is not a JSON list of filenames, falling back to listing",
			slog.String("prefix", prefix), slog.String("error", err.Error()))
		return nil, false
	}
	return names, true
}
