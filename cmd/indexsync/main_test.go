package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/app"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/shared/testutil"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "defaults",
			args: nil,
			want: options{years: []int{2024, 2025}},
		},
		{
			name: "explicit",
			args: []string{"-property", "La_Terrazza, Lavagnini", "-year", "2025", "-category", "Forecast", "-schedule", "0 6 * * *"},
			want: options{
				properties: []string{"La_Terrazza", "Lavagnini"},
				years:      []int{2025},
				category:   domain.CategoryForecast,
				schedule:   "0 6 * * *",
			},
		},
		{name: "bad category", args: []string{"-category", "Archive"}, wantErr: "unknown category"},
		{name: "bad year", args: []string{"-year", "1999"}, wantErr: "out of range"},
		{name: "bad schedule", args: []string{"-schedule", "every day"}, wantErr: "invalid schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, fixedNow, io.Discard)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newSyncer(t *testing.T, fx *testutil.SnapshotFixtures) *syncer {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default()
	cfg.Storage.Backend = "memory"

	core, err := app.BuildCore(context.Background(), cfg, logger,
		app.WithObjectStore(fx.Store),
		app.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return &syncer{service: core.Analytics, logger: logger}
}

func TestSyncAllWritesIndexes(t *testing.T) {
	fx := testutil.NewSnapshotFixtures(t)
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025, "La_Terrazza_Forecast_Snapshot_20250201.xlsx",
		testutil.D("2025-04-01", 100, 1))
	fx.Put(domain.CategoryForecast, "La_Terrazza", 2025, "La_Terrazza_Forecast_Snapshot_20250301.xlsx",
		testutil.D("2025-04-01", 300, 3))
	s := newSyncer(t, fx)

	n, err := s.syncAll(context.Background(), []string{"La_Terrazza"}, []int{2025}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	report, err := s.service.Inspect(context.Background(), domain.Query{Property: "La_Terrazza", Year: 2025}, "")
	require.NoError(t, err)
	assert.True(t, report.IndexPresent)
	assert.Equal(t, []string{
		"La_Terrazza_Forecast_Snapshot_20250301.xlsx",
		"La_Terrazza_Forecast_Snapshot_20250201.xlsx",
	}, report.IndexEntries)
}

func TestSyncAllDefaultsToEveryProperty(t *testing.T) {
	s := newSyncer(t, testutil.NewSnapshotFixtures(t))

	n, err := s.syncAll(context.Background(), nil, []int{2025}, domain.CategoryForecast)
	require.NoError(t, err)
	assert.Equal(t, len(config.DefaultProperties()), n)
}

func TestSyncAllCollectsFailures(t *testing.T) {
	s := newSyncer(t, testutil.NewSnapshotFixtures(t))

	n, err := s.syncAll(context.Background(), []string{"Nowhere", "La_Terrazza"}, []int{2025}, "")
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUnknownProperty)
	assert.Contains(t, err.Error(), "Nowhere 2025")
}
