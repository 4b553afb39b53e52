package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

func testOTelConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.TraceWriter = io.Discard
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelDisabledSignalsAreNoop(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = false
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordCacheLookup(context.Background(), true)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelRejectsUnknownExporters(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)

	cfg = DefaultOTelConfig()
	cfg.MetricExporter = "statsd"
	_, err = InitializeOTel(cfg, nil)
	assert.Error(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "consolidate")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.Empty(t, TraceIDFromContext(context.Background()))

	SetSpanAttributes(ctx, map[string]interface{}{"property": "La_Terrazza", "year": 2025, "exact": true})
	RecordError(ctx, assert.AnError)
}

func TestBusinessMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	snap := domain.Snapshot{Property: "La_Terrazza", Category: domain.CategoryForecast}
	metrics.RecordCacheLookup(ctx, true)
	metrics.RecordCacheLookup(ctx, false)
	metrics.RecordParse(ctx, snap, domain.ParseDiagnostics{RejectedCells: 3, DroppedRows: 1, Errors: []string{"corrupt"}})
	metrics.RecordDiscovery(ctx, "La_Terrazza", 2025, 4)
	metrics.RecordOperation(ctx, "pace", 20*time.Millisecond, nil)
	metrics.RecordPace(ctx, false)
	metrics.RecordSystemError(ctx, "storage")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "consolidation_cache_lookups_total")
	assert.Contains(t, body, "rejected_cells_total")
	assert.Contains(t, body, "snapshots_discovered_total")
	assert.Contains(t, body, "pace_matches_total")
}

func TestNilBusinessMetricsAreSafe(t *testing.T) {
	var m *BusinessMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordCacheLookup(ctx, true)
		m.RecordParse(ctx, domain.Snapshot{}, domain.ParseDiagnostics{RejectedCells: 1})
		m.RecordDiscovery(ctx, "x", 2025, 1)
		m.RecordOperation(ctx, "kpi", time.Second, nil)
		m.RecordPace(ctx, true)
		m.RecordSystemError(ctx, "x")
		m.RecordIndexRebuild(ctx, "Forecast")
		m.RecordBudgetSaved(ctx, "official")
	})
}
