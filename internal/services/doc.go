// Package services is the application layer between the HTTP handlers and
// the analytics core.
//
// AnalyticsService resolves property names through the configured
// registry, runs consolidation, KPI, pickup, pace and budget computations,
// and wraps each operation in a span, a duration metric and structured
// logs. Core components never fail on missing data; the service turns an
// empty outcome into ErrNoData (or ErrInsufficientHistory when a
// comparison lacks an earlier snapshot) so the transport can answer 404 or
// 409. ErrorMappings lists the status each sentinel maps to.
//
// HealthService reports liveness and readiness of the object store and
// the dataset cache.
package services
