// Package app wires the dashboard together and manages its lifecycle.
//
// BuildCore assembles the transport-free analytics stack: object storage,
// schema aliases, the snapshot registry, the consolidated dataset cache, the
// consolidation engine, budgets and the analytics service. The command line
// tools use it directly.
//
// New and NewApplication add telemetry, health probes, the chi router and the
// HTTP server on top of it. Middleware runs in this order:
//
//	RequestID → RealIP → OTel → BusinessMetrics → StructuredLogger →
//	Recoverer → SecureHeaders → CORS → RateLimiter
//
// The analytics routes additionally pass AuditLog, Timeout and Compress.
//
// Run blocks until SIGINT or SIGTERM and then drains in-flight requests
// within the configured shutdown timeout. Initialisation errors are returned
// to the caller; the package never calls os.Exit.
package app
