// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing, health checks and graceful shutdown for the
// back-office service.
//
// # Logging
//
// Logger wraps log/slog with a JSON handler. Handlers obtain a
// request-scoped logger through FromContext, which carries the request id
// attached by the middleware chain.
//
// # Metrics
//
// Metrics registers all Prometheus collectors on a caller-supplied
// registry. Authorization denials are recorded through the package-level
// RecordAuthzDenial so the guard middleware does not need a Metrics
// handle.
//
// # Health
//
// HealthChecker exposes liveness and readiness probes. Readiness pings
// PostgreSQL and Redis; a Redis outage degrades the service rather than
// failing it, since Redis only backs rate limiting.
package observability
