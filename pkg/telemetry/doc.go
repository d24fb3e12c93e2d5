// Package telemetry groups the observability subsystems: structured
// logging (telemetry/logging), Prometheus metrics (telemetry/metrics),
// and liveness/readiness checks (telemetry/health).
package telemetry
