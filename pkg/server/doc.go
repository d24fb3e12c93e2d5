// Package server exposes the validation engine over HTTP.
//
// Routes:
//
//	POST /v1/validate                   validate with an inline schema and rules
//	POST /v1/rulesets/{name}/validate   validate against a preloaded ruleset
//	GET  /v1/rulesets                   list loaded ruleset names
//	GET  /                              service banner
//	GET  /healthz                       liveness probe
//	GET  /readyz                        readiness probe
//	GET  /metrics                       Prometheus exposition (when enabled)
package server
