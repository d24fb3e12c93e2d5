// Package metrics exposes Prometheus metrics for the validation pipeline
// and the HTTP surface. All metrics live under the "atlas" namespace and
// register against a private registry so tests can run in isolation.
package metrics
