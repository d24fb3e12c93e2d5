// Package audit records the outcome of every validation request in a
// decision log. Each record captures the request id, the ruleset (when the
// request named one), the pipeline outcome, and timing — never the data
// record itself, which may carry user content.
//
// The default backend is SQLite with WAL mode; an in-memory backend backs
// tests and setups that do not want persistence. A cron-scheduled pruner
// enforces the retention window.
package audit
