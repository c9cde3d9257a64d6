// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Push channel connectivity, reconnects, and event dispatch rates
//   - Envelopes discarded as malformed or unrecognized
//   - Cache patch/invalidate effect counts
//   - Pull request counts by endpoint and outcome
//   - Per-scan stream record throughput
package metrics
