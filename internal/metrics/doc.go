// Package metrics records loop execution statistics as Prometheus metrics,
// summarizes loop trace spans and takes runtime memory snapshots around runs.
package metrics
