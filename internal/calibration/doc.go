// Package calibration benchmarks a workload under a range of minimum
// partition sizes, reports the fastest and caches it in a per-host profile
// that later runs pick up.
package calibration
