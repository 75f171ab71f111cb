// Package workload provides the loop bodies parfor runs. Each workload
// reduces its loop to a deterministic uint64 checksum, so the same workload
// run under different partitioning strategies must produce the same value.
package workload
