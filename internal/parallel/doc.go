// Package parallel runs loop bodies over an index range or a slice, deciding
// per call whether to split the range into contiguous partitions executed
// concurrently or to run it as a plain loop on the calling goroutine.
//
// The decision is a size heuristic: a range of length n on p available
// workers is split into chunks of n/p indices only when p > 1 and every chunk
// gets at least the minimum partition size (128 by default). Smaller ranges,
// and every range on a single-core host, run sequentially in increasing index
// order.
//
// Concurrent execution is delegated to an Executor, so the package never
// owns goroutine pools of its own. Each call blocks until every partition has
// settled. The first body error wins and is returned as an
// apperrors.IterationError; cancellation of the caller's context is reported
// as an apperrors.CanceledError; a panicking body is re-raised on the calling
// goroutine.
package parallel
