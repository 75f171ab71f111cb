package workload

import (
	"context"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Workload is a loop body run over [from, from+n) that reduces to a checksum.
type Workload interface {
	Name() string
	Description() string
	Run(ctx context.Context, r Runner, from, n int) (uint64, error)
}

// SumSquares writes i*i for every index into a result slice and sums it.
// Each index owns its slot, so no synchronization is needed.
type SumSquares struct{}

func (SumSquares) Name() string        { return "sum-squares" }
func (SumSquares) Description() string { return "sum of i*i, one result slot per index" }

func (SumSquares) Run(ctx context.Context, r Runner, from, n int) (uint64, error) {
	results := make([]uint64, n)
	err := r.For(ctx, from, from+n, func(i int) error {
		v := uint64(i)
		results[i-from] = v * v
		return nil
	})
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, v := range results {
		sum += v
	}
	return sum, nil
}

// Primes counts primes by trial division. Work per index grows with the
// index, so partitions are deliberately uneven.
type Primes struct{}

func (Primes) Name() string        { return "primes" }
func (Primes) Description() string { return "count primes by trial division (uneven work)" }

func (Primes) Run(ctx context.Context, r Runner, from, n int) (uint64, error) {
	var count atomic.Uint64
	err := r.For(ctx, from, from+n, func(i int) error {
		if isPrime(i) {
			count.Add(1)
		}
		return nil
	})
	return count.Load(), err
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Collatz finds the longest Collatz trajectory in the range.
type Collatz struct{}

func (Collatz) Name() string        { return "collatz" }
func (Collatz) Description() string { return "longest Collatz trajectory (atomic max)" }

func (Collatz) Run(ctx context.Context, r Runner, from, n int) (uint64, error) {
	var longest atomic.Uint64
	err := r.For(ctx, from, from+n, func(i int) error {
		steps := collatzSteps(i)
		for {
			cur := longest.Load()
			if steps <= cur || longest.CompareAndSwap(cur, steps) {
				return nil
			}
		}
	})
	return longest.Load(), err
}

func collatzSteps(n int) uint64 {
	if n < 1 {
		return 0
	}
	x := uint64(n)
	var steps uint64
	for x != 1 {
		if x%2 == 0 {
			x /= 2
		} else {
			if x > (math.MaxUint64-1)/3 {
				return steps // would overflow; stop counting
			}
			x = 3*x + 1
		}
		steps++
	}
	return steps
}

// HashEach hashes a generated sequence of keys with XXH64 and folds the
// hashes with XOR. It runs through ForEach rather than For.
type HashEach struct{}

func (HashEach) Name() string        { return "hash-each" }
func (HashEach) Description() string { return "XXH64 over a generated key sequence (ForEach)" }

type hashItem struct {
	pos int
	key string
}

func (HashEach) Run(ctx context.Context, r Runner, from, n int) (uint64, error) {
	items := make([]hashItem, n)
	for k := range items {
		items[k] = hashItem{pos: from + k, key: "key-" + strconv.Itoa(from+k)}
	}
	hashes := make([]uint64, n)
	err := ForEach(ctx, r, items, func(it hashItem) int { return it.pos }, func(it hashItem) error {
		hashes[it.pos-from] = xxhash.Sum64String(it.key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	var acc uint64
	for _, h := range hashes {
		acc ^= h
	}
	return acc, nil
}
