// Package parallel provides the chunked fork-join loop shared by all
// parallel code paths in imgal. Sequential execution is the one-worker
// degenerate case of the same partitioning, so parallel and sequential
// modes cannot drift apart algorithmically.
package parallel

import (
	"runtime"
	"sync"
)

// Workers returns the worker count for an execution-mode flag: all available
// CPU cores when parallel is true, a single worker otherwise.
func Workers(parallel bool) int {
	if parallel {
		return runtime.NumCPU()
	}
	return 1
}

// For partitions the index range [0, n) into contiguous chunks and runs
// fn(lo, hi) for each chunk. With workers <= 1 the single chunk [0, n) is
// processed inline on the calling goroutine; otherwise chunks run on their
// own goroutines and For blocks until all of them complete.
//
// Each index is covered by exactly one chunk, so workers may write to
// disjoint regions of a shared output slice without synchronization.
func For(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	// Divide the work among available cores.
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
