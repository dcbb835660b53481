package match

import (
	"runtime"
	"sync"
)

func (p Parallelism) workers() int {
	if p.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return p.Workers
}

// bands splits [0, n) into at most workers contiguous, ordered ranges.
func bands(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	workers = max(1, min(workers, n))
	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

// parallelFor runs fn over the bands of [0, n), one goroutine per band.
func parallelFor(n, workers int, fn func(lo, hi int)) {
	bs := bands(n, workers)
	if len(bs) <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}
	var wg sync.WaitGroup
	for _, b := range bs {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(b[0], b[1])
	}
	wg.Wait()
}

// parallelMap runs fn per band and returns the per-band partials in band
// order. Each worker writes only its own slot.
func parallelMap[T any](n, workers int, fn func(lo, hi int) T) []T {
	bs := bands(n, workers)
	out := make([]T, len(bs))
	var wg sync.WaitGroup
	for i, b := range bs {
		wg.Add(1)
		go func(i, lo, hi int) {
			defer wg.Done()
			out[i] = fn(lo, hi)
		}(i, b[0], b[1])
	}
	wg.Wait()
	return out
}
