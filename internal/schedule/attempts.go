package schedule

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type attemptResult interface {
	score() float64
	perfect() bool
}

// runAttempts evaluates attempt(0..n-1) and returns the lowest-scoring
// result, its index and the number of attempts that count towards it.
// Ties go to the lower index and nothing after the first perfect attempt is
// considered, so the outcome does not depend on workers.
func runAttempts[T attemptResult](n, workers int, attempt func(i int) T) (best T, bestIdx, ran int) {
	if n < 1 {
		n = 1
	}
	results := make([]T, n)
	done := make([]bool, n)

	var firstPerfect atomic.Int64
	firstPerfect.Store(int64(n))

	run := func(i int) {
		if int64(i) > firstPerfect.Load() {
			return
		}
		res := attempt(i)
		results[i] = res
		done[i] = true
		if !res.perfect() {
			return
		}
		for {
			cur := firstPerfect.Load()
			if int64(i) >= cur || firstPerfect.CompareAndSwap(cur, int64(i)) {
				return
			}
		}
	}

	if workers <= 1 {
		for i := range n {
			run(i)
			if firstPerfect.Load() == int64(i) {
				break
			}
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(workers)
		for i := range n {
			if int64(i) > firstPerfect.Load() {
				break
			}
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	last := n - 1
	if p := int(firstPerfect.Load()); p < n {
		last = p
	}
	bestIdx = -1
	for i := 0; i <= last; i++ {
		if !done[i] {
			continue
		}
		if bestIdx < 0 || results[i].score() < best.score() {
			best = results[i]
			bestIdx = i
		}
	}
	return best, bestIdx, last + 1
}
