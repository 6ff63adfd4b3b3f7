package epoch

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Sample draws up to windows runs of windowLen consecutive days from year.
// Runs never overlap: once a run is drawn, every start day that would make a
// later run intersect it is removed from the pool. When upTo is non-nil the
// last day of any run is no later than *upTo; otherwise runs end by December 31.
// Fewer runs than requested are returned once the pool is exhausted.
func Sample(rng *rand.Rand, year, windowLen, windows int, upTo *Date) [][]Date {
	if windowLen < 1 || windows < 1 {
		return nil
	}

	start := NewDate(year, time.January, 1)
	end := NewDate(year, time.December, 31).AddDays(-(windowLen - 1))
	if upTo != nil {
		end = upTo.AddDays(-(windowLen - 1))
	}

	pool := Range(start, end)
	runs := make([][]Date, 0, windows)
	for len(runs) < windows && len(pool) > 0 {
		first := pool[rng.IntN(len(pool))]

		run := make([]Date, windowLen)
		for i := range run {
			run[i] = first.AddDays(i)
		}
		runs = append(runs, run)

		lo, hi := first.AddDays(-(windowLen - 1)), first.AddDays(windowLen-1)
		pool = slices.DeleteFunc(pool, func(d Date) bool {
			return !d.Before(lo) && !hi.Before(d)
		})
	}
	return runs
}
