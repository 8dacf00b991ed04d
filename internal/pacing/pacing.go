// Package pacing implements a single-category sliding-window rate
// limiter, simplified from catrate's multi-category design: a demo
// process logging diagnostics about a coroutine has exactly one category
// worth limiting ("diagnostic log lines"), so the sync.Map-per-category
// bookkeeping and background cleanup worker are unneeded here.
package pacing

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/slices"
)

// Limiter enforces one or more sliding-window rates against a single
// stream of events. It is not safe for concurrent use: Allow updates the
// event history without locking. cmd/cotone only ever calls it from its
// own audio-callback-adjacent goroutine.
type Limiter struct {
	rates     map[time.Duration]int
	retention time.Duration
	events    []int64 // UnixNano, sorted ascending
}

// NewLimiter validates rates the same way catrate does (positive,
// monotonic across window sizes) and panics on an invalid configuration.
func NewLimiter(rates map[time.Duration]int) *Limiter {
	retention, ok := parseRates(rates)
	if !ok {
		panic(fmt.Errorf("pacing: invalid rates: %v", rates))
	}
	return &Limiter{rates: rates, retention: retention}
}

// Allow reports whether an event may be registered now without pushing
// any configured rate's window over its limit, registering it if so. It
// checks every rate's window against the pending count before inserting,
// mirroring catrate's filterEvents boundary/index search but rejecting
// outright instead of merely recording a future-unblock time, since this
// package has no per-category worker to act on that later.
func (l *Limiter) Allow(now time.Time) bool {
	if l == nil || len(l.rates) == 0 {
		return true
	}

	firstRelevant := len(l.events)

	for rate, limit := range l.rates {
		boundary := now.Add(-rate)
		index := sortedSearch(l.events, boundary.UnixNano()+1)
		if index < firstRelevant {
			firstRelevant = index
		}
		if len(l.events)-index >= limit {
			l.events = l.events[firstRelevant:]
			return false
		}
	}

	l.events = l.events[firstRelevant:]
	idx := sortedSearch(l.events, now.UnixNano())
	l.events = insertAt(l.events, idx, now.UnixNano())
	return true
}

// sortedSearch finds the insertion point for v in the ascending-sorted
// events slice, matching catrate's ringBuffer.Search.
func sortedSearch(events []int64, v int64) int {
	return sort.Search(len(events), func(i int) bool { return events[i] >= v })
}

func insertAt(s []int64, i int, v int64) []int64 {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// parseRates validates rates and computes the retention duration, the
// same rules catrate's parseRates applies: every duration and count must
// be positive, and rates must be monotonic (shorter windows stricter than
// longer ones).
func parseRates(rates map[time.Duration]int) (time.Duration, bool) {
	if len(rates) == 0 {
		return 0, false
	}

	durations := make([]time.Duration, 0, len(rates))
	for d := range rates {
		durations = append(durations, d)
	}
	slices.Sort(durations)

	for i, d := range durations {
		rate := rates[d]
		if rate <= 0 || d <= 0 {
			return 0, false
		}
		if (i < len(durations)-1 && rate >= rates[durations[i+1]]) ||
			(i > 0 && float64(rate)/float64(d) >= float64(rates[durations[i-1]])/float64(durations[i-1])) {
			return 0, false
		}
	}

	return durations[len(durations)-1], true
}
