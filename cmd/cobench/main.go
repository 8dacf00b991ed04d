// Command cobench ports context_switch_timing.c: it creates a child that
// yields a counter in a tight loop, and measures the round-trip time
// between From calls in the parent.
//
// The original benchmark exists to show that a stackful coroutine
// implemented with assembly context-switch primitives vastly outperforms a
// generator built from an OS thread plus a pipe. This port does not carry
// that comparison over honestly: a Channel here is backed by a goroutine and
// an unbuffered channel, so the number reported is the cost of the Go
// runtime's scheduler handoff, not of a hand-written stack swap. It is
// useful for tracking regressions in this package, not for claiming parity
// with the native assembly routines in original_source/coroutine.c.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rlcamp/coroutine"
)

func childThatYieldsALot(parent *coroutine.Channel, arg any) {
	count := arg.(int)
	for i := 0; i < count; i++ {
		parent.YieldTo(i)
	}
}

func monotonicNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic(fmt.Errorf("cobench: ClockGettime: %w", err))
	}
	return ts.Nano()
}

func main() {
	yieldCount := flag.Int("count", 1<<23, "number of yields to perform")
	flag.Parse()

	start := monotonicNanos()

	child := coroutine.Create(childThatYieldsALot, *yieldCount, coroutine.WithTelemetry())
	for v := child.From(); v != nil; v = child.From() {
	}

	elapsed := monotonicNanos() - start

	fmt.Fprintf(os.Stderr, "%.1f ns per round-trip between coroutines (%.1f ns per switch)\n",
		float64(elapsed)/float64(*yieldCount), float64(elapsed)/(2.0*float64(*yieldCount)))

	// the ring only retains the most recent switches (it wraps at its
	// fixed capacity), so this reports the tail-end steady-state rate
	// rather than an average over the whole run
	if ring := child.Telemetry(); ring != nil {
		if durations := ring.Durations(); len(durations) > 0 {
			var sum int64
			for _, d := range durations {
				sum += d
			}
			fmt.Fprintf(os.Stderr, "telemetry ring: last %d switches averaged %.1f ns apart\n",
				len(durations), float64(sum)/float64(len(durations)))
		}
	}
}
