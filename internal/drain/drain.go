// Package drain batches values received from an ordinary Go channel up to
// a size or time bound, for bridging a coroutine's From-loop output (one
// value at a time, synchronously) into consumers that would rather
// process a handful of values per call. It follows the same size/time
// bound structure as longpoll.Channel, simplified to a single bound
// (no separate partial-timeout phase) since a demo reading from a relay
// channel fed by a single coroutine's From loop has no long-poll-style
// "wait for the first value" requirement.
package drain

import (
	"context"
	"io"
	"time"
)

// Config models optional batching bounds. The zero value selects the
// documented defaults, matching longpoll.ChannelConfig's convention.
type Config struct {
	// MaxSize is the maximum number of values to collect into one batch.
	// Defaults to 16 if zero. A negative value disables the bound.
	MaxSize int

	// MaxWait bounds how long to wait for the batch to fill once the
	// first value has been received. Defaults to 50ms if zero.
	MaxWait time.Duration
}

// Batch receives from ch until MaxSize values have been collected, MaxWait
// has elapsed since the first value, ctx is cancelled, or ch is closed. It
// returns the collected values and, if ch closed before any bound was hit,
// io.EOF alongside whatever was collected.
//
// Providing a nil ctx or ch panics.
func Batch[T any](ctx context.Context, cfg *Config, ch <-chan T) ([]T, error) {
	if ctx == nil {
		panic("drain: nil context")
	}
	if ch == nil {
		panic("drain: nil channel")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxSize := 16
	maxWait := 50 * time.Millisecond
	if cfg != nil {
		if cfg.MaxSize != 0 {
			maxSize = cfg.MaxSize
		}
		if cfg.MaxWait != 0 {
			maxWait = cfg.MaxWait
		}
	}

	var (
		out     []T
		timerCh <-chan time.Time
	)

	for maxSize < 0 || len(out) < maxSize {
		select {
		case <-ctx.Done():
			return out, ctx.Err()

		case <-timerCh:
			return out, nil

		case v, ok := <-ch:
			if !ok {
				return out, io.EOF
			}
			out = append(out, v)
			if len(out) == 1 && maxWait > 0 {
				timer := time.NewTimer(maxWait)
				defer timer.Stop()
				timerCh = timer.C
			}
		}
	}

	return out, nil
}
