// Package telemetry records coroutine switch timestamps directly into a
// caller-supplied byte block, with no further allocation once the ring is
// constructed.
//
// The mask/bounds bookkeeping below follows the same circular-buffer
// arithmetic as catrate's generic ring buffer, re-targeted from a
// growable slice of ordered elements to a fixed-capacity, byte-backed
// ring of int64 nanosecond timestamps: unlike a rate limiter's event
// history, a caller-supplied memory block can never grow, and a
// coroutine's hot switch path can never tolerate the allocation growing
// would require.
package telemetry

import "encoding/binary"

const slotSize = 8 // one int64 per slot

// Ring is a fixed-capacity circular buffer of switch timestamps, backed
// by a block of memory the caller owns. Record is the only operation
// used on the coroutine hot path; it never allocates.
type Ring struct {
	block []byte
	cap   uint
	w     uint
}

// NewRing constructs a Ring over block, using as many whole 8-byte slots
// as fit. block must already be validated by the caller for minimum size
// and alignment (see coroutine.MinBlockSize / coroutine.StackAlignment);
// NewRing itself only derives the slot count.
func NewRing(block []byte) *Ring {
	n := uint(len(block) / slotSize)
	if n == 0 {
		panic("telemetry: block too small to hold a single record")
	}
	return &Ring{block: block, cap: n}
}

// Record appends a timestamp, overwriting the oldest entry once the ring
// is full. It performs no allocation and no syscall.
func (r *Ring) Record(nowUnixNano int64) {
	i := r.mask(r.w)
	binary.LittleEndian.PutUint64(r.block[i*slotSize:], uint64(nowUnixNano))
	r.w++
}

func (r *Ring) mask(val uint) uint {
	return val % r.cap
}

// Len reports how many records are currently retained (capped at Cap).
func (r *Ring) Len() int {
	if r.w < uint(r.cap) {
		return int(r.w)
	}
	return int(r.cap)
}

// Cap reports the ring's fixed capacity, derived from the backing block.
func (r *Ring) Cap() int {
	return int(r.cap)
}

// Durations returns the inter-switch intervals across the retained
// window, oldest first. It is a diagnostics helper, not used on the hot
// path: cmd/cobench calls it after the timed loop completes.
func (r *Ring) Durations() []int64 {
	n := r.Len()
	if n < 2 {
		return nil
	}
	start := r.w - uint(n)
	out := make([]int64, 0, n-1)
	prev := r.get(start)
	for i := uint(1); i < uint(n); i++ {
		cur := r.get(start + i)
		out = append(out, cur-prev)
		prev = cur
	}
	return out
}

func (r *Ring) get(logical uint) int64 {
	i := r.mask(logical)
	return int64(binary.LittleEndian.Uint64(r.block[i*slotSize:]))
}
