package coroutine

import (
	"fmt"

	"github.com/rlcamp/coroutine/internal/telemetry"
)

// Sizing constants, kept for API-shape parity with the original library's
// block/blocksize contract even though the Go runtime (not this package)
// owns the actual goroutine stack. They bound the optional telemetry
// arena a caller passes to CreateGivenMemory.
const (
	// MinBlockSize is the smallest block CreateGivenMemory accepts.
	MinBlockSize = 64

	// DefaultBlockSize is what Create allocates on the caller's behalf.
	DefaultBlockSize = 512 * 1024

	// StackAlignment is the alignment CreateGivenMemory requires of the
	// supplied block's address-independent layout: telemetry records are
	// fixed-width int64s, so the block length must be a multiple of it.
	StackAlignment = 8
)

// Option configures a Channel at construction time. The zero value of
// every option's underlying config is "do nothing additional".
type Option func(*options)

type options struct {
	cleanup       func()
	wantTelemetry bool
}

// WithCleanup registers a descriptor that CloseAndJoin (or the child's
// natural termination observed via From, for callers that poll rather
// than close) runs exactly once, after the child has fully terminated.
func WithCleanup(cleanup func()) Option {
	return func(o *options) { o.cleanup = cleanup }
}

// WithTelemetry requests that CreateGivenMemory back a switch-timestamp
// ring buffer with the supplied block, instead of leaving it unused.
// Passed to Create, it backs the ring with Create's own default-sized
// block; neither constructor enables telemetry unless asked (a hot
// generator that never asks for instrumentation should never pay for it).
func WithTelemetry() Option {
	return func(o *options) { o.wantTelemetry = true }
}

// Create allocates a default-sized memory block and delegates to
// CreateGivenMemory. It runs the child up to its first suspension (or to
// termination, if body never suspends) before returning.
func Create(body Body, arg any, opts ...Option) *Channel {
	return CreateGivenMemory(body, arg, make([]byte, DefaultBlockSize), opts...)
}

// CreateGivenMemory constructs a Channel using the caller-supplied block
// as backing storage for optional telemetry (see WithTelemetry), spawns
// the child goroutine running body, and blocks until the child's first
// suspension or termination, exactly as coroutine_create_given_memory
// does in the original library. block must be at least MinBlockSize
// bytes and a multiple of StackAlignment; violating either panics.
func CreateGivenMemory(body Body, arg any, block []byte, opts ...Option) *Channel {
	if body == nil {
		panic("coroutine: CreateGivenMemory called with a nil body")
	}
	if len(block) < MinBlockSize {
		panic(fmt.Errorf("coroutine: block of %d bytes is smaller than MinBlockSize (%d)", len(block), MinBlockSize))
	}
	if len(block)%StackAlignment != 0 {
		panic(fmt.Errorf("coroutine: block length %d is not a multiple of StackAlignment (%d)", len(block), StackAlignment))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Channel{
		gate:        make(chan struct{}),
		slot:        notFilled,
		body:        body,
		childActive: true,
		cleanup:     o.cleanup,
	}
	if o.wantTelemetry {
		c.telemetry = telemetry.NewRing(block)
	}

	go springboard(c, arg)

	// Block until the child's first suspension (or immediate
	// termination): the child is the only runnable side until then.
	<-c.gate

	return c
}

// springboard is the child goroutine's entry point. arg is passed
// directly to body — a generator never needs to call From to retrieve
// its own initial argument, since the runtime hands it over directly,
// the same way the child's C springboard took a local copy before
// clearing the mailbox. The mailbox is cleared to the empty sentinel
// immediately, mirroring that same clearing step, so that the child's
// own first From call (if any) cannot mistake the consumed argument for
// a value left over in the mailbox.
//
// On return, body is nulled and control is handed back to the parent
// one-way, with no corresponding receive: the child goroutine exits here
// for good.
func springboard(c *Channel, arg any) {
	c.slot = notFilled
	c.body(c, arg)
	c.body = nil
	c.gate <- struct{}{}
}
