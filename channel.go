package coroutine

import (
	"sync"

	"github.com/rlcamp/coroutine/internal/telemetry"
)

// Body is the shape of a coroutine's main logic: it receives the Channel
// linking it to its parent (conventionally named "parent" inside a body,
// and "child" by whoever calls Create), and the initial argument. A Body
// observes further input via From, produces output via YieldTo, and
// terminates by returning.
type Body func(parent *Channel, arg any)

// notFilled is the private, process-unique sentinel address denoting "the
// mailbox slot holds no user value". Its identity (not its contents) is
// what matters: no user value can ever compare equal to this particular
// pointer, wrapped in an any. This mirrors the C implementation's
// `not_filled` sentinel exactly (see original_source/coroutine.c).
var notFilled = new(struct{})

// Channel is the rendezvous object binding a parent peer to a child peer.
// Exactly one peer runs at any instant; the channel's zero value is not
// usable — obtain one via Create or CreateGivenMemory.
type Channel struct {
	// gate is the single baton used by whichever peer is currently
	// active to hand control to its (necessarily suspended) peer, then
	// block until handed control back. Because at most one goroutine is
	// ever runnable on a given Channel at a time, a single unbuffered
	// channel suffices in both directions: sends and receives pair up
	// strictly in alternation.
	gate chan struct{}

	// slot is the single-cell mailbox. It holds notFilled when
	// logically empty, nil when holding the close token, or a user
	// value otherwise. Writes to slot always happen-before the gate
	// send that hands off control, and reads of slot always happen
	// after the gate receive that accepted control, so no separate lock
	// is required (channel operations are the synchronization).
	slot any

	// body is the child's function. Nulled exactly once, by the child
	// itself, immediately before its final handoff to the parent. Its
	// nil-ness is the sole indicator of child termination.
	body Body

	// childActive tracks which peer is presently running, for State.
	// It is flipped by switchContext on every handoff; the core verbs
	// never read it.
	childActive bool

	// destroyed is set once the cleanup descriptor (if any) has run.
	// Calling a verb afterward is undefined in the original C library;
	// this implementation turns that into a panic (for every verb except
	// From, which keeps returning nil) rather than silent
	// corruption, since Go can detect the single-goroutine-owns-the-handle
	// case for free.
	destroyed bool

	cleanup     func()
	cleanupOnce sync.Once

	// telemetry is optional instrumentation backed by caller-supplied
	// memory; see WithTelemetry and internal/telemetry.
	telemetry telemetryRecorder
}

// telemetryRecorder is satisfied by *telemetry.Ring; kept as a narrow
// interface here so the core package does not need to know the ring's
// internals, only that it can be asked to record a switch timestamp.
type telemetryRecorder interface {
	Record(nowUnixNano int64)
}

// switchContext is the context-switch primitive underlying every verb. It
// is a no-op once the child's body has terminated. Otherwise it hands
// control to the peer and blocks until the peer hands control back.
func switchContext(c *Channel) {
	if c.body == nil {
		return
	}
	if c.telemetry != nil {
		c.telemetry.Record(nowNano())
	}
	c.childActive = !c.childActive
	c.gate <- struct{}{}
	<-c.gate
}

// join runs the cleanup descriptor exactly once and marks the handle
// destroyed. Called from From (once termination is observed) and from
// CloseAndJoin.
func (c *Channel) join() {
	c.cleanupOnce.Do(func() {
		if c.cleanup != nil {
			c.cleanup()
		}
		c.destroyed = true
	})
}

func (c *Channel) checkLive(verb string) {
	if c.destroyed {
		panic("coroutine: " + verb + " called on a destroyed channel")
	}
}

// Telemetry returns the switch-timestamp ring enabled via WithTelemetry at
// construction, or nil if telemetry was never requested for this channel.
func (c *Channel) Telemetry() *telemetry.Ring {
	r, _ := c.telemetry.(*telemetry.Ring)
	return r
}
