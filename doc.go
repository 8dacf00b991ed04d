// Package coroutine implements a stackful, symmetric, single-threaded
// coroutine primitive: generator functions, sequential pipelines, small
// state machines, and producers driven from inside a host callback loop
// (e.g. an audio or sensor sample callback) that must never allocate or
// block on the OS.
//
// A Channel is a rendezvous object shared by exactly two peers, a parent
// and a child. Exactly one peer runs at any instant; the other is
// suspended, parked on an unbuffered "baton" channel, which plays the role
// of the mutex/condvar gate a thread-based implementation of this same
// contract would use. Because each peer is backed by its own goroutine,
// each has its own independent, arbitrarily deep call stack: local state
// persists across suspensions, and a suspension may occur at any call
// depth, not just in the top-level body function.
//
// The four verbs are YieldTo, From, CloseAndJoin, and Switch, all methods
// on *Channel. Create and CreateGivenMemory construct a Channel and run its
// child up to its first suspension (or to termination, if the body never
// suspends) before returning.
//
// See DESIGN.md in the module root for the reasoning behind translating
// the original library's native/fallback assembly substrate onto a single
// goroutine-and-channel substrate.
package coroutine
