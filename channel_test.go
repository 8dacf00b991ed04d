package coroutine

import (
	"runtime"
	"strconv"
	"testing"
	"time"
)

// checkNoLeak waits briefly for the goroutine count to settle back down
// to at most before, failing the test if it doesn't. Simplified from
// microbatch_test.go's checkNumGoroutines to a single before/after
// snapshot, since a Channel owns exactly one goroutine.
func checkNoLeak(t *testing.T, before int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		after := runtime.NumGoroutine()
		if after <= before {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf(`goroutine leak: before=%d after=%d`, before, after)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCreate_runsUntilFirstSuspend(t *testing.T) {
	entered := false
	c := Create(func(parent *Channel, arg any) {
		entered = true
		if arg != `hello` {
			t.Errorf(`unexpected arg: %v`, arg)
		}
	}, `hello`)
	if !entered {
		t.Fatal(`body should have run synchronously up to termination`)
	}
	if got := c.State(); got != TerminatedNotJoined {
		t.Fatalf(`state = %v, want TerminatedNotJoined`, got)
	}
	c.CloseAndJoin()
	if got := c.State(); got != Destroyed {
		t.Fatalf(`state = %v, want Destroyed`, got)
	}
}

func TestCreate_suspendsOnFirstYield(t *testing.T) {
	var resumed bool
	c := Create(func(parent *Channel, arg any) {
		parent.YieldTo(`first`)
		resumed = true
	}, nil)

	if resumed {
		t.Fatal(`body should not have resumed past its first yield yet`)
	}
	if got := c.State(); got != ParentRunningChildSuspended {
		t.Fatalf(`state = %v, want ParentRunningChildSuspended`, got)
	}

	v := c.From()
	if v != `first` {
		t.Fatalf(`From() = %v, want "first"`, v)
	}

	c.CloseAndJoin()
	if !resumed {
		t.Fatal(`CloseAndJoin should have let the body resume and run to completion`)
	}
}

func TestYieldTo_bodyEnteredExactlyOnce(t *testing.T) {
	var count int
	c := Create(func(parent *Channel, arg any) {
		count++
		for i := 0; i < 3; i++ {
			parent.YieldTo(i)
		}
	}, nil)
	for i := 0; i < 3; i++ {
		if v := c.From(); v != i {
			t.Fatalf(`From() = %v, want %d`, v, i)
		}
	}
	c.CloseAndJoin()
	if count != 1 {
		t.Fatalf(`body entered %d times, want 1`, count)
	}
}

func TestFrom_returnsNilAfterTermination(t *testing.T) {
	c := Create(func(parent *Channel, arg any) {
		parent.YieldTo(`only`)
	}, nil)

	if v := c.From(); v != `only` {
		t.Fatalf(`From() = %v, want "only"`, v)
	}
	if v := c.From(); v != nil {
		t.Fatalf(`From() = %v, want nil after termination`, v)
	}
	if v := c.From(); v != nil {
		t.Fatalf(`From() = %v, want nil on every call after termination`, v)
	}
}

func TestEcho_roundTrip(t *testing.T) {
	c := Create(func(parent *Channel, arg any) {
		for {
			v := parent.From()
			if v == nil {
				return
			}
			parent.YieldTo(v)
		}
	}, nil)

	for i := 0; i < 5; i++ {
		got := c.YieldTo(i)
		if got != i {
			t.Fatalf(`round trip %d: got %v`, i, got)
		}
	}
	c.CloseAndJoin()
}

func TestCleanup_runsExactlyOnce(t *testing.T) {
	var calls int
	c := Create(func(parent *Channel, arg any) {
		parent.YieldTo(nil)
	}, nil, WithCleanup(func() { calls++ }))

	c.From() // returns the nil the child yielded; the child has not returned yet
	c.From() // observes termination, should trigger cleanup

	if calls != 1 {
		t.Fatalf(`cleanup ran %d times, want 1`, calls)
	}

	// a further From on the joined channel returns nil and must not
	// trigger cleanup again
	if v := c.From(); v != nil {
		t.Fatalf(`From() = %v on a joined channel, want nil`, v)
	}
	if calls != 1 {
		t.Fatalf(`cleanup ran %d times after a further From, want 1`, calls)
	}
}

func TestCloseAndJoin_runsCleanupExactlyOnce(t *testing.T) {
	before := runtime.NumGoroutine()
	var calls int
	c := Create(func(parent *Channel, arg any) {
		for parent.From() != nil {
		}
	}, `placeholder`, WithCleanup(func() { calls++ }))

	c.CloseAndJoin()
	checkNoLeak(t, before)
	if calls != 1 {
		t.Fatalf(`cleanup ran %d times, want 1`, calls)
	}

	defer func() {
		if recover() == nil {
			t.Fatal(`CloseAndJoin on a destroyed channel should panic`)
		}
	}()
	c.CloseAndJoin()
}

func TestCloseAndJoin_onAlreadyTerminatedChild(t *testing.T) {
	var calls int
	c := Create(func(parent *Channel, arg any) {
		// returns immediately without yielding
	}, nil, WithCleanup(func() { calls++ }))

	if got := c.State(); got != TerminatedNotJoined {
		t.Fatalf(`state = %v, want TerminatedNotJoined`, got)
	}
	c.CloseAndJoin()
	if calls != 1 {
		t.Fatalf(`cleanup ran %d times, want 1`, calls)
	}
}

func TestSwitch_noValueTransfer(t *testing.T) {
	buf := make([]int, 4)
	c := Create(func(parent *Channel, arg any) {
		for i := range buf {
			buf[i] = i * i
			parent.Switch()
		}
	}, nil)

	for i := range buf {
		if buf[i] != i*i {
			t.Fatalf(`buf[%d] = %d, want %d`, i, buf[i], i*i)
		}
		c.Switch()
	}
	c.CloseAndJoin()
}

func TestChildNeverYieldsPastParentClose(t *testing.T) {
	var observedNilCount int
	c := Create(func(parent *Channel, arg any) {
		for {
			v := parent.From()
			if v == nil {
				observedNilCount++
				return
			}
			parent.YieldTo(v)
		}
	}, nil)
	c.CloseAndJoin()
	if observedNilCount != 1 {
		t.Fatalf(`child observed the close token %d times, want 1`, observedNilCount)
	}
}

func TestNestedChannels(t *testing.T) {
	// a child that itself creates and drains a grandchild generator
	c := Create(func(parent *Channel, arg any) {
		grandchild := Create(func(inner *Channel, arg any) {
			for i := 0; i < 3; i++ {
				inner.YieldTo(i * 10)
			}
		}, nil)
		for {
			v := grandchild.From()
			if v == nil {
				break
			}
			parent.YieldTo(v)
		}
		// the nil From above already joined the grandchild
	}, nil)

	var got []any
	for v := c.From(); v != nil; v = c.From() {
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 10 || got[2] != 20 {
		t.Fatalf(`got %v`, got)
	}
}

func TestStarTopology(t *testing.T) {
	// one parent driving two independent, non-interfering children
	a := Create(func(parent *Channel, arg any) {
		for i := 0; i < 2; i++ {
			parent.YieldTo("a" + strconv.Itoa(i))
		}
	}, nil)
	b := Create(func(parent *Channel, arg any) {
		for i := 0; i < 2; i++ {
			parent.YieldTo("b" + strconv.Itoa(i))
		}
	}, nil)

	if v := a.From(); v != "a0" {
		t.Fatalf(`a.From() = %v`, v)
	}
	if v := b.From(); v != "b0" {
		t.Fatalf(`b.From() = %v`, v)
	}
	if v := a.From(); v != "a1" {
		t.Fatalf(`a.From() = %v`, v)
	}
	if v := b.From(); v != "b1" {
		t.Fatalf(`b.From() = %v`, v)
	}
	a.CloseAndJoin()
	b.CloseAndJoin()
}
