package coroutine

// YieldTo hands value to the peer and suspends the caller until the peer
// next suspends (whether via YieldTo, Switch, or termination). It returns
// whatever the peer placed in the mailbox by the time control returns here
// — a plain read via From would see the same value.
//
// Calling YieldTo once the child has terminated is a no-op as far as
// control transfer goes (switchContext short-circuits), but it still
// writes value into the mailbox first, so the call simply echoes value
// straight back.
func (c *Channel) YieldTo(value any) any {
	c.checkLive("YieldTo")
	c.slot = value
	switchContext(c)
	return c.slot
}

// From is the generator-consumption primitive: called in a loop, it
// switches to the peer only when the mailbox is currently empty, then
// returns whatever the peer placed there. This lets a driving loop read
// a pure generator purely through From, with no separate YieldTo or
// Switch call of its own — see cmd/comorse.
//
//	for value := parent.From(); value != nil; value = parent.From() { ... }
//
// Once the child has terminated, From runs the cleanup descriptor (if
// this is the call that first observes termination) and returns nil on
// every subsequent call.
func (c *Channel) From() any {
	if c.body == nil {
		c.join()
		return nil
	}
	if c.body != nil && c.slot == notFilled {
		switchContext(c)
	}
	if c.body == nil {
		c.join()
		return nil
	}
	v := c.slot
	c.slot = notFilled
	return v
}

// Switch transfers control to the peer and back with no value transfer.
// It is the bare primitive underneath YieldTo, exposed directly for
// callers that communicate only through control transfer itself (for
// example, a producer that fills a buffer the peer already knows about,
// signalling "buffer full" purely by switching back).
func (c *Channel) Switch() {
	c.checkLive("Switch")
	switchContext(c)
}

// CloseAndJoin tells the child no more input is coming: it repeatedly
// hands the child the close token (nil) until the child actually
// terminates (a well-behaved body checks From for nil and returns, but
// may legitimately yield further output first, e.g. while unwinding), then
// runs the channel's cleanup descriptor exactly once and marks the handle
// destroyed.
//
// Calling YieldTo, Switch, or CloseAndJoin on the handle afterward panics:
// the original library leaves post-destruction use undefined, and Go can
// detect this particular case for free. From keeps returning nil.
func (c *Channel) CloseAndJoin() {
	c.checkLive("CloseAndJoin")
	for c.body != nil {
		c.slot = nil
		switchContext(c)
	}
	c.join()
}
