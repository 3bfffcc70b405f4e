package service

import (
	"sync/atomic"

	"zezin-crm/client/internal/model"
)

// RevealClock advances the visible length of the streaming message toward its
// true length by a fixed step per tick, independent of how fast text arrives.
//
// The clock is not safe for concurrent use; SessionService drives it under its
// own lock. The streaming flag is dereferenced on every tick.
type RevealClock struct {
	step      int
	streaming *atomic.Bool
	cursor    *model.StreamCursor
}

// NewRevealClock returns a clock that reveals step runes per tick and keeps
// its target while *streaming is true.
func NewRevealClock(step int, streaming *atomic.Bool) *RevealClock {
	if step < 1 {
		step = 1
	}
	return &RevealClock{step: step, streaming: streaming}
}

// Start targets a new message and resets the visible length to zero.
func (c *RevealClock) Start(targetID string) {
	c.cursor = &model.StreamCursor{TargetMessageID: targetID}
}

// Target returns the id of the message being revealed, or "" when idle.
func (c *RevealClock) Target() string {
	if c.cursor == nil {
		return ""
	}
	return c.cursor.TargetMessageID
}

// Cursor returns a copy of the current cursor, or nil when idle.
func (c *RevealClock) Cursor() *model.StreamCursor {
	if c.cursor == nil {
		return nil
	}
	cur := *c.cursor
	return &cur
}

// Release drops the cursor if it still targets targetID.
func (c *RevealClock) Release(targetID string) {
	if c.cursor != nil && c.cursor.TargetMessageID == targetID {
		c.cursor = nil
	}
}

// Advance performs one tick. trueLength is the current rune length of the
// target message and present reports whether the target is still part of the
// active view. It returns false once the clock has released its target.
func (c *RevealClock) Advance(trueLength int, present bool) bool {
	if c.cursor == nil {
		return false
	}
	if !present || trueLength < c.cursor.VisibleLength {
		c.cursor = nil
		return false
	}

	c.cursor.TrueLength = trueLength
	if c.cursor.VisibleLength < trueLength {
		c.cursor.VisibleLength = min(c.cursor.VisibleLength+c.step, trueLength)
	}

	// Caught up: wait at the frontier while the network is still delivering.
	if c.cursor.VisibleLength == trueLength && !c.streaming.Load() {
		c.cursor = nil
		return false
	}
	return true
}
