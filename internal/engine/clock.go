package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Every task the loop runs is stamped
// with the next value, so log lines can be ordered without wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
