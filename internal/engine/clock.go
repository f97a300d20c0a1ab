package engine

import "sync/atomic"

// Clock numbers executions with a strictly increasing sequence.
//
// The sequence is logged with every execution so log lines from one
// Executor can be ordered without wall-clock timestamps.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
