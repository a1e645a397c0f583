// Package metrics holds lock-free counters for in-process background work.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

// Timer measures one unit of work from StartTimer.
type Timer struct {
	start time.Time
}

func StartTimer() Timer {
	return Timer{start: time.Now()}
}

func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Outcomes counts what happened to queued jobs.
type Outcomes struct {
	Enqueued  Counter
	Delivered Counter
	Failed    Counter
	Dropped   Counter
}

// OutcomeSnapshot is a point-in-time copy of Outcomes.
type OutcomeSnapshot struct {
	Enqueued  uint64 `json:"enqueued"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

func (o *Outcomes) Snapshot() OutcomeSnapshot {
	return OutcomeSnapshot{
		Enqueued:  o.Enqueued.Load(),
		Delivered: o.Delivered.Load(),
		Failed:    o.Failed.Load(),
		Dropped:   o.Dropped.Load(),
	}
}
