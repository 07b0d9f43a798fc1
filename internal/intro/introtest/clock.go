// Package introtest provides a manual clock for driving splash timers in tests.
package introtest

import (
	"sort"
	"sync"
	"time"

	"finitefield.org/elarion-web/internal/intro"
)

// Clock fires callbacks only when advanced. Callbacks run on the goroutine
// calling Advance.
type Clock struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*timer
}

type timer struct {
	clock   *Clock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

// AfterFunc implements intro.Clock.
func (c *Clock) AfterFunc(d time.Duration, f func()) intro.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, at: c.now + d, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves the clock forward and runs every timer now due, earliest first.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*timer
	kept := c.pending[:0]
	for _, t := range c.pending {
		switch {
		case t.stopped || t.fired:
		case t.at <= c.now:
			t.fired = true
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	c.pending = kept
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending reports how many timers are armed.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
