// Package intro implements the one-shot splash sequence shown when a
// storefront session opens.
package intro

import (
	"sync"
	"time"
)

// DefaultDelay is how long the splash stays up after mount.
const DefaultDelay = 2500 * time.Millisecond

// State is the splash visibility.
type State int

const (
	Visible State = iota
	Hidden
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual implementation.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock schedules on the runtime timer.
var SystemClock Clock = systemClock{}

// Sequence moves from Visible to Hidden exactly once, after the delay.
type Sequence struct {
	mu      sync.Mutex
	state   State
	timer   Timer
	stopped bool
	onHide  func()
}

// Start mounts a new sequence. onHide runs once, from the timer goroutine,
// when the splash transitions to Hidden. A non-positive delay uses DefaultDelay.
func Start(clock Clock, delay time.Duration, onHide func()) *Sequence {
	if clock == nil {
		clock = SystemClock
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Sequence{state: Visible, onHide: onHide}
	s.mu.Lock()
	s.timer = clock.AfterFunc(delay, s.fire)
	s.mu.Unlock()
	return s
}

func (s *Sequence) fire() {
	s.mu.Lock()
	if s.stopped || s.state == Hidden {
		s.mu.Unlock()
		return
	}
	s.state = Hidden
	cb := s.onHide
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// State reports the current visibility.
func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Visible reports whether the splash is still showing.
func (s *Sequence) Visible() bool { return s.State() == Visible }

// Stop cancels the pending transition. It reports whether a transition was
// still pending. The sequence never fires after Stop returns.
func (s *Sequence) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	return s.state == Visible
}
