// Package scroll derives the navigation bar style from the viewport offset.
package scroll

import "sync"

// DefaultThreshold is the offset past which the page counts as scrolled.
const DefaultThreshold = 50.0

// Scrolled reports whether offset is strictly past the default threshold.
func Scrolled(offset float64) bool {
	return offset > DefaultThreshold
}

// Detector applies a configurable threshold. The zero value uses DefaultThreshold.
type Detector struct {
	Threshold float64
}

// Scrolled reports whether offset is strictly past the detector threshold.
func (d Detector) Scrolled(offset float64) bool {
	th := d.Threshold
	if th <= 0 {
		th = DefaultThreshold
	}
	return offset > th
}

// Listener forwards scroll notifications to a handler until detached.
type Listener struct {
	mu       sync.Mutex
	handler  func(offset float64)
	detached bool
}

// Listen attaches handler.
func Listen(handler func(offset float64)) *Listener {
	return &Listener{handler: handler}
}

// Notify delivers offset to the handler. It reports false once detached.
func (l *Listener) Notify(offset float64) bool {
	l.mu.Lock()
	if l.detached || l.handler == nil {
		l.mu.Unlock()
		return false
	}
	h := l.handler
	l.mu.Unlock()
	h(offset)
	return true
}

// Detach stops delivery. It is safe to call more than once.
func (l *Listener) Detach() {
	l.mu.Lock()
	l.detached = true
	l.handler = nil
	l.mu.Unlock()
}
