package engine

import (
	"context"
	"time"
)

// FrameScheduler is the host's per-frame callback primitive. RequestFrame
// arranges for fn to run once on the host's next frame. The engine keeps at
// most one frame requested at any time.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// ManualScheduler holds the requested frame until Step runs it. It drives
// headless simulations and tests.
type ManualScheduler struct {
	next func()
}

// RequestFrame stores fn as the next frame.
func (s *ManualScheduler) RequestFrame(fn func()) {
	s.next = fn
}

// Pending reports whether a frame is waiting to run.
func (s *ManualScheduler) Pending() bool {
	return s.next != nil
}

// Step runs the pending frame. It returns false when nothing was requested.
func (s *ManualScheduler) Step() bool {
	fn := s.next
	if fn == nil {
		return false
	}
	s.next = nil
	fn()
	return true
}

// Run steps up to n frames and returns how many ran.
func (s *ManualScheduler) Run(n int) int {
	ran := 0
	for ran < n && s.Step() {
		ran++
	}
	return ran
}

// Loop drives frames from a ticker on the goroutine calling Run. Everything
// that touches the engine from other goroutines must go through Do so it never
// overlaps a frame.
type Loop struct {
	interval time.Duration
	calls    chan func()
	next     func()
}

// NewLoop creates a loop ticking tickRate times per second.
func NewLoop(tickRate int) *Loop {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Loop{
		interval: time.Second / time.Duration(tickRate),
		calls:    make(chan func()),
	}
}

// RequestFrame stores fn as the next frame. It must be called from the loop
// goroutine (inside a frame or a Do call) or before Run starts.
func (l *Loop) RequestFrame(fn func()) {
	l.next = fn
}

// Do runs fn on the loop goroutine between frames and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	call := func() {
		defer close(done)
		fn()
	}

	select {
	case l.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case call := <-l.calls:
			call()
		case <-ticker.C:
			if fn := l.next; fn != nil {
				l.next = nil
				fn()
			}
		}
	}
}
