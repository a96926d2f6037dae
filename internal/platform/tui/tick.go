// Package tui provides the Bubble Tea integration for the platformer.
// It handles the terminal UI loop, input mapping, and session orchestration.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger an engine frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameScheduler holds the engine's requested frame until the next TickMsg
// reaches Update, so frames run on the Bubble Tea goroutine.
type frameScheduler struct {
	next func()
}

// RequestFrame stores fn as the next frame.
func (s *frameScheduler) RequestFrame(fn func()) {
	s.next = fn
}

// runFrame runs the pending frame, if any.
func (s *frameScheduler) runFrame() bool {
	fn := s.next
	if fn == nil {
		return false
	}
	s.next = nil
	fn()
	return true
}
