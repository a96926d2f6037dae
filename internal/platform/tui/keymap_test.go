package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/engine"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action Action
		key    string
	}{
		{"quit q", runeKey('q'), ActionQuit, ""},
		{"quit ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit, ""},
		{"pause", runeKey('p'), ActionPause, ""},
		{"continue", tea.KeyMsg{Type: tea.KeyEnter}, ActionContinue, ""},
		{"back esc", tea.KeyMsg{Type: tea.KeyEsc}, ActionBack, ""},
		{"back b", runeKey('b'), ActionBack, ""},
		{"jump w", runeKey('w'), ActionGame, "w"},
		{"jump W", runeKey('W'), ActionGame, "W"},
		{"jump up", tea.KeyMsg{Type: tea.KeyUp}, ActionGame, "ArrowUp"},
		{"jump space", tea.KeyMsg{Type: tea.KeySpace}, ActionGame, "ArrowUp"},
		{"left a", runeKey('a'), ActionGame, "a"},
		{"left arrow", tea.KeyMsg{Type: tea.KeyLeft}, ActionGame, "ArrowLeft"},
		{"right D", runeKey('D'), ActionGame, "D"},
		{"right arrow", tea.KeyMsg{Type: tea.KeyRight}, ActionGame, "ArrowRight"},
		{"unbound", runeKey('x'), ActionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, key := km.MapKey(tt.msg)
			if action != tt.action || key != tt.key {
				t.Errorf("MapKey(%q) = (%v, %q), expected (%v, %q)", tt.msg.String(), action, key, tt.action, tt.key)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg      tea.KeyMsg
		expected MenuAction
	}{
		{runeKey('k'), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{runeKey('j'), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeySpace}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{runeKey('q'), MenuActionQuit},
		{runeKey('x'), MenuActionNone},
	}

	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
		}
	}
}

func TestKeyHoldsRelease(t *testing.T) {
	h := newKeyHolds(3)
	h.press("d")

	for i := 0; i < 2; i++ {
		if ups := h.tick(); len(ups) != 0 {
			t.Fatalf("tick %d released %v, expected nothing yet", i, ups)
		}
	}
	ups := h.tick()
	if len(ups) != 1 || ups[0].Kind() != engine.EventKeyUp || ups[0].Key() != "d" {
		t.Fatalf("tick() = %v, expected a key-up for d", ups)
	}
	if h.held("d") {
		t.Error("d is still held after its key-up")
	}
}

func TestKeyHoldsRepeatKeepsHeld(t *testing.T) {
	h := newKeyHolds(3)
	h.press("a")

	for i := 0; i < 10; i++ {
		h.tick()
		h.press("a") // Auto-repeat
	}
	if !h.held("a") {
		t.Error("a repeating key should stay held")
	}
}

func TestKeyHoldsOppositeDirection(t *testing.T) {
	h := newKeyHolds(5)
	h.press("ArrowLeft")
	h.press("d")

	if h.held("ArrowLeft") {
		t.Error("pressing d should end the ArrowLeft hold")
	}
	if !h.held("d") {
		t.Error("d should be held")
	}

	// The dropped hold never produces a key-up.
	var ups []engine.GameEvent
	for i := 0; i < 5; i++ {
		ups = append(ups, h.tick()...)
	}
	if len(ups) != 1 || ups[0].Key() != "d" {
		t.Errorf("key-ups = %v, expected only d", ups)
	}
}

func TestKeyHoldsJumpIsIndependent(t *testing.T) {
	h := newKeyHolds(5)
	h.press("d")
	h.press("w")

	if !h.held("d") || !h.held("w") {
		t.Error("jumping should not end a horizontal hold")
	}

	h.reset()
	if h.held("d") || h.held("w") {
		t.Error("reset() should forget every hold")
	}
}

func TestNewKeyHoldsDefault(t *testing.T) {
	if h := newKeyHolds(0); h.releaseAfter != 30 {
		t.Errorf("newKeyHolds(0).releaseAfter = %d, expected 30", h.releaseAfter)
	}
}

func TestFrameScheduler(t *testing.T) {
	var s frameScheduler
	if s.runFrame() {
		t.Error("runFrame() with nothing requested = true, expected false")
	}

	calls := 0
	s.RequestFrame(func() { calls++ })
	s.RequestFrame(func() { calls += 10 }) // Latest request wins

	if !s.runFrame() {
		t.Fatal("runFrame() = false, expected true")
	}
	if calls != 10 {
		t.Errorf("calls = %d, expected 10", calls)
	}
	if s.runFrame() {
		t.Error("a frame ran twice")
	}
}
