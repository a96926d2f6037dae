package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/engine"
)

// Action is a host-level command derived from a key.
type Action int

const (
	ActionNone Action = iota
	ActionGame        // forwarded to the engine as a key event
	ActionPause
	ActionContinue
	ActionBack
	ActionQuit
)

// KeyMapper translates Bubble Tea key messages to engine keys and host actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// gameKeys maps terminal key names to the key identifiers entities listen for.
var gameKeys = map[string]string{
	"w":     "w",
	"W":     "W",
	"a":     "a",
	"A":     "A",
	"d":     "d",
	"D":     "D",
	"up":    "ArrowUp",
	" ":     "ArrowUp",
	"left":  "ArrowLeft",
	"right": "ArrowRight",
}

// opposite pairs the horizontal keys; pressing one ends a hold of the other.
var opposite = map[string][]string{
	"a": {"d", "D", "ArrowRight"}, "A": {"d", "D", "ArrowRight"}, "ArrowLeft": {"d", "D", "ArrowRight"},
	"d": {"a", "A", "ArrowLeft"}, "D": {"a", "A", "ArrowLeft"}, "ArrowRight": {"a", "A", "ArrowLeft"},
}

// MapKey translates a key message. For ActionGame the engine key is returned.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (Action, string) {
	s := msg.String()

	// Global quit keys
	switch s {
	case "ctrl+c", "q":
		return ActionQuit, ""
	case "p":
		return ActionPause, ""
	case "enter":
		return ActionContinue, ""
	case "esc", "b":
		return ActionBack, ""
	}

	if k, ok := gameKeys[s]; ok {
		return ActionGame, k
	}
	return ActionNone, ""
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}

// keyHolds synthesizes key-up events. Terminals report only presses (and
// auto-repeats), so a key counts as held until it has not repeated for
// releaseAfter frames.
type keyHolds struct {
	releaseAfter int
	idle         map[string]int
}

func newKeyHolds(releaseAfter int) *keyHolds {
	if releaseAfter <= 0 {
		releaseAfter = 30
	}
	return &keyHolds{releaseAfter: releaseAfter, idle: make(map[string]int)}
}

// press marks key as held. A horizontal key stops the hold of the other
// direction without a key-up; the new press already redirects the player.
func (h *keyHolds) press(key string) {
	for _, other := range opposite[key] {
		delete(h.idle, other)
	}
	h.idle[key] = 0
}

// tick advances one frame and returns the key-up events now due, ordered
// by key so recordings do not depend on map iteration.
func (h *keyHolds) tick() []engine.GameEvent {
	var due []string
	for key, n := range h.idle {
		n++
		if n >= h.releaseAfter {
			due = append(due, key)
			continue
		}
		h.idle[key] = n
	}
	slices.Sort(due)

	ups := make([]engine.GameEvent, 0, len(due))
	for _, key := range due {
		delete(h.idle, key)
		ups = append(ups, engine.NewKeyUp(key))
	}
	return ups
}

// held reports whether key is currently considered held.
func (h *keyHolds) held(key string) bool {
	_, ok := h.idle[key]
	return ok
}

// reset forgets every hold.
func (h *keyHolds) reset() {
	clear(h.idle)
}
