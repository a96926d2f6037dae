package engine

import "fmt"

// EventKind is the name tag of a GameEvent.
type EventKind uint8

// Event kinds. Pointer kinds are delivered only to objects under the pointer.
const (
	EventKeyDown EventKind = iota + 1
	EventKeyUp
	EventPointerDown
	EventPointerClick
	EventPointerUp
	EventScenePointerClick
)

var eventKindNames = map[EventKind]string{
	EventKeyDown:           "keydown",
	EventKeyUp:             "keyup",
	EventPointerDown:       "pointerdown",
	EventPointerClick:      "pointerclick",
	EventPointerUp:         "pointerup",
	EventScenePointerClick: "scenepointerclick",
}

// String returns the event name tag.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	_, ok := eventKindNames[k]
	return ok
}

// IsPointer reports whether events of this kind target the object under the pointer.
func (k EventKind) IsPointer() bool {
	return k == EventPointerDown || k == EventPointerClick || k == EventPointerUp
}

// Point is a pointer position in render-target coordinates.
type Point struct {
	X, Y float64
}

// GameEvent is an immutable input event. Key events carry a logical key
// identifier; pointer and scene events carry a Point.
type GameEvent struct {
	kind  EventKind
	key   string
	point Point
}

// NewKeyDown creates a key-down event.
func NewKeyDown(key string) GameEvent {
	return GameEvent{kind: EventKeyDown, key: key}
}

// NewKeyUp creates a key-up event.
func NewKeyUp(key string) GameEvent {
	return GameEvent{kind: EventKeyUp, key: key}
}

// NewPointerDown creates a pointer-down event at (x, y).
func NewPointerDown(x, y float64) GameEvent {
	return GameEvent{kind: EventPointerDown, point: Point{X: x, Y: y}}
}

// NewPointerClick creates a pointer-click event at (x, y).
func NewPointerClick(x, y float64) GameEvent {
	return GameEvent{kind: EventPointerClick, point: Point{X: x, Y: y}}
}

// NewPointerUp creates a pointer-up event at (x, y).
func NewPointerUp(x, y float64) GameEvent {
	return GameEvent{kind: EventPointerUp, point: Point{X: x, Y: y}}
}

// NewScenePointerClick creates a scene-level click at (x, y). Unlike
// NewPointerClick it reaches every subscribed object wherever it lands.
func NewScenePointerClick(x, y float64) GameEvent {
	return GameEvent{kind: EventScenePointerClick, point: Point{X: x, Y: y}}
}

// Kind returns the event name tag.
func (e GameEvent) Kind() EventKind {
	return e.kind
}

// Key returns the key identifier of a key event.
func (e GameEvent) Key() string {
	return e.key
}

// Point returns the position of a pointer or scene event.
func (e GameEvent) Point() Point {
	return e.point
}

// IsPointer reports whether the event targets the object under the pointer.
func (e GameEvent) IsPointer() bool {
	return e.kind.IsPointer()
}

func (e GameEvent) String() string {
	switch e.kind {
	case EventKeyDown, EventKeyUp:
		return fmt.Sprintf("%s(%s)", e.kind, e.key)
	default:
		return fmt.Sprintf("%s(%g,%g)", e.kind, e.point.X, e.point.Y)
	}
}

// EventSet is a set of event kinds an object is subscribed to.
type EventSet uint32

// Add subscribes to k.
func (s *EventSet) Add(k EventKind) {
	*s |= 1 << k
}

// Remove unsubscribes from k. Removing an absent kind is a no-op.
func (s *EventSet) Remove(k EventKind) {
	*s &^= 1 << k
}

// Has reports whether k is in the set.
func (s EventSet) Has(k EventKind) bool {
	return s&(1<<k) != 0
}
