package engine

import (
	"github.com/vovakirdan/tui-platformer/internal/core"
)

// PhysicalObject is the axis-aligned box state of a game object.
// Static bodies are never moved by the engine. Ghost bodies are detected
// but never pushed and never push others.
type PhysicalObject struct {
	X0, Y0  float64
	W, H    float64
	VX, VY  float64
	Static  bool
	Ghost   bool
	Gravity float64 // added to VY every tick while unsupported
}

// Box returns the current bounds of the body.
func (p *PhysicalObject) Box() core.Box {
	return core.NewBox(p.X0, p.Y0, p.W, p.H)
}

// Direction names a side of an object and its collision slot.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Opposite returns the facing side: down for up, left for right.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Hooks are the lifecycle callbacks the engine invokes every frame, in this order.
type Hooks interface {
	BeforeUpdate()
	OnResolveEvents()
	OnDetectCollisions()
	OnApplyForces()
	OnResolveCollisions()
	OnRender()
	AfterUpdate()
}

// GameObject is an entity driven by the engine.
//
// Collision slots hold the object touching each side during the current frame.
// They are non-owning: check Destroyed before mutating the referenced object.
type GameObject interface {
	Hooks

	// ProtoID identifies the concrete kind of object (player, enemy...).
	ProtoID() int
	Body() *PhysicalObject
	Sprite() core.Sprite

	Destroyed() bool
	// Destroy marks the object as removed. It is never undone.
	Destroy()

	// FireEvent queues evt if the object is subscribed to its kind.
	FireEvent(evt GameEvent)
	Subscribe(kind EventKind)
	Unsubscribe(kind EventKind)
	Subscribed(kind EventKind) bool
	// Events returns the events queued this frame.
	Events() []GameEvent
	ClearEvents()

	Collision(d Direction) GameObject
	SetCollision(d Direction, other GameObject)
	ClearCollision(d Direction)
}

// Object is the embeddable base of concrete game objects. All of its hooks do
// nothing, so an embedding type overrides only the ones it needs.
type Object struct {
	protoID   int
	body      PhysicalObject
	sprite    core.Sprite
	events    []GameEvent
	subs      EventSet
	slots     [4]GameObject
	destroyed bool
}

// NewObject creates the base state of a game object.
func NewObject(protoID int, body PhysicalObject, sprite core.Sprite) Object {
	return Object{
		protoID: protoID,
		body:    body,
		sprite:  sprite,
	}
}

// ProtoID returns the object kind identifier.
func (o *Object) ProtoID() int { return o.protoID }

// Body returns the mutable physical state.
func (o *Object) Body() *PhysicalObject { return &o.body }

// Sprite returns the sprite drawn for the object.
func (o *Object) Sprite() core.Sprite { return o.sprite }

// SetSprite swaps the sprite drawn for the object.
func (o *Object) SetSprite(s core.Sprite) { o.sprite = s }

// Destroyed reports whether the object has been destroyed.
func (o *Object) Destroyed() bool { return o.destroyed }

// Destroy marks the object as destroyed.
func (o *Object) Destroy() { o.destroyed = true }

// FireEvent queues evt when the object is subscribed to its kind and drops it otherwise.
func (o *Object) FireEvent(evt GameEvent) {
	if o.subs.Has(evt.Kind()) {
		o.events = append(o.events, evt)
	}
}

// Subscribe starts accepting events of the given kind.
func (o *Object) Subscribe(kind EventKind) { o.subs.Add(kind) }

// Unsubscribe stops accepting events of the given kind.
func (o *Object) Unsubscribe(kind EventKind) { o.subs.Remove(kind) }

// Subscribed reports whether events of the given kind are accepted.
func (o *Object) Subscribed(kind EventKind) bool { return o.subs.Has(kind) }

// Events returns the events queued since the last ClearEvents.
func (o *Object) Events() []GameEvent { return o.events }

// ClearEvents empties the event queue, keeping its capacity.
func (o *Object) ClearEvents() {
	clear(o.events)
	o.events = o.events[:0]
}

// Collision returns the object touching side d, or nil.
func (o *Object) Collision(d Direction) GameObject { return o.slots[d] }

// SetCollision records other as touching side d.
func (o *Object) SetCollision(d Direction, other GameObject) { o.slots[d] = other }

// ClearCollision empties the slot for side d.
func (o *Object) ClearCollision(d Direction) { o.slots[d] = nil }

func (o *Object) BeforeUpdate()        {}
func (o *Object) OnResolveEvents()     {}
func (o *Object) OnDetectCollisions()  {}
func (o *Object) OnApplyForces()       {}
func (o *Object) OnResolveCollisions() {}
func (o *Object) OnRender()            {}
func (o *Object) AfterUpdate()         {}
