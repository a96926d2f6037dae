package entities

import (
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
)

// Pill is a collectible. It never moves and never blocks.
type Pill struct {
	engine.Object
}

// NewPill creates a pill sized to its sprite.
func NewPill(sprite core.Sprite, x0, y0 float64) *Pill {
	return &Pill{Object: engine.NewObject(ProtoPill, itemBody(sprite, x0, y0, true), sprite)}
}

// Box is a solid wall tile.
type Box struct {
	engine.Object
}

// NewBox creates a wall tile sized to its sprite.
func NewBox(sprite core.Sprite, x0, y0 float64) *Box {
	return &Box{Object: engine.NewObject(ProtoBox, itemBody(sprite, x0, y0, false), sprite)}
}

// Door ends the level when the player reaches it with enough pills.
type Door struct {
	engine.Object
}

// NewDoor creates a door sized to its sprite.
func NewDoor(sprite core.Sprite, x0, y0 float64) *Door {
	return &Door{Object: engine.NewObject(ProtoDoor, itemBody(sprite, x0, y0, true), sprite)}
}

func itemBody(sprite core.Sprite, x0, y0 float64, ghost bool) engine.PhysicalObject {
	return engine.PhysicalObject{
		X0:     x0,
		Y0:     y0,
		W:      sprite.Src.W,
		H:      sprite.Src.H,
		Static: true,
		Ghost:  ghost,
	}
}
