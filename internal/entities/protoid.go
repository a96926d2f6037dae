// Package entities implements the platformer's game objects on top of the
// engine's embeddable Object.
package entities

import "fmt"

// Proto IDs identify the kind of a game object without type assertions.
const (
	ProtoPlayer = iota + 1
	ProtoEnemy
	ProtoPill
	ProtoBox
	ProtoDoor
)

// ProtoName returns a readable name for a proto ID.
func ProtoName(id int) string {
	switch id {
	case ProtoPlayer:
		return "player"
	case ProtoEnemy:
		return "enemy"
	case ProtoPill:
		return "pill"
	case ProtoBox:
		return "box"
	case ProtoDoor:
		return "door"
	}
	return fmt.Sprintf("proto(%d)", id)
}
