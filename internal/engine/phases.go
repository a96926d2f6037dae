package engine

import "github.com/vovakirdan/tui-platformer/internal/core"

// resolveEvents drains the pending stack, last fired first.
func (e *Engine) resolveEvents() {
	for len(e.pending) > 0 {
		last := len(e.pending) - 1
		evt := e.pending[last]
		e.pending = e.pending[:last]

		for _, obj := range e.objects {
			if obj.Destroyed() {
				continue
			}
			if evt.IsPointer() {
				p := evt.Point()
				if !obj.Body().Box().ContainsPoint(p.X, p.Y) {
					continue
				}
			}
			obj.FireEvent(evt)
		}
	}
}

// penetration holds the overlap of box a into box b along each side of a.
type penetration struct {
	down, up, left, right float64
}

func measure(a, b core.Box) penetration {
	return penetration{
		down:  (a.Y0 + a.H) - b.Y0,
		up:    (b.Y0 + b.H) - a.Y0,
		left:  (b.X0 + b.W) - a.X0,
		right: (a.X0 + a.W) - b.X0,
	}
}

// direction picks the side of a that hit b. Every depth must exceed minBound.
// The smallest depth wins; exact ties go to down, up, right, left in that order.
func (p penetration) direction(minBound float64) (Direction, bool) {
	if p.down <= minBound || p.up <= minBound || p.left <= minBound || p.right <= minBound {
		return 0, false
	}

	best, depth := Down, p.down
	for _, c := range [...]struct {
		dir   Direction
		depth float64
	}{{Up, p.up}, {Right, p.right}, {Left, p.left}} {
		if c.depth < depth {
			best, depth = c.dir, c.depth
		}
	}
	return best, true
}

func (e *Engine) detectCollisions() {
	for i, a := range e.objects {
		if a.Destroyed() {
			continue
		}
		for _, b := range e.objects[i+1:] {
			if b.Destroyed() {
				continue
			}
			dir, ok := measure(a.Body().Box(), b.Body().Box()).direction(e.minBound)
			if !ok {
				continue
			}
			a.SetCollision(dir, b)
			b.SetCollision(dir.Opposite(), a)
		}
	}
}

func (e *Engine) applyForces() {
	for _, obj := range e.objects {
		body := obj.Body()
		if obj.Destroyed() || body.Static {
			continue
		}
		if below := obj.Collision(Down); below != nil && !below.Destroyed() {
			body.VY = 0
		} else {
			body.VY += body.Gravity
		}
		body.Y0 += body.VY
	}
}

var resolveOrder = [...]Direction{Down, Up, Left, Right}

func (e *Engine) resolveCollisions() {
	for _, obj := range e.objects {
		body := obj.Body()
		if obj.Destroyed() || body.Static || body.Ghost {
			clearSlots(obj)
			continue
		}

		for _, dir := range resolveOrder {
			other := obj.Collision(dir)
			if other == nil || other.Destroyed() {
				continue
			}
			push(body, other.Body(), dir)
			if other.Collision(dir.Opposite()) == obj {
				other.ClearCollision(dir.Opposite())
			}
		}
		clearSlots(obj)
	}
}

// push moves a out of b along the axis of side dir. A static b takes none of
// the correction, a dynamic b takes half, a ghost b causes none.
func push(a, b *PhysicalObject, dir Direction) {
	if b.Ghost {
		return
	}

	var depth float64
	switch dir {
	case Down:
		depth = (a.Y0 + a.H) - b.Y0
	case Up:
		depth = (b.Y0 + b.H) - a.Y0
	case Left:
		depth = (b.X0 + b.W) - a.X0
	case Right:
		depth = (a.X0 + a.W) - b.X0
	}

	share := depth
	if !b.Static {
		share = depth / 2
	}

	switch dir {
	case Down:
		a.Y0 -= share
	case Up:
		a.Y0 += share
	case Left:
		a.X0 += share
	case Right:
		a.X0 -= share
	}

	if b.Static {
		return
	}
	switch dir {
	case Down:
		b.Y0 += share
	case Up:
		b.Y0 -= share
	case Left:
		b.X0 -= share
	case Right:
		b.X0 += share
	}
}

func clearSlots(obj GameObject) {
	for _, dir := range resolveOrder {
		obj.ClearCollision(dir)
	}
}

func (e *Engine) render() error {
	if img := e.bg.Image; img != nil {
		w, h := img.Size()
		if err := e.target.DrawImage(img, core.NewBox(0, 0, w, h), core.NewBox(0, 0, e.bg.Width, e.bg.Height)); err != nil {
			return err
		}
	}

	for _, obj := range e.objects {
		if obj.Destroyed() {
			continue
		}
		sprite := obj.Sprite()
		if !sprite.Valid() {
			continue
		}
		if err := e.target.DrawImage(sprite.Tileset, sprite.Src, obj.Body().Box()); err != nil {
			return err
		}
	}
	return nil
}

// clearDestroyedObjs moves survivors to the front in their original order and
// drops the destroyed tail.
func (e *Engine) clearDestroyedObjs() {
	l := 0
	for r, obj := range e.objects {
		if obj.Destroyed() {
			continue
		}
		e.objects[l], e.objects[r] = e.objects[r], e.objects[l]
		l++
	}
	clear(e.objects[l:])
	e.objects = e.objects[:l]
}
