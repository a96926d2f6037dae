package core

import (
	"errors"
	"math"
)

// ErrCanvasDetached is returned when drawing into a canvas whose screen is gone.
var ErrCanvasDetached = errors.New("core: canvas detached")

// Canvas draws world-space images into a Screen. The world rectangle
// (0, 0, worldW, worldH) is stretched over the whole screen, so one cell covers
// worldW/width by worldH/height world units.
type Canvas struct {
	screen   *Screen
	worldW   float64
	worldH   float64
	detached bool
}

// NewCanvas creates a canvas mapping a world of the given size onto screen.
func NewCanvas(screen *Screen, worldW, worldH float64) *Canvas {
	return &Canvas{screen: screen, worldW: worldW, worldH: worldH}
}

// Screen returns the underlying cell buffer.
func (c *Canvas) Screen() *Screen {
	return c.screen
}

// World returns the world rectangle shown by the canvas.
func (c *Canvas) World() Box {
	return NewBox(0, 0, c.worldW, c.worldH)
}

// Detach marks the canvas unusable; every later draw fails with ErrCanvasDetached.
func (c *Canvas) Detach() {
	c.detached = true
}

// scale returns the world units covered by one cell on each axis.
func (c *Canvas) scale() (sx, sy float64, ok bool) {
	if c.screen == nil || c.screen.Width() == 0 || c.screen.Height() == 0 {
		return 0, 0, false
	}
	return c.worldW / float64(c.screen.Width()), c.worldH / float64(c.screen.Height()), true
}

// CellToWorld returns the world coordinates of the center of cell (cx, cy).
func (c *Canvas) CellToWorld(cx, cy int) (float64, float64) {
	sx, sy, ok := c.scale()
	if !ok {
		return 0, 0
	}
	return (float64(cx) + 0.5) * sx, (float64(cy) + 0.5) * sy
}

// WorldToCell returns the cell containing the world point (x, y).
func (c *Canvas) WorldToCell(x, y float64) (int, int) {
	sx, sy, ok := c.scale()
	if !ok {
		return 0, 0
	}
	return int(math.Floor(x / sx)), int(math.Floor(y / sy))
}

// DrawImage samples the src rectangle of img into the dst rectangle of the world.
// A cell is painted when its center falls inside dst; transparent samples are
// skipped. Empty rectangles and a zero-sized screen draw nothing.
func (c *Canvas) DrawImage(img Image, src, dst Box) error {
	if c.detached || c.screen == nil {
		return ErrCanvasDetached
	}
	if img == nil || src.Empty() || dst.Empty() {
		return nil
	}
	sx, sy, ok := c.scale()
	if !ok {
		return nil
	}

	cx0 := Max(int(math.Floor(dst.X0/sx)), 0)
	cx1 := Min(int(math.Ceil(dst.Right()/sx)), c.screen.Width()-1)
	cy0 := Max(int(math.Floor(dst.Y0/sy)), 0)
	cy1 := Min(int(math.Ceil(dst.Bottom()/sy)), c.screen.Height()-1)

	for cy := cy0; cy <= cy1; cy++ {
		wy := (float64(cy) + 0.5) * sy
		if wy < dst.Y0 || wy >= dst.Bottom() {
			continue
		}
		v := src.Y0 + (wy-dst.Y0)/dst.H*src.H
		for cx := cx0; cx <= cx1; cx++ {
			wx := (float64(cx) + 0.5) * sx
			if wx < dst.X0 || wx >= dst.Right() {
				continue
			}
			u := src.X0 + (wx-dst.X0)/dst.W*src.W
			c.screen.SetCell(cx, cy, img.At(u, v))
		}
	}
	return nil
}
