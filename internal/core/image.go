package core

import (
	"fmt"
	"math"
)

// Image is a rectangular source of cells addressed in source units.
// At returns a cell with Rune 0 for transparent points.
type Image interface {
	Size() (w, h float64)
	At(x, y float64) Cell
}

// Sprite selects a source rectangle of a tileset image.
type Sprite struct {
	Tileset Image
	Src     Box
}

// Valid reports whether the sprite can be drawn.
func (s Sprite) Valid() bool {
	return s.Tileset != nil && !s.Src.Empty()
}

// Art is glyph art stretched over a rectangle. Each row may carry its own
// length; a space is transparent unless Opaque is set.
type Art struct {
	rows    [][]rune
	color   Color
	palette map[rune]Color
	opaque  bool
}

// NewArt builds art from text rows drawn in one color. palette overrides the
// color of individual glyphs and may be nil.
func NewArt(rows []string, color Color, palette map[rune]Color) Art {
	a := Art{
		rows:    make([][]rune, len(rows)),
		color:   color,
		palette: palette,
	}
	for i, row := range rows {
		a.rows[i] = []rune(row)
	}
	return a
}

// Opaque returns a copy of the art where spaces are drawn instead of skipped.
func (a Art) Opaque() Art {
	a.opaque = true
	return a
}

// sample maps the normalized coordinates (u, v) in [0, 1) onto a glyph.
func (a Art) sample(u, v float64) Cell {
	if len(a.rows) == 0 {
		return Cell{}
	}
	row := a.rows[Clamp(int(math.Floor(v*float64(len(a.rows)))), 0, len(a.rows)-1)]
	if len(row) == 0 {
		return Cell{}
	}
	r := row[Clamp(int(math.Floor(u*float64(len(row)))), 0, len(row)-1)]
	if r == ' ' && !a.opaque {
		return Cell{}
	}
	c := a.color
	if pc, ok := a.palette[r]; ok {
		c = pc
	}
	return Cell{Rune: r, Color: c}
}

// TileRegion is a named rectangle of a tileset and the art drawn inside it.
type TileRegion struct {
	Name string
	Src  Box
	Art  Art
}

// Tileset is an image composed of named regions. Points outside every region
// are transparent.
type Tileset struct {
	width, height float64
	regions       []TileRegion
	byName        map[string]int
}

// NewTileset creates a tileset of the given size. Region names must be unique
// and every region must have an area.
func NewTileset(width, height float64, regions []TileRegion) (*Tileset, error) {
	t := &Tileset{
		width:   width,
		height:  height,
		regions: make([]TileRegion, 0, len(regions)),
		byName:  make(map[string]int, len(regions)),
	}
	for _, r := range regions {
		if r.Src.Empty() {
			return nil, fmt.Errorf("core: tileset region %q has no area", r.Name)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("core: duplicate tileset region %q", r.Name)
		}
		t.byName[r.Name] = len(t.regions)
		t.regions = append(t.regions, r)
	}
	return t, nil
}

// Size returns the tileset dimensions in source units.
func (t *Tileset) Size() (float64, float64) {
	return t.width, t.height
}

// At returns the glyph of the region covering (x, y).
// Region edges are half-open so neighbouring regions never both claim a point.
func (t *Tileset) At(x, y float64) Cell {
	for _, r := range t.regions {
		if x < r.Src.X0 || x >= r.Src.Right() || y < r.Src.Y0 || y >= r.Src.Bottom() {
			continue
		}
		return r.Art.sample((x-r.Src.X0)/r.Src.W, (y-r.Src.Y0)/r.Src.H)
	}
	return Cell{}
}

// Sprite returns the sprite for a named region.
func (t *Tileset) Sprite(name string) (Sprite, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Sprite{}, false
	}
	return Sprite{Tileset: t, Src: t.regions[i].Src}, true
}

// Names returns the region names in declaration order.
func (t *Tileset) Names() []string {
	names := make([]string, len(t.regions))
	for i, r := range t.regions {
		names[i] = r.Name
	}
	return names
}

// Backdrop is a background image: art stretched over its whole area, with
// transparent glyphs replaced by a fill cell.
type Backdrop struct {
	width, height float64
	art           Art
	fill          Cell
}

// NewBackdrop creates a backdrop of the given size.
func NewBackdrop(width, height float64, art Art, fill Cell) *Backdrop {
	if fill.Rune == 0 {
		fill.Rune = ' '
	}
	return &Backdrop{width: width, height: height, art: art, fill: fill}
}

// Size returns the backdrop dimensions.
func (b *Backdrop) Size() (float64, float64) {
	return b.width, b.height
}

// At returns the backdrop glyph at (x, y); it is never transparent inside the area.
func (b *Backdrop) At(x, y float64) Cell {
	if b.width <= 0 || b.height <= 0 || x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Cell{}
	}
	if c := b.art.sample(x/b.width, y/b.height); c.Rune != 0 {
		return c
	}
	return b.fill
}
