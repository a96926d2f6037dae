package scene

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
)

// BuildTileset turns a tileset description into a drawable image.
func BuildTileset(cfg config.TilesetConfig) (*core.Tileset, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("scene: tileset size must be positive, got %vx%v", cfg.Width, cfg.Height)
	}

	regions := make([]core.TileRegion, 0, len(cfg.Regions))
	for _, r := range cfg.Regions {
		art, err := buildArt(r.Art, r.Color, r.Palette)
		if err != nil {
			return nil, fmt.Errorf("scene: region %q: %w", r.Name, err)
		}
		regions = append(regions, core.TileRegion{
			Name: r.Name,
			Src:  core.NewBox(r.X, r.Y, r.W, r.H),
			Art:  art,
		})
	}

	ts, err := core.NewTileset(cfg.Width, cfg.Height, regions)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return ts, nil
}

// BuildBackdrop creates the background image of a scene, sized to its world.
func BuildBackdrop(cfg config.SceneConfig) (*core.Backdrop, error) {
	art, err := buildArt(cfg.Backdrop.Art, cfg.Backdrop.Color, nil)
	if err != nil {
		return nil, fmt.Errorf("scene: backdrop: %w", err)
	}

	fill := core.Cell{Rune: ' '}
	if r := []rune(cfg.Backdrop.Fill); len(r) > 0 {
		fill.Rune = r[0]
	}
	c, ok := core.ParseColor(cfg.Backdrop.FillColor)
	if !ok {
		return nil, fmt.Errorf("scene: backdrop: unknown fill color %q", cfg.Backdrop.FillColor)
	}
	fill.Color = c

	return core.NewBackdrop(cfg.World.Width, cfg.World.Height, art, fill), nil
}

func buildArt(rows []string, color string, palette map[string]string) (core.Art, error) {
	c, ok := core.ParseColor(color)
	if !ok {
		return core.Art{}, fmt.Errorf("unknown color %q", color)
	}

	var glyphs map[rune]core.Color
	if len(palette) > 0 {
		glyphs = make(map[rune]core.Color, len(palette))
		for glyph, name := range palette {
			pc, ok := core.ParseColor(name)
			if !ok {
				return core.Art{}, fmt.Errorf("unknown palette color %q", name)
			}
			r := []rune(strings.TrimSpace(glyph))
			if len(r) != 1 {
				return core.Art{}, fmt.Errorf("palette key %q must be one glyph", glyph)
			}
			glyphs[r[0]] = pc
		}
	}
	return core.NewArt(rows, c, glyphs), nil
}
