// Package scene assembles a playable level from a layout, the game tuning and
// the tileset.
package scene

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
	"github.com/vovakirdan/tui-platformer/internal/entities"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// Sprite names looked up in the tileset.
const (
	SpritePlayerMoveLeft    = "player_move_left"
	SpritePlayerMoveRight   = "player_move_right"
	SpritePlayerAttackLeft  = "player_attack_left"
	SpritePlayerAttackRight = "player_attack_right"
	SpriteEnemyWalk1Left    = "enemy_walk1_left"
	SpriteEnemyWalk2Left    = "enemy_walk2_left"
	SpriteEnemyWalk1Right   = "enemy_walk1_right"
	SpriteEnemyWalk2Right   = "enemy_walk2_right"
	SpriteWall              = "wall"
	SpriteDoor              = "door"
)

// PillSprites are the pill colors a pill run picks from.
var PillSprites = []string{"pill_pink", "pill_yellow", "pill_red"}

func init() {
	for _, id := range config.DefaultSceneIDs() {
		title := id
		if cfg, err := config.ParseScene(config.GetDefaultYAML("scenes/" + id + ".yaml")); err == nil && cfg.Title != "" {
			title = cfg.Title
		}
		registry.Register(id, title, func(customPath string) (config.SceneConfig, error) {
			return config.LoadScene(id, customPath)
		})
	}
}

// Options is everything Build needs.
type Options struct {
	Scene   config.SceneConfig
	Game    config.GameConfig
	Tileset *core.Tileset
	Seed    int64

	Clock     entities.Clock
	Callbacks entities.PlayerCallbacks
	// Pace scales enemy speed; nil keeps the configured speed.
	Pace func() float64
}

// Level is an assembled scene ready to be handed to the engine.
type Level struct {
	ID            string
	Title         string
	World         core.Box
	Background    engine.Background
	Objects       []engine.GameObject
	Player        *entities.Player
	RequiredPills int
	TotalPills    int
}

// Build creates the objects of a scene in engine order: player, door,
// enemies, walls, pills. Pill colors come from a RNG seeded with Seed, so the
// same seed always yields the same layout.
func Build(opts Options) (*Level, error) {
	if opts.Tileset == nil {
		return nil, fmt.Errorf("scene: no tileset")
	}
	if err := opts.Scene.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	sp := spriteSet{ts: opts.Tileset}
	playerSprites := entities.PlayerSprites{
		MoveLeft:    sp.get(SpritePlayerMoveLeft),
		MoveRight:   sp.get(SpritePlayerMoveRight),
		AttackLeft:  sp.get(SpritePlayerAttackLeft),
		AttackRight: sp.get(SpritePlayerAttackRight),
	}
	enemySprites := entities.EnemySprites{
		Walk1Left:  sp.get(SpriteEnemyWalk1Left),
		Walk2Left:  sp.get(SpriteEnemyWalk2Left),
		Walk1Right: sp.get(SpriteEnemyWalk1Right),
		Walk2Right: sp.get(SpriteEnemyWalk2Right),
	}
	wall := sp.get(SpriteWall)
	door := sp.get(SpriteDoor)
	pills := make([]core.Sprite, len(PillSprites))
	for i, name := range PillSprites {
		pills[i] = sp.get(name)
	}
	if sp.err != nil {
		return nil, sp.err
	}

	backdrop, err := BuildBackdrop(opts.Scene)
	if err != nil {
		return nil, err
	}

	sc := opts.Scene
	gravity := opts.Game.Physics.Gravity
	lvl := &Level{
		ID:            sc.ID,
		Title:         sc.Title,
		World:         core.NewBox(0, 0, sc.World.Width, sc.World.Height),
		Background:    engine.Background{Image: backdrop, Width: sc.World.Width, Height: sc.World.Height},
		RequiredPills: sc.RequiredPills,
	}
	if lvl.Title == "" {
		lvl.Title = sc.ID
	}

	lvl.Player = entities.NewPlayer(playerSprites, sc.Player.X, sc.Player.Y, entities.PlayerOptions{
		Config:        opts.Game.Player,
		Gravity:       gravity,
		WorldWidth:    sc.World.Width,
		RequiredPills: sc.RequiredPills,
		Clock:         opts.Clock,
		Callbacks:     opts.Callbacks,
	})
	lvl.Objects = append(lvl.Objects, lvl.Player, entities.NewDoor(door, sc.Door.X, sc.Door.Y))

	for _, p := range sc.Enemies {
		lvl.Objects = append(lvl.Objects, entities.NewEnemy(enemySprites, p.X, p.Y, entities.EnemyOptions{
			Config:     opts.Game.Enemy,
			Gravity:    gravity,
			WorldWidth: sc.World.Width,
			Clock:      opts.Clock,
			Pace:       opts.Pace,
		}))
	}

	for _, run := range sc.Walls {
		x := run.X
		for i := 0; i < run.Count; i++ {
			lvl.Objects = append(lvl.Objects, entities.NewBox(wall, x, run.Y))
			x += wall.Src.W
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, run := range sc.Pills {
		x := run.X
		for i := 0; i < run.Count; i++ {
			s := pills[rng.Intn(len(pills))]
			lvl.Objects = append(lvl.Objects, entities.NewPill(s, x, run.Y))
			x += s.Src.W
			lvl.TotalPills++
		}
	}

	return lvl, nil
}

// spriteSet looks up sprites and keeps the first missing name.
type spriteSet struct {
	ts  *core.Tileset
	err error
}

func (s *spriteSet) get(name string) core.Sprite {
	sprite, ok := s.ts.Sprite(name)
	if !ok && s.err == nil {
		s.err = fmt.Errorf("scene: tileset has no sprite %q", name)
	}
	return sprite
}
