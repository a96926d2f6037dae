package entities

import (
	"time"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
)

// EnemySprites are the two walk frames for each direction.
type EnemySprites struct {
	Walk1Left  core.Sprite
	Walk2Left  core.Sprite
	Walk1Right core.Sprite
	Walk2Right core.Sprite
}

// EnemyOptions configure an Enemy.
type EnemyOptions struct {
	Config     config.EnemyConfig
	Gravity    float64
	WorldWidth float64
	Clock      Clock
	// Pace returns the current speed multiplier. Nil means 1.
	Pace func() float64
}

// Enemy walks back and forth, turning at the world edges and hopping back
// whenever the ground disappears under it.
type Enemy struct {
	engine.Object

	sprites EnemySprites
	opts    EnemyOptions

	facing  Facing
	frame2  bool
	flipped bool
	flipAt  time.Time
}

// NewEnemy creates an enemy at (x0, y0) walking right.
func NewEnemy(sprites EnemySprites, x0, y0 float64, opts EnemyOptions) *Enemy {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	body := engine.PhysicalObject{
		X0:      x0,
		Y0:      y0,
		W:       opts.Config.Width,
		H:       opts.Config.Height,
		VX:      opts.Config.MoveVelocity,
		Gravity: opts.Gravity,
	}
	return &Enemy{
		Object:  engine.NewObject(ProtoEnemy, body, sprites.Walk1Right),
		sprites: sprites,
		opts:    opts,
		facing:  FacingRight,
	}
}

// Facing returns the walking direction.
func (e *Enemy) Facing() Facing { return e.facing }

func (e *Enemy) pace() float64 {
	if e.opts.Pace == nil {
		return 1
	}
	return e.opts.Pace()
}

func (e *Enemy) OnApplyForces() {
	if e.Destroyed() {
		return
	}

	body := e.Body()
	if body.X0 < 0 && e.facing == FacingLeft {
		e.facing = FacingRight
	}
	if body.X0 > e.opts.WorldWidth-body.W && e.facing == FacingRight {
		e.facing = FacingLeft
	}

	if body.VY > e.opts.Config.FallThreshold {
		body.VY = -e.opts.Config.RestoreJumpVelocity
		body.Y0 += body.VY
		e.facing = -e.facing
	}

	body.VX = e.opts.Config.MoveVelocity * e.pace()
	body.X0 += body.VX * float64(e.facing)
}

func (e *Enemy) OnRender() {
	if e.Destroyed() {
		return
	}

	now := e.opts.Clock.Now()
	period := time.Duration(e.opts.Config.AnimationMs) * time.Millisecond
	if !e.flipped || now.Sub(e.flipAt) > period {
		e.frame2 = !e.frame2
		e.flipped = true
		e.flipAt = now
	}

	switch {
	case e.facing == FacingLeft && e.frame2:
		e.SetSprite(e.sprites.Walk2Left)
	case e.facing == FacingLeft:
		e.SetSprite(e.sprites.Walk1Left)
	case e.frame2:
		e.SetSprite(e.sprites.Walk2Right)
	default:
		e.SetSprite(e.sprites.Walk1Right)
	}
}
