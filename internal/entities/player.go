package entities

import (
	"time"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
)

// Facing is the horizontal direction an entity looks at.
type Facing int8

const (
	FacingLeft  Facing = -1
	FacingRight Facing = 1
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// PlayerSprites are the four player poses.
type PlayerSprites struct {
	MoveLeft    core.Sprite
	MoveRight   core.Sprite
	AttackLeft  core.Sprite
	AttackRight core.Sprite
}

// PlayerCallbacks report gameplay outcomes to the session. Nil callbacks are skipped.
type PlayerCallbacks struct {
	OnPillCollect func(delta int) // negative when pills are lost to damage
	OnDoorHit     func()
	OnDie         func()
}

// PlayerOptions configure a Player.
type PlayerOptions struct {
	Config        config.PlayerConfig
	Gravity       float64
	WorldWidth    float64
	RequiredPills int
	Clock         Clock
	Callbacks     PlayerCallbacks
}

// Player is the controllable character. It jumps, walks, attacks toward the
// facing side, collects pills and opens the door once it carries enough.
type Player struct {
	engine.Object

	sprites PlayerSprites
	opts    PlayerOptions

	pills  int
	move   bool
	facing Facing
	jump   bool

	attacking bool
	attackDir Facing
	attackAt  time.Time

	damaged    bool
	hasDamaged bool
	damagedAt  time.Time

	sinceGround int
	dieReported bool
}

var playerKeys = map[string]string{
	"w": "jump", "W": "jump", "ArrowUp": "jump",
	"a": "left", "A": "left", "ArrowLeft": "left",
	"d": "right", "D": "right", "ArrowRight": "right",
}

// NewPlayer creates a player at (x0, y0) facing left.
func NewPlayer(sprites PlayerSprites, x0, y0 float64, opts PlayerOptions) *Player {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	body := engine.PhysicalObject{
		X0:      x0,
		Y0:      y0,
		W:       opts.Config.Width,
		H:       opts.Config.Height,
		Gravity: opts.Gravity,
	}
	p := &Player{
		Object:  engine.NewObject(ProtoPlayer, body, sprites.MoveLeft),
		sprites: sprites,
		opts:    opts,
		facing:  FacingLeft,
	}
	p.Subscribe(engine.EventKeyDown)
	p.Subscribe(engine.EventKeyUp)
	p.Subscribe(engine.EventScenePointerClick)
	return p
}

// Pills returns the number of pills carried.
func (p *Player) Pills() int { return p.pills }

// RequiredPills returns the pills needed to open the door.
func (p *Player) RequiredPills() int { return p.opts.RequiredPills }

// Facing returns the direction the player looks at.
func (p *Player) Facing() Facing { return p.facing }

// Attacking reports whether an attack is active and its direction.
func (p *Player) Attacking() (Facing, bool) { return p.attackDir, p.attacking }

// Moving reports whether a move key is held.
func (p *Player) Moving() bool { return p.move }

func (p *Player) OnResolveEvents() {
	for _, evt := range p.Events() {
		switch evt.Kind() {
		case engine.EventKeyDown:
			switch playerKeys[evt.Key()] {
			case "jump":
				p.jump = true
			case "left":
				p.move = true
				p.facing = FacingLeft
			case "right":
				p.move = true
				p.facing = FacingRight
			}
		case engine.EventKeyUp:
			switch playerKeys[evt.Key()] {
			case "left", "right":
				p.move = false
			}
		case engine.EventScenePointerClick:
			body := p.Body()
			if y := evt.Point().Y; y >= body.Y0 && y <= body.Y0+body.H {
				p.attacking = true
				p.attackDir = p.facing
				p.attackAt = p.opts.Clock.Now()
			}
		}
	}
}

func (p *Player) OnDetectCollisions() {
	if p.Destroyed() {
		return
	}

	// A resting body is only detected every other frame, so a jump stays
	// allowed for a few frames after the last ground contact.
	if p.Collision(engine.Down) != nil {
		p.sinceGround = 0
	} else {
		p.sinceGround++
	}
	if p.sinceGround > p.opts.Config.CoyoteFrames || p.Body().VY < 0 {
		p.jump = false
	}

	p.handleEnemies()
	if p.Destroyed() {
		return
	}
	p.damaged = false

	p.handlePills()
	p.handleDoor()
}

var sides = [...]engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right}

// touching returns the live objects of one kind in the player's collision slots.
func (p *Player) touching(protoID int) []engine.GameObject {
	var out []engine.GameObject
	for _, d := range sides {
		if other := p.Collision(d); other != nil && !other.Destroyed() && other.ProtoID() == protoID {
			out = append(out, other)
		}
	}
	return out
}

func (p *Player) handleEnemies() {
	for _, enemy := range p.touching(ProtoEnemy) {
		p.hitEnemy(enemy)
		if p.damaged {
			return
		}
	}
}

func (p *Player) hitEnemy(enemy engine.GameObject) {
	if !p.attacking {
		p.takeDamage()
		return
	}

	me, them := p.Body(), enemy.Body()
	switch {
	case p.attackDir == FacingLeft && me.X0 <= them.X0+them.W,
		p.attackDir == FacingRight && me.X0+me.W >= them.X0:
		enemy.Destroy()
		p.addPills(p.opts.Config.KillReward)
	default:
		p.takeDamage()
	}
}

func (p *Player) takeDamage() {
	now := p.opts.Clock.Now()
	cooldown := time.Duration(p.opts.Config.DamageCooldownMs) * time.Millisecond
	if p.hasDamaged && now.Sub(p.damagedAt) < cooldown {
		return
	}

	if p.pills > 0 {
		p.addPills(-p.pills)
	} else {
		p.Destroy()
	}

	p.damaged = true
	p.hasDamaged = true
	p.damagedAt = now
}

func (p *Player) handlePills() {
	for _, pill := range p.touching(ProtoPill) {
		pill.Destroy()
		p.addPills(1)
	}
}

func (p *Player) handleDoor() {
	if len(p.touching(ProtoDoor)) == 0 || p.pills < p.opts.RequiredPills {
		return
	}
	if cb := p.opts.Callbacks.OnDoorHit; cb != nil {
		cb()
	}
}

func (p *Player) addPills(delta int) {
	if delta == 0 {
		return
	}
	p.pills += delta
	if cb := p.opts.Callbacks.OnPillCollect; cb != nil {
		cb(delta)
	}
}

func (p *Player) OnApplyForces() {
	if p.Destroyed() {
		return
	}

	body := p.Body()
	if p.jump {
		body.VY = -p.opts.Config.JumpVelocity
		body.Y0 += body.VY
	}

	if body.X0 < 0 && p.facing == FacingLeft {
		return
	}
	if body.X0 > p.opts.WorldWidth-body.W && p.facing == FacingRight {
		return
	}
	if p.move {
		body.VX = float64(p.facing) * p.opts.Config.MoveVelocity
	} else {
		body.VX = 0
	}
	body.X0 += body.VX
}

func (p *Player) OnResolveCollisions() {
	if p.Destroyed() {
		if !p.dieReported {
			p.dieReported = true
			if cb := p.opts.Callbacks.OnDie; cb != nil {
				cb()
			}
		}
		return
	}

	sprite := p.sprites.MoveRight
	switch {
	case p.attacking && p.attackDir == FacingLeft:
		sprite = p.sprites.AttackLeft
	case p.attacking:
		sprite = p.sprites.AttackRight
	case p.facing == FacingLeft:
		sprite = p.sprites.MoveLeft
	}
	p.SetSprite(sprite)

	if sprite.Valid() {
		body := p.Body()
		body.W = sprite.Src.W
		body.H = sprite.Src.H
	}
}

func (p *Player) OnRender() {
	if p.Destroyed() {
		p.Unsubscribe(engine.EventKeyDown)
		p.Unsubscribe(engine.EventKeyUp)
		p.Unsubscribe(engine.EventScenePointerClick)
	}
}

func (p *Player) AfterUpdate() {
	window := time.Duration(p.opts.Config.AttackWindowMs) * time.Millisecond
	if p.attacking && p.opts.Clock.Now().Sub(p.attackAt) > window {
		p.attacking = false
	}
	p.jump = false
}
