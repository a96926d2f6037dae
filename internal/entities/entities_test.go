package entities

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
)

type blankImage struct{}

func (blankImage) Size() (float64, float64)   { return 100, 100 }
func (blankImage) At(x, y float64) core.Cell { return core.Cell{} }

func sprite(x, w, h float64) core.Sprite {
	return core.Sprite{Tileset: blankImage{}, Src: core.NewBox(x, 0, w, h)}
}

var testPlayerSprites = PlayerSprites{
	MoveLeft:    sprite(0, 10, 20),
	MoveRight:   sprite(10, 10, 20),
	AttackLeft:  sprite(20, 14, 20),
	AttackRight: sprite(40, 14, 20),
}

var testEnemySprites = EnemySprites{
	Walk1Left:  sprite(0, 12, 12),
	Walk2Left:  sprite(20, 12, 12),
	Walk1Right: sprite(40, 12, 12),
	Walk2Right: sprite(60, 12, 12),
}

type callbackLog struct {
	deltas []int
	doors  int
	deaths int
}

func testPlayer(x, y, gravity float64, clock Clock, log *callbackLog) *Player {
	cfg := config.DefaultGameConfig().Player
	cfg.Width, cfg.Height = 10, 20
	return NewPlayer(testPlayerSprites, x, y, PlayerOptions{
		Config:        cfg,
		Gravity:       gravity,
		WorldWidth:    100,
		RequiredPills: 2,
		Clock:         clock,
		Callbacks: PlayerCallbacks{
			OnPillCollect: func(d int) { log.deltas = append(log.deltas, d) },
			OnDoorHit:     func() { log.doors++ },
			OnDie:         func() { log.deaths++ },
		},
	})
}

func run(t *testing.T, objs ...engine.GameObject) (*engine.Engine, *engine.ManualScheduler) {
	t.Helper()
	sched := &engine.ManualScheduler{}
	canvas := core.NewCanvas(core.NewScreen(20, 10), 100, 50)
	e, err := engine.New(canvas, engine.Background{}, objs, engine.WithScheduler(sched))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return e, sched
}

func TestPlayerJumpsFromGroundOnly(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	p := testPlayer(0, 0, 0.45, clock, &callbackLog{})
	floor := NewBox(sprite(0, 100, 10), 0, 20)
	e, sched := run(t, p, floor)

	sched.Run(4)
	if y := p.Body().Y0; y < 0 || y > 0.45 {
		t.Fatalf("resting y0 = %v, expected within [0, 0.45]", y)
	}

	e.FireEvent(engine.NewKeyDown("w"))
	sched.Step()
	if vy := p.Body().VY; vy != -12.5 {
		t.Fatalf("vy after jump = %v, expected -12.5", vy)
	}
	sched.Step()
	if y := p.Body().Y0; y > -10 {
		t.Errorf("y0 one frame into the jump = %v, expected above -10", y)
	}

	e.FireEvent(engine.NewKeyDown("ArrowUp"))
	sched.Step()
	if vy := p.Body().VY; vy <= -12.5 {
		t.Errorf("vy after a mid-air jump request = %v, expected the jump to be ignored", vy)
	}
}

func TestPlayerWalksAndStops(t *testing.T) {
	p := testPlayer(0, 0, 0, nil, &callbackLog{})
	e, sched := run(t, p)

	e.FireEvent(engine.NewKeyDown("d"))
	sched.Step()
	if x := p.Body().X0; x != 5.33 {
		t.Errorf("x0 after one step right = %v, expected 5.33", x)
	}
	if p.Facing() != FacingRight || p.Sprite() != testPlayerSprites.MoveRight {
		t.Errorf("facing = %v, expected right with the move-right sprite", p.Facing())
	}

	e.FireEvent(engine.NewKeyUp("d"))
	sched.Step()
	if x := p.Body().X0; x != 5.33 {
		t.Errorf("x0 after key-up = %v, expected 5.33", x)
	}
	if p.Moving() {
		t.Error("Moving() = true after key-up")
	}

	e.FireEvent(engine.NewKeyDown("A"))
	sched.Step()
	if p.Facing() != FacingLeft || p.Sprite() != testPlayerSprites.MoveLeft {
		t.Errorf("facing = %v, expected left with the move-left sprite", p.Facing())
	}
}

func TestPlayerBlockedAtWorldEdge(t *testing.T) {
	p := testPlayer(95, 0, 0, nil, &callbackLog{})
	e, sched := run(t, p)

	e.FireEvent(engine.NewKeyDown("d"))
	sched.Run(3)
	if x := p.Body().X0; x != 95 {
		t.Errorf("x0 past the right edge = %v, expected 95", x)
	}
}

func TestPlayerCollectsPills(t *testing.T) {
	log := &callbackLog{}
	p := testPlayer(0, 0, 0, nil, log)
	pill := NewPill(sprite(0, 10, 10), 5, 5)
	e, sched := run(t, p, pill)

	sched.Step()

	if p.Pills() != 1 {
		t.Errorf("Pills() = %d, expected 1", p.Pills())
	}
	if !pill.Destroyed() {
		t.Error("collected pill should be destroyed")
	}
	if len(log.deltas) != 1 || log.deltas[0] != 1 {
		t.Errorf("pill callbacks = %v, expected [1]", log.deltas)
	}
	if n := len(e.Objects()); n != 1 {
		t.Errorf("len(Objects()) = %d, expected 1 after compaction", n)
	}
	if got := p.Body().Box(); got.X0 != 0 || got.Y0 != 0 {
		t.Errorf("player moved to %+v; pills never push", got)
	}
}

func TestPlayerDamage(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	log := &callbackLog{}
	p := testPlayer(0, 0, 0, clock, log)
	enemy := NewEnemy(testEnemySprites, 8, 0, EnemyOptions{Config: config.DefaultGameConfig().Enemy, WorldWidth: 100})

	p.pills = 3
	p.SetCollision(engine.Right, enemy)
	p.OnDetectCollisions()
	if p.Pills() != 0 || p.Destroyed() {
		t.Fatalf("after first hit: pills = %d, destroyed = %v, expected 0, false", p.Pills(), p.Destroyed())
	}
	if len(log.deltas) != 1 || log.deltas[0] != -3 {
		t.Errorf("pill callbacks = %v, expected [-3]", log.deltas)
	}

	clock.Advance(500 * time.Millisecond)
	p.OnDetectCollisions()
	if p.Destroyed() {
		t.Fatal("hit during the damage cooldown should be ignored")
	}

	clock.Advance(600 * time.Millisecond)
	p.OnDetectCollisions()
	if !p.Destroyed() {
		t.Fatal("hit without pills after the cooldown should destroy the player")
	}

	p.OnResolveCollisions()
	p.OnResolveCollisions()
	if log.deaths != 1 {
		t.Errorf("OnDie called %d times, expected 1", log.deaths)
	}

	p.OnRender()
	if p.Subscribed(engine.EventKeyDown) || p.Subscribed(engine.EventScenePointerClick) {
		t.Error("destroyed player should drop its subscriptions on render")
	}
}

func TestPlayerAttackKillsEnemy(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	log := &callbackLog{}
	p := testPlayer(0, 0, 0, clock, log)
	p.facing = FacingRight
	enemy := NewEnemy(testEnemySprites, 8, 0, EnemyOptions{Config: config.DefaultGameConfig().Enemy, WorldWidth: 100})

	p.FireEvent(engine.NewScenePointerClick(50, 100))
	p.OnResolveEvents()
	if _, attacking := p.Attacking(); attacking {
		t.Fatal("click outside the player's rows should not attack")
	}
	p.ClearEvents()

	p.FireEvent(engine.NewScenePointerClick(50, 10))
	p.OnResolveEvents()
	dir, attacking := p.Attacking()
	if !attacking || dir != FacingRight {
		t.Fatalf("Attacking() = %v, %v, expected right, true", dir, attacking)
	}

	p.SetCollision(engine.Right, enemy)
	p.OnDetectCollisions()
	if !enemy.Destroyed() {
		t.Error("attacked enemy should be destroyed")
	}
	if p.Pills() != 10 {
		t.Errorf("Pills() = %d, expected 10", p.Pills())
	}

	p.OnResolveCollisions()
	if p.Sprite() != testPlayerSprites.AttackRight || p.Body().W != 14 {
		t.Errorf("attack sprite not applied: w = %v", p.Body().W)
	}

	clock.Advance(501 * time.Millisecond)
	p.AfterUpdate()
	if _, attacking := p.Attacking(); attacking {
		t.Error("attack should expire after the attack window")
	}
}

func TestPlayerDoor(t *testing.T) {
	log := &callbackLog{}
	p := testPlayer(0, 0, 0, nil, log)
	door := NewDoor(sprite(0, 10, 10), 0, 0)
	p.SetCollision(engine.Left, door)

	p.OnDetectCollisions()
	if log.doors != 0 {
		t.Errorf("door opened with %d pills", p.Pills())
	}

	p.pills = p.RequiredPills()
	p.OnDetectCollisions()
	if log.doors != 1 {
		t.Errorf("OnDoorHit called %d times, expected 1", log.doors)
	}
}

func TestEnemyWalking(t *testing.T) {
	cfg := config.DefaultGameConfig().Enemy
	cfg.Width, cfg.Height = 12, 12

	tests := []struct {
		name         string
		x0, vy       float64
		pace         float64
		expectFacing Facing
		expectX      float64
		expectVY     float64
	}{
		{"walks right", 10, 0, 1, FacingRight, 10 + 1.67, 0},
		{"walks faster with pace", 10, 0, 2, FacingRight, 10 + 1.67*2, 0},
		{"turns at the right edge", 90, 0, 1, FacingLeft, 90 - 1.67, 0},
		{"hops back when falling", 10, 1, 1, FacingLeft, 10 - 1.67, -1.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pace := tc.pace
			e := NewEnemy(testEnemySprites, tc.x0, 0, EnemyOptions{
				Config:     cfg,
				WorldWidth: 100,
				Pace:       func() float64 { return pace },
			})
			e.Body().VY = tc.vy

			e.OnApplyForces()

			if e.Facing() != tc.expectFacing {
				t.Errorf("Facing() = %v, expected %v", e.Facing(), tc.expectFacing)
			}
			if x := e.Body().X0; math.Abs(x-tc.expectX) > 1e-9 {
				t.Errorf("x0 = %v, expected %v", x, tc.expectX)
			}
			if vy := e.Body().VY; vy != tc.expectVY {
				t.Errorf("vy = %v, expected %v", vy, tc.expectVY)
			}
		})
	}
}

func TestEnemyAnimation(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	e := NewEnemy(testEnemySprites, 0, 0, EnemyOptions{Config: config.DefaultGameConfig().Enemy, Clock: clock})

	e.OnRender()
	if e.Sprite() != testEnemySprites.Walk2Right {
		t.Fatalf("first frame sprite = %+v, expected walk2 right", e.Sprite().Src)
	}

	clock.Advance(100 * time.Millisecond)
	e.OnRender()
	if e.Sprite() != testEnemySprites.Walk2Right {
		t.Errorf("sprite changed before the animation period")
	}

	clock.Advance(450 * time.Millisecond)
	e.OnRender()
	if e.Sprite() != testEnemySprites.Walk1Right {
		t.Errorf("sprite did not flip after the animation period")
	}
}

func TestItemsAreStatic(t *testing.T) {
	tests := []struct {
		obj   engine.GameObject
		proto int
		ghost bool
		w, h  float64
	}{
		{NewPill(sprite(0, 62, 56), 1, 2), ProtoPill, true, 62, 56},
		{NewBox(sprite(0, 58, 58), 1, 2), ProtoBox, false, 58, 58},
		{NewDoor(sprite(0, 64, 70), 1, 2), ProtoDoor, true, 64, 70},
	}
	for _, tc := range tests {
		t.Run(ProtoName(tc.proto), func(t *testing.T) {
			b := tc.obj.Body()
			if tc.obj.ProtoID() != tc.proto || !b.Static || b.Ghost != tc.ghost {
				t.Errorf("proto = %d static = %v ghost = %v", tc.obj.ProtoID(), b.Static, b.Ghost)
			}
			if b.W != tc.w || b.H != tc.h || b.X0 != 1 || b.Y0 != 2 {
				t.Errorf("body = %+v, expected %vx%v at (1, 2)", b.Box(), tc.w, tc.h)
			}
		})
	}
}
