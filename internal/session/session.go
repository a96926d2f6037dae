// Package session runs one attempt at a scene: it owns the engine, the level
// and the HUD state, pauses on a win or a death, records host events and saves
// the finished run.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
	"github.com/vovakirdan/tui-platformer/internal/entities"
	"github.com/vovakirdan/tui-platformer/internal/replay"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// Outcome is how a session ended.
type Outcome int

const (
	Playing Outcome = iota
	Won
	Died
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case Won:
		return storage.OutcomeWon
	case Died:
		return storage.OutcomeDied
	case Quit:
		return storage.OutcomeQuit
	}
	return "unknown"
}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(run storage.Run) error
}

// Options configure a session.
type Options struct {
	Scene   config.SceneConfig
	Game    config.GameConfig
	Preset  config.DifficultyPreset // empty keeps Game.Difficulty as is
	Tileset *core.Tileset
	Seed    int64
	Player  string

	// Screen size in cells. The whole world is stretched over it.
	ScreenW, ScreenH int

	// Scheduler runs frames; nil uses an engine.ManualScheduler.
	Scheduler engine.FrameScheduler
	Logger    *log.Logger
	Store     RunStore
	Recorder  *replay.Writer
	Replay    []replay.Record

	// OnOutcome is called once when the player wins or dies.
	OnOutcome func(Outcome)
}

// Snapshot is the HUD view of a session.
type Snapshot struct {
	Scene      string
	Title      string
	Pills      int
	Required   int
	TotalPills int
	Outcome    Outcome
	Paused     bool
	Frames     uint64
	Difficulty float64
	State      engine.State
}

// Session is one run of a scene.
//
// Session is not safe for concurrent use; call it from the goroutine that
// runs frames.
type Session struct {
	id     string
	opts   Options
	logger *log.Logger

	clock  *entities.ManualClock
	screen *core.Screen
	canvas *core.Canvas
	level  *scene.Level
	eng    *engine.Engine
	manual *engine.ManualScheduler
	diff   *config.DifficultyManager
	replay *replay.Player

	pills       int
	outcome     Outcome
	manualPause bool
	saved       bool
	recordErr   error
}

// epoch is where every session clock starts so runs replay identically.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// New builds the level and the engine. The session is idle until Start.
func New(opts Options) (*Session, error) {
	if opts.ScreenW <= 0 || opts.ScreenH <= 0 {
		return nil, fmt.Errorf("session: screen size must be positive, got %dx%d", opts.ScreenW, opts.ScreenH)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Preset != "" {
		config.ApplyPreset(&opts.Game, opts.Preset)
	}

	s := &Session{
		id:     ulid.Make().String(),
		opts:   opts,
		logger: opts.Logger.With("scene", opts.Scene.ID),
		clock:  entities.NewManualClock(epoch),
		diff:   config.NewDifficultyManager(opts.Game.Difficulty),
	}
	if len(opts.Replay) > 0 {
		s.replay = replay.NewPlayer(opts.Replay)
	}

	lvl, err := scene.Build(scene.Options{
		Scene:   opts.Scene,
		Game:    opts.Game,
		Tileset: opts.Tileset,
		Seed:    opts.Seed,
		Clock:   s.clock,
		Callbacks: entities.PlayerCallbacks{
			OnPillCollect: s.onPills,
			OnDoorHit:     func() { s.finish(Won) },
			OnDie:         func() { s.finish(Died) },
		},
		Pace: s.pace,
	})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.level = lvl

	s.screen = core.NewScreen(opts.ScreenW, opts.ScreenH)
	s.canvas = core.NewCanvas(s.screen, lvl.World.W, lvl.World.H)

	sched := opts.Scheduler
	if sched == nil {
		s.manual = &engine.ManualScheduler{}
		sched = s.manual
	}
	step := core.RuntimeConfig{TickRate: opts.Game.Physics.TickRate}.FrameDuration()

	s.eng, err = engine.New(s.canvas, lvl.Background, lvl.Objects,
		engine.WithScheduler(&clockedScheduler{inner: sched, clock: s.clock, step: step, before: s.beforeFrame}),
		engine.WithLogger(opts.Logger),
		engine.WithMinPenetration(opts.Game.Physics.MinPenetration),
		engine.WithErrorHandler(s.onEngineError),
	)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return s, nil
}

// ID returns the ULID identifying this run.
func (s *Session) ID() string { return s.id }

// Start starts the engine.
func (s *Session) Start() error {
	s.logger.Info("session started", "id", s.id, "seed", s.opts.Seed, "player", s.opts.Player)
	return s.eng.Start()
}

// FireEvent forwards a host event to the engine and records it. Events after
// the outcome is decided are dropped.
func (s *Session) FireEvent(evt engine.GameEvent) {
	if s.outcome != Playing {
		return
	}
	if s.opts.Recorder != nil && s.recordErr == nil {
		if err := s.opts.Recorder.Write(s.eng.Frames(), evt); err != nil {
			s.recordErr = err
			s.logger.Warn("recording stopped", "err", err)
		}
	}
	s.eng.FireEvent(evt)
}

// TogglePause pauses a running session or resumes a manually paused one.
// It returns whether the session is paused afterwards.
func (s *Session) TogglePause() bool {
	if s.manualPause {
		s.Resume()
	} else {
		s.Pause()
	}
	return s.manualPause
}

// Pause suspends the engine at the next frame.
func (s *Session) Pause() {
	if s.outcome != Playing || s.manualPause {
		return
	}
	s.manualPause = true
	s.eng.Pause()
}

// Resume continues a manually paused session. A finished session stays paused.
func (s *Session) Resume() {
	if s.outcome != Playing || !s.manualPause {
		return
	}
	s.manualPause = false
	s.eng.Resume()
}

// Paused reports whether the engine is paused, manually or by an outcome.
func (s *Session) Paused() bool {
	return s.eng.State() == engine.StatePaused
}

// Outcome returns how the session ended, or Playing.
func (s *Session) Outcome() Outcome { return s.outcome }

// Frames returns the number of completed frames.
func (s *Session) Frames() uint64 { return s.eng.Frames() }

// Err returns the engine failure, if any.
func (s *Session) Err() error { return s.eng.Err() }

// World returns the world rectangle of the scene.
func (s *Session) World() core.Box { return s.level.World }

// Screen returns the cell buffer frames are rendered into.
func (s *Session) Screen() *core.Screen { return s.screen }

// Canvas returns the render target, used to map screen cells to world points.
func (s *Session) Canvas() *core.Canvas { return s.canvas }

// Level returns the assembled scene.
func (s *Session) Level() *scene.Level { return s.level }

// Resize changes the screen size. The next frame fills the new size.
func (s *Session) Resize(w, h int) {
	s.screen.Resize(w, h)
}

// Detach makes every later frame fail, stopping the engine. Hosts call it
// when their output goes away.
func (s *Session) Detach() {
	s.canvas.Detach()
}

// Snapshot returns the HUD state.
func (s *Session) Snapshot() Snapshot {
	frames := s.eng.Frames()
	return Snapshot{
		Scene:      s.level.ID,
		Title:      s.level.Title,
		Pills:      s.pills,
		Required:   s.level.RequiredPills,
		TotalPills: s.level.TotalPills,
		Outcome:    s.outcome,
		Paused:     s.Paused(),
		Frames:     frames,
		Difficulty: s.diff.Level(s.pills, frames),
		State:      s.eng.State(),
	}
}

// Finish ends the session and saves the run once. A session still playing is
// recorded as quit.
func (s *Session) Finish() (storage.Run, error) {
	if s.outcome == Playing {
		s.outcome = Quit
		s.eng.Pause()
	}
	run := storage.Run{
		ID:      s.id,
		Scene:   s.level.ID,
		Player:  s.opts.Player,
		Outcome: s.outcome.String(),
		Pills:   s.pills,
		Frames:  s.eng.Frames(),
		Seed:    s.opts.Seed,
	}
	if s.saved || s.opts.Store == nil {
		return run, nil
	}
	s.saved = true
	if err := s.opts.Store.SaveRun(run); err != nil {
		s.logger.Warn("run not saved", "err", err)
		return run, fmt.Errorf("session: %w", err)
	}
	s.logger.Info("run saved", "id", run.ID, "outcome", run.Outcome, "pills", run.Pills, "frames", run.Frames)
	return run, nil
}

// Step runs one frame when the session owns a ManualScheduler. It returns
// false when no frame was pending.
func (s *Session) Step() bool {
	if s.manual == nil {
		return false
	}
	return s.manual.Step()
}

func (s *Session) onPills(delta int) {
	s.pills += delta
	if s.pills < 0 {
		s.pills = 0
	}
	s.logger.Debug("pills changed", "delta", delta, "pills", s.pills)
}

// finish records the outcome and pauses the engine. The current frame runs to
// its end; the next one suspends at the gate.
func (s *Session) finish(o Outcome) {
	if s.outcome != Playing {
		return
	}
	s.outcome = o
	s.eng.Pause()
	s.logger.Info("session over", "outcome", o, "pills", s.pills, "frame", s.eng.Frames())
	if s.opts.OnOutcome != nil {
		s.opts.OnOutcome(o)
	}
}

func (s *Session) pace() float64 {
	return s.diff.Speed(s.pills, s.eng.Frames())
}

func (s *Session) beforeFrame() {
	if s.replay == nil {
		return
	}
	err := s.replay.Fire(s.eng.Frames(), s.eng.FireEvent)
	switch {
	case err != nil:
		s.logger.Error("replay stopped", "err", err)
		s.replay = nil
	case s.replay.Done():
		s.logger.Debug("replay finished", "frame", s.eng.Frames())
		s.replay = nil
	}
}

func (s *Session) onEngineError(err error) {
	if errors.Is(err, core.ErrCanvasDetached) {
		s.logger.Debug("output detached, engine stopped")
		return
	}
	s.logger.Error("engine failed", "err", err)
}

// clockedScheduler advances the session clock by one frame before each frame
// so entity timers follow game time.
type clockedScheduler struct {
	inner  engine.FrameScheduler
	clock  *entities.ManualClock
	step   time.Duration
	before func()
}

func (c *clockedScheduler) RequestFrame(fn func()) {
	c.inner.RequestFrame(func() {
		c.clock.Advance(c.step)
		if c.before != nil {
			c.before()
		}
		fn()
	})
}
