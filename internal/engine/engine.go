package engine

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// ErrRenderTarget is returned when the render target is missing or stops
// accepting draws. It is the only fatal engine condition.
var ErrRenderTarget = errors.New("engine: render target unavailable")

// DefaultMinPenetration is the depth every axis must exceed for two boxes to collide.
const DefaultMinPenetration = 0.01

// pendingHint pre-sizes the pending event stack.
const pendingHint = 64

// RenderTarget is the surface the engine draws into. Coordinates are world units.
type RenderTarget interface {
	DrawImage(img core.Image, src, dst core.Box) error
}

// Background is drawn full-size at the origin before any object.
type Background struct {
	Image         core.Image
	Width, Height float64
}

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the host frame scheduler. The default is a ManualScheduler.
func WithScheduler(s FrameScheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMinPenetration sets the collision threshold. Non-positive values are ignored.
func WithMinPenetration(v float64) Option {
	return func(e *Engine) {
		if v > 0 {
			e.minBound = v
		}
	}
}

// WithErrorHandler sets a callback invoked once when the engine fails.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// Engine runs the fixed per-frame pipeline over a collection of game objects.
//
// Engine is not safe for concurrent use. Hosts running frames on another
// goroutine must serialize FireEvent, Pause and Resume with the frames,
// for example through Loop.Do.
type Engine struct {
	target  RenderTarget
	bg      Background
	objects []GameObject
	pending []GameEvent
	gate    Gate

	sched    FrameScheduler
	logger   *log.Logger
	minBound float64
	onError  func(error)

	started bool
	err     error
	frames  uint64
}

// New creates an idle engine. The object slice is owned by the engine from
// now on and compacted in place.
func New(target RenderTarget, bg Background, objects []GameObject, opts ...Option) (*Engine, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrRenderTarget)
	}

	e := &Engine{
		target:   target,
		bg:       bg,
		objects:  objects,
		pending:  make([]GameEvent, 0, pendingHint),
		sched:    &ManualScheduler{},
		logger:   log.New(io.Discard),
		minBound: DefaultMinPenetration,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FireEvent pushes evt onto the pending stack. It is resolved on the next
// frame that passes the gate.
func (e *Engine) FireEvent(evt GameEvent) {
	e.pending = append(e.pending, evt)
}

// Start opens the gate and requests the first frame. Starting a running or
// paused engine does nothing.
func (e *Engine) Start() error {
	if e.err != nil {
		return e.err
	}
	if e.started {
		return nil
	}
	e.started = true
	e.gate.Resume()
	e.logger.Debug("engine started", "objects", len(e.objects))
	e.sched.RequestFrame(e.tick)
	return nil
}

// Pause closes the gate. The next frame suspends before its first phase.
func (e *Engine) Pause() {
	if !e.gate.Open() {
		return
	}
	e.gate.Pause()
	e.logger.Debug("engine paused", "frame", e.frames)
}

// Resume opens the gate and runs the suspended frame, if any.
func (e *Engine) Resume() {
	if e.gate.Open() {
		return
	}
	e.logger.Debug("engine resumed", "frame", e.frames, "suspended", e.gate.Waiting())
	e.gate.Resume()
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	switch {
	case e.err != nil:
		return StateFailed
	case !e.started:
		return StateIdle
	case e.gate.Open():
		return StateRunning
	default:
		return StatePaused
	}
}

// Err returns the failure that stopped the engine, or nil.
func (e *Engine) Err() error {
	return e.err
}

// Frames returns the number of completed frames.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Objects returns a copy of the live collection in its current order.
func (e *Engine) Objects() []GameObject {
	return slices.Clone(e.objects)
}

// Pending returns the number of events waiting for the next frame.
func (e *Engine) Pending() int {
	return len(e.pending)
}

func (e *Engine) tick() {
	e.gate.Await(e.runIteration)
}

func (e *Engine) runIteration() {
	for _, obj := range e.objects {
		obj.BeforeUpdate()
	}

	e.resolveEvents()
	for _, obj := range e.objects {
		obj.OnResolveEvents()
		obj.ClearEvents()
	}

	e.detectCollisions()
	for _, obj := range e.objects {
		obj.OnDetectCollisions()
	}

	e.applyForces()
	for _, obj := range e.objects {
		obj.OnApplyForces()
	}

	e.resolveCollisions()
	for _, obj := range e.objects {
		obj.OnResolveCollisions()
	}

	if err := e.render(); err != nil {
		e.fail(err)
		return
	}
	for _, obj := range e.objects {
		obj.OnRender()
	}

	e.clearDestroyedObjs()
	for _, obj := range e.objects {
		obj.AfterUpdate()
	}

	e.frames++
	e.sched.RequestFrame(e.tick)
}

func (e *Engine) fail(err error) {
	e.err = fmt.Errorf("%w: %w", ErrRenderTarget, err)
	e.logger.Error("render failed, engine stopped", "frame", e.frames, "err", err)
	if e.onError != nil {
		e.onError(e.err)
	}
}
