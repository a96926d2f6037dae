package session

import (
	"context"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// DefaultMaxFrames bounds headless runs that set no limit: one minute of game
// time at 60 frames per second.
const DefaultMaxFrames = 3600

// Result summarizes a headless run.
type Result struct {
	Outcome Outcome
	Pills   int
	Frames  uint64
	Run     storage.Run
	Screen  *core.Screen // Last rendered frame
}

// RunHeadless plays a session without a terminal until the player wins or
// dies, maxFrames frames have run or ctx is cancelled. Recorded events in
// opts.Replay are fired at their frames. The finished run is saved when
// opts.Store is set.
func RunHeadless(ctx context.Context, opts Options, maxFrames int) (Result, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	opts.Scheduler = nil

	s, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	if err := s.Start(); err != nil {
		return Result{}, err
	}

	for s.Outcome() == Playing && s.Frames() < uint64(maxFrames) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !s.Step() {
			break
		}
	}
	if err := s.Err(); err != nil {
		return Result{}, err
	}

	run, err := s.Finish()
	res := Result{Outcome: s.Outcome(), Pills: run.Pills, Frames: run.Frames, Run: run, Screen: s.Screen()}
	return res, err
}

// RunRealtime plays a session like RunHeadless but paces frames at fps on an
// engine.Loop, so a run takes as long as it would on screen.
func RunRealtime(ctx context.Context, opts Options, maxFrames, fps int) (Result, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	loop := engine.NewLoop(fps)
	var s *Session
	opts.Scheduler = frameLimit{inner: loop, done: func() bool {
		return s.Outcome() != Playing || s.Err() != nil || s.Frames() >= uint64(maxFrames)
	}, stop: stop}

	s, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	if err := s.Start(); err != nil {
		return Result{}, err
	}

	// Run returns once a frame ends the run or ctx is cancelled.
	_ = loop.Run(runCtx)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.Err(); err != nil {
		return Result{}, err
	}

	run, err := s.Finish()
	return Result{Outcome: s.Outcome(), Pills: run.Pills, Frames: run.Frames, Run: run, Screen: s.Screen()}, err
}

// frameLimit stops a loop after the frame that makes done true. A paused
// engine requests no frames, so a win or a death stops it as well.
type frameLimit struct {
	inner engine.FrameScheduler
	done  func() bool
	stop  func()
}

func (f frameLimit) RequestFrame(fn func()) {
	f.inner.RequestFrame(func() {
		fn()
		if f.done() {
			f.stop()
		}
	})
}
