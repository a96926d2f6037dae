package session

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
	"github.com/vovakirdan/tui-platformer/internal/replay"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

type memStore struct {
	runs []storage.Run
	err  error
}

func (m *memStore) SaveRun(run storage.Run) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func tileset(t *testing.T) *core.Tileset {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadTileset("")
	if err != nil {
		t.Fatalf("LoadTileset() error = %v", err)
	}
	ts, err := scene.BuildTileset(cfg)
	if err != nil {
		t.Fatalf("BuildTileset() error = %v", err)
	}
	return ts
}

// arena is a floor with the player standing in the open.
func arena() config.SceneConfig {
	return config.SceneConfig{
		ID:            "arena",
		Title:         "Arena",
		World:         config.SizeConfig{Width: 696, Height: 340},
		RequiredPills: 3,
		Player:        config.PointConfig{X: 300, Y: 170},
		Door:          config.PointConfig{X: 620, Y: 212},
		Walls:         []config.RunConfig{{X: 0, Y: 282, Count: 12}},
	}
}

func newSession(t *testing.T, sc config.SceneConfig, mutate func(*Options)) *Session {
	t.Helper()
	opts := Options{
		Scene:   sc,
		Game:    config.DefaultGameConfig(),
		Tileset: tileset(t),
		Seed:    1,
		Player:  "tester",
		ScreenW: 80,
		ScreenH: 24,
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s
}

func steps(s *Session, n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func TestNewRejectsEmptyScreen(t *testing.T) {
	_, err := New(Options{Scene: arena(), Game: config.DefaultGameConfig(), Tileset: tileset(t)})
	if err == nil {
		t.Error("New() with a zero screen should fail")
	}
}

func TestSessionRunsFrames(t *testing.T) {
	s := newSession(t, arena(), nil)
	steps(s, 120)

	if s.Frames() != 120 {
		t.Errorf("Frames() = %d, expected 120", s.Frames())
	}
	if s.Outcome() != Playing {
		t.Errorf("Outcome() = %v, expected playing", s.Outcome())
	}
	// The player has landed on the floor.
	if body := s.Level().Player.Body(); body.Y0+body.H < 270 || body.Y0+body.H > 290 {
		t.Errorf("player bottom = %v, expected to rest near the floor at 282", body.Y0+body.H)
	}
	if s.Screen().String() == "" {
		t.Error("screen is empty after rendering")
	}
}

func TestSessionWinPauses(t *testing.T) {
	sc := arena()
	sc.RequiredPills = 0
	sc.Door = config.PointConfig{X: 300, Y: 200}

	var got []Outcome
	s := newSession(t, sc, func(o *Options) {
		o.OnOutcome = func(out Outcome) { got = append(got, out) }
	})
	steps(s, 10)

	if s.Outcome() != Won {
		t.Fatalf("Outcome() = %v, expected won", s.Outcome())
	}
	if len(got) != 1 || got[0] != Won {
		t.Errorf("OnOutcome calls = %v, expected [won]", got)
	}
	if !s.Paused() {
		t.Error("session should be paused after a win")
	}
	frames := s.Frames()
	steps(s, 5)
	if s.Frames() != frames {
		t.Errorf("frames advanced while paused: %d -> %d", frames, s.Frames())
	}

	// A finished session cannot be resumed.
	s.Resume()
	s.TogglePause()
	if s.Frames() != frames {
		t.Error("resume after the outcome ran a frame")
	}
}

func TestSessionDeath(t *testing.T) {
	sc := arena()
	sc.Enemies = []config.PointConfig{{X: 300, Y: 170}}

	s := newSession(t, sc, nil)
	steps(s, 5)

	if s.Outcome() != Died {
		t.Fatalf("Outcome() = %v, expected died", s.Outcome())
	}
	if snap := s.Snapshot(); !snap.Paused || snap.Outcome != Died {
		t.Errorf("Snapshot() = %+v, expected paused and died", snap)
	}
}

func TestSessionManualPause(t *testing.T) {
	s := newSession(t, arena(), nil)
	steps(s, 3)

	if !s.TogglePause() {
		t.Fatal("TogglePause() = false, expected paused")
	}
	steps(s, 5)
	if s.Frames() != 3 {
		t.Errorf("Frames() = %d while paused, expected 3", s.Frames())
	}

	if s.TogglePause() {
		t.Fatal("TogglePause() = true, expected running")
	}
	// Resuming runs the suspended frame right away.
	if s.Frames() != 4 {
		t.Errorf("Frames() = %d after resume, expected 4", s.Frames())
	}
	steps(s, 2)
	if s.Frames() != 6 {
		t.Errorf("Frames() = %d, expected 6", s.Frames())
	}
}

func TestSessionFinishSavesOnce(t *testing.T) {
	store := &memStore{}
	s := newSession(t, arena(), func(o *Options) { o.Store = store })
	steps(s, 10)

	run, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if run.Outcome != storage.OutcomeQuit || run.Scene != "arena" || run.Player != "tester" || run.Frames != 10 {
		t.Errorf("Finish() = %+v", run)
	}
	if run.ID != s.ID() || run.ID == "" {
		t.Errorf("run id = %q, expected session id %q", run.ID, s.ID())
	}

	s.Finish()
	if len(store.runs) != 1 {
		t.Errorf("saved %d runs, expected 1", len(store.runs))
	}
}

func TestSessionFinishStoreError(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	s := newSession(t, arena(), func(o *Options) { o.Store = store })

	if _, err := s.Finish(); err == nil {
		t.Error("Finish() should report the store error")
	}
}

func TestSessionPillCounter(t *testing.T) {
	sc := arena()
	sc.Pills = []config.RunConfig{{X: 300, Y: 200, Count: 1}}

	s := newSession(t, sc, nil)
	steps(s, 5)

	snap := s.Snapshot()
	if snap.Pills != 1 || snap.Required != 3 || snap.TotalPills != 1 || snap.Title != "Arena" {
		t.Errorf("Snapshot() = %+v, expected 1/3 pills", snap)
	}
	if s.Level().Player.Pills() != snap.Pills {
		t.Errorf("HUD pills %d differ from player pills %d", snap.Pills, s.Level().Player.Pills())
	}
}

func TestSessionDetach(t *testing.T) {
	s := newSession(t, arena(), nil)
	steps(s, 2)
	s.Detach()
	steps(s, 2)

	if !errors.Is(s.Err(), engine.ErrRenderTarget) || !errors.Is(s.Err(), core.ErrCanvasDetached) {
		t.Errorf("Err() = %v, expected a detached render target", s.Err())
	}
	if s.Frames() != 2 {
		t.Errorf("Frames() = %d, expected 2", s.Frames())
	}
}

func TestSessionRecordAndReplay(t *testing.T) {
	var buf bytes.Buffer
	rec, err := replay.NewWriter(&buf, replay.Header{Scene: "arena", Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	live := newSession(t, arena(), func(o *Options) { o.Recorder = rec })
	steps(live, 40)
	live.FireEvent(engine.NewKeyDown("d"))
	steps(live, 20)
	live.FireEvent(engine.NewKeyDown("w"))
	steps(live, 10)
	live.FireEvent(engine.NewKeyUp("d"))
	steps(live, 30)

	if rec.Count() != 3 {
		t.Fatalf("recorded %d events, expected 3", rec.Count())
	}
	_, records, err := replay.ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	replayed := newSession(t, arena(), func(o *Options) { o.Replay = records })
	steps(replayed, 100)

	a, b := live.Level().Player.Body(), replayed.Level().Player.Body()
	if *a != *b {
		t.Errorf("replayed player = %+v, expected %+v", *b, *a)
	}
	if a.X0 <= 300 {
		t.Errorf("player X0 = %v, expected it to have walked right", a.X0)
	}
}

func TestSessionDropsEventsAfterOutcome(t *testing.T) {
	var buf bytes.Buffer
	rec, _ := replay.NewWriter(&buf, replay.Header{})

	sc := arena()
	sc.RequiredPills = 0
	sc.Door = config.PointConfig{X: 300, Y: 200}
	s := newSession(t, sc, func(o *Options) { o.Recorder = rec })
	steps(s, 3)

	s.FireEvent(engine.NewKeyDown("d"))
	if rec.Count() != 0 {
		t.Errorf("recorded %d events after the outcome, expected 0", rec.Count())
	}
}

func TestRunHeadless(t *testing.T) {
	store := &memStore{}
	opts := Options{
		Scene:   arena(),
		Game:    config.DefaultGameConfig(),
		Tileset: tileset(t),
		ScreenW: 40,
		ScreenH: 12,
		Store:   store,
	}

	res, err := RunHeadless(context.Background(), opts, 50)
	if err != nil {
		t.Fatalf("RunHeadless() error = %v", err)
	}
	if res.Outcome != Quit || res.Frames != 50 {
		t.Errorf("RunHeadless() = %+v, expected quit after 50 frames", res)
	}
	if len(store.runs) != 1 {
		t.Errorf("saved %d runs, expected 1", len(store.runs))
	}

	win := opts
	win.Scene.RequiredPills = 0
	win.Scene.Door = config.PointConfig{X: 300, Y: 200}
	win.Store = nil
	res, err = RunHeadless(context.Background(), win, 0)
	if err != nil {
		t.Fatalf("RunHeadless() error = %v", err)
	}
	if res.Outcome != Won || res.Frames >= DefaultMaxFrames {
		t.Errorf("RunHeadless() = %+v, expected an early win", res)
	}
}

func TestRunHeadlessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunHeadless(ctx, Options{
		Scene:   arena(),
		Game:    config.DefaultGameConfig(),
		Tileset: tileset(t),
		ScreenW: 40,
		ScreenH: 12,
	}, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunHeadless() error = %v, expected context.Canceled", err)
	}
}

func TestRunRealtime(t *testing.T) {
	opts := Options{
		Scene:   arena(),
		Game:    config.DefaultGameConfig(),
		Tileset: tileset(t),
		ScreenW: 40,
		ScreenH: 12,
	}

	res, err := RunRealtime(context.Background(), opts, 20, 1000)
	if err != nil {
		t.Fatalf("RunRealtime() error = %v", err)
	}
	if res.Outcome != Quit || res.Frames != 20 {
		t.Errorf("RunRealtime() = %+v, expected quit after 20 frames", res)
	}

	win := opts
	win.Scene.RequiredPills = 0
	win.Scene.Door = config.PointConfig{X: 300, Y: 200}
	res, err = RunRealtime(context.Background(), win, 500, 1000)
	if err != nil {
		t.Fatalf("RunRealtime() error = %v", err)
	}
	if res.Outcome != Won {
		t.Errorf("RunRealtime() outcome = %v, expected won", res.Outcome)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o        Outcome
		expected string
	}{
		{Playing, "playing"},
		{Won, "won"},
		{Died, "died"},
		{Quit, "quit"},
		{Outcome(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.expected {
			t.Errorf("Outcome(%d).String() = %q, expected %q", tt.o, got, tt.expected)
		}
	}
}
