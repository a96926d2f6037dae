package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/engine"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/replay"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/session"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// PlayConfig describes what a GameModel plays and how.
type PlayConfig struct {
	SceneID     string
	ScenePath   string // Custom layout file, overrides the search path
	GamePath    string // Custom game.yaml
	TilesetPath string // Custom tileset.yaml
	Preset      config.DifficultyPreset
	Seed        int64 // 0 picks a new seed for every run
	Player      string
	FPS         int
	ScreenW     int
	ScreenH     int

	// Watcher reloads the scene when its layout file changes.
	Watcher *config.Watcher
	// Recorder records the first run only.
	Recorder *replay.Writer
	Logger   *log.Logger
	// Standalone makes esc quit instead of returning to a menu.
	Standalone bool
}

type assets struct {
	game    config.GameConfig
	tileset *core.Tileset
	scene   config.SceneConfig
}

type assetsMsg struct {
	assets assets
	err    error
}

type reloadMsg struct {
	sceneID string
	path    string
}

type watchErrMsg struct {
	err error
}

// loadAssets reads the tuning, the tileset and the layout off the Update loop.
func loadAssets(cfg PlayConfig) tea.Cmd {
	return func() tea.Msg {
		game, err := config.LoadGame(cfg.GamePath)
		if err != nil {
			return assetsMsg{err: err}
		}
		tsCfg, err := config.LoadTileset(cfg.TilesetPath)
		if err != nil {
			return assetsMsg{err: err}
		}
		ts, err := scene.BuildTileset(tsCfg)
		if err != nil {
			return assetsMsg{err: err}
		}
		sc, err := registry.Load(cfg.SceneID, cfg.ScenePath)
		if err != nil {
			return assetsMsg{err: err}
		}
		return assetsMsg{assets: assets{game: game, tileset: ts, scene: sc}}
	}
}

// waitForReload blocks until the watcher reports a layout change.
func waitForReload(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			return reloadMsg{sceneID: config.SceneIDFromPath(path), path: path}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// GameModel is the Bubble Tea model for playing one scene. Every run of the
// scene is a new session; continue after a win or a death starts the next.
type GameModel struct {
	cfg    PlayConfig
	store  *storage.Store
	logger *log.Logger

	keys    *KeyMapper
	holds   *keyHolds
	sched   *frameScheduler
	spinner spinner.Model

	assets  *assets
	sess    *session.Session
	runs    int
	err     error
	notice  string
	width   int
	height  int
	loading bool

	quitting   bool
	backToMenu bool
}

// NewGameModel creates a new Bubble Tea model for the given scene.
func NewGameModel(cfg PlayConfig, store *storage.Store) GameModel {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
	)

	return GameModel{
		cfg:     cfg,
		store:   store,
		logger:  cfg.Logger,
		keys:    NewKeyMapper(),
		holds:   newKeyHolds(0),
		sched:   &frameScheduler{},
		spinner: sp,
		width:   cfg.ScreenW,
		height:  cfg.ScreenH,
		loading: true,
	}
}

// Init starts loading the scene.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadAssets(m.cfg), waitForReload(m.cfg.Watcher))
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case assetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("cannot load scene", "scene", m.cfg.SceneID, "err", msg.err)
			return m, nil
		}
		m.assets = &msg.assets
		m.holds = newKeyHolds(msg.assets.game.Player.KeyReleaseFrames)
		if err := m.startRun(); err != nil {
			m.err = err
			return m, nil
		}
		return m, tickCmd(m.cfg.FPS)

	case reloadMsg:
		return m.handleReload(msg)

	case watchErrMsg:
		m.logger.Warn("watch error", "err", msg.err)
		return m, waitForReload(m.cfg.Watcher)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// startRun ends the current session, if any, and starts a new one.
func (m *GameModel) startRun() error {
	m.finishRun()

	seed := m.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := session.Options{
		Scene:     m.assets.scene,
		Game:      m.assets.game,
		Preset:    m.cfg.Preset,
		Tileset:   m.assets.tileset,
		Seed:      seed,
		Player:    m.cfg.Player,
		ScreenW:   max(m.width, 1),
		ScreenH:   max(m.height-hudHeight, 1),
		Scheduler: m.sched,
		Logger:    m.logger,
	}
	if m.store != nil {
		opts.Store = m.store
	}
	if m.runs == 0 && m.cfg.Recorder != nil {
		opts.Recorder = m.cfg.Recorder
	}

	sess, err := session.New(opts)
	if err != nil {
		return err
	}
	m.sched.next = nil
	m.holds.reset()
	m.sess = sess
	m.runs++
	m.notice = ""
	return sess.Start()
}

// finishRun saves the current run once.
func (m *GameModel) finishRun() {
	if m.sess == nil {
		return
	}
	// The session logs a failed save.
	_, _ = m.sess.Finish()
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, key := m.keys.MapKey(msg)

	switch action {
	case ActionQuit:
		m.finishRun()
		m.quitting = true
		return m, tea.Quit

	case ActionBack:
		if m.sess != nil && m.sess.Outcome() == session.Playing && !m.sess.Paused() && m.err == nil {
			// Esc while running pauses first; a second esc leaves.
			m.sess.Pause()
			return m, nil
		}
		m.finishRun()
		if m.cfg.Standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	}

	if m.sess == nil {
		return m, nil
	}

	switch action {
	case ActionPause:
		m.sess.TogglePause()

	case ActionContinue:
		if m.sess.Outcome() != session.Playing {
			if err := m.startRun(); err != nil {
				m.err = err
			}
		}

	case ActionGame:
		if m.sess.Outcome() == session.Playing && !m.sess.Paused() {
			m.holds.press(key)
			m.sess.FireEvent(engine.NewKeyDown(key))
		}
	}

	return m, nil
}

// handleMouse turns a left click into pointer events in world coordinates.
func (m GameModel) handleMouse(msg tea.MouseMsg) {
	if m.sess == nil || m.sess.Paused() || msg.Button != tea.MouseButtonLeft {
		return
	}
	cy := msg.Y - hudHeight
	if cy < 0 {
		return
	}
	x, y := m.sess.Canvas().CellToWorld(msg.X, cy)

	switch msg.Action {
	case tea.MouseActionPress:
		m.sess.FireEvent(engine.NewPointerDown(x, y))
		m.sess.FireEvent(engine.NewScenePointerClick(x, y))
	case tea.MouseActionRelease:
		m.sess.FireEvent(engine.NewPointerUp(x, y))
		m.sess.FireEvent(engine.NewPointerClick(x, y))
	}
}

// handleResize processes window resize events. The world is stretched over
// the new size on the next frame.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.cfg.ScreenW = msg.Width
	m.cfg.ScreenH = msg.Height
	if m.sess != nil {
		m.sess.Resize(max(msg.Width, 1), max(msg.Height-hudHeight, 1))
	}
	return m, nil
}

// handleReload restarts the scene when its layout file changed.
func (m GameModel) handleReload(msg reloadMsg) (tea.Model, tea.Cmd) {
	next := waitForReload(m.cfg.Watcher)
	if m.assets == nil || msg.sceneID != m.assets.scene.ID {
		return m, next
	}

	sc, err := config.LoadScene(msg.sceneID, msg.path)
	if err != nil {
		m.notice = fmt.Sprintf("reload failed: %v", err)
		m.logger.Warn("scene reload failed", "path", msg.path, "err", err)
		return m, next
	}
	m.assets.scene = sc
	if err := m.startRun(); err != nil {
		m.err = err
		return m, next
	}
	m.notice = "scene reloaded"
	m.logger.Info("scene reloaded", "scene", sc.ID, "path", msg.path)
	return m, next
}

// handleTick runs one engine frame.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}

	if m.sess.Outcome() == session.Playing && !m.sess.Paused() {
		for _, up := range m.holds.tick() {
			m.sess.FireEvent(up)
		}
	}
	m.sched.runFrame()

	if err := m.sess.Err(); err != nil {
		m.err = err
		return m, nil
	}
	if m.sess.Outcome() != session.Playing {
		m.finishRun()
	}

	return m, tickCmd(m.cfg.FPS)
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		msg := errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + hudDimStyle.Render("esc: back   q: quit")
		if errors.Is(m.err, engine.ErrRenderTarget) {
			msg = errorStyle.Render("The display went away.") + "\n\n" + hudDimStyle.Render("q: quit")
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}
	if m.loading || m.sess == nil {
		title := registry.Title(m.cfg.SceneID)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			fmt.Sprintf("%s Loading %s...", m.spinner.View(), title))
	}

	snap := m.sess.Snapshot()
	screen := m.sess.Screen()
	if lines := outcomePopup(snap); lines != nil {
		drawPopup(screen, lines...)
	}

	var b strings.Builder
	b.WriteString(renderHUD(snap, m.width, m.notice))
	b.WriteString("\n")
	b.WriteString(RenderScreen(screen))
	return b.String()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Session returns the current run, or nil while loading.
func (m GameModel) Session() *session.Session {
	return m.sess
}

// Run starts the Bubble Tea program for a single scene.
func Run(cfg PlayConfig, store *storage.Store) error {
	cfg.Standalone = true
	model := NewGameModel(cfg, store)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Scene clicks attack
	)

	_, err := p.Run()
	return err
}
