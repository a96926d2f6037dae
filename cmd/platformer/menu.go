package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the game with a scene picker menu",
	Long: `Start the game in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a scene.
Esc in a scene pauses it; a second Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select scene
  Tab          - Best runs
  Q            - Quit

Examples:
  platformer menu
  platformer menu --fps 30
  platformer menu --db ./runs.db`,
	RunE: runMenu,
}

func init() {
	// Uses global flags from main.go (--fps, --seed, --db) and the play flags
	// that apply to every scene.
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	menuCmd.Flags().StringVar(&flagTileset, "tileset", "", "Path to custom tileset YAML")
	menuCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	menuCmd.Flags().StringVar(&flagPlayer, "player", envOr("USER", "player"), "Player name stored with runs")
}

func runMenu(_ *cobra.Command, _ []string) error {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return err
	}

	logger, closeLog := fileLogger("platformer")
	defer closeLog()

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		logger.Warn("runs database unavailable", "path", flagDBPath, "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	cfg := core.DefaultConfig()
	cfg.ScreenW, cfg.ScreenH = width, height
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	play := tui.PlayConfig{
		GamePath:    flagConfig,
		TilesetPath: flagTileset,
		Preset:      preset,
		Seed:        flagSeed,
		Player:      flagPlayer,
		FPS:         flagFPS,
		Logger:      logger,
	}

	return tui.RunApp(store, cfg, play)
}
