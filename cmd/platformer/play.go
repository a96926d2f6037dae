package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/replay"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagConfig     string
	flagTileset    string
	flagSceneFile  string
	flagDifficulty string
	flagWatch      string
	flagRecord     string
	flagPlayer     string
)

var playCmd = &cobra.Command{
	Use:   "play [scene]",
	Short: "Play a scene",
	Long: `Start playing the specified scene (default: pharmacy).

Controls:
  A/D, Left/Right  - Walk
  W, Up, Space     - Jump
  Mouse click      - Attack in the facing direction
  P                - Pause
  Enter            - Play again (after winning or dying)
  Esc/B            - Pause, then leave
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Enemies start slow, speed up as you collect pills
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  platformer play
  platformer play training --difficulty easy
  platformer play --config ./my-game.yaml --tileset ./my-tiles.yaml
  platformer play --scene-file ./configs/scenes/pharmacy.yaml --watch ./configs/scenes
  platformer play --record run.replay --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagTileset, "tileset", "", "Path to custom tileset YAML")
	playCmd.Flags().StringVar(&flagSceneFile, "scene-file", "", "Path to custom scene layout YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagWatch, "watch", "", "Reload the scene when its layout changes in this directory")
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Record the first run to this replay file")
	playCmd.Flags().StringVar(&flagPlayer, "player", envOr("USER", "player"), "Player name stored with runs")
}

func runPlay(cmd *cobra.Command, args []string) error {
	sceneID, err := sceneArg(args)
	if err != nil {
		return err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return err
	}

	logger, closeLog := fileLogger("platformer")
	defer closeLog()

	// Get terminal size for the first frame
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	play := tui.PlayConfig{
		SceneID:     sceneID,
		ScenePath:   flagSceneFile,
		GamePath:    flagConfig,
		TilesetPath: flagTileset,
		Preset:      preset,
		Seed:        flagSeed,
		Player:      flagPlayer,
		FPS:         flagFPS,
		ScreenW:     width,
		ScreenH:     height,
		Logger:      logger,
	}

	if flagWatch != "" {
		w, watchErr := config.NewWatcher(flagWatch)
		if watchErr != nil {
			return fmt.Errorf("cannot watch %s: %w", flagWatch, watchErr)
		}
		defer w.Close()
		play.Watcher = w
	}

	if flagRecord != "" {
		// A recorded run needs a known seed to replay the same pills.
		if play.Seed == 0 {
			play.Seed = time.Now().UnixNano()
		}
		rec, recErr := replay.Create(flagRecord, replay.Header{
			Scene:  sceneID,
			Seed:   play.Seed,
			FPS:    flagFPS,
			Player: flagPlayer,
		})
		if recErr != nil {
			return recErr
		}
		defer func() {
			if closeErr := rec.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: replay not complete: %v\n", closeErr)
				return
			}
			fmt.Printf("Recorded %d events to %s (replay id %s)\n", rec.Count(), flagRecord, rec.Header().ID)
		}()
		play.Recorder = rec
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the game still works
		logger.Warn("runs database unavailable", "path", flagDBPath, "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(play, store); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}
