package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/replay"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/session"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagSimFrames   int
	flagSimReplay   string
	flagSimRealtime bool
	flagSimSave     bool
	flagSimShow     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scene]",
	Short: "Run a scene without a terminal",
	Long: `Run a scene headless and print how the run ended.

Without --replay nobody presses a key: the player stands still until the
frame limit. With --replay the recorded events are fired at the frames they
were recorded at, with the recorded seed, so the run ends exactly as it did
on screen (use the same --config and --difficulty as the recording).

Examples:
  platformer simulate --frames 600
  platformer simulate --replay run.replay
  platformer simulate training --realtime --frames 300 --show`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimFrames, "frames", session.DefaultMaxFrames, "Stop after this many frames")
	simulateCmd.Flags().StringVar(&flagSimReplay, "replay", "", "Replay file recorded with 'play --record'")
	simulateCmd.Flags().BoolVar(&flagSimRealtime, "realtime", false, "Pace frames at --fps instead of running flat out")
	simulateCmd.Flags().BoolVar(&flagSimSave, "save", false, "Store the run in the runs database")
	simulateCmd.Flags().BoolVar(&flagSimShow, "show", false, "Print the last frame")
	simulateCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	simulateCmd.Flags().StringVar(&flagTileset, "tileset", "", "Path to custom tileset YAML")
	simulateCmd.Flags().StringVar(&flagSceneFile, "scene-file", "", "Path to custom scene layout YAML")
	simulateCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr, "simulate")

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return err
	}

	opts := session.Options{
		Preset:  preset,
		Seed:    flagSeed,
		Player:  "simulate",
		ScreenW: 80,
		ScreenH: 24,
		Logger:  logger,
	}

	sceneID := defaultScene
	if flagSimReplay != "" {
		header, records, readErr := replay.Open(flagSimReplay)
		if readErr != nil {
			return readErr
		}
		logger.Info("replay loaded", "id", header.ID, "scene", header.Scene, "events", len(records), "recorded", header.CreatedAt)
		sceneID = header.Scene
		opts.Seed = header.Seed
		opts.Player = header.Player
		opts.Replay = records
		// Run at least until the last recorded event has fired.
		if last := replay.NewPlayer(records).LastFrame(); uint64(flagSimFrames) <= last {
			flagSimFrames = int(last) + 1
		}
		if len(args) > 0 && args[0] != sceneID {
			return fmt.Errorf("replay was recorded on scene %q, not %q", sceneID, args[0])
		}
	} else if len(args) > 0 {
		sceneID = args[0]
	}
	if !registry.Exists(sceneID) {
		return fmt.Errorf("unknown scene %q (run 'platformer list' to see available scenes)", sceneID)
	}

	if opts.Game, err = config.LoadGame(flagConfig); err != nil {
		return err
	}
	tsCfg, err := config.LoadTileset(flagTileset)
	if err != nil {
		return err
	}
	if opts.Tileset, err = scene.BuildTileset(tsCfg); err != nil {
		return err
	}
	if opts.Scene, err = registry.Load(sceneID, flagSceneFile); err != nil {
		return err
	}

	if flagSimSave {
		store, openErr := storage.Open(flagDBPath)
		if openErr != nil {
			logger.Warn("runs database unavailable, run not saved", "path", flagDBPath, "err", openErr)
		} else {
			defer store.Close()
			opts.Store = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var res session.Result
	if flagSimRealtime {
		res, err = session.RunRealtime(ctx, opts, flagSimFrames, flagFPS)
	} else {
		res, err = session.RunHeadless(ctx, opts, flagSimFrames)
	}
	if err != nil {
		return err
	}
	if flagSimShow && res.Screen != nil {
		fmt.Println(res.Screen.String())
		fmt.Println()
	}

	fmt.Printf("Scene:   %s\n", registry.Title(sceneID))
	fmt.Printf("Outcome: %s\n", res.Outcome)
	fmt.Printf("Pills:   %d/%d\n", res.Pills, opts.Scene.RequiredPills)
	fmt.Printf("Frames:  %d\n", res.Frames)
	fmt.Printf("Run ID:  %s\n", res.Run.ID)
	return nil
}
