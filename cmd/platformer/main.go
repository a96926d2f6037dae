// platformer is a side-view platformer that runs in the terminal.
//
// Usage:
//
//	platformer list              - List available scenes
//	platformer play [scene]      - Play a scene
//	platformer menu              - Start menu to pick scenes interactively
//	platformer serve             - Start SSH server for remote play
//	platformer scores [scene]    - Show the best runs of a scene
//	platformer simulate [scene]  - Run a scene without a terminal
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible pill colors
//	--db <path>          - Set database path (default: ~/.platformer/runs.db)
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/registry"

	// Register the built-in scenes
	_ "github.com/vovakirdan/tui-platformer/internal/scene"
)

// defaultScene is played when no scene is named.
const defaultScene = "pharmacy"

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platformer",
	Short: "Pill Run - a platformer in your terminal",
	Long: `Pill Run is a side-view platformer played in the terminal.
Collect enough pills, avoid or attack the enemies, and reach the door.

Available commands:
  list      - Show all available scenes
  play      - Play a scene directly
  menu      - Interactive scene picker menu
  serve     - Start SSH server for remote play
  scores    - View the best runs
  simulate  - Run a scene headless, optionally from a replay

Examples:
  platformer list
  platformer play pharmacy
  platformer menu
  platformer serve --ssh :2222
  platformer simulate --replay run.replay`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.platformer/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr("PLATFORMER_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger creates a logger writing to w at the --log-level level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// fileLogger logs to ~/.platformer/platformer.log so the alt screen stays
// clean. It falls back to discarding output when the file cannot be opened.
func fileLogger(prefix string) (*log.Logger, func()) {
	dir := config.UserDir()
	if dir == "" {
		return log.New(io.Discard), func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "platformer.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	return newLogger(f, prefix), func() { f.Close() }
}

// sceneArg returns the scene named on the command line, or the default one.
func sceneArg(args []string) (string, error) {
	id := defaultScene
	if len(args) > 0 {
		id = args[0]
	}
	if !registry.Exists(id) {
		return "", fmt.Errorf("unknown scene %q (run 'platformer list' to see available scenes)", id)
	}
	return id, nil
}
