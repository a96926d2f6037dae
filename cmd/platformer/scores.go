package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagScoresLimit       int
	flagScoresInteractive bool
	flagScoresClear       bool
	flagScoresAll         bool
	flagScoresRun         string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [scene]",
	Short: "Show the best runs of a scene",
	Long: `Display the best runs of the specified scene (default: pharmacy).
Wins rank first, then more pills, then fewer frames.

Examples:
  platformer scores
  platformer scores training --limit 20
  platformer scores --interactive
  platformer scores pharmacy --clear
  platformer scores --all
  platformer scores --run 01J9Z3...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVarP(&flagScoresInteractive, "interactive", "i", false, "Browse every scene in the scoreboard screen")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete every stored run of the scene")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "Summarize every played scene")
	scoresCmd.Flags().StringVar(&flagScoresRun, "run", "", "Show a single run by its ID")
}

func runScores(cmd *cobra.Command, args []string) error {
	sceneID, err := sceneArg(args)
	if err != nil {
		return err
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening runs database: %w", err)
	}
	defer store.Close()

	if flagScoresInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		_, err := tui.RunScoreboard(store, width, height)
		return err
	}

	switch {
	case flagScoresRun != "":
		return printRun(store, flagScoresRun)
	case flagScoresAll:
		return printAllStats(store)
	}

	if flagScoresClear {
		if err := store.ClearRuns(sceneID); err != nil {
			return fmt.Errorf("error clearing runs: %w", err)
		}
		fmt.Printf("Cleared every run of %s.\n", registry.Title(sceneID))
		return nil
	}

	runs, err := store.TopRuns(sceneID, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("error retrieving runs: %w", err)
	}

	fmt.Printf("Best Runs - %s\n", registry.Title(sceneID))
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'platformer play %s' to set the first record!\n", sceneID)
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-12s  %-7s  %5s  %6s  %s\n", "Rank", "Player", "Outcome", "Pills", "Time", "Date")
	fmt.Printf("  %-4s  %-12s  %-7s  %5s  %6s  %s\n", "----", "------", "-------", "-----", "----", "----")

	for i, r := range runs {
		secs := r.Frames / 60
		fmt.Printf("  %-4d  %-12s  %-7s  %5d  %3d:%02d  %s\n",
			i+1, r.Player, r.Outcome, r.Pills, secs/60, secs%60, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	// Show totals
	if stats, err := store.Stats(sceneID); err == nil && stats != nil {
		fmt.Println()
		fmt.Printf("%d runs, %d wins, best %d pills, average %.1f\n", stats.Runs, stats.Wins, stats.BestPills, stats.AvgPills)
	}
	return nil
}

func printRun(store *storage.Store, id string) error {
	run, err := store.RunByID(id)
	if err != nil {
		return fmt.Errorf("error retrieving run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run with id %q", id)
	}

	secs := run.Frames / 60
	fmt.Printf("Run %s\n\n", run.ID)
	fmt.Printf("  Scene:   %s\n", registry.Title(run.Scene))
	fmt.Printf("  Player:  %s\n", run.Player)
	fmt.Printf("  Outcome: %s\n", run.Outcome)
	fmt.Printf("  Pills:   %d\n", run.Pills)
	fmt.Printf("  Time:    %d:%02d (%d frames)\n", secs/60, secs%60, run.Frames)
	fmt.Printf("  Seed:    %d\n", run.Seed)
	fmt.Printf("  Date:    %s\n", run.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func printAllStats(store *storage.Store) error {
	all, err := store.AllStats()
	if err != nil {
		return fmt.Errorf("error retrieving stats: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("  %-20s  %5s  %5s  %10s  %9s  %s\n", "Scene", "Runs", "Wins", "Best pills", "Avg pills", "Last played")
	fmt.Printf("  %-20s  %5s  %5s  %10s  %9s  %s\n", "-----", "----", "----", "----------", "---------", "-----------")
	for _, sc := range registry.List() {
		st, ok := all[sc.ID]
		if !ok {
			continue
		}
		fmt.Printf("  %-20s  %5d  %5d  %10d  %9.1f  %s\n",
			sc.Title, st.Runs, st.Wins, st.BestPills, st.AvgPills, st.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
