package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRank(t *testing.T) {
	store := openStore(t)

	runs := []Run{
		{ID: "a", Scene: "pharmacy", Outcome: OutcomeDied, Pills: 30, Frames: 100},
		{ID: "b", Scene: "pharmacy", Outcome: OutcomeWon, Pills: 14, Frames: 900},
		{ID: "c", Scene: "pharmacy", Outcome: OutcomeWon, Pills: 14, Frames: 600},
		{ID: "d", Scene: "pharmacy", Outcome: OutcomeWon, Pills: 20, Frames: 2000},
		{ID: "e", Scene: "training", Outcome: OutcomeWon, Pills: 5, Frames: 50},
	}
	for _, r := range runs {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", r.ID, err)
		}
	}

	top, err := store.TopRuns("pharmacy", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}

	expected := []string{"d", "c", "b", "a"}
	if len(top) != len(expected) {
		t.Fatalf("TopRuns() returned %d runs, expected %d", len(top), len(expected))
	}
	for i, id := range expected {
		if top[i].ID != id {
			t.Errorf("TopRuns()[%d] = %s, expected %s", i, top[i].ID, id)
		}
	}
}

func TestStoreTopRunsLimit(t *testing.T) {
	store := openStore(t)

	for i, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		store.SaveRun(Run{ID: id, Scene: "test", Outcome: OutcomeDied, Pills: (i + 1) * 2})
	}

	// Request only top 3
	runs, err := store.TopRuns("test", 3)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs with limit, got %d", len(runs))
	}
	if runs[0].Pills != 10 || runs[1].Pills != 8 || runs[2].Pills != 6 {
		t.Errorf("Runs not in expected order: %v", runs)
	}
}

func TestStoreBestRunAndByID(t *testing.T) {
	store := openStore(t)

	best, err := store.BestRun("pharmacy")
	if err != nil {
		t.Fatalf("BestRun() failed: %v", err)
	}
	if best != nil {
		t.Errorf("BestRun() on empty scene = %+v, expected nil", best)
	}

	store.SaveRun(Run{ID: "x", Scene: "pharmacy", Player: "ann", Outcome: OutcomeQuit, Pills: 3, Frames: 42, Seed: 7})
	store.SaveRun(Run{ID: "y", Scene: "pharmacy", Outcome: OutcomeWon, Pills: 14, Frames: 700})

	best, err = store.BestRun("pharmacy")
	if err != nil || best == nil || best.ID != "y" {
		t.Fatalf("BestRun() = %+v, %v, expected run y", best, err)
	}

	got, err := store.RunByID("x")
	if err != nil || got == nil {
		t.Fatalf("RunByID() = %+v, %v", got, err)
	}
	if got.Player != "ann" || got.Frames != 42 || got.Seed != 7 || got.Outcome != OutcomeQuit {
		t.Errorf("RunByID() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("RunByID() CreatedAt is zero")
	}

	missing, err := store.RunByID("nope")
	if err != nil || missing != nil {
		t.Errorf("RunByID(nope) = %+v, %v, expected nil, nil", missing, err)
	}
}

func TestStoreSaveRunErrors(t *testing.T) {
	store := openStore(t)

	if err := store.SaveRun(Run{Scene: "pharmacy"}); err == nil {
		t.Error("SaveRun() without id should fail")
	}
	store.SaveRun(Run{ID: "dup", Scene: "pharmacy", Outcome: OutcomeWon})
	if err := store.SaveRun(Run{ID: "dup", Scene: "pharmacy", Outcome: OutcomeWon}); err == nil {
		t.Error("SaveRun() with a duplicate id should fail")
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openStore(t)

	store.SaveRun(Run{ID: "1", Scene: "pharmacy", Outcome: OutcomeWon})
	store.SaveRun(Run{ID: "2", Scene: "pharmacy", Outcome: OutcomeDied})
	store.SaveRun(Run{ID: "3", Scene: "training", Outcome: OutcomeWon})

	if err := store.ClearRuns("pharmacy"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	pharmacy, _ := store.TopRuns("pharmacy", 10)
	if len(pharmacy) != 0 {
		t.Errorf("Expected 0 pharmacy runs after clear, got %d", len(pharmacy))
	}
	training, _ := store.TopRuns("training", 10)
	if len(training) != 1 {
		t.Errorf("Training runs should not be affected by clearing pharmacy")
	}
}

func TestStoreStats(t *testing.T) {
	store := openStore(t)

	empty, err := store.Stats("pharmacy")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if empty.Runs != 0 || empty.Wins != 0 || empty.BestPills != 0 {
		t.Errorf("Stats() on empty scene = %+v", empty)
	}

	store.SaveRun(Run{ID: "1", Scene: "pharmacy", Outcome: OutcomeWon, Pills: 14})
	store.SaveRun(Run{ID: "2", Scene: "pharmacy", Outcome: OutcomeDied, Pills: 4})
	store.SaveRun(Run{ID: "3", Scene: "training", Outcome: OutcomeWon, Pills: 5})

	st, err := store.Stats("pharmacy")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Runs != 2 || st.Wins != 1 || st.BestPills != 14 || st.AvgPills != 9 {
		t.Errorf("Stats() = %+v, expected 2 runs, 1 win, best 14, avg 9", st)
	}

	all, err := store.AllStats()
	if err != nil {
		t.Fatalf("AllStats() failed: %v", err)
	}
	if len(all) != 2 || all["training"].Wins != 1 {
		t.Errorf("AllStats() = %+v", all)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
