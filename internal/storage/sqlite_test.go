//go:build sqlite

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRunAndGenerationRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "evolvekit.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	cfg := testRunConfig("run-1", "2026-01-01T00:00:00.000000000Z")
	if err := store.SaveRunConfig(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	loaded, ok, err := store.GetRunConfig(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get config: ok=%v err=%v", ok, err)
	}
	if loaded.Problem != "onemax" || loaded.FitnessGoal == nil || *loaded.FitnessGoal != 10 {
		t.Fatalf("unexpected config loaded: %+v", loaded)
	}

	for _, generation := range []int{1, 0} {
		if err := store.SaveGeneration(ctx, testSnapshot("run-1", generation, float64(generation+5))); err != nil {
			t.Fatalf("save generation: %v", err)
		}
	}
	// upsert replaces the stored payload
	if err := store.SaveGeneration(ctx, testSnapshot("run-1", 1, 42)); err != nil {
		t.Fatalf("save generation: %v", err)
	}

	snapshots, err := store.GetGenerations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if len(snapshots) != 2 || snapshots[0].Generation != 0 || snapshots[1].Generation != 1 {
		t.Fatalf("unexpected snapshots: %+v", snapshots)
	}
	if best, _ := snapshots[1].BestFitness(); best != 42 {
		t.Fatalf("expected upserted best fitness 42, got %v", best)
	}

	var stored float64
	if err := store.db.QueryRowContext(ctx, `SELECT best_fitness FROM generations WHERE run_id = ? AND generation = 1`, "run-1").Scan(&stored); err != nil {
		t.Fatalf("query best fitness column: %v", err)
	}
	if stored != 42 {
		t.Fatalf("expected indexed best fitness 42, got %v", stored)
	}
}

func TestSQLiteStoreListDeleteReset(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "evolvekit.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.SaveRunConfig(ctx, testRunConfig("run-b", "2026-01-02T00:00:00.000000000Z")); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := store.SaveRunConfig(ctx, testRunConfig("run-a", "2026-01-03T00:00:00.000000000Z")); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := store.SaveGeneration(ctx, testSnapshot("run-b", 0, 1)); err != nil {
		t.Fatalf("save generation: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-b" {
		t.Fatalf("expected runs ordered by creation time, got %+v", runs)
	}

	if err := store.DeleteRun(ctx, "run-b"); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if snapshots, _ := store.GetGenerations(ctx, "run-b"); len(snapshots) != 0 {
		t.Fatalf("expected deleted generations, got %d", len(snapshots))
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if runs, _ := store.ListRuns(ctx); len(runs) != 0 {
		t.Fatalf("expected empty store after reset, got %d", len(runs))
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "evolvekit.db"))
	if _, err := store.ListRuns(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
