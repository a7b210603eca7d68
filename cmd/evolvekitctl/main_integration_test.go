//go:build sqlite

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLiteCommandsShareRunsAcrossInvocations(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "evolvekit.db")
	store := []string{"--store", "sqlite", "--db-path", dbPath}

	if _, err := captureStdout(func() error {
		return run(ctx, append([]string{"init"}, store...))
	}); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, id := range []string{"first", "second"} {
		args := append([]string{"run", "--problem", "is_it_5", "--gens", "3", "--run-id", id}, store...)
		if _, err := captureStdout(func() error { return run(ctx, args) }); err != nil {
			t.Fatalf("run %s: %v", id, err)
		}
	}

	out, err := captureStdout(func() error {
		return run(ctx, append([]string{"runs", "--json"}, store...))
	})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []struct {
		RunID       string
		Generations int
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs %q: %v", out, err)
	}
	if len(runs) != 2 || runs[0].RunID != "second" || runs[0].Generations != 3 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, err = captureStdout(func() error {
		return run(ctx, append([]string{"fitness", "--latest"}, store...))
	})
	if err != nil {
		t.Fatalf("fitness: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 {
		t.Fatalf("expected 3 generations of history, got %q", out)
	}

	png := filepath.Join(dir, "first.png")
	if _, err := captureStdout(func() error {
		return run(ctx, append([]string{"plot", "--run-id", "first", "--out", png}, store...))
	}); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Fatalf("expected plot at %s: %v", png, err)
	}

	if _, err := captureStdout(func() error {
		return run(ctx, append([]string{"delete", "--run-id", "first"}, store...))
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := captureStdout(func() error {
		return run(ctx, append([]string{"reset"}, store...))
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, err = captureStdout(func() error {
		return run(ctx, append([]string{"runs"}, store...))
	})
	if err != nil || strings.TrimSpace(out) != "no runs found" {
		t.Fatalf("expected empty store after reset, got %q %v", out, err)
	}
}
