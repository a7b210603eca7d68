package storage

import (
	"context"
	"testing"
	"time"

	"evolvekit/internal/model"
)

func TestRecorderStampsVersionsAndCreationTime(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	recorder := NewRecorder(store)
	recorder.now = func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 8, time.FixedZone("CET", 3600))
	}

	if err := recorder.CreateTables(ctx); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	if err := recorder.RecordConfig(ctx, model.RunConfig{RunID: "run-1"}); err != nil {
		t.Fatalf("record config: %v", err)
	}
	snapshot := model.GenerationSnapshot{RunID: "run-1", Generation: 0}
	if err := recorder.RecordGeneration(ctx, snapshot); err != nil {
		t.Fatalf("record generation: %v", err)
	}

	cfg, ok, err := store.GetRunConfig(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get config: ok=%v err=%v", ok, err)
	}
	if cfg.CreatedAtUTC != "2026-03-04T04:06:07.000000008Z" {
		t.Fatalf("unexpected creation time %q", cfg.CreatedAtUTC)
	}
	if checkVersion(cfg.VersionedRecord) != nil {
		t.Fatalf("expected current version, got %+v", cfg.VersionedRecord)
	}
	stored, ok, err := store.GetGeneration(ctx, "run-1", 0)
	if err != nil || !ok || checkVersion(stored.VersionedRecord) != nil {
		t.Fatalf("expected versioned generation, got %+v ok=%v err=%v", stored, ok, err)
	}
}
