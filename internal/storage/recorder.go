package storage

import (
	"context"
	"time"

	"evolvekit/internal/model"
)

// CreatedAtLayout is a fixed-width UTC timestamp, so creation times sort
// lexically.
const CreatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Recorder adapts a Store to the narrow interface the evolution loop writes
// through. It stamps record versions and the run creation time.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

func (r *Recorder) CreateTables(ctx context.Context) error {
	return r.store.Init(ctx)
}

func (r *Recorder) RecordConfig(ctx context.Context, cfg model.RunConfig) error {
	cfg.VersionedRecord = currentVersion()
	if cfg.CreatedAtUTC == "" {
		cfg.CreatedAtUTC = r.now().UTC().Format(CreatedAtLayout)
	}
	return r.store.SaveRunConfig(ctx, cfg)
}

func (r *Recorder) RecordGeneration(ctx context.Context, snapshot model.GenerationSnapshot) error {
	snapshot.VersionedRecord = currentVersion()
	return r.store.SaveGeneration(ctx, snapshot)
}
