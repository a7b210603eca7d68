package storage

import (
	"context"
	"errors"

	"evolvekit/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Store persists run configurations and per-generation population snapshots.
type Store interface {
	Init(ctx context.Context) error
	SaveRunConfig(ctx context.Context, cfg model.RunConfig) error
	GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error)
	// ListRuns returns every recorded run, oldest first.
	ListRuns(ctx context.Context) ([]model.RunConfig, error)
	SaveGeneration(ctx context.Context, snapshot model.GenerationSnapshot) error
	GetGeneration(ctx context.Context, runID string, generation int) (model.GenerationSnapshot, bool, error)
	// GetGenerations returns the snapshots of a run in generation order.
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationSnapshot, error)
	DeleteRun(ctx context.Context, runID string) error
	Reset(ctx context.Context) error
}
