package stats

import (
	"context"
	"errors"
	"fmt"

	"evolvekit/internal/model"
)

var ErrRunNotFound = errors.New("run not found")

// RunReader is the read side of a store. Reports never see a live GA.
type RunReader interface {
	GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error)
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationSnapshot, error)
}

// LoadHistory reads a run's configuration and summarizes each of its
// persisted generations.
func LoadHistory(ctx context.Context, reader RunReader, runID string) (model.RunConfig, []GenerationSummary, error) {
	cfg, ok, err := reader.GetRunConfig(ctx, runID)
	if err != nil {
		return model.RunConfig{}, nil, err
	}
	if !ok {
		return model.RunConfig{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	snapshots, err := reader.GetGenerations(ctx, runID)
	if err != nil {
		return model.RunConfig{}, nil, err
	}
	history, err := SummarizeRun(snapshots)
	if err != nil {
		return model.RunConfig{}, nil, err
	}
	return cfg, history, nil
}
