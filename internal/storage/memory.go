package storage

import (
	"context"
	"sort"
	"sync"

	"evolvekit/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	configs     map[string]model.RunConfig
	generations map[string]map[int]model.GenerationSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init prepares the store. Calling it again keeps existing runs.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.configs = make(map[string]model.RunConfig)
	s.generations = make(map[string]map[int]model.GenerationSnapshot)
	return nil
}

func (s *MemoryStore) SaveRunConfig(_ context.Context, cfg model.RunConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.configs[cfg.RunID] = cloneRunConfig(cfg)
	return nil
}

func (s *MemoryStore) GetRunConfig(_ context.Context, runID string) (model.RunConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.RunConfig{}, false, ErrNotInitialized
	}
	cfg, ok := s.configs[runID]
	if !ok {
		return model.RunConfig{}, false, nil
	}
	return cloneRunConfig(cfg), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	runs := make([]model.RunConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		runs = append(runs, cloneRunConfig(cfg))
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
		}
		return runs[i].RunID < runs[j].RunID
	})
	return runs, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, snapshot model.GenerationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	byGeneration := s.generations[snapshot.RunID]
	if byGeneration == nil {
		byGeneration = make(map[int]model.GenerationSnapshot)
		s.generations[snapshot.RunID] = byGeneration
	}
	byGeneration[snapshot.Generation] = cloneSnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context, runID string, generation int) (model.GenerationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.GenerationSnapshot{}, false, ErrNotInitialized
	}
	snapshot, ok := s.generations[runID][generation]
	if !ok {
		return model.GenerationSnapshot{}, false, nil
	}
	return cloneSnapshot(snapshot), true, nil
}

func (s *MemoryStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	byGeneration := s.generations[runID]
	snapshots := make([]model.GenerationSnapshot, 0, len(byGeneration))
	for _, snapshot := range byGeneration {
		snapshots = append(snapshots, cloneSnapshot(snapshot))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Generation < snapshots[j].Generation
	})
	return snapshots, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	delete(s.configs, runID)
	delete(s.generations, runID)
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.configs = make(map[string]model.RunConfig)
	s.generations = make(map[string]map[int]model.GenerationSnapshot)
	return nil
}

func cloneRunConfig(cfg model.RunConfig) model.RunConfig {
	if cfg.FitnessGoal != nil {
		goal := *cfg.FitnessGoal
		cfg.FitnessGoal = &goal
	}
	if cfg.ToleranceGoal != nil {
		tolerance := *cfg.ToleranceGoal
		cfg.ToleranceGoal = &tolerance
	}
	return cfg
}

func cloneSnapshot(snapshot model.GenerationSnapshot) model.GenerationSnapshot {
	chromosomes := make([]model.ChromosomeRecord, len(snapshot.Chromosomes))
	for i, c := range snapshot.Chromosomes {
		chromosomes[i] = model.ChromosomeRecord{
			Rank:  c.Rank,
			Genes: append([]any(nil), c.Genes...),
		}
		if c.Fitness != nil {
			fitness := *c.Fitness
			chromosomes[i].Fitness = &fitness
		}
	}
	snapshot.Chromosomes = chromosomes
	return snapshot
}
