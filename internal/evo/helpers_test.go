package evo

import (
	"context"
	"math/rand"
	"testing"

	"evolvekit/internal/model"
)

func sumFitness(c *model.Chromosome) (float64, error) {
	total := 0.0
	for _, g := range c.Genes {
		v, _ := asFloat(g.Value)
		total += v
	}
	return total, nil
}

func bitGene(rng *rand.Rand) any {
	return rng.Intn(2)
}

func newTestGA(t *testing.T, mutate func(cfg *Config)) *GA {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 11
	cfg.Fitness = sumFitness
	cfg.GeneFunc = bitGene
	if mutate != nil {
		mutate(&cfg)
	}
	ga, err := New(cfg)
	if err != nil {
		t.Fatalf("new ga: %v", err)
	}
	return ga
}

// scoredPopulation builds a population whose chromosomes hold their own
// fitness as the single gene, in the given order.
func scoredPopulation(fitness ...float64) *model.Population {
	chromosomes := make([]*model.Chromosome, len(fitness))
	for i, f := range fitness {
		c := model.ChromosomeOf(f)
		c.Fitness = model.Evaluated(f)
		chromosomes[i] = c
	}
	return model.NewPopulation(chromosomes)
}

type recordingRecorder struct {
	tablesCreated int
	configs       []model.RunConfig
	snapshots     []model.GenerationSnapshot
}

func (r *recordingRecorder) CreateTables(context.Context) error {
	r.tablesCreated++
	return nil
}

func (r *recordingRecorder) RecordConfig(_ context.Context, cfg model.RunConfig) error {
	r.configs = append(r.configs, cfg)
	return nil
}

func (r *recordingRecorder) RecordGeneration(_ context.Context, snapshot model.GenerationSnapshot) error {
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}
