package evo

import (
	"math"
	"math/rand"
	"testing"

	"evolvekit/internal/model"
)

func TestAdaptWeakensSelectionWhenHalfGapDominates(t *testing.T) {
	crossings := 0
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PercentConverged = 0.5
		cfg.AdaptRate = 0.1
		cfg.CrossoverIndividual = func(_ *GA, a, _ *model.Chromosome, _ float64) (*model.Chromosome, error) {
			crossings++
			return a.Clone(), nil
		}
	})
	ga.Population = scoredPopulation(100, 90, 80, 70, 60, 50, 40, 30, 20, 10)

	if err := ga.Adapt(); err != nil {
		t.Fatalf("adapt: %v", err)
	}

	// amount converged 5: best 100, half point 80, quarter point 90, so the
	// half gap (20/2) equals the quarter gap and the plain multiplier applies.
	assertClose(t, "selection_probability", ga.SelectionProbability, 0.5/1.1)
	assertClose(t, "chromosome_mutation_rate", ga.ChromosomeMutationRate, 0.15*1.1)
	assertClose(t, "gene_mutation_rate", ga.GeneMutationRate, MinAdaptiveMutationRate*1.1)
	if crossings != 0 {
		t.Fatalf("expected no forced crossing for 5 converged, got %d", crossings)
	}
}

func TestAdaptClampsMutationRatesAtUpperBound(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.AdaptRate = 0.1
		cfg.ChromosomeMutationRate = 0.24
	})
	ga.Population = scoredPopulation(100, 90, 80, 70, 60, 50, 40, 30, 20, 10)

	if err := ga.Adapt(); err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if ga.ChromosomeMutationRate != MaxAdaptiveMutationRate {
		t.Fatalf("expected rate clamped to %v, got %v", MaxAdaptiveMutationRate, ga.ChromosomeMutationRate)
	}
}

func TestAdaptStrengthensSelectionWhenQuarterGapDominates(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.AdaptRate = 0.1
		cfg.SelectionProbability = 0.5
	})
	// quarter point 10 away, half point 11 away: tol_half 5.5 < tol_quarter 10.
	ga.Population = scoredPopulation(100, 90, 89, 88, 87, 86, 85, 84, 83, 82)

	if err := ga.Adapt(); err != nil {
		t.Fatalf("adapt: %v", err)
	}
	assertClose(t, "selection_probability", ga.SelectionProbability, 0.5*1.1)
	assertClose(t, "chromosome_mutation_rate", ga.ChromosomeMutationRate, 0.15/1.1)
	if ga.GeneMutationRate != MinAdaptiveMutationRate {
		t.Fatalf("expected gene rate clamped to %v, got %v", MinAdaptiveMutationRate, ga.GeneMutationRate)
	}
}

func TestAdaptKeepsRatesWithinBounds(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.AdaptRate = 0.5
		cfg.PopulationSize = 16
	})
	rng := rand.New(rand.NewSource(5))
	for round := 0; round < 500; round++ {
		fitness := make([]float64, 16)
		for i := range fitness {
			fitness[i] = rng.NormFloat64() * 100
		}
		ga.Population = scoredPopulation(fitness...)
		if err := ga.Population.SortByBestFitness(ga.Target); err != nil {
			t.Fatalf("sort: %v", err)
		}
		if err := ga.Adapt(); err != nil {
			t.Fatalf("adapt: %v", err)
		}
		if ga.SelectionProbability < MinAdaptiveSelectionProbability || ga.SelectionProbability > MaxAdaptiveSelectionProbability {
			t.Fatalf("round %d selection probability out of bounds: %v", round, ga.SelectionProbability)
		}
		for _, rate := range []float64{ga.ChromosomeMutationRate, ga.GeneMutationRate} {
			if rate < MinAdaptiveMutationRate || rate > MaxAdaptiveMutationRate {
				t.Fatalf("round %d mutation rate out of bounds: %v", round, rate)
			}
		}
	}
}

func TestAdaptForcesCrossingOfWorstWithBest(t *testing.T) {
	crossings := 0
	weights := []float64{}
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PopulationSize = 20
		cfg.PercentConverged = 1
		cfg.AdaptRate = 0.1
		cfg.CrossoverIndividual = func(_ *GA, _, b *model.Chromosome, weight float64) (*model.Chromosome, error) {
			crossings++
			weights = append(weights, weight)
			if v, _ := b.Fitness.Value(); v != 200 {
				t.Fatalf("expected best chromosome as second parent, got %v", v)
			}
			return model.ChromosomeOf(1000.0), nil
		}
	})
	fitness := make([]float64, 20)
	for i := range fitness {
		fitness[i] = float64(200 - 10*i)
	}
	ga.Population = scoredPopulation(fitness...)

	if err := ga.Adapt(); err != nil {
		t.Fatalf("adapt: %v", err)
	}
	// amount converged 20 crosses k = 1..4 from the end.
	if crossings != 4 {
		t.Fatalf("expected 4 forced crossings, got %d", crossings)
	}
	for _, w := range weights {
		if w != 0.5 {
			t.Fatalf("expected weight capped at 0.5, got %v", w)
		}
	}
	for i := 0; i < 4; i++ {
		if v, _ := ga.Population.At(i).Fitness.Value(); v != 1000 {
			t.Fatalf("expected evaluated crossed children sorted first, got %v at %d", v, i)
		}
	}
	if ga.Population.Len() != 20 {
		t.Fatalf("expected population size preserved, got %d", ga.Population.Len())
	}
}

func TestAdaptIsNoOpWithoutAdaptRate(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.AdaptRate = 0
	})
	ga.Population = scoredPopulation(100, 90, 80, 70, 60, 50, 40, 30, 20, 10)
	if err := ga.Adapt(); err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if ga.SelectionProbability != DefaultSelectionProbability || ga.ChromosomeMutationRate != DefaultChromosomeMutationRate {
		t.Fatalf("expected rates unchanged, got %v %v", ga.SelectionProbability, ga.ChromosomeMutationRate)
	}
}

func TestClampRate(t *testing.T) {
	if clampRate(math.NaN(), 0.1, 0.2) != 0.1 {
		t.Fatal("expected NaN to collapse to lower bound")
	}
	if clampRate(0.3, 0.1, 0.2) != 0.2 || clampRate(0.05, 0.1, 0.2) != 0.1 || clampRate(0.15, 0.1, 0.2) != 0.15 {
		t.Fatal("unexpected clamp result")
	}
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("%s=%v want %v", name, got, want)
	}
}
