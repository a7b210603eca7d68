package problem

import (
	"context"
	"errors"
	"testing"

	"evolvekit/internal/evo"
	"evolvekit/internal/model"
)

func TestListReturnsBuiltinsSortedByName(t *testing.T) {
	got := List()
	want := []string{"index_dependent", "is_it_5", "onemax", "sort_permutation", "sphere"}
	if len(got) != len(want) {
		t.Fatalf("expected %d problems, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Name() != want[i] {
			t.Fatalf("problem %d: expected %s, got %s", i, want[i], p.Name())
		}
		if p.Description() == "" {
			t.Fatalf("problem %s has no description", p.Name())
		}
	}
}

func TestRegisterRejectsDuplicatesAndGetReportsMissing(t *testing.T) {
	t.Cleanup(resetRegistryForTests)
	if err := Register(OneMax{}); !errors.Is(err, ErrProblemExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := Get("travelling_salesman"); !errors.Is(err, ErrProblemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIsIt5CountsFives(t *testing.T) {
	cfg := evo.DefaultConfig()
	if err := (IsIt5{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, err := cfg.Fitness(model.ChromosomeOf(5, 1, 5, 10, 5.0))
	if err != nil || got != 3 {
		t.Fatalf("expected 3 fives, got %v %v", got, err)
	}
	if cfg.FitnessGoal == nil || *cfg.FitnessGoal != 10 {
		t.Fatalf("expected goal equal to chromosome length, got %v", cfg.FitnessGoal)
	}
	if _, err := cfg.Fitness(model.ChromosomeOf("5")); err == nil {
		t.Fatal("expected error for a string gene")
	}
}

func TestApplyKeepsExplicitSettings(t *testing.T) {
	cfg := evo.DefaultConfig()
	goal := 4.0
	cfg.FitnessGoal = &goal
	cfg.ChromosomeLength = 6
	cfg.Strategies.MutationIndividual = "individual_genes"
	if err := (SortPermutation{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if *cfg.FitnessGoal != 4 || cfg.ChromosomeLength != 6 {
		t.Fatalf("explicit goal or length overwritten: %v %d", *cfg.FitnessGoal, cfg.ChromosomeLength)
	}
	if cfg.Strategies.MutationIndividual != "individual_genes" || cfg.Strategies.CrossoverIndividual != "order" {
		t.Fatalf("unexpected strategies %+v", cfg.Strategies)
	}
}

func TestSphereIsMinimized(t *testing.T) {
	cfg := evo.DefaultConfig()
	if err := (Sphere{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Target != model.TargetMin {
		t.Fatalf("expected min target, got %s", cfg.Target)
	}
	got, err := cfg.Fitness(model.ChromosomeOf(1.0, -2.0, 3))
	if err != nil || got != 14 {
		t.Fatalf("expected 14, got %v %v", got, err)
	}
}

func TestSortPermutationScoresAscendingPairs(t *testing.T) {
	cfg := evo.DefaultConfig()
	if err := (SortPermutation{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	sorted, _ := cfg.Fitness(model.ChromosomeOf(0, 1, 2, 3))
	mixed, _ := cfg.Fitness(model.ChromosomeOf(2, 0, 3, 1))
	if sorted != 3 || mixed != 1 {
		t.Fatalf("expected 3 and 1, got %v and %v", sorted, mixed)
	}
}

func TestIndexDependentGenesStayInRange(t *testing.T) {
	cfg := evo.DefaultConfig()
	if err := (IndexDependent{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	ga, err := evo.New(cfg)
	if err != nil {
		t.Fatalf("new ga: %v", err)
	}
	population, err := ga.Initialization(ga)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, c := range population.Chromosomes {
		for i, g := range c.Genes {
			v := g.Value.(int)
			if v < 0 || v > i {
				t.Fatalf("gene %d out of range: %d", i, v)
			}
		}
	}
}

func TestEveryProblemEvolves(t *testing.T) {
	for _, p := range List() {
		cfg := evo.DefaultConfig()
		cfg.Seed = 3
		cfg.PopulationSize = 12
		cfg.ChromosomeLength = 8
		if err := p.Apply(&cfg); err != nil {
			t.Fatalf("%s: apply: %v", p.Name(), err)
		}
		ga, err := evo.New(cfg)
		if err != nil {
			t.Fatalf("%s: new ga: %v", p.Name(), err)
		}
		if err := ga.EvolveGeneration(context.Background(), 6, false); err != nil {
			t.Fatalf("%s: evolve: %v", p.Name(), err)
		}
		if ga.Problem != p.Name() || ga.Population.Len() != 12 {
			t.Fatalf("%s: unexpected state problem=%s size=%d", p.Name(), ga.Problem, ga.Population.Len())
		}
	}
}

func TestSortPermutationStaysPermutation(t *testing.T) {
	cfg := evo.DefaultConfig()
	cfg.Seed = 5
	cfg.PopulationSize = 10
	cfg.ChromosomeLength = 7
	cfg.ChromosomeMutationRate = 0.5
	if err := (SortPermutation{}).Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	ga, err := evo.New(cfg)
	if err != nil {
		t.Fatalf("new ga: %v", err)
	}
	if err := ga.EvolveGeneration(context.Background(), 10, false); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	for _, c := range ga.Population.Chromosomes {
		seen := make(map[int]bool)
		for _, g := range c.Genes {
			seen[g.Value.(int)] = true
		}
		if len(seen) != 7 {
			t.Fatalf("expected a permutation, got %s", c)
		}
	}
}
