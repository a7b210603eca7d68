package evo

import (
	"errors"
	"math/rand"
	"testing"

	"evolvekit/internal/model"
)

func TestSinglePointCrossoverKeepsPrefixAndSuffix(t *testing.T) {
	ga := newTestGA(t, nil)
	a := model.ChromosomeOf("a", "a", "a", "a", "a")
	b := model.ChromosomeOf("b", "b", "b", "b", "b")
	for round := 0; round < 50; round++ {
		child, err := SinglePointCrossover(ga, a, b, 0.5)
		if err != nil {
			t.Fatalf("crossover: %v", err)
		}
		if child.Len() != 5 || child.Fitness.IsEvaluated() {
			t.Fatalf("unexpected child %s", child)
		}
		if child.Genes[0].Value != "a" || child.Genes[4].Value != "b" {
			t.Fatalf("expected at least one gene from each parent, got %s", child)
		}
		switched := false
		for _, g := range child.Genes {
			if g.Value == "b" {
				switched = true
			} else if switched {
				t.Fatalf("expected a single cut point, got %s", child)
			}
		}
	}
	if a.String() != "[a, a, a, a, a]" {
		t.Fatalf("parent modified: %s", a)
	}
}

func TestUniformCrossoverHonoursWeight(t *testing.T) {
	ga := newTestGA(t, nil)
	a := model.ChromosomeOf(1, 1, 1, 1)
	b := model.ChromosomeOf(2, 2, 2, 2)
	child, err := UniformCrossover(ga, a, b, 1)
	if err != nil || child.String() != "[1, 1, 1, 1]" {
		t.Fatalf("expected all genes from a, got %s %v", child, err)
	}
	child, err = UniformCrossover(ga, a, b, 0)
	if err != nil || child.String() != "[2, 2, 2, 2]" {
		t.Fatalf("expected all genes from b, got %s %v", child, err)
	}
}

func TestAverageCrossover(t *testing.T) {
	ga := newTestGA(t, nil)
	child, err := AverageCrossover(ga, model.ChromosomeOf(2.0, 10), model.ChromosomeOf(4.0, 20), 0.5)
	if err != nil {
		t.Fatalf("crossover: %v", err)
	}
	if child.Genes[0].Value != 3.0 || child.Genes[1].Value != 15.0 {
		t.Fatalf("unexpected average %s", child)
	}
	_, err = AverageCrossover(ga, model.ChromosomeOf("x"), model.ChromosomeOf(1.0), 0.5)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for non-numeric genes, got %v", err)
	}
}

func TestPopulationCrossoverProducesOneChildPerParent(t *testing.T) {
	for name, strategy := range map[string]PopulationCrossoverFunc{
		"sequential": SequentialCrossover,
		"random":     RandomCrossover,
	} {
		ga := newTestGA(t, nil)
		ga.Population = scoredPopulation(5, 4, 3, 2, 1)
		ga.Population.AddToMatingPool(ga.Population.Chromosomes[:3]...)
		if err := strategy(ga); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(ga.Population.NextPopulation) != 3 {
			t.Fatalf("%s: expected 3 offspring, got %d", name, len(ga.Population.NextPopulation))
		}
	}
}

func TestPopulationCrossoverRequiresIndividualCrossover(t *testing.T) {
	ga := newTestGA(t, nil)
	ga.Population = scoredPopulation(2, 1)
	ga.Population.AddToMatingPool(ga.Population.Chromosomes...)
	ga.CrossoverIndividual = nil
	if err := SequentialCrossover(ga); !errors.Is(err, ErrMissingStrategy) {
		t.Fatalf("expected missing strategy, got %v", err)
	}
}

func TestFillInBestPlacesSurvivorsAheadOfOffspring(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PopulationSize = 5
	})
	ga.Population = scoredPopulation(50, 40, 30, 20, 10)
	offspring := []*model.Chromosome{model.ChromosomeOf(1.0), model.ChromosomeOf(2.0)}
	ga.Population.AddToNextPopulation(offspring...)

	if err := FillInBest(ga); err != nil {
		t.Fatalf("survivors: %v", err)
	}
	next := ga.Population.NextPopulation
	if len(next) != 5 {
		t.Fatalf("expected 5 chromosomes, got %d", len(next))
	}
	for i := 0; i < 3; i++ {
		if next[i] != ga.Population.At(i) {
			t.Fatalf("expected survivor %d to be the %d-th best", i, i)
		}
	}
	if next[3] != offspring[0] || next[4] != offspring[1] {
		t.Fatal("expected offspring after survivors")
	}

	ga.Population.Update()
	if ga.Population.Len() != 5 || ga.Population.NextPopulation != nil || ga.Population.MatingPool != nil {
		t.Fatal("expected update to promote next population and clear scratch space")
	}
}

func TestFillInRandomTruncatesExcessOffspring(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PopulationSize = 2
	})
	ga.Population = scoredPopulation(3, 2, 1)
	ga.Population.AddToNextPopulation(model.ChromosomeOf(1.0), model.ChromosomeOf(2.0), model.ChromosomeOf(3.0))
	if err := FillInRandom(ga); err != nil {
		t.Fatalf("survivors: %v", err)
	}
	if len(ga.Population.NextPopulation) != 2 {
		t.Fatalf("expected truncation to population size, got %d", len(ga.Population.NextPopulation))
	}
}

func TestRandomInitializationBuildsConfiguredShape(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PopulationSize = 6
		cfg.ChromosomeLength = 4
		cfg.IndexedGene = func(_ *rand.Rand, index int) any { return index }
	})
	population, err := RandomInitialization(ga)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if population.Len() != 6 {
		t.Fatalf("expected 6 chromosomes, got %d", population.Len())
	}
	for _, c := range population.Chromosomes {
		if c.String() != "[0, 1, 2, 3]" || c.Fitness.IsEvaluated() {
			t.Fatalf("unexpected chromosome %s", c)
		}
	}
}

func TestOrderCrossoverKeepsPermutation(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.PopulationSize = 8
		cfg.ChromosomeLength = 9
	})
	population, err := PermutationInitialization(ga)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for round := 0; round < 40; round++ {
		a := population.At(round % 8)
		b := population.At((round + 3) % 8)
		child, err := OrderCrossover(ga, a, b, 0.5)
		if err != nil {
			t.Fatalf("crossover: %v", err)
		}
		seen := make([]bool, 9)
		for _, g := range child.Genes {
			v := g.Value.(int)
			if seen[v] {
				t.Fatalf("duplicate gene %d in %s", v, child)
			}
			seen[v] = true
		}
		if child.Len() != 9 {
			t.Fatalf("unexpected child length %d", child.Len())
		}
	}
}

func TestOrderCrossoverRejectsMismatchedParents(t *testing.T) {
	ga := newTestGA(t, nil)
	_, err := OrderCrossover(ga, model.ChromosomeOf(0, 1, 2), model.ChromosomeOf(7, 8, 9), 0.5)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, err = OrderCrossover(ga, model.ChromosomeOf([]int{1}), model.ChromosomeOf([]int{2}), 0.5)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for slice genes, got %v", err)
	}
}
