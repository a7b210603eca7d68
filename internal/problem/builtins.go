package problem

import (
	"math/rand"

	"evolvekit/internal/evo"
	"evolvekit/internal/model"
)

// IsIt5 counts the genes equal to 5. Genes are integers in [1, 10].
type IsIt5 struct{}

func (IsIt5) Name() string { return "is_it_5" }

func (IsIt5) Description() string {
	return "maximize the number of genes equal to 5; genes drawn from 1..10"
}

func (p IsIt5) Apply(cfg *evo.Config) error {
	install(cfg, p.Name(), model.TargetMax, func(c *model.Chromosome) (float64, error) {
		count := 0
		for i := range c.Genes {
			v, err := intGene(c, i)
			if err != nil {
				return 0, err
			}
			if v == 5 {
				count++
			}
		}
		return float64(count), nil
	}, model.StrategyNames{})
	cfg.GeneFunc = func(rng *rand.Rand) any { return 1 + rng.Intn(10) }
	cfg.FitnessGoal = goalIfUnset(cfg.FitnessGoal, float64(cfg.ChromosomeLength))
	return nil
}

// OneMax sums a bit string.
type OneMax struct{}

func (OneMax) Name() string { return "onemax" }

func (OneMax) Description() string { return "maximize the number of 1 bits" }

func (p OneMax) Apply(cfg *evo.Config) error {
	install(cfg, p.Name(), model.TargetMax, func(c *model.Chromosome) (float64, error) {
		total := 0
		for i := range c.Genes {
			v, err := intGene(c, i)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return float64(total), nil
	}, model.StrategyNames{CrossoverIndividual: "uniform"})
	cfg.GeneFunc = func(rng *rand.Rand) any { return rng.Intn(2) }
	cfg.FitnessGoal = goalIfUnset(cfg.FitnessGoal, float64(cfg.ChromosomeLength))
	return nil
}

const sphereBound = 5.12

// Sphere minimizes the sum of squares over [-5.12, 5.12]^L.
type Sphere struct{}

func (Sphere) Name() string { return "sphere" }

func (Sphere) Description() string {
	return "minimize the sum of squared genes; genes drawn from [-5.12, 5.12]"
}

func (p Sphere) Apply(cfg *evo.Config) error {
	install(cfg, p.Name(), model.TargetMin, func(c *model.Chromosome) (float64, error) {
		total := 0.0
		for i := range c.Genes {
			v, err := floatGene(c, i)
			if err != nil {
				return 0, err
			}
			total += v * v
		}
		return total, nil
	}, model.StrategyNames{CrossoverIndividual: "average", ParentSelection: "roulette"})
	cfg.GeneFunc = func(rng *rand.Rand) any { return (2*rng.Float64() - 1) * sphereBound }
	cfg.FitnessGoal = goalIfUnset(cfg.FitnessGoal, 1e-3)
	return nil
}

// SortPermutation rewards permutations of 0..L-1 for adjacent genes in
// ascending order; L-1 is a sorted chromosome.
type SortPermutation struct{}

func (SortPermutation) Name() string { return "sort_permutation" }

func (SortPermutation) Description() string {
	return "sort a permutation of 0..L-1 using swap mutation and order crossover"
}

func (p SortPermutation) Apply(cfg *evo.Config) error {
	install(cfg, p.Name(), model.TargetMax, func(c *model.Chromosome) (float64, error) {
		ordered := 0
		for i := 1; i < c.Len(); i++ {
			prev, err := intGene(c, i-1)
			if err != nil {
				return 0, err
			}
			cur, err := intGene(c, i)
			if err != nil {
				return 0, err
			}
			if prev < cur {
				ordered++
			}
		}
		return float64(ordered), nil
	}, model.StrategyNames{
		Initialization:      "permutation",
		CrossoverIndividual: "order",
		MutationIndividual:  "swap_genes",
	})
	cfg.GeneFunc = nil
	cfg.IndexedGene = nil
	cfg.FitnessGoal = goalIfUnset(cfg.FitnessGoal, float64(max(cfg.ChromosomeLength-1, 0)))
	return nil
}

// IndexDependent draws gene i from [0, i] and rewards genes equal to their
// index.
type IndexDependent struct{}

func (IndexDependent) Name() string { return "index_dependent" }

func (IndexDependent) Description() string {
	return "maximize genes equal to their position; gene i drawn from 0..i"
}

func (p IndexDependent) Apply(cfg *evo.Config) error {
	install(cfg, p.Name(), model.TargetMax, func(c *model.Chromosome) (float64, error) {
		hits := 0
		for i := range c.Genes {
			v, err := intGene(c, i)
			if err != nil {
				return 0, err
			}
			if v == i {
				hits++
			}
		}
		return float64(hits), nil
	}, model.StrategyNames{})
	cfg.IndexedGene = func(rng *rand.Rand, index int) any { return rng.Intn(index + 1) }
	cfg.FitnessGoal = goalIfUnset(cfg.FitnessGoal, float64(cfg.ChromosomeLength))
	return nil
}
