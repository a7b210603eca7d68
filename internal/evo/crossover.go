package evo

import (
	"fmt"
	"reflect"

	"evolvekit/internal/model"
)

const defaultCrossoverWeight = 0.5

// Population crossover strategies turn the mating pool into offspring in
// Population.NextPopulation, one child per mating pool entry.
var (
	// SequentialCrossover crosses each parent with the next one, wrapping
	// around at the end of the pool.
	SequentialCrossover PopulationCrossoverFunc = requireIndividualCrossover(sequentialPairs)
	// RandomCrossover crosses uniformly drawn pairs from the pool.
	RandomCrossover PopulationCrossoverFunc = requireIndividualCrossover(randomPairs)
)

func requireIndividualCrossover(fn PopulationCrossoverFunc) PopulationCrossoverFunc {
	return func(ga *GA) error {
		if ga.CrossoverIndividual == nil {
			return fmt.Errorf("%w: individual crossover", ErrMissingStrategy)
		}
		return fn(ga)
	}
}

func sequentialPairs(ga *GA) error {
	pool := ga.Population.MatingPool
	for i := range pool {
		child, err := ga.CrossoverIndividual(ga, pool[i], pool[(i+1)%len(pool)], defaultCrossoverWeight)
		if err != nil {
			return err
		}
		ga.Population.AddToNextPopulation(child)
	}
	return nil
}

func randomPairs(ga *GA) error {
	pool := ga.Population.MatingPool
	for range pool {
		a := pool[ga.Rand.Intn(len(pool))]
		b := pool[ga.Rand.Intn(len(pool))]
		child, err := ga.CrossoverIndividual(ga, a, b, defaultCrossoverWeight)
		if err != nil {
			return err
		}
		ga.Population.AddToNextPopulation(child)
	}
	return nil
}

// SinglePointCrossover takes the genes of a before a random cut point and the
// genes of b from it on. weight is unused.
func SinglePointCrossover(ga *GA, a, b *model.Chromosome, _ float64) (*model.Chromosome, error) {
	length := min(a.Len(), b.Len())
	cut := 0
	if length > 1 {
		cut = 1 + ga.Rand.Intn(length-1)
	}
	genes := make([]model.Gene, 0, b.Len())
	genes = append(genes, a.Genes[:cut]...)
	genes = append(genes, b.Genes[cut:]...)
	return model.NewChromosome(genes), nil
}

// UniformCrossover takes each gene from a with probability weight and from b
// otherwise.
func UniformCrossover(ga *GA, a, b *model.Chromosome, weight float64) (*model.Chromosome, error) {
	length := min(a.Len(), b.Len())
	genes := make([]model.Gene, length)
	for i := range genes {
		if ga.Rand.Float64() < weight {
			genes[i] = a.Genes[i]
		} else {
			genes[i] = b.Genes[i]
		}
	}
	return model.NewChromosome(genes), nil
}

// AverageCrossover blends numeric genes as weight*a + (1-weight)*b.
func AverageCrossover(_ *GA, a, b *model.Chromosome, weight float64) (*model.Chromosome, error) {
	length := min(a.Len(), b.Len())
	genes := make([]model.Gene, length)
	for i := range genes {
		x, okA := asFloat(a.Genes[i].Value)
		y, okB := asFloat(b.Genes[i].Value)
		if !okA || !okB {
			return nil, fmt.Errorf("%w: average crossover needs numeric genes, got %T and %T at %d",
				ErrConfiguration, a.Genes[i].Value, b.Genes[i].Value, i)
		}
		genes[i] = model.NewGene(weight*x + (1-weight)*y)
	}
	return model.NewChromosome(genes), nil
}

// OrderCrossover copies a random slice of a into the child and fills the
// remaining positions with the genes of b in their original order, skipping
// values already taken. Permutation parents yield a permutation child.
// Gene values must be comparable.
func OrderCrossover(ga *GA, a, b *model.Chromosome, _ float64) (*model.Chromosome, error) {
	for _, c := range []*model.Chromosome{a, b} {
		for _, g := range c.Genes {
			if g.Value != nil && !reflect.TypeOf(g.Value).Comparable() {
				return nil, fmt.Errorf("%w: order crossover needs comparable genes, got %T", ErrConfiguration, g.Value)
			}
		}
	}
	length := a.Len()
	if !sameGeneSet(a, b) {
		return nil, fmt.Errorf("%w: order crossover parents hold different gene sets", ErrConfiguration)
	}
	if length == 0 {
		return model.NewChromosome(nil), nil
	}

	lo := ga.Rand.Intn(length)
	hi := lo + 1 + ga.Rand.Intn(length-lo)
	genes := make([]model.Gene, length)
	taken := make(map[any]int, hi-lo)
	for i := lo; i < hi; i++ {
		genes[i] = a.Genes[i]
		taken[a.Genes[i].Value]++
	}

	next := 0
	for i := 0; i < length; i++ {
		if i == lo {
			i = hi - 1
			continue
		}
		for taken[b.Genes[next].Value] > 0 {
			taken[b.Genes[next].Value]--
			next++
		}
		genes[i] = b.Genes[next]
		next++
	}
	return model.NewChromosome(genes), nil
}

// sameGeneSet reports whether a and b hold the same gene values with the same
// multiplicities.
func sameGeneSet(a, b *model.Chromosome) bool {
	if a.Len() != b.Len() {
		return false
	}
	counts := make(map[any]int, a.Len())
	for _, g := range a.Genes {
		counts[g.Value]++
	}
	for _, g := range b.Genes {
		if counts[g.Value] == 0 {
			return false
		}
		counts[g.Value]--
	}
	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
