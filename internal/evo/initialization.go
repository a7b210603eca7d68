package evo

import (
	"fmt"

	"evolvekit/internal/model"
)

// RandomInitialization builds PopulationSize chromosomes of ChromosomeLength
// genes from IndexedGene, or GeneFunc when no indexed source is set.
func RandomInitialization(ga *GA) (*model.Population, error) {
	if !ga.hasGeneSource() {
		return nil, errNoGeneSource
	}
	if ga.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrConfiguration)
	}
	chromosomes := make([]*model.Chromosome, ga.PopulationSize)
	for i := range chromosomes {
		c, err := ga.newChromosome(ga.ChromosomeLength)
		if err != nil {
			return nil, err
		}
		chromosomes[i] = c
	}
	return model.NewPopulation(chromosomes), nil
}

// PermutationInitialization builds PopulationSize chromosomes, each a shuffle
// of the integers 0..ChromosomeLength-1.
func PermutationInitialization(ga *GA) (*model.Population, error) {
	if ga.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrConfiguration)
	}
	chromosomes := make([]*model.Chromosome, ga.PopulationSize)
	for i := range chromosomes {
		genes := make([]model.Gene, ga.ChromosomeLength)
		for j, v := range ga.Rand.Perm(ga.ChromosomeLength) {
			genes[j] = model.NewGene(v)
		}
		chromosomes[i] = model.NewChromosome(genes)
	}
	return model.NewPopulation(chromosomes), nil
}
