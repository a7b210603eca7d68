package evo

import "evolvekit/internal/model"

// Survivor selection strategies top NextPopulation up to PopulationSize with
// chromosomes of the current generation. Survivors are placed ahead of the
// offspring; offspring beyond PopulationSize are dropped.
var (
	// FillInBest keeps the best chromosomes of the current generation.
	FillInBest SelectionFunc = fillInBest
	// FillInRandom keeps uniformly drawn chromosomes of the current generation.
	FillInRandom SelectionFunc = fillInRandom
)

func fillInBest(ga *GA) error {
	needed := ga.PopulationSize - len(ga.Population.NextPopulation)
	if needed > ga.Population.Len() {
		needed = ga.Population.Len()
	}
	var survivors []*model.Chromosome
	if needed > 0 {
		survivors = ga.Population.Chromosomes[:needed]
	}
	placeSurvivors(ga, survivors)
	return nil
}

func fillInRandom(ga *GA) error {
	needed := ga.PopulationSize - len(ga.Population.NextPopulation)
	indices := sampleRange(ga.Rand, 0, ga.Population.Len(), needed)
	survivors := make([]*model.Chromosome, len(indices))
	for i, index := range indices {
		survivors[i] = ga.Population.At(index)
	}
	placeSurvivors(ga, survivors)
	return nil
}

func placeSurvivors(ga *GA, survivors []*model.Chromosome) {
	next := make([]*model.Chromosome, 0, len(survivors)+len(ga.Population.NextPopulation))
	next = append(next, survivors...)
	next = append(next, ga.Population.NextPopulation...)
	if len(next) > ga.PopulationSize {
		next = next[:ga.PopulationSize]
	}
	ga.Population.NextPopulation = next
}
