package evo

import (
	"fmt"

	"evolvekit/internal/model"
)

// Population-level mutation strategies. Both mutate up to
// ceil(N*ChromosomeMutationRate) chromosomes chosen without replacement.
var (
	// RandomSelectionMutation samples from the whole population.
	RandomSelectionMutation PopulationMutationFunc = CheckChromosomeMutationRate(requireIndividualMutation(LoopSampledChromosomes(mutateChromosomeAt)))
	// RandomAvoidBestMutation never samples the leading
	// PercentConverged*N*3/16 chromosomes. The count is still taken over all
	// N, so when it exceeds the chromosomes left outside the elite slice every
	// one of those is mutated and the count falls short of ceil(N*rate).
	RandomAvoidBestMutation PopulationMutationFunc = CheckChromosomeMutationRate(requireIndividualMutation(randomAvoidBest))
)

// Individual-level mutation strategies.
var (
	// IndividualGenesMutation regenerates exactly ceil(L*GeneMutationRate)
	// gene positions.
	IndividualGenesMutation IndividualMutationFunc = CheckGeneMutationRate(requireGeneSource(LoopSampledGenes(regenerateGene)))
	// SwapGenesMutation swaps each sampled position i > 0 with a uniformly
	// chosen earlier position, so permutations stay valid.
	SwapGenesMutation IndividualMutationFunc = CheckGeneMutationRate(LoopSampledGenes(swapWithEarlier))
	// WholeChromosomeMutation replaces the chromosome with a freshly generated
	// one of the same length.
	WholeChromosomeMutation IndividualMutationFunc = requireGeneSource(wholeChromosome)
)

func requireIndividualMutation(fn PopulationMutationFunc) PopulationMutationFunc {
	return func(ga *GA) error {
		if ga.MutationIndividual == nil {
			return fmt.Errorf("%w: individual mutation", ErrMissingStrategy)
		}
		return fn(ga)
	}
}

func requireGeneSource(fn IndividualMutationFunc) IndividualMutationFunc {
	return func(ga *GA, c *model.Chromosome) (*model.Chromosome, error) {
		if !ga.hasGeneSource() {
			return nil, errNoGeneSource
		}
		return fn(ga, c)
	}
}

func mutateChromosomeAt(ga *GA, index int) error {
	mutated, err := ga.MutationIndividual(ga, ga.Population.At(index))
	if err != nil {
		return err
	}
	ga.Population.Set(index, mutated)
	return nil
}

func randomAvoidBest(ga *GA) error {
	n := ga.Population.Len()
	elite := int(ga.PercentConverged * float64(n) * 3 / 16)
	count := SampleCount(n, ga.ChromosomeMutationRate)
	for _, index := range sampleRange(ga.Rand, elite, n, count) {
		if err := mutateChromosomeAt(ga, index); err != nil {
			return err
		}
	}
	return nil
}

func regenerateGene(ga *GA, c *model.Chromosome, index int) error {
	value, err := ga.newGeneValue(index)
	if err != nil {
		return err
	}
	c.SetGene(index, model.NewGene(value))
	return nil
}

func swapWithEarlier(ga *GA, c *model.Chromosome, index int) error {
	if index == 0 {
		return nil
	}
	c.SwapGenes(index, ga.Rand.Intn(index))
	return nil
}

func wholeChromosome(ga *GA, c *model.Chromosome) (*model.Chromosome, error) {
	return ga.newChromosome(c.Len())
}

// newChromosome builds an unevaluated chromosome of the given length from the
// configured gene source.
func (ga *GA) newChromosome(length int) (*model.Chromosome, error) {
	genes := make([]model.Gene, length)
	for i := range genes {
		value, err := ga.newGeneValue(i)
		if err != nil {
			return nil, err
		}
		genes[i] = model.NewGene(value)
	}
	return model.NewChromosome(genes), nil
}
