package evo

import (
	"fmt"
	"math"
	"math/rand"

	"evolvekit/internal/model"
)

// countEpsilon absorbs representation error in n*rate so that, for example,
// 10*0.3 samples 3 elements and not 4.
const countEpsilon = 1e-9

// ValidateRate reports ErrInvalidRate unless rate is a finite value strictly
// between 0 and 1.
func ValidateRate(name string, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 || rate >= 1 {
		return fmt.Errorf("%w: %s must be in (0, 1), got %v", ErrInvalidRate, name, rate)
	}
	return nil
}

// CheckChromosomeMutationRate validates ChromosomeMutationRate before running fn.
func CheckChromosomeMutationRate(fn PopulationMutationFunc) PopulationMutationFunc {
	return func(ga *GA) error {
		if err := ValidateRate("chromosome_mutation_rate", ga.ChromosomeMutationRate); err != nil {
			return err
		}
		return fn(ga)
	}
}

// CheckGeneMutationRate validates GeneMutationRate before running fn.
func CheckGeneMutationRate(fn IndividualMutationFunc) IndividualMutationFunc {
	return func(ga *GA, c *model.Chromosome) (*model.Chromosome, error) {
		if err := ValidateRate("gene_mutation_rate", ga.GeneMutationRate); err != nil {
			return nil, err
		}
		return fn(ga, c)
	}
}

// CheckSelectionProbability validates SelectionProbability before running fn.
func CheckSelectionProbability(fn SelectionFunc) SelectionFunc {
	return func(ga *GA) error {
		if err := ValidateRate("selection_probability", ga.SelectionProbability); err != nil {
			return err
		}
		return fn(ga)
	}
}

// SampleCount is ceil(n*rate) bounded to [0, n]. Any positive rate samples
// at least one element.
func SampleCount(n int, rate float64) int {
	if n <= 0 || !(rate > 0) {
		return 0
	}
	k := int(math.Ceil(float64(n)*rate - countEpsilon))
	if k > n {
		return n
	}
	if k < 1 {
		return 1
	}
	return k
}

// SampleIndices draws exactly SampleCount(n, rate) distinct indices from
// [0, n) without replacement.
func SampleIndices(rng *rand.Rand, n int, rate float64) []int {
	return sampleRange(rng, 0, n, SampleCount(n, rate))
}

// sampleRange draws k distinct indices from [lo, hi) with a partial
// Fisher-Yates shuffle. k is capped at the range size.
func sampleRange(rng *rand.Rand, lo, hi, k int) []int {
	size := hi - lo
	if size <= 0 || k <= 0 {
		return nil
	}
	if k > size {
		k = size
	}
	pool := make([]int, size)
	for i := range pool {
		pool[i] = lo + i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(size-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// LoopSampledChromosomes applies fn once per chromosome index sampled at
// ChromosomeMutationRate.
func LoopSampledChromosomes(fn func(ga *GA, index int) error) PopulationMutationFunc {
	return func(ga *GA) error {
		for _, index := range SampleIndices(ga.Rand, ga.Population.Len(), ga.ChromosomeMutationRate) {
			if err := fn(ga, index); err != nil {
				return err
			}
		}
		return nil
	}
}

// LoopSampledGenes applies fn once per gene index sampled at GeneMutationRate.
// The chromosome's fitness is reset whenever at least one index is sampled.
func LoopSampledGenes(fn func(ga *GA, c *model.Chromosome, index int) error) IndividualMutationFunc {
	return func(ga *GA, c *model.Chromosome) (*model.Chromosome, error) {
		indices := SampleIndices(ga.Rand, c.Len(), ga.GeneMutationRate)
		if len(indices) == 0 {
			return c, nil
		}
		c.ResetFitness()
		for _, index := range indices {
			if err := fn(ga, c, index); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
}
