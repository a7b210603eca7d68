package evo

import (
	"fmt"
	"math"
	"sort"
)

// Parent selection strategies fill Population.MatingPool with ParentCount
// parents. They assume the population is sorted best first, which holds at the
// start of every generation after the first.
var (
	// TournamentSelection runs tournaments of TournamentSizeRatio*N
	// chromosomes. Walking a tournament best first, each entrant wins with
	// SelectionProbability; the last entrant wins if nobody else did.
	TournamentSelection SelectionFunc = CheckSelectionProbability(tournament)
	// RouletteSelection picks parents with probability proportional to their
	// converted fitness above the population minimum.
	RouletteSelection SelectionFunc = roulette
	// RandomSelection picks parents uniformly.
	RandomSelection SelectionFunc = uniformParents
)

// ParentCount is ceil(ParentRatio*N), at least 2.
func (ga *GA) ParentCount() int {
	count := SampleCount(ga.Population.Len(), ga.ParentRatio)
	if count < 2 {
		count = 2
	}
	return count
}

// TournamentSize is TournamentSizeRatio*N truncated, bounded to [1, N].
func (ga *GA) TournamentSize() int {
	n := ga.Population.Len()
	size := int(ga.TournamentSizeRatio * float64(n))
	if size < 1 {
		size = 1
	}
	if size > n {
		size = n
	}
	return size
}

func tournament(ga *GA) error {
	n := ga.Population.Len()
	if n == 0 {
		return fmt.Errorf("%w: parent selection needs a population", ErrConfiguration)
	}
	size := ga.TournamentSize()
	for parents := ga.ParentCount(); parents > 0; parents-- {
		entrants := sampleRange(ga.Rand, 0, n, size)
		sort.Ints(entrants)
		winner := entrants[len(entrants)-1]
		for _, index := range entrants {
			if ga.Rand.Float64() < ga.SelectionProbability {
				winner = index
				break
			}
		}
		ga.Population.AddToMatingPool(ga.Population.At(winner))
	}
	return nil
}

func roulette(ga *GA) error {
	n := ga.Population.Len()
	if n == 0 {
		return fmt.Errorf("%w: parent selection needs a population", ErrConfiguration)
	}
	weights := make([]float64, n)
	lowest := math.Inf(1)
	for i := range weights {
		v, err := ga.ChromosomeFitness(i)
		if err != nil {
			return err
		}
		weights[i] = v
		lowest = math.Min(lowest, v)
	}
	total := 0.0
	for i := range weights {
		weights[i] -= lowest
		total += weights[i]
	}

	for parents := ga.ParentCount(); parents > 0; parents-- {
		index := n - 1
		if total > 0 && !math.IsInf(total, 0) {
			pick := ga.Rand.Float64() * total
			acc := 0.0
			for i, w := range weights {
				acc += w
				if pick < acc {
					index = i
					break
				}
			}
		} else {
			index = ga.Rand.Intn(n)
		}
		ga.Population.AddToMatingPool(ga.Population.At(index))
	}
	return nil
}

func uniformParents(ga *GA) error {
	n := ga.Population.Len()
	if n == 0 {
		return fmt.Errorf("%w: parent selection needs a population", ErrConfiguration)
	}
	for parents := ga.ParentCount(); parents > 0; parents-- {
		ga.Population.AddToMatingPool(ga.Population.At(ga.Rand.Intn(n)))
	}
	return nil
}
