package evo

import (
	"fmt"
	"math"

	"evolvekit/internal/model"
)

// degeneracyRatio is the magnitude ratio below which subtracting two fitness
// values is treated as catastrophic cancellation.
const degeneracyRatio = 1e-5

func (ga *GA) evaluate(c *model.Chromosome) error {
	v, err := ga.Fitness(c)
	if err != nil {
		return err
	}
	c.Fitness = model.Evaluated(v)
	return nil
}

// ConvertFitness maps a fitness value onto a larger-is-better scale. Values of
// a max problem pass through. For a min problem the value is reflected across
// the population's fitness range, max - v + min, which is its own inverse;
// when the best and worst magnitudes are too far apart the reflection falls
// back to a sign flip. The population must be sorted best first.
func (ga *GA) ConvertFitness(v float64) (float64, error) {
	if ga.Target != model.TargetMin {
		return v, nil
	}
	if ga.Population.Len() == 0 {
		return 0, fmt.Errorf("%w: population is empty", ErrConfiguration)
	}
	minFitness, ok := ga.Population.Best().Fitness.Value()
	if !ok {
		return 0, model.ErrUnevaluatedFitness
	}
	maxFitness, ok := ga.Population.Worst().Fitness.Value()
	if !ok {
		return 0, model.ErrUnevaluatedFitness
	}
	if degenerateRatio(minFitness, maxFitness) {
		return -v, nil
	}
	return maxFitness - v + minFitness, nil
}

// ChromosomeFitness returns the converted fitness of the chromosome at index.
func (ga *GA) ChromosomeFitness(index int) (float64, error) {
	v, ok := ga.Population.At(index).Fitness.Value()
	if !ok {
		return 0, fmt.Errorf("%w: chromosome %d", model.ErrUnevaluatedFitness, index)
	}
	return ga.ConvertFitness(v)
}

func degenerateRatio(small, large float64) bool {
	if large == 0 {
		return true
	}
	return math.Abs(small)/math.Abs(large) < degeneracyRatio
}

// fitnessGap is |a-b| with a guard for operands of wildly different
// magnitude, where the smaller one cannot affect the difference.
func fitnessGap(a, b float64) float64 {
	hi, lo := math.Abs(a), math.Abs(b)
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == 0 {
		return 0
	}
	if lo/hi < degeneracyRatio {
		return hi
	}
	return math.Abs(a - b)
}
