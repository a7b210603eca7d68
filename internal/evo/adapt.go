package evo

import (
	"fmt"
	"math"

	"evolvekit/internal/model"
)

const (
	MinAdaptiveMutationRate         = 0.05
	MaxAdaptiveMutationRate         = 0.25
	MinAdaptiveSelectionProbability = 0.25
	MaxAdaptiveSelectionProbability = 0.75

	maxForcedCrossoverWeight = 0.5
)

// Adapt rebalances selection pressure against mutation based on how close the
// better part of the population is to the best chromosome, then crosses the
// worst chromosomes with the best one. The population must be sorted best
// first and is sorted again before returning.
//
// The probe window is the best round(PercentConverged*N) chromosomes. The gap
// to the window's midpoint (halved) and to its quarter point are compared:
// a quarter gap larger than the half gap means too few have converged, so
// selection is strengthened and mutation weakened; otherwise the reverse.
func (ga *GA) Adapt() error {
	if !(ga.AdaptRate > 0) || ga.Population.Len() == 0 {
		return nil
	}

	n := ga.Population.Len()
	amountConverged := int(math.RoundToEven(ga.PercentConverged * float64(n)))
	if amountConverged > n {
		amountConverged = n
	}
	if amountConverged < 0 {
		amountConverged = 0
	}

	best, err := ga.fitnessAt(0)
	if err != nil {
		return err
	}
	half, err := ga.fitnessAt(amountConverged / 2)
	if err != nil {
		return err
	}
	quarter, err := ga.fitnessAt(amountConverged / 4)
	if err != nil {
		return err
	}

	tolHalf := fitnessGap(best, half) / 2
	tolQuar := fitnessGap(best, quarter)

	multiplier := 1 + ga.AdaptRate
	if tolQuar < tolHalf/2 || tolQuar > tolHalf*2 {
		multiplier *= multiplier
	}

	if tolQuar > tolHalf {
		ga.SelectionProbability = clampRate(ga.SelectionProbability*multiplier, MinAdaptiveSelectionProbability, MaxAdaptiveSelectionProbability)
		ga.ChromosomeMutationRate = clampRate(ga.ChromosomeMutationRate/multiplier, MinAdaptiveMutationRate, MaxAdaptiveMutationRate)
		ga.GeneMutationRate = clampRate(ga.GeneMutationRate/multiplier, MinAdaptiveMutationRate, MaxAdaptiveMutationRate)
	} else {
		ga.SelectionProbability = clampRate(ga.SelectionProbability/multiplier, MinAdaptiveSelectionProbability, MaxAdaptiveSelectionProbability)
		ga.ChromosomeMutationRate = clampRate(ga.ChromosomeMutationRate*multiplier, MinAdaptiveMutationRate, MaxAdaptiveMutationRate)
		ga.GeneMutationRate = clampRate(ga.GeneMutationRate*multiplier, MinAdaptiveMutationRate, MaxAdaptiveMutationRate)
	}

	if ga.Logger != nil {
		ga.Logger.Debug("rates adapted",
			"run_id", ga.RunID,
			"generation", ga.Generation,
			"tol_half", tolHalf,
			"tol_quarter", tolQuar,
			"selection_probability", ga.SelectionProbability,
			"chromosome_mutation_rate", ga.ChromosomeMutationRate,
			"gene_mutation_rate", ga.GeneMutationRate,
		)
	}

	weight := math.Min(maxForcedCrossoverWeight, tolHalf)
	for k := 1; k < amountConverged/4; k++ {
		if ga.CrossoverIndividual == nil {
			return fmt.Errorf("%w: individual crossover", ErrMissingStrategy)
		}
		child, err := ga.CrossoverIndividual(ga, ga.Population.FromEnd(k), ga.Population.Best(), weight)
		if err != nil {
			return err
		}
		if err := ga.evaluate(child); err != nil {
			return err
		}
		ga.Population.SetFromEnd(k, child)
	}

	return ga.Population.SortByBestFitness(ga.Target)
}

func (ga *GA) fitnessAt(index int) (float64, error) {
	v, ok := ga.Population.At(index).Fitness.Value()
	if !ok {
		return 0, fmt.Errorf("%w: chromosome %d", model.ErrUnevaluatedFitness, index)
	}
	return v, nil
}

// clampRate bounds a rate on every update so accumulated floating point drift
// can never leave [lo, hi]. NaN collapses to lo.
func clampRate(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
