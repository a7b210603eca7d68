package evo

import "math"

// Termination oracles report true when evolution should stop.
var (
	// GenerationGoalReached stops once Generation reaches GenerationGoal.
	GenerationGoalReached TerminationFunc = generationGoalReached
	// FitnessGoalReached stops once the best fitness meets FitnessGoal.
	FitnessGoalReached TerminationFunc = fitnessGoalReached
	// FitnessGenerationTolerance stops on the fitness goal, on the tolerance
	// goal, or on the generation goal, whichever comes first.
	FitnessGenerationTolerance TerminationFunc = fitnessGenerationTolerance
)

func generationGoalReached(ga *GA) bool {
	return ga.Generation >= ga.GenerationGoal
}

func fitnessGoalReached(ga *GA) bool {
	if ga.FitnessGoal == nil || ga.Population.Len() == 0 {
		return false
	}
	best, ok := ga.Population.Best().Fitness.Value()
	if !ok {
		return false
	}
	return !ga.Target.Better(*ga.FitnessGoal, best)
}

// toleranceGoalReached stops when the chromosome at the edge of the converged
// window is within ToleranceGoal*(1+|best|) of the best.
func toleranceGoalReached(ga *GA) bool {
	if ga.ToleranceGoal == nil || ga.Population.Len() == 0 {
		return false
	}
	n := ga.Population.Len()
	edge := int(math.RoundToEven(ga.PercentConverged * float64(n)))
	if edge >= n {
		edge = n - 1
	}
	best, ok := ga.Population.Best().Fitness.Value()
	if !ok {
		return false
	}
	threshold, ok := ga.Population.At(edge).Fitness.Value()
	if !ok {
		return false
	}
	tolerance := *ga.ToleranceGoal * (1 + math.Abs(best))
	return fitnessGap(best, threshold) < tolerance
}

func fitnessGenerationTolerance(ga *GA) bool {
	return fitnessGoalReached(ga) || toleranceGoalReached(ga) || generationGoalReached(ga)
}
