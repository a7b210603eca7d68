package evo

import (
	"context"
	"fmt"
)

// EvolveGeneration evolves up to generations generations. When
// considerTermination is set the termination oracle is consulted before each
// generation. The adaptive controller runs once after the batch.
func (ga *GA) EvolveGeneration(ctx context.Context, generations int, considerTermination bool) error {
	for generations > 0 && (!considerTermination || ga.Active()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ga.Population == nil {
			if err := ga.InitializePopulation(); err != nil {
				return err
			}
		}

		if ga.Generation == 0 {
			if err := ga.setupRecorder(ctx); err != nil {
				return err
			}
		} else if err := ga.runPipeline(); err != nil {
			return err
		}

		if err := ga.SetAllFitness(); err != nil {
			return err
		}
		if err := ga.Population.SortByBestFitness(ga.Target); err != nil {
			return err
		}
		if err := ga.savePopulation(ctx); err != nil {
			return err
		}

		if ga.Logger != nil {
			best, _ := ga.Population.Best().Fitness.Value()
			ga.Logger.Debug("generation evolved",
				"run_id", ga.RunID,
				"generation", ga.Generation,
				"best_fitness", best,
				"population", ga.Population.Len(),
			)
		}

		generations--
		ga.Generation++
	}

	return ga.Adapt()
}

// Evolve runs batches of generations until the termination oracle is
// satisfied.
func (ga *GA) Evolve(ctx context.Context, generations int, considerTermination bool) error {
	if generations <= 0 {
		return fmt.Errorf("%w: generations per batch must be > 0", ErrConfiguration)
	}
	if ga.Termination == nil {
		return fmt.Errorf("%w: termination", ErrMissingStrategy)
	}
	for ga.Active() {
		if err := ga.EvolveGeneration(ctx, generations, considerTermination); err != nil {
			return err
		}
	}
	return nil
}

// Active reports whether evolution should continue. A GA without a
// termination oracle is always active.
func (ga *GA) Active() bool {
	if ga.Termination == nil {
		return true
	}
	return !ga.Termination(ga)
}

func (ga *GA) InitializePopulation() error {
	if ga.Initialization == nil {
		return fmt.Errorf("%w: initialization", ErrMissingStrategy)
	}
	population, err := ga.Initialization(ga)
	if err != nil {
		return err
	}
	if population == nil {
		return fmt.Errorf("%w: initialization returned no population", ErrConfiguration)
	}
	ga.Population = population
	return nil
}

// SetAllFitness evaluates every unevaluated chromosome, or every chromosome
// when UpdateFitness is set. Evaluator errors are returned unchanged.
func (ga *GA) SetAllFitness() error {
	if ga.Fitness == nil {
		return fmt.Errorf("%w: fitness function", ErrMissingStrategy)
	}
	for _, c := range ga.Population.Chromosomes {
		if c.Fitness.IsEvaluated() && !ga.UpdateFitness {
			continue
		}
		if err := ga.evaluate(c); err != nil {
			return err
		}
	}
	return nil
}

func (ga *GA) runPipeline() error {
	switch {
	case ga.ParentSelection == nil:
		return fmt.Errorf("%w: parent selection", ErrMissingStrategy)
	case ga.CrossoverPopulation == nil:
		return fmt.Errorf("%w: population crossover", ErrMissingStrategy)
	case ga.SurvivorSelection == nil:
		return fmt.Errorf("%w: survivor selection", ErrMissingStrategy)
	case ga.MutationPopulation == nil:
		return fmt.Errorf("%w: population mutation", ErrMissingStrategy)
	}
	// Rates are checked before any stage runs so a bad rate leaves the
	// population untouched.
	if err := ga.validateRates(); err != nil {
		return err
	}

	if err := ga.ParentSelection(ga); err != nil {
		return err
	}
	if err := ga.CrossoverPopulation(ga); err != nil {
		return err
	}
	if err := ga.SurvivorSelection(ga); err != nil {
		return err
	}
	ga.Population.Update()
	return ga.MutationPopulation(ga)
}

func (ga *GA) validateRates() error {
	if err := ValidateRate("chromosome_mutation_rate", ga.ChromosomeMutationRate); err != nil {
		return err
	}
	if err := ValidateRate("gene_mutation_rate", ga.GeneMutationRate); err != nil {
		return err
	}
	return ValidateRate("selection_probability", ga.SelectionProbability)
}

func (ga *GA) setupRecorder(ctx context.Context) error {
	if ga.Recorder == nil {
		return nil
	}
	if err := ga.Recorder.CreateTables(ctx); err != nil {
		return err
	}
	if err := ga.Recorder.RecordConfig(ctx, ga.RunConfig()); err != nil {
		return err
	}
	if ga.Logger != nil {
		ga.Logger.Info("run configuration recorded", "run_id", ga.RunID)
	}
	return nil
}

func (ga *GA) savePopulation(ctx context.Context) error {
	if ga.Recorder == nil {
		return nil
	}
	return ga.Recorder.RecordGeneration(ctx, ga.Snapshot())
}
