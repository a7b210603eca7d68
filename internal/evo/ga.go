package evo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"evolvekit/internal/model"
)

// Strategy signatures for the pipeline slots. Every strategy receives the GA
// that owns the run and may read or write any of its state.
type (
	InitializationFunc      func(ga *GA) (*model.Population, error)
	SelectionFunc           func(ga *GA) error
	PopulationCrossoverFunc func(ga *GA) error
	IndividualCrossoverFunc func(ga *GA, a, b *model.Chromosome, weight float64) (*model.Chromosome, error)
	PopulationMutationFunc  func(ga *GA) error
	IndividualMutationFunc  func(ga *GA, c *model.Chromosome) (*model.Chromosome, error)
	// TerminationFunc reports true when evolution should stop.
	TerminationFunc func(ga *GA) bool
	FitnessFunc     func(c *model.Chromosome) (float64, error)
	// GeneFunc synthesizes one gene value independent of its position.
	GeneFunc func(rng *rand.Rand) any
	// IndexedGeneFunc synthesizes the gene value for a given position. It takes
	// precedence over GeneFunc when both are set.
	IndexedGeneFunc func(rng *rand.Rand, index int) any
)

// Recorder receives the run configuration at generation 0 and the sorted
// population after every generation.
type Recorder interface {
	CreateTables(ctx context.Context) error
	RecordConfig(ctx context.Context, cfg model.RunConfig) error
	RecordGeneration(ctx context.Context, snapshot model.GenerationSnapshot) error
}

const (
	DefaultPopulationSize         = 10
	DefaultChromosomeLength       = 10
	DefaultParentRatio            = 0.1
	DefaultSelectionProbability   = 0.5
	DefaultTournamentSizeRatio    = 0.1
	DefaultChromosomeMutationRate = 0.15
	DefaultGeneMutationRate       = 0.05
	DefaultAdaptRate              = 0.05
	DefaultPercentConverged       = 0.5
	DefaultGenerationGoal         = 100
)

type Config struct {
	RunID   string
	Problem string
	Seed    int64

	PopulationSize   int
	ChromosomeLength int
	Target           model.FitnessTarget
	// UpdateFitness re-evaluates every chromosome each generation instead of
	// only the unevaluated ones.
	UpdateFitness bool

	ParentRatio            float64
	SelectionProbability   float64
	TournamentSizeRatio    float64
	ChromosomeMutationRate float64
	GeneMutationRate       float64
	AdaptRate              float64
	PercentConverged       float64

	GenerationGoal int
	FitnessGoal    *float64
	ToleranceGoal  *float64

	// Strategy slots. A nil slot is resolved from the registry by the name in
	// Strategies, falling back to the built-in default name.
	Initialization      InitializationFunc
	ParentSelection     SelectionFunc
	CrossoverPopulation PopulationCrossoverFunc
	CrossoverIndividual IndividualCrossoverFunc
	SurvivorSelection   SelectionFunc
	MutationPopulation  PopulationMutationFunc
	MutationIndividual  IndividualMutationFunc
	Termination         TerminationFunc
	Strategies          model.StrategyNames

	Fitness     FitnessFunc
	GeneFunc    GeneFunc
	IndexedGene IndexedGeneFunc

	Recorder Recorder
	Logger   *slog.Logger
}

// DefaultConfig returns the built-in parameters with no fitness function.
func DefaultConfig() Config {
	return Config{
		PopulationSize:         DefaultPopulationSize,
		ChromosomeLength:       DefaultChromosomeLength,
		Target:                 model.TargetMax,
		ParentRatio:            DefaultParentRatio,
		SelectionProbability:   DefaultSelectionProbability,
		TournamentSizeRatio:    DefaultTournamentSizeRatio,
		ChromosomeMutationRate: DefaultChromosomeMutationRate,
		GeneMutationRate:       DefaultGeneMutationRate,
		AdaptRate:              DefaultAdaptRate,
		PercentConverged:       DefaultPercentConverged,
		GenerationGoal:         DefaultGenerationGoal,
	}
}

// GA is the mutable state of one evolution run. Strategies read and write its
// exported fields directly; a GA must not be shared between concurrent runs.
type GA struct {
	RunID      string
	Problem    string
	Seed       int64
	Generation int

	PopulationSize   int
	ChromosomeLength int
	Target           model.FitnessTarget
	UpdateFitness    bool

	ParentRatio            float64
	SelectionProbability   float64
	TournamentSizeRatio    float64
	ChromosomeMutationRate float64
	GeneMutationRate       float64
	AdaptRate              float64
	PercentConverged       float64

	GenerationGoal int
	FitnessGoal    *float64
	ToleranceGoal  *float64

	Population *model.Population

	Initialization      InitializationFunc
	ParentSelection     SelectionFunc
	CrossoverPopulation PopulationCrossoverFunc
	CrossoverIndividual IndividualCrossoverFunc
	SurvivorSelection   SelectionFunc
	MutationPopulation  PopulationMutationFunc
	MutationIndividual  IndividualMutationFunc
	Termination         TerminationFunc
	Strategies          model.StrategyNames

	Fitness     FitnessFunc
	GeneFunc    GeneFunc
	IndexedGene IndexedGeneFunc

	Recorder Recorder
	Rand     *rand.Rand
	Logger   *slog.Logger
}

func New(cfg Config) (*GA, error) {
	if cfg.Fitness == nil {
		return nil, fmt.Errorf("%w: fitness function is required", ErrMissingStrategy)
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrConfiguration)
	}
	if cfg.ChromosomeLength < 0 {
		return nil, fmt.Errorf("%w: chromosome length must be >= 0", ErrConfiguration)
	}
	target, err := model.ParseFitnessTarget(string(cfg.Target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.Target = target
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"chromosome_mutation_rate", cfg.ChromosomeMutationRate},
		{"gene_mutation_rate", cfg.GeneMutationRate},
		{"selection_probability", cfg.SelectionProbability},
	} {
		if err := ValidateRate(rate.name, rate.value); err != nil {
			return nil, err
		}
	}
	if !(cfg.PercentConverged > 0 && cfg.PercentConverged <= 1) {
		return nil, fmt.Errorf("%w: percent_converged must be in (0, 1], got %v", ErrInvalidRate, cfg.PercentConverged)
	}
	if math.IsNaN(cfg.AdaptRate) || math.IsInf(cfg.AdaptRate, 0) {
		return nil, fmt.Errorf("%w: adapt_rate must be finite", ErrInvalidRate)
	}
	if cfg.ParentRatio < 0 || cfg.TournamentSizeRatio < 0 {
		return nil, fmt.Errorf("%w: parent and tournament ratios must be >= 0", ErrInvalidRate)
	}
	if err := resolveStrategies(&cfg); err != nil {
		return nil, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &GA{
		RunID:                  cfg.RunID,
		Problem:                cfg.Problem,
		Seed:                   cfg.Seed,
		PopulationSize:         cfg.PopulationSize,
		ChromosomeLength:       cfg.ChromosomeLength,
		Target:                 cfg.Target,
		UpdateFitness:          cfg.UpdateFitness,
		ParentRatio:            cfg.ParentRatio,
		SelectionProbability:   cfg.SelectionProbability,
		TournamentSizeRatio:    cfg.TournamentSizeRatio,
		ChromosomeMutationRate: cfg.ChromosomeMutationRate,
		GeneMutationRate:       cfg.GeneMutationRate,
		AdaptRate:              cfg.AdaptRate,
		PercentConverged:       cfg.PercentConverged,
		GenerationGoal:         cfg.GenerationGoal,
		FitnessGoal:            cfg.FitnessGoal,
		ToleranceGoal:          cfg.ToleranceGoal,
		Initialization:         cfg.Initialization,
		ParentSelection:        cfg.ParentSelection,
		CrossoverPopulation:    cfg.CrossoverPopulation,
		CrossoverIndividual:    cfg.CrossoverIndividual,
		SurvivorSelection:      cfg.SurvivorSelection,
		MutationPopulation:     cfg.MutationPopulation,
		MutationIndividual:     cfg.MutationIndividual,
		Termination:            cfg.Termination,
		Strategies:             cfg.Strategies,
		Fitness:                cfg.Fitness,
		GeneFunc:               cfg.GeneFunc,
		IndexedGene:            cfg.IndexedGene,
		Recorder:               cfg.Recorder,
		Rand:                   rand.New(rand.NewSource(cfg.Seed)),
		Logger:                 cfg.Logger,
	}, nil
}

// RunConfig snapshots the current configuration for persistence.
func (ga *GA) RunConfig() model.RunConfig {
	return model.RunConfig{
		RunID:                  ga.RunID,
		Problem:                ga.Problem,
		Seed:                   ga.Seed,
		PopulationSize:         ga.PopulationSize,
		ChromosomeLength:       ga.ChromosomeLength,
		Target:                 ga.Target,
		UpdateFitness:          ga.UpdateFitness,
		ParentRatio:            ga.ParentRatio,
		SelectionProbability:   ga.SelectionProbability,
		TournamentSizeRatio:    ga.TournamentSizeRatio,
		ChromosomeMutationRate: ga.ChromosomeMutationRate,
		GeneMutationRate:       ga.GeneMutationRate,
		AdaptRate:              ga.AdaptRate,
		PercentConverged:       ga.PercentConverged,
		GenerationGoal:         ga.GenerationGoal,
		FitnessGoal:            ga.FitnessGoal,
		ToleranceGoal:          ga.ToleranceGoal,
		Strategies:             ga.Strategies,
	}
}

// Snapshot copies the current population into a persistable record.
func (ga *GA) Snapshot() model.GenerationSnapshot {
	return model.NewGenerationSnapshot(ga.RunID, ga.Generation, ga.Population)
}

func (ga *GA) Best() *model.Chromosome {
	return ga.Population.Best()
}

func (ga *GA) Worst() *model.Chromosome {
	return ga.Population.Worst()
}

// newGeneValue synthesizes a replacement value for the gene at index.
func (ga *GA) newGeneValue(index int) (any, error) {
	switch {
	case ga.IndexedGene != nil:
		return ga.IndexedGene(ga.Rand, index), nil
	case ga.GeneFunc != nil:
		return ga.GeneFunc(ga.Rand), nil
	default:
		return nil, errNoGeneSource
	}
}

func (ga *GA) hasGeneSource() bool {
	return ga.IndexedGene != nil || ga.GeneFunc != nil
}

var errNoGeneSource = fmt.Errorf("%w: no gene or chromosome construction function configured", ErrMissingStrategy)
