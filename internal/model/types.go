package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunConfig is the configuration snapshot recorded once, at generation 0.
type RunConfig struct {
	VersionedRecord
	RunID                  string        `json:"run_id"`
	CreatedAtUTC           string        `json:"created_at_utc"`
	Problem                string        `json:"problem,omitempty"`
	Seed                   int64         `json:"seed"`
	PopulationSize         int           `json:"population_size"`
	ChromosomeLength       int           `json:"chromosome_length"`
	Target                 FitnessTarget `json:"target_fitness_type"`
	UpdateFitness          bool          `json:"update_fitness"`
	ParentRatio            float64       `json:"parent_ratio"`
	SelectionProbability   float64       `json:"selection_probability"`
	TournamentSizeRatio    float64       `json:"tournament_size_ratio"`
	ChromosomeMutationRate float64       `json:"chromosome_mutation_rate"`
	GeneMutationRate       float64       `json:"gene_mutation_rate"`
	AdaptRate              float64       `json:"adapt_rate"`
	PercentConverged       float64       `json:"percent_converged"`
	GenerationGoal         int           `json:"generation_goal"`
	FitnessGoal            *float64      `json:"fitness_goal,omitempty"`
	ToleranceGoal          *float64      `json:"tolerance_goal,omitempty"`
	Strategies             StrategyNames `json:"strategies"`
}

// StrategyNames records which named strategies filled each pipeline slot.
type StrategyNames struct {
	Initialization      string `json:"initialization,omitempty"`
	ParentSelection     string `json:"parent_selection,omitempty"`
	CrossoverPopulation string `json:"crossover_population,omitempty"`
	CrossoverIndividual string `json:"crossover_individual,omitempty"`
	SurvivorSelection   string `json:"survivor_selection,omitempty"`
	MutationPopulation  string `json:"mutation_population,omitempty"`
	MutationIndividual  string `json:"mutation_individual,omitempty"`
	Termination         string `json:"termination,omitempty"`
}

type ChromosomeRecord struct {
	Rank    int      `json:"rank"`
	Genes   []any    `json:"genes"`
	Fitness *float64 `json:"fitness"`
}

// GenerationSnapshot is the archived, best-first population of one generation.
type GenerationSnapshot struct {
	VersionedRecord
	RunID       string             `json:"run_id"`
	Generation  int                `json:"generation"`
	Chromosomes []ChromosomeRecord `json:"chromosomes"`
}

// NewGenerationSnapshot copies a population into a persistable record.
func NewGenerationSnapshot(runID string, generation int, population *Population) GenerationSnapshot {
	records := make([]ChromosomeRecord, 0, population.Len())
	for i, c := range population.Chromosomes {
		records = append(records, ChromosomeRecord{
			Rank:    i,
			Genes:   c.Values(),
			Fitness: c.Fitness.Ptr(),
		})
	}
	return GenerationSnapshot{
		RunID:       runID,
		Generation:  generation,
		Chromosomes: records,
	}
}

// Fitnesses returns the evaluated fitness values of the snapshot in rank order.
func (s GenerationSnapshot) Fitnesses() []float64 {
	out := make([]float64, 0, len(s.Chromosomes))
	for _, c := range s.Chromosomes {
		if c.Fitness != nil {
			out = append(out, *c.Fitness)
		}
	}
	return out
}

// BestFitness returns the rank-0 fitness when it was evaluated.
func (s GenerationSnapshot) BestFitness() (float64, bool) {
	if len(s.Chromosomes) == 0 || s.Chromosomes[0].Fitness == nil {
		return 0, false
	}
	return *s.Chromosomes[0].Fitness, true
}
