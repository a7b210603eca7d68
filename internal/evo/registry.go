package evo

import (
	"fmt"
	"sort"
	"sync"
)

type StrategyKind string

const (
	KindInitialization      StrategyKind = "initialization"
	KindParentSelection     StrategyKind = "parent_selection"
	KindCrossoverPopulation StrategyKind = "crossover_population"
	KindCrossoverIndividual StrategyKind = "crossover_individual"
	KindSurvivorSelection   StrategyKind = "survivor_selection"
	KindMutationPopulation  StrategyKind = "mutation_population"
	KindMutationIndividual  StrategyKind = "mutation_individual"
	KindTermination         StrategyKind = "termination"
)

// StrategyKinds lists the pipeline slots in the order a generation runs them.
var StrategyKinds = []StrategyKind{
	KindInitialization,
	KindParentSelection,
	KindCrossoverPopulation,
	KindCrossoverIndividual,
	KindSurvivorSelection,
	KindMutationPopulation,
	KindMutationIndividual,
	KindTermination,
}

// CustomStrategyName is recorded for slots filled with an unregistered func.
const CustomStrategyName = "custom"

// DefaultStrategies names the built-in strategy used for each empty slot.
var DefaultStrategies = map[StrategyKind]string{
	KindInitialization:      "random",
	KindParentSelection:     "tournament",
	KindCrossoverPopulation: "sequential",
	KindCrossoverIndividual: "single_point",
	KindSurvivorSelection:   "fill_in_best",
	KindMutationPopulation:  "random_avoid_best",
	KindMutationIndividual:  "individual_genes",
	KindTermination:         "fitness_generation_tolerance",
}

type StrategySpec struct {
	Kind     StrategyKind
	Name     string
	Strategy any
}

var strategyRegistry = struct {
	mu sync.RWMutex
	m  map[StrategyKind]map[string]any
}{
	m: make(map[StrategyKind]map[string]any),
}

func init() {
	registerBuiltinStrategies()
}

func registerBuiltinStrategies() {
	builtins := []StrategySpec{
		{KindInitialization, "random", InitializationFunc(RandomInitialization)},
		{KindInitialization, "permutation", InitializationFunc(PermutationInitialization)},
		{KindParentSelection, "tournament", TournamentSelection},
		{KindParentSelection, "roulette", RouletteSelection},
		{KindParentSelection, "random", RandomSelection},
		{KindCrossoverPopulation, "sequential", SequentialCrossover},
		{KindCrossoverPopulation, "random", RandomCrossover},
		{KindCrossoverIndividual, "single_point", IndividualCrossoverFunc(SinglePointCrossover)},
		{KindCrossoverIndividual, "uniform", IndividualCrossoverFunc(UniformCrossover)},
		{KindCrossoverIndividual, "average", IndividualCrossoverFunc(AverageCrossover)},
		{KindCrossoverIndividual, "order", IndividualCrossoverFunc(OrderCrossover)},
		{KindSurvivorSelection, "fill_in_best", FillInBest},
		{KindSurvivorSelection, "fill_in_random", FillInRandom},
		{KindMutationPopulation, "random_selection", RandomSelectionMutation},
		{KindMutationPopulation, "random_avoid_best", RandomAvoidBestMutation},
		{KindMutationIndividual, "individual_genes", IndividualGenesMutation},
		{KindMutationIndividual, "swap_genes", SwapGenesMutation},
		{KindMutationIndividual, "whole_chromosome", WholeChromosomeMutation},
		{KindTermination, "generation_goal", GenerationGoalReached},
		{KindTermination, "fitness_goal", FitnessGoalReached},
		{KindTermination, "fitness_generation_tolerance", FitnessGenerationTolerance},
	}
	for _, spec := range builtins {
		if err := RegisterStrategy(spec); err != nil {
			panic(err)
		}
	}
}

// RegisterStrategy adds a named strategy. The strategy's type must match the
// signature of its kind.
func RegisterStrategy(spec StrategySpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: strategy name is required", ErrConfiguration)
	}
	if spec.Strategy == nil {
		return fmt.Errorf("%w: strategy %s/%s is nil", ErrConfiguration, spec.Kind, spec.Name)
	}
	if !strategyMatchesKind(spec.Kind, spec.Strategy) {
		return fmt.Errorf("%w: %s/%s has type %T", ErrStrategyType, spec.Kind, spec.Name, spec.Strategy)
	}

	strategyRegistry.mu.Lock()
	defer strategyRegistry.mu.Unlock()

	byName := strategyRegistry.m[spec.Kind]
	if byName == nil {
		byName = make(map[string]any)
		strategyRegistry.m[spec.Kind] = byName
	}
	if _, exists := byName[spec.Name]; exists {
		return fmt.Errorf("%w: %s/%s", ErrStrategyExists, spec.Kind, spec.Name)
	}
	byName[spec.Name] = spec.Strategy
	return nil
}

func ListStrategies(kind StrategyKind) []string {
	strategyRegistry.mu.RLock()
	defer strategyRegistry.mu.RUnlock()

	names := make([]string, 0, len(strategyRegistry.m[kind]))
	for name := range strategyRegistry.m[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveStrategy[F any](kind StrategyKind, name string) (F, error) {
	var zero F
	strategyRegistry.mu.RLock()
	strategy, ok := strategyRegistry.m[kind][name]
	strategyRegistry.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w: %s/%s", ErrStrategyNotFound, kind, name)
	}
	fn, ok := strategy.(F)
	if !ok {
		return zero, fmt.Errorf("%w: %s/%s has type %T", ErrStrategyType, kind, name, strategy)
	}
	return fn, nil
}

func strategyMatchesKind(kind StrategyKind, strategy any) bool {
	switch kind {
	case KindInitialization:
		_, ok := strategy.(InitializationFunc)
		return ok
	case KindParentSelection, KindSurvivorSelection:
		_, ok := strategy.(SelectionFunc)
		return ok
	case KindCrossoverPopulation:
		_, ok := strategy.(PopulationCrossoverFunc)
		return ok
	case KindCrossoverIndividual:
		_, ok := strategy.(IndividualCrossoverFunc)
		return ok
	case KindMutationPopulation:
		_, ok := strategy.(PopulationMutationFunc)
		return ok
	case KindMutationIndividual:
		_, ok := strategy.(IndividualMutationFunc)
		return ok
	case KindTermination:
		_, ok := strategy.(TerminationFunc)
		return ok
	default:
		return false
	}
}

// resolveSlot fills one empty strategy slot from the registry and records the
// name used.
func resolveSlot[F any](kind StrategyKind, slot *F, name *string, isNil bool) error {
	if !isNil {
		if *name == "" {
			*name = CustomStrategyName
		}
		return nil
	}
	if *name == "" {
		*name = DefaultStrategies[kind]
	}
	fn, err := resolveStrategy[F](kind, *name)
	if err != nil {
		return err
	}
	*slot = fn
	return nil
}

func resolveStrategies(cfg *Config) error {
	names := &cfg.Strategies
	if err := resolveSlot(KindInitialization, &cfg.Initialization, &names.Initialization, cfg.Initialization == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindParentSelection, &cfg.ParentSelection, &names.ParentSelection, cfg.ParentSelection == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindCrossoverPopulation, &cfg.CrossoverPopulation, &names.CrossoverPopulation, cfg.CrossoverPopulation == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindCrossoverIndividual, &cfg.CrossoverIndividual, &names.CrossoverIndividual, cfg.CrossoverIndividual == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindSurvivorSelection, &cfg.SurvivorSelection, &names.SurvivorSelection, cfg.SurvivorSelection == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindMutationPopulation, &cfg.MutationPopulation, &names.MutationPopulation, cfg.MutationPopulation == nil); err != nil {
		return err
	}
	if err := resolveSlot(KindMutationIndividual, &cfg.MutationIndividual, &names.MutationIndividual, cfg.MutationIndividual == nil); err != nil {
		return err
	}
	return resolveSlot(KindTermination, &cfg.Termination, &names.Termination, cfg.Termination == nil)
}

func resetStrategyRegistryForTests() {
	strategyRegistry.mu.Lock()
	strategyRegistry.m = make(map[StrategyKind]map[string]any)
	strategyRegistry.mu.Unlock()
	registerBuiltinStrategies()
}
