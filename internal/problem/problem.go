package problem

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"evolvekit/internal/evo"
	"evolvekit/internal/model"
)

var (
	ErrProblemExists   = errors.New("problem already registered")
	ErrProblemNotFound = errors.New("problem not found")
)

// Problem supplies the fitness function, gene source and any strategy
// defaults needed to evolve solutions to one task.
type Problem interface {
	Name() string
	Description() string
	// Apply installs the problem on cfg. Strategy names already set in cfg
	// take precedence over the problem's defaults.
	Apply(cfg *evo.Config) error
}

var registry = struct {
	mu sync.RWMutex
	m  map[string]Problem
}{
	m: make(map[string]Problem),
}

func init() {
	registerBuiltins()
}

func registerBuiltins() {
	for _, p := range []Problem{IsIt5{}, OneMax{}, Sphere{}, SortPermutation{}, IndexDependent{}} {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}

func Register(p Problem) error {
	if p == nil || p.Name() == "" {
		return errors.New("problem name is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[p.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrProblemExists, p.Name())
	}
	registry.m[p.Name()] = p
	return nil
}

func Get(name string) (Problem, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	p, ok := registry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, name)
	}
	return p, nil
}

// List returns the registered problems sorted by name.
func List() []Problem {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make([]Problem, 0, len(registry.m))
	for _, p := range registry.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func resetRegistryForTests() {
	registry.mu.Lock()
	registry.m = make(map[string]Problem)
	registry.mu.Unlock()
	registerBuiltins()
}

// install fills the parts of cfg every problem sets the same way.
func install(cfg *evo.Config, name string, target model.FitnessTarget, fitness evo.FitnessFunc, defaults model.StrategyNames) {
	cfg.Problem = name
	cfg.Target = target
	cfg.Fitness = fitness
	if cfg.ChromosomeLength <= 0 {
		cfg.ChromosomeLength = evo.DefaultChromosomeLength
	}
	fillStrategyNames(&cfg.Strategies, defaults)
}

func fillStrategyNames(dst *model.StrategyNames, defaults model.StrategyNames) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&dst.Initialization, defaults.Initialization)
	fill(&dst.ParentSelection, defaults.ParentSelection)
	fill(&dst.CrossoverPopulation, defaults.CrossoverPopulation)
	fill(&dst.CrossoverIndividual, defaults.CrossoverIndividual)
	fill(&dst.SurvivorSelection, defaults.SurvivorSelection)
	fill(&dst.MutationPopulation, defaults.MutationPopulation)
	fill(&dst.MutationIndividual, defaults.MutationIndividual)
	fill(&dst.Termination, defaults.Termination)
}

func goalIfUnset(goal *float64, v float64) *float64 {
	if goal != nil {
		return goal
	}
	return &v
}

func intGene(c *model.Chromosome, i int) (int, error) {
	switch v := c.Genes[i].Value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("gene %d: expected integer, got %T", i, c.Genes[i].Value)
	}
}

func floatGene(c *model.Chromosome, i int) (float64, error) {
	switch v := c.Genes[i].Value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("gene %d: expected number, got %T", i, c.Genes[i].Value)
	}
}
