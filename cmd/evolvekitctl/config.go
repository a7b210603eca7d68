package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"evolvekit/internal/model"
	"evolvekit/pkg/evolvekit"
)

// loadRunRequestFromConfig reads a run request from a JSON or TOML file,
// chosen by extension. Both formats share the same snake_case keys; slot
// strategy names live in a nested "strategies" table.
func loadRunRequestFromConfig(path string) (evolvekit.RunRequest, error) {
	raw, err := readConfigMap(path)
	if err != nil {
		return evolvekit.RunRequest{}, err
	}

	var req evolvekit.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["problem"]); ok {
		req.Problem = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["chromosome_length"]); ok {
		req.ChromosomeLength = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asBool(raw["until_termination"]); ok {
		req.UntilTermination = v
	}
	if v, ok := asBool(raw["update_fitness"]); ok {
		req.UpdateFitness = v
	}
	if v, ok := asFloat64(raw["parent_ratio"]); ok {
		req.ParentRatio = v
	}
	if v, ok := asFloat64(raw["selection_probability"]); ok {
		req.SelectionProbability = v
	}
	if v, ok := asFloat64(raw["tournament_size_ratio"]); ok {
		req.TournamentSizeRatio = v
	}
	if v, ok := asFloat64(raw["chromosome_mutation_rate"]); ok {
		req.ChromosomeMutationRate = v
	}
	if v, ok := asFloat64(raw["gene_mutation_rate"]); ok {
		req.GeneMutationRate = v
	}
	if v, ok := asFloat64(raw["adapt_rate"]); ok {
		req.AdaptRate = &v
	}
	if v, ok := asFloat64(raw["percent_converged"]); ok {
		req.PercentConverged = v
	}
	if v, ok := asInt(raw["generation_goal"]); ok {
		req.GenerationGoal = v
	}
	if v, ok := asFloat64(raw["fitness_goal"]); ok {
		req.FitnessGoal = &v
	}
	if v, ok := asFloat64(raw["tolerance_goal"]); ok {
		req.ToleranceGoal = &v
	}
	if strategies, ok := raw["strategies"].(map[string]any); ok {
		req.Strategies = strategyNamesFromMap(strategies)
	}
	return req, nil
}

func readConfigMap(path string) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return nil, err
		}
	case ".json", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	return raw, nil
}

func strategyNamesFromMap(raw map[string]any) model.StrategyNames {
	var names model.StrategyNames
	for key, dst := range map[string]*string{
		"initialization":       &names.Initialization,
		"parent_selection":     &names.ParentSelection,
		"crossover_population": &names.CrossoverPopulation,
		"crossover_individual": &names.CrossoverIndividual,
		"survivor_selection":   &names.SurvivorSelection,
		"mutation_population":  &names.MutationPopulation,
		"mutation_individual":  &names.MutationIndividual,
		"termination":          &names.Termination,
	} {
		if v, ok := asString(raw[key]); ok {
			*dst = v
		}
	}
	return names
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt also accepts int64, which is how TOML decodes integers.
func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *evolvekit.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "problem":
			req.Problem = v.(string)
		case "seed":
			req.Seed = v.(int64)
		case "pop":
			req.Population = v.(int)
		case "length":
			req.ChromosomeLength = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "until-done":
			req.UntilTermination = v.(bool)
		case "update-fitness":
			req.UpdateFitness = v.(bool)
		case "parent-ratio":
			req.ParentRatio = v.(float64)
		case "selection-prob":
			req.SelectionProbability = v.(float64)
		case "tournament-ratio":
			req.TournamentSizeRatio = v.(float64)
		case "chromosome-rate":
			req.ChromosomeMutationRate = v.(float64)
		case "gene-rate":
			req.GeneMutationRate = v.(float64)
		case "adapt-rate":
			rate := v.(float64)
			req.AdaptRate = &rate
		case "percent-converged":
			req.PercentConverged = v.(float64)
		case "generation-goal":
			req.GenerationGoal = v.(int)
		case "fitness-goal":
			goal := v.(float64)
			req.FitnessGoal = &goal
		case "tolerance-goal":
			tolerance := v.(float64)
			if tolerance > 0 {
				req.ToleranceGoal = &tolerance
			} else {
				req.ToleranceGoal = nil
			}
		case "initialization":
			overrideName(&req.Strategies.Initialization, v.(string))
		case "selection":
			overrideName(&req.Strategies.ParentSelection, v.(string))
		case "crossover-population":
			overrideName(&req.Strategies.CrossoverPopulation, v.(string))
		case "crossover":
			overrideName(&req.Strategies.CrossoverIndividual, v.(string))
		case "survivors":
			overrideName(&req.Strategies.SurvivorSelection, v.(string))
		case "mutation-population":
			overrideName(&req.Strategies.MutationPopulation, v.(string))
		case "mutation":
			overrideName(&req.Strategies.MutationIndividual, v.(string))
		case "termination":
			overrideName(&req.Strategies.Termination, v.(string))
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}

func overrideName(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func loadOrDefaultRunRequest(configPath string) (evolvekit.RunRequest, error) {
	if configPath == "" {
		return evolvekit.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return evolvekit.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
