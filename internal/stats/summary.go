package stats

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"evolvekit/internal/model"
)

var ErrNoFitness = errors.New("generation has no evaluated chromosomes")

// GenerationSummary condenses one persisted generation. Best and Worst follow
// the stored best-first rank order, so they are correct for either target.
type GenerationSummary struct {
	Generation int     `json:"generation"`
	Size       int     `json:"size"`
	Evaluated  int     `json:"evaluated"`
	Best       float64 `json:"best"`
	Worst      float64 `json:"worst"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
}

func SummarizeGeneration(snapshot model.GenerationSnapshot) (GenerationSummary, error) {
	fitness := snapshot.Fitnesses()
	if len(fitness) == 0 {
		return GenerationSummary{}, fmt.Errorf("%w: %s/%d", ErrNoFitness, snapshot.RunID, snapshot.Generation)
	}

	summary := GenerationSummary{
		Generation: snapshot.Generation,
		Size:       len(snapshot.Chromosomes),
		Evaluated:  len(fitness),
		Best:       fitness[0],
		Worst:      fitness[len(fitness)-1],
		Mean:       stat.Mean(fitness, nil),
	}
	if len(fitness) > 1 {
		summary.StdDev = stat.StdDev(fitness, nil)
	}

	ascending := append([]float64(nil), fitness...)
	sort.Float64s(ascending)
	summary.Median = stat.Quantile(0.5, stat.Empirical, ascending, nil)
	return summary, nil
}

// SummarizeRun summarizes snapshots in the order given.
func SummarizeRun(snapshots []model.GenerationSnapshot) ([]GenerationSummary, error) {
	history := make([]GenerationSummary, 0, len(snapshots))
	for _, snapshot := range snapshots {
		summary, err := SummarizeGeneration(snapshot)
		if err != nil {
			return nil, err
		}
		history = append(history, summary)
	}
	return history, nil
}

// BestSeries extracts the best fitness per generation.
func BestSeries(history []GenerationSummary) []float64 {
	series := make([]float64, len(history))
	for i, summary := range history {
		series[i] = summary.Best
	}
	return series
}
