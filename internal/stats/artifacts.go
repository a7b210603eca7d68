package stats

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"evolvekit/internal/model"
)

var historyHeader = []string{"generation", "best", "mean", "median", "worst", "std_dev", "evaluated", "size"}

// ExportRun writes the persisted artifacts of one run into outDir/runID:
// config.json, fitness_history.csv, final_population.csv and, unless
// withPlot is false, fitness_history.png.
func ExportRun(ctx context.Context, reader RunReader, runID, outDir string, withPlot bool) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	cfg, ok, err := reader.GetRunConfig(ctx, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	snapshots, err := reader.GetGenerations(ctx, runID)
	if err != nil {
		return "", err
	}
	history, err := SummarizeRun(snapshots)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(dst, "config.json"), cfg); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(dst, "fitness_history.csv"), func(w io.Writer) error {
		return WriteHistoryCSV(w, history)
	}); err != nil {
		return "", err
	}
	if len(snapshots) > 0 {
		final := snapshots[len(snapshots)-1]
		if err := writeCSVFile(filepath.Join(dst, "final_population.csv"), func(w io.Writer) error {
			return WritePopulationCSV(w, final)
		}); err != nil {
			return "", err
		}
	}
	if withPlot && len(history) > 0 {
		if err := PlotFitnessHistory(history, "Fitness history "+runID, filepath.Join(dst, "fitness_history.png")); err != nil {
			return "", err
		}
	}

	return dst, nil
}

func WriteHistoryCSV(w io.Writer, history []GenerationSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(historyHeader); err != nil {
		return err
	}
	for _, summary := range history {
		if err := writer.Write([]string{
			strconv.Itoa(summary.Generation),
			formatFloat(summary.Best),
			formatFloat(summary.Mean),
			formatFloat(summary.Median),
			formatFloat(summary.Worst),
			formatFloat(summary.StdDev),
			strconv.Itoa(summary.Evaluated),
			strconv.Itoa(summary.Size),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadHistoryCSV(r io.Reader) ([]GenerationSummary, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []GenerationSummary{}, nil
		}
		return nil, err
	}
	if len(header) < len(historyHeader) {
		return nil, fmt.Errorf("fitness history header must have %d columns", len(historyHeader))
	}

	history := make([]GenerationSummary, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		summary, err := parseHistoryRecord(record)
		if err != nil {
			return nil, err
		}
		history = append(history, summary)
	}
	return history, nil
}

func parseHistoryRecord(record []string) (GenerationSummary, error) {
	var (
		summary GenerationSummary
		err     error
	)
	if summary.Generation, err = strconv.Atoi(record[0]); err != nil {
		return GenerationSummary{}, err
	}
	floats := []*float64{&summary.Best, &summary.Mean, &summary.Median, &summary.Worst, &summary.StdDev}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[i+1], 64); err != nil {
			return GenerationSummary{}, err
		}
	}
	if summary.Evaluated, err = strconv.Atoi(record[6]); err != nil {
		return GenerationSummary{}, err
	}
	if summary.Size, err = strconv.Atoi(record[7]); err != nil {
		return GenerationSummary{}, err
	}
	return summary, nil
}

// WritePopulationCSV writes one row per chromosome: rank, fitness (empty
// when unevaluated) and the genes joined by spaces.
func WritePopulationCSV(w io.Writer, snapshot model.GenerationSnapshot) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"rank", "fitness", "genes"}); err != nil {
		return err
	}
	for _, c := range snapshot.Chromosomes {
		fitness := ""
		if c.Fitness != nil {
			fitness = formatFloat(*c.Fitness)
		}
		genes := make([]string, len(c.Genes))
		for i, g := range c.Genes {
			genes[i] = fmt.Sprint(g)
		}
		if err := writer.Write([]string{strconv.Itoa(c.Rank), fitness, strings.Join(genes, " ")}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
