package stats

import (
	"errors"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// PlotFitnessHistory draws best, mean and worst fitness against generation
// and saves the chart to outPath. The image format follows the file
// extension (png, svg, pdf).
func PlotFitnessHistory(history []GenerationSummary, title, outPath string) error {
	if len(history) == 0 {
		return errors.New("fitness history is empty")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	bestPts := make(plotter.XYs, len(history))
	meanPts := make(plotter.XYs, len(history))
	worstPts := make(plotter.XYs, len(history))
	for i, summary := range history {
		x := float64(summary.Generation)
		bestPts[i].X, bestPts[i].Y = x, summary.Best
		meanPts[i].X, meanPts[i].Y = x, summary.Mean
		worstPts[i].X, worstPts[i].Y = x, summary.Worst
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return err
	}
	worstLine, err := plotter.NewLine(worstPts)
	if err != nil {
		return err
	}
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	worstLine.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}

	p.Add(plotter.NewGrid(), bestLine, meanLine, worstLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Add("worst", worstLine)
	p.Legend.Top = true

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return p.Save(plotWidth, plotHeight, outPath)
}
