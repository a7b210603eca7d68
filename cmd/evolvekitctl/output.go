package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"evolvekit/internal/stats"
	"evolvekit/internal/storage"
	"evolvekit/pkg/evolvekit"
)

// stdoutIsTerminal selects aligned, humanized tables for people and plain
// tab-separated rows for pipes.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printRunSummary(summary evolvekit.RunSummary) {
	fmt.Printf("run_id=%s problem=%s target=%s generations=%s final_best_fitness=%s\n",
		summary.RunID,
		summary.Problem,
		summary.Target,
		humanize.Comma(int64(summary.Generations)),
		humanize.Ftoa(summary.FinalBestFitness),
	)
	fmt.Printf("best_genes=%s\n", formatGenes(summary.BestGenes))
}

func printRuns(w io.Writer, runs []evolvekit.RunItem, pretty bool) error {
	if !pretty {
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.RunID, r.CreatedAtUTC, r.Problem, r.Target, r.Seed, r.Population, r.Generations, formatOptional(r.FinalBestFitness))
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tPROBLEM\tTARGET\tSEED\tPOP\tGENS\tBEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.RunID,
			humanizeCreatedAt(r.CreatedAtUTC),
			r.Problem,
			r.Target,
			r.Seed,
			humanize.Comma(int64(r.Population)),
			humanize.Comma(int64(r.Generations)),
			formatOptional(r.FinalBestFitness),
		)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, history []stats.GenerationSummary, pretty bool) error {
	if !pretty {
		for _, h := range history {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				h.Generation,
				strconv.FormatFloat(h.Best, 'g', -1, 64),
				strconv.FormatFloat(h.Mean, 'g', -1, 64),
				strconv.FormatFloat(h.Median, 'g', -1, 64),
				strconv.FormatFloat(h.Worst, 'g', -1, 64),
				strconv.FormatFloat(h.StdDev, 'g', -1, 64),
			)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GEN\tBEST\tMEAN\tMEDIAN\tWORST\tSTD DEV")
	for _, h := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Comma(int64(h.Generation)),
			humanize.Ftoa(h.Best),
			humanize.FtoaWithDigits(h.Mean, 4),
			humanize.FtoaWithDigits(h.Median, 4),
			humanize.Ftoa(h.Worst),
			humanize.FtoaWithDigits(h.StdDev, 4),
		)
	}
	return tw.Flush()
}

func humanizeCreatedAt(createdAt string) string {
	t, err := time.Parse(storage.CreatedAtLayout, createdAt)
	if err != nil {
		return createdAt
	}
	return humanize.Time(t)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return humanize.Ftoa(*v)
}

func formatGenes(genes []any) string {
	parts := make([]string, len(genes))
	for i, g := range genes {
		parts[i] = fmt.Sprint(g)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
