package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"evolvekit/internal/storage"
	"evolvekit/pkg/evolvekit"
)

const (
	defaultDBPath = "evolvekit.db"
	exportsDir    = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	case "problems":
		return runProblems(ctx, args[1:])
	case "strategies":
		return runStrategies(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// storeFlags are shared by every command that opens a store.
type storeFlags struct {
	kind     *string
	dbPath   *string
	logLevel *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:     fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:   fs.String("db-path", defaultDBPath, "sqlite database path"),
		logLevel: fs.String("log-level", "warn", "log level: debug|info|warn|error"),
	}
}

func (f storeFlags) open() (*evolvekit.Client, error) {
	logger, err := newLogger(*f.logLevel)
	if err != nil {
		return nil, err
	}
	return evolvekit.New(evolvekit.Options{
		StoreKind:  *f.kind,
		DBPath:     *f.dbPath,
		ExportsDir: exportsDir,
		Logger:     logger,
	})
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *sf.kind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *sf.kind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config path (.json or .toml)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	problemName := fs.String("problem", "is_it_5", "problem name")
	seed := fs.Int64("seed", 1, "rng seed")
	population := fs.Int("pop", 10, "population size")
	length := fs.Int("length", 10, "chromosome length")
	generations := fs.Int("gens", 10, "generations per batch")
	untilDone := fs.Bool("until-done", false, "repeat batches until the termination strategy stops the run")
	updateFitness := fs.Bool("update-fitness", false, "re-evaluate every chromosome each generation")
	parentRatio := fs.Float64("parent-ratio", 0.1, "fraction of the population selected as parents")
	selectionProb := fs.Float64("selection-prob", 0.5, "tournament selection probability")
	tournamentRatio := fs.Float64("tournament-ratio", 0.1, "tournament size as a fraction of the population")
	chromosomeRate := fs.Float64("chromosome-rate", 0.15, "chromosome mutation rate")
	geneRate := fs.Float64("gene-rate", 0.05, "gene mutation rate")
	adaptRate := fs.Float64("adapt-rate", 0.05, "adaptive controller rate (0 disables)")
	percentConverged := fs.Float64("percent-converged", 0.5, "fraction of the population probed for convergence")
	generationGoal := fs.Int("generation-goal", 100, "stop after this many generations")
	fitnessGoal := fs.Float64("fitness-goal", 0, "stop once the best fitness reaches this value (problem default when unset)")
	toleranceGoal := fs.Float64("tolerance-goal", 0, "stop once the converged window is within this tolerance (0 disables)")
	initialization := fs.String("initialization", "", "initialization strategy")
	parentSelection := fs.String("selection", "", "parent selection strategy")
	crossoverPopulation := fs.String("crossover-population", "", "population crossover strategy")
	crossoverIndividual := fs.String("crossover", "", "individual crossover strategy")
	survivorSelection := fs.String("survivors", "", "survivor selection strategy")
	mutationPopulation := fs.String("mutation-population", "", "population mutation strategy")
	mutationIndividual := fs.String("mutation", "", "individual mutation strategy")
	termination := fs.String("termination", "", "termination strategy")
	exportDir := fs.String("export-dir", "", "export run artifacts to this directory after the run")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	if *configPath == "" {
		fs.VisitAll(func(f *flag.Flag) {
			setFlags[f.Name] = true
		})
		// Unset goals keep the problem's defaults.
		delete(setFlags, "fitness-goal")
		delete(setFlags, "tolerance-goal")
	}
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	if err := overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":               *runID,
		"problem":              *problemName,
		"seed":                 *seed,
		"pop":                  *population,
		"length":               *length,
		"gens":                 *generations,
		"until-done":           *untilDone,
		"update-fitness":       *updateFitness,
		"parent-ratio":         *parentRatio,
		"selection-prob":       *selectionProb,
		"tournament-ratio":     *tournamentRatio,
		"chromosome-rate":      *chromosomeRate,
		"gene-rate":            *geneRate,
		"adapt-rate":           *adaptRate,
		"percent-converged":    *percentConverged,
		"generation-goal":      *generationGoal,
		"fitness-goal":         *fitnessGoal,
		"tolerance-goal":       *toleranceGoal,
		"initialization":       *initialization,
		"selection":            *parentSelection,
		"crossover-population": *crossoverPopulation,
		"crossover":            *crossoverIndividual,
		"survivors":            *survivorSelection,
		"mutation-population":  *mutationPopulation,
		"mutation":             *mutationIndividual,
		"termination":          *termination,
	}); err != nil {
		return err
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *exportDir != "" {
		exported, err := client.Export(ctx, evolvekit.ExportRequest{RunID: summary.RunID, OutDir: *exportDir})
		if err != nil {
			return err
		}
		if !*jsonOut {
			fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
		}
	}
	if *jsonOut {
		return writeJSONOut(summary)
	}
	printRunSummary(summary)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, evolvekit.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSONOut(runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	return printRuns(os.Stdout, runs, stdoutIsTerminal())
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelection(*runID, *latest, "fitness"); err != nil {
		return err
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, evolvekit.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSONOut(history)
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	return printHistory(os.Stdout, history, stdoutIsTerminal())
}

func runPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "plot the most recent run")
	out := fs.String("out", "", "output PNG path (defaults under the exports directory)")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelection(*runID, *latest, "plot"); err != nil {
		return err
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	plotted, err := client.Plot(ctx, evolvekit.PlotRequest{RunID: *runID, Latest: *latest, OutPath: *out})
	if err != nil {
		return err
	}
	fmt.Printf("plotted run_id=%s to=%s\n", plotted.RunID, plotted.Path)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "export output directory")
	noPlot := fs.Bool("no-plot", false, "skip the fitness history PNG")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelection(*runID, *latest, "export"); err != nil {
		return err
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, evolvekit.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
		NoPlot: *noPlot,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("delete requires --run-id")
	}

	client, err := sf.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.DeleteRun(ctx, *runID); err != nil {
		return err
	}
	fmt.Printf("deleted run_id=%s\n", *runID)
	return nil
}

func runProblems(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("problems", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit problems as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := evolvekit.New(evolvekit.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	problems := client.Problems()
	if *jsonOut {
		return writeJSONOut(problems)
	}
	for _, p := range problems {
		fmt.Printf("%s\t%s\n", p.Name, p.Description)
	}
	return nil
}

func runStrategies(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit strategies as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := evolvekit.New(evolvekit.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	strategies := client.Strategies()
	if *jsonOut {
		return writeJSONOut(strategies)
	}
	for _, s := range strategies {
		fmt.Printf("%s\tdefault=%s\t%s\n", s.Kind, s.Default, strings.Join(s.Names, ","))
	}
	return nil
}

func checkRunSelection(runID string, latest bool, command string) error {
	if runID != "" && latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if runID == "" && !latest {
		return fmt.Errorf("%s requires --run-id or --latest", command)
	}
	return nil
}

func writeJSONOut(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: evolvekitctl <init|reset|run|runs|fitness|plot|export|delete|problems|strategies> [flags]", msg)
}
