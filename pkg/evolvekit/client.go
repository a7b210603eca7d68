package evolvekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"evolvekit/internal/evo"
	"evolvekit/internal/model"
	"evolvekit/internal/problem"
	"evolvekit/internal/stats"
	"evolvekit/internal/storage"
)

const (
	defaultExportsDir  = "exports"
	defaultDBPath      = "evolvekit.db"
	defaultProblem     = "is_it_5"
	defaultGenerations = 10
	defaultRunsLimit   = 20
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	Logger     *slog.Logger
}

type Client struct {
	store       storage.Store
	exportsDir  string
	logger      *slog.Logger
	initialized bool
}

// RunRequest describes one evolution run. Zero numeric fields take the
// engine defaults; AdaptRate is a pointer because zero disables adaptation.
type RunRequest struct {
	RunID            string
	Problem          string
	Seed             int64
	Population       int
	ChromosomeLength int
	// Generations is the batch size handed to the loop.
	Generations int
	// UntilTermination repeats batches until the termination strategy stops
	// the run. Otherwise exactly one batch runs.
	UntilTermination bool
	UpdateFitness    bool

	ParentRatio            float64
	SelectionProbability   float64
	TournamentSizeRatio    float64
	ChromosomeMutationRate float64
	GeneMutationRate       float64
	AdaptRate              *float64
	PercentConverged       float64

	GenerationGoal int
	FitnessGoal    *float64
	ToleranceGoal  *float64

	Strategies model.StrategyNames
}

type RunSummary struct {
	RunID            string
	Problem          string
	Target           model.FitnessTarget
	Generations      int
	BestByGeneration []float64
	FinalBestFitness float64
	BestGenes        []any
	Strategies       model.StrategyNames
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Problem          string
	Target           model.FitnessTarget
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness *float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type PlotRequest struct {
	RunID   string
	Latest  bool
	OutPath string
}

type PlotSummary struct {
	RunID string
	Path  string
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
	NoPlot bool
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type ProblemItem struct {
	Name        string
	Description string
}

type StrategyItem struct {
	Kind    string
	Default string
	Names   []string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		exportsDir: exportsDir,
		logger:     logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

// Reset drops every recorded run.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	if runID == "" {
		return errors.New("delete requires run id")
	}
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	if _, ok, err := c.store.GetRunConfig(ctx, runID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", stats.ErrRunNotFound, runID)
	}
	return c.store.DeleteRun(ctx, runID)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Problem == "" {
		req.Problem = defaultProblem
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}

	p, err := problem.Get(req.Problem)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}

	cfg := configFromRequest(req)
	cfg.Recorder = storage.NewRecorder(c.store)
	cfg.Logger = c.logger
	if err := p.Apply(&cfg); err != nil {
		return RunSummary{}, err
	}
	ga, err := evo.New(cfg)
	if err != nil {
		return RunSummary{}, err
	}

	c.logger.Info("run started",
		"run_id", ga.RunID,
		"problem", ga.Problem,
		"seed", ga.Seed,
		"population", ga.PopulationSize,
	)
	if req.UntilTermination {
		err = ga.Evolve(ctx, req.Generations, true)
	} else {
		err = ga.EvolveGeneration(ctx, req.Generations, false)
	}
	if err != nil {
		return RunSummary{}, err
	}

	_, history, err := stats.LoadHistory(ctx, c.store, ga.RunID)
	if err != nil {
		return RunSummary{}, err
	}
	summary := RunSummary{
		RunID:            ga.RunID,
		Problem:          ga.Problem,
		Target:           ga.Target,
		Generations:      ga.Generation,
		BestByGeneration: stats.BestSeries(history),
		Strategies:       ga.Strategies,
	}
	// Report the last persisted generation rather than the live population,
	// which the adaptive controller may already have altered.
	if n := len(summary.BestByGeneration); n > 0 {
		summary.FinalBestFitness = summary.BestByGeneration[n-1]
		final, ok, err := c.store.GetGeneration(ctx, ga.RunID, history[n-1].Generation)
		if err != nil {
			return RunSummary{}, err
		}
		if ok && len(final.Chromosomes) > 0 {
			summary.BestGenes = append([]any(nil), final.Chromosomes[0].Genes...)
		}
	}
	c.logger.Info("run finished",
		"run_id", summary.RunID,
		"generations", summary.Generations,
		"best_fitness", summary.FinalBestFitness,
	)
	return summary, nil
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if req.Limit == 0 {
		req.Limit = defaultRunsLimit
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	configs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(configs)
	if len(configs) > req.Limit {
		configs = configs[:req.Limit]
	}

	out := make([]RunItem, 0, len(configs))
	for _, cfg := range configs {
		snapshots, err := c.store.GetGenerations(ctx, cfg.RunID)
		if err != nil {
			return nil, err
		}
		item := RunItem{
			RunID:        cfg.RunID,
			CreatedAtUTC: cfg.CreatedAtUTC,
			Problem:      cfg.Problem,
			Target:       cfg.Target,
			Seed:         cfg.Seed,
			Population:   cfg.PopulationSize,
			Generations:  len(snapshots),
		}
		if len(snapshots) > 0 {
			if best, ok := snapshots[len(snapshots)-1].BestFitness(); ok {
				item.FinalBestFitness = &best
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]stats.GenerationSummary, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "fitness history")
	if err != nil {
		return nil, err
	}
	_, history, err := stats.LoadHistory(ctx, c.store, runID)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) Plot(ctx context.Context, req PlotRequest) (PlotSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "plot")
	if err != nil {
		return PlotSummary{}, err
	}
	cfg, history, err := stats.LoadHistory(ctx, c.store, runID)
	if err != nil {
		return PlotSummary{}, err
	}
	if len(history) == 0 {
		return PlotSummary{}, fmt.Errorf("no generations recorded for run id: %s", runID)
	}
	outPath := req.OutPath
	if outPath == "" {
		outPath = filepath.Join(c.exportsDir, runID+"_fitness.png")
	}
	title := fmt.Sprintf("%s (%s)", cfg.Problem, runID)
	if err := stats.PlotFitnessHistory(history, title, outPath); err != nil {
		return PlotSummary{}, err
	}
	return PlotSummary{RunID: runID, Path: filepath.Clean(outPath)}, nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	dir, err := stats.ExportRun(ctx, c.store, runID, req.OutDir, !req.NoPlot)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) Problems() []ProblemItem {
	problems := problem.List()
	out := make([]ProblemItem, 0, len(problems))
	for _, p := range problems {
		out = append(out, ProblemItem{Name: p.Name(), Description: p.Description()})
	}
	return out
}

// Strategies lists the registered strategy names per pipeline slot.
func (c *Client) Strategies() []StrategyItem {
	out := make([]StrategyItem, 0, len(evo.StrategyKinds))
	for _, kind := range evo.StrategyKinds {
		out = append(out, StrategyItem{
			Kind:    string(kind),
			Default: evo.DefaultStrategies[kind],
			Names:   evo.ListStrategies(kind),
		})
	}
	return out
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool, op string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if err := c.ensureInit(ctx); err != nil {
		return "", err
	}
	if !latest {
		if runID == "" {
			return "", fmt.Errorf("%s requires run id or latest", op)
		}
		return runID, nil
	}
	configs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(configs) == 0 {
		return "", errors.New("no runs available")
	}
	return configs[len(configs)-1].RunID, nil
}

func configFromRequest(req RunRequest) evo.Config {
	cfg := evo.DefaultConfig()
	cfg.RunID = req.RunID
	cfg.Seed = req.Seed
	cfg.UpdateFitness = req.UpdateFitness
	cfg.FitnessGoal = req.FitnessGoal
	cfg.ToleranceGoal = req.ToleranceGoal
	cfg.Strategies = req.Strategies

	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setInt(&cfg.PopulationSize, req.Population)
	setInt(&cfg.ChromosomeLength, req.ChromosomeLength)
	setInt(&cfg.GenerationGoal, req.GenerationGoal)
	setFloat(&cfg.ParentRatio, req.ParentRatio)
	setFloat(&cfg.SelectionProbability, req.SelectionProbability)
	setFloat(&cfg.TournamentSizeRatio, req.TournamentSizeRatio)
	setFloat(&cfg.ChromosomeMutationRate, req.ChromosomeMutationRate)
	setFloat(&cfg.GeneMutationRate, req.GeneMutationRate)
	setFloat(&cfg.PercentConverged, req.PercentConverged)
	if req.AdaptRate != nil {
		cfg.AdaptRate = *req.AdaptRate
	}
	return cfg
}
