package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
	"github.com/cwbudde/acor/internal/runner"
	"github.com/cwbudde/acor/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	optimizerName string
	functionName  string
	dim           int
	unbounded     bool
	iters         int
	popSize       int
	archiveSize   int
	qParam        float64
	xiParam       float64
	seed          int64
	runDataDir    string
	runID         string
	configPath    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long: `Runs one optimization of a benchmark function and stores the result
record, cost trace and convergence plot under the data directory.`,
	RunE: runOptimization,
}

func init() {
	defaults := defaultRunSettings()

	runCmd.Flags().StringVar(&optimizerName, "optimizer", defaults.Optimizer, "Optimizer: acor, anneal, swarm, mayfly")
	runCmd.Flags().StringVar(&functionName, "function", defaults.Function, "Benchmark function name")
	runCmd.Flags().IntVar(&dim, "dim", defaults.Dim, "Number of dimensions")
	runCmd.Flags().BoolVar(&unbounded, "unbounded", defaults.Unbounded, "Search without clamping to the function bounds")
	runCmd.Flags().IntVar(&iters, "iters", defaults.Iters, "Max iterations")
	runCmd.Flags().IntVar(&popSize, "pop", defaults.PopSize, "Ants sampled per iteration")
	runCmd.Flags().IntVar(&archiveSize, "archive", defaults.Archive, "Solution archive size (acor)")
	runCmd.Flags().Float64Var(&qParam, "q", defaults.Q, "Rank locality, small values favor top solutions (acor)")
	runCmd.Flags().Float64Var(&xiParam, "xi", defaults.Xi, "Spread factor for the sampling kernels (acor)")
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Random seed")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for run storage (empty disables persistence)")
	runCmd.Flags().StringVar(&runID, "id", "", "Run ID (default: random UUID)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML file with run settings, explicit flags take precedence")

	rootCmd.AddCommand(runCmd)
}

// runSettings mirrors the run flags so a whole run can also be described in
// a YAML file passed via --config.
type runSettings struct {
	Optimizer string  `yaml:"optimizer"`
	Function  string  `yaml:"function"`
	Dim       int     `yaml:"dim"`
	Unbounded bool    `yaml:"unbounded"`
	Iters     int     `yaml:"iters"`
	PopSize   int     `yaml:"popSize"`
	Archive   int     `yaml:"archive"`
	Q         float64 `yaml:"q"`
	Xi        float64 `yaml:"xi"`
	Seed      int64   `yaml:"seed"`

	// Annealing knobs, only reachable through the config file.
	LocalIters  int     `yaml:"localIters"`
	Temperature float64 `yaml:"temperature"`
	Cooling     float64 `yaml:"cooling"`
	StepSize    float64 `yaml:"stepSize"`

	// Swarm knobs, only reachable through the config file.
	Cognitive float64 `yaml:"cognitive"`
	Social    float64 `yaml:"social"`
	Inertia   float64 `yaml:"inertia"`
}

func defaultRunSettings() runSettings {
	params := opt.DefaultParams()
	return runSettings{
		Optimizer:   "acor",
		Function:    "sphere",
		Dim:         2,
		Iters:       params.Iterations,
		PopSize:     params.PopSize,
		Archive:     params.ArchiveSize,
		Q:           params.Q,
		Xi:          params.Xi,
		Seed:        params.Seed,
		LocalIters:  params.LocalIterations,
		Temperature: params.InitialTemperature,
		Cooling:     params.Cooling,
		StepSize:    params.StepSize,
		Cognitive:   params.Cognitive,
		Social:      params.Social,
		Inertia:     params.Inertia,
	}
}

// params maps the settings onto the optimizer factory knobs.
func (s runSettings) params() opt.Params {
	return opt.Params{
		Iterations:         s.Iters,
		PopSize:            s.PopSize,
		Seed:               s.Seed,
		ArchiveSize:        s.Archive,
		Q:                  s.Q,
		Xi:                 s.Xi,
		LocalIterations:    s.LocalIters,
		InitialTemperature: s.Temperature,
		Cooling:            s.Cooling,
		StepSize:           s.StepSize,
		Cognitive:          s.Cognitive,
		Social:             s.Social,
		Inertia:            s.Inertia,
	}
}

// runConfig builds the copy of the configuration stored with the record.
func (s runSettings) runConfig() store.RunConfig {
	return store.RunConfig{
		Optimizer:   s.Optimizer,
		Function:    s.Function,
		Dim:         s.Dim,
		Bounded:     !s.Unbounded,
		Iterations:  s.Iters,
		PopSize:     s.PopSize,
		ArchiveSize: s.Archive,
		Q:           s.Q,
		Xi:          s.Xi,
		Seed:        s.Seed,
	}
}

// applyConfigFile overlays the YAML file at path onto settings. Keys absent
// from the file leave the current values untouched.
func applyConfigFile(settings *runSettings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// loadRunSettings resolves the effective settings: defaults, then the
// --config file, then any flag given explicitly on the command line.
func loadRunSettings(cmd *cobra.Command) (runSettings, error) {
	settings := defaultRunSettings()

	if configPath != "" {
		if err := applyConfigFile(&settings, configPath); err != nil {
			return settings, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("optimizer") {
		settings.Optimizer = optimizerName
	}
	if flags.Changed("function") {
		settings.Function = functionName
	}
	if flags.Changed("dim") {
		settings.Dim = dim
	}
	if flags.Changed("unbounded") {
		settings.Unbounded = unbounded
	}
	if flags.Changed("iters") {
		settings.Iters = iters
	}
	if flags.Changed("pop") {
		settings.PopSize = popSize
	}
	if flags.Changed("archive") {
		settings.Archive = archiveSize
	}
	if flags.Changed("q") {
		settings.Q = qParam
	}
	if flags.Changed("xi") {
		settings.Xi = xiParam
	}
	if flags.Changed("seed") {
		settings.Seed = seed
	}

	return settings, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	settings, err := loadRunSettings(cmd)
	if err != nil {
		return err
	}

	fn, err := bench.Lookup(settings.Function)
	if err != nil {
		return err
	}

	optimizer, err := opt.New(settings.Optimizer, settings.params())
	if err != nil {
		return err
	}

	problem := runner.Problem{Function: fn, Dim: settings.Dim, Bounded: !settings.Unbounded}

	result, err := runner.Run(optimizer, problem, runner.DefaultConvergenceConfig())
	if err != nil {
		return err
	}

	if runDataDir != "" {
		id := runID
		if id == "" {
			id = uuid.New().String()
		}
		if err := saveRun(runDataDir, id, settings.runConfig(), result); err != nil {
			return err
		}
		fmt.Printf("Saved run %s\n", id)
	}

	eps := 0.0
	if result.Elapsed > 0 {
		eps = float64(result.Evaluations) / result.Elapsed.Seconds()
	}

	fmt.Printf("%s on %s (dim %d): cost %.6g -> %.6g, %d evaluations, %.0f evals/sec\n",
		optimizer.Name(), fn.Name, settings.Dim,
		result.InitialCost, result.BestCost, result.Evaluations, eps)
	fmt.Printf("Best position: %s\n", formatPosition(result.BestParams))
	if result.Converged {
		fmt.Printf("Cost curve flattened at iteration %d\n", result.ConvergedAt)
	}

	return nil
}

// saveRun persists the record, the cost trace and the convergence plot for a
// finished run.
func saveRun(dataDir, id string, config store.RunConfig, result *runner.Result) error {
	st, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	record := store.NewRecord(id, result.BestParams, result.BestCost, result.InitialCost,
		result.Evaluations, result.Elapsed, config)
	if err := st.SaveRecord(id, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	// Optimizers without progress reporting produce no trace.
	if len(result.Trace) == 0 {
		return nil
	}

	tw, err := store.NewTraceWriter(st.BaseDir(), id)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}
	for _, entry := range result.Trace {
		if err := tw.Write(entry); err != nil {
			tw.Close()
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close trace: %w", err)
	}

	title := fmt.Sprintf("%s on %s", config.Optimizer, config.Function)
	plotPath := filepath.Join(st.RunDir(id), "convergence.png")
	if err := runner.WritePlot(result.Trace, title, plotPath); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}

	slog.Info("Run artifacts saved", "run_id", id, "dir", st.RunDir(id))
	return nil
}

func formatPosition(params []float64) string {
	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
