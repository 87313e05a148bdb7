// Package acor implements Ant Colony Optimization for Continuous Domains
// (ACOr) following Socha and Dorigo (2006). A ranked archive of candidate
// solutions is refined iteratively: each new candidate is sampled from a
// Gaussian kernel centered on an archive member chosen by rank-biased
// roulette selection, with a per-variable spread derived from the archive's
// dispersion around the chosen guide.
//
// The optimizer minimizes a black-box cost function over a fixed number of
// real decision variables. Each variable is either bounded (clamped to its
// range with a hard border) or unbounded (the range only seeds
// initialization). A run is a single blocking call performing exactly
// ArchiveSize + PopSize*MaxIterations cost evaluations.
package acor

import (
	"fmt"
	"math/rand"
	"time"
)

// Solution is one point of the search space together with its cost.
type Solution struct {
	Position []float64
	Cost     float64
}

// Result of a finished run.
type Result struct {
	// Best is the rank-0 archive entry.
	Best Solution
	// Archive is the full solution archive, sorted ascending by cost.
	Archive []Solution
	// Evaluations counts cost-function calls.
	Evaluations int
}

// Optimize runs ACOr to completion and returns the best solution found along
// with the final archive. The configuration is validated before any sampling
// work; validation failures are *ConfigError. A cost-function error aborts
// the run immediately and is returned wrapped with the failing phase.
func Optimize(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := newOptimizer(cfg)
	if err := o.initArchive(); err != nil {
		return nil, err
	}
	o.weights = rankWeights(o.cfg.ArchiveSize, o.cfg.Q)

	for iter := 0; iter < o.cfg.MaxIterations; iter++ {
		if err := o.step(iter); err != nil {
			return nil, err
		}
		if o.cfg.OnIteration != nil {
			o.cfg.OnIteration(iter, cloneSolution(o.archive[0]))
		}
	}

	return o.result(), nil
}

// optimizer holds the state of one run. The archive is private to the run;
// the result exposes a copy.
type optimizer struct {
	cfg     Config
	rng     *rand.Rand
	archive []Solution
	weights []float64
	evals   int
}

func newOptimizer(cfg Config) *optimizer {
	// Copy the variable definitions so caller mutation after the run has
	// started cannot skew it.
	vars := make([]Variable, len(cfg.Variables))
	copy(vars, cfg.Variables)
	cfg.Variables = vars

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &optimizer{cfg: cfg, rng: rng}
}

// step runs one iteration: sample a full population, then merge, re-rank and
// truncate the archive in a single two-phase update.
func (o *optimizer) step(iteration int) error {
	pop := make([]Solution, 0, o.cfg.PopSize)
	for ant := 0; ant < o.cfg.PopSize; ant++ {
		s, err := o.sampleAnt(iteration)
		if err != nil {
			return err
		}
		pop = append(pop, s)
	}
	o.merge(pop)
	return nil
}

func (o *optimizer) evaluate(position []float64, eval Evaluation) (float64, error) {
	o.evals++
	cost, err := o.cfg.Cost(position, eval)
	if err != nil {
		return 0, fmt.Errorf("cost function (%s): %w", eval, err)
	}
	return cost, nil
}

func (o *optimizer) result() *Result {
	archive := make([]Solution, len(o.archive))
	for i, s := range o.archive {
		archive[i] = cloneSolution(s)
	}
	return &Result{
		Best:        cloneSolution(o.archive[0]),
		Archive:     archive,
		Evaluations: o.evals,
	}
}

func cloneSolution(s Solution) Solution {
	position := make([]float64, len(s.Position))
	copy(position, s.Position)
	return Solution{Position: position, Cost: s.Cost}
}
