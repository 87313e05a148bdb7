// Package anneal implements simulated annealing over the search-space
// vocabulary of package acor. A single state performs a fixed number of
// local moves per global iteration under Metropolis acceptance, with the
// temperature cooled geometrically between global iterations.
//
// A run performs exactly GlobalIterations*LocalIterations + 1 cost
// evaluations.
package anneal

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/acor"
)

// Config holds all parameters of a run. Start from NewDefaultConfig and fill
// in GlobalIterations, LocalIterations, Variables and Cost.
type Config struct {
	// GlobalIterations is the number of cooling steps.
	GlobalIterations int
	// LocalIterations is the number of candidate moves per cooling step.
	LocalIterations int
	// InitialTemperature sets the starting acceptance temperature.
	InitialTemperature float64
	// Cooling multiplies the temperature after each global iteration,
	// in (0, 1).
	Cooling float64
	// StepSize scales candidate moves as a fraction of each variable's
	// initial range width.
	StepSize float64
	// Variables defines the search space, one entry per dimension.
	Variables []acor.Variable
	// Cost is the objective to minimize.
	Cost acor.CostFunc
	// Rand is the randomness source. When nil a time-seeded source is
	// used.
	Rand *rand.Rand
	// OnIteration, when non-nil, is called after each global iteration
	// with the best solution so far.
	OnIteration func(iteration int, best acor.Solution)
}

// NewDefaultConfig returns a config with the reference parameter values:
// initial temperature 10, cooling 0.99, step size 0.01. GlobalIterations,
// LocalIterations, Variables and Cost must still be set.
func NewDefaultConfig() Config {
	return Config{
		InitialTemperature: 10.0,
		Cooling:            0.99,
		StepSize:           1e-2,
	}
}

// Validate checks every field. Optimize calls it before any sampling work.
func (c *Config) Validate() error {
	if c.GlobalIterations <= 0 {
		return &acor.ConfigError{Field: "GlobalIterations", Reason: "must be greater than zero"}
	}
	if c.LocalIterations <= 0 {
		return &acor.ConfigError{Field: "LocalIterations", Reason: "must be greater than zero"}
	}
	if c.InitialTemperature <= 0 {
		return &acor.ConfigError{Field: "InitialTemperature", Reason: "must be greater than zero"}
	}
	if c.Cooling <= 0 || c.Cooling >= 1 {
		return &acor.ConfigError{Field: "Cooling", Reason: "must be in (0, 1)"}
	}
	if c.StepSize <= 0 {
		return &acor.ConfigError{Field: "StepSize", Reason: "must be greater than zero"}
	}
	if len(c.Variables) == 0 {
		return &acor.ConfigError{Field: "Variables", Reason: "must not be empty"}
	}
	for i, v := range c.Variables {
		if v.Lower > v.Upper {
			return &acor.ConfigError{
				Field:  "Variables",
				Reason: fmt.Sprintf("variable %d: lower bound %g exceeds upper bound %g", i, v.Lower, v.Upper),
			}
		}
	}
	if c.Cost == nil {
		return &acor.ConfigError{Field: "Cost", Reason: "must not be nil"}
	}
	return nil
}

// Result of a finished run.
type Result struct {
	// Best is the lowest-cost solution visited, independent of the walk's
	// final state.
	Best acor.Solution
	// Evaluations counts cost-function calls.
	Evaluations int
}

// Optimize runs simulated annealing to completion. Validation failures are
// *acor.ConfigError; cost-function errors abort the run and propagate.
func Optimize(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vars := make([]acor.Variable, len(cfg.Variables))
	copy(vars, cfg.Variables)

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	current := make([]float64, len(vars))
	for j, v := range vars {
		current[j] = v.Sample(rng)
	}
	currentCost, err := evalCost(cfg.Cost, current, acor.Initialization())
	if err != nil {
		return nil, err
	}
	evals := 1

	best := acor.Solution{Position: clonePosition(current), Cost: currentCost}
	temperature := cfg.InitialTemperature
	candidate := make([]float64, len(vars))

	for g := 0; g < cfg.GlobalIterations; g++ {
		for l := 0; l < cfg.LocalIterations; l++ {
			perturb(rng, cfg.StepSize, vars, current, candidate)
			candidateCost, err := evalCost(cfg.Cost, candidate, acor.Iteration(g))
			if err != nil {
				return nil, err
			}
			evals++

			delta := candidateCost - currentCost
			if delta < 0 || rng.Float64() < math.Exp(-delta/temperature) {
				copy(current, candidate)
				currentCost = candidateCost
			}
			if candidateCost < best.Cost {
				best = acor.Solution{Position: clonePosition(candidate), Cost: candidateCost}
			}
		}
		temperature *= cfg.Cooling

		if cfg.OnIteration != nil {
			cfg.OnIteration(g, acor.Solution{Position: clonePosition(best.Position), Cost: best.Cost})
		}
	}

	return &Result{Best: best, Evaluations: evals}, nil
}

// perturb writes a candidate move into dst: each variable shifted by a
// uniform delta within StepSize of its range width, then clamped by the
// variable's boundary policy.
func perturb(rng *rand.Rand, stepSize float64, vars []acor.Variable, current, dst []float64) {
	for j, v := range vars {
		delta := (2*rng.Float64() - 1) * stepSize * (v.Upper - v.Lower)
		dst[j] = v.Clamp(current[j] + delta)
	}
}

func evalCost(cost acor.CostFunc, x []float64, eval acor.Evaluation) (float64, error) {
	c, err := cost(x, eval)
	if err != nil {
		return 0, fmt.Errorf("cost function (%s): %w", eval, err)
	}
	return c, nil
}

func clonePosition(x []float64) []float64 {
	position := make([]float64, len(x))
	copy(position, x)
	return position
}
