package acor

import (
	"fmt"
	"math/rand"
)

// Phase identifies which stage of a run requested a cost evaluation.
type Phase int

const (
	// PhaseInitialization marks evaluations performed while the solution
	// archive is seeded by uniform random sampling.
	PhaseInitialization Phase = iota
	// PhaseIteration marks evaluations performed inside the main loop.
	PhaseIteration
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialization:
		return "initialization"
	case PhaseIteration:
		return "iteration"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Evaluation carries phase context to cost functions that care about the
// stage of the run (caching, staged curricula and the like). Iteration is
// zero-based and meaningful only when Phase is PhaseIteration.
type Evaluation struct {
	Phase     Phase
	Iteration int
}

// Initialization returns the evaluation context used while the archive is
// seeded.
func Initialization() Evaluation {
	return Evaluation{Phase: PhaseInitialization}
}

// Iteration returns the evaluation context for the n-th main-loop iteration.
func Iteration(n int) Evaluation {
	return Evaluation{Phase: PhaseIteration, Iteration: n}
}

func (e Evaluation) String() string {
	if e.Phase == PhaseIteration {
		return fmt.Sprintf("iteration %d", e.Iteration)
	}
	return e.Phase.String()
}

// CostFunc evaluates a candidate position. Lower is better. An error aborts
// the run and propagates to the caller.
type CostFunc func(position []float64, eval Evaluation) (float64, error)

// Variable defines one decision variable: the range used for initial uniform
// sampling and whether that range also constrains the search afterwards.
type Variable struct {
	Lower   float64
	Upper   float64
	Bounded bool
}

// Bounded returns a variable clamped to [lower, upper] throughout the run.
func Bounded(lower, upper float64) Variable {
	return Variable{Lower: lower, Upper: upper, Bounded: true}
}

// Unbounded returns a variable whose range only seeds initialization.
// Samples may drift outside it during the search.
func Unbounded(lower, upper float64) Variable {
	return Variable{Lower: lower, Upper: upper, Bounded: false}
}

// Sample draws a value uniformly from the variable's initial range.
func (v Variable) Sample(rng *rand.Rand) float64 {
	return v.Lower + rng.Float64()*(v.Upper-v.Lower)
}

// Clamp applies the hard-border policy: bounded variables are pulled to the
// nearest range limit, unbounded values pass through unchanged.
func (v Variable) Clamp(x float64) float64 {
	if !v.Bounded {
		return x
	}
	if x < v.Lower {
		return v.Lower
	}
	if x > v.Upper {
		return v.Upper
	}
	return x
}

// Config holds all parameters of a run. Start from NewDefaultConfig and fill
// in MaxIterations, Variables and Cost.
type Config struct {
	// MaxIterations is the number of main-loop iterations and the sole
	// termination criterion.
	MaxIterations int
	// PopSize is the number of ants sampled per iteration.
	PopSize int
	// ArchiveSize is the archive capacity k. Must be at least 2: the
	// spread estimate divides by k-1.
	ArchiveSize int
	// Q shapes the rank weighting. Smaller values concentrate guide
	// selection on top-ranked solutions.
	Q float64
	// Xi scales the per-variable sampling spread, in (0, 1]. Smaller
	// values shrink the search neighborhood faster.
	Xi float64
	// Variables defines the search space, one entry per dimension.
	Variables []Variable
	// Cost is the objective to minimize.
	Cost CostFunc
	// Rand is the randomness source. When nil a time-seeded source is
	// used; supply a fixed-seed source for reproducible runs.
	Rand *rand.Rand
	// OnIteration, when non-nil, is called after each iteration's archive
	// update with the best solution so far.
	OnIteration func(iteration int, best Solution)
}

// NewDefaultConfig returns a config with the reference parameter values:
// population 5, archive 50, q 0.1, xi 0.85. MaxIterations, Variables and
// Cost must still be set.
func NewDefaultConfig() Config {
	return Config{
		PopSize:     5,
		ArchiveSize: 50,
		Q:           0.1,
		Xi:          0.85,
	}
}

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks every field. Optimize calls it before any sampling work;
// it is exported so callers assembling configs can fail fast.
func (c *Config) Validate() error {
	if c.MaxIterations <= 0 {
		return &ConfigError{Field: "MaxIterations", Reason: "must be greater than zero"}
	}
	if c.PopSize <= 0 {
		return &ConfigError{Field: "PopSize", Reason: "must be greater than zero"}
	}
	if c.ArchiveSize <= 1 {
		return &ConfigError{Field: "ArchiveSize", Reason: "must be at least 2"}
	}
	if c.Q <= 0 {
		return &ConfigError{Field: "Q", Reason: "must be greater than zero"}
	}
	if c.Xi <= 0 || c.Xi > 1 {
		return &ConfigError{Field: "Xi", Reason: "must be in (0, 1]"}
	}
	if len(c.Variables) == 0 {
		return &ConfigError{Field: "Variables", Reason: "must not be empty"}
	}
	for i, v := range c.Variables {
		if v.Lower > v.Upper {
			return &ConfigError{
				Field:  "Variables",
				Reason: fmt.Sprintf("variable %d: lower bound %g exceeds upper bound %g", i, v.Lower, v.Upper),
			}
		}
	}
	if c.Cost == nil {
		return &ConfigError{Field: "Cost", Reason: "must not be nil"}
	}
	return nil
}
