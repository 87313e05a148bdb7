// Package swarm implements global-best particle swarm optimization over the
// search-space vocabulary of package acor. Each particle tracks its own best
// position; velocities are updated from the personal and global bests with
// an inertia term, and bounded variables keep the hard-border policy.
//
// A run performs exactly PopSize*(MaxIterations+1) cost evaluations.
package swarm

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cwbudde/acor"
)

// Config holds all parameters of a run. Start from NewDefaultConfig and fill
// in MaxIterations, PopSize, Variables and Cost.
type Config struct {
	// MaxIterations is the number of swarm updates.
	MaxIterations int
	// PopSize is the number of particles.
	PopSize int
	// Cognitive weighs attraction toward a particle's own best position.
	Cognitive float64
	// Social weighs attraction toward the swarm's best position.
	Social float64
	// Inertia damps the previous velocity, in (0, 1].
	Inertia float64
	// Variables defines the search space, one entry per dimension.
	Variables []acor.Variable
	// Cost is the objective to minimize.
	Cost acor.CostFunc
	// Rand is the randomness source. When nil a time-seeded source is
	// used.
	Rand *rand.Rand
	// OnIteration, when non-nil, is called after each iteration with the
	// swarm's best solution so far.
	OnIteration func(iteration int, best acor.Solution)
}

// NewDefaultConfig returns a config with the reference acceleration values
// c1 = c2 = 2 and a damping inertia of 0.729. MaxIterations, PopSize,
// Variables and Cost must still be set.
func NewDefaultConfig() Config {
	return Config{
		Cognitive: 2.0,
		Social:    2.0,
		Inertia:   0.729,
	}
}

// Validate checks every field. Optimize calls it before any sampling work.
func (c *Config) Validate() error {
	if c.MaxIterations <= 0 {
		return &acor.ConfigError{Field: "MaxIterations", Reason: "must be greater than zero"}
	}
	if c.PopSize <= 0 {
		return &acor.ConfigError{Field: "PopSize", Reason: "must be greater than zero"}
	}
	if c.Cognitive < 0 {
		return &acor.ConfigError{Field: "Cognitive", Reason: "must not be negative"}
	}
	if c.Social < 0 {
		return &acor.ConfigError{Field: "Social", Reason: "must not be negative"}
	}
	if c.Inertia <= 0 || c.Inertia > 1 {
		return &acor.ConfigError{Field: "Inertia", Reason: "must be in (0, 1]"}
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
	// Best is the swarm's global best solution.
	Best acor.Solution
	// Evaluations counts cost-function calls.
	Evaluations int
}

type particle struct {
	position []float64
	velocity []float64
	best     []float64
	bestCost float64
}

// Optimize runs particle swarm optimization to completion. Validation
// failures are *acor.ConfigError; cost-function errors abort the run and
// propagate.
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

	swarm := make([]particle, cfg.PopSize)
	var global acor.Solution
	evals := 0

	for i := range swarm {
		position := make([]float64, len(vars))
		for j, v := range vars {
			position[j] = v.Sample(rng)
		}
		cost, err := evalCost(cfg.Cost, position, acor.Initialization())
		if err != nil {
			return nil, err
		}
		evals++

		swarm[i] = particle{
			position: position,
			velocity: make([]float64, len(vars)),
			best:     clonePosition(position),
			bestCost: cost,
		}
		if i == 0 || cost < global.Cost {
			global = acor.Solution{Position: clonePosition(position), Cost: cost}
		}
	}

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		for i := range swarm {
			p := &swarm[i]
			for j, v := range vars {
				r1, r2 := rng.Float64(), rng.Float64()
				p.velocity[j] = cfg.Inertia*p.velocity[j] +
					cfg.Cognitive*r1*(p.best[j]-p.position[j]) +
					cfg.Social*r2*(global.Position[j]-p.position[j])
				p.position[j] = v.Clamp(p.position[j] + p.velocity[j])
			}

			cost, err := evalCost(cfg.Cost, p.position, acor.Iteration(iter))
			if err != nil {
				return nil, err
			}
			evals++

			if cost < p.bestCost {
				p.bestCost = cost
				copy(p.best, p.position)
			}
			if cost < global.Cost {
				global = acor.Solution{Position: clonePosition(p.position), Cost: cost}
			}
		}

		if cfg.OnIteration != nil {
			cfg.OnIteration(iter, acor.Solution{Position: clonePosition(global.Position), Cost: global.Cost})
		}
	}

	return &Result{Best: global, Evaluations: evals}, nil
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
