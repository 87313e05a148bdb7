package opt

import (
	"math/rand"

	"github.com/cwbudde/acor"
	"github.com/cwbudde/acor/swarm"
)

// SwarmAdapter runs the particle swarm optimizer behind the Optimizer
// interface.
type SwarmAdapter struct {
	iterations int
	popSize    int
	cognitive  float64
	social     float64
	inertia    float64
	seed       int64
}

// NewSwarm creates a particle swarm adapter from the given parameters.
func NewSwarm(p Params) *SwarmAdapter {
	return &SwarmAdapter{
		iterations: p.Iterations,
		popSize:    p.PopSize,
		cognitive:  p.Cognitive,
		social:     p.Social,
		inertia:    p.Inertia,
		seed:       p.Seed,
	}
}

// Name returns the algorithm identifier.
func (a *SwarmAdapter) Name() string { return "swarm" }

// Run executes the particle swarm optimization.
func (a *SwarmAdapter) Run(cost acor.CostFunc, vars []acor.Variable, progress Progress) (acor.Solution, error) {
	cfg := swarm.NewDefaultConfig()
	cfg.MaxIterations = a.iterations
	cfg.PopSize = a.popSize
	cfg.Cognitive = a.cognitive
	cfg.Social = a.social
	cfg.Inertia = a.inertia
	cfg.Variables = vars
	cfg.Cost = cost
	cfg.Rand = rand.New(rand.NewSource(a.seed))
	if progress != nil {
		cfg.OnIteration = func(iteration int, best acor.Solution) {
			progress(iteration, best.Position, best.Cost)
		}
	}

	result, err := swarm.Optimize(cfg)
	if err != nil {
		return acor.Solution{}, err
	}
	return result.Best, nil
}
