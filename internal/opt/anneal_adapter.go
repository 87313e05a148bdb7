package opt

import (
	"math/rand"

	"github.com/cwbudde/acor"
	"github.com/cwbudde/acor/anneal"
)

// AnnealAdapter runs the simulated annealing optimizer behind the Optimizer
// interface. The Iterations parameter maps to the outer cooling schedule.
type AnnealAdapter struct {
	globalIterations   int
	localIterations    int
	initialTemperature float64
	cooling            float64
	stepSize           float64
	seed               int64
}

// NewAnneal creates a simulated annealing adapter from the given parameters.
func NewAnneal(p Params) *AnnealAdapter {
	return &AnnealAdapter{
		globalIterations:   p.Iterations,
		localIterations:    p.LocalIterations,
		initialTemperature: p.InitialTemperature,
		cooling:            p.Cooling,
		stepSize:           p.StepSize,
		seed:               p.Seed,
	}
}

// Name returns the algorithm identifier.
func (a *AnnealAdapter) Name() string { return "anneal" }

// Run executes the simulated annealing optimization.
func (a *AnnealAdapter) Run(cost acor.CostFunc, vars []acor.Variable, progress Progress) (acor.Solution, error) {
	cfg := anneal.NewDefaultConfig()
	cfg.GlobalIterations = a.globalIterations
	cfg.LocalIterations = a.localIterations
	cfg.InitialTemperature = a.initialTemperature
	cfg.Cooling = a.cooling
	cfg.StepSize = a.stepSize
	cfg.Variables = vars
	cfg.Cost = cost
	cfg.Rand = rand.New(rand.NewSource(a.seed))
	if progress != nil {
		cfg.OnIteration = func(iteration int, best acor.Solution) {
			progress(iteration, best.Position, best.Cost)
		}
	}

	result, err := anneal.Optimize(cfg)
	if err != nil {
		return acor.Solution{}, err
	}
	return result.Best, nil
}
