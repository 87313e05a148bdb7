package opt

import (
	"math/rand"

	"github.com/cwbudde/acor"
)

// ACOrAdapter runs the ant colony optimizer behind the Optimizer interface.
type ACOrAdapter struct {
	iterations  int
	popSize     int
	archiveSize int
	q           float64
	xi          float64
	seed        int64
}

// NewACOr creates an ant colony optimizer adapter from the given parameters.
func NewACOr(p Params) *ACOrAdapter {
	return &ACOrAdapter{
		iterations:  p.Iterations,
		popSize:     p.PopSize,
		archiveSize: p.ArchiveSize,
		q:           p.Q,
		xi:          p.Xi,
		seed:        p.Seed,
	}
}

// Name returns the algorithm identifier.
func (a *ACOrAdapter) Name() string { return "acor" }

// Run executes the ant colony optimization.
func (a *ACOrAdapter) Run(cost acor.CostFunc, vars []acor.Variable, progress Progress) (acor.Solution, error) {
	cfg := acor.NewDefaultConfig()
	cfg.MaxIterations = a.iterations
	cfg.PopSize = a.popSize
	cfg.ArchiveSize = a.archiveSize
	cfg.Q = a.q
	cfg.Xi = a.xi
	cfg.Variables = vars
	cfg.Cost = cost
	cfg.Rand = rand.New(rand.NewSource(a.seed))
	if progress != nil {
		cfg.OnIteration = func(iteration int, best acor.Solution) {
			progress(iteration, best.Position, best.Cost)
		}
	}

	result, err := acor.Optimize(cfg)
	if err != nil {
		return acor.Solution{}, err
	}
	return result.Best, nil
}
