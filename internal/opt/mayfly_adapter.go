package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/acor"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer
// interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter. The library needs a
// population of at least 20 to split into male and female swarms.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Name returns the algorithm identifier.
func (m *MayflyAdapter) Name() string { return "mayfly" }

// Run executes the Mayfly optimization using the external library.
//
// The library's objective signature carries neither an error nor an
// iteration index, so evaluations are reported as initialization-phase and
// the first cost failure is remembered and returned after the run, with the
// failing positions scored +Inf to keep them out of the result. The library
// also has no per-iteration callback, so progress is never invoked.
func (m *MayflyAdapter) Run(cost acor.CostFunc, vars []acor.Variable, progress Progress) (acor.Solution, error) {
	config := mayfly.NewDefaultConfig()

	var evalErr error
	config.ObjectiveFunc = func(position []float64) float64 {
		c, err := cost(position, acor.Initialization())
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.Inf(1)
		}
		return c
	}
	config.ProblemSize = len(vars)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// The external library uses one scalar bound pair for all dimensions,
	// so the first variable's range applies everywhere.
	config.LowerBound = vars[0].Lower
	config.UpperBound = vars[0].Upper

	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return acor.Solution{}, fmt.Errorf("mayfly: %w", err)
	}
	if evalErr != nil {
		return acor.Solution{}, evalErr
	}

	return acor.Solution{
		Position: result.GlobalBest.Position,
		Cost:     result.GlobalBest.Cost,
	}, nil
}
