package opt

import (
	"fmt"
	"strings"

	"github.com/cwbudde/acor"
)

// Progress observes per-iteration improvement during a run.
type Progress func(iteration int, best []float64, cost float64)

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Name identifies the algorithm in logs, stored results and the API.
	Name() string
	// Run executes one full optimization over the given search space and
	// returns the best solution found.
	Run(cost acor.CostFunc, vars []acor.Variable, progress Progress) (acor.Solution, error)
}

// Params carries every algorithm knob the factory understands; each adapter
// reads the subset it needs.
type Params struct {
	Iterations  int
	PopSize     int
	Seed        int64
	ArchiveSize int
	Q           float64
	Xi          float64
	// Simulated annealing.
	LocalIterations    int
	InitialTemperature float64
	Cooling            float64
	StepSize           float64
	// Particle swarm.
	Cognitive float64
	Social    float64
	Inertia   float64
}

// DefaultParams returns the reference defaults for every algorithm.
func DefaultParams() Params {
	return Params{
		Iterations:         100,
		PopSize:            20,
		Seed:               42,
		ArchiveSize:        50,
		Q:                  0.1,
		Xi:                 0.85,
		LocalIterations:    20,
		InitialTemperature: 10.0,
		Cooling:            0.99,
		StepSize:           1e-2,
		Cognitive:          2.0,
		Social:             2.0,
		Inertia:            0.729,
	}
}

// Names lists the algorithms the factory accepts.
func Names() []string {
	return []string{"acor", "anneal", "swarm", "mayfly"}
}

// New builds an optimizer by algorithm name. Accepted names are acor,
// anneal (alias sa), swarm (alias pso) and mayfly.
func New(name string, p Params) (Optimizer, error) {
	switch strings.ToLower(name) {
	case "acor":
		return NewACOr(p), nil
	case "anneal", "sa":
		return NewAnneal(p), nil
	case "swarm", "pso":
		return NewSwarm(p), nil
	case "mayfly":
		return NewMayfly(p.Iterations, p.PopSize, p.Seed), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (known: %s)", name, strings.Join(Names(), ", "))
	}
}
