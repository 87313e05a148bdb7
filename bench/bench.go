// Package bench provides standard continuous benchmark objectives with
// their canonical search cubes and known optima, plus adapters for running
// them through the optimizers in this module.
package bench

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/acor"
)

// Func is one benchmark objective. The search space is a cube: every
// dimension shares the same [Lower, Upper] range.
type Func struct {
	Name string
	// Dims restricts the dimensionality; 0 means any dimension.
	Dims  int
	Lower float64
	Upper float64
	// Best is the known global minimum value.
	Best float64
	Eval func(x []float64) float64
}

// Variables builds the search-space definition for dim dimensions. When
// bounded is false the cube only seeds initialization.
func (f Func) Variables(dim int, bounded bool) ([]acor.Variable, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%s: dimension must be at least 1, got %d", f.Name, dim)
	}
	if f.Dims != 0 && dim != f.Dims {
		return nil, fmt.Errorf("%s: requires exactly %d dimensions, got %d", f.Name, f.Dims, dim)
	}

	vars := make([]acor.Variable, dim)
	for i := range vars {
		if bounded {
			vars[i] = acor.Bounded(f.Lower, f.Upper)
		} else {
			vars[i] = acor.Unbounded(f.Lower, f.Upper)
		}
	}
	return vars, nil
}

// Cost adapts the objective to the optimizer cost contract. Benchmark
// objectives ignore the evaluation phase and never fail.
func (f Func) Cost() acor.CostFunc {
	return func(x []float64, _ acor.Evaluation) (float64, error) {
		return f.Eval(x), nil
	}
}

// Sphere is the convex baseline: sum of squares, minimum 0 at the origin.
var Sphere = Func{
	Name:  "sphere",
	Lower: -5.12,
	Upper: 5.12,
	Best:  0,
	Eval: func(x []float64) float64 {
		var total float64
		for _, v := range x {
			total += v * v
		}
		return total
	},
}

// Rosenbrock is the banana valley, minimum 0 at (1, ..., 1).
var Rosenbrock = Func{
	Name:  "rosenbrock",
	Lower: -2.048,
	Upper: 2.048,
	Best:  0,
	Eval: func(x []float64) float64 {
		var total float64
		for i := 0; i < len(x)-1; i++ {
			a := x[i+1] - x[i]*x[i]
			b := 1 - x[i]
			total += 100*a*a + b*b
		}
		return total
	},
}

// Rastrigin is highly multimodal with a regular grid of local minima,
// minimum 0 at the origin.
var Rastrigin = Func{
	Name:  "rastrigin",
	Lower: -5.12,
	Upper: 5.12,
	Best:  0,
	Eval: func(x []float64) float64 {
		total := 10 * float64(len(x))
		for _, v := range x {
			total += v*v - 10*math.Cos(2*math.Pi*v)
		}
		return total
	},
}

// Ackley has a nearly flat outer region around a deep central funnel,
// minimum 0 at the origin.
var Ackley = Func{
	Name:  "ackley",
	Lower: -32.768,
	Upper: 32.768,
	Best:  0,
	Eval: func(x []float64) float64 {
		n := float64(len(x))
		var squares, cosines float64
		for _, v := range x {
			squares += v * v
			cosines += math.Cos(2 * math.Pi * v)
		}
		return -20*math.Exp(-0.2*math.Sqrt(squares/n)) - math.Exp(cosines/n) + 20 + math.E
	},
}

// Griewank combines a parabolic bowl with an oscillating product term,
// minimum 0 at the origin.
var Griewank = Func{
	Name:  "griewank",
	Lower: -600,
	Upper: 600,
	Best:  0,
	Eval: func(x []float64) float64 {
		var total float64
		product := 1.0
		for i, v := range x {
			total += v * v / 4000
			product *= math.Cos(v / math.Sqrt(float64(i+1)))
		}
		return total - product + 1
	},
}

// Eggholder is a two-dimensional function with many deep ridges, minimum
// about -959.6407 at (512, 404.2319).
var Eggholder = Func{
	Name:  "eggholder",
	Dims:  2,
	Lower: -512,
	Upper: 512,
	Best:  -959.6407,
	Eval: func(x []float64) float64 {
		a := x[1] + 47
		return -a*math.Sin(math.Sqrt(math.Abs(x[0]/2+a))) -
			x[0]*math.Sin(math.Sqrt(math.Abs(x[0]-a)))
	},
}

var funcs = []Func{Sphere, Rosenbrock, Rastrigin, Ackley, Griewank, Eggholder}

// All returns the built-in objectives in a stable order.
func All() []Func {
	out := make([]Func, len(funcs))
	copy(out, funcs)
	return out
}

// Lookup finds a built-in objective by name, case-insensitively.
func Lookup(name string) (Func, error) {
	for _, f := range funcs {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return Func{}, fmt.Errorf("unknown benchmark function %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the built-in objective names in a stable order.
func Names() []string {
	names := make([]string, len(funcs))
	for i, f := range funcs {
		names[i] = f.Name
	}
	return names
}
