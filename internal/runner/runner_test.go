package runner

import (
	"strings"
	"testing"

	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
)

func acorParams() opt.Params {
	params := opt.DefaultParams()
	params.Iterations = 30
	params.PopSize = 10
	params.ArchiveSize = 25
	params.Seed = 42
	return params
}

func TestRun_SphereImproves(t *testing.T) {
	problem := Problem{Function: bench.Sphere, Dim: 2, Bounded: true}

	result, err := Run(opt.NewACOr(acorParams()), problem, DisabledConvergenceConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BestCost >= result.InitialCost {
		t.Errorf("Optimization did not improve: initial=%f, best=%f", result.InitialCost, result.BestCost)
	}
	if len(result.BestParams) != 2 {
		t.Errorf("Expected 2 parameters, got %d", len(result.BestParams))
	}

	// 25 archive evaluations plus 10 ants per iteration over 30 iterations
	wantEvals := 25 + 30*10
	if result.Evaluations != wantEvals {
		t.Errorf("Expected %d evaluations, got %d", wantEvals, result.Evaluations)
	}
	if result.Elapsed <= 0 {
		t.Errorf("Expected positive elapsed time, got %v", result.Elapsed)
	}
}

func TestRun_CollectsTrace(t *testing.T) {
	problem := Problem{Function: bench.Sphere, Dim: 2, Bounded: true}

	result, err := Run(opt.NewACOr(acorParams()), problem, DisabledConvergenceConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Trace) != 30 {
		t.Fatalf("Expected 30 trace entries, got %d", len(result.Trace))
	}
	for i, entry := range result.Trace {
		if entry.Iteration != i {
			t.Errorf("Trace entry %d carries iteration %d", i, entry.Iteration)
		}
		if entry.Timestamp.IsZero() {
			t.Errorf("Trace entry %d has zero timestamp", i)
		}
	}
	for i := 1; i < len(result.Trace); i++ {
		if result.Trace[i].Cost > result.Trace[i-1].Cost {
			t.Errorf("Trace cost increased from %f to %f at entry %d",
				result.Trace[i-1].Cost, result.Trace[i].Cost, i)
		}
	}

	last := result.Trace[len(result.Trace)-1]
	if last.Cost != result.BestCost {
		t.Errorf("Final trace cost %f does not match best cost %f", last.Cost, result.BestCost)
	}
}

func TestRun_AnnotatesFlatCostCurve(t *testing.T) {
	// A constant cost surface goes stale immediately, so the tracker must
	// flag the run as converged after its patience runs out.
	flat := bench.Func{
		Name:  "flat",
		Lower: -1,
		Upper: 1,
		Eval:  func(x []float64) float64 { return 0 },
	}
	problem := Problem{Function: flat, Dim: 2, Bounded: true}

	convergence := ConvergenceConfig{Enabled: true, Patience: 5, Threshold: 0.001}
	result, err := Run(opt.NewACOr(acorParams()), problem, convergence)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Converged {
		t.Fatal("Expected converged annotation for flat cost curve")
	}
	if result.ConvergedAt != 5 {
		t.Errorf("Expected convergence at iteration 5, got %d", result.ConvergedAt)
	}
	// The run still spends its full budget
	if len(result.Trace) != 30 {
		t.Errorf("Expected 30 trace entries, got %d", len(result.Trace))
	}
}

func TestRun_NotifiesObservers(t *testing.T) {
	problem := Problem{Function: bench.Sphere, Dim: 2, Bounded: true}

	var iterations []int
	var costs []float64
	observer := func(iteration int, best []float64, cost float64) {
		iterations = append(iterations, iteration)
		costs = append(costs, cost)
	}

	result, err := Run(opt.NewACOr(acorParams()), problem, DisabledConvergenceConfig(), observer)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(iterations) != len(result.Trace) {
		t.Fatalf("Observer saw %d reports, trace has %d entries", len(iterations), len(result.Trace))
	}
	for i, entry := range result.Trace {
		if iterations[i] != entry.Iteration {
			t.Errorf("Observer report %d carries iteration %d, trace says %d", i, iterations[i], entry.Iteration)
		}
		if costs[i] != entry.Cost {
			t.Errorf("Observer report %d carries cost %f, trace says %f", i, costs[i], entry.Cost)
		}
	}
}

func TestRun_DimensionMismatch(t *testing.T) {
	// Eggholder is fixed to two dimensions
	problem := Problem{Function: bench.Eggholder, Dim: 3, Bounded: true}

	_, err := Run(opt.NewACOr(acorParams()), problem, DisabledConvergenceConfig())
	if err == nil {
		t.Fatal("Expected error for dimension mismatch")
	}
}

func TestRun_WrapsOptimizerError(t *testing.T) {
	params := acorParams()
	params.Iterations = 0 // invalid

	problem := Problem{Function: bench.Sphere, Dim: 2, Bounded: true}
	_, err := Run(opt.NewACOr(params), problem, DisabledConvergenceConfig())
	if err == nil {
		t.Fatal("Expected error from invalid optimizer configuration")
	}
	if !strings.Contains(err.Error(), "acor") {
		t.Errorf("Error %q does not name the optimizer", err.Error())
	}
}
