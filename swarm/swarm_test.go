package swarm

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cwbudde/acor"
)

func sphereCost(x []float64, _ acor.Evaluation) (float64, error) {
	var total float64
	for _, v := range x {
		total += v * v
	}
	return total, nil
}

func testConfig() Config {
	cfg := NewDefaultConfig()
	cfg.MaxIterations = 50
	cfg.PopSize = 20
	cfg.Variables = []acor.Variable{acor.Bounded(-10, 10), acor.Bounded(-10, 10)}
	cfg.Cost = sphereCost
	cfg.Rand = rand.New(rand.NewSource(42))
	return cfg
}

func TestOptimize_ConvergesOnSphere(t *testing.T) {
	result, err := Optimize(testConfig())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if result.Best.Cost > 0.5 {
		t.Errorf("Expected cost near 0, got %g", result.Best.Cost)
	}
	for j, v := range result.Best.Position {
		if v < -1 || v > 1 {
			t.Errorf("Variable %d should approach 0, got %g", j, v)
		}
	}
}

func TestOptimize_EvaluationCount(t *testing.T) {
	calls := 0
	cfg := testConfig()
	cfg.MaxIterations = 8
	cfg.PopSize = 6
	cfg.Cost = func(x []float64, eval acor.Evaluation) (float64, error) {
		calls++
		return sphereCost(x, eval)
	}

	result, err := Optimize(cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	want := 6 * (8 + 1)
	if calls != want {
		t.Errorf("Expected %d cost calls, got %d", want, calls)
	}
	if result.Evaluations != want {
		t.Errorf("Expected %d reported evaluations, got %d", want, result.Evaluations)
	}
}

func TestOptimize_BestCostMonotonic(t *testing.T) {
	var costs []float64
	cfg := testConfig()
	cfg.OnIteration = func(iteration int, best acor.Solution) {
		costs = append(costs, best.Cost)
	}

	if _, err := Optimize(cfg); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if len(costs) != cfg.MaxIterations {
		t.Fatalf("Expected %d iteration callbacks, got %d", cfg.MaxIterations, len(costs))
	}
	for i := 1; i < len(costs); i++ {
		if costs[i] > costs[i-1] {
			t.Errorf("Global best worsened at iteration %d: %g > %g", i, costs[i], costs[i-1])
		}
	}
}

func TestOptimize_Deterministic(t *testing.T) {
	run := func() *Result {
		cfg := testConfig()
		cfg.Rand = rand.New(rand.NewSource(17))
		result, err := Optimize(cfg)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return result
	}

	first, second := run(), run()
	if first.Best.Cost != second.Best.Cost {
		t.Errorf("Same-seed runs differ: %g vs %g", first.Best.Cost, second.Best.Cost)
	}
	for j := range first.Best.Position {
		if first.Best.Position[j] != second.Best.Position[j] {
			t.Errorf("Same-seed positions differ at variable %d", j)
		}
	}
}

func TestOptimize_BoundedStaysInRange(t *testing.T) {
	var outOfRange int
	cfg := testConfig()
	cfg.Variables = []acor.Variable{acor.Bounded(0, 1)}
	cfg.Cost = func(x []float64, _ acor.Evaluation) (float64, error) {
		if x[0] < 0 || x[0] > 1 {
			outOfRange++
		}
		d := x[0] - 5
		return d * d, nil
	}

	if _, err := Optimize(cfg); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if outOfRange != 0 {
		t.Errorf("Bounded variable evaluated out of range %d times", outOfRange)
	}
}

func TestOptimize_CostErrorPropagates(t *testing.T) {
	sentinel := errors.New("evaluator exploded")
	cfg := testConfig()
	cfg.Cost = func(x []float64, _ acor.Evaluation) (float64, error) {
		return 0, sentinel
	}

	_, err := Optimize(cfg)
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped sentinel error, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, wantField: "MaxIterations"},
		{name: "zero population", mutate: func(c *Config) { c.PopSize = 0 }, wantField: "PopSize"},
		{name: "negative cognitive", mutate: func(c *Config) { c.Cognitive = -1 }, wantField: "Cognitive"},
		{name: "negative social", mutate: func(c *Config) { c.Social = -0.5 }, wantField: "Social"},
		{name: "zero inertia", mutate: func(c *Config) { c.Inertia = 0 }, wantField: "Inertia"},
		{name: "no variables", mutate: func(c *Config) { c.Variables = nil }, wantField: "Variables"},
		{name: "no cost function", mutate: func(c *Config) { c.Cost = nil }, wantField: "Cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}

			var cfgErr *acor.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *acor.ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, cfgErr.Field)
			}
		})
	}
}
