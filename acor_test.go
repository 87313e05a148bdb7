package acor

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func quadraticCost(target float64) CostFunc {
	return func(x []float64, _ Evaluation) (float64, error) {
		d := x[0] - target
		return d * d, nil
	}
}

func sphereCost(x []float64, _ Evaluation) (float64, error) {
	var total float64
	for _, v := range x {
		total += v * v
	}
	return total, nil
}

func TestOptimize_ScenarioQuadratic(t *testing.T) {
	// Three-member archive, one bounded variable, cost (x-7)^2. The run is
	// stochastic, so convergence is required for the majority of seeds.
	converged := 0
	for seed := int64(1); seed <= 5; seed++ {
		cfg := Config{
			MaxIterations: 20,
			PopSize:       2,
			ArchiveSize:   3,
			Q:             0.1,
			Xi:            0.85,
			Variables:     []Variable{Bounded(0, 10)},
			Cost:          quadraticCost(7),
			Rand:          rand.New(rand.NewSource(seed)),
		}

		result, err := Optimize(cfg)
		if err != nil {
			t.Fatalf("Seed %d: Optimize failed: %v", seed, err)
		}

		if len(result.Archive) != 3 {
			t.Errorf("Seed %d: expected archive of 3, got %d", seed, len(result.Archive))
		}
		if result.Best.Cost != result.Archive[0].Cost {
			t.Errorf("Seed %d: best (%g) is not the rank-0 entry (%g)",
				seed, result.Best.Cost, result.Archive[0].Cost)
		}

		if math.Abs(result.Best.Position[0]-7) <= 0.5 && result.Best.Cost <= 0.25 {
			converged++
		}
	}

	if converged < 3 {
		t.Errorf("Expected at least 3 of 5 seeds to converge near 7, got %d", converged)
	}
}

func TestOptimize_BestCostMonotonic(t *testing.T) {
	var costs []float64
	cfg := Config{
		MaxIterations: 30,
		PopSize:       5,
		ArchiveSize:   10,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Bounded(-5, 5), Bounded(-5, 5)},
		Cost:          sphereCost,
		Rand:          rand.New(rand.NewSource(42)),
		OnIteration: func(iteration int, best Solution) {
			costs = append(costs, best.Cost)
		},
	}

	result, err := Optimize(cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if len(costs) != 30 {
		t.Fatalf("Expected 30 iteration callbacks, got %d", len(costs))
	}
	for i := 1; i < len(costs); i++ {
		if costs[i] > costs[i-1] {
			t.Errorf("Best cost increased at iteration %d: %g > %g", i, costs[i], costs[i-1])
		}
	}
	if result.Best.Cost != costs[len(costs)-1] {
		t.Errorf("Final best %g does not match last callback %g", result.Best.Cost, costs[len(costs)-1])
	}
}

func TestOptimize_Deterministic(t *testing.T) {
	run := func() *Result {
		cfg := Config{
			MaxIterations: 15,
			PopSize:       4,
			ArchiveSize:   8,
			Q:             0.2,
			Xi:            0.85,
			Variables:     []Variable{Bounded(-3, 3), Unbounded(-1, 1)},
			Cost:          sphereCost,
			Rand:          rand.New(rand.NewSource(99)),
		}
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
	if first.Evaluations != second.Evaluations {
		t.Errorf("Same-seed runs differ in evaluations: %d vs %d", first.Evaluations, second.Evaluations)
	}
	for i := range first.Archive {
		if first.Archive[i].Cost != second.Archive[i].Cost {
			t.Errorf("Archive entry %d differs: %g vs %g", i, first.Archive[i].Cost, second.Archive[i].Cost)
		}
		for j := range first.Archive[i].Position {
			if first.Archive[i].Position[j] != second.Archive[i].Position[j] {
				t.Errorf("Archive entry %d variable %d differs", i, j)
			}
		}
	}
}

func TestOptimize_EvaluationCount(t *testing.T) {
	calls := 0
	cfg := Config{
		MaxIterations: 12,
		PopSize:       3,
		ArchiveSize:   7,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Bounded(0, 1)},
		Cost: func(x []float64, _ Evaluation) (float64, error) {
			calls++
			return x[0], nil
		},
		Rand: rand.New(rand.NewSource(5)),
	}

	result, err := Optimize(cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	want := 7 + 3*12
	if calls != want {
		t.Errorf("Expected %d cost calls, got %d", want, calls)
	}
	if result.Evaluations != want {
		t.Errorf("Expected %d reported evaluations, got %d", want, result.Evaluations)
	}
}

func TestOptimize_PhaseSequence(t *testing.T) {
	var evals []Evaluation
	cfg := Config{
		MaxIterations: 4,
		PopSize:       3,
		ArchiveSize:   5,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Bounded(0, 1)},
		Cost: func(x []float64, eval Evaluation) (float64, error) {
			evals = append(evals, eval)
			return x[0], nil
		},
		Rand: rand.New(rand.NewSource(11)),
	}

	if _, err := Optimize(cfg); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	// The first k evaluations seed the archive; the rest run in iteration
	// order, pop-size evaluations per iteration.
	for i := 0; i < 5; i++ {
		if evals[i].Phase != PhaseInitialization {
			t.Errorf("Evaluation %d: expected initialization phase, got %v", i, evals[i].Phase)
		}
	}
	for i := 5; i < len(evals); i++ {
		if evals[i].Phase != PhaseIteration {
			t.Errorf("Evaluation %d: expected iteration phase, got %v", i, evals[i].Phase)
			continue
		}
		wantIter := (i - 5) / 3
		if evals[i].Iteration != wantIter {
			t.Errorf("Evaluation %d: expected iteration %d, got %d", i, wantIter, evals[i].Iteration)
		}
	}
}

func TestOptimize_BoundedHardBorder(t *testing.T) {
	// The optimum sits outside the bounded range, so sampling keeps pushing
	// against the upper border.
	var outOfRange int
	cfg := Config{
		MaxIterations: 40,
		PopSize:       5,
		ArchiveSize:   5,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Bounded(0, 1)},
		Cost: func(x []float64, _ Evaluation) (float64, error) {
			if x[0] < 0 || x[0] > 1 {
				outOfRange++
			}
			d := x[0] - 5
			return d * d, nil
		},
		Rand: rand.New(rand.NewSource(3)),
	}

	result, err := Optimize(cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if outOfRange != 0 {
		t.Errorf("Bounded variable evaluated out of range %d times", outOfRange)
	}
	if result.Best.Position[0] < 0.99 {
		t.Errorf("Expected best to reach the upper border, got %g", result.Best.Position[0])
	}
}

func TestOptimize_UnboundedLeavesInitialRange(t *testing.T) {
	// The initial range is only a sampling prior; with the optimum at 5 the
	// search must drift past the range's upper end.
	cfg := Config{
		MaxIterations: 50,
		PopSize:       5,
		ArchiveSize:   10,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Unbounded(-1, 1)},
		Cost:          quadraticCost(5),
		Rand:          rand.New(rand.NewSource(8)),
	}

	result, err := Optimize(cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if result.Best.Position[0] <= 1 {
		t.Errorf("Expected unbounded variable to drift past 1, got %g", result.Best.Position[0])
	}
	if result.Best.Cost >= 16 {
		t.Errorf("Expected improvement over the range border cost 16, got %g", result.Best.Cost)
	}
}

func TestOptimize_ArchiveInvariantEachIteration(t *testing.T) {
	cfg := Config{
		MaxIterations: 10,
		PopSize:       3,
		ArchiveSize:   5,
		Q:             0.1,
		Xi:            0.85,
		Variables:     []Variable{Bounded(-5, 5)},
		Cost:          quadraticCost(0),
		Rand:          rand.New(rand.NewSource(21)),
	}

	o := newOptimizer(cfg)
	if err := o.initArchive(); err != nil {
		t.Fatalf("initArchive failed: %v", err)
	}
	o.weights = rankWeights(cfg.ArchiveSize, cfg.Q)

	if len(o.archive) != 5 || !isSortedByCost(o.archive) {
		t.Fatalf("Archive invariant broken after initialization")
	}

	best := o.archive[0].Cost
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if err := o.step(iter); err != nil {
			t.Fatalf("step %d failed: %v", iter, err)
		}
		if len(o.archive) != 5 {
			t.Errorf("Iteration %d: expected archive of 5, got %d", iter, len(o.archive))
		}
		if !isSortedByCost(o.archive) {
			t.Errorf("Iteration %d: archive not sorted", iter)
		}
		if o.archive[0].Cost > best {
			t.Errorf("Iteration %d: best cost increased from %g to %g", iter, best, o.archive[0].Cost)
		}
		best = o.archive[0].Cost
	}
}

func TestOptimize_CostErrorPropagates(t *testing.T) {
	sentinel := errors.New("evaluator exploded")

	t.Run("during initialization", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.Cost = func(x []float64, _ Evaluation) (float64, error) {
			return 0, sentinel
		}

		_, err := Optimize(cfg)
		if !errors.Is(err, sentinel) {
			t.Errorf("Expected wrapped sentinel error, got %v", err)
		}
	})

	t.Run("during iteration", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.Rand = rand.New(rand.NewSource(1))
		cfg.Cost = func(x []float64, eval Evaluation) (float64, error) {
			if eval.Phase == PhaseIteration {
				return 0, sentinel
			}
			return x[0] * x[0], nil
		}

		_, err := Optimize(cfg)
		if !errors.Is(err, sentinel) {
			t.Errorf("Expected wrapped sentinel error, got %v", err)
		}
	})
}

func TestOptimize_RejectsArchiveOfOne(t *testing.T) {
	cfg := validTestConfig()
	cfg.ArchiveSize = 1

	_, err := Optimize(cfg)
	if err == nil {
		t.Fatal("Expected configuration error for archive size 1")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %T", err)
	}
	if cfgErr.Field != "ArchiveSize" {
		t.Errorf("Expected ArchiveSize rejection, got field %q", cfgErr.Field)
	}
}
