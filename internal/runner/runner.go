package runner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/acor"
	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
	"github.com/cwbudde/acor/internal/store"
)

// Problem describes one benchmark instance to optimize.
type Problem struct {
	Function bench.Func
	Dim      int
	Bounded  bool
}

// Variables builds the search space for this problem.
func (p Problem) Variables() ([]acor.Variable, error) {
	return p.Function.Variables(p.Dim, p.Bounded)
}

// Result holds the output of an optimization run
type Result struct {
	BestParams  []float64
	BestCost    float64
	InitialCost float64
	Evaluations int
	Elapsed     time.Duration

	// Trace holds one entry per reported iteration (empty for optimizers
	// without progress reporting).
	Trace []store.TraceEntry

	// Converged reports whether the cost curve flattened before the run
	// finished; ConvergedAt is the iteration where that happened.
	Converged   bool
	ConvergedAt int
}

// Run executes one full optimization of the given problem and collects the
// cost trace. The run always spends its full iteration budget; convergence
// detection only annotates the result. Extra observers receive every
// progress report after it has been traced.
func Run(optimizer opt.Optimizer, problem Problem, convergence ConvergenceConfig, observers ...opt.Progress) (*Result, error) {
	vars, err := problem.Variables()
	if err != nil {
		return nil, fmt.Errorf("building search space: %w", err)
	}

	slog.Info("Starting optimization",
		"optimizer", optimizer.Name(),
		"function", problem.Function.Name,
		"dim", problem.Dim,
		"bounded", problem.Bounded,
	)

	eval := problem.Function.Cost()

	// The optimizers call the cost function from a single goroutine, so a
	// plain counter is enough.
	evaluations := 0
	initialCost := 0.0
	counting := func(position []float64, ctx acor.Evaluation) (float64, error) {
		c, err := eval(position, ctx)
		if err != nil {
			return 0, err
		}
		evaluations++
		if evaluations == 1 {
			initialCost = c
		}
		return c, nil
	}

	tracker := NewConvergenceTracker(convergence)
	result := &Result{}
	progress := func(iteration int, best []float64, cost float64) {
		result.Trace = append(result.Trace, store.TraceEntry{
			Iteration: iteration,
			Cost:      cost,
			Timestamp: time.Now(),
		})
		if tracker.Update(cost) && !result.Converged {
			result.Converged = true
			result.ConvergedAt = iteration
			slog.Info("Cost curve flattened",
				"optimizer", optimizer.Name(),
				"iteration", iteration,
				"best_cost", tracker.BestCost(),
			)
		}
		for _, observe := range observers {
			observe(iteration, best, cost)
		}
	}

	start := time.Now()
	best, err := optimizer.Run(counting, vars, progress)
	if err != nil {
		return nil, fmt.Errorf("optimizer %s: %w", optimizer.Name(), err)
	}

	result.BestParams = best.Position
	result.BestCost = best.Cost
	result.InitialCost = initialCost
	result.Evaluations = evaluations
	result.Elapsed = time.Since(start)

	slog.Info("Optimization complete",
		"optimizer", optimizer.Name(),
		"function", problem.Function.Name,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evaluations", result.Evaluations,
		"elapsed", result.Elapsed,
	)

	return result, nil
}
