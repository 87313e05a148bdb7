package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
	"github.com/cwbudde/acor/internal/runner"
	"github.com/cwbudde/acor/internal/store"
)

// runJob executes an optimization job in the background.
// If st is not nil, the record, cost trace and convergence plot are
// persisted once the job completes.
func runJob(ctx context.Context, jm *JobManager, st store.Store, jobID string) error {
	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"optimizer", job.Config.Optimizer,
		"function", job.Config.Function,
		"dim", job.Config.Dim,
	)

	fn, err := bench.Lookup(job.Config.Function)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	optimizer, err := opt.New(job.Config.Optimizer, jobParams(job.Config))
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	problem := runner.Problem{
		Function: fn,
		Dim:      job.Config.Dim,
		Bounded:  job.Config.Bounded,
	}

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	// Mirror every progress report into the job so status queries and the
	// progress monitor see live values.
	observer := func(iteration int, best []float64, cost float64) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = iteration + 1
			j.BestCost = cost
			j.BestParams = append([]float64(nil), best...)
		})
	}

	result, err := runner.Run(optimizer, problem, runner.DefaultConvergenceConfig(), observer)
	close(progressDone)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	elapsed := time.Since(start)

	// Check for cancellation after optimization
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestParams = result.BestParams
		j.BestCost = result.BestCost
		j.InitialCost = result.InitialCost
		j.Iterations = len(result.Trace)
		j.Evaluations = result.Evaluations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if st != nil {
		if err := saveRunArtifacts(st, jobID, job.Config, result); err != nil {
			slog.Warn("Failed to persist run artifacts", "job_id", jobID, "error", err)
		}
	}

	// Compute throughput (cost evaluations per second)
	var eps float64
	if elapsed > 0 {
		eps = float64(result.Evaluations) / elapsed.Seconds()
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evals_per_second", eps,
	)

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		Iterations: len(result.Trace),
		BestCost:   result.BestCost,
		EPS:        eps,
		Timestamp:  time.Now(),
	})

	return nil
}

// jobParams maps a job configuration onto optimizer parameters, keeping
// defaults for anything the job does not set.
func jobParams(config JobConfig) opt.Params {
	params := opt.DefaultParams()
	params.Iterations = config.Iterations
	params.PopSize = config.PopSize
	params.Seed = config.Seed
	if config.ArchiveSize > 0 {
		params.ArchiveSize = config.ArchiveSize
	}
	if config.Q > 0 {
		params.Q = config.Q
	}
	if config.Xi > 0 {
		params.Xi = config.Xi
	}
	return params
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Get current job state
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()

			// Rough estimate: completed iterations times population size
			var eps float64
			if elapsed > 0 && job.Iterations > 0 {
				eps = float64(job.Iterations*job.Config.PopSize) / elapsed
			}

			// Broadcast progress event
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:      jobID,
				State:      job.State,
				Iterations: job.Iterations,
				BestCost:   job.BestCost,
				EPS:        eps,
				Timestamp:  time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveRunArtifacts persists the record, the cost trace and the convergence
// plot so results survive a server restart.
func saveRunArtifacts(st store.Store, jobID string, config JobConfig, result *runner.Result) error {
	record := store.NewRecord(jobID, result.BestParams, result.BestCost,
		result.InitialCost, result.Evaluations, result.Elapsed, config)
	if err := st.SaveRecord(jobID, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	// Optimizers without progress reporting produce no trace
	if len(result.Trace) == 0 {
		return nil
	}

	fs, ok := st.(*store.FSStore)
	if !ok {
		// Trace and plot need a run directory on disk
		slog.Debug("Store has no run directories, skipping trace and plot", "job_id", jobID)
		return nil
	}

	tw, err := store.NewTraceWriter(fs.BaseDir(), jobID)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	for _, entry := range result.Trace {
		if err := tw.Write(entry); err != nil {
			tw.Close()
			return fmt.Errorf("failed to write trace entry: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close trace: %w", err)
	}

	plotPath := filepath.Join(fs.RunDir(jobID), "convergence.png")
	title := fmt.Sprintf("%s on %s", config.Optimizer, config.Function)
	if err := runner.WritePlot(result.Trace, title, plotPath); err != nil {
		return fmt.Errorf("failed to write convergence plot: %w", err)
	}

	slog.Info("Run artifacts saved", "job_id", jobID, "dir", fs.RunDir(jobID))
	return nil
}
