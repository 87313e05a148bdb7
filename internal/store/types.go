package store

import (
	"fmt"
	"math"
	"time"
)

// RunConfig holds the configuration an optimization run was started with
// (record copy). This avoids import cycles with the server package.
type RunConfig struct {
	Optimizer   string  `json:"optimizer"` // acor, anneal, swarm, mayfly
	Function    string  `json:"function"`  // benchmark function name
	Dim         int     `json:"dim"`
	Bounded     bool    `json:"bounded"`
	Iterations  int     `json:"iters"`
	PopSize     int     `json:"popSize"`
	ArchiveSize int     `json:"archiveSize,omitempty"`
	Q           float64 `json:"q,omitempty"`
	Xi          float64 `json:"xi,omitempty"`
	Seed        int64   `json:"seed"`
}

// Record represents the persisted outcome of an optimization run.
// All fields are serialized to JSON for persistence.
//
// The record saves the BEST POSITION found, but does NOT save the internal
// optimizer state (archive, population, velocities, etc.). Different
// algorithms have different internal structures, and persisting them would
// tie the record format to specific implementations. The cost history lives
// separately in trace.jsonl next to the record.
type Record struct {
	// RunID is the unique identifier for this optimization run
	RunID string `json:"runId"`

	// BestParams is the position that produced the best (lowest) cost
	BestParams []float64 `json:"bestParams"`

	// BestCost is the cost value achieved by BestParams
	BestCost float64 `json:"bestCost"`

	// InitialCost is the best cost right after initialization, for
	// tracking improvement
	InitialCost float64 `json:"initialCost"`

	// Evaluations counts how many cost function calls the run spent
	Evaluations int `json:"evaluations"`

	// ElapsedMS is the wall-clock duration of the run in milliseconds
	ElapsedMS int64 `json:"elapsedMs"`

	// Timestamp records when this record was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration for reproducing the run
	Config RunConfig `json:"config"`
}

// RecordInfo contains metadata about a record without the full parameter
// data. Used for listing runs efficiently.
type RecordInfo struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// BestCost is the final cost of the run
	BestCost float64 `json:"bestCost"`

	// Evaluations counts the cost function calls spent
	Evaluations int `json:"evaluations"`

	// Timestamp records when the record was created
	Timestamp time.Time `json:"timestamp"`

	// Optimizer is the algorithm name (acor, anneal, swarm, mayfly)
	Optimizer string `json:"optimizer"`

	// Function is the benchmark function name
	Function string `json:"function"`

	// Dim is the search space dimensionality
	Dim int `json:"dim"`
}

// NewRecord creates a record from run results.
func NewRecord(runID string, bestParams []float64, bestCost, initialCost float64, evaluations int, elapsed time.Duration, config RunConfig) *Record {
	return &Record{
		RunID:       runID,
		BestParams:  bestParams,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evaluations,
		ElapsedMS:   elapsed.Milliseconds(),
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Record to RecordInfo (metadata only).
func (r *Record) ToInfo() RecordInfo {
	return RecordInfo{
		RunID:       r.RunID,
		BestCost:    r.BestCost,
		Evaluations: r.Evaluations,
		Timestamp:   r.Timestamp,
		Optimizer:   r.Config.Optimizer,
		Function:    r.Config.Function,
		Dim:         r.Config.Dim,
	}
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *Record) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.BestParams == nil {
		return &ValidationError{Field: "BestParams", Reason: "cannot be nil"}
	}
	if len(r.BestParams) == 0 {
		return &ValidationError{Field: "BestParams", Reason: "cannot be empty"}
	}
	// Best costs can legitimately be negative (e.g. eggholder), but never NaN
	if math.IsNaN(r.BestCost) {
		return &ValidationError{Field: "BestCost", Reason: "cannot be NaN"}
	}
	if r.Evaluations <= 0 {
		return &ValidationError{Field: "Evaluations", Reason: "must be positive"}
	}
	if r.ElapsedMS < 0 {
		return &ValidationError{Field: "ElapsedMS", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Optimizer == "" {
		return &ValidationError{Field: "Config.Optimizer", Reason: "cannot be empty"}
	}
	if r.Config.Function == "" {
		return &ValidationError{Field: "Config.Function", Reason: "cannot be empty"}
	}
	if r.Config.Dim <= 0 {
		return &ValidationError{Field: "Config.Dim", Reason: "must be positive"}
	}
	if r.Config.Iterations <= 0 {
		return &ValidationError{Field: "Config.Iterations", Reason: "must be positive"}
	}
	if r.Config.PopSize <= 0 {
		return &ValidationError{Field: "Config.PopSize", Reason: "must be positive"}
	}
	// Verify BestParams length matches the declared dimensionality
	if len(r.BestParams) != r.Config.Dim {
		return &ValidationError{
			Field:  "BestParams",
			Reason: fmt.Sprintf("length mismatch: got %d params for dim %d", len(r.BestParams), r.Config.Dim),
		}
	}
	return nil
}

// ValidationError represents a record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
