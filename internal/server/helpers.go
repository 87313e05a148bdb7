package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
)

// applyConfigDefaults fills unset config fields with the same defaults the
// CLI uses.
func applyConfigDefaults(config *JobConfig) {
	if config.Optimizer == "" {
		config.Optimizer = "acor"
	}
	if config.Function == "" {
		config.Function = "sphere"
	}
	if config.Dim <= 0 {
		config.Dim = 2
	}
	if config.Iterations <= 0 {
		config.Iterations = 100
	}
	if config.PopSize <= 0 {
		config.PopSize = 20
	}
}

// validateJobConfig rejects configurations the worker would fail on, so API
// clients get a 400 instead of a failed job.
func validateJobConfig(config JobConfig) error {
	if _, err := opt.New(config.Optimizer, opt.DefaultParams()); err != nil {
		return err
	}

	fn, err := bench.Lookup(config.Function)
	if err != nil {
		return err
	}
	if _, err := fn.Variables(config.Dim, config.Bounded); err != nil {
		return err
	}

	if config.Iterations < 1 || config.Iterations > 10000 {
		return fmt.Errorf("iters must be between 1 and 10000")
	}
	if config.PopSize < 2 || config.PopSize > 200 {
		return fmt.Errorf("popSize must be between 2 and 200")
	}
	return nil
}

// parseJobForm extracts a job configuration from submitted form values and
// returns human-readable validation messages for re-rendering the form.
func parseJobForm(r *http.Request) (JobConfig, []string) {
	var errs []string
	var config JobConfig

	config.Optimizer = r.FormValue("optimizer")
	if config.Optimizer == "" {
		errs = append(errs, "Optimizer is required")
	} else if _, err := opt.New(config.Optimizer, opt.DefaultParams()); err != nil {
		errs = append(errs, fmt.Sprintf("Unknown optimizer: %s", config.Optimizer))
	}

	config.Function = r.FormValue("function")
	if config.Function == "" {
		errs = append(errs, "Function is required")
	} else if _, err := bench.Lookup(config.Function); err != nil {
		errs = append(errs, fmt.Sprintf("Unknown function: %s", config.Function))
	}

	dim, err := formInt(r.FormValue("dim"), 2)
	if err != nil || dim < 1 || dim > 256 {
		errs = append(errs, "Dimensions must be between 1 and 256")
	}
	config.Dim = dim

	iters, err := formInt(r.FormValue("iters"), 100)
	if err != nil || iters < 1 || iters > 10000 {
		errs = append(errs, "Iterations must be between 1 and 10000")
	}
	config.Iterations = iters

	popSize, err := formInt(r.FormValue("popSize"), 20)
	if err != nil || popSize < 2 || popSize > 200 {
		errs = append(errs, "Population size must be between 2 and 200")
	}
	config.PopSize = popSize

	seed, err := strconv.ParseInt(r.FormValue("seed"), 10, 64)
	if err != nil {
		if r.FormValue("seed") == "" {
			seed = 42
		} else {
			errs = append(errs, "Seed must be an integer")
		}
	}
	config.Seed = seed

	config.Bounded = r.FormValue("bounded") != ""

	// Cross-check dimensionality against the chosen function
	if len(errs) == 0 {
		fn, err := bench.Lookup(config.Function)
		if err == nil {
			if _, err := fn.Variables(config.Dim, config.Bounded); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	return config, errs
}

// formInt parses an integer form field, using the fallback when the field
// is absent.
func formInt(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
