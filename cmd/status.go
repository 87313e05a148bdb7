package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		url := fmt.Sprintf("%s/api/v1/jobs", serverURL)
		return listJobs(url)
	}

	jobID := args[0]
	url := fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID)
	return getJobStatus(url, jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			fmt.Printf("  Optimizer: %v\n", config["optimizer"])
			fmt.Printf("  Function: %v (dim %v)\n", config["function"], config["dim"])
		}
		if iterations, ok := job["iterations"].(float64); ok && iterations > 0 {
			fmt.Printf("  Cost: %.4f -> %.4f\n", job["initialCost"], job["bestCost"])
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Optimizer: %v\n", config["optimizer"])
		fmt.Printf("  Function: %v\n", config["function"])
		fmt.Printf("  Dimensions: %v\n", config["dim"])
		fmt.Printf("  Bounded: %v\n", config["bounded"])
		fmt.Printf("  Iterations: %v\n", config["iters"])
		fmt.Printf("  Population: %v\n", config["popSize"])
		fmt.Printf("  Seed: %v\n", config["seed"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	iterations, _ := status["iterations"].(float64)
	fmt.Printf("  Iterations: %.0f\n", iterations)
	// Costs are only meaningful once the first iteration reported; note that
	// valid costs can be negative (eggholder), so presence, not sign, gates.
	if iterations > 0 {
		initialCost, _ := status["initialCost"].(float64)
		bestCost, _ := status["bestCost"].(float64)
		fmt.Printf("  Initial Cost: %.4f\n", initialCost)
		fmt.Printf("  Best Cost: %.4f\n", bestCost)
		if initialCost != 0 {
			improvement := initialCost - bestCost
			improvementPct := improvement / math.Abs(initialCost) * 100
			fmt.Printf("  Improvement: %.4f (%.1f%%)\n", improvement, improvementPct)
		}
	}
	if evaluations, ok := status["evaluations"].(float64); ok && evaluations > 0 {
		fmt.Printf("  Evaluations: %.0f\n", evaluations)
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("  Elapsed: %s\n", time.Duration(elapsed*float64(time.Second)).Round(time.Millisecond))
	}

	if eps, ok := status["eps"].(float64); ok && eps > 0 {
		fmt.Printf("  Throughput: %.0f evals/sec\n", eps)
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
