package server

import (
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cwbudde/acor/bench"
	"github.com/cwbudde/acor/internal/opt"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	jobs := s.jobManager.ListJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.ExecuteTemplate(w, "index", indexData{Jobs: jobs}); err != nil {
		slog.Error("Failed to render job list page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleCreatePage handles GET and POST /create
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderCreatePage(w, createData{Form: defaultFormConfig()})

	case http.MethodPost:
		config, errs := parseJobForm(r)
		if len(errs) > 0 {
			s.renderCreatePage(w, createData{Errors: errs, Form: config})
			return
		}

		job := s.startJob(config)
		http.Redirect(w, r, "/jobs/"+job.ID, http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderCreatePage(w http.ResponseWriter, data createData) {
	data.Optimizers = opt.Names()
	data.Functions = bench.Names()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.ExecuteTemplate(w, "create", data); err != nil {
		slog.Error("Failed to render create page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// defaultFormConfig pre-fills the creation form.
func defaultFormConfig() JobConfig {
	config := JobConfig{Bounded: true, Seed: 42}
	applyConfigDefaults(&config)
	return config
}

// handleJobDetail handles GET /jobs/:id
func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		if err := pageTmpl.ExecuteTemplate(w, "detail", detailData{}); err != nil {
			slog.Error("Failed to render job detail page", "error", err)
		}
		return
	}

	data := detailData{
		Job:       job,
		Found:     true,
		Active:    job.State == StatePending || job.State == StateRunning,
		Completed: job.State == StateCompleted,
	}
	if job.InitialCost != 0 {
		data.ImprovementPct = (job.InitialCost - job.BestCost) / math.Abs(job.InitialCost) * 100
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}
	data.Elapsed = elapsed.Round(time.Millisecond).String()

	if err := pageTmpl.ExecuteTemplate(w, "detail", data); err != nil {
		slog.Error("Failed to render job detail page", "error", err)
	}
}
