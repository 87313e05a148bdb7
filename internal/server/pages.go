package server

import (
	"html/template"
	"strings"
)

// indexData feeds the job list page.
type indexData struct {
	Jobs []*Job
}

// createData feeds the job creation form. Form carries the submitted values
// back into the inputs when validation fails.
type createData struct {
	Optimizers []string
	Functions  []string
	Errors     []string
	Form       JobConfig
}

// detailData feeds the job detail page.
type detailData struct {
	Job            *Job
	Found          bool
	Active         bool
	Completed      bool
	ImprovementPct float64
	Elapsed        string
}

var pageTmpl = template.Must(template.New("pages").Funcs(template.FuncMap{
	"title": func(s JobState) string {
		if len(s) == 0 {
			return ""
		}
		return strings.ToUpper(string(s)[:1]) + string(s)[1:]
	},
	"short": func(id string) string {
		if len(id) > 8 {
			return id[:8]
		}
		return id
	},
}).Parse(pagesHTML))

const pagesHTML = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
.badge { padding: 0.15rem 0.5rem; border-radius: 0.5rem; font-size: 0.85rem; }
.badge.pending { background: #eee; }
.badge.running { background: #cde4ff; }
.badge.completed { background: #c9f0c9; }
.badge.failed { background: #f6c6c6; }
.badge.cancelled { background: #f0e0b8; }
.error { color: #b00020; }
form label { display: block; margin-top: 0.8rem; }
input, select { padding: 0.25rem; }
.actions { margin: 1rem 0; }
a.button, button { padding: 0.4rem 0.9rem; border: 1px solid #888; border-radius: 0.3rem; background: #f5f5f5; text-decoration: none; color: #222; cursor: pointer; }
section { margin-top: 1.5rem; }
dl { display: grid; grid-template-columns: 12rem 1fr; row-gap: 0.3rem; }
dt { font-weight: 600; }
</style>
</head>
<body>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "index"}}{{template "head" "Optimization Jobs"}}
<h1>Optimization Jobs</h1>
<div class="actions"><a class="button" href="/create">New Job</a></div>
{{if .Jobs}}
<table>
<tr><th>ID</th><th>State</th><th>Optimizer</th><th>Function</th><th>Dim</th><th>Best Cost</th><th>Started</th></tr>
{{range .Jobs}}
<tr>
<td><a href="/jobs/{{.ID}}">{{short .ID}}</a></td>
<td><span class="badge {{.State}}">{{title .State}}</span></td>
<td>{{.Config.Optimizer}}</td>
<td>{{.Config.Function}}</td>
<td>{{.Config.Dim}}</td>
<td>{{printf "%.4f" .BestCost}}</td>
<td>{{.StartTime.Format "2006-01-02 15:04:05"}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No jobs yet.</p>
{{end}}
{{template "foot"}}{{end}}

{{define "create"}}{{template "head" "Create New Job"}}
<h1>Create New Job</h1>
<p><a href="/">Back to job list</a></p>
{{range .Errors}}<p class="error">{{.}}</p>
{{end}}
<form method="post" action="/create">
<section>
<h2>Search Space</h2>
<label>Optimizer
<select name="optimizer">
{{range .Optimizers}}<option value="{{.}}"{{if eq . $.Form.Optimizer}} selected{{end}}>{{.}}</option>{{end}}
</select>
</label>
<label>Benchmark function
<select name="function">
{{range .Functions}}<option value="{{.}}"{{if eq . $.Form.Function}} selected{{end}}>{{.}}</option>{{end}}
</select>
</label>
<label>Dimensions <input type="number" name="dim" value="{{.Form.Dim}}" min="1" max="256"></label>
<label><input type="checkbox" name="bounded"{{if .Form.Bounded}} checked{{end}}> Clamp positions to the function bounds</label>
</section>
<section>
<h2>Optimization Parameters</h2>
<label>Iterations <input type="number" name="iters" value="{{.Form.Iterations}}" min="1" max="10000"></label>
<label>Population size <input type="number" name="popSize" value="{{.Form.PopSize}}" min="2" max="200"></label>
<label>Seed <input type="number" name="seed" value="{{.Form.Seed}}"></label>
</section>
<div class="actions"><button type="submit">Start</button></div>
</form>
{{template "foot"}}{{end}}

{{define "detail"}}{{if not .Found}}{{template "head" "Job Not Found"}}
<h1>Job Not Found</h1>
<p>No job with that ID exists on this server.</p>
<p><a href="/">Back to job list</a></p>
{{template "foot"}}{{else}}{{template "head" (printf "Job %s" (short .Job.ID))}}
<h1>Job {{short .Job.ID}}</h1>
<p><a href="/">Back to job list</a></p>
<p><span class="badge {{.Job.State}}" id="state">{{title .Job.State}}</span></p>
{{if .Job.Error}}<p class="error">{{.Job.Error}}</p>{{end}}
<section>
<h2>Metrics</h2>
<dl>
<dt>Initial cost</dt><dd>{{printf "%.2f" .Job.InitialCost}}</dd>
<dt>Best cost</dt><dd id="bestCost">{{printf "%.2f" .Job.BestCost}}</dd>
<dt>Improvement</dt><dd>{{printf "%.1f" .ImprovementPct}}%</dd>
<dt>Iterations</dt><dd id="iterations">{{.Job.Iterations}}</dd>
<dt>Evaluations</dt><dd>{{.Job.Evaluations}}</dd>
<dt>Elapsed</dt><dd>{{.Elapsed}}</dd>
</dl>
</section>
<section>
<h2>Configuration</h2>
<dl>
<dt>Optimizer</dt><dd>{{.Job.Config.Optimizer}}</dd>
<dt>Function</dt><dd>{{.Job.Config.Function}}</dd>
<dt>Dimensions</dt><dd>{{.Job.Config.Dim}}</dd>
<dt>Bounded</dt><dd>{{.Job.Config.Bounded}}</dd>
<dt>Iterations</dt><dd>{{.Job.Config.Iterations}}</dd>
<dt>Population</dt><dd>{{.Job.Config.PopSize}}</dd>
<dt>Seed</dt><dd>{{.Job.Config.Seed}}</dd>
</dl>
</section>
<section>
<h2>Convergence</h2>
{{if .Completed}}
<img src="/api/v1/jobs/{{.Job.ID}}/convergence.png" alt="Convergence plot" style="max-width: 100%">
{{else}}
<p>The convergence plot appears once the job completes.</p>
{{end}}
</section>
{{if .Active}}
<div class="actions"><button onclick="cancelJob()">Cancel</button></div>
<script>
const source = new EventSource("/api/v1/jobs/{{.Job.ID}}/stream");
source.onmessage = (e) => {
	const ev = JSON.parse(e.data);
	document.getElementById("bestCost").textContent = ev.bestCost.toFixed(2);
	document.getElementById("iterations").textContent = ev.iterations;
	if (ev.state === "completed" || ev.state === "failed" || ev.state === "cancelled") {
		source.close();
		location.reload();
	}
};
function cancelJob() {
	fetch("/api/v1/jobs/{{.Job.ID}}/cancel", {method: "POST"}).then(() => location.reload());
}
</script>
{{end}}
{{template "foot"}}{{end}}{{end}}
`
