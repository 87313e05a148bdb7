package runner

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/acor/internal/store"
)

// WritePlot renders the cost trace as a PNG line chart at the given path.
// The Y axis stays linear because costs can be negative.
func WritePlot(trace []store.TraceEntry, title, path string) error {
	if len(trace) == 0 {
		return fmt.Errorf("trace is empty")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Best cost"

	pts := make(plotter.XYs, len(trace))
	for i, entry := range trace {
		pts[i].X = float64(entry.Iteration)
		pts[i].Y = entry.Cost
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("building cost line: %w", err)
	}

	p.Add(plotter.NewGrid(), line)
	p.Legend.Add("best cost", line)
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
