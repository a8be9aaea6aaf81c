package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/bench"
	"github.com/kwertop/membench/membership"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	// LinearPlotFile shows the linear scan on its own; its query time would
	// flatten every other curve.
	LinearPlotFile = "linear_plot.png"
	// OtherPlotFile shows every other method.
	OtherPlotFile = "other_plot.png"
)

// OtherMethods are the methods drawn in OtherPlotFile.
var OtherMethods = []membership.Method{membership.Sorted, membership.Hash, membership.Bloom, membership.Cuckoo}

// minPlotSeconds replaces query times a log axis cannot show.
const minPlotSeconds = 1e-9

// Series returns the login counts and total query times, in seconds, of the
// successful results of method.
func Series(results []bench.Result, method membership.Method) (sizes, seconds []float64) {
	for _, r := range results {
		if r.Method != method || r.Status != bench.StatusOK {
			continue
		}
		sizes = append(sizes, float64(r.Logins))
		seconds = append(seconds, r.QueryTime.Seconds())
	}
	return sizes, seconds
}

// WritePlots writes LinearPlotFile and OtherPlotFile into dir. A plot without
// any successful result is not written. Every error is marked ErrReporting.
func WritePlots(dir string, results []bench.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return reportingError(err, "creating %s", dir)
	}
	err := SavePlot(filepath.Join(dir, LinearPlotFile), "Linear scan: total query time", results, membership.Linear)
	return errors.CombineErrors(err,
		SavePlot(filepath.Join(dir, OtherPlotFile), "Total query time by method", results, OtherMethods...))
}

// SavePlot draws the query time of methods across sizes into a PNG at path.
func SavePlot(path, title string, results []bench.Result, methods ...membership.Method) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = reportingError(errors.Newf("%v", r), "plotting %s", path)
		}
	}()

	var lines []interface{}
	for _, m := range methods {
		sizes, seconds := Series(results, m)
		if len(sizes) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(sizes))
		for i := range sizes {
			xys[i].X = sizes[i]
			xys[i].Y = math.Max(seconds[i], minPlotSeconds)
		}
		lines = append(lines, m.DisplayName(), xys)
	}
	if len(lines) == 0 {
		return reportingError(errors.Newf("no successful results of %v", methods), "plotting %s", path)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "number of logins"
	p.Y.Label.Text = "total query time (s)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return reportingError(err, "plotting %s", path)
	}
	widen(&p.X)
	widen(&p.Y)
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return reportingError(err, "saving %s", path)
	}
	return nil
}

// widen gives a single-valued axis a range a log scale can draw.
func widen(a *plot.Axis) {
	if a.Min == a.Max {
		a.Min /= 2
		a.Max *= 2
	}
}

// plotCaption lists the sizes a chart's x positions stand for.
func plotCaption(name string, sizes []float64) string {
	labels := make([]string, len(sizes))
	for i, s := range sizes {
		labels[i] = fmt.Sprintf("%g", s)
	}
	return fmt.Sprintf("%s, query time (ms) at %v logins", name, labels)
}
