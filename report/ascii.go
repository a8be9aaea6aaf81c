package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/kwertop/membench/bench"
	"github.com/kwertop/membench/membership"
)

const asciiHeight = 10

// WriteASCIICharts prints the linear scan chart and one chart per other
// method, the terminal counterparts of WritePlots.
func WriteASCIICharts(w io.Writer, results []bench.Result) {
	for _, m := range append([]membership.Method{membership.Linear}, OtherMethods...) {
		sizes, seconds := Series(results, m)
		if len(seconds) == 0 {
			continue
		}
		ms := make([]float64, len(seconds))
		for i, s := range seconds {
			ms[i] = s * 1e3
		}
		if len(ms) == 1 {
			ms = append(ms, ms[0])
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, asciigraph.Plot(ms,
			asciigraph.Height(asciiHeight),
			asciigraph.Caption(plotCaption(m.DisplayName(), sizes))))
	}
}
