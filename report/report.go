// Package report renders benchmark results: a console table per size, ASCII
// charts, PNG plots and a CSV export.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/kwertop/membench/bench"
	"github.com/olekukonko/tablewriter"
)

// ErrReporting marks errors raised while producing reports. They never abort
// a benchmark run.
var ErrReporting = errors.New("reporting error")

func reportingError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrReporting)
}

var tableHeader = []string{
	"Method", "Build", "Query", "Avg/query", "Queries/s", "Accuracy", "FP rate", "FN rate", "Notes",
}

// WriteTable writes one table for the results of a single size.
func WriteTable(w io.Writer, results []bench.Result) {
	if len(results) == 0 {
		return
	}
	first := results[0]
	fmt.Fprintf(w, "\n%s logins, %s queries\n",
		humanize.Comma(int64(first.Logins)), humanize.Comma(int64(first.Queries)))

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(tableHeader)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	for _, r := range results {
		tbl.Append(row(r))
	}
	tbl.Render()
}

func row(r bench.Result) []string {
	name := r.Method.DisplayName()
	switch r.Status {
	case bench.StatusSkipped:
		return []string{name, "skipped (" + r.Reason + ")", "", "", "", "", "", "", ""}
	case bench.StatusFailed:
		return []string{name, "failed (" + firstLine(r.Reason) + ")", "", "", "", "", "", "", ""}
	}
	return []string{
		name,
		FormatDuration(r.BuildTime),
		FormatDuration(r.QueryTime),
		FormatDuration(r.AvgPerQuery),
		humanize.SIWithDigits(r.QueriesPerSec, 1, ""),
		fmt.Sprintf("%.4f", r.Accuracy),
		fmt.Sprintf("%.6f", r.FPRate),
		fmt.Sprintf("%.6f", r.FNRate),
		notes(r),
	}
}

func notes(r bench.Result) string {
	var parts []string
	if r.Notes != "" {
		parts = append(parts, r.Notes)
	}
	if r.InsertFailures > 0 {
		parts = append(parts, fmt.Sprintf("insert_failures=%s expected_fn=%d",
			humanize.Comma(int64(r.InsertFailures)), r.ExpectedFN))
	}
	if r.Latency != nil {
		parts = append(parts, fmt.Sprintf("p50=%s p99=%s max=%s",
			FormatDuration(r.Latency.P50), FormatDuration(r.Latency.P99), FormatDuration(r.Latency.Max)))
	}
	if r.Defect != "" {
		parts = append(parts, "DEFECT: "+r.Defect)
	}
	return strings.Join(parts, "; ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatDuration prints d with a precision suited to its magnitude.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	}
	return d.String()
}
