package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/kwertop/membench/bench"
)

var csvHeader = []string{
	"method", "logins", "queries", "status", "reason",
	"build_s", "query_s", "avg_query_ns", "queries_per_s",
	"p50_ns", "p99_ns", "max_ns",
	"tp", "tn", "fp", "fn", "expected_fn",
	"accuracy", "fp_rate", "fn_rate", "insert_failures", "notes", "defect",
}

// WriteCSV writes every result to path, one row per (method, size).
func WriteCSV(path string, results []bench.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return reportingError(err, "creating %s", path)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = reportingError(closeErr, "closing %s", path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return reportingError(err, "writing %s", path)
	}
	for _, r := range results {
		if err := w.Write(csvRecord(r)); err != nil {
			return reportingError(err, "writing %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return reportingError(err, "writing %s", path)
	}
	return nil
}

func csvRecord(r bench.Result) []string {
	itoa := strconv.Itoa
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	ns := func(d time.Duration) string { return strconv.FormatInt(d.Nanoseconds(), 10) }

	var p50, p99, pmax string
	if r.Latency != nil {
		p50, p99, pmax = ns(r.Latency.P50), ns(r.Latency.P99), ns(r.Latency.Max)
	}
	return []string{
		string(r.Method), itoa(r.Logins), itoa(r.Queries), string(r.Status), r.Reason,
		ftoa(r.BuildTime.Seconds()), ftoa(r.QueryTime.Seconds()), ns(r.AvgPerQuery), ftoa(r.QueriesPerSec),
		p50, p99, pmax,
		itoa(r.TP), itoa(r.TN), itoa(r.FP), itoa(r.FN), itoa(r.ExpectedFN),
		ftoa(r.Accuracy), ftoa(r.FPRate), ftoa(r.FNRate), itoa(r.InsertFailures), r.Notes, r.Defect,
	}
}
