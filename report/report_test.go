package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/bench"
	"github.com/kwertop/membench/membership"
	"github.com/stretchr/testify/require"
)

func sampleResults() []bench.Result {
	var results []bench.Result
	for i, n := range []int{10_000, 100_000, 1_000_000} {
		scale := time.Duration(1 + 9*i)
		for _, m := range membership.Methods {
			results = append(results, bench.Result{
				Method: m, Logins: n, Queries: n / 10, Status: bench.StatusOK,
				BuildTime: scale * time.Millisecond, QueryTime: scale * 2 * time.Millisecond,
				AvgPerQuery: 150 * time.Nanosecond, QueriesPerSec: 6.5e6,
				Counts:   bench.Counts{TP: n / 20, TN: n / 20},
				Accuracy: 1,
			})
		}
	}
	results = append(results,
		bench.Result{Method: membership.Linear, Logins: 10_000_000, Status: bench.StatusSkipped, Reason: "linear scan above 1M logins"},
		bench.Result{Method: membership.Hash, Logins: 10_000_000, Status: bench.StatusFailed, Reason: "dataset missing\nsecond line"},
		bench.Result{
			Method: membership.Cuckoo, Logins: 10_000_000, Status: bench.StatusOK,
			InsertFailures: 12, Counts: bench.Counts{TP: 10, FN: 2, ExpectedFN: 2},
			Notes: "buckets=4 fp_bits=13 load=0.955", Latency: &bench.Latency{P50: 100, P99: 900, Max: 2000},
		},
	)
	return results
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	var large []bench.Result
	for _, r := range sampleResults() {
		if r.Logins == 10_000_000 {
			large = append(large, r)
		}
	}
	WriteTable(&buf, large)
	out := buf.String()
	require.Contains(t, out, "10,000,000 logins")
	require.Contains(t, out, "skipped (linear scan above 1M logins)")
	require.Contains(t, out, "failed (dataset missing)")
	require.NotContains(t, out, "second line")
	require.Contains(t, out, "insert_failures=12 expected_fn=2")
	require.Contains(t, out, "p99=900ns")

	buf.Reset()
	WriteTable(&buf, nil)
	require.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "1.235s", FormatDuration(1234567890*time.Nanosecond))
	require.Equal(t, "12.346ms", FormatDuration(12345678*time.Nanosecond))
	require.Equal(t, "150ns", FormatDuration(150*time.Nanosecond))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := sampleResults()
	require.NoError(t, WriteCSV(path, results))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(results)+1)
	require.Equal(t, csvHeader, records[0])
	last := records[len(records)-1]
	require.Equal(t, "cuckoo", last[0])
	require.Equal(t, "12", last[20])
	require.Equal(t, "900", last[10])

	err = WriteCSV(filepath.Join(t.TempDir(), "missing", "results.csv"), results)
	require.True(t, errors.Is(err, ErrReporting))
}

func TestWritePlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	require.NoError(t, WritePlots(dir, sampleResults()))
	for _, name := range []string{LinearPlotFile, OtherPlotFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
}

func TestWritePlotsSingleSize(t *testing.T) {
	results := []bench.Result{
		{Method: membership.Linear, Logins: 10, Status: bench.StatusOK, QueryTime: 0},
		{Method: membership.Hash, Logins: 10, Status: bench.StatusOK, QueryTime: time.Microsecond},
	}
	require.NoError(t, WritePlots(t.TempDir(), results))
}

func TestWritePlotsFailure(t *testing.T) {
	err := WritePlots(t.TempDir(), nil)
	require.True(t, errors.Is(err, ErrReporting), "%v", err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = WritePlots(file, sampleResults())
	require.True(t, errors.Is(err, ErrReporting), "%v", err)
}

func TestSeries(t *testing.T) {
	sizes, seconds := Series(sampleResults(), membership.Linear)
	require.Equal(t, []float64{10_000, 100_000, 1_000_000}, sizes)
	require.Len(t, seconds, 3)
	require.InDelta(t, 0.002, seconds[0], 1e-12)

	sizes, _ = Series(sampleResults(), membership.Cuckoo)
	require.Len(t, sizes, 4)
}

func TestWriteASCIICharts(t *testing.T) {
	var buf bytes.Buffer
	WriteASCIICharts(&buf, sampleResults())
	out := buf.String()
	require.Contains(t, out, "Linear Scan, query time (ms)")
	require.Contains(t, out, "Cuckoo Filter, query time (ms)")
}
