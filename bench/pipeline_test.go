package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/dataset"
	"github.com/kwertop/membench/membership"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTenTwenty writes logins_10.csv with 10 distinct logins and
// queries_20.csv with 10 present and 10 absent queries.
func writeTenTwenty(t *testing.T, dir string) {
	t.Helper()
	var logins []string
	var queries []dataset.Query
	for i := 0; i < 10; i++ {
		logins = append(logins, fmt.Sprintf("user%d", i))
		queries = append(queries,
			dataset.Query{Username: fmt.Sprintf("user%d", i), Present: true},
			dataset.Query{Username: fmt.Sprintf("fake%d_1234", i)})
	}
	require.NoError(t, dataset.WriteLogins(dataset.LoginFile(dir, 10), logins))
	require.NoError(t, dataset.WriteQueries(dataset.QueryFile(dir, 20), queries, false))
}

func testConfig(dir string, sizes ...SizeSpec) Config {
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.Sizes = sizes
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{10, 20})
	cfg.RecordLatencies = true
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	var done [][]Result
	runner.SizeDone = func(results []Result) { done = append(done, results) }
	require.NoError(t, runner.Run(context.Background()))

	log := runner.Results()
	require.Equal(t, len(membership.Methods), log.Len())
	require.Len(t, done, 1)
	require.Len(t, done[0], len(membership.Methods))

	for _, m := range []membership.Method{membership.Linear, membership.Sorted, membership.Hash} {
		res, ok := log.Get(m, 10)
		require.True(t, ok)
		require.Equal(t, StatusOK, res.Status, res.Reason)
		require.Equal(t, 1.0, res.Accuracy, m)
		require.Zero(t, res.FPRate)
		require.Zero(t, res.FNRate)
		require.Equal(t, Counts{TP: 10, TN: 10}, res.Counts)
		require.Empty(t, res.Defect)
		require.NotNil(t, res.Latency)
	}

	bloom, ok := log.Get(membership.Bloom, 10)
	require.True(t, ok)
	require.Equal(t, StatusOK, bloom.Status)
	require.Zero(t, bloom.FNRate)
	require.Equal(t, 10, bloom.TP)
	require.GreaterOrEqual(t, bloom.Accuracy, 1-0.5*cfg.Bloom.FPRate)
	require.Contains(t, bloom.Notes, "hashes=")

	cuckoo, ok := log.Get(membership.Cuckoo, 10)
	require.True(t, ok)
	require.Equal(t, StatusOK, cuckoo.Status)
	require.Equal(t, cuckoo.FN, cuckoo.ExpectedFN)
	require.Equal(t, 20, cuckoo.Total())
}

func TestRunIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)
	cfg := testConfig(dir, SizeSpec{10, 20})

	var counts [2]map[membership.Method]Counts
	for i := range counts {
		runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
		require.NoError(t, runner.Run(context.Background()))
		counts[i] = make(map[membership.Method]Counts)
		for _, r := range runner.Results().Results() {
			counts[i][r.Method] = r.Counts
		}
	}
	require.Equal(t, counts[0], counts[1])
}

func TestRunMissingDataset(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{Logins: 50}, SizeSpec{10, 20})
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	err := runner.Run(context.Background())
	require.True(t, errors.Is(err, dataset.ErrDatasetFormat), "%v", err)
	require.True(t, errors.Is(err, dataset.ErrDatasetMissing))
	require.Len(t, runner.DatasetErrors(), 1)

	// The missing size is recorded as failed and the next size still runs.
	for _, r := range runner.Results().ForSize(50) {
		require.Equal(t, StatusFailed, r.Status)
		require.Equal(t, 5, r.Queries)
	}
	hash, ok := runner.Results().Get(membership.Hash, 10)
	require.True(t, ok)
	require.Equal(t, StatusOK, hash.Status)
}

func TestRunMalformedDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logins_10.csv"), []byte("a,b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queries_1.csv"), []byte("a\n"), 0o644))

	cfg := testConfig(dir, SizeSpec{Logins: 10})
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	err := runner.Run(context.Background())
	require.True(t, errors.Is(err, dataset.ErrDatasetFormat), "%v", err)
	require.False(t, errors.Is(err, dataset.ErrDatasetMissing))
}

func TestRunSkipTable(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{10, 20}, SizeSpec{2_000_000, 5})
	cfg.Methods = []membership.Method{membership.Linear, membership.Hash}
	cfg.Skip = append(cfg.Skip, SkipRule{Method: membership.Hash, MinSize: 1_000_000})
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	// Every method of the large size is skipped, so its missing dataset is
	// never read.
	require.NoError(t, runner.Run(context.Background()))

	var order []membership.Method
	for _, r := range runner.Results().ForSize(10) {
		order = append(order, r.Method)
	}
	require.Equal(t, cfg.Methods, order)

	large := runner.Results().ForSize(2_000_000)
	require.Len(t, large, 2)
	for _, r := range large {
		require.Equal(t, StatusSkipped, r.Status)
		require.NotEmpty(t, r.Reason)
	}
	linear, ok := runner.Results().Get(membership.Linear, 10)
	require.True(t, ok)
	require.Equal(t, StatusOK, linear.Status)
}

func TestRunReloadsLargeSizes(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{10, 20})
	cfg.ReloadThreshold = 10
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	require.NoError(t, runner.Run(context.Background()))
	for _, r := range runner.Results().Results() {
		require.Equal(t, StatusOK, r.Status, "%s: %s", r.Method, r.Reason)
		require.Equal(t, 20, r.Total())
	}
}

func TestRunBuildFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{10, 20})
	opts := cfg.MembershipOptions()
	opts.Bloom.Backend = membership.BackendRedis
	runner := NewRunner(cfg, opts, discardLogger())
	require.NoError(t, runner.Run(context.Background()))

	bloom, ok := runner.Results().Get(membership.Bloom, 10)
	require.True(t, ok)
	require.Equal(t, StatusFailed, bloom.Status)
	require.Contains(t, bloom.Reason, "redis")
	cuckoo, ok := runner.Results().Get(membership.Cuckoo, 10)
	require.True(t, ok)
	require.Equal(t, StatusOK, cuckoo.Status)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testConfig(t.TempDir(), SizeSpec{10, 20})
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	require.ErrorIs(t, runner.Run(ctx), context.Canceled)
	require.Zero(t, runner.Results().Len())
}

func TestRunKeepsMethodOrder(t *testing.T) {
	dir := t.TempDir()
	writeTenTwenty(t, dir)

	cfg := testConfig(dir, SizeSpec{10, 20})
	cfg.Skip = []SkipRule{{Method: membership.Sorted}, {Method: membership.Cuckoo}}
	runner := NewRunner(cfg, cfg.MembershipOptions(), discardLogger())
	require.NoError(t, runner.Run(context.Background()))

	results := runner.Results().Results()
	require.Len(t, results, len(membership.Methods))
	for i, r := range results {
		require.Equal(t, membership.Methods[i], r.Method)
	}
	require.Equal(t, StatusSkipped, results[1].Status)
	require.Equal(t, StatusOK, results[2].Status)
	require.Equal(t, StatusSkipped, results[4].Status)
}

func TestCrossCheck(t *testing.T) {
	results := []Result{
		{Method: membership.Linear, Status: StatusOK, Counts: Counts{TP: 5, TN: 5}},
		{Method: membership.Sorted, Status: StatusOK, Counts: Counts{TP: 5, TN: 4, FP: 1}},
		{Method: membership.Hash, Status: StatusOK, Counts: Counts{TP: 5, TN: 5}},
		{Method: membership.Bloom, Status: StatusOK, Counts: Counts{TP: 5, TN: 4, FP: 1}},
	}
	crossCheck(discardLogger(), results)
	require.Empty(t, results[0].Defect)
	require.NotEmpty(t, results[1].Defect)
	require.Empty(t, results[2].Defect)
	require.Empty(t, results[3].Defect)

	results = []Result{
		{Method: membership.Linear, Status: StatusOK, Counts: Counts{TP: 4, TN: 6}},
		{Method: membership.Hash, Status: StatusOK, Counts: Counts{TP: 5, TN: 5}},
	}
	crossCheck(discardLogger(), results)
	require.Equal(t, "counts differ from the hash set", results[0].Defect)
}
