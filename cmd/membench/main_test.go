package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/dataset"
	"github.com/kwertop/membench/report"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateAndBench(t *testing.T) {
	data := t.TempDir()
	plots := filepath.Join(t.TempDir(), "plots")

	_, err := execute(t, "generate", "--logins", "2000", "--queries", "400", "--out", data, "--seed", "7")
	require.NoError(t, err)
	for _, path := range []string{dataset.LoginFile(data, 2000), dataset.QueryFile(data, 400)} {
		_, err := os.Stat(path)
		require.NoError(t, err)
	}

	out, err := execute(t, "bench", "--sizes", "2000:400", "--data-dir", data, "--plots-dir", plots, "--ascii-plots")
	require.NoError(t, err)
	require.Contains(t, out, "2,000 logins, 400 queries")
	require.Contains(t, out, "Hash Set")
	require.Contains(t, out, "Cuckoo Filter")
	require.Contains(t, out, "5 results over 1 sizes")
	for _, name := range []string{report.LinearPlotFile, report.OtherPlotFile, "results.csv"} {
		_, err := os.Stat(filepath.Join(plots, name))
		require.NoError(t, err, name)
	}

	// A size without dataset files fails the command after reporting.
	_, err = execute(t, "bench", "--sizes", "2000:400,50", "--data-dir", data, "--plots-dir", plots)
	require.True(t, errors.Is(err, dataset.ErrDatasetMissing), "%v", err)
}

func TestResolveConfigFlags(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sizes: [1000]\nbloom:\n  fp_rate: 0.05\n"), 0o644))

	require.NoError(t, benchCmd.Flags().Parse([]string{
		"--config", cfgPath, "--sizes", "1000", "--queries-per-size", "1000:30", "--methods", "hash,bloom", "--cuckoo-retries", "10",
	}))
	cfg, err := resolveConfig(benchCmd)
	require.NoError(t, err)
	require.Equal(t, 1000, cfg.Sizes[0].Logins)
	require.Equal(t, 30, cfg.Sizes[0].Queries)
	require.Equal(t, 0.05, cfg.Bloom.FPRate)
	require.Equal(t, 10, cfg.Cuckoo.Retries)
	require.Len(t, cfg.Methods, 2)

	require.NoError(t, benchCmd.Flags().Parse([]string{"--queries-per-size", "5:1"}))
	_, err = resolveConfig(benchCmd)
	require.Error(t, err)
}
