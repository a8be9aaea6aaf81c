package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/bench"
	"github.com/kwertop/membench/filters"
	"github.com/kwertop/membench/membership"
	"github.com/kwertop/membench/report"
	"github.com/spf13/cobra"
)

var benchConfig struct {
	configPath      string
	sizes           string
	queriesPerSize  string
	methods         []string
	dataDir         string
	plotsDir        string
	queryRatio      float64
	bloomFPRate     float64
	bloomBackend    string
	redisURI        string
	cuckooCapacity  int
	cuckooFPRate    float64
	cuckooBucket    int
	cuckooRetries   int
	reloadThreshold int
	latencies       bool
	verifyLabels    bool
	loginHeader     bool
	asciiPlots      bool
	noPlots         bool
	csvPath         string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run the membership benchmark over the configured dataset sizes",
	Long: `Run the benchmark. For every size N the files logins_N.csv and
queries_Q.csv are read from --data-dir. Results are printed as one table per
size, plotted into --plots-dir and exported to results.csv.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&benchConfig.configPath, "config", "", "YAML configuration file")
	f.StringVar(&benchConfig.sizes, "sizes", "",
		"comma separated login counts, each N or N:Q (Q defaults to N * query-ratio)")
	f.StringVar(&benchConfig.queriesPerSize, "queries-per-size", "",
		"comma separated N:Q pairs overriding the query count of size N")
	f.StringSliceVar(&benchConfig.methods, "methods", nil,
		"methods to run (linear, sorted, hash, bloom, cuckoo)")
	f.StringVar(&benchConfig.dataDir, "data-dir", "", "directory holding the dataset files")
	f.StringVar(&benchConfig.plotsDir, "plots-dir", "", "directory the plots and results.csv are written to")
	f.Float64Var(&benchConfig.queryRatio, "query-ratio", 0, "queries per login when a size has no explicit query count")
	f.Float64Var(&benchConfig.bloomFPRate, "bloom-fp-rate", 0, "target false positive rate of the Bloom filter")
	f.StringVar(&benchConfig.bloomBackend, "bloom-backend", "", "Bloom filter bitset backend (mem or redis)")
	f.StringVar(&benchConfig.redisURI, "redis-uri", "", "redis:// uri of the redis Bloom backend")
	f.IntVar(&benchConfig.cuckooCapacity, "cuckoo-capacity", 0, "Cuckoo filter capacity (0 sizes it for the logins)")
	f.Float64Var(&benchConfig.cuckooFPRate, "cuckoo-fp-rate", 0, "target false positive rate of the Cuckoo filter")
	f.IntVar(&benchConfig.cuckooBucket, "cuckoo-bucket-size", 0, "fingerprints per Cuckoo bucket")
	f.IntVar(&benchConfig.cuckooRetries, "cuckoo-retries", 0, "Cuckoo relocations before an insert fails")
	f.IntVar(&benchConfig.reloadThreshold, "reload-threshold", 0,
		"login count from which the dataset is reloaded for every method")
	f.BoolVar(&benchConfig.latencies, "latencies", false, "record per-query latencies (adds timing overhead)")
	f.BoolVar(&benchConfig.verifyLabels, "verify-labels", false, "check is_present columns against the login file")
	f.BoolVar(&benchConfig.loginHeader, "login-header", false, "login files start with a username header row")
	f.BoolVar(&benchConfig.asciiPlots, "ascii-plots", false, "print ASCII charts of the query times")
	f.BoolVar(&benchConfig.noPlots, "no-plots", false, "do not write PNG plots")
	f.StringVar(&benchConfig.csvPath, "csv", "", "results CSV path (default <plots-dir>/results.csv)")
}

// resolveConfig loads the configuration file and applies the flags that were
// set on top of it.
func resolveConfig(cmd *cobra.Command) (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if benchConfig.configPath != "" {
		var err error
		if cfg, err = bench.LoadConfig(benchConfig.configPath); err != nil {
			return bench.Config{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("sizes") {
		sizes, err := bench.ParseSizeSpecs(benchConfig.sizes)
		if err != nil {
			return bench.Config{}, err
		}
		cfg.Sizes = sizes
	}
	if flags.Changed("queries-per-size") {
		overrides, err := bench.ParseSizeSpecs(benchConfig.queriesPerSize)
		if err != nil {
			return bench.Config{}, err
		}
		for _, o := range overrides {
			found := false
			for i := range cfg.Sizes {
				if cfg.Sizes[i].Logins == o.Logins {
					cfg.Sizes[i].Queries = o.Queries
					found = true
				}
			}
			if !found {
				return bench.Config{}, errors.Newf("--queries-per-size names size %d which is not benchmarked", o.Logins)
			}
		}
	}
	if flags.Changed("methods") {
		cfg.Methods = cfg.Methods[:0]
		for _, name := range benchConfig.methods {
			m, err := membership.ParseMethod(name)
			if err != nil {
				return bench.Config{}, err
			}
			cfg.Methods = append(cfg.Methods, m)
		}
	}
	setString := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setString("data-dir", &cfg.DataDir, benchConfig.dataDir)
	setString("plots-dir", &cfg.PlotsDir, benchConfig.plotsDir)
	setFloat("query-ratio", &cfg.QueryRatio, benchConfig.queryRatio)
	setFloat("bloom-fp-rate", &cfg.Bloom.FPRate, benchConfig.bloomFPRate)
	setString("bloom-backend", &cfg.Bloom.Backend, benchConfig.bloomBackend)
	setString("redis-uri", &cfg.Bloom.RedisURI, benchConfig.redisURI)
	setInt("cuckoo-capacity", &cfg.Cuckoo.Capacity, benchConfig.cuckooCapacity)
	setFloat("cuckoo-fp-rate", &cfg.Cuckoo.FPRate, benchConfig.cuckooFPRate)
	setInt("cuckoo-bucket-size", &cfg.Cuckoo.BucketSize, benchConfig.cuckooBucket)
	setInt("cuckoo-retries", &cfg.Cuckoo.Retries, benchConfig.cuckooRetries)
	setInt("reload-threshold", &cfg.ReloadThreshold, benchConfig.reloadThreshold)
	if flags.Changed("latencies") {
		cfg.RecordLatencies = benchConfig.latencies
	}
	if flags.Changed("verify-labels") {
		cfg.VerifyLabels = benchConfig.verifyLabels
	}
	if flags.Changed("login-header") {
		cfg.LoginHeader = benchConfig.loginHeader
	}
	return cfg, cfg.Validate()
}

func runBench(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := cfg.MembershipOptions()
	if opts.Bloom.Backend == membership.BackendRedis {
		connOpts, err := filters.ParseRedisURI(cfg.Bloom.RedisURI)
		if err != nil {
			return err
		}
		client := filters.NewRedisClient(*connOpts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Wrapf(err, "connecting to redis at %s", connOpts.Address)
		}
		opts.Bloom.Redis = client
	}

	out := cmd.OutOrStdout()
	runner := bench.NewRunner(cfg, opts, logger)
	runner.SizeDone = func(results []bench.Result) {
		report.WriteTable(out, results)
	}
	runErr := runner.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		return runErr
	}

	results := runner.Results().Results()
	if benchConfig.asciiPlots {
		report.WriteASCIICharts(out, results)
	}
	if !benchConfig.noPlots {
		if err := report.WritePlots(cfg.PlotsDir, results); err != nil {
			logger.Warn("plotting failed", "err", err)
		} else {
			logger.Info("plots written", "dir", cfg.PlotsDir)
		}
	}
	csvPath := benchConfig.csvPath
	if csvPath == "" {
		csvPath = filepath.Join(cfg.PlotsDir, "results.csv")
	}
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		logger.Warn("exporting results failed", "err", err)
	} else if err := report.WriteCSV(csvPath, results); err != nil {
		logger.Warn("exporting results failed", "err", err)
	} else {
		logger.Info("results exported", "path", csvPath)
	}

	if runErr != nil {
		return errors.Wrapf(runErr, "benchmark incomplete")
	}
	fmt.Fprintf(out, "\n%d results over %d sizes\n", len(results), len(runner.Results().Sizes()))
	return nil
}
