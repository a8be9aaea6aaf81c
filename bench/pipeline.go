package bench

import (
	"cmp"
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/dataset"
	"github.com/kwertop/membench/membership"
)

// Runner executes the benchmark one dataset size at a time. Sizes are
// independent: a size whose dataset cannot be loaded is recorded as failed
// and the next size runs.
type Runner struct {
	cfg    Config
	opts   membership.Options
	logger *slog.Logger
	log    ResultLog

	datasetErrs []error
	// SizeDone, if set, is called with the results of each size once the
	// size is finished.
	SizeDone func(results []Result)
}

// NewRunner returns a Runner for cfg. opts carries the builder options,
// including the Redis connection of the Bloom filter's redis backend.
func NewRunner(cfg Config, opts membership.Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, opts: opts, logger: logger}
}

// Results returns the result log.
func (r *Runner) Results() *ResultLog { return &r.log }

// DatasetErrors returns the errors of the sizes whose dataset could not be
// loaded.
func (r *Runner) DatasetErrors() []error { return r.datasetErrs }

// Run benchmarks every configured size. It returns an error marked
// dataset.ErrDatasetFormat if a dataset was missing or malformed, or the
// context's error if ctx was canceled.
func (r *Runner) Run(ctx context.Context) error {
	for _, spec := range r.cfg.Sizes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RunSize(ctx, spec); err != nil {
			return err
		}
	}
	if n := len(r.datasetErrs); n > 0 {
		return errors.Wrapf(r.datasetErrs[0], "%d of %d sizes could not be loaded", n, len(r.cfg.Sizes))
	}
	return nil
}

// RunSize benchmarks every method at one size and appends their results.
// Only a canceled context is returned as an error.
func (r *Runner) RunSize(ctx context.Context, spec SizeSpec) error {
	n, q := spec.Logins, spec.QueriesFor(r.cfg.QueryRatio)
	logger := r.logger.With("logins", n, "queries", q)

	var results []Result
	var active []membership.Method
	for _, m := range r.cfg.Methods {
		if reason, skip := SkipReason(r.cfg.Skip, m, n); skip {
			logger.Info("skipping method", "method", m, "reason", reason)
			results = append(results, Result{Method: m, Logins: n, Queries: q, Status: StatusSkipped, Reason: reason})
			continue
		}
		active = append(active, m)
	}
	defer func() {
		slices.SortStableFunc(results, func(a, b Result) int {
			return cmp.Compare(slices.Index(membership.Methods, a.Method), slices.Index(membership.Methods, b.Method))
		})
		for _, res := range results {
			r.log.Append(res)
		}
		if r.SizeDone != nil && len(results) > 0 {
			r.SizeDone(r.log.ForSize(n))
		}
	}()
	if len(active) == 0 {
		logger.Info("every method skipped")
		return nil
	}

	loginPath, queryPath := dataset.Paths(r.cfg.DataDir, n, q)
	load := func() (*dataset.Dataset, error) {
		logger.Debug("loading dataset", "logins_file", loginPath, "queries_file", queryPath)
		return dataset.Load(loginPath, queryPath, dataset.LoadOptions{
			VerifyLabels: r.cfg.VerifyLabels,
			LoginHeader:  r.cfg.LoginHeader,
		})
	}
	failRest := func(methods []membership.Method, err error) {
		r.datasetErrs = append(r.datasetErrs, err)
		logger.Error("dataset unavailable", "err", err)
		for _, m := range methods {
			results = append(results, Result{Method: m, Logins: n, Queries: q, Status: StatusFailed, Reason: err.Error()})
		}
	}

	data, err := load()
	if err != nil {
		failRest(active, err)
		return nil
	}
	logger.Info("dataset loaded", "present", data.NumPresent())

	reload := r.cfg.ReloadThreshold > 0 && n >= r.cfg.ReloadThreshold
	for i, m := range active {
		if err := ctx.Err(); err != nil {
			return err
		}
		if data == nil {
			if data, err = load(); err != nil {
				failRest(active[i:], err)
				return nil
			}
		}
		results = append(results, r.runMethod(logger, m, data))
		if reload {
			data.Release()
			data = nil
			freeMemory()
		}
	}
	if data != nil {
		data.Release()
	}
	crossCheck(logger, results)
	return nil
}

func (r *Runner) runMethod(logger *slog.Logger, m membership.Method, data *dataset.Dataset) Result {
	logger = logger.With("method", m)
	res := Result{Method: m, Logins: len(data.Logins), Queries: len(data.Queries), Status: StatusOK}

	s, buildTime, err := membership.Build(m, data.Logins, r.opts)
	if err != nil {
		if s == nil || !membership.Partial(err) {
			logger.Error("build failed", "err", err)
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		logger.Warn("built with insertion failures", "err", err)
	}
	defer func() {
		if err := s.Release(); err != nil {
			logger.Warn("releasing structure", "err", err)
		}
		freeMemory()
	}()

	res.BuildTime = buildTime
	if ft, ok := s.(membership.FailureTracker); ok {
		res.InsertFailures = ft.InsertFailures()
	}
	if d, ok := s.(membership.Describer); ok {
		res.Notes = d.Notes()
	}

	counts, timing, err := RunQueries(s, data.Queries, r.cfg.RecordLatencies)
	if err != nil {
		logger.Error("queries failed", "err", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}
	Aggregate(&res, counts, timing)
	logger.Info("method done",
		"build", res.BuildTime, "query", res.QueryTime, "accuracy", res.Accuracy,
		"fp_rate", res.FPRate, "fn_rate", res.FNRate)
	return res
}

// crossCheck flags exact methods that disagree with the ground truth or with
// the hash set.
func crossCheck(logger *slog.Logger, results []Result) {
	var hash *Result
	for i := range results {
		if results[i].Method == membership.Hash && results[i].Status == StatusOK {
			hash = &results[i]
		}
	}
	for i := range results {
		res := &results[i]
		if res.Status != StatusOK || !res.Method.Exact() {
			continue
		}
		switch {
		case res.FP != 0 || res.FN != 0:
			res.Defect = "exact method reported false positives or negatives"
		case hash != nil && res != hash && res.Counts != hash.Counts:
			res.Defect = "counts differ from the hash set"
		default:
			continue
		}
		logger.Error("harness defect", "method", res.Method, "logins", res.Logins, "defect", res.Defect,
			"tp", res.TP, "tn", res.TN, "fp", res.FP, "fn", res.FN)
	}
}

func freeMemory() {
	runtime.GC()
	debug.FreeOSMemory()
}
