package bench

import (
	"time"

	"github.com/kwertop/membench/membership"
)

// Status is the outcome of one (method, size) cell.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Counts classify the queries of one run against the ground truth.
type Counts struct {
	TP int
	TN int
	FP int
	FN int
	// ExpectedFN counts the false negatives on logins the structure reported
	// as failed inserts. They are included in FN.
	ExpectedFN int
}

// Total is the number of classified queries.
func (c Counts) Total() int { return c.TP + c.TN + c.FP + c.FN }

// Latency summarizes per-query latencies.
type Latency struct {
	P50 time.Duration
	P99 time.Duration
	Max time.Duration
}

// Result is the record of one method at one dataset size.
type Result struct {
	Method  membership.Method
	Logins  int
	Queries int
	Status  Status
	// Reason explains a skipped or failed result.
	Reason string

	BuildTime     time.Duration
	QueryTime     time.Duration
	AvgPerQuery   time.Duration
	QueriesPerSec float64
	// Latency is set when per-query latencies were recorded.
	Latency *Latency

	Counts
	Accuracy float64
	FPRate   float64
	FNRate   float64

	InsertFailures int
	Notes          string
	// Defect is set when an exact method disagreed with the ground truth.
	Defect string
}

// ResultLog is the append-only list of results of a run.
type ResultLog struct {
	results []Result
}

// Append records r. Results are never modified once appended.
func (l *ResultLog) Append(r Result) {
	if r.Latency != nil {
		lat := *r.Latency
		r.Latency = &lat
	}
	l.results = append(l.results, r)
}

// Len returns the number of results.
func (l *ResultLog) Len() int { return len(l.results) }

// Results returns a copy of every result in append order.
func (l *ResultLog) Results() []Result {
	out := make([]Result, len(l.results))
	for i, r := range l.results {
		out[i] = copyResult(r)
	}
	return out
}

// ForSize returns a copy of the results of the size with logins logins.
func (l *ResultLog) ForSize(logins int) []Result {
	var out []Result
	for _, r := range l.results {
		if r.Logins == logins {
			out = append(out, copyResult(r))
		}
	}
	return out
}

// Get returns the result of method at size logins.
func (l *ResultLog) Get(method membership.Method, logins int) (Result, bool) {
	for _, r := range l.results {
		if r.Method == method && r.Logins == logins {
			return copyResult(r), true
		}
	}
	return Result{}, false
}

// Sizes returns the distinct login counts in append order.
func (l *ResultLog) Sizes() []int {
	var sizes []int
	seen := make(map[int]struct{})
	for _, r := range l.results {
		if _, ok := seen[r.Logins]; !ok {
			seen[r.Logins] = struct{}{}
			sizes = append(sizes, r.Logins)
		}
	}
	return sizes
}

func copyResult(r Result) Result {
	if r.Latency != nil {
		lat := *r.Latency
		r.Latency = &lat
	}
	return r
}
