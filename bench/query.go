package bench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/dataset"
	"github.com/kwertop/membench/membership"
)

// ErrQueryExecution marks a structure that failed while answering queries.
var ErrQueryExecution = errors.New("query execution error")

const (
	minLatency = time.Nanosecond
	maxLatency = 10 * time.Second
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 3)
}

// Timing is the time spent answering a batch of queries.
type Timing struct {
	Total time.Duration
	// Latencies holds per-query latencies in nanoseconds when they were
	// recorded.
	Latencies *hdrhistogram.Histogram
}

// Classify updates c with one query outcome.
func (c *Counts) Classify(present, says, failedInsert bool) {
	switch {
	case present && says:
		c.TP++
	case present:
		c.FN++
		if failedInsert {
			c.ExpectedFN++
		}
	case says:
		c.FP++
	default:
		c.TN++
	}
}

// RunQueries asks s about every query in order and classifies the answers.
// An error returned by s, or a panic, stops the run with an error marked
// ErrQueryExecution. With recordLatencies every query is timed on its own.
func RunQueries(s membership.Structure, queries []dataset.Query, recordLatencies bool) (counts Counts, timing Timing, err error) {
	var current int
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(errors.Newf("%s panicked on query %d: %v", s.Method().DisplayName(), current, r), ErrQueryExecution)
		}
	}()

	tracker, _ := s.(membership.FailureTracker)
	failed := func(q *dataset.Query) bool {
		return tracker != nil && q.Present && tracker.Failed(q.Username)
	}

	if recordLatencies {
		timing.Latencies = newHistogram()
	}
	start := time.Now()
	for current = range queries {
		q := &queries[current]
		var says bool
		if timing.Latencies != nil {
			t0 := time.Now()
			says, err = s.Contains(q.Username)
			d := min(max(time.Since(t0), minLatency), maxLatency)
			_ = timing.Latencies.RecordValue(d.Nanoseconds())
		} else {
			says, err = s.Contains(q.Username)
		}
		if err != nil {
			return counts, timing, errors.Mark(
				errors.Wrapf(err, "%s query %d (%q)", s.Method().DisplayName(), current, q.Username),
				ErrQueryExecution)
		}
		counts.Classify(q.Present, says, !says && failed(q))
	}
	timing.Total = time.Since(start)
	return counts, timing, nil
}
