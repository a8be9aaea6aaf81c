package bench

import "time"

// Rates are the error rates of one run.
type Rates struct {
	Accuracy float64
	FPRate   float64
	FNRate   float64
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ComputeRates derives accuracy, false positive and false negative rates
// from c. A rate whose denominator is zero is 0.
func ComputeRates(c Counts) Rates {
	return Rates{
		Accuracy: ratio(c.TP+c.TN, c.Total()),
		FPRate:   ratio(c.FP, c.FP+c.TN),
		FNRate:   ratio(c.FN, c.FN+c.TP),
	}
}

// Aggregate fills the counts, rates and timing statistics of r.
func Aggregate(r *Result, c Counts, t Timing) {
	r.Counts = c
	rates := ComputeRates(c)
	r.Accuracy = rates.Accuracy
	r.FPRate = rates.FPRate
	r.FNRate = rates.FNRate

	r.QueryTime = t.Total
	if n := c.Total(); n > 0 {
		r.AvgPerQuery = t.Total / time.Duration(n)
		if t.Total > 0 {
			r.QueriesPerSec = float64(n) / t.Total.Seconds()
		}
	}
	if h := t.Latencies; h != nil && h.TotalCount() > 0 {
		r.Latency = &Latency{
			P50: time.Duration(h.ValueAtQuantile(50)),
			P99: time.Duration(h.ValueAtQuantile(99)),
			Max: time.Duration(h.Max()),
		}
	}
}
