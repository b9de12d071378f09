package domain

import "github.com/shopspring/decimal"

// Stats is the summary of a reading sequence. Max and Min are the raw extrema;
// use RoundedMax/RoundedMin for the persisted one-decimal form.
type Stats struct {
	Count          int     `json:"count"`
	Sum            float64 `json:"sum"`
	Mean           float64 `json:"mean"`
	Max            float64 `json:"max"`
	Min            float64 `json:"min"`
	Accepted       int     `json:"accepted"`
	Rejected       int     `json:"rejected"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// ComputeStats never fails: an empty sequence yields the zero Stats.
func ComputeStats(readings []float64) Stats {
	stats := Stats{Count: len(readings)}
	if len(readings) == 0 {
		return stats
	}

	sum := decimal.Zero
	stats.Max = readings[0]
	stats.Min = readings[0]
	for _, v := range readings {
		sum = sum.Add(decimal.NewFromFloat(v))
		if v > stats.Max {
			stats.Max = v
		}
		if v < stats.Min {
			stats.Min = v
		}
		if IsAccepted(v) {
			stats.Accepted++
		}
	}

	count := decimal.NewFromInt(int64(stats.Count))
	stats.Rejected = stats.Count - stats.Accepted
	stats.Sum = sum.InexactFloat64()
	stats.Mean = sum.DivRound(count, 2).InexactFloat64()
	stats.AcceptanceRate = decimal.NewFromInt(int64(stats.Accepted)*100).DivRound(count, 1).InexactFloat64()
	return stats
}

func (s Stats) RoundedMax() float64 {
	return roundTo(s.Max, 1)
}

func (s Stats) RoundedMin() float64 {
	return roundTo(s.Min, 1)
}
