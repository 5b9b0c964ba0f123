package allocation

import (
	"gonum.org/v1/gonum/stat"
)

// Concentration summarizes how evenly portfolio value spreads across the
// breakdown rows. Shares are fractions of total over the non-zero rows
// (groups plus the unassigned bucket).
type Concentration struct {
	Rows           int     `json:"rows"`
	HHI            float64 `json:"hhi"`
	EffectiveCount float64 `json:"effective_count"`
	LargestShare   float64 `json:"largest_share"`
	Entropy        float64 `json:"entropy"`
	MeanValue      float64 `json:"mean_value"`
	StdDevValue    float64 `json:"stddev_value"`
}

// Concentrate computes concentration stats for a breakdown. A zero-value
// portfolio yields the zero report.
func Concentrate(b Breakdown) Concentration {
	var values []float64
	for _, row := range b.Rows {
		if row.Value > 0 {
			values = append(values, row.Value)
		}
	}
	if len(values) == 0 || b.Total <= 0 {
		return Concentration{}
	}

	total := 0.0
	for _, v := range values {
		total += v
	}

	shares := make([]float64, len(values))
	hhi := 0.0
	largest := 0.0
	for i, v := range values {
		s := v / total
		shares[i] = s
		hhi += s * s
		if s > largest {
			largest = s
		}
	}

	stddev := 0.0
	if len(values) > 1 {
		stddev = stat.StdDev(values, nil)
	}

	return Concentration{
		Rows:           len(values),
		HHI:            round(hhi, 4),
		EffectiveCount: round(1/hhi, 2),
		LargestShare:   round(largest, 4),
		Entropy:        round(stat.Entropy(shares), 4),
		MeanValue:      round(stat.Mean(values, nil), 2),
		StdDevValue:    round(stddev, 2),
	}
}
