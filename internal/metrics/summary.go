// Package metrics evaluates predictions and summarizes uncertainty scores.
package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a score vector.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	CILow  float64 `json:"ci95_low" yaml:"ci95_low"`
	CIHigh float64 `json:"ci95_high" yaml:"ci95_high"`
}

// Summarize computes count, mean, population standard deviation, range and
// a 95% confidence interval for the mean of scores. An empty input yields a
// zero Summary.
func Summarize(scores []float64) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	lo, hi := ConfidenceInterval95(scores)
	return Summary{
		Count:  len(scores),
		Mean:   Mean(scores),
		StdDev: StdDev(scores),
		Min:    floats.Min(scores),
		Max:    floats.Max(scores),
		CILow:  lo,
		CIHigh: hi,
	}
}

// Mean computes the arithmetic mean. Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev computes the population standard deviation. Returns 0 for fewer
// than 2 values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.PopStdDev(values, nil)
}

// ConfidenceInterval95 returns the 95% confidence interval (low, high) of
// the mean using the normal approximation (z=1.96) with the sample standard
// deviation. Returns (mean, mean) when fewer than 2 values are available.
func ConfidenceInterval95(values []float64) (float64, float64) {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return m, m
	}
	margin := 1.96 * stat.StdErr(stat.StdDev(values, nil), float64(n))
	return m - margin, m + margin
}
