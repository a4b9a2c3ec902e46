package metrics

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DefaultResamples is the number of bootstrap resamples.
const DefaultResamples = 10000

// BootstrapInterval is a percentile bootstrap confidence interval for the
// mean of a set of scores.
type BootstrapInterval struct {
	Lower     float64 `json:"lower" yaml:"lower"`
	Upper     float64 `json:"upper" yaml:"upper"`
	Mean      float64 `json:"mean" yaml:"mean"`
	Level     float64 `json:"level" yaml:"level"`
	Resamples int     `json:"resamples" yaml:"resamples"`
}

// Bootstrap resamples scores with replacement and returns the percentile
// interval of the resampled means at the given level, e.g. 0.95. seed makes
// the result reproducible. Fewer than 2 scores yield a degenerate interval
// at the mean with no resamples.
func Bootstrap(scores []float64, level float64, resamples int, seed uint64) BootstrapInterval {
	m := Mean(scores)
	n := len(scores)
	if n < 2 {
		return BootstrapInterval{Lower: m, Upper: m, Mean: m, Level: level}
	}
	if resamples <= 0 {
		resamples = DefaultResamples
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	means := make([]float64, resamples)
	sample := make([]float64, n)
	for i := range means {
		for j := range sample {
			sample[j] = scores[rng.IntN(n)]
		}
		means[i] = stat.Mean(sample, nil)
	}
	slices.Sort(means)

	alpha := 1 - level
	return BootstrapInterval{
		Lower:     stat.Quantile(alpha/2, stat.Empirical, means, nil),
		Upper:     stat.Quantile(1-alpha/2, stat.Empirical, means, nil),
		Mean:      m,
		Level:     level,
		Resamples: resamples,
	}
}
