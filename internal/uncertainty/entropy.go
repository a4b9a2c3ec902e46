package uncertainty

import "math"

// ShannonEntropy returns the Shannon entropy, in bits, of every complete
// group of numClasses values in probs:
//
//	H = -Σ p·log2(p), over p > 0
//
// Values at or below zero contribute nothing. The groups are not
// normalized, so the result is a true entropy only when each group sums to
// one. A trailing partial group is dropped. An empty probs yields an empty,
// non-nil slice.
func ShannonEntropy(probs []float64, numClasses int) ([]float64, error) {
	return ShannonEntropyWithOptions(probs, numClasses, Options{})
}

// ShannonEntropyWithOptions is like ShannonEntropy but applies opts to the
// input checks.
func ShannonEntropyWithOptions(probs []float64, numClasses int, opts Options) ([]float64, error) {
	return apply(probs, numClasses, opts, entropy)
}

// MaxEntropy is the entropy of a uniform distribution over numClasses
// classes, log2(numClasses). It is 0 for numClasses <= 1.
func MaxEntropy(numClasses int) float64 {
	if numClasses <= 1 {
		return 0
	}
	return math.Log2(float64(numClasses))
}

func entropy(group []float64) float64 {
	h := 0.0
	for _, p := range group {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
