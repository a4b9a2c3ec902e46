package uncertainty

import (
	"cmp"
	"slices"
)

// MarginUncertainty returns, for every complete group of numClasses values
// in probs, the gap between the largest and second-largest value. A smaller
// margin means the top two classes are closer to a tie. A group holding a
// single value scores as that value. A trailing partial group is dropped.
//
// An empty probs is not an error: it holds no groups and yields an empty,
// non-nil slice.
func MarginUncertainty(probs []float64, numClasses int) ([]float64, error) {
	return MarginUncertaintyWithOptions(probs, numClasses, Options{})
}

// MarginUncertaintyWithOptions is like MarginUncertainty but applies opts
// to the input checks.
func MarginUncertaintyWithOptions(probs []float64, numClasses int, opts Options) ([]float64, error) {
	return apply(probs, numClasses, opts, margin)
}

func margin(group []float64) float64 {
	// the caller's slice is read-only
	sorted := slices.Clone(group)
	slices.SortFunc(sorted, func(a, b float64) int {
		return cmp.Compare(b, a)
	})

	if len(sorted) < 2 {
		return sorted[0]
	}
	return sorted[0] - sorted[1]
}
