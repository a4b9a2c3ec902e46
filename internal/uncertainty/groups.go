// Package uncertainty computes per-sample uncertainty scores from
// class-probability distributions.
//
// Probabilities arrive as one flat buffer: the concatenation of every
// sample's class-probability vector. The group size (the number of classes)
// says how many consecutive values belong to one sample. Each kernel
// returns one score per complete group, in input order.
package uncertainty

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGroupSize is returned when the group size is zero or negative.
	ErrInvalidGroupSize = errors.New("group size must be positive")

	// ErrPartialGroup is returned under [RejectPartial] when the buffer length
	// is not a multiple of the group size.
	ErrPartialGroup = errors.New("buffer ends with a partial group")

	// ErrProbabilityOutOfRange is returned when range validation is enabled
	// and a value falls outside [0, 1] (NaN included).
	ErrProbabilityOutOfRange = errors.New("probability out of range [0, 1]")
)

// PartialPolicy decides what happens to a trailing group shorter than the
// group size.
type PartialPolicy string

const (
	// DropPartial ignores the trailing partial group.
	DropPartial PartialPolicy = "drop"

	// RejectPartial fails the whole call with [ErrPartialGroup].
	RejectPartial PartialPolicy = "reject"
)

// ParsePartialPolicy maps a config string onto a PartialPolicy. The empty
// string selects [DropPartial].
func ParsePartialPolicy(s string) (PartialPolicy, error) {
	switch PartialPolicy(s) {
	case "", DropPartial:
		return DropPartial, nil
	case RejectPartial:
		return RejectPartial, nil
	default:
		return "", fmt.Errorf("'%s' is not a valid partial group policy", s)
	}
}

// Options controls input checking shared by both kernels. The zero value
// drops a trailing partial group and trusts the caller's probabilities.
type Options struct {
	Partial PartialPolicy `json:"partial_groups" yaml:"partial_groups"`

	// ValidateRange rejects values outside [0, 1] before scoring. When false,
	// such values flow through the formulas unchanged.
	ValidateRange bool `json:"validate_range" yaml:"validate_range"`
}

// numGroups checks probs against numClasses and returns how many complete
// groups it holds.
func numGroups(probs []float64, numClasses int, opts Options) (int, error) {
	if numClasses <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidGroupSize, numClasses)
	}

	n := len(probs) / numClasses
	if rem := len(probs) % numClasses; rem != 0 && opts.Partial == RejectPartial {
		return 0, fmt.Errorf("%w: %d values with group size %d leaves %d trailing", ErrPartialGroup, len(probs), numClasses, rem)
	}

	if opts.ValidateRange {
		// only the values that will be scored
		for i, p := range probs[:n*numClasses] {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return 0, fmt.Errorf("%w: value %v at index %d (sample %d)", ErrProbabilityOutOfRange, p, i, i/numClasses)
			}
		}
	}

	return n, nil
}

// apply runs kernel over every complete group of probs.
func apply(probs []float64, numClasses int, opts Options, kernel func([]float64) float64) ([]float64, error) {
	n, err := numGroups(probs, numClasses, opts)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	applyRange(probs, numClasses, scores, 0, n, kernel)
	return scores, nil
}

// applyRange scores groups [from, to) into scores[from:to].
func applyRange(probs []float64, numClasses int, scores []float64, from, to int, kernel func([]float64) float64) {
	for g := from; g < to; g++ {
		start := g * numClasses
		scores[g] = kernel(probs[start : start+numClasses])
	}
}
