package selection

import (
	"fmt"
	"math"
	"slices"

	"github.com/microsoft/acquire/internal/uncertainty"
)

// TopK keeps the k most uncertain samples, most uncertain first. Equal
// scores keep their input order. NaN scores are never picked.
type TopK struct {
	name string
	k    int
}

// NewTopK creates a TopK strategy. k must be positive.
func NewTopK(name string, k int) (*TopK, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top_k strategy '%s': k must be positive, got %d", name, k)
	}
	return &TopK{name: name, k: k}, nil
}

func (s *TopK) Name() string { return s.name }
func (s *TopK) Type() Type   { return TypeTopK }

// K returns the number of samples kept.
func (s *TopK) K() int { return s.k }

func (s *TopK) Select(scores []float64, method uncertainty.Method) (*Selection, error) {
	picks := make([]Pick, 0, len(scores))
	for i, v := range scores {
		if math.IsNaN(v) {
			continue
		}
		picks = append(picks, Pick{Index: i, Score: v})
	}

	slices.SortStableFunc(picks, func(a, b Pick) int {
		switch {
		case method.MoreUncertain(a.Score, b.Score):
			return -1
		case method.MoreUncertain(b.Score, a.Score):
			return 1
		default:
			return 0
		}
	})

	if len(picks) > s.k {
		picks = picks[:s.k]
	}

	return &Selection{
		Strategy: s.name,
		Method:   method,
		Total:    len(scores),
		Picks:    picks,
	}, nil
}
