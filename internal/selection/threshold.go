package selection

import (
	"math"

	"github.com/microsoft/acquire/internal/uncertainty"
)

// Threshold keeps every sample whose score is at least as uncertain as the
// cutoff: entropy >= cutoff, or margin <= cutoff. Picks stay in input order.
type Threshold struct {
	name   string
	cutoff float64
}

func NewThreshold(name string, cutoff float64) *Threshold {
	return &Threshold{name: name, cutoff: cutoff}
}

func (s *Threshold) Name() string { return s.name }
func (s *Threshold) Type() Type   { return TypeThreshold }

// Cutoff returns the score boundary.
func (s *Threshold) Cutoff() float64 { return s.cutoff }

func (s *Threshold) Select(scores []float64, method uncertainty.Method) (*Selection, error) {
	var picks []Pick
	for i, v := range scores {
		if math.IsNaN(v) {
			continue
		}
		if method.AtLeastAsUncertain(v, s.cutoff) {
			picks = append(picks, Pick{Index: i, Score: v})
		}
	}

	return &Selection{
		Strategy: s.name,
		Method:   method,
		Total:    len(scores),
		Picks:    picks,
	}, nil
}
