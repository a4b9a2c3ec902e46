// Package critic decides whether a model's predictions are trustworthy from
// the uncertainty of their class-probability distributions.
package critic

import (
	"errors"
	"fmt"

	"github.com/microsoft/acquire/internal/uncertainty"
)

// ErrInvalidThreshold is returned for a confidence threshold outside (0, 1].
var ErrInvalidThreshold = errors.New("critic threshold must be in (0, 1]")

// DefaultThreshold is the confidence required of a prediction. For a binary
// entropy critic it allows up to 0.2 bits of uncertainty.
const DefaultThreshold = 0.8

// Verdict is the critic's judgement of one sample.
type Verdict struct {
	Index       int     `json:"index" yaml:"index"`
	Score       float64 `json:"score" yaml:"score"`
	HighQuality bool    `json:"high_quality" yaml:"high_quality"`
}

// Critic marks samples as high quality when their uncertainty stays within a
// confidence threshold.
//
// With the entropy method a sample passes when its entropy is at most
// MaxEntropy(k)·(1 - threshold). With the margin method it passes when its
// margin is at least the threshold.
type Critic struct {
	scorer    *uncertainty.Scorer
	threshold float64
}

// New creates a Critic that scores with scorer and judges against threshold.
func New(scorer *uncertainty.Scorer, threshold float64) (*Critic, error) {
	if scorer == nil {
		return nil, errors.New("critic requires a scorer")
	}
	if !(threshold > 0 && threshold <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return &Critic{scorer: scorer, threshold: threshold}, nil
}

// Threshold returns the confidence threshold.
func (c *Critic) Threshold() float64 { return c.threshold }

// Limit returns the score boundary for samples with numClasses classes: the
// maximum passing entropy, or the minimum passing margin.
func (c *Critic) Limit(numClasses int) float64 {
	if c.scorer.Method() == uncertainty.MethodMargin {
		return c.threshold
	}
	return uncertainty.MaxEntropy(numClasses) * (1 - c.threshold)
}

// Evaluate scores probs and returns one verdict per sample.
func (c *Critic) Evaluate(probs []float64, numClasses int) ([]Verdict, error) {
	scores, err := c.scorer.Score(probs, numClasses)
	if err != nil {
		return nil, fmt.Errorf("critic scoring: %w", err)
	}
	return c.Judge(scores, numClasses), nil
}

// Judge turns precomputed scores into verdicts.
func (c *Critic) Judge(scores []float64, numClasses int) []Verdict {
	limit := c.Limit(numClasses)
	margin := c.scorer.Method() == uncertainty.MethodMargin

	verdicts := make([]Verdict, len(scores))
	for i, s := range scores {
		pass := s <= limit
		if margin {
			pass = s >= limit
		}
		verdicts[i] = Verdict{Index: i, Score: s, HighQuality: pass}
	}
	return verdicts
}

// Quality flattens verdicts to their pass flags.
func Quality(verdicts []Verdict) []bool {
	out := make([]bool, len(verdicts))
	for i, v := range verdicts {
		out[i] = v.HighQuality
	}
	return out
}

// LowQuality returns the indices of failing samples, in order.
func LowQuality(verdicts []Verdict) []int {
	var out []int
	for _, v := range verdicts {
		if !v.HighQuality {
			out = append(out, v.Index)
		}
	}
	return out
}
