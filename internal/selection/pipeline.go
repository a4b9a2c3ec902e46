package selection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/microsoft/acquire/internal/uncertainty"
)

//go:generate go tool mockgen -package selection -destination mock_scorer_test.go -mock_names Scorer=MockScorer . Scorer

// Scorer produces one uncertainty score per sample. [*uncertainty.Scorer]
// satisfies it.
type Scorer interface {
	Method() uncertainty.Method
	Score(probs []float64, numClasses int) ([]float64, error)
}

// Pipeline scores a probability buffer and selects samples from the scores.
type Pipeline struct {
	scorer   Scorer
	strategy Strategy
}

func NewPipeline(scorer Scorer, strategy Strategy) (*Pipeline, error) {
	if scorer == nil || strategy == nil {
		return nil, errors.New("pipeline requires a scorer and a strategy")
	}
	return &Pipeline{scorer: scorer, strategy: strategy}, nil
}

// Run scores probs, grouped by numClasses, and applies the strategy.
func (p *Pipeline) Run(probs []float64, numClasses int) (*Selection, error) {
	method := p.scorer.Method()

	scores, err := p.scorer.Score(probs, numClasses)
	if err != nil {
		return nil, fmt.Errorf("scoring with %s: %w", method, err)
	}

	sel, err := p.strategy.Select(scores, method)
	if err != nil {
		return nil, fmt.Errorf("selecting with %s: %w", p.strategy.Name(), err)
	}

	slog.Debug("Selection complete",
		"method", method,
		"strategy", p.strategy.Name(),
		"samples", len(scores),
		"picked", len(sel.Picks))

	return sel, nil
}
