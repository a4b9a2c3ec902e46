package uncertainty

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Scorer binds a method to a set of input options.
type Scorer struct {
	method Method
	opts   Options
	kernel func([]float64) float64
}

// New creates a Scorer for method.
func New(method Method, opts Options) (*Scorer, error) {
	k := method.kernel()
	if k == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownMethod, method)
	}

	if _, err := ParsePartialPolicy(string(opts.Partial)); err != nil {
		return nil, err
	}

	return &Scorer{method: method, opts: opts, kernel: k}, nil
}

// Method returns the kernel this Scorer applies.
func (s *Scorer) Method() Method { return s.method }

// Options returns the input options this Scorer applies.
func (s *Scorer) Options() Options { return s.opts }

// Score returns one score per complete group of numClasses values.
func (s *Scorer) Score(probs []float64, numClasses int) ([]float64, error) {
	return apply(probs, numClasses, s.opts, s.kernel)
}

// ScoreMatrix scores every row of m as one sample, with one column per
// class.
func (s *Scorer) ScoreMatrix(m mat.Matrix) ([]float64, error) {
	rows, cols := m.Dims()
	if cols == 0 {
		return nil, fmt.Errorf("%w: matrix has no columns", ErrInvalidGroupSize)
	}

	flat := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		mat.Row(flat[i*cols:(i+1)*cols], i, m)
	}
	return s.Score(flat, cols)
}

// ScoreParallel returns the same scores as Score, splitting the groups into
// contiguous ranges scored by up to workers goroutines. workers <= 1 scores
// inline. If ctx is cancelled before every range finishes, ScoreParallel
// returns ctx.Err() and no scores.
func (s *Scorer) ScoreParallel(ctx context.Context, probs []float64, numClasses int, workers int) ([]float64, error) {
	n, err := numGroups(probs, numClasses, s.opts)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	if workers <= 1 || n <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		applyRange(probs, numClasses, scores, 0, n, s.kernel)
		return scores, nil
	}

	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	slog.Debug("Scoring in parallel", "method", s.method, "groups", n, "workers", workers, "chunk", chunk)

	eg, egCtx := errgroup.WithContext(ctx)
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// each worker owns scores[from:to]
			applyRange(probs, numClasses, scores, from, to, s.kernel)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
