package metrics

import (
	"errors"
	"fmt"
	"math"
)

// ErrLengthMismatch is returned when label and prediction slices differ in
// length.
var ErrLengthMismatch = errors.New("labels and predictions differ in length")

// ClassificationMetrics holds binary classification metrics for one class
// treated as positive.
type ClassificationMetrics struct {
	Positive  int     `json:"positive_label" yaml:"positive_label"`
	TP        int     `json:"true_positives" yaml:"true_positives"`
	FP        int     `json:"false_positives" yaml:"false_positives"`
	TN        int     `json:"true_negatives" yaml:"true_negatives"`
	FN        int     `json:"false_negatives" yaml:"false_negatives"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
}

// ComputeClassificationMetrics calculates accuracy, precision, recall and F1
// of yPred against yTrue, with positive as the positive label. Every other
// label counts as negative. Ratios with a zero denominator are 0.
// Returns nil when yTrue is empty.
func ComputeClassificationMetrics(yTrue, yPred []int, positive int) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d labels, %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, nil
	}

	var tp, fp, tn, fn int
	for i := range yTrue {
		actual := yTrue[i] == positive
		predicted := yPred[i] == positive
		switch {
		case actual && predicted:
			tp++
		case !actual && predicted:
			fp++
		case !actual && !predicted:
			tn++
		default:
			fn++
		}
	}

	precision := safeDivide(float64(tp), float64(tp+fp))
	recall := safeDivide(float64(tp), float64(tp+fn))

	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return &ClassificationMetrics{
		Positive:  positive,
		TP:        tp,
		FP:        fp,
		TN:        tn,
		FN:        fn,
		Precision: roundTo4(precision),
		Recall:    roundTo4(recall),
		F1:        roundTo4(f1),
		Accuracy:  roundTo4(safeDivide(float64(tp+tn), float64(len(yTrue)))),
	}, nil
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
