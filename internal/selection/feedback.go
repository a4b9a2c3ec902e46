package selection

import "fmt"

// DefaultRetrainBatchSize is how many feedback samples trigger a retrain.
const DefaultRetrainBatchSize = 50

// CollectFeedback returns the indices of samples that need feedback: those
// the critic judged low quality, or whose prediction differs from the label.
// labels may be nil when ground truth is unknown, in which case only
// quality is consulted.
func CollectFeedback(quality []bool, predictions, labels []int) ([]int, error) {
	if labels != nil && len(predictions) != len(labels) {
		return nil, fmt.Errorf("feedback: %d predictions, %d labels", len(predictions), len(labels))
	}
	if labels != nil && len(quality) != len(labels) {
		return nil, fmt.Errorf("feedback: %d quality flags, %d labels", len(quality), len(labels))
	}

	var out []int
	for i, ok := range quality {
		if !ok || (labels != nil && predictions[i] != labels[i]) {
			out = append(out, i)
		}
	}
	return out, nil
}

// RetrainDue reports whether collected feedback samples fill a retrain
// batch. A non-positive batchSize uses DefaultRetrainBatchSize.
func RetrainDue(collected, batchSize int) bool {
	if batchSize <= 0 {
		batchSize = DefaultRetrainBatchSize
	}
	return collected >= batchSize
}
