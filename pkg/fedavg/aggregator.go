// Package fedavg implements Federated Averaging: the sample-count
// weighted elementwise mean of per-device weight update vectors.
package fedavg

import (
	"fmt"

	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
)

// Aggregate folds a batch of updates into one weight set. The batch is
// all-or-nothing: any key or vector-length mismatch between updates
// aborts the whole round and the caller keeps its queue untouched.
func Aggregate(updates []ModelUpdate) (Weights, Summary, error) {
	if len(updates) == 0 {
		return nil, Summary{}, ErrNoUpdates
	}

	var totalSamples int
	for _, u := range updates {
		totalSamples += u.NumSamples
	}
	if totalSamples == 0 {
		return nil, Summary{}, ErrZeroSamples
	}

	reference := updates[0].WeightUpdates
	for i, u := range updates[1:] {
		if !reference.CompatibleWith(u.WeightUpdates) {
			return nil, Summary{}, fmt.Errorf("update %d from %s: %w", i+1, u.DeviceID, ErrShapeMismatch)
		}
	}

	aggregated := make(Weights, len(reference))
	for key, ref := range reference {
		sum := make([]float64, len(ref))
		for _, u := range updates {
			weight := float64(u.NumSamples) / float64(totalSamples)
			for i, v := range u.WeightUpdates[key] {
				sum[i] += v * weight
			}
		}
		aggregated[key] = sum
	}

	var lossSum, accSum float64
	for _, u := range updates {
		lossSum += u.TrainingLoss
		accSum += u.ValidationAccuracy
	}

	return aggregated, Summary{
		TotalSamples:    totalSamples,
		NumUpdates:      len(updates),
		AverageLoss:     lossSum / float64(len(updates)),
		AverageAccuracy: accSum / float64(len(updates)),
	}, nil
}

// Validate checks that an update carries every required field. Shape
// compatibility against the current global model is the coordinator's
// concern since it owns that state.
func Validate(u ModelUpdate) error {
	if u.DeviceID == "" {
		return fmt.Errorf("device_id: %w", pkgerrors.ErrMissingField)
	}
	if len(u.WeightUpdates) == 0 {
		return fmt.Errorf("weight_updates: %w", pkgerrors.ErrMissingField)
	}
	if u.NumSamples <= 0 {
		return fmt.Errorf("num_samples must be positive: %w", pkgerrors.ErrMissingField)
	}
	if u.Timestamp == "" {
		return fmt.Errorf("timestamp: %w", pkgerrors.ErrMissingField)
	}

	return nil
}
