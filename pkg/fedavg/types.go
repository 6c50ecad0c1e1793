package fedavg

// Weights maps a layer name to its flattened parameter vector.
type Weights map[string][]float64

// Clone returns a deep copy so that callers can hand out snapshots
// without exposing the aggregator's internal state.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	c := make(Weights, len(w))
	for k, v := range w {
		vec := make([]float64, len(v))
		copy(vec, v)
		c[k] = vec
	}

	return c
}

// CompatibleWith reports whether both weight sets describe the same
// architecture: identical key sets and identical vector lengths.
func (w Weights) CompatibleWith(other Weights) bool {
	if len(w) != len(other) {
		return false
	}
	for k, v := range w {
		o, ok := other[k]
		if !ok || len(o) != len(v) {
			return false
		}
	}

	return true
}

// ModelUpdate is a single client submission. It is consumed by one
// aggregation round and never persisted on its own.
type ModelUpdate struct {
	DeviceID           string  `json:"device_id"`
	Version            int     `json:"version"`
	WeightUpdates      Weights `json:"weight_updates"`
	NumSamples         int     `json:"num_samples"`
	TrainingLoss       float64 `json:"training_loss"`
	ValidationAccuracy float64 `json:"validation_accuracy"`
	Timestamp          string  `json:"timestamp"`
}

// GlobalModel is one durable aggregation artifact. Version increases by
// exactly 1 per successful aggregation. Large models may carry an
// ArtifactPath pointing at an external binary instead of inline weights.
type GlobalModel struct {
	Version              int     `json:"version"`
	Weights              Weights `json:"weights"`
	ArtifactPath         string  `json:"artifact_path,omitempty"`
	ParticipatingDevices int     `json:"participating_devices"`
	AggregationTimestamp string  `json:"aggregation_timestamp"`
	AverageLoss          float64 `json:"average_loss"`
	AverageAccuracy      float64 `json:"average_accuracy"`
}

// Summary carries the metric means of one aggregation round. Loss and
// accuracy are plain arithmetic means across updates, deliberately not
// sample-weighted like the weight averaging itself.
type Summary struct {
	TotalSamples    int
	NumUpdates      int
	AverageLoss     float64
	AverageAccuracy float64
}
