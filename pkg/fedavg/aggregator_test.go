package fedavg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		updates     []ModelUpdate
		expected    Weights
		expectedErr error
	}{
		{
			name: "sample weighted average",
			updates: []ModelUpdate{
				{DeviceID: "a", NumSamples: 10, WeightUpdates: Weights{"layer": {1.0, 2.0}}},
				{DeviceID: "b", NumSamples: 30, WeightUpdates: Weights{"layer": {3.0, 4.0}}},
			},
			expected: Weights{"layer": {2.5, 3.5}},
		},
		{
			name: "single update is identity",
			updates: []ModelUpdate{
				{DeviceID: "a", NumSamples: 5, WeightUpdates: Weights{"conv": {0.5, -0.5, 1.5}}},
			},
			expected: Weights{"conv": {0.5, -0.5, 1.5}},
		},
		{
			name:        "empty batch",
			updates:     nil,
			expectedErr: ErrNoUpdates,
		},
		{
			name: "zero total samples",
			updates: []ModelUpdate{
				{DeviceID: "a", NumSamples: 0, WeightUpdates: Weights{"layer": {1.0}}},
				{DeviceID: "b", NumSamples: 0, WeightUpdates: Weights{"layer": {2.0}}},
			},
			expectedErr: ErrZeroSamples,
		},
		{
			name: "key mismatch aborts batch",
			updates: []ModelUpdate{
				{DeviceID: "a", NumSamples: 10, WeightUpdates: Weights{"layer": {1.0}}},
				{DeviceID: "b", NumSamples: 10, WeightUpdates: Weights{"other": {2.0}}},
			},
			expectedErr: ErrShapeMismatch,
		},
		{
			name: "length mismatch aborts batch",
			updates: []ModelUpdate{
				{DeviceID: "a", NumSamples: 10, WeightUpdates: Weights{"layer": {1.0, 2.0}}},
				{DeviceID: "b", NumSamples: 10, WeightUpdates: Weights{"layer": {1.0}}},
			},
			expectedErr: ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights, _, err := Aggregate(tt.updates)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)

				return
			}
			require.NoError(t, err)
			require.Len(t, weights, len(tt.expected))
			for key, want := range tt.expected {
				require.Contains(t, weights, key)
				for i, v := range want {
					assert.InDelta(t, v, weights[key][i], 1e-9, "key %s index %d", key, i)
				}
			}
		})
	}
}

func TestAggregateSummaryIsUnweightedMean(t *testing.T) {
	updates := []ModelUpdate{
		{DeviceID: "a", NumSamples: 1, TrainingLoss: 0.2, ValidationAccuracy: 0.9, WeightUpdates: Weights{"l": {0.0}}},
		{DeviceID: "b", NumSamples: 99, TrainingLoss: 0.4, ValidationAccuracy: 0.7, WeightUpdates: Weights{"l": {0.0}}},
	}

	_, summary, err := Aggregate(updates)
	require.NoError(t, err)

	// Metric means ignore sample counts even though the weight
	// averaging does not.
	assert.InDelta(t, 0.3, summary.AverageLoss, 1e-9)
	assert.InDelta(t, 0.8, summary.AverageAccuracy, 1e-9)
	assert.Equal(t, 100, summary.TotalSamples)
	assert.Equal(t, 2, summary.NumUpdates)
}

func TestValidate(t *testing.T) {
	valid := ModelUpdate{
		DeviceID:      "device-1",
		NumSamples:    10,
		WeightUpdates: Weights{"layer": {1.0}},
		Timestamp:     "2024-01-01T00:00:00Z",
	}

	tests := []struct {
		name    string
		mutate  func(*ModelUpdate)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ModelUpdate) {}},
		{name: "missing device id", mutate: func(u *ModelUpdate) { u.DeviceID = "" }, wantErr: true},
		{name: "missing weights", mutate: func(u *ModelUpdate) { u.WeightUpdates = nil }, wantErr: true},
		{name: "non positive samples", mutate: func(u *ModelUpdate) { u.NumSamples = 0 }, wantErr: true},
		{name: "missing timestamp", mutate: func(u *ModelUpdate) { u.Timestamp = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			err := Validate(u)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeightsCompatibleWith(t *testing.T) {
	base := Weights{"a": {1, 2}, "b": {3}}

	assert.True(t, base.CompatibleWith(Weights{"a": {9, 9}, "b": {9}}))
	assert.False(t, base.CompatibleWith(Weights{"a": {9, 9}}))
	assert.False(t, base.CompatibleWith(Weights{"a": {9, 9}, "c": {9}}))
	assert.False(t, base.CompatibleWith(Weights{"a": {9}, "b": {9}}))
}

func TestWeightsClone(t *testing.T) {
	orig := Weights{"a": {1.0, 2.0}}
	c := orig.Clone()
	c["a"][0] = 42.0

	assert.Equal(t, 1.0, orig["a"][0])
}
