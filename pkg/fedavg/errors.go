package fedavg

import "errors"

var (
	ErrNoUpdates     = errors.New("no updates provided for aggregation")
	ErrZeroSamples   = errors.New("total sample count is zero")
	ErrShapeMismatch = errors.New("weight shape mismatch across updates")
)
