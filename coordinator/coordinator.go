// Package coordinator owns the connectivity-gated federated averaging
// loop and the detection serving path.
package coordinator

import (
	"context"

	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/fedavg"
	"github.com/urosmart/uroedge/pkg/storage"
)

// Submission outcomes returned by AddUpdate and TriggerAggregation.
const (
	StatusOffline    = "offline"
	StatusPending    = "pending"
	StatusAggregated = "aggregated"
	StatusIdle       = "idle"
)

// UpdateResult reports how a submitted model update was handled.
type UpdateResult struct {
	Status       string `json:"status"`
	PendingCount int    `json:"pending_count,omitempty"`
	Threshold    int    `json:"threshold,omitempty"`
	NewVersion   int    `json:"new_version,omitempty"`
}

// ModelInfo wraps the current global model together with its
// availability. Available is false while no aggregation has happened
// and no bootstrap artifact was supplied.
type ModelInfo struct {
	Available bool               `json:"available"`
	Online    bool               `json:"online"`
	Model     fedavg.GlobalModel `json:"model,omitempty"`
}

// Status is the coordinator's observable state.
type Status struct {
	Online          bool   `json:"online"`
	Version         int    `json:"version"`
	PendingUpdates  int    `json:"pending_updates"`
	Threshold       int    `json:"threshold"`
	HasGlobalModel  bool   `json:"has_global_model"`
	LastAggregation string `json:"last_aggregation,omitempty"`
}

// VersionCheck answers whether a newer global model exists for a
// client at the given version. Gated by connectivity: an offline
// coordinator never advertises updates.
type VersionCheck struct {
	UpdateAvailable bool `json:"update_available"`
	LatestVersion   int  `json:"latest_version"`
	ClientVersion   int  `json:"client_version"`
	Online          bool `json:"online"`
}

// HistoryPage lists persisted aggregation rounds, newest first.
type HistoryPage struct {
	Total   int                    `json:"total"`
	History []storage.HistoryEntry `json:"history"`
}

// AggregationOutcome is the result of an explicit aggregation trigger.
type AggregationOutcome struct {
	Status       string `json:"status"`
	NewVersion   int    `json:"new_version,omitempty"`
	Participants int    `json:"participants,omitempty"`
}

// DetectorStatus describes the serving inference model.
type DetectorStatus struct {
	Loaded    bool     `json:"loaded"`
	InputSize int      `json:"input_size,omitempty"`
	Classes   []string `json:"classes"`
}

type Service interface {
	// AddUpdate admits a client model update. Offline submissions are
	// reported, not enqueued. The threshold-reaching update triggers
	// aggregation synchronously within the same call.
	AddUpdate(ctx context.Context, update fedavg.ModelUpdate) (UpdateResult, error)

	GetGlobalModel(ctx context.Context) (ModelInfo, error)
	GetStatus(ctx context.Context) (Status, error)
	CheckVersion(ctx context.Context, clientVersion int) (VersionCheck, error)
	ListHistory(ctx context.Context) (HistoryPage, error)

	// TriggerAggregation forces a round over whatever is pending,
	// regardless of the threshold. Refused while offline.
	TriggerAggregation(ctx context.Context) (AggregationOutcome, error)

	Detect(ctx context.Context, image []byte, confidence float64) (detection.Report, error)
	DetectorStatus(ctx context.Context) (DetectorStatus, error)

	// Subscribe attaches the MQTT intake for device updates.
	Subscribe(ctx context.Context) error

	// Start runs the periodic aggregation timer until ctx is cancelled.
	Start(ctx context.Context)
}
