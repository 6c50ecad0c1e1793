package storage

import (
	"context"

	"github.com/urosmart/uroedge/pkg/fedavg"
)

// HistoryEntry summarizes one persisted aggregation artifact.
type HistoryEntry struct {
	Version   int     `json:"version"`
	Timestamp string  `json:"timestamp"`
	Devices   int     `json:"devices"`
	Accuracy  float64 `json:"accuracy"`
}

// ModelStore owns durable history. It is the sole writer of persisted
// artifacts: one immutable record per version plus a mutable latest
// pointer that readers must never observe half-written.
type ModelStore interface {
	Save(ctx context.Context, model fedavg.GlobalModel) error
	LoadLatest(ctx context.Context) (fedavg.GlobalModel, error)
	ListHistory(ctx context.Context) ([]HistoryEntry, error)
}
