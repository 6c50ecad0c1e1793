package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
	"github.com/urosmart/uroedge/pkg/fedavg"
)

func testModel(version int) fedavg.GlobalModel {
	return fedavg.GlobalModel{
		Version:              version,
		Weights:              fedavg.Weights{"layer": {0.1, 0.2}},
		ParticipatingDevices: 3,
		AggregationTimestamp: "2024-06-01T12:00:00Z",
		AverageLoss:          0.12,
		AverageAccuracy:      0.87,
	}
}

func TestFileStoreSaveAndLoadLatest(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	model := testModel(1)
	require.NoError(t, store.Save(ctx, model))

	loaded, err := store.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, model, loaded)
}

func TestFileStoreLoadLatestAbsent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadLatest(context.Background())
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestFileStoreLatestTracksHighestVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	for v := 1; v <= 3; v++ {
		require.NoError(t, store.Save(ctx, testModel(v)))
	}

	loaded, err := store.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Version)

	// The latest pointer must always hold complete, valid JSON.
	data, err := os.ReadFile(filepath.Join(dir, "global_model_latest.json"))
	require.NoError(t, err)
	var decoded fedavg.GlobalModel
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.Version)
}

func TestFileStoreListHistory(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for v := 1; v <= 4; v++ {
		m := testModel(v)
		m.ParticipatingDevices = v
		require.NoError(t, store.Save(ctx, m))
	}

	history, err := store.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)

	for i, entry := range history {
		assert.Equal(t, 4-i, entry.Version, "history must be sorted by version descending")
	}
	assert.Equal(t, 4, history[0].Devices)
	assert.InDelta(t, 0.87, history[0].Accuracy, 1e-9)
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "global_model_vNaN.json"), []byte("{}"), 0o644))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testModel(1)))

	history, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
