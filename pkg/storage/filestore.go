package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
	"github.com/urosmart/uroedge/pkg/fedavg"
)

const (
	versionFileTemplate = "global_model_v%d.json"
	latestFileName      = "global_model_latest.json"
	versionFilePrefix   = "global_model_v"
	versionFileSuffix   = ".json"

	dirPermissions  = 0o755
	filePermissions = 0o644
)

type fileStore struct {
	dir string
}

// NewFileStore persists models as JSON under dir, creating it if
// needed.
func NewFileStore(dir string) (ModelStore, error) {
	if dir == "" {
		return nil, pkgerrors.ErrEmptyKey
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create model storage directory: %w", err)
	}

	return &fileStore{dir: dir}, nil
}

func (fs *fileStore) Save(_ context.Context, model fedavg.GlobalModel) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal global model: %w", err)
	}

	versionPath := filepath.Join(fs.dir, fmt.Sprintf(versionFileTemplate, model.Version))
	if err := fs.writeAtomic(versionPath, data); err != nil {
		return err
	}

	// Readers of the latest pointer must always see a complete file,
	// so it is replaced by rename rather than written in place.
	latestPath := filepath.Join(fs.dir, latestFileName)

	return fs.writeAtomic(latestPath, data)
}

func (fs *fileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(fs.dir, ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to close model artifact: %w", err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to replace model artifact: %w", err)
	}

	return nil
}

func (fs *fileStore) LoadLatest(_ context.Context) (fedavg.GlobalModel, error) {
	data, err := os.ReadFile(filepath.Join(fs.dir, latestFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fedavg.GlobalModel{}, pkgerrors.ErrNotFound
		}

		return fedavg.GlobalModel{}, fmt.Errorf("failed to read latest model: %w", err)
	}

	var model fedavg.GlobalModel
	if err := json.Unmarshal(data, &model); err != nil {
		return fedavg.GlobalModel{}, fmt.Errorf("failed to decode latest model: %w", err)
	}

	return model, nil
}

func (fs *fileStore) ListHistory(_ context.Context) ([]HistoryEntry, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list model storage: %w", err)
	}

	history := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, versionFilePrefix) || !strings.HasSuffix(name, versionFileSuffix) {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, versionFilePrefix), versionFileSuffix)); err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fs.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read model artifact %s: %w", name, err)
		}

		var model fedavg.GlobalModel
		if err := json.Unmarshal(data, &model); err != nil {
			return nil, fmt.Errorf("failed to decode model artifact %s: %w", name, err)
		}

		history = append(history, HistoryEntry{
			Version:   model.Version,
			Timestamp: model.AggregationTimestamp,
			Devices:   model.ParticipatingDevices,
			Accuracy:  model.AverageAccuracy,
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Version > history[j].Version
	})

	return history, nil
}
