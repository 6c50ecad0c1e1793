package sdk_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urosmart/uroedge/pkg/sdk"
)

func newTestSDK(t *testing.T, handler http.HandlerFunc) sdk.SDK {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return sdk.NewSDK(sdk.Config{CoordinatorURL: srv.URL})
}

func TestModelStatus(t *testing.T) {
	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/model/status", r.URL.Path)

		json.NewEncoder(w).Encode(sdk.Status{
			Online:         true,
			Version:        4,
			PendingUpdates: 1,
			Threshold:      3,
			HasGlobalModel: true,
		})
	})

	status, err := s.ModelStatus()
	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.Equal(t, 4, status.Version)
	assert.Equal(t, 1, status.PendingUpdates)
}

func TestCheckVersion(t *testing.T) {
	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/model/check", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("version"))

		json.NewEncoder(w).Encode(sdk.VersionCheck{
			UpdateAvailable: true,
			LatestVersion:   3,
			ClientVersion:   2,
			Online:          true,
		})
	})

	check, err := s.CheckVersion(2)
	require.NoError(t, err)
	assert.True(t, check.UpdateAvailable)
	assert.Equal(t, 3, check.LatestVersion)
}

func TestSubmitUpdate(t *testing.T) {
	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/model/updates", r.URL.Path)

		var update sdk.ModelUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Equal(t, "dev-1", update.DeviceID)

		json.NewEncoder(w).Encode(sdk.UpdateResult{Status: "pending", PendingCount: 1, Threshold: 3})
	})

	result, err := s.SubmitUpdate(sdk.ModelUpdate{
		DeviceID:      "dev-1",
		WeightUpdates: map[string][]float64{"layer": {1, 2}},
		NumSamples:    10,
		Timestamp:     "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, 1, result.PendingCount)
}

func TestDetect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0o644))

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1024*1024))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		file.Close()
		assert.Equal(t, "0.25", r.FormValue("confidence"))

		json.NewEncoder(w).Encode(sdk.DetectReport{
			ReportID:     "r-1",
			TotalObjects: 2,
			Results: map[string]sdk.ClassResult{
				"yeast": {Present: true, Count: 2, Confidence: 0.7},
			},
		})
	})

	report, err := s.Detect(path, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalObjects)
	assert.True(t, report.Results["yeast"].Present)
}

func TestUnexpectedStatusCode(t *testing.T) {
	s := newTestSDK(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := s.TriggerAggregation()
	assert.Error(t, err)
}
