package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const modelEndpoint = "/model"

type ModelUpdate struct {
	DeviceID           string               `json:"device_id"`
	Version            int                  `json:"version"`
	WeightUpdates      map[string][]float64 `json:"weight_updates"`
	NumSamples         int                  `json:"num_samples"`
	TrainingLoss       float64              `json:"training_loss"`
	ValidationAccuracy float64              `json:"validation_accuracy"`
	Timestamp          string               `json:"timestamp"`
}

type UpdateResult struct {
	Status       string `json:"status"`
	PendingCount int    `json:"pending_count,omitempty"`
	Threshold    int    `json:"threshold,omitempty"`
	NewVersion   int    `json:"new_version,omitempty"`
}

type GlobalModel struct {
	Version              int                  `json:"version"`
	Weights              map[string][]float64 `json:"weights"`
	ArtifactPath         string               `json:"artifact_path,omitempty"`
	ParticipatingDevices int                  `json:"participating_devices"`
	AggregationTimestamp string               `json:"aggregation_timestamp"`
	AverageLoss          float64              `json:"average_loss"`
	AverageAccuracy      float64              `json:"average_accuracy"`
}

type ModelInfo struct {
	Available bool        `json:"available"`
	Online    bool        `json:"online"`
	Model     GlobalModel `json:"model,omitempty"`
}

type Status struct {
	Online          bool   `json:"online"`
	Version         int    `json:"version"`
	PendingUpdates  int    `json:"pending_updates"`
	Threshold       int    `json:"threshold"`
	HasGlobalModel  bool   `json:"has_global_model"`
	LastAggregation string `json:"last_aggregation,omitempty"`
}

type VersionCheck struct {
	UpdateAvailable bool `json:"update_available"`
	LatestVersion   int  `json:"latest_version"`
	ClientVersion   int  `json:"client_version"`
	Online          bool `json:"online"`
}

type HistoryEntry struct {
	Version   int     `json:"version"`
	Timestamp string  `json:"timestamp"`
	Devices   int     `json:"devices"`
	Accuracy  float64 `json:"accuracy"`
}

type HistoryPage struct {
	Total   int            `json:"total"`
	History []HistoryEntry `json:"history"`
}

type AggregationOutcome struct {
	Status       string `json:"status"`
	NewVersion   int    `json:"new_version,omitempty"`
	Participants int    `json:"participants,omitempty"`
}

func (sdk *uroSDK) ModelStatus() (Status, error) {
	url := sdk.coordinatorURL + modelEndpoint + "/status"

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return Status{}, err
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return Status{}, err
	}

	return status, nil
}

func (sdk *uroSDK) LatestModel() (ModelInfo, error) {
	url := sdk.coordinatorURL + modelEndpoint + "/latest"

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return ModelInfo{}, err
	}

	var info ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return ModelInfo{}, err
	}

	return info, nil
}

func (sdk *uroSDK) History() (HistoryPage, error) {
	url := sdk.coordinatorURL + modelEndpoint + "/history"

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return HistoryPage{}, err
	}

	var page HistoryPage
	if err := json.Unmarshal(body, &page); err != nil {
		return HistoryPage{}, err
	}

	return page, nil
}

func (sdk *uroSDK) CheckVersion(version int) (VersionCheck, error) {
	url := fmt.Sprintf("%s%s/check?version=%d", sdk.coordinatorURL, modelEndpoint, version)

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return VersionCheck{}, err
	}

	var check VersionCheck
	if err := json.Unmarshal(body, &check); err != nil {
		return VersionCheck{}, err
	}

	return check, nil
}

func (sdk *uroSDK) SubmitUpdate(update ModelUpdate) (UpdateResult, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return UpdateResult{}, err
	}

	url := sdk.coordinatorURL + modelEndpoint + "/updates"

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusOK)
	if err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return UpdateResult{}, err
	}

	return result, nil
}

func (sdk *uroSDK) TriggerAggregation() (AggregationOutcome, error) {
	url := sdk.coordinatorURL + modelEndpoint + "/aggregate"

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return AggregationOutcome{}, err
	}

	var outcome AggregationOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return AggregationOutcome{}, err
	}

	return outcome, nil
}
