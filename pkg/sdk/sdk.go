package sdk

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type SDK interface {
	// ModelStatus returns the coordinator's aggregation state.
	//
	// example:
	//  status, _ := sdk.ModelStatus()
	//  fmt.Println(status)
	ModelStatus() (Status, error)

	// LatestModel returns the current global model, if any.
	//
	// example:
	//  model, _ := sdk.LatestModel()
	//  fmt.Println(model.Version)
	LatestModel() (ModelInfo, error)

	// History lists persisted aggregation rounds, newest first.
	//
	// example:
	//  page, _ := sdk.History()
	//  fmt.Println(page.Total)
	History() (HistoryPage, error)

	// CheckVersion reports whether a newer global model exists for a
	// client at the given version.
	//
	// example:
	//  check, _ := sdk.CheckVersion(3)
	//  fmt.Println(check.UpdateAvailable)
	CheckVersion(version int) (VersionCheck, error)

	// SubmitUpdate submits a client model update for aggregation.
	//
	// example:
	//  result, _ := sdk.SubmitUpdate(update)
	//  fmt.Println(result.Status)
	SubmitUpdate(update ModelUpdate) (UpdateResult, error)

	// TriggerAggregation forces a round over the pending queue.
	//
	// example:
	//  outcome, _ := sdk.TriggerAggregation()
	//  fmt.Println(outcome.NewVersion)
	TriggerAggregation() (AggregationOutcome, error)

	// Detect runs the detection pipeline over an image file. A
	// non-positive confidence uses the server default.
	//
	// example:
	//  report, _ := sdk.Detect("sample.jpg", 0.25)
	//  fmt.Println(report.TotalObjects)
	Detect(path string, confidence float64) (DetectReport, error)

	// DetectorStatus describes the serving inference model.
	//
	// example:
	//  status, _ := sdk.DetectorStatus()
	//  fmt.Println(status.Loaded)
	DetectorStatus() (DetectorStatus, error)
}

type uroSDK struct {
	coordinatorURL string
	client         *http.Client
}

type Config struct {
	CoordinatorURL  string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &uroSDK{
		coordinatorURL: cfg.CoordinatorURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *uroSDK) processRequest(method, reqURL, contentType string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", contentType)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, fmt.Errorf("unexpected response code: %d", resp.StatusCode)
	}

	return body, nil
}
