package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

const detectEndpoint = "/detect"

type Detection struct {
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

type ClassResult struct {
	Present    bool        `json:"present"`
	Count      int         `json:"count"`
	Confidence float64     `json:"confidence"`
	Detections []Detection `json:"detections"`
}

type DetectReport struct {
	ReportID     string                 `json:"report_id"`
	Results      map[string]ClassResult `json:"results"`
	TotalObjects int                    `json:"total_objects"`
}

type DetectorStatus struct {
	Loaded    bool     `json:"loaded"`
	InputSize int      `json:"input_size,omitempty"`
	Classes   []string `json:"classes"`
}

func (sdk *uroSDK) Detect(path string, confidence float64) (DetectReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return DetectReport{}, err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return DetectReport{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return DetectReport{}, err
	}
	if confidence > 0 {
		if err := writer.WriteField("confidence", fmt.Sprintf("%g", confidence)); err != nil {
			return DetectReport{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return DetectReport{}, err
	}

	url := sdk.coordinatorURL + detectEndpoint

	body, err := sdk.processRequest(http.MethodPost, url, writer.FormDataContentType(), buf.Bytes(), http.StatusOK)
	if err != nil {
		return DetectReport{}, err
	}

	var report DetectReport
	if err := json.Unmarshal(body, &report); err != nil {
		return DetectReport{}, err
	}

	return report, nil
}

func (sdk *uroSDK) DetectorStatus() (DetectorStatus, error) {
	url := sdk.coordinatorURL + detectEndpoint + "/status"

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return DetectorStatus{}, err
	}

	var status DetectorStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return DetectorStatus{}, err
	}

	return status, nil
}
