package api

import (
	"net/http"

	"github.com/absmach/supermq"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/detection"
)

var (
	_ supermq.Response = (*updateResponse)(nil)
	_ supermq.Response = (*modelResponse)(nil)
	_ supermq.Response = (*statusResponse)(nil)
	_ supermq.Response = (*versionCheckResponse)(nil)
	_ supermq.Response = (*historyResponse)(nil)
	_ supermq.Response = (*aggregateResponse)(nil)
	_ supermq.Response = (*detectResponse)(nil)
	_ supermq.Response = (*detectorStatusResponse)(nil)
)

type updateResponse struct {
	coordinator.UpdateResult
}

func (r updateResponse) Code() int {
	return http.StatusOK
}

func (r updateResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r updateResponse) Empty() bool {
	return false
}

type modelResponse struct {
	coordinator.ModelInfo
}

func (r modelResponse) Code() int {
	return http.StatusOK
}

func (r modelResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r modelResponse) Empty() bool {
	return false
}

type statusResponse struct {
	coordinator.Status
}

func (r statusResponse) Code() int {
	return http.StatusOK
}

func (r statusResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r statusResponse) Empty() bool {
	return false
}

type versionCheckResponse struct {
	coordinator.VersionCheck
}

func (r versionCheckResponse) Code() int {
	return http.StatusOK
}

func (r versionCheckResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r versionCheckResponse) Empty() bool {
	return false
}

type historyResponse struct {
	coordinator.HistoryPage
}

func (r historyResponse) Code() int {
	return http.StatusOK
}

func (r historyResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r historyResponse) Empty() bool {
	return false
}

type aggregateResponse struct {
	coordinator.AggregationOutcome
}

func (r aggregateResponse) Code() int {
	return http.StatusOK
}

func (r aggregateResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r aggregateResponse) Empty() bool {
	return false
}

type detectResponse struct {
	ReportID         string `json:"report_id"`
	detection.Report `json:",inline"`
}

func (r detectResponse) Code() int {
	return http.StatusOK
}

func (r detectResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r detectResponse) Empty() bool {
	return false
}

type detectorStatusResponse struct {
	coordinator.DetectorStatus
}

func (r detectorStatusResponse) Code() int {
	return http.StatusOK
}

func (r detectorStatusResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r detectorStatusResponse) Empty() bool {
	return false
}
