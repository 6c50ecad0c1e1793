package api

import (
	"context"
	"errors"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
	"github.com/google/uuid"

	"github.com/urosmart/uroedge/coordinator"
	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
)

func addUpdateEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(addUpdateReq)
		if !ok {
			return updateResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return updateResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		result, err := svc.AddUpdate(ctx, req.ModelUpdate)
		if err != nil {
			return updateResponse{}, err
		}

		return updateResponse{
			UpdateResult: result,
		}, nil
	}
}

func getGlobalModelEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		info, err := svc.GetGlobalModel(ctx)
		if err != nil {
			return modelResponse{}, err
		}

		return modelResponse{
			ModelInfo: info,
		}, nil
	}
}

func getStatusEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		status, err := svc.GetStatus(ctx)
		if err != nil {
			return statusResponse{}, err
		}

		return statusResponse{
			Status: status,
		}, nil
	}
}

func checkVersionEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(checkVersionReq)
		if !ok {
			return versionCheckResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return versionCheckResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		check, err := svc.CheckVersion(ctx, req.version)
		if err != nil {
			return versionCheckResponse{}, err
		}

		return versionCheckResponse{
			VersionCheck: check,
		}, nil
	}
}

func listHistoryEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		page, err := svc.ListHistory(ctx)
		if err != nil {
			return historyResponse{}, err
		}

		return historyResponse{
			HistoryPage: page,
		}, nil
	}
}

func triggerAggregationEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		outcome, err := svc.TriggerAggregation(ctx)
		if err != nil {
			return aggregateResponse{}, err
		}

		return aggregateResponse{
			AggregationOutcome: outcome,
		}, nil
	}
}

func detectEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(detectReq)
		if !ok {
			return detectResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return detectResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		report, err := svc.Detect(ctx, req.image, req.confidence)
		if err != nil {
			return detectResponse{}, err
		}

		return detectResponse{
			ReportID: uuid.NewString(),
			Report:   report,
		}, nil
	}
}

func detectorStatusEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		status, err := svc.DetectorStatus(ctx)
		if err != nil {
			return detectorStatusResponse{}, err
		}

		return detectorStatusResponse{
			DetectorStatus: status,
		}, nil
	}
}
