package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/pkg/api"
)

const (
	maxImageSize  = 1024 * 1024 * 20
	fileKey       = "file"
	confidenceKey = "confidence"
	versionKey    = "version"
)

func MakeHandler(svc coordinator.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/model", func(r chi.Router) {
		r.Post("/updates", otelhttp.NewHandler(kithttp.NewServer(
			addUpdateEndpoint(svc),
			decodeAddUpdateReq,
			api.EncodeResponse,
			opts...,
		), "add-update").ServeHTTP)
		r.Get("/latest", otelhttp.NewHandler(kithttp.NewServer(
			getGlobalModelEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "get-global-model").ServeHTTP)
		r.Get("/check", otelhttp.NewHandler(kithttp.NewServer(
			checkVersionEndpoint(svc),
			decodeCheckVersionReq,
			api.EncodeResponse,
			opts...,
		), "check-version").ServeHTTP)
		r.Get("/history", otelhttp.NewHandler(kithttp.NewServer(
			listHistoryEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "list-history").ServeHTTP)
		r.Get("/status", otelhttp.NewHandler(kithttp.NewServer(
			getStatusEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "get-status").ServeHTTP)
		r.Post("/aggregate", otelhttp.NewHandler(kithttp.NewServer(
			triggerAggregationEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "trigger-aggregation").ServeHTTP)
	})

	mux.Route("/detect", func(r chi.Router) {
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			detectEndpoint(svc),
			decodeDetectReq,
			api.EncodeResponse,
			opts...,
		), "detect").ServeHTTP)
		r.Get("/status", otelhttp.NewHandler(kithttp.NewServer(
			detectorStatusEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "detector-status").ServeHTTP)
	})

	mux.Get("/health", supermq.Health("coordinator", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeEmptyReq(_ context.Context, _ *http.Request) (any, error) {
	return emptyReq{}, nil
}

func decodeAddUpdateReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req addUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeCheckVersionReq(_ context.Context, r *http.Request) (any, error) {
	v, err := apiutil.ReadNumQuery[uint64](r, versionKey, 0)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return checkVersionReq{
		version: int(v),
	}, nil
}

func decodeDetectReq(_ context.Context, r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}
	file, _, err := r.FormFile(fileKey)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	req := detectReq{image: data}
	if raw := r.FormValue(confidenceKey); raw != "" {
		confidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}
		req.confidence = confidence
	}

	return req, nil
}
