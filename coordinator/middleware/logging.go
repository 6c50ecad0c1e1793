package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/fedavg"
)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    coordinator.Service
}

func Logging(logger *slog.Logger, svc coordinator.Service) coordinator.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) AddUpdate(ctx context.Context, update fedavg.ModelUpdate) (resp coordinator.UpdateResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("update",
				slog.String("device_id", update.DeviceID),
				slog.Int("num_samples", update.NumSamples),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Add update failed", args...)

			return
		}
		args = append(args, slog.String("status", resp.Status))
		lm.logger.Info("Add update completed successfully", args...)
	}(time.Now())

	return lm.svc.AddUpdate(ctx, update)
}

func (lm *loggingMiddleware) GetGlobalModel(ctx context.Context) (resp coordinator.ModelInfo, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get global model failed", args...)

			return
		}
		lm.logger.Info("Get global model completed successfully", args...)
	}(time.Now())

	return lm.svc.GetGlobalModel(ctx)
}

func (lm *loggingMiddleware) GetStatus(ctx context.Context) (resp coordinator.Status, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get status failed", args...)

			return
		}
		lm.logger.Info("Get status completed successfully", args...)
	}(time.Now())

	return lm.svc.GetStatus(ctx)
}

func (lm *loggingMiddleware) CheckVersion(ctx context.Context, clientVersion int) (resp coordinator.VersionCheck, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("client_version", clientVersion),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Check version failed", args...)

			return
		}
		lm.logger.Info("Check version completed successfully", args...)
	}(time.Now())

	return lm.svc.CheckVersion(ctx, clientVersion)
}

func (lm *loggingMiddleware) ListHistory(ctx context.Context) (resp coordinator.HistoryPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List history failed", args...)

			return
		}
		lm.logger.Info("List history completed successfully", args...)
	}(time.Now())

	return lm.svc.ListHistory(ctx)
}

func (lm *loggingMiddleware) TriggerAggregation(ctx context.Context) (resp coordinator.AggregationOutcome, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Trigger aggregation failed", args...)

			return
		}
		args = append(args, slog.String("status", resp.Status))
		lm.logger.Info("Trigger aggregation completed successfully", args...)
	}(time.Now())

	return lm.svc.TriggerAggregation(ctx)
}

func (lm *loggingMiddleware) Detect(ctx context.Context, image []byte, confidence float64) (resp detection.Report, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("image_bytes", len(image)),
			slog.Float64("confidence", confidence),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Detect failed", args...)

			return
		}
		args = append(args, slog.Int("total_objects", resp.TotalObjects))
		lm.logger.Info("Detect completed successfully", args...)
	}(time.Now())

	return lm.svc.Detect(ctx, image, confidence)
}

func (lm *loggingMiddleware) DetectorStatus(ctx context.Context) (resp coordinator.DetectorStatus, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Detector status failed", args...)

			return
		}
		lm.logger.Info("Detector status completed successfully", args...)
	}(time.Now())

	return lm.svc.DetectorStatus(ctx)
}

func (lm *loggingMiddleware) Subscribe(ctx context.Context) error {
	return lm.svc.Subscribe(ctx)
}

func (lm *loggingMiddleware) Start(ctx context.Context) {
	lm.svc.Start(ctx)
}
