package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/fedavg"
)

var _ coordinator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     coordinator.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc coordinator.Service) coordinator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) AddUpdate(ctx context.Context, update fedavg.ModelUpdate) (coordinator.UpdateResult, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "add-update").Add(1)
		mm.latency.With("method", "add-update").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.AddUpdate(ctx, update)
}

func (mm *metricsMiddleware) GetGlobalModel(ctx context.Context) (coordinator.ModelInfo, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-global-model").Add(1)
		mm.latency.With("method", "get-global-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetGlobalModel(ctx)
}

func (mm *metricsMiddleware) GetStatus(ctx context.Context) (coordinator.Status, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-status").Add(1)
		mm.latency.With("method", "get-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetStatus(ctx)
}

func (mm *metricsMiddleware) CheckVersion(ctx context.Context, clientVersion int) (coordinator.VersionCheck, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "check-version").Add(1)
		mm.latency.With("method", "check-version").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CheckVersion(ctx, clientVersion)
}

func (mm *metricsMiddleware) ListHistory(ctx context.Context) (coordinator.HistoryPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-history").Add(1)
		mm.latency.With("method", "list-history").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListHistory(ctx)
}

func (mm *metricsMiddleware) TriggerAggregation(ctx context.Context) (coordinator.AggregationOutcome, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "trigger-aggregation").Add(1)
		mm.latency.With("method", "trigger-aggregation").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.TriggerAggregation(ctx)
}

func (mm *metricsMiddleware) Detect(ctx context.Context, image []byte, confidence float64) (detection.Report, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "detect").Add(1)
		mm.latency.With("method", "detect").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Detect(ctx, image, confidence)
}

func (mm *metricsMiddleware) DetectorStatus(ctx context.Context) (coordinator.DetectorStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "detector-status").Add(1)
		mm.latency.With("method", "detector-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DetectorStatus(ctx)
}

func (mm *metricsMiddleware) Subscribe(ctx context.Context) error {
	return mm.svc.Subscribe(ctx)
}

func (mm *metricsMiddleware) Start(ctx context.Context) {
	mm.svc.Start(ctx)
}
