package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/fedavg"
)

var _ coordinator.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    coordinator.Service
}

func Tracing(tracer trace.Tracer, svc coordinator.Service) coordinator.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) AddUpdate(ctx context.Context, update fedavg.ModelUpdate) (coordinator.UpdateResult, error) {
	ctx, span := tm.tracer.Start(ctx, "add-update", trace.WithAttributes(
		attribute.String("device_id", update.DeviceID),
		attribute.Int("num_samples", update.NumSamples),
	))
	defer span.End()

	return tm.svc.AddUpdate(ctx, update)
}

func (tm *tracing) GetGlobalModel(ctx context.Context) (coordinator.ModelInfo, error) {
	ctx, span := tm.tracer.Start(ctx, "get-global-model")
	defer span.End()

	return tm.svc.GetGlobalModel(ctx)
}

func (tm *tracing) GetStatus(ctx context.Context) (coordinator.Status, error) {
	ctx, span := tm.tracer.Start(ctx, "get-status")
	defer span.End()

	return tm.svc.GetStatus(ctx)
}

func (tm *tracing) CheckVersion(ctx context.Context, clientVersion int) (coordinator.VersionCheck, error) {
	ctx, span := tm.tracer.Start(ctx, "check-version", trace.WithAttributes(
		attribute.Int("client_version", clientVersion),
	))
	defer span.End()

	return tm.svc.CheckVersion(ctx, clientVersion)
}

func (tm *tracing) ListHistory(ctx context.Context) (coordinator.HistoryPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-history")
	defer span.End()

	return tm.svc.ListHistory(ctx)
}

func (tm *tracing) TriggerAggregation(ctx context.Context) (coordinator.AggregationOutcome, error) {
	ctx, span := tm.tracer.Start(ctx, "trigger-aggregation")
	defer span.End()

	return tm.svc.TriggerAggregation(ctx)
}

func (tm *tracing) Detect(ctx context.Context, image []byte, confidence float64) (detection.Report, error) {
	ctx, span := tm.tracer.Start(ctx, "detect", trace.WithAttributes(
		attribute.Int("image_bytes", len(image)),
	))
	defer span.End()

	return tm.svc.Detect(ctx, image, confidence)
}

func (tm *tracing) DetectorStatus(ctx context.Context) (coordinator.DetectorStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "detector-status")
	defer span.End()

	return tm.svc.DetectorStatus(ctx)
}

func (tm *tracing) Subscribe(ctx context.Context) error {
	return tm.svc.Subscribe(ctx)
}

func (tm *tracing) Start(ctx context.Context) {
	tm.svc.Start(ctx)
}
