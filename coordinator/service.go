package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/connectivity"
	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
	"github.com/urosmart/uroedge/pkg/fedavg"
	"github.com/urosmart/uroedge/pkg/mqtt"
	"github.com/urosmart/uroedge/pkg/schedule"
	"github.com/urosmart/uroedge/pkg/storage"
)

const (
	DefThreshold  = 3
	DefMaxPending = 64
	DefInterval   = 1800 * time.Second

	updatesTopic = "uroedge/fl/updates"
	modelsTopic  = "uroedge/fl/models"
)

type Config struct {
	// Threshold is the pending-update count that triggers synchronous
	// aggregation on admission.
	Threshold int

	// MaxPending bounds the queue accumulated between rounds.
	MaxPending int

	// Interval drives the periodic aggregation timer. CronExpr, when
	// set, replaces the fixed interval with wall-clock runs.
	Interval time.Duration
	CronExpr string

	// BootstrapPath optionally points at a pretrained artifact loaded
	// as version 0 when no persisted model exists yet.
	BootstrapPath string
}

func (c *Config) withDefaults() {
	if c.Threshold <= 0 {
		c.Threshold = DefThreshold
	}
	if c.MaxPending <= 0 {
		c.MaxPending = DefMaxPending
	}
	if c.Interval <= 0 {
		c.Interval = DefInterval
	}
}

type service struct {
	store    storage.ModelStore
	monitor  *connectivity.Monitor
	pubsub   mqtt.PubSub
	pipeline *detection.Pipeline
	logger   *slog.Logger

	threshold  int
	maxPending int
	interval   time.Duration
	cron       *schedule.CronSchedule

	mu              sync.Mutex
	pending         []fedavg.ModelUpdate
	current         *fedavg.GlobalModel
	lastAggregation string
}

func NewService(cfg Config, store storage.ModelStore, monitor *connectivity.Monitor, pubsub mqtt.PubSub, pipeline *detection.Pipeline, logger *slog.Logger) (Service, error) {
	cfg.withDefaults()

	var cronSchedule *schedule.CronSchedule
	if cfg.CronExpr != "" {
		s, err := schedule.ParseCronExpression(cfg.CronExpr)
		if err != nil {
			return nil, fmt.Errorf("aggregation schedule %q: %w", cfg.CronExpr, err)
		}
		cronSchedule = s
	}

	svc := &service{
		store:      store,
		monitor:    monitor,
		pubsub:     pubsub,
		pipeline:   pipeline,
		logger:     logger,
		threshold:  cfg.Threshold,
		maxPending: cfg.MaxPending,
		interval:   cfg.Interval,
		cron:       cronSchedule,
	}

	if err := svc.bootstrap(context.Background(), cfg.BootstrapPath); err != nil {
		return nil, err
	}

	monitor.OnOnline(svc.catchUp)

	return svc, nil
}

// bootstrap restores the latest persisted model, falling back to an
// externally supplied pretrained artifact loaded as version 0.
func (svc *service) bootstrap(ctx context.Context, bootstrapPath string) error {
	model, err := svc.store.LoadLatest(ctx)
	switch {
	case err == nil:
		svc.current = &model
		svc.lastAggregation = model.AggregationTimestamp
		svc.logger.Info("restored global model", slog.Int("version", model.Version))

		return nil
	case !errors.Is(err, pkgerrors.ErrNotFound):
		return fmt.Errorf("failed to load latest model: %w", err)
	}

	if bootstrapPath == "" {
		svc.logger.Info("no global model yet, starting at version 0")

		return nil
	}

	data, err := os.ReadFile(bootstrapPath)
	if err != nil {
		return fmt.Errorf("failed to read bootstrap artifact: %w", err)
	}
	var pretrained fedavg.GlobalModel
	if err := json.Unmarshal(data, &pretrained); err != nil {
		return fmt.Errorf("failed to parse bootstrap artifact: %w", err)
	}
	pretrained.Version = 0
	svc.current = &pretrained
	svc.logger.Info("bootstrapped from pretrained artifact", slog.String("path", bootstrapPath))

	return nil
}

func (svc *service) AddUpdate(ctx context.Context, update fedavg.ModelUpdate) (UpdateResult, error) {
	if err := fedavg.Validate(update); err != nil {
		return UpdateResult{}, err
	}

	// Probing may block for seconds, so it happens before the lock.
	online := svc.monitor.IsConnected(ctx)
	if !online {
		svc.logger.Info("update rejected, device offline", slog.String("device_id", update.DeviceID))

		return UpdateResult{Status: StatusOffline}, nil
	}

	svc.mu.Lock()

	if svc.current != nil && len(svc.current.Weights) > 0 && !update.WeightUpdates.CompatibleWith(svc.current.Weights) {
		svc.mu.Unlock()

		return UpdateResult{}, pkgerrors.ErrIncompatibleModel
	}
	if len(svc.pending) >= svc.maxPending {
		svc.mu.Unlock()

		return UpdateResult{}, pkgerrors.ErrQueueFull
	}

	svc.pending = append(svc.pending, update)
	svc.logger.Info("update admitted",
		slog.String("device_id", update.DeviceID),
		slog.Int("pending", len(svc.pending)),
		slog.Int("threshold", svc.threshold),
	)

	if len(svc.pending) < svc.threshold {
		result := UpdateResult{
			Status:       StatusPending,
			PendingCount: len(svc.pending),
			Threshold:    svc.threshold,
		}
		svc.mu.Unlock()

		return result, nil
	}

	model, err := svc.aggregateLocked(ctx)
	if err != nil {
		result := UpdateResult{
			Status:       StatusPending,
			PendingCount: len(svc.pending),
			Threshold:    svc.threshold,
		}
		svc.mu.Unlock()

		return result, nil
	}
	svc.mu.Unlock()

	svc.announce(ctx, model)

	return UpdateResult{Status: StatusAggregated, NewVersion: model.Version}, nil
}

// aggregateLocked runs one round over the pending queue. The caller
// must hold svc.mu. On success the queue is cleared and the in-memory
// model advanced; on failure the queue is retained verbatim so the
// next trigger retries with the same updates.
func (svc *service) aggregateLocked(ctx context.Context) (fedavg.GlobalModel, error) {
	weights, summary, err := fedavg.Aggregate(svc.pending)
	if err != nil {
		svc.logger.Error("aggregation failed, queue retained",
			slog.Int("pending", len(svc.pending)),
			slog.Any("error", err),
		)

		return fedavg.GlobalModel{}, err
	}

	version := 1
	if svc.current != nil {
		version = svc.current.Version + 1
	}

	model := fedavg.GlobalModel{
		Version:              version,
		Weights:              weights,
		ParticipatingDevices: summary.NumUpdates,
		AggregationTimestamp: time.Now().UTC().Format(time.RFC3339),
		AverageLoss:          summary.AverageLoss,
		AverageAccuracy:      summary.AverageAccuracy,
	}

	// In-memory state advances even when persistence fails; a crash
	// before a later successful save loses this version on restart.
	if err := svc.store.Save(ctx, model); err != nil {
		svc.logger.Error("failed to persist global model",
			slog.Int("version", model.Version),
			slog.Any("error", err),
		)
	}

	svc.current = &model
	svc.lastAggregation = model.AggregationTimestamp
	svc.pending = nil

	svc.logger.Info("aggregation complete",
		slog.Int("version", model.Version),
		slog.Int("participants", model.ParticipatingDevices),
		slog.Int("total_samples", summary.TotalSamples),
		slog.Float64("average_accuracy", model.AverageAccuracy),
	)

	return model, nil
}

// announce publishes a new-model notification. Failures are logged and
// otherwise ignored, devices also discover versions by polling.
func (svc *service) announce(ctx context.Context, model fedavg.GlobalModel) {
	if svc.pubsub == nil {
		return
	}

	msg := map[string]any{
		"version":               model.Version,
		"participating_devices": model.ParticipatingDevices,
		"aggregation_timestamp": model.AggregationTimestamp,
		"average_accuracy":      model.AverageAccuracy,
	}
	if err := svc.pubsub.Publish(ctx, modelsTopic, msg); err != nil {
		svc.logger.Warn("failed to announce new model",
			slog.Int("version", model.Version),
			slog.Any("error", err),
		)
	}
}

func (svc *service) GetGlobalModel(ctx context.Context) (ModelInfo, error) {
	online := svc.monitor.IsConnected(ctx)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return ModelInfo{Online: online}, nil
	}

	model := *svc.current
	model.Weights = model.Weights.Clone()

	return ModelInfo{Available: true, Online: online, Model: model}, nil
}

func (svc *service) GetStatus(ctx context.Context) (Status, error) {
	online := svc.monitor.IsConnected(ctx)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	status := Status{
		Online:          online,
		PendingUpdates:  len(svc.pending),
		Threshold:       svc.threshold,
		HasGlobalModel:  svc.current != nil,
		LastAggregation: svc.lastAggregation,
	}
	if svc.current != nil {
		status.Version = svc.current.Version
	}

	return status, nil
}

func (svc *service) CheckVersion(ctx context.Context, clientVersion int) (VersionCheck, error) {
	online := svc.monitor.IsConnected(ctx)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	check := VersionCheck{ClientVersion: clientVersion, Online: online}
	if svc.current != nil {
		check.LatestVersion = svc.current.Version
	}
	check.UpdateAvailable = online && check.LatestVersion > clientVersion

	return check, nil
}

func (svc *service) ListHistory(ctx context.Context) (HistoryPage, error) {
	history, err := svc.store.ListHistory(ctx)
	if err != nil {
		return HistoryPage{}, err
	}

	return HistoryPage{Total: len(history), History: history}, nil
}

func (svc *service) TriggerAggregation(ctx context.Context) (AggregationOutcome, error) {
	online := svc.monitor.IsConnected(ctx)
	if !online {
		return AggregationOutcome{}, pkgerrors.ErrOffline
	}

	svc.mu.Lock()
	if len(svc.pending) == 0 {
		svc.mu.Unlock()

		return AggregationOutcome{Status: StatusIdle}, nil
	}

	participants := len(svc.pending)
	model, err := svc.aggregateLocked(ctx)
	svc.mu.Unlock()
	if err != nil {
		return AggregationOutcome{}, err
	}

	svc.announce(ctx, model)

	return AggregationOutcome{
		Status:       StatusAggregated,
		NewVersion:   model.Version,
		Participants: participants,
	}, nil
}

func (svc *service) Detect(ctx context.Context, image []byte, confidence float64) (detection.Report, error) {
	return svc.pipeline.Detect(ctx, image, confidence)
}

func (svc *service) DetectorStatus(ctx context.Context) (DetectorStatus, error) {
	status := DetectorStatus{
		Loaded:  svc.pipeline.Loaded(),
		Classes: detection.ClassNames,
	}
	if status.Loaded {
		status.InputSize = svc.pipeline.InputSize()
	}

	return status, nil
}

// Start runs the periodic aggregation timer until ctx is cancelled.
// Each wake-up performs the same catch-up as the connectivity poller.
func (svc *service) Start(ctx context.Context) {
	if svc.cron != nil {
		svc.runCron(ctx)

		return
	}

	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			svc.logger.Info("stopping aggregation timer")

			return
		case <-ticker.C:
			svc.catchUp(ctx)
		}
	}
}

func (svc *service) runCron(ctx context.Context) {
	for {
		next := svc.cron.NextRun(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			svc.logger.Info("stopping aggregation schedule")

			return
		case <-timer.C:
			svc.catchUp(ctx)
		}
	}
}

// catchUp aggregates whatever is pending, regardless of the threshold.
// Fired by the timer and by the connectivity poller on reconnect.
func (svc *service) catchUp(ctx context.Context) {
	if !svc.monitor.IsConnected(ctx) {
		return
	}

	svc.mu.Lock()
	if len(svc.pending) == 0 {
		svc.mu.Unlock()

		return
	}

	model, err := svc.aggregateLocked(ctx)
	svc.mu.Unlock()
	if err != nil {
		return
	}

	svc.announce(ctx, model)
}
