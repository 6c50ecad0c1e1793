package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fxamacker/cbor/v2"

	"github.com/urosmart/uroedge/pkg/fedavg"
)

// Subscribe attaches the device-update intake. Devices publish
// CBOR-encoded model updates; each one flows through the same
// admission path as an HTTP submission.
func (svc *service) Subscribe(ctx context.Context) error {
	if svc.pubsub == nil {
		return nil
	}

	handler := func(topic string, payload []byte) error {
		var update fedavg.ModelUpdate
		if err := cbor.Unmarshal(payload, &update); err != nil {
			return fmt.Errorf("failed to decode update from %s: %w", topic, err)
		}

		result, err := svc.AddUpdate(ctx, update)
		if err != nil {
			return fmt.Errorf("failed to admit update from %s: %w", update.DeviceID, err)
		}

		svc.logger.Info("handled device update",
			slog.String("device_id", update.DeviceID),
			slog.String("status", result.Status),
		)

		return nil
	}

	if err := svc.pubsub.Subscribe(ctx, updatesTopic, handler); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", updatesTopic, err)
	}

	return nil
}
