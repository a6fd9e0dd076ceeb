package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
	"lawn-irrigation/internal/telemetry"
)

// ShadowTransport delivers a serialized shadow document to a topic.
type ShadowTransport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Name() string
}

// ShadowUpdater writes one desired-state value to the device shadow.
// Implementations never report failure to the caller.
type ShadowUpdater interface {
	Update(ctx context.Context, controlPoint string, value int64)
}

type ShadowPublisher struct {
	transport ShadowTransport
	topic     string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewShadowPublisher(transport ShadowTransport, topic string, timeout time.Duration, logger *zap.Logger) *ShadowPublisher {
	return &ShadowPublisher{
		transport: transport,
		topic:     topic,
		timeout:   timeout,
		logger:    logger,
	}
}

// Update publishes {"state":{"desired":{controlPoint: value}}}. A publish
// error is logged and dropped: the spoken response does not depend on
// whether the device received the command.
func (p *ShadowPublisher) Update(ctx context.Context, controlPoint string, value int64) {
	update := domain.NewShadowUpdate(controlPoint, value)

	payload, err := update.Marshal()
	if err != nil {
		p.logger.Error("building shadow update", zap.Error(err))
		telemetry.ShadowPublishTotal.WithLabelValues(p.transport.Name(), "error").Inc()
		return
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err = p.transport.Publish(ctx, p.topic, payload)
	telemetry.ShadowPublishLatency.WithLabelValues(p.transport.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Error("publishing shadow update",
			zap.String("transport", p.transport.Name()),
			zap.String("topic", p.topic),
			zap.ByteString("payload", payload),
			zap.Error(err),
		)
		telemetry.ShadowPublishTotal.WithLabelValues(p.transport.Name(), "error").Inc()
		return
	}

	p.logger.Info("published shadow update",
		zap.String("transport", p.transport.Name()),
		zap.String("topic", p.topic),
		zap.ByteString("payload", payload),
	)
	telemetry.ShadowPublishTotal.WithLabelValues(p.transport.Name(), "ok").Inc()
}
