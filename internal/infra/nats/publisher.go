// Package nats relays shadow documents onto a NATS subject for deployments
// where a local bridge forwards them to the controller.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
)

const defaultFlushTimeout = 5 * time.Second

type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

type Publisher struct {
	conn   conn
	logger *zap.Logger
}

func Connect(url string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("irrigation-skill"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	logger.Info("connected to nats", zap.String("url", url))
	return NewPublisherWithConn(nc, logger), nil
}

func NewPublisherWithConn(c conn, logger *zap.Logger) *Publisher {
	return &Publisher{conn: c, logger: logger}
}

func (p *Publisher) Name() string {
	return "nats"
}

// Publish sends payload on the subject derived from topic and waits for the
// server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	subject := domain.TopicToSubject(topic)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("nats publish to %s: %w", subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultFlushTimeout)
		defer cancel()
	}

	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}
