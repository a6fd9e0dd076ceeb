// Package mqtt publishes shadow documents over MQTT with mutual TLS, the
// same channel the irrigation controller listens on.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	// Broker is a URL such as ssl://abc-ats.iot.ap-southeast-2.amazonaws.com:8883.
	Broker         string
	ClientID       string
	CertFile       string
	KeyFile        string
	CAFile         string
	QoS            byte
	ConnectTimeout time.Duration
}

// client is the subset of paho.Client used here.
type client interface {
	IsConnected() bool
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

type Publisher struct {
	// mu serializes connection attempts.
	mu     sync.Mutex
	client client
	qos    byte
	logger *zap.Logger
}

func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	tlsCfg, err := loadTLS(cfg.CertFile, cfg.KeyFile, cfg.CAFile)
	if err != nil {
		return nil, err
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])).
		SetTLSConfig(tlsCfg).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			logger.Info("mqtt connected", zap.String("broker", cfg.Broker))
		})

	return NewPublisherWithClient(paho.NewClient(opts), cfg.QoS, logger), nil
}

func NewPublisherWithClient(c client, qos byte, logger *zap.Logger) *Publisher {
	return &Publisher{client: c, qos: qos, logger: logger}
}

func (p *Publisher) Name() string {
	return "mqtt"
}

func (p *Publisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client.IsConnected() {
		return nil
	}
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.Connect(ctx); err != nil {
		return err
	}
	if err := wait(ctx, p.client.Publish(topic, p.qos, false, payload)); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	}
}

func loadTLS(certFile, keyFile, caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("reading ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", caFile)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
