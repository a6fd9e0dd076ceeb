package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lawn-irrigation/config"
	"lawn-irrigation/internal/application"
	"lawn-irrigation/internal/i18n"
	"lawn-irrigation/internal/infra/iotdata"
	"lawn-irrigation/internal/infra/mqtt"
	"lawn-irrigation/internal/infra/nats"
)

func newTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (application.ShadowTransport, func(), error) {
	noop := func() {}

	switch cfg.Shadow.Transport {
	case config.TransportIoTData:
		client, err := iotdata.NewClient(ctx, cfg.Shadow.Endpoint, cfg.Shadow.Region)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case config.TransportMQTT:
		timeout, err := cfg.ShadowTimeout()
		if err != nil {
			return nil, noop, fmt.Errorf("shadow timeout: %w", err)
		}
		pub, err := mqtt.NewPublisher(mqtt.Config{
			Broker:         cfg.MQTTBroker(),
			ClientID:       cfg.Shadow.MQTT.ClientID,
			CertFile:       cfg.Shadow.MQTT.CertFile,
			KeyFile:        cfg.Shadow.MQTT.KeyFile,
			CAFile:         cfg.Shadow.MQTT.CAFile,
			QoS:            cfg.Shadow.MQTT.QoS,
			ConnectTimeout: timeout,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return pub, closeWith(pub.Close, "mqtt", logger), nil

	case config.TransportNATS:
		pub, err := nats.Connect(cfg.Shadow.NATS.URL, logger)
		if err != nil {
			return nil, noop, err
		}
		return pub, closeWith(pub.Close, "nats", logger), nil

	default:
		return nil, noop, fmt.Errorf("unknown shadow transport %q", cfg.Shadow.Transport)
	}
}

func closeWith(close func() error, name string, logger *zap.Logger) func() {
	return func() {
		if err := close(); err != nil {
			logger.Warn("closing shadow transport", zap.String("transport", name), zap.Error(err))
		}
	}
}

// dryRunTransport logs the document instead of sending it.
type dryRunTransport struct {
	logger *zap.Logger
}

func (d dryRunTransport) Name() string { return "dry-run" }

func (d dryRunTransport) Publish(_ context.Context, topic string, payload []byte) error {
	d.logger.Info("dry run, shadow update not sent", zap.String("topic", topic), zap.ByteString("payload", payload))
	return nil
}

func newSkill(cfg *config.Config, transport application.ShadowTransport, logger *zap.Logger) (*application.Skill, error) {
	timeout, err := cfg.ShadowTimeout()
	if err != nil {
		return nil, fmt.Errorf("shadow timeout: %w", err)
	}

	catalog, err := i18n.Load(i18n.WithDefaultLocale(cfg.Skill.DefaultLocale))
	if err != nil {
		return nil, fmt.Errorf("loading locale bundles: %w", err)
	}

	publisher := application.NewShadowPublisher(transport, cfg.UpdateTopic(), timeout, logger)

	return application.NewSkill(application.SkillConfig{
		ControlPoint: cfg.Skill.ControlPoint,
		Durations:    cfg.Durations(),
		LaunchAction: cfg.Skill.LaunchAction,
	}, publisher, catalog, logger)
}
