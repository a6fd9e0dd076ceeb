package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"lawn-irrigation/internal/domain"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Shadow ShadowConfig `yaml:"shadow"`
	Skill  SkillConfig  `yaml:"skill"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int `yaml:"rate_limit"`
	// TrustProxy rate-limits on X-Forwarded-For. Enable only behind a proxy
	// that sets the header itself.
	TrustProxy bool `yaml:"trust_proxy"`
}

type ShadowConfig struct {
	Transport string `yaml:"transport"`
	ThingName string `yaml:"thing_name"`
	// Topic overrides the update topic derived from ThingName.
	Topic    string     `yaml:"topic"`
	Endpoint string     `yaml:"endpoint"`
	Region   string     `yaml:"region"`
	Timeout  string     `yaml:"timeout"`
	MQTT     MQTTConfig `yaml:"mqtt"`
	NATS     NATSConfig `yaml:"nats"`
}

type MQTTConfig struct {
	ClientID string `yaml:"client_id"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
	QoS      byte   `yaml:"qos"`
	Port     int    `yaml:"port"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type SkillConfig struct {
	ControlPoint  string `yaml:"control_point"`
	SprinkleMS    int64  `yaml:"sprinkle_ms"`
	WaterMS       int64  `yaml:"water_ms"`
	OffMS         int64  `yaml:"off_ms"`
	LaunchAction  string `yaml:"launch_action"`
	DefaultLocale string `yaml:"default_locale"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	TransportIoTData = "iotdata"
	TransportMQTT    = "mqtt"
	TransportNATS    = "nats"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 30
	}
	if c.Shadow.Transport == "" {
		c.Shadow.Transport = TransportIoTData
	}
	if c.Shadow.ThingName == "" {
		c.Shadow.ThingName = "si-03"
	}
	if c.Shadow.Endpoint == "" {
		c.Shadow.Endpoint = "data.iot.ap-southeast-2.amazonaws.com"
	}
	if c.Shadow.Timeout == "" {
		c.Shadow.Timeout = "10s"
	}
	if c.Shadow.MQTT.ClientID == "" {
		c.Shadow.MQTT.ClientID = "irrigation-skill"
	}
	if c.Shadow.MQTT.QoS == 0 {
		c.Shadow.MQTT.QoS = 1
	}
	if c.Shadow.MQTT.Port == 0 {
		c.Shadow.MQTT.Port = 8883
	}
	if c.Shadow.NATS.URL == "" {
		c.Shadow.NATS.URL = "nats://127.0.0.1:4222"
	}
	if c.Skill.ControlPoint == "" {
		c.Skill.ControlPoint = domain.DefaultControlPoint
	}
	defaults := domain.DefaultDurations()
	if c.Skill.SprinkleMS == 0 {
		c.Skill.SprinkleMS = defaults.Sprinkle
	}
	if c.Skill.WaterMS == 0 {
		c.Skill.WaterMS = defaults.Water
	}
	if c.Skill.OffMS == 0 {
		c.Skill.OffMS = defaults.Off
	}
	if c.Skill.LaunchAction == "" {
		c.Skill.LaunchAction = string(domain.ActionWater)
	}
	if c.Skill.DefaultLocale == "" {
		c.Skill.DefaultLocale = "en"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Shadow.Transport {
	case TransportIoTData, TransportMQTT, TransportNATS:
	default:
		errs = append(errs, fmt.Errorf("shadow.transport: unknown transport %q", c.Shadow.Transport))
	}

	if _, err := c.ShadowTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("shadow.timeout: %w", err))
	}
	if c.Shadow.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("shadow.mqtt.qos: must be 0, 1 or 2, got %d", c.Shadow.MQTT.QoS))
	}
	if c.Shadow.Transport == TransportMQTT && (c.Shadow.MQTT.CertFile == "" || c.Shadow.MQTT.KeyFile == "") {
		errs = append(errs, errors.New("shadow.mqtt: cert_file and key_file are required"))
	}

	if c.Skill.SprinkleMS < 0 || c.Skill.WaterMS < 0 || c.Skill.OffMS < 0 {
		errs = append(errs, errors.New("skill: durations must not be negative"))
	}
	if c.Skill.LaunchAction != "none" {
		if _, err := domain.ParseAction(c.Skill.LaunchAction); err != nil {
			errs = append(errs, fmt.Errorf("skill.launch_action: %w", err))
		}
	}

	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit: must not be negative"))
	}

	return errors.Join(errs...)
}

// UpdateTopic is the shadow update topic, explicit or derived from the thing name.
func (c *Config) UpdateTopic() string {
	if c.Shadow.Topic != "" {
		return c.Shadow.Topic
	}
	return domain.ShadowUpdateTopic(c.Shadow.ThingName)
}

func (c *Config) ShadowTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Shadow.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}

func (c *Config) Durations() domain.Durations {
	return domain.Durations{
		Sprinkle: c.Skill.SprinkleMS,
		Water:    c.Skill.WaterMS,
		Off:      c.Skill.OffMS,
	}
}

// MQTTBroker is the TLS broker URL for the shadow endpoint.
func (c *Config) MQTTBroker() string {
	return fmt.Sprintf("ssl://%s:%d", c.Shadow.Endpoint, c.Shadow.MQTT.Port)
}
