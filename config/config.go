package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Devices DevicesConfig `yaml:"devices"`
	Remote  RemoteConfig  `yaml:"remote"`
	HTTP    HTTPConfig    `yaml:"http"`
	Share   ShareConfig   `yaml:"share"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL       string `yaml:"base_url"`
	ServiceToken  string `yaml:"service_token"`
	TokenLifetime string `yaml:"token_lifetime"`
	MediaType     string `yaml:"media_type"`
	Timeout       string `yaml:"timeout"`
}

type DeviceConfig struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	ID    string `yaml:"id"`
}

type DevicesConfig struct {
	Primary   DeviceConfig   `yaml:"primary"`
	Auxiliary []DeviceConfig `yaml:"auxiliary"`
}

type RemoteConfig struct {
	ReconcileDelay   string `yaml:"reconcile_delay"`
	StatusClearDelay string `yaml:"status_clear_delay"`
}

// HTTPConfig.RateLimit is requests per minute per client; a negative value
// disables limiting. TrustProxy keys the limiter on forwarding headers and
// should only be set behind a reverse proxy.
type HTTPConfig struct {
	Addr       string `yaml:"addr"`
	AuthToken  string `yaml:"auth_token"`
	RateLimit  int    `yaml:"rate_limit"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://enterprise.smartthings.com"
	}
	if c.API.TokenLifetime == "" {
		c.API.TokenLifetime = "2h"
	}
	if c.API.MediaType == "" {
		c.API.MediaType = "application/vnd.smartthings+json;v=2"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "15s"
	}
	if c.Devices.Primary.Name == "" {
		c.Devices.Primary.Name = "tv"
	}
	if c.Remote.ReconcileDelay == "" {
		c.Remote.ReconcileDelay = "1s"
	}
	if c.Remote.StatusClearDelay == "" {
		c.Remote.StatusClearDelay = "3s"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 120
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "smart-remote"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

func (c *Config) validate() error {
	if c.API.ServiceToken == "" {
		return errors.New("api.service_token is required")
	}
	if c.Devices.Primary.ID == "" {
		return errors.New("devices.primary.id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}
