// Package config handles YAML configuration for netinv.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Region    string          `yaml:"region"`
	Registry  RegistryConfig  `yaml:"registry"`
	Fabric    FabricConfig    `yaml:"fabric"`
	Collector CollectorConfig `yaml:"collector"`
	Sink      SinkConfig      `yaml:"sink"`
	Consumer  ConsumerConfig  `yaml:"consumer"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// RegistryConfig locates the account registry table.
type RegistryConfig struct {
	Table string `yaml:"table"`
}

// FabricConfig holds the messaging fabric endpoints.
type FabricConfig struct {
	TopicARN         string  `yaml:"topic_arn"`
	QueueURL         string  `yaml:"queue_url"`
	BatchSize        int32   `yaml:"batch_size"`
	WaitSeconds      int32   `yaml:"wait_seconds"`
	PublishPerSecond float64 `yaml:"publish_per_second"`
}

// CollectorConfig holds credential delegation settings.
type CollectorConfig struct {
	RoleName string `yaml:"role_name"`
}

// SinkConfig holds the output bucket settings.
type SinkConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// ConsumerConfig holds batch processing settings.
type ConsumerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// MetricsConfig holds the metrics server settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Region: "us-east-1",
		Fabric: FabricConfig{
			BatchSize:   10,
			WaitSeconds: 20,
		},
		Collector: CollectorConfig{},
		Sink: SinkConfig{
			Prefix: "network-data/",
		},
		Consumer: ConsumerConfig{
			Concurrency: 4,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// ValidateDispatch checks the fields the dispatch command needs.
func (c *Config) ValidateDispatch() error {
	if c.Registry.Table == "" {
		return fmt.Errorf("registry.table is required")
	}
	if c.Fabric.TopicARN == "" {
		return fmt.Errorf("fabric.topic_arn is required")
	}
	return nil
}

// ValidateConsume checks the fields the consume command needs.
func (c *Config) ValidateConsume() error {
	if c.Fabric.QueueURL == "" {
		return fmt.Errorf("fabric.queue_url is required")
	}
	if c.Sink.Bucket == "" {
		return fmt.Errorf("sink.bucket is required")
	}
	return nil
}
