package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from yaml with environment
// overrides applied on top.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Hub struct {
		WriteTimeoutSec int `yaml:"write_timeout_sec"`
		ReadTimeoutSec  int `yaml:"read_timeout_sec"`
		PingIntervalSec int `yaml:"ping_interval_sec"`
	} `yaml:"hub"`
	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Hub.WriteTimeoutSec = 10
	cfg.Hub.ReadTimeoutSec = 60
	cfg.Hub.PingIntervalSec = 30
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.Stream = "ROOM_EVENTS"
	cfg.NATS.SubjectPrefix = "room.events"
	return &cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads the yaml config when present and layers env overrides.
// A missing file is not an error; defaults apply.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.NATS.Enabled = getEnvAsBool("NATS_ENABLED", cfg.NATS.Enabled)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)

	return cfg, nil
}

func (c *Config) writeTimeout() time.Duration {
	return time.Duration(c.Hub.WriteTimeoutSec) * time.Second
}

func (c *Config) readTimeout() time.Duration {
	return time.Duration(c.Hub.ReadTimeoutSec) * time.Second
}

func (c *Config) pingInterval() time.Duration {
	return time.Duration(c.Hub.PingIntervalSec) * time.Second
}
