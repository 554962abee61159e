package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, read from a YAML file with
// environment-variable overrides.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Log          LogConfig          `yaml:"log"`
	Availability AvailabilityConfig `yaml:"availability"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	// DSN is either a postgres URL or a sqlite file path.
	DSN string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// AvailabilityConfig controls the external availability-sync trigger.
type AvailabilityConfig struct {
	// SyncURL is the endpoint of the external sync job. Empty disables
	// outbound calls; events are still logged.
	SyncURL string `yaml:"sync_url"`
	// TimeoutSeconds bounds each trigger call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// ResyncCron schedules the periodic full resync. Empty disables it.
	ResyncCron string `yaml:"resync_cron"`
	// QueueSize bounds the in-process event queue.
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration file if present, applies defaults and
// environment overrides, and validates the result. A missing file is not
// an error; env-only configuration is the local-dev path.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.JWT.TTLMinutes == 0 {
		c.JWT.TTLMinutes = 24 * 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Availability.TimeoutSeconds == 0 {
		c.Availability.TimeoutSeconds = 10
	}
	if c.Availability.QueueSize == 0 {
		c.Availability.QueueSize = 256
	}
}

func (c *Config) overrideWithEnv() {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.JWT.TTLMinutes = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("AVAILABILITY_SYNC_URL"); v != "" {
		c.Availability.SyncURL = v
	}
	if v := os.Getenv("AVAILABILITY_RESYNC_CRON"); v != "" {
		c.Availability.ResyncCron = v
	}
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required (database.dsn or DATABASE_URL)")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (jwt.secret or JWT_SECRET)")
	}
	return nil
}
