package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port     int    `yaml:"port"`
		AdminKey string `yaml:"admin_key"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "postgres" or "sqlite"

		// sqlite
		Path string `yaml:"path"`

		// postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"database"`
	} `yaml:"database"`

	RabbitMQ struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"rabbitmq"`

	Gateway struct {
		BaseURL        string `yaml:"base_url"`
		Secret         string `yaml:"secret"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`

	Timer struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"timer"`
}

// LoadFromFile loads config from a YAML file, applies defaults, and
// validates required fields.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "curbside.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 10
	}

	if cfg.Timer.IntervalSeconds == 0 {
		cfg.Timer.IntervalSeconds = 60
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be in 1..65535")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		// path already defaulted
	case DriverPostgres:
		if c.Database.User == "" {
			problems = append(problems, "database.user is required for postgres")
		}
		if c.Database.Password == "" {
			problems = append(problems, "database.password is required for postgres")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.database is required for postgres")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			problems = append(problems, "database.port must be in 1..65535")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver must be %q or %q", DriverPostgres, DriverSQLite))
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.User == "" {
			problems = append(problems, "rabbitmq.user is required when rabbitmq is enabled")
		}
		if c.RabbitMQ.Password == "" {
			problems = append(problems, "rabbitmq.password is required when rabbitmq is enabled")
		}
		if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
			problems = append(problems, "rabbitmq.port must be in 1..65535")
		}
	}

	if c.Gateway.Secret == "" {
		problems = append(problems, "gateway.secret is required")
	}
	if c.Timer.IntervalSeconds <= 0 {
		problems = append(problems, "timer.interval_seconds must be > 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// GatewayTimeout returns the bounded timeout for gateway calls.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// TimerInterval returns the scheduler tick interval.
func (c *Config) TimerInterval() time.Duration {
	return time.Duration(c.Timer.IntervalSeconds) * time.Second
}
