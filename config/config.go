package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRegistryURL is the mock endpoint holding the user node records.
const DefaultRegistryURL = "https://8a1ec2c94f1a6c63.mokky.dev/eaisUsers"

type Config struct {
	Web       WebConfig       `yaml:"web"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	Registry  RegistryConfig  `yaml:"registry"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
	Log       LogConfig       `yaml:"log"`
}

type WebConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	SessionSecret string        `yaml:"session_secret"`
	SessionWait   time.Duration `yaml:"session_wait"`
	CookieSecure  bool          `yaml:"cookie_secure"`
}

// AuthConfig holds the single console credential. PasswordHash, when set,
// is a bcrypt hash and takes precedence over Password.
type AuthConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

type SessionConfig struct {
	Backend string        `yaml:"backend"` // "cookie" or "redis"
	TTL     time.Duration `yaml:"ttl"`
}

type RegistryConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	RetryMax     int           `yaml:"retry_max"`
	RetryWaitMin time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax time.Duration `yaml:"retry_wait_max"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MessagingConfig struct {
	Backend string      `yaml:"backend"` // "none", "kafka" or "mqtt"
	Topic   string      `yaml:"topic"`
	Kafka   KafkaConfig `yaml:"kafka"`
	MQTT    MQTTConfig  `yaml:"mqtt"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Defaults() *Config {
	return &Config{
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			SessionWait: 2 * time.Second,
		},
		Auth: AuthConfig{
			Username: "admin",
			Password: "password",
		},
		Session: SessionConfig{
			Backend: "cookie",
			TTL:     24 * time.Hour,
		},
		Registry: RegistryConfig{
			BaseURL:      DefaultRegistryURL,
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "eaisdo.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "eaisdo",
				User:     "eaisdo",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Messaging: MessagingConfig{
			Backend: "none",
			Topic:   "eaisdo.nodes",
			MQTT:    MQTTConfig{ClientID: "eaisdo"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Registry.BaseURL == "" {
		return errors.New("registry.base_url is required")
	}
	if c.Registry.RetryMax < 0 {
		return fmt.Errorf("registry.retry_max must not be negative: %d", c.Registry.RetryMax)
	}
	switch c.Session.Backend {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported session backend: %s", c.Session.Backend)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.Messaging.Backend {
	case "none", "kafka", "mqtt":
	default:
		return fmt.Errorf("unsupported messaging backend: %s", c.Messaging.Backend)
	}
	if c.Auth.Username == "" {
		return errors.New("auth.username is required")
	}
	return nil
}

// Save writes the config back as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
