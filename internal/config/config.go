package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RazorpayConfig struct {
	KeyID         string `yaml:"key_id"`
	KeySecret     string `yaml:"key_secret"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"` // override for tests/sandbox
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTTTL      time.Duration `yaml:"jwt_ttl"`
	AdminAPIKey string        `yaml:"admin_api_key"`
}

type SubscriptionConfig struct {
	GrantDays int `yaml:"grant_days"`
	// LegacyTrackTitle selects the pre-track_id schema where grants are keyed
	// on the track title. Resolved here once, not probed per request.
	LegacyTrackTitle bool `yaml:"legacy_track_title"`
}

type WorkerConfig struct {
	ExpiryInterval    time.Duration `yaml:"expiry_interval"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	StaleAfter        time.Duration `yaml:"stale_after"`
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Razorpay     RazorpayConfig     `yaml:"razorpay"`
	Auth         AuthConfig         `yaml:"auth"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Worker       WorkerConfig       `yaml:"worker"`
	Currency     string             `yaml:"currency"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Auth.JWTTTL <= 0 {
		cfg.Auth.JWTTTL = 7 * 24 * time.Hour
	}
	if cfg.Subscription.GrantDays <= 0 {
		cfg.Subscription.GrantDays = 7
	}
	if cfg.Worker.ExpiryInterval <= 0 {
		cfg.Worker.ExpiryInterval = time.Hour
	}
	if cfg.Worker.ReconcileInterval <= 0 {
		cfg.Worker.ReconcileInterval = 6 * time.Hour
	}
	if cfg.Worker.StaleAfter <= 0 {
		cfg.Worker.StaleAfter = 48 * time.Hour
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return errors.New("razorpay.key_id and razorpay.key_secret are required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}
