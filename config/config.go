package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Codes      CodesConfig      `yaml:"codes"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// CodesConfig controls support code issuance.
type CodesConfig struct {
	TTLMinutes int           `yaml:"ttl_minutes"`
	TTL        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// SessionsConfig controls session credential issuance.
type SessionsConfig struct {
	TTLSeconds    int           `yaml:"ttl_seconds"`
	TTL           time.Duration `yaml:"-"`
	ServerAddress string        `yaml:"server_address"`
}

// SweeperConfig controls the background liveness/expiry sweep.
type SweeperConfig struct {
	IntervalSeconds          int           `yaml:"interval_seconds"`
	Interval                 time.Duration `yaml:"-"`
	LivenessThresholdSeconds int           `yaml:"liveness_threshold_seconds"`
	LivenessThreshold        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./data/support.db"
	}

	if cfg.Codes.TTLMinutes <= 0 {
		cfg.Codes.TTLMinutes = 30
	}
	cfg.Codes.TTL = time.Duration(cfg.Codes.TTLMinutes) * time.Minute

	if cfg.Sessions.TTLSeconds <= 0 {
		cfg.Sessions.TTLSeconds = 120
	}
	cfg.Sessions.TTL = time.Duration(cfg.Sessions.TTLSeconds) * time.Second
	if cfg.Sessions.ServerAddress == "" {
		cfg.Sessions.ServerAddress = "localhost:21117"
	}

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 30
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
	if cfg.Sweeper.LivenessThresholdSeconds <= 0 {
		cfg.Sweeper.LivenessThresholdSeconds = 90
	}
	cfg.Sweeper.LivenessThreshold = time.Duration(cfg.Sweeper.LivenessThresholdSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
