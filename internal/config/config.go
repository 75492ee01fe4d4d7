package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"stayfinder/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Sweep      SweepConfig      `yaml:"sweep"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	JWTSecret  string          `yaml:"jwt_secret"`
	TokenTTL   string          `yaml:"token_ttl"`
	BcryptCost int             `yaml:"bcrypt_cost"`
	AdminSeed  AdminSeedConfig `yaml:"admin_seed"`
}

// AdminSeedConfig describes the default administrator ensured at startup.
type AdminSeedConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SweepConfig struct {
	Enabled          bool `yaml:"enabled"`
	UnpaidTTLMinutes int  `yaml:"unpaid_ttl_minutes"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before decoding.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth jwt secret is required")
	}

	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid auth token_ttl: %w", err)
	}

	if c.Sweep.UnpaidTTLMinutes < 0 {
		return errors.New("sweep unpaid_ttl_minutes must not be negative")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}

	return nil
}

// TokenTTLDuration returns the parsed token lifetime. Validate guarantees the
// value parses.
func (c AuthConfig) TokenTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return models.DefaultTokenTTL
	}
	return d
}

// UnpaidTTL returns how long a pending booking may stay unpaid.
func (c SweepConfig) UnpaidTTL() time.Duration {
	return time.Duration(c.UnpaidTTLMinutes) * time.Minute
}

// Window returns the rate limit window.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "stayfinder"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Auth.TokenTTL == "" {
		c.Auth.TokenTTL = models.DefaultTokenTTL.String()
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = models.DefaultBcryptCost
	}
	if c.Sweep.UnpaidTTLMinutes == 0 {
		c.Sweep.UnpaidTTLMinutes = int(models.UnpaidBookingTTL / time.Minute)
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = models.RateLimitRequests
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = int(models.RateLimitWindow / time.Second)
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}
