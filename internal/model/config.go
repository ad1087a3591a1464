package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig describes the remote finance backend.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://api.example.com/api/v1.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PageSize is the limit sent with feed requests.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// IncludeRead asks the backend to return read notifications too.
	IncludeRead bool `mapstructure:"include_read" yaml:"include_read"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// BreakerConfig tunes the circuit breaker in front of the remote API.
type BreakerConfig struct {
	MaxFailures    int `mapstructure:"max_failures" yaml:"max_failures"`
	OpenTimeoutSec int `mapstructure:"open_timeout_sec" yaml:"open_timeout_sec"`
}

// StorageConfig selects the local notification store backend.
type StorageConfig struct {
	// Backend is "sqlite" or "redis".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	// Namespace prefixes every key written to Redis.
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// NotificationsConfig holds local notification behavior.
type NotificationsConfig struct {
	// SeedDemo seeds the demonstration set on first run.
	SeedDemo bool `mapstructure:"seed_demo" yaml:"seed_demo"`

	// LargeTransactionThreshold is the amount above which a recorded
	// transaction produces a local alert.
	LargeTransactionThreshold float64 `mapstructure:"large_transaction_threshold" yaml:"large_transaction_threshold"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Breaker       BreakerConfig       `mapstructure:"breaker" yaml:"breaker"`
	Storage       StorageConfig       `mapstructure:"storage" yaml:"storage"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/fintrack, or the working directory when
// the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "fintrack")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/fintrack/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:     "http://localhost:8000/api/v1",
			PageSize:    50,
			IncludeRead: true,
			TimeoutSec:  30,
			MaxRetries:  3,
		},
		Breaker: BreakerConfig{
			MaxFailures:    3,
			OpenTimeoutSec: 30,
		},
		Storage: StorageConfig{
			Backend:   "sqlite",
			Path:      filepath.Join(dir, "fintrack.db"),
			RedisAddr: "localhost:6379",
			Namespace: "fintrack",
		},
		Notifications: NotificationsConfig{
			SeedDemo:                  true,
			LargeTransactionThreshold: 500,
		},
		Display: DisplayConfig{
			Theme:           "default",
			PollIntervalSec: 120,
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "fintrack.log"),
			Level: "info",
		},
	}
}

// setDefaults mirrors defaultAppConfig into v so that partially
// specified files still resolve every key.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.page_size", cfg.API.PageSize)
	v.SetDefault("api.include_read", cfg.API.IncludeRead)
	v.SetDefault("api.timeout_sec", cfg.API.TimeoutSec)
	v.SetDefault("api.max_retries", cfg.API.MaxRetries)
	v.SetDefault("breaker.max_failures", cfg.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout_sec", cfg.Breaker.OpenTimeoutSec)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis_addr", cfg.Storage.RedisAddr)
	v.SetDefault("storage.redis_password", cfg.Storage.RedisPassword)
	v.SetDefault("storage.redis_db", cfg.Storage.RedisDB)
	v.SetDefault("storage.namespace", cfg.Storage.Namespace)
	v.SetDefault("notifications.seed_demo", cfg.Notifications.SeedDemo)
	v.SetDefault("notifications.large_transaction_threshold", cfg.Notifications.LargeTransactionThreshold)
	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("display.poll_interval_sec", cfg.Display.PollIntervalSec)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with FINTRACK_ override file values
// (e.g. FINTRACK_API_BASE_URL). If the file does not exist, defaults and
// environment overrides still apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("fintrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, defaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.PageSize <= 0 {
		c.API.PageSize = 50
	}
	if c.Display.PollIntervalSec <= 0 {
		c.Display.PollIntervalSec = 120
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("breaker", cfg.Breaker)
	v.Set("storage", cfg.Storage)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
