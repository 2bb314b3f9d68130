package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Image backend names.
const (
	ImageBackendFS     = "fs"
	ImageBackendGridFS = "gridfs"
)

// Session backend names.
const (
	SessionBackendKeyring = "keyring"
	SessionBackendFile    = "file"
	SessionBackendRedis   = "redis"
)

// StoreConfig selects and configures the relational store.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// PostgresDSN is the connection string used by the postgres driver.
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`

	// TimeoutSec bounds every individual store call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ImageConfig configures proof image storage.
type ImageConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"`
	Dir           string `mapstructure:"dir" yaml:"dir"`
	PublicBaseURL string `mapstructure:"public_base_url" yaml:"public_base_url"`
	MaxBytes      int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
	Bucket        string `mapstructure:"bucket" yaml:"bucket"`
}

// SessionConfig configures where the logged-in identity is persisted.
type SessionConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"`
	Profile       string `mapstructure:"profile" yaml:"profile"`
	FilePath      string `mapstructure:"file_path" yaml:"file_path"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// ServerConfig configures the HTTP side server for images and metrics.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures the application log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// Timezone names the IANA zone used to decide "today". Empty means local.
	Timezone            string `mapstructure:"timezone" yaml:"timezone"`
	FeedLimit           int    `mapstructure:"feed_limit" yaml:"feed_limit"`
	ReminderIntervalSec int    `mapstructure:"reminder_interval_sec" yaml:"reminder_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Images  ImageConfig   `mapstructure:"images" yaml:"images"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// Location resolves Display.Timezone, falling back to time.Local.
func (c *AppConfig) Location() *time.Location {
	if c.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StoreTimeout returns the per-call store deadline.
func (c *AppConfig) StoreTimeout() time.Duration {
	if c.Store.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Store.TimeoutSec) * time.Second
}

// ConfigDir returns ~/.config/wellness, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "wellness")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/wellness/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := ConfigDir()

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", filepath.Join(dir, "wellness.db"))
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.timeout_sec", 10)

	v.SetDefault("images.backend", ImageBackendFS)
	v.SetDefault("images.dir", filepath.Join(dir, "images"))
	v.SetDefault("images.public_base_url", "http://localhost:8085")
	v.SetDefault("images.max_bytes", 5*1024*1024)
	v.SetDefault("images.mongo_uri", "")
	v.SetDefault("images.mongo_database", "wellness")
	v.SetDefault("images.bucket", "todo-images")

	v.SetDefault("session.backend", SessionBackendKeyring)
	v.SetDefault("session.profile", "default")
	v.SetDefault("session.file_path", filepath.Join(dir, "session.json"))
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":8085")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dir, "wellness.log"))
	v.SetDefault("log.json", true)

	v.SetDefault("display.timezone", "")
	v.SetDefault("display.feed_limit", 100)
	v.SetDefault("display.reminder_interval_sec", 300)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WELLNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with WELLNESS_ override file values. If the
// file does not exist, defaults (plus environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.FeedLimit <= 0 {
		cfg.Display.FeedLimit = 100
	}
	if cfg.Images.MaxBytes <= 0 {
		cfg.Images.MaxBytes = 5 * 1024 * 1024
	}

	return cfg, nil
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

	v.Set("store", cfg.Store)
	v.Set("images", cfg.Images)
	v.Set("session", cfg.Session)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// InitConfig writes a config file holding only the defaults when none exists
// at path, so first-run users have a file to edit. Environment overrides are
// not persisted. It reports whether a file was created.
func InitConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking config %s: %w", path, err)
	}

	v := viper.New()
	setDefaults(v)

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return false, fmt.Errorf("building default config: %w", err)
	}
	if err := SaveConfig(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}
