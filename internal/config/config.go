package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mtxos/opsboard/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OPSBOARD_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Cron      CronConfig      `yaml:"cron" toml:"cron"`
	Scheduler SchedulerConfig `yaml:"scheduler" toml:"scheduler"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// DBConfig selects the store. Path is used by sqlite, DSN by mysql.
type DBConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// LogConfig controls the log level and an optional rotated log file.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Path       string `yaml:"path" toml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB" toml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" toml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays" toml:"maxAgeDays"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" toml:"mode"`
}

// AuthConfig enables bearer API keys. When disabled, requests act as the
// default workspace and actor.
type AuthConfig struct {
	Enabled          bool   `yaml:"enabled" toml:"enabled"`
	DefaultWorkspace string `yaml:"defaultWorkspace" toml:"defaultWorkspace"`
	DefaultActor     string `yaml:"defaultActor" toml:"defaultActor"`
}

type CronConfig struct {
	Secret string `yaml:"secret" toml:"secret"`
}

type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	Spec           string `yaml:"spec" toml:"spec"`
	RunOnStart     bool   `yaml:"runOnStart" toml:"runOnStart"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" toml:"timeoutSeconds"`
}

// Timeout returns the per-run timeout, zero meaning none.
func (c SchedulerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the configuration used before the file and environment apply.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "opsboard.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Transport: TransportConfig{Mode: "http"},
		Auth: AuthConfig{
			DefaultWorkspace: "default",
			DefaultActor:     "system",
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			Spec:           scheduler.DefaultSpec,
			TimeoutSeconds: 300,
		},
	}
}

// Load reads configuration from an optional YAML or TOML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setString("SERVER_HOST", &cfg.Server.Host)
	setString("DB_DRIVER", &cfg.DB.Driver)
	setString("DB_PATH", &cfg.DB.Path)
	setString("DB_DSN", &cfg.DB.DSN)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_PATH", &cfg.Log.Path)
	setString("TRANSPORT_MODE", &cfg.Transport.Mode)
	setString("CRON_SECRET", &cfg.Cron.Secret)
	setString("SCHEDULER_SPEC", &cfg.Scheduler.Spec)

	if v := os.Getenv(EnvPrefix + "SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}
	for name, dst := range map[string]*bool{
		"AUTH_ENABLED":      &cfg.Auth.Enabled,
		"SCHEDULER_ENABLED": &cfg.Scheduler.Enabled,
	} {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}
	return nil
}

// Validate rejects settings the server can't start with.
func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for sqlite"))
		}
	case "mysql":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db.driver %q", c.DB.Driver))
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		errs = append(errs, fmt.Errorf("unknown transport.mode %q", c.Transport.Mode))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Scheduler.Enabled {
		if err := scheduler.ValidateSpec(c.Scheduler.Spec); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Scheduler.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("scheduler.timeoutSeconds must not be negative"))
	}
	if !c.Auth.Enabled && c.Auth.DefaultWorkspace == "" {
		errs = append(errs, errors.New("auth.defaultWorkspace is required when auth is disabled"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log.level %q", level)
}
