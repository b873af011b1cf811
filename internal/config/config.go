// Package config loads server configuration from defaults, an optional
// config file, and SPLITLEDGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SPLITLEDGER_DB_PATH.
const EnvPrefix = "SPLITLEDGER"

type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Audit struct {
		Enabled  bool   `mapstructure:"enabled"`
		Schedule string `mapstructure:"schedule"`
	} `mapstructure:"audit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.path", "./data/ledger.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.schedule", "@every 1h")
}

// Load reads configuration. A .env file in the working directory is loaded
// into the environment first when present. configPath names a YAML file;
// empty means look for ./config.yaml and ./configs/config.yaml, both optional.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	var fileLookupError viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &fileLookupError) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.DB.Path == "" {
		return errors.New("db.path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	if c.Audit.Enabled {
		if _, err := cron.ParseStandard(c.Audit.Schedule); err != nil {
			return fmt.Errorf("audit.schedule %q: %w", c.Audit.Schedule, err)
		}
	}
	return nil
}
