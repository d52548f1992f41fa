// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/store"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	Extraction struct {
		PersistThreshold float64 `mapstructure:"persist_threshold" yaml:"persist_threshold"`
		TemplatesFile    string  `mapstructure:"templates_file" yaml:"templates_file"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`
}

// StorageConfig selects and configures the message/transaction store.
type StorageConfig struct {
	Driver      string        `mapstructure:"driver" yaml:"driver"`
	Path        string        `mapstructure:"path" yaml:"path"`
	DedupWindow time.Duration `mapstructure:"dedup_window" yaml:"dedup_window"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file.
// An empty path searches the default locations.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sms-ledger")
		v.AddConfigPath(".sms-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("SMSLEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Storage defaults
	v.SetDefault("storage.driver", store.DriverSQLite)
	v.SetDefault("storage.path", "data/sms-ledger.db")
	v.SetDefault("storage.dedup_window", time.Duration(0))

	// Extraction defaults
	v.SetDefault("extraction.persist_threshold", 0.5)
	v.SetDefault("extraction.templates_file", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("csv.delimiter", ",")
}

// Validate checks the configuration values. It is applied by
// InitializeConfig and must be called again after overriding fields.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Storage.Driver {
	case store.DriverSQLite:
		if config.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", store.DriverSQLite)
		}
	case store.DriverMemory:
	default:
		return fmt.Errorf("invalid storage driver: %s (must be '%s' or '%s')",
			config.Storage.Driver, store.DriverSQLite, store.DriverMemory)
	}

	if config.Storage.DedupWindow < 0 {
		return fmt.Errorf("storage.dedup_window must not be negative, got: %s", config.Storage.DedupWindow)
	}

	if config.Extraction.PersistThreshold < 0.0 || config.Extraction.PersistThreshold > 1.0 {
		return fmt.Errorf("extraction.persist_threshold must be between 0.0 and 1.0, got: %f", config.Extraction.PersistThreshold)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	return nil
}

// NewLoggerFromConfig builds the application logger from the log section.
func NewLoggerFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}

// NewLoggerFromConfigWithWriter is NewLoggerFromConfig writing to w.
func NewLoggerFromConfigWithWriter(config *Config, w io.Writer) logging.Logger {
	return logging.NewLogrusAdapterWithWriter(config.Log.Level, config.Log.Format, w)
}
