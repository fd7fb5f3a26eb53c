// Package config loads signal-io settings and builds the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers accepted by store.driver and --sink.
const (
	DriverNone       = "none"
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverClickhouse = "clickhouse"
)

// ErrUnknownDriver is returned for a store driver outside the known set.
var ErrUnknownDriver = eris.New("unknown store driver")

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig selects and addresses the database sink.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	ClickhouseDSN string `yaml:"clickhouse_dsn" mapstructure:"clickhouse_dsn"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// IngestConfig holds ingestion defaults.
type IngestConfig struct {
	IssueLog string `yaml:"issue_log" mapstructure:"issue_log"`
}

// MetricsConfig configures the metrics dump written after each command.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	Textfile  string `yaml:"textfile" mapstructure:"textfile"`
}

// Load reads configuration from signal-io.yaml (optional) and SIGNALIO_* env vars.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("signal-io")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SIGNALIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("store.driver", DriverNone)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.clickhouse_dsn", "")
	v.SetDefault("store.sqlite_path", "workspace/signals.db")
	v.SetDefault("ingest.issue_log", "workspace/logs/ingest_errors.jsonl")
	v.SetDefault("metrics.namespace", "signal_io")
	v.SetDefault("metrics.textfile", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := ValidateDriver(cfg.Store.Driver); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateDriver checks a store driver name.
func ValidateDriver(driver string) error {
	switch driver {
	case DriverNone, DriverMemory, DriverSQLite, DriverPostgres, DriverClickhouse:
		return nil
	}
	return eris.Wrapf(ErrUnknownDriver, "%q", driver)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
