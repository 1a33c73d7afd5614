// Package config loads periphcheck settings from a TOML file, the
// environment and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/periphcheck/internal/archive"
	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "PERIPHCHECK"
	DefaultInterval  = time.Second
	DefaultLogLevel  = "info"

	configName = "periphcheck"
)

type Config struct {
	Interval       time.Duration
	Duration       time.Duration
	Device         string
	LogLevel       string
	HistorySize    int
	CPURounds      int
	Archive        bool
	ArchiveDB      string
	MetricsAddress string
}

// flagNames maps configuration keys to their command-line spelling.
var flagNames = map[string]string{
	KeyInterval:       "interval",
	KeyDuration:       "duration",
	KeyDevice:         "device",
	KeyLogLevel:       "log-level",
	KeyHistorySize:    "history-size",
	KeyCPURounds:      "cpu-rounds",
	KeyArchive:        "archive",
	KeyArchiveDB:      "archive-db",
	KeyMetricsAddress: "metrics-address",
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Duration(flagNames[KeyInterval], DefaultInterval, "Interval between samples of interval-driven diagnostics")
	fs.Duration(flagNames[KeyDuration], 0, "Stop a run after this long (0 runs until criteria or interrupt)")
	fs.String(flagNames[KeyDevice], "", "Device ID to test")
	fs.String(flagNames[KeyLogLevel], DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Int(flagNames[KeyHistorySize], history.DefaultCapacity, "Finished runs kept in memory")
	fs.Int(flagNames[KeyCPURounds], catalog.DefaultCPURounds, "CPU stress workload size per frame")
	fs.Bool(flagNames[KeyArchive], false, "Store run summaries in the sqlite archive")
	fs.String(flagNames[KeyArchiveDB], "", "Path of the sqlite archive")
	fs.String(flagNames[KeyMetricsAddress], "", "Serve Prometheus metrics on this address")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyInterval, DefaultInterval)
	v.SetDefault(KeyDuration, time.Duration(0))
	v.SetDefault(KeyDevice, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyHistorySize, history.DefaultCapacity)
	v.SetDefault(KeyCPURounds, catalog.DefaultCPURounds)
	v.SetDefault(KeyArchive, false)
	v.SetDefault(KeyArchiveDB, archive.DefaultConfig().DBPath)
	v.SetDefault(KeyMetricsAddress, "")
}

// Load reads the configuration. Precedence from lowest to highest is
// defaults, config file, environment, flags.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	if o.flags != nil {
		for key, name := range flagNames {
			flag := o.flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errFactory.Wrap(ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{
		Interval:       v.GetDuration(KeyInterval),
		Duration:       v.GetDuration(KeyDuration),
		Device:         v.GetString(KeyDevice),
		LogLevel:       v.GetString(KeyLogLevel),
		HistorySize:    v.GetInt(KeyHistorySize),
		CPURounds:      v.GetInt(KeyCPURounds),
		Archive:        v.GetBool(KeyArchive),
		ArchiveDB:      v.GetString(KeyArchiveDB),
		MetricsAddress: v.GetString(KeyMetricsAddress),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("config_file", v.ConfigFileUsed()).
		Dur("interval", cfg.Interval).
		Str("log_level", cfg.LogLevel).
		Bool("archive", cfg.Archive).
		Msg("Configuration loaded")

	return cfg, nil
}

func readConfigFile(v *viper.Viper, o options) error {
	path := o.configPath
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil
		}
		return errors.New().Wrap(ErrReadConfig, err).WithMessage("Failed to read config file")
	}
	return nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.Interval.String())
	}
	if c.Duration < 0 {
		return errFactory.WithData(ErrInvalidDuration, c.Duration.String())
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.HistorySize < 1 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Key   string
			Value int
		}{KeyHistorySize, c.HistorySize})
	}
	if c.CPURounds < 1 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Key   string
			Value int
		}{KeyCPURounds, c.CPURounds})
	}
	if c.Archive && c.ArchiveDB == "" {
		return errFactory.New(archive.ErrInvalidDBPath)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logger.LogLevel {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// ArchiveConfig derives the archive settings.
func (c *Config) ArchiveConfig() archive.Config {
	cfg := archive.DefaultConfig()
	cfg.Enabled = c.Archive
	if c.ArchiveDB != "" {
		cfg.DBPath = c.ArchiveDB
	}
	return cfg
}
