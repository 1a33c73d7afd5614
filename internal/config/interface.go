package config

import "github.com/spf13/pflag"

// Configuration keys shared by the file, the environment and flags.
const (
	KeyInterval       = "interval"
	KeyDuration       = "duration"
	KeyDevice         = "device"
	KeyLogLevel       = "log_level"
	KeyHistorySize    = "history_size"
	KeyCPURounds      = "cpu_rounds"
	KeyArchive        = "archive"
	KeyArchiveDB      = "archive_db"
	KeyMetricsAddress = "metrics_address"
)

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

type options struct {
	configPath string
	envPrefix  string
	flags      *pflag.FlagSet
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix.
// Default is "PERIPHCHECK".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithFlags binds flags registered by RegisterFlags. Flags the user set
// override the file and the environment.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *options) error {
		o.flags = fs
		return nil
	}
}
