// Package config loads gateway configuration from a config file, RESQL_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/resql/internal/tracing"
)

// Configuration keys.
const (
	KeySavedQueriesDir    = "saved_queries_dir"
	KeyDatabase           = "database"
	KeyMaxOpenConns       = "max_open_conns"
	KeyListen             = "listen"
	KeyReadTimeout        = "read_timeout"
	KeyWriteTimeout       = "write_timeout"
	KeyShutdownTimeout    = "shutdown_timeout"
	KeyBatchConcurrency   = "batch.concurrency"
	KeyCacheTTL           = "cache.ttl"
	KeyTracingExporter    = "tracing.exporter"
	KeyTracingServiceName = "tracing.service_name"
)

// EnvPrefix prefixes every environment variable, e.g. RESQL_LISTEN or
// RESQL_BATCH_CONCURRENCY.
const EnvPrefix = "RESQL"

// DefaultConfigName is looked up in the working directory when no config
// file is given.
const DefaultConfigName = "resql"

// Config is the complete gateway configuration.
type Config struct {
	SavedQueriesDir string         `mapstructure:"saved_queries_dir" yaml:"saved_queries_dir"`
	Database        string         `mapstructure:"database" yaml:"database"`
	MaxOpenConns    int            `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	Listen          string         `mapstructure:"listen" yaml:"listen"`
	ReadTimeout     time.Duration  `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration  `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Batch           BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Cache           CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Tracing         tracing.Config `mapstructure:"tracing" yaml:"tracing"`
}

// BatchConfig configures batch execution.
type BatchConfig struct {
	// Concurrency is how many entries of one batch may run at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// CacheConfig configures the GET result cache.
type CacheConfig struct {
	// TTL of cached results. Zero disables the cache.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		MaxOpenConns:    1,
		Listen:          ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Batch:           BatchConfig{Concurrency: 1},
		Cache:           CacheConfig{TTL: 0},
		Tracing:         tracing.DefaultConfig(),
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"saved-queries-dir": KeySavedQueriesDir,
	"db":                KeyDatabase,
	"max-open-conns":    KeyMaxOpenConns,
	"listen":            KeyListen,
	"batch-concurrency": KeyBatchConcurrency,
	"cache-ttl":         KeyCacheTTL,
	"trace-exporter":    KeyTracingExporter,
}

// BindFlags binds the flags in fs that correspond to configuration keys.
// Flags not present in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration into a Config.
//
// configFile names an explicit YAML or TOML file, which must exist. When
// it is empty, resql.yaml in the working directory is used if present.
func Load(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeySavedQueriesDir, d.SavedQueriesDir)
	v.SetDefault(KeyDatabase, d.Database)
	v.SetDefault(KeyMaxOpenConns, d.MaxOpenConns)
	v.SetDefault(KeyListen, d.Listen)
	v.SetDefault(KeyReadTimeout, d.ReadTimeout)
	v.SetDefault(KeyWriteTimeout, d.WriteTimeout)
	v.SetDefault(KeyShutdownTimeout, d.ShutdownTimeout)
	v.SetDefault(KeyBatchConcurrency, d.Batch.Concurrency)
	v.SetDefault(KeyCacheTTL, d.Cache.TTL)
	v.SetDefault(KeyTracingExporter, d.Tracing.Exporter)
	v.SetDefault(KeyTracingServiceName, d.Tracing.ServiceName)
}

// Validate reports every problem that would stop the server from starting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SavedQueriesDir) == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeySavedQueriesDir))
	}
	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyDatabase))
	}
	if c.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", KeyMaxOpenConns))
	}
	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyListen))
	}
	for key, d := range map[string]time.Duration{
		KeyReadTimeout:     c.ReadTimeout,
		KeyWriteTimeout:    c.WriteTimeout,
		KeyShutdownTimeout: c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", KeyBatchConcurrency))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyCacheTTL))
	}
	switch c.Tracing.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported exporter %q", KeyTracingExporter, c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}
