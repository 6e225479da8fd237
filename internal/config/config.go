// Package config handles configuration loading for the event study.
// It supports YAML config files with environment variable overrides and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/eventstudy/internal/analysis/bootstrap"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/study"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "EVENTSTUDY"

// Config represents the complete application configuration.
type Config struct {
	Study     StudyConfig     `mapstructure:"study"     yaml:"study"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap" yaml:"bootstrap"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	Report    ReportConfig    `mapstructure:"report"    yaml:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// StudyConfig holds event window settings.
type StudyConfig struct {
	Benchmark     string `mapstructure:"benchmark"       yaml:"benchmark"`
	UseLogReturns bool   `mapstructure:"use_log_returns" yaml:"use_log_returns"`
	WindowBefore  int    `mapstructure:"window_before"   yaml:"window_before"` // calendar days
	WindowAfter   int    `mapstructure:"window_after"    yaml:"window_after"`  // calendar days
	Workers       int    `mapstructure:"workers"         yaml:"workers"`
}

// BootstrapConfig holds resampling settings.
type BootstrapConfig struct {
	Iterations      int     `mapstructure:"iterations"       yaml:"iterations"`
	LowerPercentile float64 `mapstructure:"lower_percentile" yaml:"lower_percentile"`
	UpperPercentile float64 `mapstructure:"upper_percentile" yaml:"upper_percentile"`
	Seed            uint64  `mapstructure:"seed"             yaml:"seed"`
	Workers         int     `mapstructure:"workers"          yaml:"workers"`
}

// ProviderConfig selects and tunes the price provider.
type ProviderConfig struct {
	Name           string `mapstructure:"name"             yaml:"name"` // "yfinance", "csvdir", "fmp"
	DataDir        string `mapstructure:"data_dir"         yaml:"data_dir"`
	TimeoutSec     int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
	MaxRetries     int    `mapstructure:"max_retries"      yaml:"max_retries"`
	RequestsPerSec int    `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	CacheTTLSec    int    `mapstructure:"cache_ttl_sec"    yaml:"cache_ttl_sec"`
	FMPKey         string `mapstructure:"fmp_key"          yaml:"fmp_key"`
	Fallback       bool   `mapstructure:"fallback"         yaml:"fallback"` // try the other providers when the default fails
}

// ReportConfig holds output settings.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	TopN      int    `mapstructure:"top_n"      yaml:"top_n"`
	Title     string `mapstructure:"title"      yaml:"title"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.eventstudy/config.yaml (home directory)
//  3. /etc/eventstudy/config.yaml (system)
//
// A .env file in the working directory is loaded first; variables already
// set in the environment win. Environment variables override config file
// values. Format: EVENTSTUDY_<SECTION>_<KEY>, e.g. EVENTSTUDY_STUDY_BENCHMARK.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".eventstudy"))
	v.AddConfigPath("/etc/eventstudy")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Study defaults
	v.SetDefault("study.benchmark", "^GSPC")
	v.SetDefault("study.use_log_returns", true)
	v.SetDefault("study.window_before", 10)
	v.SetDefault("study.window_after", 10)
	v.SetDefault("study.workers", 4)

	// Bootstrap defaults
	v.SetDefault("bootstrap.iterations", 10000)
	v.SetDefault("bootstrap.lower_percentile", 2.5)
	v.SetDefault("bootstrap.upper_percentile", 97.5)
	v.SetDefault("bootstrap.seed", 42)
	v.SetDefault("bootstrap.workers", 1)

	// Provider defaults
	v.SetDefault("provider.name", "yfinance")
	v.SetDefault("provider.data_dir", "./data/prices")
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.requests_per_sec", 5)
	v.SetDefault("provider.cache_ttl_sec", 900) // 15 minutes
	v.SetDefault("provider.fmp_key", "")
	v.SetDefault("provider.fallback", false)

	// Report defaults
	v.SetDefault("report.output_dir", "./out")
	v.SetDefault("report.top_n", 5)
	v.SetDefault("report.title", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads the FMP key from its conventional variable when the
// prefixed one is unset.
func overrideFromEnv(cfg *Config) {
	if cfg.Provider.FMPKey == "" {
		cfg.Provider.FMPKey = os.Getenv(envFMPKey)
	}
}

// Validate checks the ranges of the numeric settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Study.Benchmark == "" {
		errs = append(errs, errors.New("study.benchmark is empty"))
	}
	if c.Study.WindowBefore < 0 || c.Study.WindowAfter < 0 {
		errs = append(errs, fmt.Errorf("study window must be non-negative, got [-%d, +%d]", c.Study.WindowBefore, c.Study.WindowAfter))
	}
	if c.Study.Workers < 1 {
		errs = append(errs, fmt.Errorf("study.workers must be >= 1, got %d", c.Study.Workers))
	}
	if c.Bootstrap.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("bootstrap.iterations must be > 0, got %d", c.Bootstrap.Iterations))
	}
	lo, hi := c.Bootstrap.LowerPercentile, c.Bootstrap.UpperPercentile
	if lo <= 0 || hi >= 100 || lo >= hi {
		errs = append(errs, fmt.Errorf("bootstrap percentiles must satisfy 0 < lower < upper < 100, got %v/%v", lo, hi))
	}
	if c.Bootstrap.Workers < 1 {
		errs = append(errs, fmt.Errorf("bootstrap.workers must be >= 1, got %d", c.Bootstrap.Workers))
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("provider.max_retries must be >= 0, got %d", c.Provider.MaxRetries))
	}
	if c.Report.TopN < 0 {
		errs = append(errs, fmt.Errorf("report.top_n must be >= 0, got %d", c.Report.TopN))
	}
	return errors.Join(errs...)
}

// StudyOptions converts the study and provider sections into run options.
func (c *Config) StudyOptions() study.Options {
	retry := infra.DefaultRetryPolicy()
	retry.MaxRetries = c.Provider.MaxRetries
	retry.AttemptTimeout = time.Duration(c.Provider.TimeoutSec) * time.Second
	return study.Options{
		Benchmark: c.Study.Benchmark,
		Before:    c.Study.WindowBefore,
		After:     c.Study.WindowAfter,
		UseLog:    c.Study.UseLogReturns,
		Workers:   c.Study.Workers,
		Retry:     retry,
	}
}

// BootstrapEngine converts the bootstrap section into an engine.
func (c *Config) BootstrapEngine() bootstrap.Engine {
	return bootstrap.Engine{
		Iterations: c.Bootstrap.Iterations,
		LowerPct:   c.Bootstrap.LowerPercentile,
		UpperPct:   c.Bootstrap.UpperPercentile,
		Workers:    c.Bootstrap.Workers,
	}
}

// CacheTTL returns the price cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Provider.CacheTTLSec) * time.Second
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
