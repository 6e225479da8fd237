package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range os.Environ() {
		name, _, _ := strings.Cut(e, "=")
		if strings.HasPrefix(name, EnvPrefix+"_") || name == envFMPKey {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	// Study defaults
	assert.Equal(t, "^GSPC", cfg.Study.Benchmark)
	assert.True(t, cfg.Study.UseLogReturns)
	assert.Equal(t, 10, cfg.Study.WindowBefore)
	assert.Equal(t, 10, cfg.Study.WindowAfter)
	assert.Equal(t, 4, cfg.Study.Workers)

	// Bootstrap defaults
	assert.Equal(t, 10000, cfg.Bootstrap.Iterations)
	assert.Equal(t, 2.5, cfg.Bootstrap.LowerPercentile)
	assert.Equal(t, 97.5, cfg.Bootstrap.UpperPercentile)
	assert.Equal(t, uint64(42), cfg.Bootstrap.Seed)
	assert.Equal(t, 1, cfg.Bootstrap.Workers)

	// Provider defaults
	assert.Equal(t, "yfinance", cfg.Provider.Name)
	assert.Equal(t, "./data/prices", cfg.Provider.DataDir)
	assert.Equal(t, 30, cfg.Provider.TimeoutSec)
	assert.Equal(t, 3, cfg.Provider.MaxRetries)
	assert.Equal(t, 5, cfg.Provider.RequestsPerSec)
	assert.Equal(t, 900, cfg.Provider.CacheTTLSec)
	assert.Empty(t, cfg.Provider.FMPKey)
	assert.False(t, cfg.Provider.Fallback)

	// Report defaults
	assert.Equal(t, "./out", cfg.Report.OutputDir)
	assert.Equal(t, 5, cfg.Report.TopN)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.NoError(t, cfg.Validate(), "defaults should validate")
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
study:
  benchmark: "^NDX"
  use_log_returns: false
  window_before: 5
  window_after: 3
bootstrap:
  iterations: 500
  seed: 7
provider:
  name: "csvdir"
  data_dir: "/tmp/prices"
  fallback: true
report:
  top_n: 3
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o644))

	cfg, err := LoadFromFile(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "^NDX", cfg.Study.Benchmark)
	assert.False(t, cfg.Study.UseLogReturns)
	assert.Equal(t, 5, cfg.Study.WindowBefore)
	assert.Equal(t, 3, cfg.Study.WindowAfter)
	assert.Equal(t, 500, cfg.Bootstrap.Iterations)
	assert.Equal(t, uint64(7), cfg.Bootstrap.Seed)
	assert.Equal(t, "csvdir", cfg.Provider.Name)
	assert.Equal(t, "/tmp/prices", cfg.Provider.DataDir)
	assert.True(t, cfg.Provider.Fallback)
	assert.Equal(t, 3, cfg.Report.TopN)

	// Unspecified values keep defaults
	assert.Equal(t, 4, cfg.Study.Workers)
	assert.Equal(t, 97.5, cfg.Bootstrap.UpperPercentile)
}

func TestLoadFromFileNotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

// ── Environment ──

func TestEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("EVENTSTUDY_STUDY_BENCHMARK", "^FTSE")
	t.Setenv("EVENTSTUDY_BOOTSTRAP_ITERATIONS", "2000")
	t.Setenv("EVENTSTUDY_PROVIDER_FMP_KEY", "prefixed_key_1234567")
	t.Setenv("EVENTSTUDY_PROVIDER_FALLBACK", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "^FTSE", cfg.Study.Benchmark)
	assert.Equal(t, 2000, cfg.Bootstrap.Iterations)
	assert.Equal(t, "prefixed_key_1234567", cfg.Provider.FMPKey)
	assert.True(t, cfg.Provider.Fallback)
}

func TestOverrideFromEnvConventionalFMPKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(envFMPKey, "plain_key_1234567890")

	cfg := &Config{}
	overrideFromEnv(cfg)
	assert.Equal(t, "plain_key_1234567890", cfg.Provider.FMPKey)

	// An explicit key wins.
	cfg = &Config{Provider: ProviderConfig{FMPKey: "from_config"}}
	overrideFromEnv(cfg)
	assert.Equal(t, "from_config", cfg.Provider.FMPKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EVENTSTUDY_REPORT_TOP_N=9\n"), 0o644))
	t.Setenv("EVENTSTUDY_REPORT_TOP_N", "")
	os.Unsetenv("EVENTSTUDY_REPORT_TOP_N")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "9", os.Getenv("EVENTSTUDY_REPORT_TOP_N"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")), "missing .env should be ignored")
}

// ── Validate ──

func validConfig() *Config {
	return &Config{
		Study:     StudyConfig{Benchmark: "^GSPC", WindowBefore: 10, WindowAfter: 10, Workers: 4},
		Bootstrap: BootstrapConfig{Iterations: 100, LowerPercentile: 2.5, UpperPercentile: 97.5, Workers: 1},
		Provider:  ProviderConfig{MaxRetries: 3},
		Report:    ReportConfig{TopN: 5},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero window", func(c *Config) { c.Study.WindowBefore, c.Study.WindowAfter = 0, 0 }, ""},
		{"empty benchmark", func(c *Config) { c.Study.Benchmark = "" }, "study.benchmark"},
		{"negative before", func(c *Config) { c.Study.WindowBefore = -1 }, "non-negative"},
		{"no workers", func(c *Config) { c.Study.Workers = 0 }, "study.workers"},
		{"zero iterations", func(c *Config) { c.Bootstrap.Iterations = 0 }, "bootstrap.iterations"},
		{"lower >= upper", func(c *Config) { c.Bootstrap.LowerPercentile = 97.5 }, "percentiles"},
		{"upper 100", func(c *Config) { c.Bootstrap.UpperPercentile = 100 }, "percentiles"},
		{"bootstrap workers", func(c *Config) { c.Bootstrap.Workers = 0 }, "bootstrap.workers"},
		{"negative retries", func(c *Config) { c.Provider.MaxRetries = -1 }, "max_retries"},
		{"negative top n", func(c *Config) { c.Report.TopN = -2 }, "top_n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

// ── Conversions ──

func TestStudyOptions(t *testing.T) {
	c := validConfig()
	c.Study.UseLogReturns = true
	c.Provider.TimeoutSec = 12
	c.Provider.MaxRetries = 1

	opts := c.StudyOptions()
	assert.Equal(t, "^GSPC", opts.Benchmark)
	assert.Equal(t, 10, opts.Before)
	assert.Equal(t, 10, opts.After)
	assert.True(t, opts.UseLog)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, 1, opts.Retry.MaxRetries)
	assert.Equal(t, 12*time.Second, opts.Retry.AttemptTimeout)
}

func TestBootstrapEngine(t *testing.T) {
	e := validConfig().BootstrapEngine()
	assert.Equal(t, 100, e.Iterations)
	assert.Equal(t, 2.5, e.LowerPct)
	assert.Equal(t, 97.5, e.UpperPct)
	assert.Equal(t, 1, e.Workers)
	assert.NoError(t, e.Validate())
}

func TestCacheTTL(t *testing.T) {
	c := &Config{Provider: ProviderConfig{CacheTTLSec: 90}}
	assert.Equal(t, 90*time.Second, c.CacheTTL())
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abc", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"abcdefghijklmnop", "abc...nop"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, maskKey(tc.input), tc.input)
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearEnv(t)
	statuses := CheckAPIKeys(&Config{})
	require.Len(t, statuses, 1)
	s := statuses[0]
	assert.False(t, s.IsSet)
	assert.Equal(t, KeySourceNone, s.Source)
	assert.Empty(t, s.Masked)
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Provider: ProviderConfig{FMPKey: "config_key_1234567"}}
	s := CheckAPIKeys(cfg)[0]
	assert.True(t, s.IsSet)
	assert.Equal(t, KeySourceConfig, s.Source)
	assert.Equal(t, "con...567", s.Masked)
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envFMPKey, "env_key_1234567890")
	cfg := &Config{Provider: ProviderConfig{FMPKey: "env_key_1234567890"}}
	assert.Equal(t, KeySourceEnv, CheckAPIKeys(cfg)[0].Source)
}

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, homeDir())
}
