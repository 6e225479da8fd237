package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/eventstudy/internal/config"
	"github.com/seenimoa/eventstudy/internal/provider"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Provider: config.ProviderConfig{
			Name:           "yfinance",
			DataDir:        t.TempDir(),
			TimeoutSec:     5,
			RequestsPerSec: 2,
			CacheTTLSec:    60,
		},
	}
}

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	require.NoError(t, RegisterAllTo(reg, testConfig(t)))

	for _, name := range []string{"yfinance", "csvdir"} {
		p, err := reg.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}

	// FMP needs a key.
	var nf *provider.ErrProviderNotFound
	_, err := reg.Get("fmp")
	assert.ErrorAs(t, err, &nf)
}

func TestRegisterAllToWithFMPKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.FMPKey = "demo"

	reg := provider.NewRegistry()
	require.NoError(t, RegisterAllTo(reg, cfg))
	_, err := reg.Get("fmp")
	assert.NoError(t, err)
	assert.Len(t, reg.Names(), 3)
}

func TestNewRegistryDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.Name = "csvdir"

	reg, err := NewRegistry(cfg)
	require.NoError(t, err)
	p, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "csvdir", p.Name())
}

func TestNewRegistryUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.Name = "fmp" // no key

	_, err := NewRegistry(cfg)
	assert.Error(t, err)
}

func TestPricesIsCached(t *testing.T) {
	p, err := Prices(testConfig(t))
	require.NoError(t, err)
	assert.IsType(t, &provider.CachedProvider{}, p)
	assert.Equal(t, "yfinance", p.Name())

	cfg := testConfig(t)
	cfg.Provider.CacheTTLSec = 0
	p, err = Prices(cfg)
	require.NoError(t, err)
	_, cached := p.(*provider.CachedProvider)
	assert.False(t, cached, "cache should be off with a zero TTL")
}

func TestPricesWithFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.Name = "csvdir"
	cfg.Provider.Fallback = true

	p, err := Prices(cfg)
	require.NoError(t, err)
	assert.Equal(t, "fallback", p.Name())

	cfg.Provider.Fallback = false
	p, err = Prices(cfg)
	require.NoError(t, err)
	assert.Equal(t, "csvdir", p.Name())
}

func TestHTTPClientTimeout(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, 5*time.Second, httpClient(cfg).Timeout)

	cfg.Provider.TimeoutSec = 0
	assert.Same(t, httpClient(cfg), httpClient(cfg), "expected shared client")
}
