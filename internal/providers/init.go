// Package providers constructs the concrete price providers and registers
// them with a provider registry.
package providers

import (
	"net/http"
	"time"

	"github.com/seenimoa/eventstudy/internal/config"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/provider"
	"github.com/seenimoa/eventstudy/internal/providers/csvdir"
	"github.com/seenimoa/eventstudy/internal/providers/fmp"
	"github.com/seenimoa/eventstudy/internal/providers/yfinance"
)

// RegisterAllTo registers every available provider with reg. Providers that
// require an API key are only registered when the key is configured.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	client := httpClient(cfg)

	// --- YFinance (free, no API key) ---
	yf := yfinance.New(
		yfinance.WithHTTPClient(client),
		yfinance.WithRateLimit(cfg.Provider.RequestsPerSec),
		yfinance.WithLogger(infra.Component("yfinance")),
	)
	if err := reg.Register(yf); err != nil {
		return err
	}

	// --- CSV directory (offline) ---
	if err := reg.Register(csvdir.New(cfg.Provider.DataDir)); err != nil {
		return err
	}

	// --- FMP (requires API key) ---
	if cfg.Provider.FMPKey != "" {
		if err := reg.Register(NewFMP(cfg)); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds a registry with every available provider and selects
// cfg.Provider.Name as the default.
func NewRegistry(cfg *config.Config) (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg); err != nil {
		return nil, err
	}
	if err := reg.SetDefault(cfg.Provider.Name); err != nil {
		return nil, err
	}
	return reg, nil
}

// Prices returns the configured default provider wrapped in the TTL cache.
// With provider.fallback set and more than one provider registered, failed
// fetches move on to the other providers in registration order.
func Prices(cfg *config.Config) (provider.PriceProvider, error) {
	reg, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	p, err := reg.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Provider.Fallback && len(reg.Names()) > 1 {
		p = reg.Fallback()
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		return provider.Cached(p, ttl), nil
	}
	return p, nil
}

// NewFMP builds the FMP provider, which doubles as an earnings source.
func NewFMP(cfg *config.Config, opts ...fmp.Option) *fmp.Provider {
	base := []fmp.Option{
		fmp.WithHTTPClient(httpClient(cfg)),
		fmp.WithRateLimit(cfg.Provider.RequestsPerSec),
		fmp.WithLogger(infra.Component("fmp")),
	}
	return fmp.New(cfg.Provider.FMPKey, append(base, opts...)...)
}

func httpClient(cfg *config.Config) *http.Client {
	if cfg.Provider.TimeoutSec <= 0 {
		return infra.HTTPClient
	}
	c := *infra.HTTPClient
	c.Timeout = time.Duration(cfg.Provider.TimeoutSec) * time.Second
	return &c
}
