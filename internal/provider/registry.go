package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// Registry is a thread-safe registry of price providers keyed by name.
// The first registered provider becomes the default.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]PriceProvider
	order     []string // registration order, used for fallback
	def       string
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]PriceProvider),
	}
}

// Register adds a provider. Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(p PriceProvider) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	if r.def == "" {
		r.def = name
	}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (PriceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// Names returns all registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetDefault selects the provider used by Prices.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return &ErrProviderNotFound{Name: name}
	}
	r.def = name
	return nil
}

// Default returns the default provider.
func (r *Registry) Default() (PriceProvider, error) {
	r.mu.RLock()
	name := r.def
	r.mu.RUnlock()
	return r.Get(name)
}

// Name returns "registry"; a Registry is itself a PriceProvider.
func (r *Registry) Name() string { return "registry" }

// Prices fetches from the default provider.
func (r *Registry) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	p, err := r.Default()
	if err != nil {
		return nil, err
	}
	points, err := p.Prices(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("provider %q prices %s: %w", p.Name(), ticker, err)
	}
	return points, nil
}

// Fallback returns a PriceProvider that fetches through PricesWithFallback.
func (r *Registry) Fallback() PriceProvider {
	return Func{ProviderName: "fallback", Fn: r.PricesWithFallback}
}

// PricesWithFallback tries the default provider first, then every other
// provider in registration order. Cancellation is never retried elsewhere.
func (r *Registry) PricesWithFallback(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	points, err := r.Prices(ctx, ticker, start, end)
	if err == nil {
		return points, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	r.mu.RLock()
	def := r.def
	names := append([]string(nil), r.order...)
	r.mu.RUnlock()

	for _, name := range names {
		if name == def || ctx.Err() != nil {
			continue
		}
		p, gerr := r.Get(name)
		if gerr != nil {
			continue
		}
		var perr error
		points, perr = p.Prices(ctx, ticker, start, end)
		if perr == nil && len(points) > 0 {
			return points, nil
		}
		if perr != nil {
			err = fmt.Errorf("provider %q prices %s: %w", name, ticker, perr)
		}
	}

	return nil, fmt.Errorf("all providers failed for %s: %w", ticker, err)
}
