// Package provider defines the price provider abstraction consumed by the
// abnormal return engine, a name-keyed registry of providers, and decorators
// for caching and in-memory fixtures.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// PriceProvider returns daily closes for a ticker over an inclusive date range.
// Implementations return points ordered ascending by date. They may return an
// empty slice; gaps for non-trading days are expected.
type PriceProvider interface {
	// Name returns the registry name of this provider, e.g. "yfinance".
	Name() string

	// Prices returns the closes for ticker in [start, end].
	Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not registered", e.Name)
}

// Func adapts a plain function to the PriceProvider interface.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// Name returns the provider name.
func (f Func) Name() string { return f.ProviderName }

// Prices calls the wrapped function.
func (f Func) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	return f.Fn(ctx, ticker, start, end)
}
