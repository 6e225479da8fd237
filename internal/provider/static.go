package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// Static serves prices from memory. It backs offline runs and tests.
type Static struct {
	name string

	mu     sync.RWMutex
	series map[string][]models.PricePoint
	errs   map[string]error
	calls  map[string]int
}

// NewStatic creates an empty in-memory provider.
func NewStatic(name string) *Static {
	if name == "" {
		name = "static"
	}
	return &Static{
		name:   name,
		series: make(map[string][]models.PricePoint),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Name returns the provider name.
func (s *Static) Name() string { return s.name }

// Add stores a price series for ticker, sorted ascending by date.
func (s *Static) Add(ticker string, points []models.PricePoint) *Static {
	cp := append([]models.PricePoint(nil), points...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })

	s.mu.Lock()
	s.series[utils.NormalizeTicker(ticker)] = cp
	s.mu.Unlock()
	return s
}

// Fail makes every request for ticker return err.
func (s *Static) Fail(ticker string, err error) *Static {
	s.mu.Lock()
	s.errs[utils.NormalizeTicker(ticker)] = err
	s.mu.Unlock()
	return s
}

// Calls returns how many times ticker was requested.
func (s *Static) Calls(ticker string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[utils.NormalizeTicker(ticker)]
}

// Prices returns the stored points within [start, end]. Unknown tickers
// yield an empty slice, as a real provider does for a delisted symbol.
func (s *Static) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := utils.NormalizeTicker(ticker)

	s.mu.Lock()
	s.calls[key]++
	err := s.errs[key]
	series := s.series[key]
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	from, to := utils.DateOnly(start), utils.DateOnly(end)
	var out []models.PricePoint
	for _, p := range series {
		d := utils.DateOnly(p.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
