// Package abnormal computes abnormal returns of an asset against a benchmark
// around an announcement date and aggregates them into a Cumulative Abnormal
// Return (CAR).
package abnormal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/eventstudy/internal/analysis/returns"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/provider"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// PadDays widens the fetch range on both sides of the window so that enough
// trading days remain after weekends and holidays are lost.
const PadDays = 30

// Params configures one event window computation.
type Params struct {
	Benchmark string
	Before    int // calendar days before the announcement
	After     int // calendar days after the announcement
	UseLog    bool
}

// DefaultParams returns a ±10 day window of log returns against the S&P 500.
func DefaultParams() Params {
	return Params{
		Benchmark: "^GSPC",
		Before:    10,
		After:     10,
		UseLog:    true,
	}
}

// Validate checks the window bounds and benchmark.
func (p Params) Validate() error {
	if p.Before < 0 || p.After < 0 {
		return fmt.Errorf("%w: window bounds must be non-negative, got [-%d, %d]", models.ErrInputSchema, p.Before, p.After)
	}
	if p.Benchmark == "" {
		return fmt.Errorf("%w: empty benchmark", models.ErrInputSchema)
	}
	return nil
}

// Aligned is one date present in both the asset and the benchmark series.
type Aligned struct {
	Date      time.Time
	Asset     float64
	Benchmark float64
}

// Engine fetches prices and builds event windows.
type Engine struct {
	prices provider.PriceProvider
	logger zerolog.Logger
}

// NewEngine creates an engine reading prices from p.
func NewEngine(p provider.PriceProvider) *Engine {
	return &Engine{
		prices: p,
		logger: infra.Component("abnormal"),
	}
}

// Window fetches asset and benchmark prices around announcement, converts them
// to returns, aligns them by date and keeps the dates whose calendar-day offset
// from the announcement lies in [-Before, After].
func (e *Engine) Window(ctx context.Context, ticker string, announcement time.Time, p Params) (models.EventWindow, error) {
	if err := p.Validate(); err != nil {
		return models.EventWindow{}, err
	}
	ann := utils.DateOnly(announcement)
	start := utils.AddDays(ann, -(p.Before + PadDays))
	end := utils.AddDays(ann, p.After+PadDays)

	var asset, bench []models.ReturnPoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = e.fetchReturns(gctx, ticker, start, end, p.UseLog)
		return err
	})
	g.Go(func() error {
		var err error
		bench, err = e.fetchReturns(gctx, p.Benchmark, start, end, p.UseLog)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.EventWindow{}, err
	}

	aligned := Align(asset, bench)
	w := Extract(aligned, ann, p.Before, p.After)
	w.Ticker = ticker
	w.Benchmark = p.Benchmark

	e.logger.Debug().
		Str("ticker", ticker).
		Str("date", utils.FormatDate(ann)).
		Int("asset_returns", len(asset)).
		Int("benchmark_returns", len(bench)).
		Int("aligned", w.Aligned).
		Int("window", len(w.Points)).
		Msg("Event window built")
	return w, nil
}

// EventWindow is Window with the parameters spelled out.
func (e *Engine) EventWindow(ctx context.Context, ticker string, announcement time.Time, benchmark string, before, after int, useLog bool) (models.EventWindow, error) {
	return e.Window(ctx, ticker, announcement, Params{
		Benchmark: benchmark,
		Before:    before,
		After:     after,
		UseLog:    useLog,
	})
}

func (e *Engine) fetchReturns(ctx context.Context, ticker string, start, end time.Time, useLog bool) ([]models.ReturnPoint, error) {
	prices, err := e.prices.Prices(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("prices %s: %w", ticker, err)
	}
	if len(prices) < 2 {
		return nil, fmt.Errorf("%s: %d prices between %s and %s: %w",
			ticker, len(prices), utils.FormatDate(start), utils.FormatDate(end), models.ErrDataUnavailable)
	}
	rs, err := returns.Compute(prices, useLog)
	if err != nil {
		return nil, fmt.Errorf("returns %s: %w", ticker, err)
	}
	return rs, nil
}

// Align inner-joins two return series on calendar date. A date survives only
// if both series carry it, so a holiday observed by one market never leaks a
// one-sided return. The result follows the asset's order.
func Align(asset, benchmark []models.ReturnPoint) []Aligned {
	byDate := make(map[time.Time]float64, len(benchmark))
	for _, r := range benchmark {
		byDate[utils.DateOnly(r.Date)] = r.Value
	}

	out := make([]Aligned, 0, min(len(asset), len(benchmark)))
	for _, r := range asset {
		d := utils.DateOnly(r.Date)
		b, ok := byDate[d]
		if !ok {
			continue
		}
		out = append(out, Aligned{Date: d, Asset: r.Value, Benchmark: b})
	}
	return out
}

// Extract computes abnormal returns for aligned dates and keeps those within
// [-before, after] calendar days of the announcement.
func Extract(aligned []Aligned, announcement time.Time, before, after int) models.EventWindow {
	w := models.EventWindow{
		AnnouncementDate: utils.DateOnly(announcement),
		WindowBefore:     before,
		WindowAfter:      after,
		Aligned:          len(aligned),
	}
	for _, a := range aligned {
		days := utils.CalendarDays(a.Date, announcement)
		if days < -before || days > after {
			continue
		}
		w.Points = append(w.Points, models.WindowPoint{
			Date:                 a.Date,
			DaysFromAnnouncement: days,
			AssetReturn:          a.Asset,
			BenchmarkReturn:      a.Benchmark,
			AbnormalReturn:       a.Asset - a.Benchmark,
		})
	}
	return w
}

// CAR returns the cumulative abnormal return of the window in percent.
// An empty window has a CAR of 0.
func CAR(w models.EventWindow) float64 {
	sum := 0.0
	for _, p := range w.Points {
		sum += p.AbnormalReturn
	}
	return 100 * sum
}

// CheckWindow reports models.ErrAlignmentEmpty for a window without dates.
// The CAR of such a window stays 0; the error only flags it.
func CheckWindow(w models.EventWindow) error {
	switch {
	case w.Aligned == 0:
		return fmt.Errorf("%w: %s and %s share no dates", models.ErrAlignmentEmpty, w.Ticker, w.Benchmark)
	case w.Empty():
		return fmt.Errorf("%w: no aligned dates within [-%d, %d] of %s",
			models.ErrAlignmentEmpty, w.WindowBefore, w.WindowAfter, utils.FormatDate(w.AnnouncementDate))
	}
	return nil
}
