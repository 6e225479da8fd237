// Package yfinance implements the Yahoo Finance daily price provider.
// It wraps the public v8 chart API, which needs no API key and covers
// equities, ETFs and indices worldwide.
package yfinance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

const providerName = "yfinance"

// DefaultBaseURL is the Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Provider fetches daily closes from Yahoo Finance.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	useAdj     bool
	logger     zerolog.Logger
}

// Option configures the Provider.
type Option func(*Provider)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithRateLimit sets the allowed requests per second.
func WithRateLimit(perSecond int) Option {
	return func(p *Provider) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// WithRawClose uses the unadjusted close instead of the adjusted close.
func WithRawClose() Option {
	return func(p *Provider) { p.useAdj = false }
}

// WithLogger sets a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New creates a Yahoo Finance provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    DefaultBaseURL,
		httpClient: infra.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		useAdj:     true,
		logger:     infra.Component(providerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string { return providerName }

// Prices returns daily closes for ticker in [start, end].
// A symbol Yahoo does not know, or a range without quotes, yields
// models.ErrDataUnavailable.
func (p *Provider) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	yfTicker := utils.ToYFinanceTicker(ticker)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// period2 is exclusive on Yahoo's side; push it to the end of the last day.
	period1 := utils.DateOnly(start).Unix()
	period2 := utils.AddDays(end, 1).Unix()
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		p.baseURL, url.PathEscape(yfTicker), period1, period2)

	p.logger.Debug().Str("ticker", yfTicker).
		Str("start", utils.FormatDate(start)).Str("end", utils.FormatDate(end)).
		Msg("Fetching chart")

	var resp yfChartResponse
	if err := p.fetchJSON(ctx, u, &resp); err != nil {
		var he *infra.ErrHTTP
		if errors.As(err, &he) && (he.StatusCode == http.StatusNotFound || he.StatusCode == http.StatusUnprocessableEntity) {
			return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, models.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart %s: %s: %w", yfTicker, resp.Chart.Error.Description, models.ErrDataUnavailable)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yfinance chart %s: no result: %w", yfTicker, models.ErrDataUnavailable)
	}

	points := parsePrices(resp.Chart.Result[0], p.useAdj)
	p.logger.Debug().Str("ticker", yfTicker).Int("count", len(points)).Msg("Fetched chart")
	return points, nil
}

// fetchJSON performs a GET request and decodes the response into dest.
func (p *Provider) fetchJSON(ctx context.Context, u string, dest any) error {
	body, _, err := infra.DoGet(ctx, p.httpClient, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// parsePrices converts a chart result into ascending daily closes. Bars
// with a missing close are skipped. Timestamps are mapped to the calendar
// date of the exchange, so an Asian session is not dated the day before.
func parsePrices(result yfChartResult, useAdj bool) []models.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close
	if useAdj && len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	}

	loc := exchangeLocation(result.Meta)
	points := make([]models.PricePoint, 0, len(result.Timestamp))
	var last time.Time
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		date := utils.DateIn(time.Unix(ts, 0), loc)
		// Yahoo occasionally repeats the live bar; keep the latest value for a date.
		if len(points) > 0 && date.Equal(last) {
			points[len(points)-1].Close = *closes[i]
			continue
		}
		points = append(points, models.PricePoint{Date: date, Close: *closes[i]})
		last = date
	}
	return points
}

func exchangeLocation(meta yfChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", meta.GMTOffset)
}
