// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// It serves daily closes as a price provider and historical EPS estimates
// and actuals as an earnings source.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/seenimoa/eventstudy/internal/earnings"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

const providerName = "fmp"

// DefaultBaseURL is the FMP v3 API root.
const DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

// EnvAPIKey is the environment variable holding the API key.
const EnvAPIKey = "FMP_API_KEY"

// ErrNoAPIKey is returned when the provider is used without a key.
var ErrNoAPIKey = errors.New("fmp: API key not set (" + EnvAPIKey + ")")

// Provider talks to the FMP REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	since      time.Time
	logger     zerolog.Logger
}

var _ earnings.Source = (*Provider)(nil)

// Option configures the Provider.
type Option func(*Provider)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(baseURL, "/") }
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

// WithSince drops announcements before t.
func WithSince(t time.Time) Option {
	return func(p *Provider) { p.since = utils.DateOnly(t) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New creates an FMP provider for apiKey.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		limiter: rate.NewLimiter(5, 5),
		logger:  infra.Component(providerName),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string { return providerName }

// Prices returns daily closes for ticker in [start, end], adjusted for
// splits and dividends when FMP supplies an adjusted close.
func (p *Provider) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	symbol := utils.NormalizeTicker(ticker)
	path := fmt.Sprintf("/historical-price-full/%s?from=%s&to=%s",
		url.PathEscape(symbol), utils.FormatDate(start), utils.FormatDate(end))

	var resp fmpHistoricalPrice
	if err := p.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fmp historical %s: %w", symbol, err)
	}
	if len(resp.Historical) == 0 {
		return nil, fmt.Errorf("fmp historical %s: %w", symbol, models.ErrDataUnavailable)
	}

	out := make([]models.PricePoint, 0, len(resp.Historical))
	for _, h := range resp.Historical {
		d, err := utils.ParseDate(h.Date)
		if err != nil {
			continue
		}
		c := h.AdjClose
		if c <= 0 {
			c = h.Close
		}
		if c <= 0 {
			continue
		}
		out = append(out, models.PricePoint{Date: d, Close: c})
	}
	// FMP returns newest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Announcements fetches past earnings for each ticker. A ticker that cannot
// be fetched is recorded as rejected and the others still load.
func (p *Provider) Announcements(ctx context.Context, tickers []string) (earnings.Table, error) {
	var tbl earnings.Table
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return tbl, err
		}
		symbol := utils.NormalizeTicker(t)

		var rows []fmpEarning
		path := "/historical/earning_calendar/" + url.PathEscape(symbol)
		if err := p.getJSON(ctx, path, &rows); err != nil {
			if errors.Is(err, ErrNoAPIKey) {
				return tbl, err
			}
			p.logger.Warn().Err(err).Str("ticker", symbol).Msg("Earnings fetch failed")
			tbl.Rejected = append(tbl.Rejected, models.FailureRecord{
				Ticker: symbol,
				Kind:   models.KindOf(err),
				Reason: err.Error(),
			})
			continue
		}

		events, rejected := p.toEvents(symbol, rows)
		tbl.Events = append(tbl.Events, events...)
		tbl.Rejected = append(tbl.Rejected, rejected...)
	}
	return tbl, nil
}

// toEvents converts FMP rows into events in ascending date order. Rows
// without an actual EPS have not been reported yet and are skipped.
func (p *Provider) toEvents(symbol string, rows []fmpEarning) ([]models.AnnouncementEvent, []models.FailureRecord) {
	var (
		events   []models.AnnouncementEvent
		rejected []models.FailureRecord
	)
	for _, r := range rows {
		if r.EPS == nil {
			continue
		}
		date, err := utils.ParseDate(r.Date)
		if err != nil {
			rejected = append(rejected, models.FailureRecord{
				Ticker: symbol,
				Kind:   models.KindInputSchema,
				Reason: err.Error(),
			})
			continue
		}
		if !p.since.IsZero() && date.Before(p.since) {
			continue
		}
		if r.EPSEstimated == nil {
			rejected = append(rejected, models.FailureRecord{
				Ticker: symbol,
				Date:   date,
				Kind:   models.KindInputSchema,
				Reason: "no EPS estimate",
			})
			continue
		}
		ev, err := models.NewAnnouncementEvent(symbol, date, *r.EPSEstimated, *r.EPS)
		if err != nil {
			rejected = append(rejected, models.FailureRecord{
				Ticker: symbol,
				Date:   date,
				Kind:   models.KindOf(err),
				Reason: err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].AnnouncementDate.Before(events[j].AnnouncementDate)
	})
	return events, rejected
}

// apiURL builds a full FMP API URL with the API key appended.
func (p *Provider) apiURL(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return p.baseURL + path + sep + "apikey=" + url.QueryEscape(p.apiKey)
}

// getJSON performs a rate limited GET and decodes the response into dest.
func (p *Provider) getJSON(ctx context.Context, path string, dest any) error {
	if p.apiKey == "" {
		return ErrNoAPIKey
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	body, status, err := infra.DoGet(ctx, p.httpClient, p.apiURL(path), map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == http.StatusNotFound {
			return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
		}
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var apiErr fmpError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("fmp: %s", apiErr.Message)
		}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FMP JSON: %w", err)
	}
	return nil
}
