// Package study runs an earnings event study over a list of announcements.
//
// Each announcement is an independent task on a bounded worker pool. A task
// ends in exactly one of two states, a result or a failure record, and one
// event's failure never affects another. Outcomes are tagged with the event's
// input position and merged after all tasks finish, so results come back in
// input order no matter which worker finished first.
package study

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/eventstudy/internal/analysis/abnormal"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/provider"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// Options controls a study run.
type Options struct {
	Benchmark string
	Before    int
	After     int
	UseLog    bool
	Workers   int
	Retry     infra.RetryPolicy
}

// DefaultOptions returns a ±10 calendar day window of log returns against
// ^GSPC on four workers.
func DefaultOptions() Options {
	return Options{
		Benchmark: "^GSPC",
		Before:    10,
		After:     10,
		UseLog:    true,
		Workers:   4,
		Retry:     infra.DefaultRetryPolicy(),
	}
}

func (o Options) params() abnormal.Params {
	return abnormal.Params{
		Benchmark: o.Benchmark,
		Before:    o.Before,
		After:     o.After,
		UseLog:    o.UseLog,
	}
}

// Outcome holds the successful results and the failures of a run, each in
// input order.
type Outcome struct {
	Results  []models.EventResult   `json:"results"`
	Failures []models.FailureRecord `json:"failures"`
}

// Total returns the number of events accounted for.
func (o Outcome) Total() int { return len(o.Results) + len(o.Failures) }

// eventOutcome is the tagged result of one task. Exactly one of result and
// failure is set.
type eventOutcome struct {
	index   int
	result  *models.EventResult
	failure *models.FailureRecord
}

// Orchestrator drives the abnormal return engine once per event.
type Orchestrator struct {
	prices provider.PriceProvider
	logger zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator reading prices from p.
func New(p provider.PriceProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prices: p,
		logger: infra.Component("study"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes events and returns their results and failures.
//
// When ctx is cancelled no further events are dispatched. Events never
// dispatched are recorded as Cancelled failures, and Run returns the partial
// outcome together with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, events []models.AnnouncementEvent, opts Options) (Outcome, error) {
	if err := opts.params().Validate(); err != nil {
		return Outcome{}, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	started := time.Now()
	engine := abnormal.NewEngine(o.retrying(opts.Retry))
	params := opts.params()

	tagged := make(chan eventOutcome, len(events))
	var g errgroup.Group
	g.SetLimit(workers)

	dispatched := 0
	for i, ev := range events {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			tagged <- o.runOne(ctx, engine, i, ev, params)
			return nil
		})
		dispatched++
	}
	_ = g.Wait() // tasks never return errors
	close(tagged)

	collected := make([]eventOutcome, 0, len(events))
	for t := range tagged {
		collected = append(collected, t)
	}
	for i := dispatched; i < len(events); i++ {
		collected = append(collected, eventOutcome{index: i, failure: &models.FailureRecord{
			Ticker: events[i].Ticker,
			Date:   events[i].AnnouncementDate,
			Kind:   models.KindCancelled,
			Reason: "not started: run cancelled",
		}})
	}
	out := merge(collected)

	o.logger.Info().
		Int("events", len(events)).
		Int("results", len(out.Results)).
		Int("failures", len(out.Failures)).
		Dur("elapsed", time.Since(started)).
		Msg("Event study complete")

	return out, ctx.Err()
}

// merge restores input order and splits outcomes into results and failures.
func merge(tagged []eventOutcome) Outcome {
	sort.Slice(tagged, func(i, j int) bool { return tagged[i].index < tagged[j].index })

	var out Outcome
	for _, t := range tagged {
		switch {
		case t.result != nil:
			out.Results = append(out.Results, *t.result)
		case t.failure != nil:
			out.Failures = append(out.Failures, *t.failure)
		}
	}
	return out
}

func (o *Orchestrator) runOne(ctx context.Context, engine *abnormal.Engine, index int, ev models.AnnouncementEvent, params abnormal.Params) eventOutcome {
	log := o.logger.With().
		Int("index", index).
		Str("ticker", ev.Ticker).
		Str("date", utils.FormatDate(ev.AnnouncementDate)).
		Logger()

	fail := func(err error) eventOutcome {
		kind := models.KindOf(err)
		log.Warn().Err(err).Str("kind", string(kind)).Msg("Event failed")
		return eventOutcome{index: index, failure: &models.FailureRecord{
			Ticker: ev.Ticker,
			Date:   ev.AnnouncementDate,
			Kind:   kind,
			Reason: err.Error(),
		}}
	}

	if err := ev.Validate(); err != nil {
		return fail(err)
	}

	w, err := engine.Window(ctx, ev.Ticker, ev.AnnouncementDate, params)
	if err != nil {
		return fail(err)
	}

	res := models.EventResult{
		Ticker:       ev.Ticker,
		Date:         ev.AnnouncementDate,
		SurprisePct:  ev.SurprisePct,
		Benchmark:    params.Benchmark,
		CAR:          abnormal.CAR(w),
		Observations: len(w.Points),
	}
	if err := abnormal.CheckWindow(w); err != nil {
		res.AlignmentEmpty = true
		log.Warn().Err(err).Msg("Empty event window, CAR is 0")
	}

	log.Debug().
		Float64("car", res.CAR).
		Int("observations", res.Observations).
		Msg("Event processed")
	return eventOutcome{index: index, result: &res}
}

// EventWindow computes a single event window with the same retry policy as Run.
func (o *Orchestrator) EventWindow(ctx context.Context, ticker string, announcement time.Time, opts Options) (models.EventWindow, error) {
	engine := abnormal.NewEngine(o.retrying(opts.Retry))
	w, err := engine.Window(ctx, ticker, announcement, opts.params())
	if err != nil {
		return models.EventWindow{}, fmt.Errorf("event window %s %s: %w", ticker, utils.FormatDate(announcement), err)
	}
	return w, nil
}

// retrying wraps the price provider with a per-attempt timeout and bounded
// retries. Missing data, schema errors and HTTP statuses that will not change
// on a second attempt (4xx other than 429) are not retried.
func (o *Orchestrator) retrying(p infra.RetryPolicy) provider.PriceProvider {
	return provider.Func{
		ProviderName: o.prices.Name(),
		Fn: func(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
			return infra.Retry(ctx, p, permanent,
				func(ctx context.Context) ([]models.PricePoint, error) {
					return o.prices.Prices(ctx, ticker, start, end)
				},
				func(err error, wait time.Duration) {
					o.logger.Debug().Err(err).Str("ticker", ticker).Dur("wait", wait).Msg("Retrying price fetch")
				})
		},
	}
}

func permanent(err error) bool {
	if errors.Is(err, models.ErrDataUnavailable) || errors.Is(err, models.ErrInputSchema) {
		return true
	}
	var he *infra.ErrHTTP
	return errors.As(err, &he) && !he.Temporary()
}
